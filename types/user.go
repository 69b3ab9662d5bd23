package types

import "time"

// User represents a registered account.
type User struct {
	// ID is the store-assigned identifier of the user. It is opaque to
	// callers: a Mongo ObjectID in hex or a Postgres row id in decimal.
	ID string `json:"id" db:"id"`

	// Username is the display name given at registration.
	Username string `json:"username" db:"username"`

	// Email is the unique login key of the user.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"-" db:"created_at"`
}

// Public returns a copy of u with the password hash cleared.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}
