package auth

import "errors"

var (
	// ErrHashing is returned when a password cannot be hashed or a stored
	// hash cannot be parsed.
	ErrHashing = errors.New("password hashing failed")

	// ErrPasswordTooLong is returned when the plaintext exceeds what the
	// configured algorithm accepts.
	ErrPasswordTooLong = errors.New("password too long")

	// ErrSigning is returned when a token cannot be signed.
	ErrSigning = errors.New("token signing failed")

	// ErrInvalidToken is returned for malformed, tampered or expired tokens.
	ErrInvalidToken = errors.New("invalid token")
)
