package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jjudge-oj/userauth/internal/db"
	"github.com/jjudge-oj/userauth/types"
	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// UserRepository handles persistence for users in Postgres.
type UserRepository struct {
	db  *sql.DB
	uri string
}

// NewUserRepository wraps an open pool. uri is only used by Migrate.
func NewUserRepository(db *sql.DB, uri string) *UserRepository {
	return &UserRepository{db: db, uri: uri}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (types.User, error) {
	rowID, err := strconv.ParseInt(id, 10, 64)
	if err != nil || rowID < 1 {
		return types.User{}, ErrNotFound
	}

	const query = `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, rowID))
}

func (r *UserRepository) Insert(ctx context.Context, user types.User) (types.User, error) {
	user.CreatedAt = time.Now().UTC()

	const query = `
		INSERT INTO users (username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	var id int64
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return types.User{}, ErrDuplicate
		}
		return types.User{}, err
	}
	user.ID = strconv.FormatInt(id, 10)
	return user, nil
}

// FindAll lists every user without reading the password column.
func (r *UserRepository) FindAll(ctx context.Context) ([]types.User, error) {
	const query = `
		SELECT id, username, email, created_at
		FROM users
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]types.User, 0)
	for rows.Next() {
		var (
			id   int64
			user types.User
		)
		if err := rows.Scan(&id, &user.Username, &user.Email, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.ID = strconv.FormatInt(id, 10)
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// Migrate applies the embedded schema, which carries the unique email
// constraint.
func (r *UserRepository) Migrate(ctx context.Context) error {
	return db.MigratePostgres(ctx, r.uri)
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *UserRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *UserRepository) scanOne(row *sql.Row) (types.User, error) {
	var (
		id   int64
		user types.User
	)
	err := row.Scan(
		&id,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	user.ID = strconv.FormatInt(id, 10)
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
