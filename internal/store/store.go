package store

import (
	"context"
	"fmt"

	"github.com/jjudge-oj/userauth/config"
	"github.com/jjudge-oj/userauth/internal/db"
	"github.com/jjudge-oj/userauth/types"
)

// UserStore is the persistence contract for user accounts. Implementations
// must reject a second user with the same email atomically (ErrDuplicate).
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (types.User, error)
	FindByID(ctx context.Context, id string) (types.User, error)
	Insert(ctx context.Context, user types.User) (types.User, error)
	FindAll(ctx context.Context) ([]types.User, error)
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

var (
	_ UserStore = (*UserRepository)(nil)
	_ UserStore = (*MongoUserRepository)(nil)
)

// Open connects to the database named by cfg.URI and returns the matching
// store. Schema setup is left to Migrate.
func Open(ctx context.Context, cfg config.DatabaseConfig) (UserStore, error) {
	backend, err := db.BackendFor(cfg.URI)
	if err != nil {
		return nil, err
	}

	switch backend {
	case db.BackendMongo:
		database, err := db.OpenMongo(ctx, cfg.URI, cfg.Name)
		if err != nil {
			return nil, fmt.Errorf("open mongo: %w", err)
		}
		return NewMongoUserRepository(database), nil
	case db.BackendPostgres:
		conn, err := db.OpenPostgres(ctx, cfg.URI)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return NewUserRepository(conn, cfg.URI), nil
	default:
		return nil, fmt.Errorf("unsupported database backend %q", backend)
	}
}
