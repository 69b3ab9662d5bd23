package db

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigratePostgres applies every pending up migration embedded in the binary.
// It uses its own connection to uri and closes it once the run ends. When
// ctx is done the migrator is asked to stop after the current migration and
// ctx.Err() is returned without waiting for it.
func MigratePostgres(ctx context.Context, uri string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	migrator, err := migrate.NewWithSourceInstance("iofs", source, uri)
	if err != nil {
		return fmt.Errorf("init migrator failed: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		err := migrator.Up()
		_, _ = migrator.Close()
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case <-ctx.Done():
		select {
		case migrator.GracefulStop <- true:
		default:
		}
		return ctx.Err()
	}
}
