package db

import (
	"context"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBackendFor(t *testing.T) {
	tests := []struct {
		uri     string
		want    Backend
		wantErr bool
	}{
		{"mongodb://localhost:27017/users", BackendMongo, false},
		{"mongodb+srv://cluster0.example.net/users", BackendMongo, false},
		{"MongoDB://localhost", BackendMongo, false},
		{"postgres://u:p@localhost:5432/app?sslmode=disable", BackendPostgres, false},
		{"postgresql://localhost/app", BackendPostgres, false},
		{"mysql://localhost/app", "", true},
		{"localhost:27017", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := BackendFor(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	up, err := fs.ReadFile(migrationFiles, "migrations/000001_create_users.up.sql")
	require.NoError(t, err)
	require.Contains(t, string(up), "UNIQUE (email)")

	_, err = fs.ReadFile(migrationFiles, "migrations/000001_create_users.down.sql")
	require.NoError(t, err)
}

func TestMigratePostgres_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := MigratePostgres(ctx, "postgres://nobody@127.0.0.1:1/none?sslmode=disable")
	require.ErrorIs(t, err, context.Canceled)
}
