/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/jjudge-oj/userauth/config"
	"github.com/jjudge-oj/userauth/internal/store"
	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	Long: `Applies the embedded Postgres migrations, or ensures the unique email
index when DATABASE_URI points at MongoDB.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		if cfg.Database.URI == "" {
			return errors.New("DATABASE_URI is required")
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		userStore, err := store.Open(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("open store failed: %w", err)
		}
		defer func() {
			_ = userStore.Close(context.Background())
		}()

		if err := userStore.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate up failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
}
