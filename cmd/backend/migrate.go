package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	repositoryimpl "github.com/foxseedlab/kikitori/external/repository"
	"github.com/foxseedlab/kikitori/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

const migrateTimeout = time.Minute

func newMigrateCommand(loaded func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loaded()
			ctx, cancel := context.WithTimeout(cmd.Context(), migrateTimeout)
			defer cancel()

			pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()

			if err := repositoryimpl.RunMigration(ctx, pool); err != nil {
				return fmt.Errorf("run migration: %w", err)
			}
			slog.Info("migration complete")
			return nil
		},
	}
}
