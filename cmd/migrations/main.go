package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"github.com/vncsmyrnk/ballot/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/ballot/internal/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "migrations",
		Short:        "Apply the Postgres schema migrations",
		SilenceUsage: true,
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply every migration in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, db *sql.DB) error {
				if err := postgres.Migrate(ctx, db); err != nil {
					return err
				}
				fmt.Println("Migrations applied successfully.")
				return nil
			})
		},
	}

	runCmd := &cobra.Command{
		Use:   "run <migration-name>",
		Short: "Execute a single migration file, e.g. 0002_create_ledger.down",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := postgres.MigrationFile(args[0])
			if err != nil {
				return err
			}
			return withDB(cmd.Context(), func(ctx context.Context, db *sql.DB) error {
				if _, err := db.ExecContext(ctx, string(content)); err != nil {
					return fmt.Errorf("failed to execute SQL file: %w", err)
				}
				fmt.Println("Migration file executed successfully.")
				return nil
			})
		},
	}

	rootCmd.AddCommand(upCmd, runCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func withDB(parent context.Context, fn func(ctx context.Context, db *sql.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(parent, time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return err
	}
	return fn(ctx, db)
}
