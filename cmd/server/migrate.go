package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/templui/authd/internal/config"
	"github.com/templui/authd/internal/db"
	"github.com/templui/authd/internal/logger"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd, db.RunMigrations)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd, db.MigrateDown)
		},
	})

	return cmd
}

type migrateFunc func(database *sql.DB, driver string) error

func runMigrate(cmd *cobra.Command, migrate migrateFunc) error {
	cfg := config.Load()

	logger.Init(cfg.AppName, cfg.IsDevelopment(), cfg.SentryDSN)

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close(database)

	err = migrate(database.DB, cfg.DBDriver)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	cmd.Println("Migrations completed successfully")
	return nil
}
