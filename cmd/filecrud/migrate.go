package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Yashchauhan008/file-crud/config"
	"github.com/Yashchauhan008/file-crud/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the metadata schema",
	Long: `Create the resources table (SQL backends) or indexes (MongoDB)
without starting the server. Safe to run repeatedly.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	db, err := database.Connect(ctx, cfg.DatabaseConfig())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err = db.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if err = db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	if err = db.Validate(ctx); err != nil {
		return fmt.Errorf("validate database schema: %w", err)
	}

	slog.Info("database migration complete", "type", cfg.Database.Type)
	return nil
}
