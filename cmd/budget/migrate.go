package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Bobboe/hspriveko/internal/config"
	"github.com/Bobboe/hspriveko/internal/storage/sqlite"
)

func migrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Create or update the SQLite schema to the latest version.

Opening the database from any other command migrates it as well; this
command is for provisioning ahead of time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.DataBackend != config.BackendSQLite {
				return fmt.Errorf("migrate needs the sqlite backend, got %q", cfg.DataBackend)
			}
			if dir := filepath.Dir(cfg.SQLiteDBPath); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create database directory: %w", err)
				}
			}

			slog.Info("Starting database migration", "database", cfg.SQLiteDBPath)
			version, err := sqlite.RunMigrations(cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database %s at schema version %d\n", cfg.SQLiteDBPath, version)
			return nil
		},
	}
}
