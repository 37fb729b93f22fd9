package main

import (
	"fmt"
	"log/slog"

	"github.com/Redwolfc4/nusantarago-backend/internal/config"
	"github.com/Redwolfc4/nusantarago-backend/internal/infrastructure/postgres"
	"github.com/Redwolfc4/nusantarago-backend/internal/logging"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run PostgreSQL schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withMigrator(func(m *postgres.Migrator) error { return m.Up() })
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert all migrations",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withMigrator(func(m *postgres.Migrator) error { return m.Down() })
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}

func withMigrator(run func(*postgres.Migrator) error) (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.SetDefault("nusantarago-backend", version, cfg.LogFormat)

	m, err := postgres.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}
	defer func() {
		if cerr := m.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := run(m); err != nil {
		return err
	}
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	slog.Info("migrations applied", "version", v, "dirty", dirty)
	return nil
}
