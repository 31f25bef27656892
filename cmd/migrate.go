package cmd

import (
	"fmt"

	"github.com/psds-microservice/report-service/internal/config"
	"github.com/psds-microservice/report-service/internal/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations (postgres: goose, sqlite: automigrate)",
	RunE:  runMigrateUp,
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.DB.Driver == config.DriverSQLite {
		// sqlite мигрирует себя при открытии
		if _, err := database.Open(cfg, log); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	} else if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info("migrate up: ok", "driver", cfg.DB.Driver)
	return nil
}
