package database

import (
	"fmt"
	"log/slog"

	slogGorm "github.com/orandin/slog-gorm"
	"github.com/psds-microservice/report-service/internal/config"
	"github.com/psds-microservice/report-service/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open открывает gorm-подключение согласно DB_DRIVER.
// Для sqlite схема создаётся через AutoMigrate, для postgres — через goose (MigrateUp).
func Open(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:         slogGorm.New(slogGorm.WithLogger(log.With("component", "gorm"))),
		TranslateError: true,
	}
	switch cfg.DB.Driver {
	case config.DriverSQLite:
		db, err := gorm.Open(sqlite.Open(cfg.DB.SQLitePath), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
		return db, nil
	default:
		db, err := gorm.Open(postgres.Open(cfg.DSN()), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return db, nil
	}
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Report{}, &model.Admin{}, &model.Setting{}); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
