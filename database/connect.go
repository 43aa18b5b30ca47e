// file: database/connect.go
package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/alpnix/HackAtDavidson/config"
	"github.com/alpnix/HackAtDavidson/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Dialector picks the gorm dialector for the configured driver.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "postgres":
		return postgres.Open(cfg.DSN()), nil
	case "mysql":
		return mysql.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// Connect opens the database and configures the connection pool.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	gcfg := &gorm.Config{}
	if cfg.IsProduction() {
		gcfg.Logger = gormlogger.Default.LogMode(gormlogger.Warn)
	}
	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err, "host", cfg.DBHost, "driver", cfg.DBDriver)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	// Connections are recycled hourly so MySQL wait_timeout never bites.
	sqlDB.SetConnMaxLifetime(time.Hour)

	slog.Info("Database connection established", "driver", cfg.DBDriver, "host", cfg.DBHost, "db", cfg.DBName)
	return db, nil
}

// AllModels is the migration set in dependency order.
func AllModels() []any {
	return []any{
		&models.Profile{},
		&models.Hackathon{},
		&models.Sponsor{},
		&models.ScheduleItem{},
		&models.FAQ{},
		&models.Registration{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Blog{},
		&models.Form{},
		&models.FormField{},
		&models.FormSubmission{},
		&models.Setting{},
	}
}

// MigrateTables runs gorm auto-migrations for every model.
func MigrateTables(db *gorm.DB) error {
	slog.Info("Running auto-migrations")
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := InstallChangeTriggers(db); err != nil {
		return err
	}
	slog.Info("Database schema synchronized")
	return nil
}
