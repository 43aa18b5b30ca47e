// file: database/seed.go
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/alpnix/HackAtDavidson/config"
	"github.com/alpnix/HackAtDavidson/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultSettings are inserted on startup when missing. Existing values are never overwritten.
func DefaultSettings() []models.Setting {
	return []models.Setting{
		{Name: models.SettingRegistrationOpen, Value: "true", ValueType: models.SettingBoolean, Public: true},
		{Name: models.SettingProjectRegistrationOpen, Value: "false", ValueType: models.SettingBoolean, Public: true},
		{Name: models.SettingEventName, Value: "Hack@Davidson", ValueType: models.SettingString, Public: true},
		{Name: models.SettingMaxTeamSize, Value: "4", ValueType: models.SettingNumber, Public: true},
	}
}

// Seed makes sure the rows the application relies on exist.
func Seed(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	tx := db.WithContext(ctx)

	settings := DefaultSettings()
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&settings).Error; err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	var count int64
	if err := tx.Model(&models.Hackathon{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count hackathons: %w", err)
	}
	if count == 0 {
		year := time.Now().Year()
		h := models.Hackathon{Year: year, Name: "Hackathon " + strconv.Itoa(year)}
		if err := tx.Create(&h).Error; err != nil {
			return fmt.Errorf("seed hackathon: %w", err)
		}
		slog.Info("Seeded current hackathon", "year", year)
	}

	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	var admin models.Profile
	err := tx.Where("email = ?", cfg.AdminEmail).First(&admin).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup admin: %w", err)
	}
	admin = models.Profile{
		Email:     cfg.AdminEmail,
		Password:  cfg.AdminPassword,
		FirstName: "Admin",
		Role:      models.RolePresident,
	}
	if err := tx.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	slog.Info("Seeded bootstrap staff account", "email", cfg.AdminEmail)
	return nil
}
