// file: services/setting_service.go
package services

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/alpnix/HackAtDavidson/apperrors"
	"github.com/alpnix/HackAtDavidson/database"
	"github.com/alpnix/HackAtDavidson/models"
	"gorm.io/gorm"
)

// NormalizeSettingValue canonicalises raw for storage under type t.
// Booleans become "true"/"false"; numbers use the shortest float form.
func NormalizeSettingValue(t models.SettingValueType, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	switch t {
	case models.SettingBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return "", apperrors.NewValidationError("value must be true or false", map[string]string{"value": "must be a boolean"})
		}
		return strconv.FormatBool(b), nil
	case models.SettingNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return "", apperrors.NewValidationError("value must be a number", map[string]string{"value": "must be a number"})
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	case models.SettingString:
		return raw, nil
	default:
		return "", apperrors.NewValidationError("unknown setting type", map[string]string{"value_type": "must be one of boolean string number"})
	}
}

// TypedValue decodes a stored setting into bool, float64 or string.
func TypedValue(s models.Setting) interface{} {
	switch s.ValueType {
	case models.SettingBoolean:
		return s.Value == "true"
	case models.SettingNumber:
		f, err := strconv.ParseFloat(s.Value, 64)
		if err != nil {
			return 0.0
		}
		return f
	default:
		return s.Value
	}
}

type SettingService struct {
	db *gorm.DB
}

func NewSettingService(db *gorm.DB) *SettingService {
	return &SettingService{db: db}
}

func (s *SettingService) List(ctx context.Context, publicOnly bool) ([]models.Setting, error) {
	var settings []models.Setting
	q := s.db.WithContext(ctx).Order("name asc")
	if publicOnly {
		q = q.Where("public = ?", true)
	}
	if err := q.Find(&settings).Error; err != nil {
		return nil, database.MapError(err, "setting")
	}
	return settings, nil
}

func (s *SettingService) Get(ctx context.Context, name string) (*models.Setting, error) {
	var setting models.Setting
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&setting).Error; err != nil {
		return nil, database.MapError(err, "setting")
	}
	return &setting, nil
}

// Update normalises raw against the stored type of name and saves it.
func (s *SettingService) Update(ctx context.Context, name, raw string) (*models.Setting, error) {
	setting, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	value, err := NormalizeSettingValue(setting.ValueType, raw)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(setting).Update("value", value).Error; err != nil {
		return nil, database.MapError(err, "setting")
	}
	setting.Value = value
	return setting, nil
}

// Create adds a new setting. Names are upper-cased.
func (s *SettingService) Create(ctx context.Context, name string, t models.SettingValueType, raw string, public bool) (*models.Setting, error) {
	value, err := NormalizeSettingValue(t, raw)
	if err != nil {
		return nil, err
	}
	setting := models.Setting{
		Name:      strings.ToUpper(strings.TrimSpace(name)),
		Value:     value,
		ValueType: t,
		Public:    public,
	}
	if setting.Name == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]string{"name": "is required"})
	}
	if err := s.db.WithContext(ctx).Create(&setting).Error; err != nil {
		return nil, database.MapError(err, "setting")
	}
	return &setting, nil
}

// Bool reads a boolean flag, returning def when the setting does not exist.
func (s *SettingService) Bool(ctx context.Context, name string, def bool) (bool, error) {
	setting, err := s.Get(ctx, name)
	if apperrors.IsType(err, apperrors.TypeNotFound) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	return setting.Value == "true", nil
}

// Int reads a numeric setting truncated to int, returning def when missing or unparsable.
func (s *SettingService) Int(ctx context.Context, name string, def int) (int, error) {
	setting, err := s.Get(ctx, name)
	if apperrors.IsType(err, apperrors.TypeNotFound) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	f, perr := strconv.ParseFloat(setting.Value, 64)
	if perr != nil {
		return def, nil
	}
	return int(f), nil
}

var errSettingDisabled = errors.New("disabled")

// RequireOpen fails with a closed error when flag is false.
func (s *SettingService) RequireOpen(ctx context.Context, name string, def bool, msg string) error {
	open, err := s.Bool(ctx, name, def)
	if err != nil {
		return err
	}
	if !open {
		e := apperrors.NewClosedError(msg)
		e.Internal = errSettingDisabled
		return e
	}
	return nil
}
