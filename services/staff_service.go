// file: services/staff_service.go
package services

import (
	"context"
	"strings"

	"github.com/alpnix/HackAtDavidson/apperrors"
	"github.com/alpnix/HackAtDavidson/database"
	"github.com/alpnix/HackAtDavidson/models"
	"gorm.io/gorm"
)

// StaffInput creates a dashboard account.
type StaffInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      models.StaffRole
}

type StaffService struct {
	db *gorm.DB
}

func NewStaffService(db *gorm.DB) *StaffService {
	return &StaffService{db: db}
}

func (s *StaffService) Get(ctx context.Context, id uint32) (*models.Profile, error) {
	var p models.Profile
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, database.MapError(err, "profile")
	}
	return &p, nil
}

func (s *StaffService) List(ctx context.Context) ([]models.Profile, error) {
	var rows []models.Profile
	if err := s.db.WithContext(ctx).Order("lastname asc").Order("firstname asc").Find(&rows).Error; err != nil {
		return nil, database.MapError(err, "profile")
	}
	return rows, nil
}

func (s *StaffService) Create(ctx context.Context, in StaffInput) (*models.Profile, error) {
	if !in.Role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]string{"role": "unknown role"})
	}
	if msg := passwordProblem(in.Password); msg != "" {
		return nil, apperrors.NewValidationError("invalid password", map[string]string{"password": msg})
	}
	p := models.Profile{
		Email:     normalizeEmail(in.Email),
		Password:  in.Password,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Role:      in.Role,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, database.MapError(err, "profile")
	}
	return &p, nil
}

// UpdateRole changes a staff member's role. The last PRESIDENT cannot be demoted.
func (s *StaffService) UpdateRole(ctx context.Context, id uint32, role models.StaffRole) (*models.Profile, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]string{"role": "unknown role"})
	}
	var out models.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&out, id).Error; err != nil {
			return err
		}
		if out.Role == role {
			return nil
		}
		if out.Role == models.RolePresident {
			var presidents int64
			if err := tx.Model(&models.Profile{}).Where("role = ?", models.RolePresident).Count(&presidents).Error; err != nil {
				return err
			}
			if presidents <= 1 {
				return apperrors.NewConflictError("At least one PRESIDENT account is required")
			}
		}
		out.Role = role
		return tx.Model(&models.Profile{}).Where("id = ?", id).UpdateColumn("role", role).Error
	})
	if err != nil {
		return nil, database.MapError(err, "profile")
	}
	return &out, nil
}
