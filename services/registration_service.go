// file: services/registration_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/alpnix/HackAtDavidson/apperrors"
	"github.com/alpnix/HackAtDavidson/database"
	"github.com/alpnix/HackAtDavidson/models"
	"github.com/alpnix/HackAtDavidson/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxResumeBytes bounds resume uploads.
const MaxResumeBytes = 5 << 20

var resumeTypes = map[string]bool{".pdf": true, ".doc": true, ".docx": true}

// Upload is a file received from a multipart request.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type RegistrationService struct {
	db       *gorm.DB
	settings *SettingService
	storage  Storage
	mailer   Mailer
	stats    *StatsService
	members  *MembershipIndex
}

func NewRegistrationService(db *gorm.DB, settings *SettingService, storage Storage, mailer Mailer, stats *StatsService, members *MembershipIndex) *RegistrationService {
	return &RegistrationService{db: db, settings: settings, storage: storage, mailer: mailer, stats: stats, members: members}
}

// List returns one page of registrations matching f, newest first.
func (s *RegistrationService) List(ctx context.Context, f RegistrationFilter, p utils.PageParams) ([]models.Registration, utils.PageMeta, error) {
	var total int64
	base := s.db.WithContext(ctx).Model(&models.Registration{}).Scopes(f.Scope())
	if err := base.Count(&total).Error; err != nil {
		return nil, utils.PageMeta{}, database.MapError(err, "registration")
	}

	var rows []models.Registration
	if err := s.db.WithContext(ctx).Scopes(f.Scope(), registrationOrder).
		Offset(p.Offset()).Limit(p.Limit()).
		Find(&rows).Error; err != nil {
		return nil, utils.PageMeta{}, database.MapError(err, "registration")
	}
	return rows, utils.BuildMeta(total, p), nil
}

// Export re-runs f without pagination. truncated reports that more than MaxExportRows matched.
func (s *RegistrationService) Export(ctx context.Context, f RegistrationFilter) (rows []models.Registration, truncated bool, err error) {
	if err := s.db.WithContext(ctx).Scopes(f.Scope(), registrationOrder).
		Limit(MaxExportRows + 1).
		Find(&rows).Error; err != nil {
		return nil, false, database.MapError(err, "registration")
	}
	if len(rows) > MaxExportRows {
		return rows[:MaxExportRows], true, nil
	}
	return rows, false, nil
}

func (s *RegistrationService) Get(ctx context.Context, id uint32) (*models.Registration, error) {
	var reg models.Registration
	if err := s.db.WithContext(ctx).First(&reg, id).Error; err != nil {
		return nil, database.MapError(err, "registration")
	}
	return &reg, nil
}

// Create stores a registration. Public submissions are refused while
// REGISTRATION_OPEN is false. A resume, when given, is stored before the row and
// removed again if the insert fails.
func (s *RegistrationService) Create(ctx context.Context, reg *models.Registration, resume *Upload, public bool) error {
	if public {
		if err := s.settings.RequireOpen(ctx, models.SettingRegistrationOpen, true, "Registrations are closed"); err != nil {
			return err
		}
	}
	reg.ID = 0
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))
	reg.CheckedIn, reg.CheckedInAt, reg.CheckedInBy = false, nil, nil

	var exists int64
	if err := s.db.WithContext(ctx).Model(&models.Registration{}).Where("email = ?", reg.Email).Count(&exists).Error; err != nil {
		return database.MapError(err, "registration")
	}
	if exists > 0 {
		return apperrors.NewDuplicateError("A registration with this email already exists", nil)
	}

	if resume != nil {
		key, err := s.storeResume(ctx, reg.Email, resume)
		if err != nil {
			return err
		}
		reg.ResumeKey = key
	}

	if err := s.db.WithContext(ctx).Create(reg).Error; err != nil {
		if reg.ResumeKey != "" {
			s.deleteResume(reg.ResumeKey)
			reg.ResumeKey = ""
		}
		if database.IsUniqueViolation(err) {
			return apperrors.NewDuplicateError("A registration with this email already exists", err)
		}
		return database.MapError(err, "registration")
	}

	s.stats.Invalidate(ctx)
	if public {
		SendAsync(s.mailer, Mail{
			To:      reg.Email,
			Subject: "We received your registration",
			Body: fmt.Sprintf("Hi %s,\n\nThanks for registering! We'll be in touch with event details soon.\n",
				reg.FirstName),
		}, 30*time.Second)
	}
	return nil
}

func (s *RegistrationService) storeResume(ctx context.Context, email string, up *Upload) (string, error) {
	if up.Size > MaxResumeBytes {
		return "", apperrors.NewValidationError("resume too large", map[string]string{"resume": "must be 5MB or smaller"})
	}
	ext := strings.ToLower(filepath.Ext(up.Filename))
	if !resumeTypes[ext] {
		return "", apperrors.NewValidationError("unsupported resume type", map[string]string{"resume": "must be a PDF or Word document"})
	}
	key := utils.UploadKey(email, up.Filename, time.Now())
	body := io.LimitReader(up.Body, MaxResumeBytes+1)
	obj, err := s.storage.Put(ctx, BucketResumes, key, body, up.ContentType)
	if err != nil {
		return "", apperrors.NewSystemError("resume upload failed", err)
	}
	if obj.Size > MaxResumeBytes {
		s.deleteResume(key)
		return "", apperrors.NewValidationError("resume too large", map[string]string{"resume": "must be 5MB or smaller"})
	}
	return key, nil
}

func (s *RegistrationService) deleteResume(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.storage.Delete(ctx, BucketResumes, key); err != nil {
		slog.Warn("delete resume failed", "key", key, "error", err)
	}
}

// CheckIn marks a participant as arrived. Checking in twice is a no-op and
// reports changed=false.
func (s *RegistrationService) CheckIn(ctx context.Context, id, staffID uint32) (reg *models.Registration, changed bool, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r models.Registration
		if err := lockForUpdate(tx).First(&r, id).Error; err != nil {
			return err
		}
		reg = &r
		if r.CheckedIn {
			return nil
		}
		now := time.Now()
		if err := tx.Model(&r).Updates(map[string]interface{}{
			"checked_in":    true,
			"checked_in_at": now,
			"checked_in_by": staffID,
		}).Error; err != nil {
			return err
		}
		r.CheckedIn, r.CheckedInAt, r.CheckedInBy = true, &now, &staffID
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, database.MapError(err, "registration")
	}
	if changed {
		s.stats.Invalidate(ctx)
	}
	return reg, changed, nil
}

// UndoCheckIn clears check-in state.
func (s *RegistrationService) UndoCheckIn(ctx context.Context, id uint32) (*models.Registration, error) {
	res := s.db.WithContext(ctx).Model(&models.Registration{}).Where("id = ?", id).
		Updates(map[string]interface{}{"checked_in": false, "checked_in_at": nil, "checked_in_by": nil})
	if res.Error != nil {
		return nil, database.MapError(res.Error, "registration")
	}
	s.stats.Invalidate(ctx)
	return s.Get(ctx, id)
}

// Delete removes a registration, its project memberships and its resume.
func (s *RegistrationService) Delete(ctx context.Context, id uint32) error {
	var reg models.Registration
	var hadMembership bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&reg, id).Error; err != nil {
			return err
		}
		res := tx.Where("registration_id = ?", id).Delete(&models.ProjectMember{})
		if res.Error != nil {
			return res.Error
		}
		hadMembership = res.RowsAffected > 0
		return tx.Delete(&reg).Error
	})
	if err != nil {
		return database.MapError(err, "registration")
	}
	if reg.ResumeKey != "" {
		s.deleteResume(reg.ResumeKey)
	}
	if hadMembership {
		s.members.Notify(ctx, OpDelete, 0)
	}
	s.stats.Invalidate(ctx)
	return nil
}

// OpenResume streams the stored resume of a registration.
func (s *RegistrationService) OpenResume(ctx context.Context, id uint32) (io.ReadCloser, string, error) {
	reg, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if reg.ResumeKey == "" {
		return nil, "", apperrors.NewNotFoundError("No resume uploaded")
	}
	rc, err := s.storage.Open(ctx, BucketResumes, reg.ResumeKey)
	if errors.Is(err, ErrObjectNotFound) {
		return nil, "", apperrors.NewNotFoundError("Resume file is missing")
	}
	if err != nil {
		return nil, "", apperrors.NewSystemError("open resume failed", err)
	}
	name := utils.Slugify(reg.FullName(), 60) + "-resume" + filepath.Ext(reg.ResumeKey)
	return rc, name, nil
}

// lockForUpdate adds SELECT ... FOR UPDATE.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
