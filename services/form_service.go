// file: services/form_service.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/alpnix/HackAtDavidson/apperrors"
	"github.com/alpnix/HackAtDavidson/database"
	"github.com/alpnix/HackAtDavidson/models"
	"github.com/alpnix/HackAtDavidson/utils"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const (
	// MaxFormFields bounds the number of fields one form can carry.
	MaxFormFields = 50
	qrDefaultSize = 512
)

// FormInput carries editable form metadata.
type FormInput struct {
	Title       string
	Description string
	Deadline    *time.Time
}

// FieldInput is one field in a replace-all save, in display order.
type FieldInput struct {
	Label       string
	FieldType   models.FieldType
	Placeholder string
	Required    bool
}

type FormService struct {
	db      *gorm.DB
	storage Storage
	baseURL string
	now     func() time.Time
}

func NewFormService(db *gorm.DB, storage Storage, publicBaseURL string) *FormService {
	return &FormService{db: db, storage: storage, baseURL: strings.TrimRight(publicBaseURL, "/"), now: time.Now}
}

func orderedFields(db *gorm.DB) *gorm.DB {
	return db.Order("position asc").Order("id asc")
}

func (s *FormService) List(ctx context.Context, status string, p utils.PageParams) ([]models.Form, utils.PageMeta, error) {
	q := s.db.WithContext(ctx).Model(&models.Form{})
	if status = strings.ToUpper(strings.TrimSpace(status)); status != "" && status != "ALL" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, utils.PageMeta{}, database.MapError(err, "form")
	}
	var rows []models.Form
	if err := q.Order("created_at desc").Order("id desc").
		Offset(p.Offset()).Limit(p.Limit()).
		Find(&rows).Error; err != nil {
		return nil, utils.PageMeta{}, database.MapError(err, "form")
	}
	return rows, utils.BuildMeta(total, p), nil
}

// Get loads a form with its fields in display order, regardless of status.
func (s *FormService) Get(ctx context.Context, id uint32) (*models.Form, error) {
	var f models.Form
	if err := s.db.WithContext(ctx).Preload("Fields", orderedFields).First(&f, id).Error; err != nil {
		return nil, database.MapError(err, "form")
	}
	return &f, nil
}

// Public loads a form for answering. Anything not accepting answers is reported
// as not found.
func (s *FormService) Public(ctx context.Context, id uint32) (*models.Form, error) {
	f, err := s.Get(ctx, id)
	if apperrors.IsType(err, apperrors.TypeNotFound) {
		return nil, ErrFormNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := Acceptance(f, s.now()); err != nil {
		return nil, err
	}
	return f, nil
}

func validateFormInput(in FormInput) error {
	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		return apperrors.NewValidationError("invalid form", map[string]string{"title": "Title is required"})
	case len(title) > 200:
		return apperrors.NewValidationError("invalid form", map[string]string{"title": "must be at most 200 characters"})
	}
	return nil
}

func (s *FormService) Create(ctx context.Context, in FormInput, authorID uint32) (*models.Form, error) {
	if err := validateFormInput(in); err != nil {
		return nil, err
	}
	f := models.Form{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Deadline:    in.Deadline,
		Status:      models.FormDraft,
		CreatedBy:   &authorID,
	}
	if err := s.db.WithContext(ctx).Create(&f).Error; err != nil {
		return nil, database.MapError(err, "form")
	}
	return &f, nil
}

func (s *FormService) Update(ctx context.Context, id uint32, in FormInput) (*models.Form, error) {
	if err := validateFormInput(in); err != nil {
		return nil, err
	}
	res := s.db.WithContext(ctx).Model(&models.Form{ID: id}).Select("title", "description", "deadline").Updates(models.Form{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Deadline:    in.Deadline,
	})
	if res.Error != nil {
		return nil, database.MapError(res.Error, "form")
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NewNotFoundError("form not found")
	}
	return s.Get(ctx, id)
}

// ReplaceFields swaps the whole field list of a form. Positions follow the input order.
func (s *FormService) ReplaceFields(ctx context.Context, id uint32, in []FieldInput) (*models.Form, error) {
	if len(in) > MaxFormFields {
		return nil, apperrors.NewValidationError("too many fields", map[string]string{"fields": "at most " + strconv.Itoa(MaxFormFields) + " fields"})
	}
	fields := make([]models.FormField, 0, len(in))
	errs := map[string]string{}
	for i, f := range in {
		label := strings.TrimSpace(f.Label)
		key := fmt.Sprintf("fields[%d]", i)
		if label == "" {
			errs[key+".label"] = "Label is required"
		}
		if !ValidFieldType(f.FieldType) {
			errs[key+".field_type"] = "must be one of: text number email long_text"
		}
		fields = append(fields, models.FormField{
			FormID:      id,
			Position:    i,
			Label:       label,
			FieldType:   f.FieldType,
			Placeholder: strings.TrimSpace(f.Placeholder),
			Required:    f.Required,
		})
	}
	if len(errs) > 0 {
		return nil, apperrors.NewValidationError("invalid fields", errs)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var form models.Form
		if err := lockForUpdate(tx).First(&form, id).Error; err != nil {
			return err
		}
		if err := tx.Where("form_id = ?", id).Delete(&models.FormField{}).Error; err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		return tx.Create(&fields).Error
	})
	if err != nil {
		return nil, database.MapError(err, "form")
	}
	return s.Get(ctx, id)
}

// Transition moves a form to another status. Reopening an overdue form needs
// a deadline in the future, or none at all.
func (s *FormService) Transition(ctx context.Context, id uint32, to models.FormStatus, deadline *time.Time) (*models.Form, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var form models.Form
		if err := lockForUpdate(tx).First(&form, id).Error; err != nil {
			return err
		}
		if !CanTransition(form.Status, to) {
			return apperrors.NewConflictError(fmt.Sprintf("cannot move form from %s to %s", form.Status, to))
		}
		updates := map[string]interface{}{"status": to}
		if deadline != nil {
			updates["deadline"] = deadline
			form.Deadline = deadline
		}
		if to == models.FormPublished && form.Deadline != nil && !form.Deadline.After(s.now()) {
			return apperrors.NewValidationError("deadline has passed", map[string]string{"deadline": "must be in the future"})
		}
		return tx.Model(&form).Updates(updates).Error
	})
	if err != nil {
		return nil, database.MapError(err, "form")
	}
	return s.Get(ctx, id)
}

func (s *FormService) Delete(ctx context.Context, id uint32) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("form_id = ?", id).Delete(&models.FormSubmission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("form_id = ?", id).Delete(&models.FormField{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Form{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return database.MapError(err, "form")
}

// Submit validates answers against the form's fields and stores them.
func (s *FormService) Submit(ctx context.Context, id uint32, values map[string]string) (*models.FormSubmission, error) {
	form, err := s.Public(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := BuildSubmission(form.Fields, values)
	if err != nil {
		return nil, err
	}
	sub := models.FormSubmission{FormID: form.ID, Data: data}
	if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
		return nil, database.MapError(err, "submission")
	}
	return &sub, nil
}

func (s *FormService) Submissions(ctx context.Context, id uint32, p utils.PageParams) ([]models.FormSubmission, utils.PageMeta, error) {
	var total int64
	q := s.db.WithContext(ctx).Model(&models.FormSubmission{}).Where("form_id = ?", id)
	if err := q.Count(&total).Error; err != nil {
		return nil, utils.PageMeta{}, database.MapError(err, "submission")
	}
	var rows []models.FormSubmission
	if err := q.Order("created_at desc").Order("id desc").
		Offset(p.Offset()).Limit(p.Limit()).
		Find(&rows).Error; err != nil {
		return nil, utils.PageMeta{}, database.MapError(err, "submission")
	}
	return rows, utils.BuildMeta(total, p), nil
}

// ExportSubmissions renders every submission as CSV records, one column per
// field labelled by the field label plus the submission time.
func (s *FormService) ExportSubmissions(ctx context.Context, id uint32) (*models.Form, [][]string, error) {
	form, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	var rows []models.FormSubmission
	if err := s.db.WithContext(ctx).Where("form_id = ?", id).
		Order("created_at asc").Order("id asc").
		Limit(MaxExportRows).
		Find(&rows).Error; err != nil {
		return nil, nil, database.MapError(err, "submission")
	}
	return form, SubmissionRecords(form.Fields, rows), nil
}

// SubmissionRecords lays submissions out under the given fields, header first.
func SubmissionRecords(fields []models.FormField, rows []models.FormSubmission) [][]string {
	header := make([]string, 0, len(fields)+1)
	header = append(header, "Submitted At")
	for _, f := range fields {
		header = append(header, f.Label)
	}
	records := make([][]string, 0, len(rows)+1)
	records = append(records, header)
	for _, r := range rows {
		rec := make([]string, 0, len(fields)+1)
		rec = append(rec, formatTime(&r.CreatedAt))
		for _, f := range fields {
			rec = append(rec, answerString(r.Data[FieldKey(f.ID)]))
		}
		records = append(records, rec)
	}
	return records
}

func answerString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// PublicURL is the link participants open to answer the form.
func (s *FormService) PublicURL(id uint32) string {
	return s.baseURL + "/forms/" + strconv.FormatUint(uint64(id), 10)
}

// QRCode renders the public link of a form as a PNG.
func (s *FormService) QRCode(ctx context.Context, id uint32, size int) ([]byte, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if size <= 0 || size > 2048 {
		size = qrDefaultSize
	}
	png, err := QRCodePNG(s.PublicURL(id), size)
	if err != nil {
		return nil, apperrors.NewSystemError("qr code generation failed", err)
	}
	return png, nil
}

func (s *FormService) UploadCover(ctx context.Context, id uint32, up *Upload) (*models.Form, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	url, err := storeCover(ctx, s.storage, BucketFormCovers, fmt.Sprintf("form-%d", id), up)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Form{ID: id}).Update("cover_url", url).Error; err != nil {
		return nil, database.MapError(err, "form")
	}
	return s.Get(ctx, id)
}

// MarkOverdue moves every published form whose deadline has passed to OVERDUE.
func (s *FormService) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Form{}).
		Where("status = ? AND deadline IS NOT NULL AND deadline <= ?", models.FormPublished, now).
		Update("status", models.FormOverdue)
	return res.RowsAffected, res.Error
}

// StartOverdueSweeper runs MarkOverdue every minute until ctx is done.
func StartOverdueSweeper(ctx context.Context, forms *FormService) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc("@every 1m", func() {
		runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		n, err := forms.MarkOverdue(runCtx, time.Now())
		if err != nil {
			slog.Error("overdue form sweep failed", "error", err)
			return
		}
		if n > 0 {
			slog.Info("forms marked overdue", "count", n)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return c, nil
}
