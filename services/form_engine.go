// file: services/form_engine.go
package services

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/alpnix/HackAtDavidson/apperrors"
	"github.com/alpnix/HackAtDavidson/models"
	"github.com/alpnix/HackAtDavidson/utils"
)

// ErrFormNotFound is returned for every form that cannot take answers,
// whatever the reason.
var ErrFormNotFound = apperrors.NewNotFoundError("Form not found")

var errInvalidEmail = errors.New("invalid email address")

// fieldKind is the per-type behaviour of a form field.
type fieldKind struct {
	coerce func(raw string) (interface{}, error)
}

var fieldKinds = map[models.FieldType]fieldKind{
	models.FieldText:     {coerce: coerceString},
	models.FieldLongText: {coerce: coerceString},
	models.FieldNumber:   {coerce: coerceNumber},
	models.FieldEmail:    {coerce: coerceEmail},
}

func coerceString(raw string) (interface{}, error) { return raw, nil }

// coerceNumber yields 0 for input that does not parse to a finite number.
func coerceNumber(raw string) (interface{}, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return float64(0), nil
	}
	return f, nil
}

func coerceEmail(raw string) (interface{}, error) {
	v := strings.TrimSpace(raw)
	if err := utils.Validator().Var(v, "email"); err != nil {
		return nil, errInvalidEmail
	}
	return v, nil
}

// ValidFieldType reports whether t is one of the supported field types.
func ValidFieldType(t models.FieldType) bool {
	_, ok := fieldKinds[t]
	return ok
}

// Coerce converts a raw answer to the stored representation for t.
func Coerce(t models.FieldType, raw string) (interface{}, error) {
	k, ok := fieldKinds[t]
	if !ok {
		return nil, errors.New("unknown field type " + string(t))
	}
	return k.coerce(raw)
}

// Acceptance returns nil when form takes submissions at now.
func Acceptance(form *models.Form, now time.Time) error {
	if form == nil || form.Status != models.FormPublished {
		return ErrFormNotFound
	}
	if form.Deadline != nil && !form.Deadline.After(now) {
		return ErrFormNotFound
	}
	return nil
}

// FieldKey is the answer key for a field in submitted and stored data.
func FieldKey(id uint32) string {
	return strconv.FormatUint(uint64(id), 10)
}

// BuildSubmission checks answers against fields and returns the sparse answer
// map keyed by field id. Failures come back as one validation error holding a
// message per field.
func BuildSubmission(fields []models.FormField, values map[string]string) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(fields))
	errs := map[string]string{}
	for _, f := range fields {
		key := FieldKey(f.ID)
		raw := strings.TrimSpace(values[key])
		if raw == "" {
			if f.Required {
				errs[key] = "This field is required"
			}
			continue
		}
		v, err := Coerce(f.FieldType, raw)
		if err != nil {
			errs[key] = "Please enter a valid email address"
			if !errors.Is(err, errInvalidEmail) {
				errs[key] = "Unsupported field"
			}
			continue
		}
		out[key] = v
	}
	if len(errs) > 0 {
		return nil, apperrors.NewValidationError("invalid submission", errs)
	}
	return out, nil
}

var formTransitions = map[models.FormStatus][]models.FormStatus{
	models.FormDraft:     {models.FormPublished},
	models.FormPublished: {models.FormArchived, models.FormOverdue},
	models.FormOverdue:   {models.FormArchived, models.FormPublished},
	models.FormArchived:  {models.FormDraft},
}

// CanTransition reports whether a form may move from one status to another.
func CanTransition(from, to models.FormStatus) bool {
	for _, s := range formTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
