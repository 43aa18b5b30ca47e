package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alpnix/HackAtDavidson/apperrors"
	"github.com/alpnix/HackAtDavidson/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func TestAcceptance(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		form *models.Form
		ok   bool
	}{
		{"missing", nil, false},
		{"draft", &models.Form{Status: models.FormDraft}, false},
		{"archived", &models.Form{Status: models.FormArchived}, false},
		{"overdue", &models.Form{Status: models.FormOverdue, Deadline: &future}, false},
		{"published no deadline", &models.Form{Status: models.FormPublished}, true},
		{"published future deadline", &models.Form{Status: models.FormPublished, Deadline: &future}, true},
		{"published past deadline", &models.Form{Status: models.FormPublished, Deadline: &past}, false},
		{"deadline exactly now", &models.Form{Status: models.FormPublished, Deadline: &now}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Acceptance(tt.form, now)
			if tt.ok && err != nil {
				t.Fatalf("want accepted, got %v", err)
			}
			if !tt.ok {
				if err != ErrFormNotFound {
					t.Fatalf("want ErrFormNotFound, got %v", err)
				}
				if err.(*apperrors.AppError).Message != "Form not found" {
					t.Errorf("message = %q", err.(*apperrors.AppError).Message)
				}
			}
		})
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		typ     models.FieldType
		raw     string
		want    interface{}
		wantErr bool
	}{
		{models.FieldText, "hello", "hello", false},
		{models.FieldLongText, "a\nb", "a\nb", false},
		{models.FieldNumber, "42.5", 42.5, false},
		{models.FieldNumber, "abc", float64(0), false},
		{models.FieldNumber, "NaN", float64(0), false},
		{models.FieldNumber, "Infinity", float64(0), false},
		{models.FieldNumber, "-inf", float64(0), false},
		{models.FieldEmail, "ada@example.com", "ada@example.com", false},
		{models.FieldEmail, "not-an-email", nil, true},
		{models.FieldType("date"), "2026-01-01", nil, true},
	}
	for _, tt := range tests {
		got, err := Coerce(tt.typ, tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("Coerce(%s, %q) err = %v", tt.typ, tt.raw, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("Coerce(%s, %q) = %#v, want %#v", tt.typ, tt.raw, got, tt.want)
		}
	}
}

func TestBuildSubmission(t *testing.T) {
	fields := []models.FormField{
		{ID: 1, Label: "Name", FieldType: models.FieldText, Required: true},
		{ID: 2, Label: "Age", FieldType: models.FieldNumber},
		{ID: 3, Label: "Email", FieldType: models.FieldEmail},
		{ID: 4, Label: "Notes", FieldType: models.FieldLongText},
	}

	data, err := BuildSubmission(fields, map[string]string{
		"1": "  Ada  ",
		"2": "twenty",
		"4": "   ",
		"9": "ignored",
	})
	if err != nil {
		t.Fatalf("BuildSubmission: %v", err)
	}
	if data["1"] != "Ada" {
		t.Errorf("name = %#v", data["1"])
	}
	if data["2"] != float64(0) {
		t.Errorf("age = %#v", data["2"])
	}
	for _, k := range []string{"3", "4", "9"} {
		if _, ok := data[k]; ok {
			t.Errorf("key %s should be absent", k)
		}
	}

	_, err = BuildSubmission(fields, map[string]string{"1": "   ", "3": "nope"})
	appErr, ok := apperrors.As(err)
	if !ok {
		t.Fatalf("want AppError, got %v", err)
	}
	if appErr.Fields["1"] != "This field is required" {
		t.Errorf("field 1 error = %q", appErr.Fields["1"])
	}
	if !strings.Contains(appErr.Fields["3"], "valid email") {
		t.Errorf("field 3 error = %q", appErr.Fields["3"])
	}
}

func TestBuildSubmissionNonFiniteNumbersAreStorable(t *testing.T) {
	fields := []models.FormField{{ID: 1, Label: "Score", FieldType: models.FieldNumber}}
	for _, raw := range []string{"NaN", "Infinity", "-Infinity", "1e999"} {
		data, err := BuildSubmission(fields, map[string]string{"1": raw})
		if err != nil {
			t.Fatalf("BuildSubmission(%q): %v", raw, err)
		}
		if data["1"] != float64(0) {
			t.Errorf("%q coerced to %#v, want 0", raw, data["1"])
		}
		if _, err := datatypes.JSONMap(data).Value(); err != nil {
			t.Errorf("%q: JSONMap.Value: %v", raw, err)
		}
	}
}

func TestCanTransition(t *testing.T) {
	allowed := map[[2]models.FormStatus]bool{
		{models.FormDraft, models.FormPublished}:    true,
		{models.FormPublished, models.FormArchived}: true,
		{models.FormPublished, models.FormOverdue}:  true,
		{models.FormOverdue, models.FormArchived}:   true,
		{models.FormOverdue, models.FormPublished}:  true,
		{models.FormArchived, models.FormDraft}:     true,
	}
	all := []models.FormStatus{models.FormDraft, models.FormPublished, models.FormOverdue, models.FormArchived}
	for _, from := range all {
		for _, to := range all {
			if got := CanTransition(from, to); got != allowed[[2]models.FormStatus{from, to}] {
				t.Errorf("CanTransition(%s, %s) = %v", from, to, got)
			}
		}
	}
}

func TestSubmissionRecords(t *testing.T) {
	fields := []models.FormField{
		{ID: 1, Label: "Name"},
		{ID: 2, Label: "Age"},
	}
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	rows := []models.FormSubmission{
		{CreatedAt: at, Data: map[string]interface{}{"1": "Ada, L.", "2": float64(36)}},
		{CreatedAt: at, Data: map[string]interface{}{"2": float64(1.5)}},
	}
	recs := SubmissionRecords(fields, rows)
	if len(recs) != 3 {
		t.Fatalf("records = %d", len(recs))
	}
	if strings.Join(recs[0], "|") != "Submitted At|Name|Age" {
		t.Errorf("header = %v", recs[0])
	}
	if recs[1][1] != "Ada, L." || recs[1][2] != "36" {
		t.Errorf("row 1 = %v", recs[1])
	}
	if recs[2][1] != "" || recs[2][2] != "1.5" {
		t.Errorf("row 2 = %v", recs[2])
	}
}

func TestMarkOverdueSQL(t *testing.T) {
	db := dryRunDB(t)
	var sql string
	var vars []interface{}
	if err := db.Callback().Update().After("gorm:update").Register("test:capture", func(tx *gorm.DB) {
		sql = tx.Statement.SQL.String()
		vars = tx.Statement.Vars
	}); err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if _, err := NewFormService(db, nil, "").MarkOverdue(context.Background(), now); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sql, `UPDATE "forms" SET "status"=$1`) {
		t.Errorf("sql = %s", sql)
	}
	if !strings.Contains(sql, "deadline IS NOT NULL AND deadline <=") {
		t.Errorf("sql = %s", sql)
	}
	if len(vars) == 0 || vars[0] != models.FormOverdue {
		t.Errorf("vars = %v", vars)
	}
}

func TestFormPublicURL(t *testing.T) {
	svc := NewFormService(nil, nil, "https://hackatdavidson.com/")
	if got := svc.PublicURL(12); got != "https://hackatdavidson.com/forms/12" {
		t.Errorf("PublicURL = %q", got)
	}
}
