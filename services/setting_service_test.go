package services

import (
	"testing"

	"github.com/alpnix/HackAtDavidson/apperrors"
	"github.com/alpnix/HackAtDavidson/models"
)

func TestNormalizeSettingValue(t *testing.T) {
	tests := []struct {
		typ     models.SettingValueType
		raw     string
		want    string
		wantErr bool
	}{
		{models.SettingBoolean, "true", "true", false},
		{models.SettingBoolean, " FALSE ", "false", false},
		{models.SettingBoolean, "1", "true", false},
		{models.SettingBoolean, "yes", "", true},
		{models.SettingNumber, "4", "4", false},
		{models.SettingNumber, "4.50", "4.5", false},
		{models.SettingNumber, "1e3", "1000", false},
		{models.SettingNumber, "four", "", true},
		{models.SettingNumber, "NaN", "", true},
		{models.SettingString, "  Hack@Davidson ", "Hack@Davidson", false},
		{models.SettingValueType("json"), "{}", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeSettingValue(tt.typ, tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizeSettingValue(%s, %q) error = %v", tt.typ, tt.raw, err)
			continue
		}
		if err != nil && !apperrors.IsType(err, apperrors.TypeValidation) {
			t.Errorf("error should be a validation error, got %v", err)
		}
		if got != tt.want {
			t.Errorf("NormalizeSettingValue(%s, %q) = %q, want %q", tt.typ, tt.raw, got, tt.want)
		}
	}
}

func TestTypedValue(t *testing.T) {
	if v := TypedValue(models.Setting{ValueType: models.SettingBoolean, Value: "true"}); v != true {
		t.Errorf("boolean = %v", v)
	}
	if v := TypedValue(models.Setting{ValueType: models.SettingNumber, Value: "2.5"}); v != 2.5 {
		t.Errorf("number = %v", v)
	}
	if v := TypedValue(models.Setting{ValueType: models.SettingString, Value: "x"}); v != "x" {
		t.Errorf("string = %v", v)
	}
}
