// file: services/csv_export.go
package services

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alpnix/HackAtDavidson/apperrors"
	"github.com/alpnix/HackAtDavidson/models"
)

// MaxExportRows caps a single export.
const MaxExportRows = 10_000

// ExportColumn is one selectable CSV column.
type ExportColumn struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	value func(models.Registration) string
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

var registrationColumns = []ExportColumn{
	{"id", "ID", func(r models.Registration) string { return strconv.FormatUint(uint64(r.ID), 10) }},
	{"first_name", "First Name", func(r models.Registration) string { return r.FirstName }},
	{"last_name", "Last Name", func(r models.Registration) string { return r.LastName }},
	{"email", "Email", func(r models.Registration) string { return r.Email }},
	{"phone_number", "Phone", func(r models.Registration) string { return r.PhoneNumber }},
	{"age", "Age", func(r models.Registration) string { return strconv.Itoa(r.Age) }},
	{"school", "School", func(r models.Registration) string { return r.School }},
	{"school_other", "School (Other)", func(r models.Registration) string { return r.SchoolOther }},
	{"level_of_study", "Level of Study", func(r models.Registration) string { return string(r.LevelOfStudy) }},
	{"country_of_residence", "Country", func(r models.Registration) string { return r.CountryOfResidence }},
	{"country_other", "Country (Other)", func(r models.Registration) string { return r.CountryOther }},
	{"tshirt_size", "T-Shirt Size", func(r models.Registration) string { return string(r.TShirtSize) }},
	{"dietary_restrictions", "Dietary Restrictions", func(r models.Registration) string { return strings.Join(r.DietaryRestrictions, "; ") }},
	{"allergies_detail", "Allergies", func(r models.Registration) string { return r.AllergiesDetail }},
	{"other_accommodations", "Other Accommodations", func(r models.Registration) string { return r.OtherAccommodations }},
	{"airport_transportation", "Airport Transportation", func(r models.Registration) string { return string(r.AirportTransportation) }},
	{"mlh_marketing", "MLH Marketing", func(r models.Registration) string { return yesNo(r.MLHMarketing) }},
	{"parental_consent", "Parental Consent", func(r models.Registration) string { return yesNo(r.ParentalConsent) }},
	{"additional_notes", "Notes", func(r models.Registration) string { return r.AdditionalNotes }},
	{"has_resume", "Resume", func(r models.Registration) string { return yesNo(r.ResumeKey != "") }},
	{"checked_in", "Checked In", func(r models.Registration) string { return yesNo(r.CheckedIn) }},
	{"checked_in_at", "Checked In At", func(r models.Registration) string { return formatTime(r.CheckedInAt) }},
	{"created_at", "Registered At", func(r models.Registration) string { return formatTime(&r.CreatedAt) }},
}

// DefaultExportColumns is used when the caller selects nothing.
var DefaultExportColumns = []string{
	"id", "first_name", "last_name", "email", "phone_number", "school",
	"level_of_study", "tshirt_size", "checked_in",
}

// ExportColumns lists every selectable column in display order.
func ExportColumns() []ExportColumn {
	out := make([]ExportColumn, len(registrationColumns))
	copy(out, registrationColumns)
	return out
}

// ResolveColumns maps keys to columns in the order given. Empty input selects
// the defaults; unknown and repeated keys are skipped. At least one column must remain.
func ResolveColumns(keys []string) ([]ExportColumn, error) {
	if len(keys) == 0 {
		keys = DefaultExportColumns
	}
	byKey := make(map[string]ExportColumn, len(registrationColumns))
	for _, col := range registrationColumns {
		byKey[col.Key] = col
	}
	seen := make(map[string]bool, len(keys))
	var cols []ExportColumn
	for _, k := range keys {
		k = strings.TrimSpace(k)
		col, ok := byKey[k]
		if !ok || seen[k] {
			continue
		}
		seen[k] = true
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		return nil, apperrors.NewValidationError("select at least one column", map[string]string{"columns": "at least one valid column is required"})
	}
	return cols, nil
}

// RegistrationRecords renders rows under cols, header first.
func RegistrationRecords(cols []ExportColumn, rows []models.Registration) [][]string {
	records := make([][]string, 0, len(rows)+1)
	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col.Label
	}
	records = append(records, header)
	for _, r := range rows {
		rec := make([]string, len(cols))
		for i, col := range cols {
			rec[i] = col.value(r)
		}
		records = append(records, rec)
	}
	return records
}

// WriteCSV writes RFC 4180 records joined by "\n". Fields holding a comma,
// quote or line break are quoted with inner quotes doubled.
func WriteCSV(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}
