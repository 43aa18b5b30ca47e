package services

import (
	"reflect"
	"strings"
	"testing"

	"github.com/alpnix/HackAtDavidson/models"
)

func TestParseSearch(t *testing.T) {
	tests := []struct {
		in   string
		want SearchTerms
	}{
		{"", SearchTerms{}},
		{"   ", SearchTerms{}},
		{"Ada", SearchTerms{Term: "ada"}},
		{"  Ada   Lovelace ", SearchTerms{Term: "ada   lovelace", First: "ada", Second: "lovelace"}},
		{"Ada King Lovelace", SearchTerms{Term: "ada king lovelace", First: "ada", Second: "king"}},
	}
	for _, tt := range tests {
		if got := ParseSearch(tt.in); got != tt.want {
			t.Errorf("ParseSearch(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestBuildSearchEmptyQueryHasNoFilter(t *testing.T) {
	if sql, args, ok := BuildSearch("  "); ok || sql != "" || args != nil {
		t.Errorf("BuildSearch(blank) = %q, %v, %v", sql, args, ok)
	}
}

func TestBuildSearchSingleToken(t *testing.T) {
	sql, args, ok := BuildSearch("Davidson")
	if !ok {
		t.Fatal("expected a predicate")
	}
	if strings.Contains(sql, "AND") {
		t.Errorf("single token must not add name pairs: %s", sql)
	}
	for _, col := range []string{"email", "first_name", "last_name", "school"} {
		if !strings.Contains(sql, "LOWER("+col+") LIKE ?") {
			t.Errorf("missing %s clause in %s", col, sql)
		}
	}
	want := []interface{}{"%davidson%", "%davidson%", "%davidson%", "%davidson%"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("args = %v", args)
	}
}

func TestBuildSearchNamePairsBothOrders(t *testing.T) {
	sql, args, ok := BuildSearch("Ada Lovelace")
	if !ok {
		t.Fatal("expected a predicate")
	}
	if got := strings.Count(sql, "LIKE ?"); got != 8 {
		t.Errorf("LIKE count = %d in %s", got, sql)
	}
	if got := strings.Count(sql, " AND "); got != 2 {
		t.Errorf("AND count = %d in %s", got, sql)
	}
	if len(args) != 8 {
		t.Fatalf("args = %v", args)
	}
	pairs := args[4:]
	want := []interface{}{"%ada%", "%lovelace%", "%lovelace%", "%ada%"}
	if !reflect.DeepEqual(pairs, want) {
		t.Errorf("pair args = %v, want %v", pairs, want)
	}
}

func TestEscapeLike(t *testing.T) {
	tests := map[string]string{
		"100%":  "100!%",
		"a_b":   "a!_b",
		"wow!":  "wow!!",
		"plain": "plain",
	}
	for in, want := range tests {
		if got := EscapeLike(in); got != want {
			t.Errorf("EscapeLike(%q) = %q, want %q", in, got, want)
		}
	}
	_, args, _ := BuildSearch("50%")
	if args[0] != "%50!%%" {
		t.Errorf("wildcards in user input must be escaped, got %v", args[0])
	}
}

func TestFilterScopeSQL(t *testing.T) {
	db := dryRunDB(t)
	checked := true
	f := RegistrationFilter{
		Query:        "ada lovelace",
		LevelOfStudy: string(models.LevelJunior),
		Transport:    string(models.TransportMaybe),
		CheckedIn:    &checked,
	}
	var rows []models.Registration
	stmt := db.Scopes(f.Scope(), registrationOrder).Find(&rows).Statement
	sql := stmt.SQL.String()

	for _, frag := range []string{
		`FROM "registrations"`,
		"LOWER(email) LIKE",
		"ESCAPE '!'",
		"level_of_study = ",
		"airport_transportation = ",
		"checked_in = ",
		"ORDER BY created_at desc,id desc",
	} {
		if !strings.Contains(sql, frag) {
			t.Errorf("SQL missing %q:\n%s", frag, sql)
		}
	}
	if len(stmt.Vars) != 8+3 {
		t.Errorf("vars = %v", stmt.Vars)
	}
	wantVars := []interface{}{"%ada lovelace%", string(models.LevelJunior), string(models.TransportMaybe), true}
	for _, w := range wantVars {
		found := false
		for _, v := range stmt.Vars {
			if reflect.DeepEqual(v, w) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("vars %v missing %v", stmt.Vars, w)
		}
	}
}

func TestFilterScopeNoFilters(t *testing.T) {
	db := dryRunDB(t)
	var rows []models.Registration
	sql := db.Scopes(RegistrationFilter{}.Scope()).Find(&rows).Statement.SQL.String()
	if strings.Contains(sql, "WHERE") {
		t.Errorf("empty filter produced a WHERE clause: %s", sql)
	}
}

func TestNormalizeFilterAndCheckedIn(t *testing.T) {
	f := NormalizeFilter(RegistrationFilter{Query: "  x ", LevelOfStudy: "all", Transport: "ALL"})
	if f.Query != "x" || f.LevelOfStudy != "" || f.Transport != "" {
		t.Errorf("NormalizeFilter() = %+v", f)
	}
	if v := ParseCheckedIn("true"); v == nil || !*v {
		t.Error("true not parsed")
	}
	if v := ParseCheckedIn("false"); v == nil || *v {
		t.Error("false not parsed")
	}
	if ParseCheckedIn("all") != nil {
		t.Error("all should mean no filter")
	}
}
