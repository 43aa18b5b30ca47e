// file: services/registration_query.go
package services

import (
	"strings"

	"gorm.io/gorm"
)

// likeEscape is the escape character used in every LIKE clause. '!' behaves the
// same on PostgreSQL and MySQL, unlike a backslash.
const likeEscape = "!"

var searchColumns = []string{"email", "first_name", "last_name", "school"}

// RegistrationFilter is the dashboard table filter.
type RegistrationFilter struct {
	Query        string
	LevelOfStudy string
	Transport    string
	CheckedIn    *bool
}

// SearchTerms is a parsed search box value.
type SearchTerms struct {
	Term   string
	First  string
	Second string
}

// HasNamePair reports whether the query had at least two tokens.
func (s SearchTerms) HasNamePair() bool {
	return s.First != "" && s.Second != ""
}

// ParseSearch lower-cases and tokenises q. Only the first two tokens are used for name pairs.
func ParseSearch(q string) SearchTerms {
	q = strings.ToLower(strings.TrimSpace(q))
	terms := SearchTerms{Term: q}
	if tokens := strings.Fields(q); len(tokens) >= 2 {
		terms.First, terms.Second = tokens[0], tokens[1]
	}
	return terms
}

// EscapeLike escapes LIKE wildcards in s.
func EscapeLike(s string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return r.Replace(s)
}

func containsPattern(s string) string {
	return "%" + EscapeLike(s) + "%"
}

func likeClause(col string) string {
	return "LOWER(" + col + ") LIKE ? ESCAPE '" + likeEscape + "'"
}

// BuildSearch returns the text predicate for q. ok is false for an empty query.
//
// Every column is matched case-insensitively as a substring. With two or more
// tokens, "First Last" and "Last First" name pairs are also matched.
func BuildSearch(q string) (sql string, args []interface{}, ok bool) {
	return buildTextPredicate(searchColumns, q)
}

func buildTextPredicate(columns []string, q string) (sql string, args []interface{}, ok bool) {
	terms := ParseSearch(q)
	if terms.Term == "" {
		return "", nil, false
	}

	parts := make([]string, 0, len(columns)+2)
	pattern := containsPattern(terms.Term)
	for _, col := range columns {
		parts = append(parts, likeClause(col))
		args = append(args, pattern)
	}

	if terms.HasNamePair() {
		first, second := containsPattern(terms.First), containsPattern(terms.Second)
		pair := "(" + likeClause("first_name") + " AND " + likeClause("last_name") + ")"
		parts = append(parts, pair, pair)
		args = append(args, first, second, second, first)
	}

	return "(" + strings.Join(parts, " OR ") + ")", args, true
}

// Scope applies the filter to a registrations query.
func (f RegistrationFilter) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if sql, args, ok := BuildSearch(f.Query); ok {
			db = db.Where(sql, args...)
		}
		if f.LevelOfStudy != "" {
			db = db.Where("level_of_study = ?", f.LevelOfStudy)
		}
		if f.Transport != "" {
			db = db.Where("airport_transportation = ?", f.Transport)
		}
		if f.CheckedIn != nil {
			db = db.Where("checked_in = ?", *f.CheckedIn)
		}
		return db
	}
}

// NormalizeFilter drops the "all" sentinel used by dashboard dropdowns.
func NormalizeFilter(f RegistrationFilter) RegistrationFilter {
	clean := func(s string) string {
		s = strings.TrimSpace(s)
		if strings.EqualFold(s, "all") {
			return ""
		}
		return s
	}
	f.Query = strings.TrimSpace(f.Query)
	f.LevelOfStudy = clean(f.LevelOfStudy)
	f.Transport = clean(f.Transport)
	return f
}

// ParseCheckedIn maps "true"/"false" to a filter value; anything else means no filter.
func ParseCheckedIn(s string) *bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		v := true
		return &v
	case "false", "0", "no":
		v := false
		return &v
	}
	return nil
}

// registrationOrder is shared by the list and the export so both see the same rows first.
func registrationOrder(db *gorm.DB) *gorm.DB {
	return db.Order("created_at desc").Order("id desc")
}

