// Package sqlgen renders query DSL structures to SQL for the supported
// database dialects using squirrel.
package sqlgen

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Dialect holds the SQL differences between supported databases.
type Dialect struct {
	Name        string
	Placeholder sq.PlaceholderFormat
	QuoteChar   string
	// NativeILike selects ILIKE for case-insensitive matching instead of
	// LOWER(x) LIKE LOWER(?).
	NativeILike bool
}

// Supported dialects.
var (
	SQLite   = Dialect{Name: "sqlite", Placeholder: sq.Question, QuoteChar: `"`}
	Postgres = Dialect{Name: "postgres", Placeholder: sq.Dollar, QuoteChar: `"`, NativeILike: true}
	MySQL    = Dialect{Name: "mysql", Placeholder: sq.Question, QuoteChar: "`"}
)

// DialectFor resolves a dialect from a dialect or database/sql driver name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	}
	return Dialect{}, fmt.Errorf("unsupported SQL dialect %q", name)
}

// Quote quotes a possibly qualified identifier: offer.venueId becomes
// "offer"."venueId". A "*" part is left untouched.
func (d Dialect) Quote(ident string) string {
	parts := strings.Split(ident, ".")
	for i, part := range parts {
		if part == "*" {
			continue
		}
		parts[i] = d.QuoteChar + strings.ReplaceAll(part, d.QuoteChar, d.QuoteChar+d.QuoteChar) + d.QuoteChar
	}
	return strings.Join(parts, ".")
}
