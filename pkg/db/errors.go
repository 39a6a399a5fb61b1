package db

import (
	"strings"

	pkgerrors "github.com/naijagasonline/ngo-storefront/pkg/errors"
)

// sqliteDataErrors are driver messages for rows SQLite refuses on content.
var sqliteDataErrors = []string{
	"NOT NULL constraint failed",
	"CHECK constraint failed",
	"FOREIGN KEY constraint failed",
	"has no column named",
	"no such column",
}

// IsDataError reports whether err means the row itself was refused: a
// Postgres data exception (class 22), an integrity violation other than
// unique (class 23), an unknown column or a type mismatch. Retrying the
// same row cannot succeed.
func IsDataError(err error) bool {
	if err == nil || IsUniqueViolation(err) {
		return false
	}
	if code := pkgerrors.Dump(err).PGCode; code != "" {
		switch {
		case strings.HasPrefix(code, "22"), strings.HasPrefix(code, "23"):
			return true
		case code == "42703", code == "42804":
			return true
		}
		return false
	}
	msg := err.Error()
	for _, fragment := range sqliteDataErrors {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// IsUniqueViolation reports whether err is a unique-constraint failure from
// Postgres (typed pgconn/pq errors or driver text) or SQLite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if pkgerrors.IsUniqueViolation(err) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
