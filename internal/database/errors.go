package database

import (
	"strings"
)

// IsUniqueViolation reports whether err is a unique-constraint failure.
// Covers the postgres and sqlite drivers; both surface the constraint in
// the error text.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
