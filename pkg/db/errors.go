package db

import "strings"

// IsUniqueViolation reports whether the provided error references a unique
// constraint violation. Both the Postgres and SQLite phrasings are matched.
// When constraintName is provided, the helper looks for it in the message.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}
