package sqlite

import "strings"

// isUniqueViolation reports whether the driver error stems from a primary key
// or unique index violation. modernc.org/sqlite does not export typed
// constraint errors, so the SQLite message text is the stable signal.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: UNIQUE")
}
