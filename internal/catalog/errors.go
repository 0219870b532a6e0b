package catalog

import (
	"errors"

	"modernc.org/sqlite"
)

// ErrDuplicateSourceJob indicates a product already exists for the same
// source job and subfolder. Callers treat this as an idempotency signal,
// not a failure.
var ErrDuplicateSourceJob = errors.New("product already exists for source job")

const sqliteConstraintUnique = 2067

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqliteConstraintUnique
	}
	return false
}
