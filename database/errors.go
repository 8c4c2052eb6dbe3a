package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE classes the executor treats as transient write conflicts.
const (
	pgDeadlockDetected     = "40P01"
	pgSerializationFailure = "40001"
)

// Constraint-violation classes repositories translate into domain errors.
const (
	PgCheckViolation  = "23514"
	PgUniqueViolation = "23505"
)

// IsWriteConflict reports whether err is a deadlock or serialization failure,
// the class of error the executor retries transparently.
func IsWriteConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgDeadlockDetected || pgErr.Code == pgSerializationFailure
	}
	return false
}

// IsConstraintViolation reports whether err carries the given SQLSTATE code.
func IsConstraintViolation(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}
