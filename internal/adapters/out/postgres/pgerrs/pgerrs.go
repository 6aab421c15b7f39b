// Package pgerrs maps postgres driver errors onto the errs taxonomy.
package pgerrs

import (
	"errors"

	"dispatch/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes handled by Translate.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// Translate converts serialization failures and deadlocks into a version
// conflict and unique violations into an already-exists error. Other errors
// are returned unchanged.
func Translate(err error, paramName string, id any) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeSerializationFailure, codeDeadlockDetected:
		return errs.NewVersionConflictErrorWithCause(paramName, id, err)
	case codeUniqueViolation:
		return errs.NewObjectAlreadyExistsErrorWithCause(paramName, id, err)
	default:
		return err
	}
}
