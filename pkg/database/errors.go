package database

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ekaya-inc/manpower-engine/pkg/apperrors"
)

// PostgreSQL error codes the repositories react to.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

// IsUniqueViolation reports whether err is a unique-constraint violation.
func IsUniqueViolation(err error) bool {
	return hasCode(err, uniqueViolation)
}

// IsForeignKeyViolation reports whether err is a foreign-key violation.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, foreignKeyViolation)
}

// ClassifyError maps constraint violations onto application errors so callers
// can branch with errors.Is. Other errors are returned unchanged.
func ClassifyError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case uniqueViolation:
		return fmt.Errorf("%w: %s", apperrors.ErrConflict, pgErr.Detail)
	case foreignKeyViolation:
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, pgErr.Detail)
	case checkViolation:
		return fmt.Errorf("%w: violates %s", apperrors.ErrInvalidInput, pgErr.ConstraintName)
	}
	return err
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
