package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

// SQLSTATE codes the repositories translate into domain errors.
var sqlStateErrors = map[string]error{
	"23505": domain.ErrAlreadyExists, // unique_violation
	"23503": domain.ErrNotFound,      // foreign_key_violation
	"23514": domain.ErrValidation,    // check_violation
	"23502": domain.ErrValidation,    // not_null_violation
	"22P02": domain.ErrValidation,    // invalid_text_representation
	"40001": domain.ErrConflict,      // serialization_failure
	"40P01": domain.ErrConflict,      // deadlock_detected
}

// MapError translates a pgx error for entity/id into a domain error.
//
// Context cancellation passes through unchanged so callers can tell a
// timeout from a storage failure. Check and not-null violations become a
// *domain.ValidationError naming the column or constraint. Everything
// unrecognised wraps domain.ErrStorage and keeps the driver error.
func MapError(err error, entity string, id any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %v: %w", entity, id, err)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", entity, id, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		sentinel, ok := sqlStateErrors[pgErr.Code]
		if ok && sentinel == domain.ErrValidation {
			return fmt.Errorf("%s %v: %w", entity, id, domain.NewValidationError(offendingField(pgErr), pgErr.Message))
		}
		if ok {
			return fmt.Errorf("%s %v: %w", entity, id, sentinel)
		}
	}

	return fmt.Errorf("%s %v: %w: %w", entity, id, domain.ErrStorage, err)
}

func offendingField(pgErr *pgconn.PgError) string {
	switch {
	case pgErr.ColumnName != "":
		return pgErr.ColumnName
	case pgErr.ConstraintName != "":
		return pgErr.ConstraintName
	default:
		return "value"
	}
}
