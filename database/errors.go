package database

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gaborage/jobly/apperror"
)

// PostgreSQL error codes the store layer distinguishes. Everything else
// passes through opaquely as an execution error.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
)

// TranslateError maps driver-level constraint violations onto the
// application's error taxonomy. Unique violations become conflicts;
// foreign-key and not-null violations mean the caller referenced a missing
// row or omitted a required value, which is a bad request. Any other error
// is returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return apperror.Conflict("duplicate value violates unique constraint %q", pgErr.ConstraintName).WithCause(err)
		case codeForeignKeyViolation:
			return apperror.BadRequest("referenced row does not exist (constraint %q)", pgErr.ConstraintName).WithCause(err)
		case codeNotNullViolation:
			return apperror.BadRequest("null value not allowed in column %q", pgErr.ColumnName).WithCause(err)
		}
	}

	return err
}

// IsNoRows reports whether err is the driver's no-rows sentinel.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
