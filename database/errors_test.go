package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/jobly/apperror"
)

func TestTranslateErrorUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "companies_pkey"}

	err := TranslateError(pgErr)
	require.True(t, apperror.IsConflict(err))
	require.Contains(t, err.Error(), "companies_pkey")
	require.True(t, errors.Is(err, pgErr))
}

func TestTranslateErrorForeignKeyViolation(t *testing.T) {
	err := TranslateError(&pgconn.PgError{Code: "23503", ConstraintName: "jobs_company_handle_fkey"})
	require.True(t, apperror.IsBadRequest(err))
}

func TestTranslateErrorNotNullViolation(t *testing.T) {
	err := TranslateError(&pgconn.PgError{Code: "23502", ColumnName: "name"})
	require.True(t, apperror.IsBadRequest(err))
	require.Contains(t, err.Error(), `"name"`)
}

func TestTranslateErrorWrappedDriverError(t *testing.T) {
	wrapped := fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := TranslateError(wrapped)
	require.True(t, apperror.IsConflict(err))
}

func TestTranslateErrorPassesThroughUnknownErrors(t *testing.T) {
	cause := errors.New("connection reset")
	require.Same(t, cause, TranslateError(cause))
	require.NoError(t, TranslateError(nil))

	// Other SQLSTATE classes are execution errors, not client errors.
	err := TranslateError(&pgconn.PgError{Code: "42P01"})
	require.Equal(t, apperror.KindInternal, apperror.KindOf(err))
}

func TestIsNoRows(t *testing.T) {
	require.True(t, IsNoRows(sql.ErrNoRows))
	require.True(t, IsNoRows(fmt.Errorf("scan: %w", sql.ErrNoRows)))
	require.False(t, IsNoRows(errors.New("other")))
}
