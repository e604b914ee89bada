package store

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/jobly/database"
	"github.com/gaborage/jobly/logger"
)

// newMockDB wires a sqlmock handle through the real connection wrapper so
// store tests exercise the same execution path as production code. Queries
// are matched on exact SQL text to pin the generated statements.
func newMockDB(t *testing.T) (*database.Connection, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return database.New(db, testLogger(), 200*time.Millisecond), mock
}

func testLogger() logger.Logger {
	return logger.FromZerolog(zerolog.Nop())
}
