package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/jobly/config"
	"github.com/gaborage/jobly/logger"
)

func newMockConnection(t *testing.T, threshold time.Duration) (*Connection, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return New(db, logger.FromZerolog(zerolog.Nop()), threshold), mock
}

func TestConnectionQuery(t *testing.T) {
	conn, mock := newMockConnection(t, 200*time.Millisecond)

	mock.ExpectQuery("SELECT 1").
		WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))

	rows, err := conn.Query(context.Background(), "SELECT 1")
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	var one int
	require.NoError(t, rows.Scan(&one))
	require.Equal(t, 1, one)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectionQueryRow(t *testing.T) {
	conn, mock := newMockConnection(t, 200*time.Millisecond)

	mock.ExpectQuery("SELECT name FROM companies WHERE handle = $1").
		WithArgs("anderson").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Anderson LLC"))

	var name string
	err := conn.QueryRow(context.Background(), "SELECT name FROM companies WHERE handle = $1", "anderson").Scan(&name)
	require.NoError(t, err)
	require.Equal(t, "Anderson LLC", name)
}

func TestConnectionExec(t *testing.T) {
	conn, mock := newMockConnection(t, 200*time.Millisecond)

	mock.ExpectExec("DELETE FROM jobs WHERE id = $1").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := conn.Exec(context.Background(), "DELETE FROM jobs WHERE id = $1", int64(1))
	require.NoError(t, err)

	affected, err := result.RowsAffected()
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)
}

func TestConnectionHealth(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	conn := New(db, logger.FromZerolog(zerolog.Nop()), 0)

	mock.ExpectPing()
	require.NoError(t, conn.Health(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildDSN(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		Username: "jobly",
		Password: "s3cret pass",
		Database: "jobly",
		SSLMode:  "require",
	}

	dsn := buildDSN(cfg)
	require.Equal(t, "host=db.internal port=5432 user=jobly password='s3cret pass' dbname=jobly sslmode=require", dsn)
}

func TestBuildDSNConnectionStringOverride(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:             "ignored",
		ConnectionString: "postgres://jobly@db/jobly",
	}

	require.Equal(t, "postgres://jobly@db/jobly", buildDSN(cfg))
}

func TestQuoteDSN(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "''"},
		{"plain", "plain"},
		{"dotted.host-1_x", "dotted.host-1_x"},
		{"needs space", "'needs space'"},
		{`back\slash`, `'back\\slash'`},
		{"quo'te", `'quo\'te'`},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, quoteDSN(tc.in), "input %q", tc.in)
	}
}

func TestTruncateQuery(t *testing.T) {
	short := "SELECT 1"
	require.Equal(t, short, truncateQuery(short))

	long := make([]byte, maxLoggedQueryLength+10)
	for i := range long {
		long[i] = 'a'
	}
	truncated := truncateQuery(string(long))
	require.Len(t, truncated, maxLoggedQueryLength+3)
	require.Equal(t, "...", truncated[maxLoggedQueryLength:])
}
