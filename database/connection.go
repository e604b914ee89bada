package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/gaborage/jobly/config"
	"github.com/gaborage/jobly/logger"
)

const (
	connectTimeout = 10 * time.Second

	// maxLoggedQueryLength caps the statement text attached to log events.
	maxLoggedQueryLength = 1000
)

// Connection implements Querier over database/sql with the pgx driver.
// Every statement is timed; statements slower than the configured threshold
// are logged at warn level.
type Connection struct {
	db            *sql.DB
	log           logger.Logger
	slowThreshold time.Duration
}

var _ Querier = (*Connection)(nil)

// Connect opens a PostgreSQL connection pool from the configuration and
// verifies it with a ping.
func Connect(cfg *config.DatabaseConfig, log logger.Logger) (*Connection, error) {
	pgxConfig, err := pgx.ParseConfig(buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse PostgreSQL config: %w", err)
	}

	db := stdlib.OpenDB(*pgxConfig)
	db.SetMaxOpenConns(int(cfg.MaxConns))
	db.SetMaxIdleConns(int(cfg.MaxIdleConns))
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Failed to close database connection after ping failure")
		}
		return nil, fmt.Errorf("failed to ping PostgreSQL database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("Connected to PostgreSQL database")

	return New(db, log, cfg.SlowQueryThreshold), nil
}

// New wraps an existing *sql.DB. Tests use this to inject a sqlmock-backed
// handle.
func New(db *sql.DB, log logger.Logger, slowThreshold time.Duration) *Connection {
	return &Connection{
		db:            db,
		log:           log,
		slowThreshold: slowThreshold,
	}
}

// Query executes a statement that returns rows.
func (c *Connection) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := c.db.QueryContext(ctx, query, args...)
	c.track(query, start, err)
	return rows, err
}

// QueryRow executes a statement expected to return at most one row.
func (c *Connection) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := c.db.QueryRowContext(ctx, query, args...)
	c.track(query, start, nil)
	return row
}

// Exec executes a statement that returns no rows.
func (c *Connection) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := c.db.ExecContext(ctx, query, args...)
	c.track(query, start, err)
	return result, err
}

// Close releases the underlying connection pool.
func (c *Connection) Close() error {
	return c.db.Close()
}

// Health verifies the pool can still reach the database.
func (c *Connection) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Connection) track(query string, start time.Time, err error) {
	elapsed := time.Since(start)

	event := c.log.Debug()
	if err != nil {
		event = c.log.Error().Err(err)
	} else if c.slowThreshold > 0 && elapsed >= c.slowThreshold {
		event = c.log.Warn()
	}

	event.
		Str("query", truncateQuery(query)).
		Dur("elapsed", elapsed).
		Msg("database statement")
}

func truncateQuery(query string) string {
	if len(query) <= maxLoggedQueryLength {
		return query
	}
	return query[:maxLoggedQueryLength] + "..."
}

// buildDSN assembles a libpq-style DSN from the configuration. An explicit
// connection string wins over the individual fields.
func buildDSN(cfg *config.DatabaseConfig) string {
	if cfg.ConnectionString != "" {
		return cfg.ConnectionString
	}

	parts := []string{
		fmt.Sprintf("host=%s", quoteDSN(cfg.Host)),
		fmt.Sprintf("port=%d", cfg.Port),
		fmt.Sprintf("user=%s", quoteDSN(cfg.Username)),
		fmt.Sprintf("password=%s", quoteDSN(cfg.Password)),
		fmt.Sprintf("dbname=%s", quoteDSN(cfg.Database)),
	}

	if cfg.SSLMode != "" {
		parts = append(parts, fmt.Sprintf("sslmode=%s", cfg.SSLMode))
	}

	return strings.Join(parts, " ")
}

// quoteDSN quotes a DSN value according to libpq rules: empty values become
// '', and values containing characters outside [A-Za-z0-9._-] are escaped
// and wrapped in single quotes.
func quoteDSN(value string) string {
	if value == "" {
		return "''"
	}

	needsQuoting := strings.ContainsFunc(value, func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') &&
			(r < '0' || r > '9') && r != '.' && r != '_' && r != '-'
	})
	if !needsQuoting {
		return value
	}

	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `'`, `\'`)

	return "'" + escaped + "'"
}
