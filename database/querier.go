// Package database provides the query-execution collaborator for the store
// layer: a PostgreSQL connection with per-statement tracking, a statement
// builder for static SQL, and translation of driver constraint violations
// into the application's error taxonomy.
package database

import (
	"context"
	"database/sql"
)

// Querier defines the core query execution operations the store layer
// depends on. It is satisfied by *Connection and is small enough to mock
// directly in tests.
//
// Statements use PostgreSQL placeholders ($1, $2, ...). Callers own the
// returned rows and must close them.
type Querier interface {
	// Query executes a statement that returns rows, typically a SELECT.
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)

	// QueryRow executes a statement expected to return at most one row.
	// Errors are deferred until the row's Scan is called.
	QueryRow(ctx context.Context, query string, args ...any) *sql.Row

	// Exec executes a statement that returns no rows, typically INSERT,
	// UPDATE, or DELETE.
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
}
