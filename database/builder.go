package database

import (
	"github.com/Masterminds/squirrel"
)

// Builder constructs static SQL statements with PostgreSQL placeholder
// numbering. Dynamic SET and WHERE clauses come from the fragment package;
// the Builder covers the fixed-shape statements around them.
type Builder struct {
	sb squirrel.StatementBuilderType
}

// NewBuilder creates a statement builder configured for PostgreSQL
// ($1, $2, ... placeholders).
func NewBuilder() *Builder {
	return &Builder{
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Select creates a SELECT builder for the given columns.
func (b *Builder) Select(columns ...string) squirrel.SelectBuilder {
	return b.sb.Select(columns...)
}

// Insert creates an INSERT builder for the table with pre-specified columns.
func (b *Builder) Insert(table string, columns ...string) squirrel.InsertBuilder {
	return b.sb.Insert(table).Columns(columns...)
}

// Update creates an UPDATE builder for the table.
func (b *Builder) Update(table string) squirrel.UpdateBuilder {
	return b.sb.Update(table)
}

// Delete creates a DELETE builder for the table.
func (b *Builder) Delete(table string) squirrel.DeleteBuilder {
	return b.sb.Delete(table)
}
