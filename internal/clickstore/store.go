// Package clickstore provides read access to the clickstream SQLite
// database: guarded ad-hoc queries, schema inspection, and row sampling.
// The store treats the database as read-only; import happens out of band.
package clickstore

import (
	"context"
)

// Column describes one column of a known table.
type Column struct {
	Name     string
	Type     string
	Nullable bool
}

// Result is a tabular query result: ordered named columns, ordered rows.
type Result struct {
	Columns   []string
	Rows      [][]interface{}
	ElapsedMs float64
	Truncated bool
}

// RowCount returns the number of rows in the result.
func (r *Result) RowCount() int {
	return len(r.Rows)
}

// ClickStore defines the interface for reading the clickstream database.
type ClickStore interface {
	// Initialize opens the store at the given database path.
	Initialize(dbPath string) error

	// Close closes the store and releases any resources.
	Close() error

	// Query executes a read-only SQL statement, capping the result at
	// maxRows. Statements containing write keywords are rejected before
	// execution.
	Query(ctx context.Context, sql string, maxRows int) (*Result, error)

	// TableSchema returns the columns of a known table.
	TableSchema(ctx context.Context, table string) ([]Column, error)

	// SampleData returns the first n rows of a known table in
	// store-native order.
	SampleData(ctx context.Context, table string, n int) (*Result, error)

	// Tables returns the known-tables set, sorted.
	Tables() []string
}
