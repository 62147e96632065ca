package adapter

import (
	"database/sql"
	"fmt"
)

// Cursor streams the rows of one executed statement.
// A cursor without columns belongs to a statement that returns no rows.
type Cursor struct {
	rows    *sql.Rows
	columns []string
	done    bool
}

// NewCursor wraps rows. Passing nil rows yields an empty, column-less cursor.
func NewCursor(rows *sql.Rows, columns []string) *Cursor {
	return &Cursor{rows: rows, columns: columns, done: rows == nil}
}

// Columns returns the result column names, or nil for DDL/DML statements.
func (c *Cursor) Columns() []string {
	return c.columns
}

// HasColumns reports whether the statement produced column metadata.
func (c *Cursor) HasColumns() bool {
	return len(c.columns) > 0
}

// FetchMany returns up to n rows. An empty slice means the cursor is exhausted.
// Byte slices are converted to strings so callers never see driver buffers.
func (c *Cursor) FetchMany(n int) ([][]any, error) {
	if c.done || n <= 0 {
		return nil, nil
	}

	out := make([][]any, 0, min(n, 1024))
	for len(out) < n {
		if !c.rows.Next() {
			c.done = true
			if err := c.rows.Err(); err != nil {
				return out, fmt.Errorf("failed to fetch rows: %w", err)
			}
			if err := c.rows.Close(); err != nil {
				return out, fmt.Errorf("failed to close rows: %w", err)
			}
			break
		}

		values := make([]any, len(c.columns))
		ptrs := make([]any, len(c.columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := c.rows.Scan(ptrs...); err != nil {
			return out, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		out = append(out, values)
	}
	return out, nil
}

// Close releases the underlying rows. Safe to call more than once.
func (c *Cursor) Close() error {
	c.done = true
	if c.rows == nil {
		return nil
	}
	rows := c.rows
	c.rows = nil
	return rows.Close()
}
