//go:build noduckdb

package duckdb

import (
	"database/sql"
	"errors"
)

// Without the driver linked there is nothing to classify with.
func classify(*sql.Conn, string) (bool, error) {
	return true, errors.New("duckdb driver not linked")
}
