//go:build !noduckdb

// This file links the DuckDB driver into the binary.
// Build with -tags noduckdb to leave it out; the adapter then reports a
// missing driver unless a plugin providing it can be loaded at runtime.

package duckdb

import (
	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)
