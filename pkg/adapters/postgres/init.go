//go:build !nopostgres

// This file links the pgx database/sql driver into the binary.
// Build with -tags nopostgres to leave it out.

package postgres

import (
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
)
