//go:build !nomysql

// This file links the MySQL driver into the binary.
// Build with -tags nomysql to leave it out.

package mysql

import (
	_ "github.com/go-sql-driver/mysql" // registers the "mysql" driver
)
