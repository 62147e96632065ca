//go:build !noduckdb

package duckdb

import (
	"database/sql"
	"fmt"

	"github.com/marcboeker/go-duckdb"
)

// returnsRows reports whether a statement of type t produces a result set of its own.
func returnsRows(t duckdb.StmtType) bool {
	switch t {
	case duckdb.STATEMENT_TYPE_INSERT,
		duckdb.STATEMENT_TYPE_UPDATE,
		duckdb.STATEMENT_TYPE_DELETE,
		duckdb.STATEMENT_TYPE_CREATE,
		duckdb.STATEMENT_TYPE_CREATE_FUNC,
		duckdb.STATEMENT_TYPE_ALTER,
		duckdb.STATEMENT_TYPE_DROP,
		duckdb.STATEMENT_TYPE_TRANSACTION,
		duckdb.STATEMENT_TYPE_COPY,
		duckdb.STATEMENT_TYPE_EXPORT,
		duckdb.STATEMENT_TYPE_VACUUM,
		duckdb.STATEMENT_TYPE_VARIABLE_SET,
		duckdb.STATEMENT_TYPE_SET,
		duckdb.STATEMENT_TYPE_LOAD,
		duckdb.STATEMENT_TYPE_ATTACH,
		duckdb.STATEMENT_TYPE_DETACH,
		duckdb.STATEMENT_TYPE_PREPARE:
		return false
	default:
		return true
	}
}

// classify prepares sqlStr on the raw driver connection and reports whether
// it returns rows. The driver's non-context Prepare only parses, and rejects
// input holding more than one statement, so nothing is executed here.
func classify(conn *sql.Conn, sqlStr string) (bool, error) {
	rowset := true
	err := conn.Raw(func(driverConn any) error {
		dc, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}
		prepared, err := dc.Prepare(sqlStr)
		if err != nil {
			return err
		}
		defer func() { _ = prepared.Close() }()

		stmt, ok := prepared.(*duckdb.Stmt)
		if !ok {
			return fmt.Errorf("unexpected driver statement %T", prepared)
		}
		t, err := stmt.StatementType()
		if err != nil {
			return err
		}
		rowset = returnsRows(t)
		return nil
	})
	return rowset, err
}
