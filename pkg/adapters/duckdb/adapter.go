// Package duckdb provides a DuckDB database adapter for dbbridge.
package duckdb

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/dbbridge/pkg/adapter"
	"github.com/leapstack-labs/dbbridge/pkg/core"
)

const (
	// DriverName is the database/sql driver the adapter opens.
	DriverName = "duckdb"
	// Package identifies the client library to install when the driver is absent.
	Package = "github.com/marcboeker/go-duckdb"
)

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new DuckDB adapter instance.
func New(opts adapter.Options) *Adapter {
	return &Adapter{BaseSQLAdapter: adapter.NewBase("duckdb", opts)}
}

// Connect opens the embedded engine in process.
// The source is passed to the driver unchanged; an empty source or ":memory:"
// opens an in-memory database.
func (a *Adapter) Connect(ctx context.Context, source string, _ core.ConnectionConfig) error {
	a.Logger.Debug("opening duckdb", slog.String("source", source))
	return a.Open(ctx, DriverName, Package, source)
}

// Execute runs a statement on the pinned connection.
// DuckDB reports a Count row for DDL and DML, so statements classified as
// having no result set are acknowledged without columns.
func (a *Adapter) Execute(ctx context.Context, sqlStr string) (*adapter.Cursor, error) {
	if a.Conn != nil {
		rowset, err := classify(a.Conn, sqlStr)
		if err != nil {
			a.Logger.Debug("statement not classified", slog.String("error", err.Error()))
		} else if !rowset {
			return a.Acknowledge(ctx, sqlStr)
		}
	}
	return a.BaseSQLAdapter.Execute(ctx, sqlStr)
}

// Variant registers the adapter under its tags.
func Variant() adapter.Variant {
	return adapter.Variant{
		Tags: []string{"duckdb"},
		New:  func(opts adapter.Options) adapter.Adapter { return New(opts) },
	}
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
