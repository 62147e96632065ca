// Package sqlite provides a SQLite database adapter for dbbridge.
//
// The pure-Go modernc.org/sqlite driver is always linked, so this engine is
// available in every build.
package sqlite

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/dbbridge/pkg/adapter"
	"github.com/leapstack-labs/dbbridge/pkg/core"

	_ "modernc.org/sqlite" // sqlite driver
)

const (
	// DriverName is the database/sql driver the adapter opens.
	DriverName = "sqlite"
	// Package identifies the client library backing the driver.
	Package = "modernc.org/sqlite"
)

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
func New(opts adapter.Options) *Adapter {
	return &Adapter{BaseSQLAdapter: adapter.NewBase("sqlite", opts)}
}

// Connect opens the database file, or an in-memory database for ":memory:".
func (a *Adapter) Connect(ctx context.Context, source string, _ core.ConnectionConfig) error {
	if source == "" {
		source = core.MemorySource
	}

	a.Logger.Debug("opening sqlite", slog.String("source", source))
	return a.Open(ctx, DriverName, Package, source)
}

// Variant registers the adapter under its tags.
func Variant() adapter.Variant {
	return adapter.Variant{
		Tags: []string{"sqlite", "sqlite3"},
		New:  func(opts adapter.Options) adapter.Adapter { return New(opts) },
	}
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
