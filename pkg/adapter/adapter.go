// Package adapter provides the database adapter contract used by dbbridge.
//
// An Adapter owns exactly one backend connection and at most one open cursor
// for the lifetime of a single request. Concrete adapter implementations are
// in pkg/adapters/ subdirectories; pkg/adapters assembles them into a Registry.
package adapter

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/dbbridge/pkg/core"
)

// Adapter defines the interface that all database adapters must implement.
type Adapter interface {
	// Connect opens the backend connection.
	// Fails with *core.ConnectionError or *core.MissingDriverError.
	Connect(ctx context.Context, source string, params core.ConnectionConfig) error

	// Execute runs one statement and returns its cursor.
	// Fails with *core.QueryError.
	Execute(ctx context.Context, sql string) (*Cursor, error)

	// Close releases the cursor and connection. Safe to call more than once
	// and on a handle that never connected.
	Close() error

	// Name returns the canonical backend tag.
	Name() string
}

// DriverRequirer makes a database/sql driver available to the process,
// returning *core.MissingDriverError when it cannot.
type DriverRequirer interface {
	Require(driver, pkg string) error
}

// Options are passed to every adapter factory.
type Options struct {
	Logger  *slog.Logger
	Drivers DriverRequirer
}

// Factory constructs an unconnected adapter.
type Factory func(Options) Adapter

// Variant binds a factory to the tags it answers to.
type Variant struct {
	Tags []string
	New  Factory
}
