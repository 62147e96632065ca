package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/leapstack-labs/dbbridge/pkg/core"
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Open, Execute and Close implementations.
type BaseSQLAdapter struct {
	DB      *sql.DB
	Conn    *sql.Conn
	Logger  *slog.Logger
	Drivers DriverRequirer

	// Backend names the engine in connection errors.
	Backend string

	cursor *Cursor
	closed bool
}

// NewBase returns a base adapter for backend configured from opts.
func NewBase(backend string, opts Options) BaseSQLAdapter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return BaseSQLAdapter{
		Backend: backend,
		Logger:  logger.With("adapter", backend),
		Drivers: opts.Drivers,
	}
}

// Open requires the driver, opens a single-connection pool and pins that
// connection to this adapter.
func (b *BaseSQLAdapter) Open(ctx context.Context, driverName, pkg, dsn string) error {
	if err := b.require(driverName, pkg); err != nil {
		return err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return &core.ConnectionError{Backend: b.Backend, Err: err}
	}
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return &core.ConnectionError{Backend: b.Backend, Err: err}
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		_ = db.Close()
		return &core.ConnectionError{Backend: b.Backend, Err: err}
	}

	b.DB = db
	b.Conn = conn
	b.logger().Debug("connected", slog.String("driver", driverName))
	return nil
}

func (b *BaseSQLAdapter) require(driverName, pkg string) error {
	if b.Drivers != nil {
		return b.Drivers.Require(driverName, pkg)
	}
	if slices.Contains(sql.Drivers(), driverName) {
		return nil
	}
	return &core.MissingDriverError{Driver: driverName, Package: pkg}
}

// Execute runs a statement on the pinned connection.
// Statements without a result set are drained so they take effect, and
// produce a cursor without columns.
func (b *BaseSQLAdapter) Execute(ctx context.Context, sqlStr string) (*Cursor, error) {
	return b.run(ctx, sqlStr, true)
}

// Acknowledge runs a statement that has no result set of its own.
// Any summary rows the driver reports for it are drained and discarded.
func (b *BaseSQLAdapter) Acknowledge(ctx context.Context, sqlStr string) (*Cursor, error) {
	return b.run(ctx, sqlStr, false)
}

func (b *BaseSQLAdapter) run(ctx context.Context, sqlStr string, keepRows bool) (*Cursor, error) {
	if b.Conn == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	if b.cursor != nil {
		_ = b.cursor.Close()
		b.cursor = nil
	}

	//nolint:rowserrcheck // rows.Err() is checked by the cursor after iteration completes
	rows, err := b.Conn.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, &core.QueryError{Err: err}
	}

	columns, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, &core.QueryError{Err: err}
	}

	if !keepRows || len(columns) == 0 {
		for rows.Next() {
		}
		err := rows.Err()
		_ = rows.Close()
		if err != nil {
			return nil, &core.QueryError{Err: err}
		}
		b.cursor = NewCursor(nil, nil)
		return b.cursor, nil
	}

	b.cursor = NewCursor(rows, columns)
	return b.cursor, nil
}

// Close releases the cursor, the pinned connection and the pool.
func (b *BaseSQLAdapter) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	if b.cursor != nil {
		errs = append(errs, b.cursor.Close())
		b.cursor = nil
	}
	if b.Conn != nil {
		errs = append(errs, b.Conn.Close())
		b.Conn = nil
	}
	if b.DB != nil {
		b.logger().Debug("closing database connection")
		errs = append(errs, b.DB.Close())
		b.DB = nil
	}
	return errors.Join(errs...)
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.Conn != nil
}

// Name returns the backend tag.
func (b *BaseSQLAdapter) Name() string {
	return b.Backend
}

func (b *BaseSQLAdapter) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Logger
}
