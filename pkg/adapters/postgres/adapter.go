// Package postgres provides a PostgreSQL database adapter for dbbridge.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/dbbridge/pkg/adapter"
	"github.com/leapstack-labs/dbbridge/pkg/core"
)

const (
	// DriverName is the database/sql driver the adapter opens.
	DriverName = "pgx"
	// Package identifies the client library to install when the driver is absent.
	Package = "github.com/jackc/pgx/v5"
)

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new PostgreSQL adapter instance.
// If opts.Logger is nil, a discard logger is used.
func New(opts adapter.Options) *Adapter {
	return &Adapter{BaseSQLAdapter: adapter.NewBase("postgres", opts)}
}

// Connect establishes a connection to PostgreSQL.
// A source carrying a URL scheme is used verbatim as the connection string.
func (a *Adapter) Connect(ctx context.Context, source string, params core.ConnectionConfig) error {
	dsn := source
	if !strings.Contains(source, "://") {
		dsn = buildPostgresDSN(params)
	}

	a.Logger.Debug("connecting to postgres",
		slog.String("host", params[core.KeyHost]),
		slog.String("database", params[core.KeyName]))

	return a.Open(ctx, DriverName, Package, dsn)
}

// buildPostgresDSN constructs a PostgreSQL key=value connection string.
func buildPostgresDSN(params core.ConnectionConfig) string {
	host := params[core.KeyHost]
	if host == "" {
		host = "localhost"
	}

	port := params[core.KeyPort]
	if port == "" {
		port = "5432"
	}

	dsn := fmt.Sprintf("host=%s port=%s", quoteValue(host), quoteValue(port))

	if name := params[core.KeyName]; name != "" {
		dsn += fmt.Sprintf(" dbname=%s", quoteValue(name))
	}
	dsn += " sslmode=disable"

	if user := params[core.KeyUser]; user != "" {
		dsn += fmt.Sprintf(" user=%s", quoteValue(user))
	}
	if pass := params[core.KeyPass]; pass != "" {
		dsn += fmt.Sprintf(" password=%s", quoteValue(pass))
	}

	return dsn
}

// quoteValue quotes a key=value parameter when it would not survive unquoted.
func quoteValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// Variant registers the adapter under its tags.
func Variant() adapter.Variant {
	return adapter.Variant{
		Tags: []string{"postgres", "postgresql", "pg"},
		New:  func(opts adapter.Options) adapter.Adapter { return New(opts) },
	}
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
