// Package bridge ties the components together into a request handler.
//
// A Bridge is a long-lived session: it owns the adapter registry, the driver
// catalog and the one-shot recovery hook, so the hook's guard persists across
// requests. Every failure is converted into an envelope here and nowhere else.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/leapstack-labs/dbbridge/internal/config"
	"github.com/leapstack-labs/dbbridge/internal/drivers"
	"github.com/leapstack-labs/dbbridge/internal/heal"
	"github.com/leapstack-labs/dbbridge/internal/query"
	"github.com/leapstack-labs/dbbridge/internal/shaper"
	"github.com/leapstack-labs/dbbridge/pkg/adapter"
	"github.com/leapstack-labs/dbbridge/pkg/adapters"
	"github.com/leapstack-labs/dbbridge/pkg/envelope"
)

// PagerEnv names the variable holding the user's pager preference.
const PagerEnv = "PAGER"

// ErrEmptyQuery is reported when nothing is left to run after preprocessing.
var ErrEmptyQuery = errors.New("empty query")

// Options configure a Bridge. Zero values select the production defaults.
type Options struct {
	Logger *slog.Logger
	// Defaults is the static defaults object. Nil means none.
	Defaults *config.Defaults
	// Env is the process environment snapshot.
	Env config.Source
	// Home bounds the .env walk and hosts the default data directory.
	Home string
	// Catalog tracks driver search directories. Nil creates an empty one.
	Catalog *drivers.Catalog
	// Registry maps DB_TYPE tags to adapters. Nil builds the full registry
	// over Catalog.
	Registry *adapter.Registry
	// Locator finds extra driver directories. Nil uses the login shell.
	Locator heal.Locator
	// TempDir receives spooled result files.
	TempDir string
	// Pager overrides the PAGER preference for spooled tables.
	Pager string
}

// Bridge handles requests one at a time. It is not safe for concurrent use.
type Bridge struct {
	logger   *slog.Logger
	resolver *config.Resolver
	defaults *config.Defaults
	registry *adapter.Registry
	catalog  *drivers.Catalog
	hook     *heal.Hook
	shaper   *shaper.Shaper
}

// New creates a bridge session.
func New(opts Options) *Bridge {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Env == nil {
		opts.Env = config.MapSource{}
	}
	if opts.Catalog == nil {
		opts.Catalog = drivers.NewCatalog(opts.Logger)
	}
	if opts.Registry == nil {
		opts.Registry = adapters.NewRegistry(adapter.Options{Logger: opts.Logger, Drivers: opts.Catalog})
	}
	if opts.Locator == nil {
		opts.Locator = heal.NewShellLocator()
	}
	if opts.Pager == "" {
		if v, ok := opts.Env.Lookup(PagerEnv); ok && v != "" {
			opts.Pager = v
		}
	}

	resolver := &config.Resolver{
		Env:      opts.Env,
		Defaults: opts.Defaults,
		Home:     opts.Home,
		Logger:   opts.Logger,
	}
	sh := shaper.New(shaper.Options{
		TempDir: opts.TempDir,
		Pager:   opts.Pager,
		Logger:  opts.Logger,
	})

	return &Bridge{
		logger:   opts.Logger,
		resolver: resolver,
		defaults: opts.Defaults,
		registry: opts.Registry,
		catalog:  opts.Catalog,
		hook:     heal.NewHook(opts.Locator, opts.Catalog, opts.Logger),
		shaper:   sh,
	}
}

// Handle runs one raw request from the working directory cwd.
func (b *Bridge) Handle(ctx context.Context, raw, cwd string) (resp envelope.Response) {
	logger := b.logger.With(slog.String("request_id", uuid.NewString()))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("request panicked", slog.Any("panic", r))
			resp = envelope.FromError(fmt.Errorf("%v", r))
		}
	}()

	resp, err := b.handle(ctx, raw, cwd, logger)
	if err != nil {
		logger.Debug("request failed", slog.Any("error", err))
		return envelope.FromError(err)
	}
	if !resp.OK() {
		logger.Debug("request answered with error",
			slog.String("status", resp.Status),
			slog.String("message", resp.Message))
		return resp
	}
	logger.Debug("request done", slog.String("action", resp.Action))
	return resp
}

func (b *Bridge) handle(ctx context.Context, raw, cwd string, logger *slog.Logger) (envelope.Response, error) {
	res := b.resolver.Resolve(cwd)
	req := query.Preprocess(raw, b.defaults.Queries())
	if req.SQL == "" {
		return envelope.Error(ErrEmptyQuery.Error()), nil
	}

	logger.Debug("handling request",
		slog.String("type", res.Config.Type()),
		slog.Bool("json", req.JSON),
		slog.Bool("csv", req.CSV),
		slog.Bool("no_limit", req.NoLimit))

	return heal.Run(ctx, b.hook, func(ctx context.Context) (envelope.Response, error) {
		a, err := b.registry.New(res.Config.Type())
		if err != nil {
			return envelope.Response{}, err
		}
		return b.shaper.Run(ctx, shaper.Job{
			Adapter: a,
			Source:  res.Config.Source(),
			Params:  res.Config,
			Request: req,
			Cwd:     cwd,
		})
	})
}

// Resolve returns the connection config that a request from cwd would use.
func (b *Bridge) Resolve(cwd string) *config.Resolution {
	return b.resolver.Resolve(cwd)
}

// SearchDirs returns the driver search directories known so far.
func (b *Bridge) SearchDirs() []string {
	return b.catalog.SearchDirs()
}
