// Package shaper executes a preprocessed request and shapes its result.
//
// Every result is first read through a peek window of PeekSize rows. More than
// LargeThreshold rows marks the result large, which decides for every output
// mode whether it travels inline or through a spooled file. Rows beyond the
// window are pulled in batches of BatchSize so memory stays bounded for
// exports.
package shaper

import (
	"context"
	"log/slog"
	"os"

	"github.com/leapstack-labs/dbbridge/internal/query"
	"github.com/leapstack-labs/dbbridge/pkg/adapter"
	"github.com/leapstack-labs/dbbridge/pkg/core"
	"github.com/leapstack-labs/dbbridge/pkg/envelope"
)

// Window and batching constants.
const (
	PeekSize       = 1001
	LargeThreshold = 1000
	BatchSize      = 1000
	MaxInlineLines = 50
)

// Fixed messages and pagers.
const (
	AckMessage     = "Query executed successfully."
	NoResults      = "No results."
	ZeroRowsLine   = "(0 rows returned)"
	DefaultPager   = "less -S"
	ExportPager    = "cat"
	tempFilePrefix = "dbbridge_"
)

// Options configure a Shaper.
type Options struct {
	// TempDir receives spooled files. Empty uses the OS default.
	TempDir string
	// Pager is suggested for spooled tables. Empty uses DefaultPager.
	Pager  string
	Logger *slog.Logger
}

// Shaper runs jobs and turns their results into responses.
type Shaper struct {
	tempDir string
	pager   string
	logger  *slog.Logger
}

// New creates a shaper.
func New(opts Options) *Shaper {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Pager == "" {
		opts.Pager = DefaultPager
	}
	return &Shaper{tempDir: opts.TempDir, pager: opts.Pager, logger: opts.Logger}
}

// Job is one request bound to the adapter that will serve it.
type Job struct {
	Adapter adapter.Adapter
	Source  string
	Params  core.ConnectionConfig
	Request query.Request
	// Cwd resolves relative output paths.
	Cwd string
}

// Run connects, executes and shapes the result. The adapter is closed exactly
// once before Run returns, whatever the outcome.
func (s *Shaper) Run(ctx context.Context, job Job) (resp envelope.Response, err error) {
	defer func() {
		if cerr := job.Adapter.Close(); cerr != nil {
			s.logger.Debug("failed to close adapter", slog.Any("error", cerr))
		}
	}()

	if err := job.Adapter.Connect(ctx, job.Source, job.Params); err != nil {
		return envelope.Response{}, err
	}

	cursor, err := job.Adapter.Execute(ctx, job.Request.SQL)
	if err != nil {
		return envelope.Response{}, err
	}
	if !cursor.HasColumns() {
		return envelope.Print(AckMessage), nil
	}

	win, err := peek(cursor)
	if err != nil {
		return envelope.Response{}, err
	}
	s.logger.Debug("result window",
		slog.Int("peeked", len(win.rows)),
		slog.Bool("large", win.large))

	req := job.Request
	if !req.Exporting() {
		return s.table(win, req.NoLimit)
	}
	format := csvFormat
	if req.JSON {
		format = jsonFormat
	}
	return s.export(win, format, req.Output, job.Cwd)
}

func (s *Shaper) createTemp(ext string) (*os.File, error) {
	f, err := os.CreateTemp(s.tempDir, tempFilePrefix+"*"+ext)
	if err != nil {
		return nil, &core.IOError{Op: "failed to create temp file", Err: err}
	}
	return f, nil
}
