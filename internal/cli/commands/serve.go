package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dbbridge/internal/bridge"
	"github.com/leapstack-labs/dbbridge/internal/cli/config"
	"github.com/leapstack-labs/dbbridge/pkg/envelope"
)

// maxRequestSize bounds a single request line.
const maxRequestSize = 16 * 1024 * 1024

// Request is one line of the serve protocol.
type Request struct {
	Query string `json:"query"`
	Cwd   string `json:"cwd"`
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Answer newline-delimited JSON requests on stdin",
		Long: `Serve requests from a host process.

Each input line is a JSON object {"query": "...", "cwd": "..."}; each
response is one envelope JSON line on stdout, in request order. The
session lives until stdin closes, so the driver recovery is attempted at
most once for the whole session.`,
		Example: `  echo '{"query": "SELECT 1", "cwd": "/tmp"}' | dbbridge serve`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := NewSession(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), session.Bridge, cmd.InOrStdin(), cmd.OutOrStdout(), config.GetLogger(cmd.Context()))
		},
	}
}

func serve(ctx context.Context, b *bridge.Bridge, in io.Reader, out io.Writer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxRequestSize)

	w := bufio.NewWriter(out)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp envelope.Response
		var req Request
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(line, &req); err != nil {
			logger.Debug("invalid request line", slog.Any("error", err))
			resp = envelope.Error(fmt.Sprintf("invalid request: %v", err))
		} else {
			cwd, err := workingDir(req.Cwd)
			if err != nil {
				resp = envelope.Error(err.Error())
			} else {
				resp = b.Handle(ctx, req.Query, cwd)
			}
		}

		if _, err := fmt.Fprintln(w, resp.String()); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read requests: %w", err)
	}
	return nil
}
