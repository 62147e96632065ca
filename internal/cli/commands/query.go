package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dbbridge/pkg/envelope"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Cwd string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [text...]",
		Short: "Run one request and print its response",
		Long: `Run a single request and print the response envelope as JSON.

The request text is SQL or a saved query name, optionally followed by
--json, --csv, --no-limit and --output <path>. Everything after "--" is
passed through untouched. With no arguments the request is read from stdin.`,
		Example: `  # Table view
  dbbridge query -- SELECT * FROM users

  # Export to a file relative to the project
  dbbridge query --cwd ~/project -- SELECT * FROM users --csv --output users.csv

  # Saved query from the defaults file
  dbbridge query -- active_users --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Cwd, "cwd", "", "Working directory the request is made from")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	raw := strings.Join(args, " ")
	if len(args) == 0 {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		raw = string(content)
	}

	cwd, err := workingDir(opts.Cwd)
	if err != nil {
		return err
	}

	// Setup failures are answered with an envelope too.
	var resp envelope.Response
	session, err := NewSession(cmd)
	if err != nil {
		resp = envelope.FromError(err)
	} else {
		resp = session.Bridge.Handle(cmd.Context(), raw, cwd)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), resp.String())
	return nil
}
