package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	dbconfig "github.com/leapstack-labs/dbbridge/internal/config"
	"github.com/leapstack-labs/dbbridge/pkg/core"
)

const passwordMask = "********"

// NewConfigCommand creates the config command.
func NewConfigCommand() *cobra.Command {
	var cwd string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the resolved connection config",
		Long: `Resolve the connection config for a working directory and show where
every value came from: the nearest .env file, the environment, the defaults
file or a built-in fallback. The password is masked.`,
		Example: `  dbbridge config
  dbbridge config --cwd ~/project`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := workingDir(cwd)
			if err != nil {
				return err
			}
			session, err := NewSession(cmd)
			if err != nil {
				return err
			}
			return renderResolution(cmd.OutOrStdout(), session.Bridge.Resolve(dir), session.Defaults)
		},
	}

	cmd.Flags().StringVar(&cwd, "cwd", "", "Working directory to resolve from")

	return cmd
}

// renderResolution writes a resolved config as a table.
func renderResolution(w io.Writer, res *dbconfig.Resolution, defaults *dbconfig.Defaults) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Key", "Value", "Source", "Variable"})

	for _, key := range core.CanonicalKeys {
		value, ok := res.Config.Get(key)
		if !ok {
			t.AppendRow(table.Row{key, "", "unset", ""})
			continue
		}
		if key == core.KeyPass && value != "" {
			value = passwordMask
		}
		origin := res.Origins[key]
		t.AppendRow(table.Row{key, value, origin.Source, origin.Name})
	}
	t.Render()

	envFile := res.EnvFile
	if envFile == "" {
		envFile = "(none)"
	}
	defaultsFile := defaults.Path()
	if defaultsFile == "" {
		defaultsFile = "(none)"
	}
	_, _ = fmt.Fprintf(w, "env file: %s\n", envFile)
	_, _ = fmt.Fprintf(w, "defaults: %s\n", defaultsFile)
	return nil
}
