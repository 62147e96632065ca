package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/dbbridge/internal/cli/config"
	dbconfig "github.com/leapstack-labs/dbbridge/internal/config"
	"github.com/leapstack-labs/dbbridge/internal/heal"
	"github.com/leapstack-labs/dbbridge/pkg/envelope"
)

const (
	replPrompt      = "dbbridge> "
	historyFileName = "history"
)

var (
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

// PagerFunc shows a spooled file with the suggested pager.
type PagerFunc func(ctx context.Context, pager, path string) error

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	var cwd string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive request loop",
		Long: `Start an interactive loop that sends each line to the bridge and
renders the response the way an editor host would: printed data is shown,
spooled files are opened in the suggested pager and errors are highlighted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return fmt.Errorf("repl requires an interactive terminal; use 'dbbridge serve' for piped input")
			}
			return runREPL(cmd, cwd)
		},
	}

	cmd.Flags().StringVar(&cwd, "cwd", "", "Working directory requests are made from")

	return cmd
}

func runREPL(cmd *cobra.Command, cwdFlag string) error {
	ctx := cmd.Context()
	logger := config.GetLogger(ctx)

	cwd, err := workingDir(cwdFlag)
	if err != nil {
		return err
	}

	session, err := NewSession(cmd)
	if err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile(),
		AutoComplete:    newRequestCompleter(session.Defaults),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "dbbridge REPL (cwd: %s)\n", cwd)
	_, _ = fmt.Fprintln(out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			quit := handleDotCommand(cmd, session, line, &cwd)
			if quit {
				break
			}
			continue
		}

		resp := session.Bridge.Handle(ctx, line, cwd)
		if err := renderEnvelope(ctx, out, cmd.ErrOrStderr(), resp, runPager); err != nil {
			logger.Debug("pager failed", slog.Any("error", err))
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render("Error: "+err.Error()))
		}
	}

	return nil
}

// renderEnvelope shows a response to a person.
func renderEnvelope(ctx context.Context, out, errOut io.Writer, resp envelope.Response, pager PagerFunc) error {
	switch resp.Status {
	case envelope.StatusSuccess:
		if resp.Action == envelope.ActionPage {
			_, _ = fmt.Fprintln(out, mutedStyle.Render("Spooled to "+resp.Data))
			return pager(ctx, resp.Pager, resp.Data)
		}
		_, _ = fmt.Fprintln(out, resp.Data)
	case envelope.StatusMissingPkg:
		_, _ = fmt.Fprintln(errOut, noticeStyle.Render("Missing driver package: "+resp.Package))
		_, _ = fmt.Fprintln(errOut, mutedStyle.Render("Install it or point "+heal.DriverPathEnv+" at a directory holding it."))
	default:
		_, _ = fmt.Fprintln(errOut, errorStyle.Render("Error: "+resp.Message))
	}
	return nil
}

// runPager runs pager on path with the terminal attached.
func runPager(ctx context.Context, pager, path string) error {
	args := strings.Fields(pager)
	if len(args) == 0 {
		args = []string{"cat"}
	}
	args = append(args, path)

	c := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec // pager comes from the user's own environment
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("failed to run pager %q: %w", pager, err)
	}
	return nil
}

func handleDotCommand(cmd *cobra.Command, session *Session, line string, cwd *string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	out := cmd.OutOrStdout()

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(out)

	case ".cd":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(out, *cwd)
			return false
		}
		dir, err := filepath.Abs(parts[1])
		if err != nil {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render("Error: "+err.Error()))
			return false
		}
		*cwd = dir

	case ".config":
		if err := renderResolution(out, session.Bridge.Resolve(*cwd), session.Defaults); err != nil {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render("Error: "+err.Error()))
		}

	case ".queries":
		for _, name := range savedQueryNames(session.Defaults) {
			_, _ = fmt.Fprintln(out, name)
		}

	case ".clear":
		_, _ = fmt.Fprint(out, "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .cd [dir]       Show or change the request working directory
  .config         Show the resolved connection config
  .queries        List saved queries
  .clear          Clear the screen
  .quit / .exit   Exit the REPL

Tips:
  - Each line is one request: SQL or a saved query name
  - Append --json, --csv, --no-limit or --output <path> to a request
  - Tab completion works for saved query names and flags
`
	_, _ = fmt.Fprintln(w, help)
}

func savedQueryNames(defaults *dbconfig.Defaults) []string {
	queries := defaults.Queries()
	names := make([]string, 0, len(queries))
	for name := range queries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// newRequestCompleter completes saved query names, flags and dot-commands.
func newRequestCompleter(defaults *dbconfig.Defaults) *readline.PrefixCompleter {
	flags := []readline.PrefixCompleterInterface{
		readline.PcItem("--json"),
		readline.PcItem("--csv"),
		readline.PcItem("--no-limit"),
		readline.PcItem("--output"),
	}

	var items []readline.PrefixCompleterInterface
	for _, name := range savedQueryNames(defaults) {
		items = append(items, readline.PcItem(name, flags...))
	}

	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".cd"),
		readline.PcItem(".config"),
		readline.PcItem(".queries"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}

// historyFile returns the REPL history path, or "" to disable history.
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	dir := filepath.Join(home, dbconfig.DefaultDirName)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ""
	}
	return filepath.Join(dir, historyFileName)
}
