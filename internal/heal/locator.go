package heal

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DriverPathEnv names the variable a login shell exports with extra driver directories.
const DriverPathEnv = "DBBRIDGE_DRIVER_PATH"

// DefaultLocateTimeout bounds the external lookup.
const DefaultLocateTimeout = 5 * time.Second

// Locator discovers directories that may hold capabilities this process cannot see.
type Locator interface {
	Locate(ctx context.Context) ([]string, error)
}

// ShellLocator asks a separately started login shell for its driver search path.
// The host's environment may have been stripped of variables that the user's
// own shell profile sets.
type ShellLocator struct {
	Shell   string
	Timeout time.Duration
}

// NewShellLocator returns a locator using $SHELL, or /bin/sh.
func NewShellLocator() *ShellLocator {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	return &ShellLocator{Shell: shell, Timeout: DefaultLocateTimeout}
}

// Locate runs the shell and splits its answer into directories.
func (l *ShellLocator) Locate(ctx context.Context) ([]string, error) {
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultLocateTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	script := fmt.Sprintf(`printf "%%s" "$%s"`, DriverPathEnv)
	//nolint:gosec // shell is chosen by the user's environment
	out, err := exec.CommandContext(ctx, l.Shell, "-l", "-c", script).Output()
	if err != nil {
		return nil, fmt.Errorf("failed to query driver path from %s: %w", l.Shell, err)
	}
	return SplitPathList(string(out)), nil
}

// SplitPathList splits on newlines and the OS list separator, dropping blanks.
func SplitPathList(s string) []string {
	var dirs []string
	for _, line := range strings.Split(s, "\n") {
		for _, part := range strings.Split(line, string(os.PathListSeparator)) {
			if part = strings.TrimSpace(part); part != "" {
				dirs = append(dirs, part)
			}
		}
	}
	return dirs
}
