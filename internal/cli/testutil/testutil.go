// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dbbridge/pkg/core"
)

// ExecuteCommand runs cmd with args, feeding stdin and capturing output.
func ExecuteCommand(cmd *cobra.Command, stdin string, args ...string) (stdout, stderr string, err error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// IsolateEnv points HOME and the defaults file into a temp dir and removes
// every connection variable from the environment for the test's duration.
// It returns the temporary home directory.
func IsolateEnv(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("DBBRIDGE_CONFIG", filepath.Join(home, "no-defaults.yaml"))
	t.Setenv("DBBRIDGE_DRIVER_PATH", "")

	for _, names := range core.DefaultAliases() {
		for _, name := range names {
			unsetEnv(t, name)
		}
	}
	return home
}

func unsetEnv(t *testing.T, name string) {
	t.Helper()
	prev, ok := os.LookupEnv(name)
	if !ok {
		return
	}
	// Setenv first so the testing package forbids t.Parallel here.
	t.Setenv(name, prev)
	if err := os.Unsetenv(name); err != nil {
		t.Fatalf("failed to unset %s: %v", name, err)
	}
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// StripANSI removes ANSI escape codes from s.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
