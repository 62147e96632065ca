package drivers

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/dbbridge/internal/testutil"
	"github.com/leapstack-labs/dbbridge/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T, dirs ...string) (*Catalog, *[]string, map[string]bool) {
	t.Helper()

	c := NewCatalog(testutil.NewTestLogger(t), dirs...)
	opened := &[]string{}
	loaded := map[string]bool{}
	c.registered = func(driver string) bool { return loaded[driver] }
	c.open = func(path string) error {
		*opened = append(*opened, path)
		return errors.New("not a plugin")
	}
	return c, opened, loaded
}

func TestCatalog_RequireLinkedDriver(t *testing.T) {
	c, opened, loaded := newTestCatalog(t)
	loaded["sqlite"] = true

	assert.NoError(t, c.Require("sqlite", "modernc.org/sqlite"))
	assert.Empty(t, *opened)
}

func TestCatalog_RequireMissing(t *testing.T) {
	c, _, _ := newTestCatalog(t, t.TempDir())

	err := c.Require("duckdb", "github.com/marcboeker/go-duckdb")

	missing, ok := core.IsMissingDriver(err)
	require.True(t, ok)
	assert.Equal(t, "duckdb", missing.Driver)
	assert.Equal(t, "github.com/marcboeker/go-duckdb", missing.Package)
}

func TestCatalog_RequireLoadsPlugin(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "duckdb.so"), []byte("elf"), 0o600))

	c, opened, loaded := newTestCatalog(t, dir)
	c.open = func(path string) error {
		*opened = append(*opened, path)
		loaded["duckdb"] = true
		return nil
	}

	require.NoError(t, c.Require("duckdb", "github.com/marcboeker/go-duckdb"))
	assert.Equal(t, []string{filepath.Join(dir, "duckdb.so")}, *opened)
}

func TestCatalog_MissesAreCachedUntilDirsChange(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "duckdb.so"), []byte("elf"), 0o600))

	c, opened, _ := newTestCatalog(t, dir)

	require.Error(t, c.Require("duckdb", "pkg"))
	require.Error(t, c.Require("duckdb", "pkg"))
	assert.Len(t, *opened, 1, "failed plugin is not reopened")

	assert.Equal(t, 1, c.AddSearchDirs([]string{t.TempDir()}))
	require.Error(t, c.Require("duckdb", "pkg"))
	assert.Len(t, *opened, 2, "new search dirs clear the miss cache")
}

func TestCatalog_AddSearchDirs(t *testing.T) {
	existing := t.TempDir()
	other := t.TempDir()
	file := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	c, _, _ := newTestCatalog(t, existing)

	tests := []struct {
		name  string
		dirs  []string
		added int
	}{
		{"already present", []string{existing}, 0},
		{"does not exist", []string{filepath.Join(other, "nope")}, 0},
		{"regular file", []string{file}, 0},
		{"empty entry", []string{""}, 0},
		{"new directory", []string{other, other}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.added, c.AddSearchDirs(tt.dirs))
		})
	}
	assert.Equal(t, []string{existing, other}, c.SearchDirs())
}
