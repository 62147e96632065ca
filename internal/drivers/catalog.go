// Package drivers makes database/sql drivers available to the process.
//
// Drivers linked into the binary are always available. A driver left out of
// the build can be supplied at runtime as a Go plugin named <driver>.so that
// registers itself from init; the catalog searches a list of directories for
// it and remembers which directories already missed.
package drivers

import (
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"plugin"
	"slices"
	"sync"

	"github.com/leapstack-labs/dbbridge/pkg/core"
)

// Catalog resolves drivers from the linked set or from plugin search directories.
type Catalog struct {
	mu     sync.Mutex
	dirs   []string
	misses map[string]bool
	logger *slog.Logger

	open       func(path string) error
	registered func(driver string) bool
}

// NewCatalog creates a catalog searching dirs for driver plugins.
func NewCatalog(logger *slog.Logger, dirs ...string) *Catalog {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Catalog{
		misses:     make(map[string]bool),
		logger:     logger,
		open:       openPlugin,
		registered: isRegistered,
	}
	c.AddSearchDirs(dirs)
	return c
}

func openPlugin(path string) error {
	_, err := plugin.Open(path)
	return err
}

func isRegistered(driver string) bool {
	return slices.Contains(sql.Drivers(), driver)
}

// Require makes driver available or fails with *core.MissingDriverError.
func (c *Catalog) Require(driver, pkg string) error {
	if c.registered(driver) {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, dir := range c.dirs {
		key := dir + "|" + driver
		if c.misses[key] {
			continue
		}
		path := filepath.Join(dir, driver+".so")
		if _, err := os.Stat(path); err != nil {
			c.misses[key] = true
			continue
		}
		if err := c.open(path); err != nil {
			c.logger.Debug("driver plugin failed to load", slog.String("path", path), slog.Any("error", err))
			c.misses[key] = true
			continue
		}
		if c.registered(driver) {
			c.logger.Debug("driver loaded from plugin", slog.String("path", path))
			return nil
		}
		c.misses[key] = true
	}

	return &core.MissingDriverError{Driver: driver, Package: pkg}
}

// AddSearchDirs appends every existing directory not already searched and
// returns how many were added. Adding directories forgets earlier misses.
func (c *Catalog) AddSearchDirs(dirs []string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	added := 0
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		if slices.Contains(c.dirs, abs) {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			continue
		}
		c.dirs = append(c.dirs, abs)
		added++
	}
	if added > 0 {
		clear(c.misses)
	}
	return added
}

// SearchDirs returns the directories currently searched, in order.
func (c *Catalog) SearchDirs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.dirs)
}
