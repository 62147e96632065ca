package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/leapstack-labs/dbbridge/pkg/core"
)

// Keys with special meaning in the defaults file.
const (
	KeyAliasMapping = "DB_KEY_MAPPING"
	KeyQueries      = "DB_QUERIES"
)

// Default values applied after resolution.
const (
	DefaultType    = "sqlite"
	DefaultDirName = ".dbbridge"
	DefaultDBFile  = "dbbridge.db"
	ConfigDirName  = "dbbridge"
	ConfigFileName = "config.yaml"
	ConfigPathEnv  = "DBBRIDGE_CONFIG"
)

// Defaults is the static defaults object. Top-level keys use variable names
// (DB_TYPE, POSTGRES_HOST, ...); DB_KEY_MAPPING overrides alias lists and
// DB_QUERIES holds saved queries.
type Defaults struct {
	k    *koanf.Koanf
	path string
}

// EmptyDefaults returns defaults with no values.
func EmptyDefaults() *Defaults {
	return &Defaults{k: koanf.New(keyDelim)}
}

// LoadDefaults reads a YAML defaults file. A missing file yields empty
// defaults; an unreadable or malformed one fails with *core.ConfigError.
func LoadDefaults(path string) (*Defaults, error) {
	d := EmptyDefaults()
	if path == "" {
		return d, nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return d, nil
	}

	if err := d.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, &core.ConfigError{Err: fmt.Errorf("error reading defaults file %s: %w", path, err)}
	}
	d.path = path
	return d, nil
}

// DefaultsFromMap builds defaults from an in-memory map.
func DefaultsFromMap(values map[string]any) (*Defaults, error) {
	d := EmptyDefaults()
	if err := d.k.Load(confmap.Provider(values, keyDelim), nil); err != nil {
		return nil, &core.ConfigError{Err: fmt.Errorf("failed to load defaults: %w", err)}
	}
	return d, nil
}

// DefaultsPath picks the defaults file: explicit path, then $DBBRIDGE_CONFIG,
// then <user config dir>/dbbridge/config.yaml. Empty when none applies.
func DefaultsPath(explicit string, env Source) string {
	if explicit != "" {
		return explicit
	}
	if env != nil {
		if v, ok := env.Lookup(ConfigPathEnv); ok && v != "" {
			return v
		}
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, ConfigDirName, ConfigFileName)
}

// Lookup implements Source over top-level scalar keys.
func (d *Defaults) Lookup(name string) (string, bool) {
	if d == nil || name == KeyAliasMapping || name == KeyQueries || !d.k.Exists(name) {
		return "", false
	}
	if d.k.Get(name) == nil {
		return "", true
	}
	return d.k.String(name), true
}

// Aliases returns the built-in alias table with DB_KEY_MAPPING applied.
func (d *Defaults) Aliases() core.AliasTable {
	aliases := core.DefaultAliases()
	if d == nil || !d.k.Exists(KeyAliasMapping) {
		return aliases
	}

	override := core.AliasTable{}
	for _, key := range core.CanonicalKeys {
		path := KeyAliasMapping + keyDelim + key
		if d.k.Exists(path) {
			override[key] = d.k.Strings(path)
		}
	}
	return aliases.Override(override)
}

// Queries returns the saved query table.
func (d *Defaults) Queries() map[string]string {
	if d == nil || !d.k.Exists(KeyQueries) {
		return nil
	}
	return d.k.StringMap(KeyQueries)
}

// Path returns the file the defaults were read from, if any.
func (d *Defaults) Path() string {
	if d == nil {
		return ""
	}
	return d.path
}

// DefaultSource picks the data source used when none was configured:
// <home>/.dbbridge/dbbridge.db, creating the directory; else a file in cwd;
// else an in-memory database.
func DefaultSource(home, cwd string, logger *slog.Logger) string {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if home != "" {
		dir := filepath.Join(home, DefaultDirName)
		err := os.MkdirAll(dir, 0o750)
		if err == nil {
			return filepath.Join(dir, DefaultDBFile)
		}
		logger.Debug("cannot create default data directory", slog.String("dir", dir), slog.Any("error", err))
	}
	if cwd != "" {
		return filepath.Join(cwd, DefaultDBFile)
	}
	return core.MemorySource
}
