package config

import (
	"log/slog"
	"strings"

	"github.com/leapstack-labs/dbbridge/pkg/core"
)

// fileBackedTypes are the DB_TYPE tags whose DB_SOURCE names a local database.
var fileBackedTypes = map[string]bool{
	"sqlite":  true,
	"sqlite3": true,
	"duckdb":  true,
}

// Resolver resolves the connection config for a working directory.
type Resolver struct {
	Env      Source
	Defaults *Defaults
	Home     string
	Logger   *slog.Logger
}

// Resolve reads the nearest .env file above cwd and resolves every canonical
// key, then fills DB_TYPE when no source supplied it. DB_SOURCE is filled
// only for file-backed types, so network backends never create the default
// data directory.
func (r *Resolver) Resolve(cwd string) *Resolution {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	fileVars, path := LoadEnvFile(cwd, r.Home)

	var defaults Source
	if r.Defaults != nil {
		defaults = r.Defaults
	}
	res := Resolve(MapSource(fileVars), r.Env, defaults, r.Defaults.Aliases())
	res.EnvFile = path

	res.setFallback(core.KeyType, DefaultType)
	fileBacked := fileBackedTypes[strings.ToLower(strings.TrimSpace(res.Config.Type()))]
	if _, ok := res.Config[core.KeySource]; !ok && fileBacked {
		res.setFallback(core.KeySource, DefaultSource(r.Home, cwd, logger))
	}

	logger.Debug("resolved connection config",
		slog.String("type", res.Config.Type()),
		slog.String("env_file", path))
	return res
}
