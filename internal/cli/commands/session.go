package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dbbridge/internal/bridge"
	"github.com/leapstack-labs/dbbridge/internal/cli/config"
	dbconfig "github.com/leapstack-labs/dbbridge/internal/config"
	"github.com/leapstack-labs/dbbridge/internal/drivers"
	"github.com/leapstack-labs/dbbridge/internal/heal"
)

// Session is everything a command needs to serve requests.
type Session struct {
	Bridge   *bridge.Bridge
	Defaults *dbconfig.Defaults
}

// NewSession builds a bridge from the command's settings and the process
// environment.
func NewSession(cmd *cobra.Command) (*Session, error) {
	ctx := cmd.Context()
	settings := config.GetSettings(ctx)
	logger := config.GetLogger(ctx)

	env, err := dbconfig.SnapshotEnv()
	if err != nil {
		return nil, err
	}

	defaults, err := dbconfig.LoadDefaults(dbconfig.DefaultsPath(settings.Config, env))
	if err != nil {
		return nil, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		logger.Debug("home directory unknown", slog.Any("error", err))
		home = ""
	}

	catalog := drivers.NewCatalog(logger)
	catalog.AddSearchDirs(heal.SplitPathList(settings.DriverPath))

	return &Session{
		Bridge: bridge.New(bridge.Options{
			Logger:   logger,
			Defaults: defaults,
			Env:      env,
			Home:     home,
			Catalog:  catalog,
			TempDir:  settings.TempDir,
		}),
		Defaults: defaults,
	}, nil
}

// workingDir returns dir, or the process working directory when dir is empty.
func workingDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return cwd, nil
}
