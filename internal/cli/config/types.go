// Package config provides settings management for the dbbridge CLI.
//
// These are the CLI's own settings (logging, defaults file, driver search
// path). Database connection parameters are resolved per request by
// internal/config and never pass through here.
package config

// Settings holds all CLI settings.
type Settings struct {
	// Config is the static defaults file. Empty selects the default location.
	Config     string `koanf:"config"`
	Verbose    bool   `koanf:"verbose"`
	LogLevel   string `koanf:"log_level"`
	DriverPath string `koanf:"driver_path"`
	TempDir    string `koanf:"temp_dir"`
}

// Default settings values.
const (
	DefaultLogLevel = "warn"
	EnvPrefix       = "DBBRIDGE_"
)
