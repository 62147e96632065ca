package core

import (
	"errors"
	"fmt"
)

// ConfigError reports a configuration problem, such as an unknown backend tag
// or an unreadable defaults file.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// MissingDriverError reports that an optional database client library is not
// available to this process. Package identifies what has to be installed.
type MissingDriverError struct {
	Driver  string
	Package string
}

func (e *MissingDriverError) Error() string {
	return fmt.Sprintf("driver %q is not available (requires %s)", e.Driver, e.Package)
}

// ConnectionError reports a failure to reach or authenticate against a backend.
type ConnectionError struct {
	Backend string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Backend, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError reports that the backend rejected a statement.
type QueryError struct {
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// PermissionError reports that an explicit output location is not writable.
type PermissionError struct {
	Path string
	Err  error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: cannot write to %s: %v", e.Path, e.Err)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// IOError reports a failure creating or writing a temporary file or directory.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// IsMissingDriver reports whether err carries a MissingDriverError and returns it.
func IsMissingDriver(err error) (*MissingDriverError, bool) {
	var missing *MissingDriverError
	if errors.As(err, &missing) {
		return missing, true
	}
	return nil, false
}
