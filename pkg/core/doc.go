// Package core defines the shared language of the dbbridge system.
//
// This package contains:
//   - Connection configuration (ConnectionConfig, canonical keys, AliasTable)
//   - The error taxonomy every component reports through (ConfigError,
//     MissingDriverError, ConnectionError, QueryError, PermissionError, IOError)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
