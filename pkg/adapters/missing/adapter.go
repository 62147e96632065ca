// Package missing provides an adapter whose client library is never available.
// It exercises the missing-driver path, including the self-heal retry,
// without depending on what happens to be installed.
package missing

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/dbbridge/pkg/adapter"
	"github.com/leapstack-labs/dbbridge/pkg/core"
)

const (
	// Tag selects this adapter.
	Tag = "missing_driver"
	// Package is reported as the library to install.
	Package = "dbbridge/missing-driver"
)

// Adapter always fails to connect with *core.MissingDriverError.
type Adapter struct{}

// New creates a new adapter instance.
func New(adapter.Options) *Adapter {
	return &Adapter{}
}

// Connect always reports the driver as missing.
func (a *Adapter) Connect(context.Context, string, core.ConnectionConfig) error {
	return &core.MissingDriverError{Driver: Tag, Package: Package}
}

// Execute is unreachable after a failed Connect.
func (a *Adapter) Execute(context.Context, string) (*adapter.Cursor, error) {
	return nil, fmt.Errorf("database connection not established")
}

// Close does nothing.
func (a *Adapter) Close() error { return nil }

// Name returns the adapter tag.
func (a *Adapter) Name() string { return Tag }

// Variant registers the adapter under its tag.
func Variant() adapter.Variant {
	return adapter.Variant{
		Tags: []string{Tag},
		New:  func(opts adapter.Options) adapter.Adapter { return New(opts) },
	}
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
