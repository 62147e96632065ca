// Package adapters assembles the fixed set of backend variants into a registry.
package adapters

import (
	"github.com/leapstack-labs/dbbridge/pkg/adapter"
	"github.com/leapstack-labs/dbbridge/pkg/adapters/duckdb"
	"github.com/leapstack-labs/dbbridge/pkg/adapters/missing"
	"github.com/leapstack-labs/dbbridge/pkg/adapters/mysql"
	"github.com/leapstack-labs/dbbridge/pkg/adapters/postgres"
	"github.com/leapstack-labs/dbbridge/pkg/adapters/sqlite"
)

// Variants returns every backend variant dbbridge knows about.
func Variants() []adapter.Variant {
	return []adapter.Variant{
		sqlite.Variant(),
		duckdb.Variant(),
		postgres.Variant(),
		mysql.Variant(),
		missing.Variant(),
	}
}

// NewRegistry builds a registry over all variants.
func NewRegistry(opts adapter.Options) *adapter.Registry {
	return adapter.NewRegistry(opts, Variants()...)
}
