package adapter

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/leapstack-labs/dbbridge/pkg/core"
)

// Registry maps backend tags to adapter factories.
// The variant set is fixed when the registry is built.
type Registry struct {
	opts      Options
	factories map[string]Factory
}

// NewRegistry builds a registry over variants. Later variants win on tag clashes.
func NewRegistry(opts Options, variants ...Variant) *Registry {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	r := &Registry{opts: opts, factories: make(map[string]Factory)}
	for _, v := range variants {
		for _, tag := range v.Tags {
			r.factories[normalizeTag(tag)] = v.New
		}
	}
	return r
}

// New creates an unconnected adapter for tag.
// Unknown tags fail with *core.ConfigError wrapping *UnknownAdapterError.
func (r *Registry) New(tag string) (Adapter, error) {
	name := normalizeTag(tag)
	if name == "" {
		return nil, &core.ConfigError{Err: fmt.Errorf("adapter type not specified")}
	}

	factory, ok := r.factories[name]
	if !ok {
		return nil, &core.ConfigError{Err: &UnknownAdapterError{
			Type:      tag,
			Available: r.Tags(),
		}}
	}
	return factory(r.opts), nil
}

// Tags returns all registered tags (sorted).
func (r *Registry) Tags() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// UnknownAdapterError is returned when an unknown adapter type is requested.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown adapter type %q\nAvailable adapters: %v\nHint: Check DB_TYPE in your .env file", e.Type, e.Available)
}
