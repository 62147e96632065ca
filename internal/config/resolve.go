package config

import (
	"fmt"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/leapstack-labs/dbbridge/pkg/core"
)

// Source names, in resolution order.
const (
	SourceFile     = "file"
	SourceEnv      = "env"
	SourceDefaults = "defaults"
	SourceFallback = "fallback"
)

// Source answers lookups by variable name.
type Source interface {
	Lookup(name string) (string, bool)
}

// MapSource is a Source over a plain map.
type MapSource map[string]string

// Lookup implements Source.
func (m MapSource) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// keyDelim separates nested keys in koanf instances holding variable names.
// Variable and saved query names may contain dots.
const keyDelim = "::"

// EnvSource is a snapshot of the process environment.
type EnvSource struct {
	k *koanf.Koanf
}

// SnapshotEnv captures the current process environment.
func SnapshotEnv() (*EnvSource, error) {
	k := koanf.New(keyDelim)
	if err := k.Load(env.Provider("", keyDelim, func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}
	return &EnvSource{k: k}, nil
}

// Lookup implements Source.
func (e *EnvSource) Lookup(name string) (string, bool) {
	if e == nil || !e.k.Exists(name) {
		return "", false
	}
	return e.k.String(name), true
}

// Get returns a variable's value, or "" when unset.
func (e *EnvSource) Get(name string) string {
	v, _ := e.Lookup(name)
	return v
}

// Origin records where a resolved key came from.
type Origin struct {
	// Source is one of SourceFile, SourceEnv, SourceDefaults or SourceFallback.
	Source string
	// Name is the alias that matched.
	Name string
}

// Resolution is a resolved configuration with its provenance.
type Resolution struct {
	Config  core.ConnectionConfig
	Origins map[string]Origin
	// EnvFile is the .env file that was read, if any.
	EnvFile string
}

// Resolve looks up each canonical key of aliases in file, env, then defaults.
// Within a source the aliases are tried in order. The first name present wins
// even when its value is empty; later sources are not consulted for that key.
// Nil sources are skipped.
func Resolve(file, env, defaults Source, aliases core.AliasTable) *Resolution {
	res := &Resolution{
		Config:  core.ConnectionConfig{},
		Origins: map[string]Origin{},
	}

	sources := []struct {
		name string
		src  Source
	}{
		{SourceFile, file},
		{SourceEnv, env},
		{SourceDefaults, defaults},
	}

	for _, key := range aliases.Keys() {
	lookup:
		for _, s := range sources {
			if s.src == nil {
				continue
			}
			for _, name := range aliases[key] {
				if v, ok := s.src.Lookup(name); ok {
					res.Config[key] = v
					res.Origins[key] = Origin{Source: s.name, Name: name}
					break lookup
				}
			}
		}
	}
	return res
}

// setFallback fills key when no source supplied it.
func (r *Resolution) setFallback(key, value string) {
	if _, ok := r.Config[key]; ok {
		return
	}
	r.Config[key] = value
	r.Origins[key] = Origin{Source: SourceFallback}
}
