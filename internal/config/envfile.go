// Package config resolves connection parameters for a request.
//
// Parameters come from three sources in strict order: the nearest .env file
// above the working directory, the process environment, and a static
// defaults file. Each canonical key is looked up under every alias name of
// the alias table.
package config

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

// EnvFileName is the file looked for at each directory level.
const EnvFileName = ".env"

// FindEnvFile walks upward from start and returns the nearest .env file.
// The walk checks home itself, then stops; it also stops at the filesystem
// root or when a parent resolves to itself.
func FindEnvFile(start, home string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	if home != "" {
		if abs, err := filepath.Abs(home); err == nil {
			home = abs
		}
	}

	for {
		candidate := filepath.Join(dir, EnvFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		if dir == home {
			return "", false
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", false
		}
		dir = parent
	}
}

// ParseEnvFile reads KEY=VALUE lines. Blank lines, # comments and lines
// without '=' are ignored. One layer of matching quotes is stripped from
// values; there are no escape sequences. An unreadable file yields an empty map.
func ParseEnvFile(path string) map[string]string {
	//nolint:gosec // path comes from FindEnvFile
	data, err := os.ReadFile(path)
	if err != nil {
		return map[string]string{}
	}
	return ParseEnv(data)
}

// ParseEnv parses the .env grammar from memory.
func ParseEnv(data []byte) map[string]string {
	vars := make(map[string]string)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		vars[key] = unquote(strings.TrimSpace(value))
	}
	if scanner.Err() != nil {
		return map[string]string{}
	}
	return vars
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

// LoadEnvFile returns the variables of the nearest .env file, or an empty
// map when there is none. Files further up are never merged in.
func LoadEnvFile(start, home string) (vars map[string]string, path string) {
	path, ok := FindEnvFile(start, home)
	if !ok {
		return map[string]string{}, ""
	}
	return ParseEnvFile(path), path
}
