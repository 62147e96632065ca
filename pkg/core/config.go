package core

import "sort"

// Canonical connection keys. Downstream code only ever reads these names,
// whichever source-side variable supplied the value.
const (
	KeyType   = "DB_TYPE"
	KeySource = "DB_SOURCE"
	KeyHost   = "DB_HOST"
	KeyPort   = "DB_PORT"
	KeyUser   = "DB_USER"
	KeyPass   = "DB_PASS"
	KeyName   = "DB_NAME"
)

// CanonicalKeys lists the canonical keys in resolution order.
var CanonicalKeys = []string{KeyType, KeySource, KeyHost, KeyPort, KeyUser, KeyPass, KeyName}

// MemorySource is the data source of last resort.
const MemorySource = ":memory:"

// ConnectionConfig maps canonical keys to resolved values.
// Unresolved keys are absent, never present with a placeholder.
type ConnectionConfig map[string]string

// Get returns the value for key and whether it was resolved.
func (c ConnectionConfig) Get(key string) (string, bool) {
	v, ok := c[key]
	return v, ok
}

// Type returns the backend tag.
func (c ConnectionConfig) Type() string { return c[KeyType] }

// Source returns the data source (file path, DSN or URL).
func (c ConnectionConfig) Source() string { return c[KeySource] }

// AliasTable maps each canonical key to the ordered variable names accepted for it.
type AliasTable map[string][]string

// DefaultAliases returns the built-in alias table.
func DefaultAliases() AliasTable {
	return AliasTable{
		KeyType:   {"DB_TYPE", "DB_T", "DATABASE_TYPE", "ENGINE"},
		KeySource: {"DB_SOURCE", "DB_FILE", "SQLITE_DB", "DB_S"},
		KeyHost:   {"DB_HOST", "DB_H", "POSTGRES_HOST", "MYSQL_HOST"},
		KeyPort:   {"DB_PORT", "DB_P", "POSTGRES_PORT", "MYSQL_TCP_PORT"},
		KeyUser:   {"DB_USER", "DB_U", "POSTGRES_USER", "MYSQL_USER"},
		KeyPass:   {"DB_PASS", "DB_PASSWORD", "POSTGRES_PASSWORD", "MYSQL_PASSWORD", "MYSQL_PWD"},
		KeyName:   {"DB_NAME", "DB_N", "POSTGRES_DB", "MYSQL_DATABASE"},
	}
}

// Override returns a copy of t where every key present in o replaces t's list.
// Keys o does not mention keep their current aliases.
func (t AliasTable) Override(o AliasTable) AliasTable {
	out := make(AliasTable, len(t))
	for k, v := range t {
		out[k] = append([]string(nil), v...)
	}
	for k, v := range o {
		if len(v) == 0 {
			continue
		}
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Keys returns the table's canonical keys, sorted.
func (t AliasTable) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
