package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/dbbridge/internal/testutil"
	"github.com/leapstack-labs/dbbridge/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Precedence(t *testing.T) {
	tests := []struct {
		name       string
		file       MapSource
		env        MapSource
		defaults   MapSource
		key        string
		want       string
		wantSource string
		wantName   string
	}{
		{
			name:       "file beats env and defaults",
			file:       MapSource{"DB_H": "file-host"},
			env:        MapSource{"DB_HOST": "env-host"},
			defaults:   MapSource{"DB_HOST": "default-host"},
			key:        core.KeyHost,
			want:       "file-host",
			wantSource: SourceFile,
			wantName:   "DB_H",
		},
		{
			name:       "env beats defaults",
			env:        MapSource{"POSTGRES_HOST": "env-host"},
			defaults:   MapSource{"DB_HOST": "default-host"},
			key:        core.KeyHost,
			want:       "env-host",
			wantSource: SourceEnv,
			wantName:   "POSTGRES_HOST",
		},
		{
			name:       "defaults last",
			defaults:   MapSource{"MYSQL_HOST": "default-host"},
			key:        core.KeyHost,
			want:       "default-host",
			wantSource: SourceDefaults,
			wantName:   "MYSQL_HOST",
		},
		{
			name:       "alias order within a source",
			env:        MapSource{"MYSQL_PWD": "second", "DB_PASSWORD": "first"},
			key:        core.KeyPass,
			want:       "first",
			wantSource: SourceEnv,
			wantName:   "DB_PASSWORD",
		},
		{
			name:       "empty value still wins",
			file:       MapSource{"DB_PASS": ""},
			env:        MapSource{"DB_PASS": "from-env"},
			key:        core.KeyPass,
			want:       "",
			wantSource: SourceFile,
			wantName:   "DB_PASS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(tt.file, tt.env, tt.defaults, core.DefaultAliases())

			got, ok := res.Config.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, Origin{Source: tt.wantSource, Name: tt.wantName}, res.Origins[tt.key])
		})
	}
}

func TestResolve_AliasesFromFile(t *testing.T) {
	env := MapSource{"DB_N": "my_db", "DB_H": "localhost", "DB_T": "postgres"}

	res := Resolve(env, nil, nil, core.DefaultAliases())

	assert.Equal(t, core.ConnectionConfig{
		core.KeyName: "my_db",
		core.KeyHost: "localhost",
		core.KeyType: "postgres",
	}, res.Config)
}

func TestResolve_UnresolvedKeysAbsent(t *testing.T) {
	res := Resolve(MapSource{}, MapSource{}, MapSource{}, core.DefaultAliases())
	assert.Empty(t, res.Config)
}

func TestResolve_CustomAliasTable(t *testing.T) {
	aliases := core.DefaultAliases().Override(core.AliasTable{core.KeyHost: {"WAREHOUSE_HOST"}})

	res := Resolve(MapSource{"DB_HOST": "ignored", "WAREHOUSE_HOST": "wh"}, nil, nil, aliases)

	assert.Equal(t, "wh", res.Config[core.KeyHost])
}

func TestSnapshotEnv(t *testing.T) {
	t.Setenv("DB_T", "duckdb")
	t.Setenv("DBBRIDGE_TEST_EMPTY", "")

	env, err := SnapshotEnv()
	require.NoError(t, err)

	v, ok := env.Lookup("DB_T")
	assert.True(t, ok)
	assert.Equal(t, "duckdb", v)

	v, ok = env.Lookup("DBBRIDGE_TEST_EMPTY")
	assert.True(t, ok, "set but empty counts as present")
	assert.Empty(t, v)

	_, ok = env.Lookup("DBBRIDGE_TEST_SURELY_UNSET")
	assert.False(t, ok)
}

func TestResolver_Resolve(t *testing.T) {
	home := t.TempDir()
	project := filepath.Join(home, "project")
	require.NoError(t, os.MkdirAll(project, 0o750))
	testutil.WriteFile(t, project, ".env", "DB_T=duckdb\nDB_S='analytics.duckdb'\n")

	r := &Resolver{
		Env:      MapSource{"DB_TYPE": "postgres", "DB_USER": "env-user"},
		Defaults: EmptyDefaults(),
		Home:     home,
		Logger:   testutil.NewTestLogger(t),
	}

	res := r.Resolve(project)

	assert.Equal(t, "duckdb", res.Config.Type())
	assert.Equal(t, "analytics.duckdb", res.Config.Source())
	assert.Equal(t, "env-user", res.Config[core.KeyUser])
	assert.Equal(t, filepath.Join(project, ".env"), res.EnvFile)
}

func TestResolver_Fallbacks(t *testing.T) {
	home := t.TempDir()
	cwd := t.TempDir()

	r := &Resolver{Env: MapSource{}, Home: home}
	res := r.Resolve(cwd)

	assert.Equal(t, DefaultType, res.Config.Type())
	assert.Equal(t, filepath.Join(home, DefaultDirName, DefaultDBFile), res.Config.Source())
	assert.Equal(t, Origin{Source: SourceFallback}, res.Origins[core.KeySource])
	assert.DirExists(t, filepath.Join(home, DefaultDirName))
}

func TestResolver_NetworkTypeLeavesSourceUnset(t *testing.T) {
	tests := []struct {
		name       string
		dbType     string
		wantSource bool
	}{
		{"postgres", "postgres", false},
		{"mysql", "mysql", false},
		{"unknown type", "oracle", false},
		{"sqlite", "sqlite", true},
		{"duckdb mixed case", " DuckDB ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			r := &Resolver{Env: MapSource{"DB_TYPE": tt.dbType}, Home: home}

			res := r.Resolve(t.TempDir())

			_, ok := res.Config.Get(core.KeySource)
			assert.Equal(t, tt.wantSource, ok)
			if tt.wantSource {
				assert.DirExists(t, filepath.Join(home, DefaultDirName))
			} else {
				assert.NoDirExists(t, filepath.Join(home, DefaultDirName))
			}
		})
	}
}

func TestResolver_ExplicitEmptySourceIsKept(t *testing.T) {
	home := t.TempDir()

	r := &Resolver{Env: MapSource{"DB_SOURCE": ""}, Home: home}
	res := r.Resolve(t.TempDir())

	src, ok := res.Config.Get(core.KeySource)
	assert.True(t, ok)
	assert.Empty(t, src)
	assert.NoDirExists(t, filepath.Join(home, DefaultDirName))
}

func TestDefaultSource(t *testing.T) {
	t.Run("user scoped", func(t *testing.T) {
		home := t.TempDir()
		assert.Equal(t, filepath.Join(home, ".dbbridge", "dbbridge.db"), DefaultSource(home, "/work", nil))
	})

	t.Run("home not writable falls back to cwd", func(t *testing.T) {
		blocker := testutil.WriteFile(t, t.TempDir(), "home", "a file, not a directory")
		cwd := t.TempDir()
		assert.Equal(t, filepath.Join(cwd, "dbbridge.db"), DefaultSource(blocker, cwd, testutil.NewTestLogger(t)))
	})

	t.Run("nothing left falls back to memory", func(t *testing.T) {
		assert.Equal(t, core.MemorySource, DefaultSource("", "", nil))
	})
}
