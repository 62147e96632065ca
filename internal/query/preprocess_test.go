package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreprocess_Flags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Request
	}{
		{
			name: "plain select gets limit",
			raw:  "SELECT * FROM users",
			want: Request{SQL: "SELECT * FROM users LIMIT 1000"},
		},
		{
			name: "json flag",
			raw:  `SELECT name FROM users WHERE name="Alice" --json`,
			want: Request{SQL: `SELECT name FROM users WHERE name="Alice"`, JSON: true},
		},
		{
			name: "csv and output in any order",
			raw:  "--output out.csv SELECT * FROM t --csv",
			want: Request{SQL: "SELECT * FROM t", CSV: true, Output: "out.csv"},
		},
		{
			name: "no-limit",
			raw:  "select * from big --no-limit",
			want: Request{SQL: "select * from big", NoLimit: true},
		},
		{
			name: "all flags",
			raw:  "--no-limit SELECT 1 --json --csv --output /tmp/x.json",
			want: Request{SQL: "SELECT 1", JSON: true, CSV: true, NoLimit: true, Output: "/tmp/x.json"},
		},
		{
			name: "flag substrings are left alone",
			raw:  "SELECT '--jsonish' AS a, x--csv FROM t",
			want: Request{SQL: "SELECT '--jsonish' AS a, x--csv FROM t LIMIT 1000"},
		},
		{
			name: "output without value stays in text",
			raw:  "SELECT 1 --output",
			want: Request{SQL: "SELECT 1 --output LIMIT 1000"},
		},
		{
			name: "repeated boolean flag",
			raw:  "--json SELECT 1 --json",
			want: Request{SQL: "SELECT 1", JSON: true},
		},
		{
			name: "whitespace trimmed",
			raw:  "   SELECT 1   ",
			want: Request{SQL: "SELECT 1 LIMIT 1000"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Preprocess(tt.raw, nil)
			tt.want.Raw = tt.raw
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyLimit(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		disabled bool
		want     string
	}{
		{"select", "SELECT * FROM t", false, "SELECT * FROM t LIMIT 1000"},
		{"lowercase select", "select a from t", false, "select a from t LIMIT 1000"},
		{"existing limit any case", "SELECT * FROM t LiMiT 5", false, "SELECT * FROM t LiMiT 5"},
		{"limit substring anywhere", "SELECT unlimited FROM t", false, "SELECT unlimited FROM t"},
		{"insert untouched", "INSERT INTO t VALUES(1)", false, "INSERT INTO t VALUES(1)"},
		{"with clause untouched", "WITH x AS (SELECT 1) SELECT * FROM x", false, "WITH x AS (SELECT 1) SELECT * FROM x"},
		{"hanging where", "SELECT * FROM t WHERE", false, "SELECT * FROM t WHERE"},
		{"hanging order by", "SELECT * FROM t ORDER BY", false, "SELECT * FROM t ORDER BY"},
		{"hanging and", "SELECT * FROM t WHERE a = 1 AND", false, "SELECT * FROM t WHERE a = 1 AND"},
		{"hanging or", "SELECT * FROM t WHERE a = 1 or", false, "SELECT * FROM t WHERE a = 1 or"},
		{"hanging in", "SELECT * FROM t WHERE a IN", false, "SELECT * FROM t WHERE a IN"},
		{"hanging from", "SELECT *  FROM", false, "SELECT *  FROM"},
		{"hanging set", "SELECT set", false, "SELECT set"},
		{"keyword inside token", "SELECT * FROM t WHERE x = 'where'", false, "SELECT * FROM t WHERE x = 'where' LIMIT 1000"},
		{"trailing semicolon", "SELECT * FROM users;", false, "SELECT * FROM users LIMIT 1000;"},
		{"trailing semicolons and space", "SELECT * FROM users ; ;", false, "SELECT * FROM users LIMIT 1000 ; ;"},
		{"hanging where before semicolon", "SELECT * FROM t WHERE;", false, "SELECT * FROM t WHERE;"},
		{"limit before semicolon", "SELECT * FROM t LIMIT 3;", false, "SELECT * FROM t LIMIT 3;"},
		{"disabled", "SELECT * FROM t", true, "SELECT * FROM t"},
		{"empty", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyLimit(tt.sql, tt.disabled))
		})
	}
}

func TestPreprocess_LimitAppendedOnce(t *testing.T) {
	req := Preprocess("SELECT 1", nil)
	again := Preprocess(req.SQL, nil)
	assert.Equal(t, "SELECT 1 LIMIT 1000", again.SQL)
}

func TestPreprocess_SavedQueries(t *testing.T) {
	queries := map[string]string{
		"users":       "SELECT * FROM users",
		"users_json":  "SELECT * FROM users --json",
		"count users": "SELECT count(*) FROM users",
	}

	tests := []struct {
		name string
		raw  string
		want Request
	}{
		{
			name: "exact match",
			raw:  "users",
			want: Request{SQL: "SELECT * FROM users LIMIT 1000"},
		},
		{
			name: "trimmed match",
			raw:  "  users\n",
			want: Request{SQL: "SELECT * FROM users LIMIT 1000"},
		},
		{
			name: "mapped sql carries flags",
			raw:  "users_json",
			want: Request{SQL: "SELECT * FROM users", JSON: true},
		},
		{
			name: "name followed by flags",
			raw:  "users --csv --output u.csv",
			want: Request{SQL: "SELECT * FROM users", CSV: true, Output: "u.csv"},
		},
		{
			name: "multi word name",
			raw:  "count users",
			want: Request{SQL: "SELECT count(*) FROM users LIMIT 1000"},
		},
		{
			name: "no partial match",
			raw:  "users2",
			want: Request{SQL: "users2"},
		},
		{
			name: "no substring match",
			raw:  "SELECT * FROM users",
			want: Request{SQL: "SELECT * FROM users LIMIT 1000"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Preprocess(tt.raw, queries)
			tt.want.Raw = tt.raw
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequest_Exporting(t *testing.T) {
	assert.False(t, Request{}.Exporting())
	assert.False(t, Request{NoLimit: true}.Exporting())
	assert.True(t, Request{JSON: true}.Exporting())
	assert.True(t, Request{CSV: true}.Exporting())
}
