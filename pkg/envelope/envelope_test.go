package envelope

import (
	"errors"
	"fmt"
	"testing"

	"github.com/leapstack-labs/dbbridge/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_String(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want string
	}{
		{
			name: "print",
			resp: Print("No results."),
			want: `{"status":"success","action":"print","data":"No results."}`,
		},
		{
			name: "page",
			resp: Page("/tmp/dbbridge_1.txt", "less -S"),
			want: `{"status":"success","action":"page","data":"/tmp/dbbridge_1.txt","pager":"less -S"}`,
		},
		{
			name: "error",
			resp: Error("query failed: no such table: x"),
			want: `{"status":"error","data":"","message":"query failed: no such table: x"}`,
		},
		{
			name: "missing package",
			resp: MissingPackage("github.com/marcboeker/go-duckdb"),
			want: `{"status":"missing_pkg","data":"","package":"github.com/marcboeker/go-duckdb"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.JSONEq(t, tt.want, tt.resp.String())
		})
	}
}

func TestFromError(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name       string
		err        error
		wantStatus string
		wantMsg    string
		wantPkg    string
	}{
		{
			name:       "missing driver wrapped",
			err:        fmt.Errorf("connect: %w", &core.MissingDriverError{Driver: "duckdb", Package: "github.com/marcboeker/go-duckdb"}),
			wantStatus: StatusMissingPkg,
			wantPkg:    "github.com/marcboeker/go-duckdb",
		},
		{
			name:       "config",
			err:        &core.ConfigError{Err: cause},
			wantStatus: StatusError,
			wantMsg:    "configuration error: boom",
		},
		{
			name:       "query",
			err:        &core.QueryError{Err: cause},
			wantStatus: StatusError,
			wantMsg:    "query failed: boom",
		},
		{
			name:       "permission",
			err:        &core.PermissionError{Path: "/ro/out.json", Err: cause},
			wantStatus: StatusError,
			wantMsg:    "permission denied: cannot write to /ro/out.json: boom",
		},
		{
			name:       "untyped",
			err:        cause,
			wantStatus: StatusError,
			wantMsg:    "unexpected error: boom",
		},
		{
			name:       "nil",
			err:        nil,
			wantStatus: StatusError,
			wantMsg:    "unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := FromError(tt.err)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantMsg, resp.Message)
			assert.Equal(t, tt.wantPkg, resp.Package)
			assert.Empty(t, resp.Action, "failures carry no action")
			assert.False(t, resp.OK())
		})
	}
}

func TestUnmarshal(t *testing.T) {
	resp, err := Unmarshal([]byte(`{"status":"success","action":"page","data":"/tmp/x.json","pager":"cat"}`))
	require.NoError(t, err)
	assert.Equal(t, Page("/tmp/x.json", "cat"), resp)
	assert.True(t, resp.OK())

	_, err = Unmarshal([]byte("not json"))
	assert.Error(t, err)
}
