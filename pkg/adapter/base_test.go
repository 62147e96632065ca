package adapter

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/dbbridge/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockBase(t *testing.T) (*BaseSQLAdapter, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	conn, err := db.Conn(context.Background())
	require.NoError(t, err)

	base := NewBase("mock", Options{})
	base.DB = db
	base.Conn = conn
	return &base, mock
}

func TestBaseSQLAdapter_Close(t *testing.T) {
	tests := []struct {
		name    string
		setupDB bool
	}{
		{
			name:    "close with nil DB",
			setupDB: false,
		},
		{
			name:    "close with open DB",
			setupDB: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := &BaseSQLAdapter{}

			if tt.setupDB {
				var mock sqlmock.Sqlmock
				base, mock = newMockBase(t)
				mock.ExpectClose()
			}

			assert.NoError(t, base.Close())
			assert.NoError(t, base.Close(), "second close is a no-op")
			assert.False(t, base.IsConnected())
		})
	}
}

func TestBaseSQLAdapter_Execute(t *testing.T) {
	tests := []struct {
		name        string
		setupDB     bool
		setupMock   func(mock sqlmock.Sqlmock)
		sql         string
		wantColumns []string
		wantRows    int
		expectErr   bool
		errMsg      string
	}{
		{
			name:      "execute without connection",
			setupDB:   false,
			sql:       "SELECT 1",
			expectErr: true,
			errMsg:    "database connection not established",
		},
		{
			name:    "query returns rows",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "name"}).
					AddRow(1, "alice").
					AddRow(2, []byte("bob"))
				mock.ExpectQuery("SELECT").WillReturnRows(rows)
			},
			sql:         "SELECT id, name FROM users",
			wantColumns: []string{"id", "name"},
			wantRows:    2,
		},
		{
			name:    "statement without result set",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("CREATE TABLE").WillReturnRows(sqlmock.NewRows(nil))
			},
			sql: "CREATE TABLE users (id INT)",
		},
		{
			name:    "query with error",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("INVALID").WillReturnError(assert.AnError)
			},
			sql:       "INVALID SQL",
			expectErr: true,
			errMsg:    "query failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			base := &BaseSQLAdapter{}

			if tt.setupDB {
				var mock sqlmock.Sqlmock
				base, mock = newMockBase(t)
				if tt.setupMock != nil {
					tt.setupMock(mock)
				}
				mock.ExpectClose()
			}
			defer func() { _ = base.Close() }()

			cursor, err := base.Execute(ctx, tt.sql)
			if tt.expectErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantColumns, cursor.Columns())
			assert.Equal(t, len(tt.wantColumns) > 0, cursor.HasColumns())

			rows, err := cursor.FetchMany(10)
			require.NoError(t, err)
			assert.Len(t, rows, tt.wantRows)
		})
	}
}

func TestBaseSQLAdapter_ExecuteWrapsQueryError(t *testing.T) {
	base, mock := newMockBase(t)
	mock.ExpectQuery("SELEC").WillReturnError(assert.AnError)
	mock.ExpectClose()
	defer func() { _ = base.Close() }()

	_, err := base.Execute(context.Background(), "SELEC 1")

	var qerr *core.QueryError
	require.ErrorAs(t, err, &qerr)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestBaseSQLAdapter_AcknowledgeDiscardsSummaryRows(t *testing.T) {
	base, mock := newMockBase(t)
	mock.ExpectQuery("INSERT").WillReturnRows(sqlmock.NewRows([]string{"Count"}).AddRow(3))
	mock.ExpectClose()
	defer func() { _ = base.Close() }()

	cursor, err := base.Acknowledge(context.Background(), "INSERT INTO t VALUES (1), (2), (3)")
	require.NoError(t, err)
	assert.False(t, cursor.HasColumns())

	rows, err := cursor.FetchMany(10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCursor_FetchManyBatches(t *testing.T) {
	base, mock := newMockBase(t)
	rows := sqlmock.NewRows([]string{"n", "label"})
	for i := range 5 {
		rows.AddRow(i, []byte("row"))
	}
	mock.ExpectQuery("SELECT").WillReturnRows(rows)
	mock.ExpectClose()
	defer func() { _ = base.Close() }()

	cursor, err := base.Execute(context.Background(), "SELECT n, label FROM t")
	require.NoError(t, err)

	first, err := cursor.FetchMany(2)
	require.NoError(t, err)
	assert.Len(t, first, 2)
	assert.Equal(t, "row", first[0][1], "byte slices become strings")

	second, err := cursor.FetchMany(10)
	require.NoError(t, err)
	assert.Len(t, second, 3)

	third, err := cursor.FetchMany(10)
	require.NoError(t, err)
	assert.Empty(t, third)
}

func TestBaseSQLAdapter_RequireWithoutCatalog(t *testing.T) {
	base := NewBase("ghost", Options{})

	err := base.Open(context.Background(), "ghost-driver-not-linked", "example.com/ghost", "dsn")

	missing, ok := core.IsMissingDriver(err)
	require.True(t, ok)
	assert.Equal(t, "ghost-driver-not-linked", missing.Driver)
	assert.Equal(t, "example.com/ghost", missing.Package)
	assert.False(t, base.IsConnected())
}
