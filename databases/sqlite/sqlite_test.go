package sqlite

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/melkeydev/logistics-admin/databases/base"
	"github.com/melkeydev/logistics-admin/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConnector(t *testing.T) *SQLiteConnector {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	db.MustExec(`CREATE TABLE vendors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		status TEXT
	)`)
	db.MustExec(`CREATE TABLE deliveries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		location TEXT NOT NULL,
		description TEXT,
		vendor_id INTEGER,
		user_id TEXT,
		status TEXT,
		completed_at DATETIME
	)`)
	db.MustExec(`INSERT INTO vendors (name, status) VALUES ('FastFood Co.', 'active'), ('Fashion Hub', 'inactive')`)

	return FromDB(db, base.DefaultExcludedPrefixes)
}

func TestSQLiteConnector_ListTables(t *testing.T) {
	c := newTestConnector(t)

	tables, err := c.ListTables(context.Background())
	require.NoError(t, err)
	// sqlite_sequence is created by AUTOINCREMENT and must stay hidden
	assert.Equal(t, []string{"deliveries", "vendors"}, tables)
}

func TestSQLiteConnector_DescribeTable(t *testing.T) {
	c := newTestConnector(t)

	desc, err := c.DescribeTable(context.Background(), "vendors")
	require.NoError(t, err)
	assert.Equal(t, int64(2), desc.RowCount)
	assert.Equal(t, []string{"id"}, desc.PrimaryKeys)
	require.Len(t, desc.Columns, 3)
	assert.Equal(t, "name", desc.Columns[1].Name)
	assert.False(t, desc.Columns[1].Nullable)

	_, err = c.DescribeTable(context.Background(), "ghosts")
	assert.ErrorIs(t, err, types.ErrUnknownTable)
}

func TestSQLiteConnector_SelectInsertUpdate(t *testing.T) {
	c := newTestConnector(t)
	ctx := context.Background()

	active, err := c.Select(ctx, "vendors", types.SelectOptions{
		Filters: []types.Filter{{Column: "status", Op: types.OpEq, Value: "active"}},
	})
	require.NoError(t, err)
	require.Len(t, active.Rows, 1)
	assert.Equal(t, "FastFood Co.", active.Rows[0]["name"])

	n, err := c.Insert(ctx, "deliveries", []types.Row{
		{"location": "Ikeja", "vendor_id": 1, "user_id": "u1", "status": "pending"},
		{"location": "Lekki", "description": "fragile", "vendor_id": 1, "user_id": "u1", "status": "pending"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = c.Update(ctx, "deliveries", "id", 2, types.Row{
		"status":       "completed",
		"completed_at": types.CurrentTimestamp,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rs, err := c.Select(ctx, "deliveries", types.SelectOptions{
		Filters: []types.Filter{{Column: "id", Value: 2}},
	})
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
	assert.Equal(t, "completed", rs.Rows[0]["status"])
	assert.NotNil(t, rs.Rows[0]["completed_at"])
	assert.Nil(t, rs.Rows[0]["description"])
}

func TestSQLiteConnector_InsertIsAllOrNothing(t *testing.T) {
	c := newTestConnector(t)
	ctx := context.Background()

	// second draft violates NOT NULL on location
	_, err := c.Insert(ctx, "deliveries", []types.Row{
		{"location": "Ikeja", "status": "pending"},
		{"location": nil, "status": "pending"},
	})
	require.Error(t, err)

	rs, err := c.Select(ctx, "deliveries", types.SelectOptions{})
	require.NoError(t, err)
	assert.Empty(t, rs.Rows)
}
