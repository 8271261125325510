package base

import (
	"testing"

	"github.com/melkeydev/logistics-admin/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "plain", input: "deliveries"},
		{name: "underscore prefix", input: "_prisma_migrations"},
		{name: "digits", input: "table2"},
		{name: "empty", input: "", wantErr: true},
		{name: "leading digit", input: "2fast", wantErr: true},
		{name: "quote injection", input: `users"; DROP TABLE users; --`, wantErr: true},
		{name: "dotted", input: "public.users", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrInvalidIdentifier)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFilterTables(t *testing.T) {
	names := []string{"deliveries", "pg_stat", "_prisma_migrations", "vendors", "sqlite_sequence"}

	assert.Equal(t, []string{"deliveries", "vendors"}, FilterTables(names, DefaultExcludedPrefixes))
	assert.Equal(t, names, FilterTables(names, nil))
	assert.Empty(t, FilterTables(nil, DefaultExcludedPrefixes))
}

func TestBuildSelect(t *testing.T) {
	tests := []struct {
		name      string
		dialect   Dialect
		table     string
		opts      types.SelectOptions
		wantQuery string
		wantArgs  []any
		wantErr   bool
	}{
		{
			name:      "all columns capped without ordering",
			dialect:   Postgres,
			table:     "deliveries",
			opts:      types.SelectOptions{Limit: 100},
			wantQuery: `SELECT * FROM "deliveries" LIMIT 100`,
		},
		{
			name:    "filters and order on postgres",
			dialect: Postgres,
			table:   "vendors",
			opts: types.SelectOptions{
				Columns: []string{"id", "name"},
				Filters: []types.Filter{
					{Column: "status", Op: types.OpEq, Value: "active"},
					{Column: "name", Op: types.OpLike, Value: "%Co%"},
				},
				OrderBy:    "name",
				Descending: true,
			},
			wantQuery: `SELECT "id", "name" FROM "vendors" WHERE "status" = $1 AND "name" LIKE $2 ESCAPE '\' ORDER BY "name" DESC`,
			wantArgs:  []any{"active", "%Co%"},
		},
		{
			name:    "mysql placeholders and quoting",
			dialect: MySQL,
			table:   "payments",
			opts: types.SelectOptions{
				Filters: []types.Filter{
					{Column: "status", Op: types.OpNeq, Value: "failed"},
					{Column: "details", Value: nil},
				},
				Limit: 5,
			},
			wantQuery: "SELECT * FROM `payments` WHERE `status` <> ? AND `details` IS NULL LIMIT 5",
			wantArgs:  []any{"failed"},
		},
		{
			name:    "mysql escapes the like escape",
			dialect: MySQL,
			table:   "vendors",
			opts: types.SelectOptions{
				Filters: []types.Filter{{Column: "name", Op: types.OpNotLike, Value: `%50\%%`}},
			},
			wantQuery: "SELECT * FROM `vendors` WHERE `name` NOT LIKE ? ESCAPE '\\\\'",
			wantArgs:  []any{`%50\%%`},
		},
		{
			name:    "invalid column",
			dialect: SQLite,
			table:   "users",
			opts:    types.SelectOptions{Columns: []string{"name;"}},
			wantErr: true,
		},
		{
			name:    "unknown operator",
			dialect: SQLite,
			table:   "users",
			opts:    types.SelectOptions{Filters: []types.Filter{{Column: "id", Op: "gt", Value: 1}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := BuildSelect(tt.dialect, tt.table, tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildInsert(t *testing.T) {
	rows := []types.Row{
		{"location": "Ikeja", "vendor_id": 1},
		{"location": "Lekki", "description": "fragile"},
	}

	query, args, err := BuildInsert(Postgres, "deliveries", rows)
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "deliveries" ("description", "location", "vendor_id") VALUES ($1, $2, $3), ($4, $5, $6)`,
		query)
	assert.Equal(t, []any{nil, "Ikeja", 1, "fragile", "Lekki", nil}, args)

	t.Run("empty batch", func(t *testing.T) {
		_, _, err := BuildInsert(Postgres, "deliveries", nil)
		assert.Error(t, err)
	})

	t.Run("server timestamp is not bound", func(t *testing.T) {
		query, args, err := BuildInsert(SQLite, "events", []types.Row{{"at": types.CurrentTimestamp, "kind": "x"}})
		require.NoError(t, err)
		assert.Equal(t, `INSERT INTO "events" ("at", "kind") VALUES (CURRENT_TIMESTAMP, ?)`, query)
		assert.Equal(t, []any{"x"}, args)
	})
}

func TestBuildUpdate(t *testing.T) {
	query, args, err := BuildUpdate(Postgres, "deliveries", "id", 7, types.Row{
		"status":       "completed",
		"completed_at": types.CurrentTimestamp,
	})
	require.NoError(t, err)
	assert.Equal(t,
		`UPDATE "deliveries" SET "completed_at" = CURRENT_TIMESTAMP, "status" = $1 WHERE "id" = $2`,
		query)
	assert.Equal(t, []any{"completed", 7}, args)

	_, _, err = BuildUpdate(MySQL, "deliveries", "id", 7, nil)
	assert.Error(t, err)

	_, _, err = BuildUpdate(MySQL, "deliveries", "id = 1 OR 1", 7, types.Row{"status": "x"})
	assert.ErrorIs(t, err, types.ErrInvalidIdentifier)
}
