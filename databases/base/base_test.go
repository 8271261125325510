package base

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/melkeydev/logistics-admin/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockBase(t *testing.T, d Dialect) (*SQLBase, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &SQLBase{DB: sqlx.NewDb(db, "pgx"), Dialect: d}, mock
}

func TestSQLBase_Ping(t *testing.T) {
	var empty SQLBase
	assert.EqualError(t, empty.Ping(context.Background()), "database connection not established")
	assert.NoError(t, empty.Close())
}

func TestSQLBase_Select(t *testing.T) {
	b, mock := newMockBase(t, Postgres)
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("WAT", 3600))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT * FROM "payments" WHERE "status" = $1 LIMIT 100`).
		WithArgs("pending").
		WillReturnRows(mock.NewRowsWithColumnDefinition(
			sqlmock.NewColumn("id").OfType("INT8", int64(0)),
			sqlmock.NewColumn("reference").OfType("TEXT", []byte{}),
			sqlmock.NewColumn("details").OfType("JSONB", []byte{}),
			sqlmock.NewColumn("created_at").OfType("TIMESTAMPTZ", time.Time{}),
		).AddRow(int64(1), []byte("TXN-1"), []byte(`{"fee":184,"for":"delivery"}`), created))
	mock.ExpectCommit()

	rs, err := b.Select(context.Background(), "payments", types.SelectOptions{
		Filters: []types.Filter{{Column: "status", Op: types.OpEq, Value: "pending"}},
		Limit:   100,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "reference", "details", "created_at"}, rs.Columns)
	require.Len(t, rs.Rows, 1)
	row := rs.Rows[0]
	assert.Equal(t, int64(1), row["id"])
	assert.Equal(t, "TXN-1", row["reference"])
	assert.Equal(t, map[string]any{"fee": float64(184), "for": "delivery"}, row["details"])
	assert.Equal(t, created.UTC(), row["created_at"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLBase_SelectRejectsBadTable(t *testing.T) {
	b, mock := newMockBase(t, Postgres)

	_, err := b.Select(context.Background(), "users; --", types.SelectOptions{})
	assert.ErrorIs(t, err, types.ErrInvalidIdentifier)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLBase_Insert(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		want      int64
		expectErr bool
	}{
		{
			name: "batch committed",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO "deliveries" ("location", "status") VALUES ($1, $2), ($3, $4)`).
					WithArgs("Ikeja", "pending", "Lekki", "pending").
					WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectCommit()
			},
			want: 2,
		},
		{
			name: "batch rolled back",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO "deliveries" ("location", "status") VALUES ($1, $2), ($3, $4)`).
					WillReturnError(assert.AnError)
				mock.ExpectRollback()
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, mock := newMockBase(t, Postgres)
			tt.setupMock(mock)

			n, err := b.Insert(context.Background(), "deliveries", []types.Row{
				{"location": "Ikeja", "status": "pending"},
				{"location": "Lekki", "status": "pending"},
			})
			if tt.expectErr {
				assert.ErrorIs(t, err, assert.AnError)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, n)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSQLBase_Update(t *testing.T) {
	b, mock := newMockBase(t, MySQL)

	mock.ExpectExec("UPDATE `deliveries` SET `completed_at` = CURRENT_TIMESTAMP, `status` = ? WHERE `id` = ?").
		WithArgs("completed", 4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := b.Update(context.Background(), "deliveries", "id", 4, types.Row{
		"status":       "completed",
		"completed_at": types.CurrentTimestamp,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
