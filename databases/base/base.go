// Package base holds the parts of a SQL connector that do not depend on the
// engine: generic select, batched insert, point update and row scanning.
package base

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/melkeydev/logistics-admin/types"
)

type SQLBase struct {
	DB       *sqlx.DB
	Dialect  Dialect
	Excluded []string
}

func (b *SQLBase) Ping(ctx context.Context) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	return b.DB.PingContext(ctx)
}

func (b *SQLBase) Close() error {
	if b.DB != nil {
		return b.DB.Close()
	}
	return nil
}

// Select reads rows inside a read-only transaction.
func (b *SQLBase) Select(ctx context.Context, table string, opts types.SelectOptions) (*types.ResultSet, error) {
	query, args, err := BuildSelect(b.Dialect, table, opts)
	if err != nil {
		return nil, err
	}

	tx, err := b.DB.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("BeginTx failed with error: %w", err)
	}
	defer tx.Commit()

	rows, err := tx.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("unable to query %s: %w", table, err)
	}
	defer rows.Close()

	return ScanRows(rows)
}

// Insert writes every row with a single statement in one transaction, so the
// batch is persisted completely or not at all.
func (b *SQLBase) Insert(ctx context.Context, table string, rows []types.Row) (int64, error) {
	query, args, err := BuildInsert(b.Dialect, table, rows)
	if err != nil {
		return 0, err
	}

	tx, err := b.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to insert into %s: %w", table, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit insert: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return int64(len(rows)), nil
	}
	return n, nil
}

// Update changes one row identified by idColumn = id and returns the number
// of affected rows.
func (b *SQLBase) Update(ctx context.Context, table, idColumn string, id any, values types.Row) (int64, error) {
	query, args, err := BuildUpdate(b.Dialect, table, idColumn, id, values)
	if err != nil {
		return 0, err
	}

	res, err := b.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update %s: %w", table, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

// CountRows returns SELECT COUNT(*) for table.
func (b *SQLBase) CountRows(ctx context.Context, q sqlx.QueryerContext, table string) (int64, error) {
	qt, err := b.Dialect.Quote(table)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := sqlx.GetContext(ctx, q, &n, "SELECT COUNT(*) FROM "+qt); err != nil {
		return 0, fmt.Errorf("failed to get row count: %w", err)
	}
	return n, nil
}

// ScanRows collects rows into a ResultSet. Byte slices become strings, and
// JSON columns are decoded so nested values keep their structure.
func ScanRows(rows *sqlx.Rows) (*types.ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("unable to read columns: %w", err)
	}

	jsonCols := make(map[string]bool)
	if colTypes, err := rows.ColumnTypes(); err == nil {
		for _, ct := range colTypes {
			switch strings.ToUpper(ct.DatabaseTypeName()) {
			case "JSON", "JSONB":
				jsonCols[ct.Name()] = true
			}
		}
	}

	result := &types.ResultSet{Columns: columns, Rows: []types.Row{}}
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("unable to scan row: %w", err)
		}
		for k, v := range row {
			row[k] = normalize(v, jsonCols[k])
		}
		result.Rows = append(result.Rows, types.Row(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}

	return result, nil
}

func normalize(v any, isJSON bool) any {
	var raw []byte
	switch t := v.(type) {
	case []byte:
		raw = t
	case string:
		if !isJSON {
			return t
		}
		raw = []byte(t)
	case time.Time:
		return t.UTC()
	default:
		return v
	}

	if isJSON {
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err == nil {
			return decoded
		}
	}
	return string(raw)
}
