package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/melkeydev/logistics-admin/databases/base"
	"github.com/melkeydev/logistics-admin/types"
)

type SQLiteConnector struct {
	base.SQLBase
}

func NewSQLiteConnector(connectionString string, excluded []string) (*SQLiteConnector, error) {
	db, err := sqlx.Open("sqlite3", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	connector := FromDB(db, excluded)

	// Test the connection
	if err := connector.Ping(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return connector, nil
}

func FromDB(db *sqlx.DB, excluded []string) *SQLiteConnector {
	return &SQLiteConnector{
		SQLBase: base.SQLBase{DB: db, Dialect: base.SQLite, Excluded: excluded},
	}
}

// Discover
func (c *SQLiteConnector) ListTables(ctx context.Context) ([]string, error) {
	tx, err := c.DB.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Commit()

	var names []string
	err = tx.SelectContext(ctx, &names, `
		SELECT name
		FROM sqlite_master
		WHERE type='table'
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}

	return base.FilterTables(names, c.Excluded), nil
}

func (c *SQLiteConnector) DescribeTable(ctx context.Context, table string) (*types.TableDescription, error) {
	if err := base.ValidateIdentifier(table); err != nil {
		return nil, err
	}

	tx, err := c.DB.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Commit()

	// Check if table exists
	var exists bool
	err = tx.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM sqlite_master
			WHERE type='table' AND name = ?
		)`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to check table existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownTable, table)
	}

	columns, primaryKeys, err := c.loadColumns(ctx, tx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to load columns: %w", err)
	}

	rowCount, err := c.CountRows(ctx, tx, table)
	if err != nil {
		return nil, err
	}

	return &types.TableDescription{
		Name:        table,
		Columns:     columns,
		RowCount:    rowCount,
		PrimaryKeys: primaryKeys,
	}, nil
}

func (c *SQLiteConnector) loadColumns(ctx context.Context, tx *sqlx.Tx, table string) ([]types.Column, []string, error) {
	// table was validated as an identifier by the caller
	query := fmt.Sprintf("PRAGMA table_info('%s')", table)

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	var columns []types.Column
	var primaryKeys []string
	for rows.Next() {
		var cid int
		var name, dataType string
		var notNull int
		var defaultValue *string
		var pk int

		if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
			return nil, nil, fmt.Errorf("failed to scan column: %w", err)
		}

		columns = append(columns, types.Column{
			Name:     name,
			Type:     dataType,
			Nullable: notNull == 0,
		})
		if pk > 0 {
			primaryKeys = append(primaryKeys, name)
		}
	}

	return columns, primaryKeys, rows.Err()
}
