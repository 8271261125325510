package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/melkeydev/logistics-admin/databases/base"
	"github.com/melkeydev/logistics-admin/types"
)

type MySQLConnector struct {
	base.SQLBase
}

// connectionDSN adds the driver options the connector relies on.
func connectionDSN(connectionString string) (string, error) {
	cfg, err := mysql.ParseDSN(connectionString)
	if err != nil {
		return "", fmt.Errorf("failed to parse connection string: %w", err)
	}
	// DATETIME and TIMESTAMP columns should arrive as time.Time, not bytes.
	cfg.ParseTime = true
	// Affected rows count matched rows, so an update to the current value
	// still reports 1.
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

func NewMySQLConnector(connectionString string, excluded []string) (*MySQLConnector, error) {
	dsn, err := connectionDSN(connectionString)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	connector := FromDB(db, excluded)

	if err := connector.Ping(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return connector, nil
}

func FromDB(db *sqlx.DB, excluded []string) *MySQLConnector {
	return &MySQLConnector{
		SQLBase: base.SQLBase{DB: db, Dialect: base.MySQL, Excluded: excluded},
	}
}

// Discover
func (c *MySQLConnector) ListTables(ctx context.Context) ([]string, error) {
	tx, err := c.DB.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Commit()

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		AND table_schema = DATABASE()
		ORDER BY table_name
	`

	var names []string
	if err := tx.SelectContext(ctx, &names, query); err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}

	return base.FilterTables(names, c.Excluded), nil
}

// DescribeTable returns detailed information about a specific table
func (c *MySQLConnector) DescribeTable(ctx context.Context, table string) (*types.TableDescription, error) {
	if err := base.ValidateIdentifier(table); err != nil {
		return nil, err
	}

	tx, err := c.DB.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Commit()

	var exists bool
	err = tx.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = DATABASE() AND table_name = ?
		)`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to check table existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownTable, table)
	}

	columns, err := c.loadColumns(ctx, tx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to load columns: %w", err)
	}

	var primaryKeys []string
	err = tx.SelectContext(ctx, &primaryKeys, `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = DATABASE()
		AND table_name = ?
		AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to get primary keys: %w", err)
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

func (c *MySQLConnector) loadColumns(ctx context.Context, tx *sqlx.Tx, table string) ([]types.Column, error) {
	query := `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_name = ? AND table_schema = DATABASE()
		ORDER BY ordinal_position
	`

	rows, err := tx.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	var columns []types.Column
	for rows.Next() {
		var name, dataType, isNullable string
		if err := rows.Scan(&name, &dataType, &isNullable); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}

		columns = append(columns, types.Column{
			Name:     name,
			Type:     dataType,
			Nullable: isNullable == "YES",
		})
	}

	return columns, rows.Err()
}
