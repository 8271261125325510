package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/melkeydev/logistics-admin/databases/base"
	"github.com/melkeydev/logistics-admin/types"
)

const defaultSchema = "public"

type PostgresConnector struct {
	base.SQLBase
	schema string
}

func NewPostgresConnector(connectionString string, excluded []string) (*PostgresConnector, error) {
	config, err := pgx.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	config.PreferSimpleProtocol = true

	db := sqlx.NewDb(stdlib.OpenDB(*config), "pgx")
	connector := FromDB(db, excluded)

	// Test the connection
	if err := connector.Ping(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return connector, nil
}

// FromDB wraps an already opened handle.
func FromDB(db *sqlx.DB, excluded []string) *PostgresConnector {
	return &PostgresConnector{
		SQLBase: base.SQLBase{DB: db, Dialect: base.Postgres, Excluded: excluded},
		schema:  defaultSchema,
	}
}

// Discover
func (c *PostgresConnector) ListTables(ctx context.Context) ([]string, error) {
	tx, err := c.DB.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Commit()

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		AND table_schema = $1
		ORDER BY table_name
	`

	var names []string
	if err := tx.SelectContext(ctx, &names, query, c.schema); err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}

	return base.FilterTables(names, c.Excluded), nil
}

func (c *PostgresConnector) DescribeTable(ctx context.Context, table string) (*types.TableDescription, error) {
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
			WHERE table_schema = $1 AND table_name = $2
		)`, c.schema, table)
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
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
		AND tc.table_schema = $1 AND tc.table_name = $2
		ORDER BY kcu.ordinal_position`, c.schema, table)
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

func (c *PostgresConnector) loadColumns(ctx context.Context, tx *sqlx.Tx, table string) ([]types.Column, error) {
	query := `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_name = $1 AND table_schema = $2
		ORDER BY ordinal_position
	`

	rows, err := tx.QueryContext(ctx, query, table, c.schema)
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
