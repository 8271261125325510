package databases

import (
	"context"
	"fmt"

	"github.com/melkeydev/logistics-admin/databases/base"
	"github.com/melkeydev/logistics-admin/databases/memory"
	"github.com/melkeydev/logistics-admin/databases/mysql"
	"github.com/melkeydev/logistics-admin/databases/postgres"
	"github.com/melkeydev/logistics-admin/databases/sqlite"
	"github.com/melkeydev/logistics-admin/types"
)

// Connector is the backend every screen talks to. One instance is created at
// startup and passed to whatever needs it.
type Connector interface {
	Ping(ctx context.Context) error
	ListTables(ctx context.Context) ([]string, error)
	DescribeTable(ctx context.Context, table string) (*types.TableDescription, error)
	Select(ctx context.Context, table string, opts types.SelectOptions) (*types.ResultSet, error)
	Insert(ctx context.Context, table string, rows []types.Row) (int64, error)
	Update(ctx context.Context, table, idColumn string, id any, values types.Row) (int64, error)
	Close() error
}

// NewConnector opens a connector for dbType. A nil excluded list falls back
// to base.DefaultExcludedPrefixes.
func NewConnector(dbType, connectionString string, excluded []string) (Connector, error) {
	if excluded == nil {
		excluded = base.DefaultExcludedPrefixes
	}

	switch dbType {
	case "postgres":
		return postgres.NewPostgresConnector(connectionString, excluded)
	case "mysql":
		return mysql.NewMySQLConnector(connectionString, excluded)
	case "sqlite":
		return sqlite.NewSQLiteConnector(connectionString, excluded)
	case "memory":
		c := memory.NewMemoryConnector(excluded)
		if connectionString == "demo" {
			if err := memory.SeedDemo(context.Background(), c); err != nil {
				return nil, err
			}
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}
