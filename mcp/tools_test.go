package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/melkeydev/logistics-admin/databases"
	"github.com/melkeydev/logistics-admin/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_RegistersTools(t *testing.T) {
	conn, err := databases.NewConnector("memory", "demo", nil)
	require.NoError(t, err)
	s := NewServer(Deps{Connector: conn, Logger: testutil.NewTestLogger(t), RowLimit: 100})

	ctx := context.Background()
	s.HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`))
	resp := s.HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{"list_tables", "describe_table", "fetch_rows", "update_status", "create_deliveries", "summarize"} {
		assert.Contains(t, string(data), `"`+name+`"`)
	}
	assert.NotContains(t, string(data), "query_database")
}

func TestNewServer_CallTool(t *testing.T) {
	conn, err := databases.NewConnector("memory", "demo", nil)
	require.NoError(t, err)
	s := NewServer(Deps{Connector: conn, Logger: testutil.NewTestLogger(t), RowLimit: 100})

	resp := s.HandleMessage(context.Background(), []byte(
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"fetch_rows","arguments":{"table":"stores","format":"csv"}}}`))
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Westside Station")
}
