// Package handlers implements the MCP tools that expose the admin
// operations to assistants.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/melkeydev/logistics-admin/bulk"
	"github.com/melkeydev/logistics-admin/databases"
	"github.com/melkeydev/logistics-admin/events"
	"github.com/melkeydev/logistics-admin/render"
	"github.com/melkeydev/logistics-admin/screens"
	"github.com/melkeydev/logistics-admin/viewer"
)

type ToolHandler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// ListTablesHandler creates a handler for the list_tables tool
func ListTablesHandler(connector databases.Connector) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tables, err := connector.ListTables(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch tables: %v", err)), nil
		}
		return jsonResult(tables)
	}
}

// DescribeTableHandler creates a handler for the describe_table tool
func DescribeTableHandler(connector databases.Connector) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		table, err := request.RequireString("table")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Missing table parameter: %v", err)), nil
		}
		if res := checkListed(ctx, connector, table); res != nil {
			return res, nil
		}

		desc, err := connector.DescribeTable(ctx, table)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Describe failed: %v", err)), nil
		}
		return jsonResult(desc)
	}
}

// checkListed rejects tables that discovery hides or that do not exist.
func checkListed(ctx context.Context, connector databases.Connector, table string) *mcp.CallToolResult {
	tables, err := connector.ListTables(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch tables: %v", err))
	}
	if !slices.Contains(tables, table) {
		return mcp.NewToolResultError(fmt.Sprintf("Unknown table %q", table))
	}
	return nil
}

// FetchRowsHandler creates a handler for the fetch_rows tool. Rows are
// capped like the database viewer.
func FetchRowsHandler(connector databases.Connector, rowLimit int) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		table, err := request.RequireString("table")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Missing table parameter: %v", err)), nil
		}
		format, err := render.ParseFormat(request.GetString("format", string(render.FormatJSON)))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		v := viewer.New(connector, request.GetInt("limit", rowLimit), nil)
		if err := v.Open(ctx, table); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Fetch failed: %v", err)), nil
		}

		var buf bytes.Buffer
		if err := render.Write(&buf, v.State().Rows, format); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to render rows: %v", err)), nil
		}
		return mcp.NewToolResultText(buf.String()), nil
	}
}

// UpdateStatusHandler creates a handler for the update_status tool
func UpdateStatusHandler(connector databases.Connector, publisher events.Publisher, logger *slog.Logger) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kindName, err := request.RequireString("kind")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Missing kind parameter: %v", err)), nil
		}
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Missing id parameter: %v", err)), nil
		}
		status, err := request.RequireString("status")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Missing status parameter: %v", err)), nil
		}

		kind, err := screens.Lookup(kindName)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		sc := screens.NewScreen(kind, connector, publisher, logger, 1)
		if err := sc.UpdateStatus(ctx, screens.ParseID(id), status); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Update failed: %v", err)), nil
		}
		return mcp.NewToolResultText(sc.State().Message), nil
	}
}

// CreateDeliveriesHandler creates a handler for the create_deliveries tool.
// The drafts go through the same validation as the bulk delivery form.
func CreateDeliveriesHandler(connector databases.Connector, publisher events.Publisher, logger *slog.Logger) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		userID, err := request.RequireString("user_id")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Missing user_id parameter: %v", err)), nil
		}
		drafts, err := draftsArgument(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		form := bulk.NewForm(connector, publisher, logger)
		for i, d := range drafts {
			if i > 0 {
				form.Append()
			}
			for field, value := range map[string]string{
				"location":    d.Location,
				"description": d.Description,
				"vendor_id":   strconv.FormatInt(d.VendorID, 10),
			} {
				if err := form.Update(i, field, value); err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
			}
		}

		n, err := form.Submit(ctx, userID)
		if err != nil {
			msg := form.State().Error
			if msg == "" {
				msg = err.Error()
			}
			return mcp.NewToolResultError(msg), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%s (%d created)", bulk.SuccessMessage, n)), nil
	}
}

func draftsArgument(request mcp.CallToolRequest) ([]bulk.Draft, error) {
	raw, ok := request.GetArguments()["drafts"]
	if !ok {
		return nil, fmt.Errorf("missing drafts parameter")
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid drafts parameter: %w", err)
	}
	var drafts []bulk.Draft
	if err := json.Unmarshal(data, &drafts); err != nil {
		return nil, fmt.Errorf("invalid drafts parameter: %w", err)
	}
	if len(drafts) == 0 {
		return nil, fmt.Errorf("at least one draft is required")
	}
	return drafts, nil
}

// SummaryHandler creates a handler for the summarize tool
func SummaryHandler(connector databases.Connector, rowLimit int) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(screens.Dashboard(ctx, connector, rowLimit))
	}
}
