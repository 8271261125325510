package mcp

import (
	"log/slog"

	goMCP "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/melkeydev/logistics-admin/databases"
	"github.com/melkeydev/logistics-admin/events"
	"github.com/melkeydev/logistics-admin/handlers"
	"github.com/melkeydev/logistics-admin/screens"
)

const (
	ServerName    = "logistics-admin"
	ServerVersion = "0.1.0"
)

type Deps struct {
	Connector databases.Connector
	Publisher events.Publisher
	Logger    *slog.Logger
	RowLimit  int
}

func NewServer(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)
	RegisterTools(s, deps)
	return s
}

func kindNames() []string {
	names := make([]string, len(screens.Kinds))
	for i, k := range screens.Kinds {
		names[i] = k.Name
	}
	return names
}

func RegisterTools(s *server.MCPServer, deps Deps) {
	// Discovery tools
	listTool := goMCP.NewTool("list_tables",
		goMCP.WithDescription("List the application tables, hiding migration and system tables"),
	)

	describeTool := goMCP.NewTool("describe_table",
		goMCP.WithDescription("Describe the columns, primary key and row count of a table"),
		goMCP.WithString("table",
			goMCP.Required(),
			goMCP.Description("Name of the table to describe"),
		),
	)

	fetchTool := goMCP.NewTool("fetch_rows",
		goMCP.WithDescription("Fetch up to 100 rows of a table"),
		goMCP.WithString("table",
			goMCP.Required(),
			goMCP.Description("Name of the table to read"),
		),
		goMCP.WithString("format",
			goMCP.Description("Output format: json, text, html, csv or markdown (default: json)"),
			goMCP.Enum("json", "text", "html", "csv", "markdown"),
		),
		goMCP.WithNumber("limit",
			goMCP.Description("Number of rows to return (default and maximum: 100)"),
		),
	)

	// Mutations
	statusTool := goMCP.NewTool("update_status",
		goMCP.WithDescription("Change the status of one record"),
		goMCP.WithString("kind",
			goMCP.Required(),
			goMCP.Description("Entity kind"),
			goMCP.Enum(kindNames()...),
		),
		goMCP.WithString("id",
			goMCP.Required(),
			goMCP.Description("Record id"),
		),
		goMCP.WithString("status",
			goMCP.Required(),
			goMCP.Description("New status; must be one of the kind's statuses"),
		),
	)

	createTool := goMCP.NewTool("create_deliveries",
		goMCP.WithDescription("Create several pending deliveries in one batch"),
		goMCP.WithString("user_id",
			goMCP.Required(),
			goMCP.Description("User the deliveries are created for"),
		),
		goMCP.WithArray("drafts",
			goMCP.Required(),
			goMCP.Description("Deliveries to create"),
			goMCP.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"location":    map[string]any{"type": "string"},
					"description": map[string]any{"type": "string"},
					"vendor_id":   map[string]any{"type": "integer"},
				},
				"required": []string{"location", "vendor_id"},
			}),
		),
	)

	summaryTool := goMCP.NewTool("summarize",
		goMCP.WithDescription("Count the records of every entity kind per status"),
	)

	s.AddTool(listTool, handlers.ListTablesHandler(deps.Connector))
	s.AddTool(describeTool, handlers.DescribeTableHandler(deps.Connector))
	s.AddTool(fetchTool, handlers.FetchRowsHandler(deps.Connector, deps.RowLimit))
	s.AddTool(statusTool, handlers.UpdateStatusHandler(deps.Connector, deps.Publisher, deps.Logger))
	s.AddTool(createTool, handlers.CreateDeliveriesHandler(deps.Connector, deps.Publisher, deps.Logger))
	s.AddTool(summaryTool, handlers.SummaryHandler(deps.Connector, deps.RowLimit))
}
