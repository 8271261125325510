package cli

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/melkeydev/logistics-admin/mcp"
	"github.com/spf13/cobra"
)

func newMCPCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the admin tools over MCP on stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// stdout carries the protocol, logs go to stderr
			a, err := newApp(root.configPath, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			s := mcp.NewServer(mcp.Deps{
				Connector: a.connector,
				Publisher: a.publisher,
				Logger:    a.logger,
				RowLimit:  a.cfg.Database.RowLimit,
			})
			a.logger.Info("mcp server ready", "name", mcp.ServerName)
			if err := server.ServeStdio(s); err != nil {
				return fmt.Errorf("mcp server error: %w", err)
			}
			return nil
		},
	}
}
