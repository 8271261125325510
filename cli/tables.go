package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/melkeydev/logistics-admin/render"
	"github.com/melkeydev/logistics-admin/viewer"
	"github.com/spf13/cobra"
)

func newTablesCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the application tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(root.configPath, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			tables, err := a.connector.ListTables(cmd.Context())
			if err != nil {
				return err
			}
			for _, t := range tables {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
}

func newDescribeCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <table>",
		Short: "Show the columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root.configPath, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			desc, err := a.connector.DescribeTable(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.SetTitle(desc.Name)
			t.AppendHeader(table.Row{"Column", "Type", "Nullable"})
			for _, col := range desc.Columns {
				t.AppendRow(table.Row{col.Name, col.Type, col.Nullable})
			}
			t.AppendFooter(table.Row{"Rows", desc.RowCount, ""})
			t.Render()
			return nil
		},
	}
}

func newRowsCommand(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "rows <table>",
		Short: "Print up to 100 rows of a table",
		Example: `  logistics-admin rows deliveries
  logistics-admin rows vendors --format csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			a, err := newApp(root.configPath, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			v := viewer.New(a.connector, a.cfg.Database.RowLimit, a.logger)
			if err := v.Open(cmd.Context(), args[0]); err != nil {
				return err
			}
			return render.Write(cmd.OutOrStdout(), v.State().Rows, f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text|json|html|csv|markdown)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json", "html", "csv", "markdown"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}
