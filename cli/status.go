package cli

import (
	"fmt"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/melkeydev/logistics-admin/screens"
	"github.com/spf13/cobra"
)

func newStatusCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <kind> <id> <status>",
		Short: "Change the status of one record",
		Example: `  logistics-admin status deliveries 3 completed
  logistics-admin status support 12 resolved`,
		Args: cobra.ExactArgs(3),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			switch len(args) {
			case 0:
				names := make([]string, len(screens.Kinds))
				for i, k := range screens.Kinds {
					names[i] = k.Name
				}
				return names, cobra.ShellCompDirectiveNoFileComp
			case 2:
				if k, err := screens.Lookup(args[0]); err == nil {
					return k.Statuses, cobra.ShellCompDirectiveNoFileComp
				}
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := screens.Lookup(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(root.configPath, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			sc := screens.NewScreen(kind, a.connector, a.publisher, a.logger, 1)
			if err := sc.UpdateStatus(cmd.Context(), screens.ParseID(args[1]), args[2]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sc.State().Message)
			return nil
		},
	}
}

func newSummaryCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Count records per status for every screen",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(root.configPath, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Screen", "Total", "By status"})
			for _, s := range screens.Dashboard(cmd.Context(), a.connector, a.cfg.Database.RowLimit) {
				if s.Error != "" {
					t.AppendRow(table.Row{s.Title, "-", s.Error})
					continue
				}
				t.AppendRow(table.Row{s.Title, s.Total, formatCounts(s.ByStatus)})
			}
			t.Render()
			return nil
		},
	}
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := ""
	for i, k := range keys {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s=%d", k, counts[k])
	}
	return out
}
