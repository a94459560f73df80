package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/Gdev2986/venda-gestao-nexus-sub002/internal/db"
	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Utwórz/zaktualizuj schemat bazy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := a.openDB()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schemat OK (%s %s)\n", h.Driver, h.Path)
			return nil
		},
	}
}

// imports: historia import_files
func newImportsCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "imports",
		Short: "Ostatnie importy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := a.openDB()
			if err != nil {
				return err
			}
			recs, err := db.NewRepo(h.DB, a.log).RecentImports(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPLIK\tŹRÓDŁO\tSTATUS\tWIERSZE\tZAPISANE\tOSTRZEŻENIA\tBŁĄD")
			for _, r := range recs {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
					r.ImportID, r.Filename, r.Source, statusLabel(r.Status),
					r.RowsRead, r.RowsInserted, r.WarningsCount, r.LastError)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "ile importów")
	return cmd
}

func statusLabel(s int) string {
	switch s {
	case db.ImportPending:
		return "pending"
	case db.ImportDone:
		return "done"
	case db.ImportError:
		return "error"
	}
	return fmt.Sprint(s)
}
