package cli

import (
	"fmt"

	"github.com/Gdev2986/venda-gestao-nexus-sub002/internal/importer"
	"github.com/Gdev2986/venda-gestao-nexus-sub002/internal/reader"
	"github.com/spf13/cobra"
)

// detect nie dotyka bazy: pokazuje źródło i kilka znormalizowanych wierszy.
func newDetectCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "detect <plik>",
		Short: "Rozpoznaj źródło pliku i pokaż znormalizowane wiersze",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := reader.ReadFile(args[0], reader.Options{Charset: a.cfg.Import.Charset})
			if err != nil {
				return err
			}
			source, res := importer.Detect(rows)

			data := res.Data
			if limit >= 0 && len(data) > limit {
				data = data[:limit]
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"file":     args[0],
				"source":   source,
				"rows":     len(rows),
				"sample":   data,
				"warnings": res.Warnings,
				"summary":  fmt.Sprintf("%d/%d wierszy znormalizowanych", len(res.Data), len(rows)),
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "ile wierszy pokazać (-1 = wszystkie)")
	return cmd
}
