package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Gdev2986/venda-gestao-nexus-sub002/internal/importer"
	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		force  bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "import <plik>...",
		Short: "Importuj pliki CSV/XLSX",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.openDB()
			if err != nil {
				return err
			}
			imp, err := importer.NewFromDB(a.log, a.cfg, h.DB)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var failed int
			for _, path := range args {
				res, err := imp.ImportFile(cmd.Context(), path, force)
				if err != nil {
					failed++
					a.log.Error().Err(err).Str("file", path).Msg("import nieudany")
					fmt.Fprintf(out, "%s: BŁĄD: %v\n", path, err)
					continue
				}
				if asJSON {
					if err := writeJSON(out, res); err != nil {
						return err
					}
					continue
				}
				printResult(out, res)
			}
			if failed > 0 {
				return fmt.Errorf("%d z %d plików nie zaimportowano", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "importuj ponownie plik już zaimportowany")
	cmd.Flags().BoolVar(&asJSON, "json", false, "raport jako JSON")
	return cmd
}

func printResult(w io.Writer, res importer.FileResult) {
	if res.Skipped {
		fmt.Fprintf(w, "%s: już zaimportowany (import_id=%d), pomijam\n", res.File, res.ImportID)
		return
	}
	r := res.Report
	fmt.Fprintf(w, "%s: import_id=%d źródło=%s wiersze=%d zapisane=%d pominięte=%d nowe maszyny=%d ostrzeżenia=%d strategia=%s czas=%s\n",
		res.File, res.ImportID, r.Source, r.RowsRead, r.Inserted, r.Skipped, r.MachinesCreated,
		len(r.Warnings), r.Strategy.Strategy, r.Elapsed.Round(time.Millisecond))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
