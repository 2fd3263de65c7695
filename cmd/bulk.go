package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/kimberlite-group/matprofile/internal/ingest"
	"github.com/kimberlite-group/matprofile/internal/model"
)

var (
	bulkMock        bool
	bulkJSON        bool
	bulkConcurrency int
)

var bulkCmd = &cobra.Command{
	Use:   "bulk <file>",
	Short: "Profile every material code in a CSV or XLSX file",
	Long:  "Reads material codes from the given file (CSV with a material_code/code column, a bare one-code-per-line list, or an XLSX sheet) and profiles them all as one batch.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read %s", args[0])
		}

		codes, err := ingest.ReadCodes(data, args[0], cfg.Bulk.MaxCodes)
		if err != nil {
			return err
		}

		if bulkConcurrency > 0 {
			cfg.Bulk.MaxConcurrency = bulkConcurrency
		}

		env, err := initEnv(ctx, bulkMock)
		if err != nil {
			return err
		}
		defer env.Close()

		batchID, results, err := env.Service.GenerateBulk(ctx, codes)
		if err != nil {
			return eris.Wrap(err, "bulk")
		}

		if bulkJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"batch_id": batchID, "results": results})
		}

		fmt.Printf("Batch %s: %d codes\n\n", batchID, len(results))
		formatLookupList(os.Stdout, results)
		return nil
	},
}

func formatLookupList(out io.Writer, lookups []model.Lookup) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CODE\tSOURCE\tSTATUS\tCATEGORY\tSTOCK\tRISK")
	_, _ = fmt.Fprintln(w, "----\t------\t------\t--------\t-----\t----")

	for _, l := range lookups {
		category, stock, risk := "", "", ""
		if l.Profile != nil {
			category = l.Profile.Category
			stock = fmt.Sprintf("%d", l.Profile.StockLevel)
			risk = string(l.Profile.Obsolescence.Level)
		}

		source := string(l.Source)
		if l.Cached {
			source += "*"
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			l.Code, source, l.Status, category, stock, risk)
	}
	_ = w.Flush()
}

func init() {
	bulkCmd.Flags().BoolVar(&bulkMock, "mock", false, "skip the AI and generate mock profiles")
	bulkCmd.Flags().BoolVar(&bulkJSON, "json", false, "output raw JSON")
	bulkCmd.Flags().IntVar(&bulkConcurrency, "concurrency", 0, "worker count (default from config)")
	rootCmd.AddCommand(bulkCmd)
}
