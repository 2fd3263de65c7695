package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/kimberlite-group/matprofile/internal/model"
	"github.com/kimberlite-group/matprofile/internal/store"
)

var (
	historySource string
	historyCode   string
	historyBatch  string
	historyLimit  int
	historyJSON   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show lookup history, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		filter := store.LookupFilter{
			Source:  model.Source(historySource),
			Code:    historyCode,
			BatchID: historyBatch,
			Limit:   historyLimit,
		}

		lookups, err := st.ListLookups(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "history")
		}

		if historyJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(lookups)
		}

		if len(lookups) == 0 {
			fmt.Fprintln(os.Stderr, "No lookups found.")
			return nil
		}

		formatLookupList(os.Stdout, lookups)
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historySource, "source", "", "filter by source (ai|mock)")
	historyCmd.Flags().StringVar(&historyCode, "code", "", "filter by material code")
	historyCmd.Flags().StringVar(&historyBatch, "batch", "", "filter by batch ID")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "max entries (default 100)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output raw JSON")
	rootCmd.AddCommand(historyCmd)
}
