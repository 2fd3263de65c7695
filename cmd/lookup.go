package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/kimberlite-group/matprofile/internal/model"
)

var (
	lookupMock bool
	lookupJSON bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <material-code>",
	Short: "Profile a single material code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, lookupMock)
		if err != nil {
			return err
		}
		defer env.Close()

		lookup, err := env.Service.Generate(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "lookup")
		}

		if lookupJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(lookup)
		}

		printLookup(lookup)
		return nil
	},
}

func printLookup(l *model.Lookup) {
	p := l.Profile
	if p == nil {
		fmt.Printf("%s: %s (%s)\n", l.Code, l.Status, l.Error)
		return
	}

	provenance := string(l.Source)
	if l.Cached {
		provenance += ", cached"
	}

	fmt.Printf("%s — %s [%s]\n", p.Code, p.Description, provenance)
	fmt.Printf("  Category:      %s\n", p.Category)
	fmt.Printf("  Stock:         %d %s (safety stock %d)\n", p.StockLevel, p.UnitOfMeasure, p.SafetyStock)
	fmt.Printf("  Annual usage:  %d\n", p.AnnualUsage)
	fmt.Printf("  Unit cost:     %s %s\n", p.UnitCost.StringFixed(2), p.Currency)
	fmt.Printf("  Lead time:     %d days\n", p.LeadTimeDays)
	fmt.Printf("  Reorder at:    %d (EOQ %d)\n", p.ReorderPoint, p.EOQ)
	fmt.Printf("  Obsolescence:  %s (%.2f) — %s\n", p.Obsolescence.Level, p.Obsolescence.Score, p.Obsolescence.Reasoning)

	if len(p.Duplicates) > 0 {
		fmt.Println("  Possible duplicates:")
		for _, d := range p.Duplicates {
			fmt.Printf("    %-20s %.0f%%  %s\n", d.Code, d.Similarity*100, d.Reason)
		}
	}
	if l.Error != "" {
		fmt.Printf("  Note: %s\n", strings.TrimSpace(l.Error))
	}
}

func init() {
	lookupCmd.Flags().BoolVar(&lookupMock, "mock", false, "skip the AI and generate a mock profile")
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "output raw JSON")
	rootCmd.AddCommand(lookupCmd)
}
