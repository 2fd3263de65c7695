package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kimberlite-group/matprofile/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "matprofile",
	Short: "Material code profiler for mine-site inventory",
	Long:  "Looks up material codes and generates inventory profiles (stock posture, duplicate candidates, obsolescence risk, reorder figures) via the Anthropic API, with deterministic mock data when the API is unavailable.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
