package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kimberlite-group/matprofile/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration helpers",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config.yaml with all defaults",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.WriteExample("config.yaml"); err != nil {
			return err
		}
		fmt.Println("Wrote config.yaml")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
