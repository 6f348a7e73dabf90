package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/givehope/donation-api/cmd/configure/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "donation-configure",
		Short: "Configuration tool for the donation API",
		Long:  "CLI tool for managing rate limit presets, CORS and connectivity checks",
	}

	rootCmd.AddCommand(commands.NewPresetsCmd())
	rootCmd.AddCommand(commands.NewCorsCmd())
	rootCmd.AddCommand(commands.NewTestCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
