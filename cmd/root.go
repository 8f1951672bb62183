// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the Tripmart CLI.
// It exposes one command group per marketplace resource, an interactive
// browse loop, and the authentication and configuration commands, using the
// Cobra CLI framework with pterm for terminal output.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tripmart/cli/internal/catalog"
	"tripmart/cli/internal/config"
	"tripmart/cli/internal/logging"
)

var (
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tripmart",
	Short: "Tripmart marketplace client",
	Long: `Tripmart is a command-line client for the Tripmart tourism marketplace.
It lists, searches and edits products, activities, itineraries, historical places,
complaints, promo codes and users through the marketplace REST API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		current = a
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the CLI application and exits with status 1 on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var r reportedError
		if !errors.As(err, &r) {
			fmt.Fprintln(os.Stderr, logging.PresentError("Error", err))
		}
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("api-url", "", "Marketplace API base URL (default "+config.DefaultAPIURL+")")
	pf.StringP("output", "o", "", "Output format: table or json")
	pf.Duration("timeout", 0, fmt.Sprintf("Per-request timeout (default %s)", config.DefaultTimeout))
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	for _, r := range catalog.All() {
		rootCmd.AddCommand(newResourceCmd(r))
	}
}
