// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tripmart/cli/internal/httperrors"
)

var (
	// Version holds the CLI version information.
	// This value is typically set at build time using -ldflags.
	Version = "0.0.0-dev"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI version and API reachability",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		fmt.Fprintf(a.out, "tripmart %s\n", Version)

		ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Timeout)
		defer cancel()
		if err := a.gw.Health(ctx); err != nil {
			fmt.Fprintf(a.out, "api      %s (unreachable: %s)\n", a.cfg.APIURL, httperrors.Summary(err))
			return nil
		}
		fmt.Fprintf(a.out, "api      %s (ok)\n", a.cfg.APIURL)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
