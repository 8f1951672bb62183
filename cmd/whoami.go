// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	apperrors "tripmart/cli/internal/errors"
	"tripmart/cli/internal/render"
)

// whoamiCmd shows who the stored token belongs to. It asks the server for the
// profile and falls back to the stored account when offline.
var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Aliases: []string{"me"},
	Short:   "Show the current account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		svc, err := a.authService()
		if err != nil {
			return a.fail(err)
		}
		id, err := svc.WhoAmI(cmd.Context())
		if err != nil {
			if apperrors.Is(err, apperrors.Unauthenticated) {
				pterm.Info.Println("You're not logged in yet! Run 'tripmart login' to get started.")
				return nil
			}
			return a.fail(err)
		}

		if a.format() == render.JSON && id.Profile != nil {
			return render.Item(a.out, render.JSON, id.Profile)
		}
		fmt.Fprintf(a.out, "Current user: %s\n", id.Account)
		if id.Role != "" {
			fmt.Fprintf(a.out, "Role:         %s\n", id.Role)
		}
		if !id.ExpiresAt.IsZero() {
			fmt.Fprintf(a.out, "Token expires: %s (in %s)\n",
				id.ExpiresAt.Local().Format(time.RFC1123), time.Until(id.ExpiresAt).Round(time.Minute))
		}
		if id.Offline {
			pterm.Warning.Println("The server could not be reached; showing the stored account.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
