// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// logoutCmd clears the stored token and auth state. The remote logout call is
// best-effort; local credentials are removed even when the server is offline.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved access token",
	Long: `The logout command notifies the server (best-effort) and removes the access
token and cached account information from the OS keychain.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		svc, err := a.authService()
		if err != nil {
			return a.fail(err)
		}
		if err := svc.Logout(cmd.Context()); err != nil {
			return a.fail(err)
		}
		pterm.Success.Println("Access token and account information removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
