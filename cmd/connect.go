// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"tripmart/cli/internal/backend"
	"tripmart/cli/internal/config"
	"tripmart/cli/internal/endpoint"
	apperrors "tripmart/cli/internal/errors"
	"tripmart/cli/internal/httperrors"
	"tripmart/cli/internal/terminal"
)

var skipProbe bool

// connectCmd stores the marketplace API URL after checking it answers.
var connectCmd = &cobra.Command{
	Use:   "connect [api-url]",
	Short: "Configure and verify the marketplace API URL",
	Long: `The connect command validates the marketplace API base URL, checks that the
server answers GET /api/health, and saves it to the configuration file.

Examples:
  tripmart connect https://api.tripmart.example
  tripmart connect localhost:8000`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		var raw string
		if len(args) == 1 {
			raw = args[0]
		} else {
			promptText := "Enter the Tripmart API URL (e.g., https://api.tripmart.example): "
			var err error
			raw, err = terminal.Prompt(bufio.NewReader(os.Stdin), os.Stdout, promptText)
			if err != nil {
				return err
			}
			terminal.ClearPreviousLines(len(promptText) + len(raw))
		}
		if raw == "" {
			return errors.New("API URL is required")
		}

		info, err := endpoint.Parse(raw)
		if err != nil {
			var parseErr *endpoint.ParseError
			if errors.As(err, &parseErr) {
				pterm.Error.Println(parseErr.Error())
				return reported(parseErr)
			}
			return err
		}
		url := info.String()

		if !skipProbe {
			probe := backend.New(url, nil,
				backend.WithTimeout(a.cfg.Timeout),
				backend.WithLogger(a.logger),
				backend.WithUserAgent("tripmart-cli/"+Version),
			)
			err := withSpinner(cmd.Context(), "verifying API", func(ctx context.Context) error {
				return probe.Health(ctx)
			})
			if err != nil {
				if apperrors.Is(err, apperrors.Network) {
					httperrors.Explain(err, "checking "+httperrors.ExtractHostFromURL(url))
				} else {
					pterm.Error.Printf("The server at %s did not answer the health check: %s\n", url, apperrors.MessageOf(err))
				}
				pterm.Info.Println("Use --skip-check to save the URL anyway.")
				return reported(err)
			}
		}

		cfg := a.cfg
		cfg.APIURL = url
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}
		pterm.Success.Printf("API URL verified and saved: %s\n", url)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
	connectCmd.Flags().BoolVar(&skipProbe, "skip-check", false, "Save the URL without checking that it answers")
}
