// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"tripmart/cli/internal/auth"
	apperrors "tripmart/cli/internal/errors"
	"tripmart/cli/internal/terminal"
)

var (
	loginToken    string
	loginUsername string
)

// loginCmd exchanges a username and password for an access token, or stores
// a token issued elsewhere, and keeps it in the OS keychain.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"auth"},
	Short:   "Sign in and store the access token in the OS keychain",
	Long: `The login command signs in with a username and password (POST /api/auth/login)
or stores an access token passed with --token. The password is read without echo.
The token is kept in the OS keychain and sent as a bearer credential on every request.

If already logged in with a valid token, the sign-in is skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*a.cfg.Timeout)
		defer cancel()

		svc, err := a.authService()
		if err != nil {
			pterm.Error.Println("Secure storage is not available on this system.")
			return reported(err)
		}

		if loginToken == "" && loginUsername == "" {
			if id, err := svc.WhoAmI(ctx); err == nil {
				pterm.Info.Printf("Already logged in as %s\n", id.Account)
				return nil
			}
		}

		var st auth.State
		if loginToken != "" {
			st, err = svc.LoginWithToken(ctx, loginToken)
		} else {
			username, password, perr := promptCredentials(loginUsername)
			if perr != nil {
				return perr
			}
			err = withSpinner(ctx, "signing in", func(ctx context.Context) error {
				var lerr error
				st, lerr = svc.LoginWithPassword(ctx, username, password)
				return lerr
			})
		}
		if err != nil {
			if apperrors.Is(err, apperrors.Remote) && (apperrors.StatusOf(err) == 401 || apperrors.StatusOf(err) == 403) {
				a.status.Error("Sign-in was rejected: " + apperrors.MessageOf(err))
				return reported(err)
			}
			return a.fail(err)
		}

		pterm.Success.Println(loginGreeting(st))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Store this access token instead of signing in")
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username to sign in with")
}

func promptCredentials(username string) (string, string, error) {
	r := bufio.NewReader(os.Stdin)
	if username == "" {
		u, err := terminal.Prompt(r, os.Stdout, "Username: ")
		if err != nil {
			return "", "", err
		}
		username = u
	}
	password, err := terminal.ReadSecret(r, os.Stdout, "Password: ")
	if err != nil {
		return "", "", err
	}
	if username == "" || password == "" {
		return "", "", apperrors.New(apperrors.Validation, "username and password are required")
	}
	return username, password, nil
}

// loginGreeting returns a friendly greeting for the signed-in account.
func loginGreeting(st auth.State) string {
	who := st.Account
	if who == "" {
		return "Login successful!"
	}
	if st.Role != "" {
		who = fmt.Sprintf("%s (%s)", who, st.Role)
	}
	greetings := []string{
		"Welcome back, %s!",
		"Great to see you, %s!",
		"You're all set, %s!",
		"Logged in as %s",
	}
	return fmt.Sprintf(greetings[rand.Intn(len(greetings))], who)
}
