// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tripmart/cli/internal/auth"
	"tripmart/cli/internal/backend"
	"tripmart/cli/internal/config"
	"tripmart/cli/internal/keychain"
	"tripmart/cli/internal/logging"
	"tripmart/cli/internal/render"
	"tripmart/cli/internal/status"
)

// envToken lets scripts supply a bearer token without touching the keychain.
const envToken = "TRIPMART_TOKEN"

// app carries the dependencies shared by every command of one invocation.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	out    io.Writer
	status *status.Channel
	gw     *backend.Gateway

	kmOnce sync.Once
	km     *keychain.Manager
	kmErr  error
	// openKeychain is replaced in tests.
	openKeychain func() (*keychain.Manager, error)
}

// current is set by the root command before any subcommand runs.
var current *app

func newApp(cfg config.Config, logger *slog.Logger, out io.Writer) *app {
	a := &app{
		cfg:    cfg,
		logger: logger,
		out:    out,
		status: status.NewChannel(printStatus),
		openKeychain: func() (*keychain.Manager, error) {
			return keychain.GetManager(keychain.Options{Backend: cfg.KeyringBackend})
		},
	}
	a.gw = backend.New(cfg.APIURL, backend.CredentialFunc(a.token),
		backend.WithTimeout(cfg.Timeout),
		backend.WithLogger(logger),
		backend.WithUserAgent("tripmart-cli/"+Version),
	)
	return a
}

// setup loads configuration and builds the app for cmd.
func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(config.LoadOptions{Flags: cmd.Flags()})
	if err != nil {
		return nil, err
	}
	logger := logging.New(loggerOptions(cfg, verbose, term.IsTerminal(int(os.Stderr.Fd()))))
	slog.SetDefault(logger)
	logger.Debug("configuration loaded", "api_url", cfg.APIURL, "timeout", cfg.Timeout, "output", cfg.Output)
	return newApp(cfg, logger, cmd.OutOrStdout()), nil
}

// loggerOptions maps configuration onto the logger. Colors are only used
// when stderr is a terminal.
func loggerOptions(cfg config.Config, verbose, stderrTTY bool) logging.Options {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return logging.Options{
		Writer:  os.Stderr,
		Level:   level,
		JSON:    cfg.LogFormat == "json",
		NoColor: !stderrTTY,
	}
}

// keychain opens the credential store once per invocation.
func (a *app) keychain() (*keychain.Manager, error) {
	a.kmOnce.Do(func() {
		a.km, a.kmErr = a.openKeychain()
		if a.kmErr != nil {
			a.logger.Debug("keychain unavailable", "error", a.kmErr)
		}
	})
	return a.km, a.kmErr
}

func (a *app) token(ctx context.Context) (string, error) {
	if t := os.Getenv(envToken); t != "" {
		return t, nil
	}
	km, err := a.keychain()
	if err != nil {
		return "", err
	}
	return auth.Credentials(km).Token(ctx)
}

func (a *app) authService() (*auth.Service, error) {
	km, err := a.keychain()
	if err != nil {
		return nil, err
	}
	return auth.NewService(a.gw, km), nil
}

func (a *app) format() render.Format {
	return render.Format(a.cfg.Output)
}

// printStatus renders status messages on stderr so they never mix with
// JSON written to stdout.
func printStatus(m status.Message) {
	switch m.Severity {
	case status.Success:
		pterm.Success.WithWriter(os.Stderr).Println(m.Text)
	case status.Error:
		pterm.Error.WithWriter(os.Stderr).Println(m.Text)
	default:
		pterm.Info.WithWriter(os.Stderr).Println(m.Text)
	}
}

// reportedError marks an error that was already shown on the status channel.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err}
}

// fail publishes err and returns it marked as reported.
func (a *app) fail(err error) error {
	if err == nil {
		return nil
	}
	var r reportedError
	if errors.As(err, &r) {
		return err
	}
	a.status.PublishError(err)
	return reported(err)
}
