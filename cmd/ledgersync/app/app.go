// Package app wires the ledgersync CLI: configuration loading, logging,
// client construction, and the cobra command tree.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ledgersync/ledgersync"
	"github.com/ledgersync/ledgersync/pkg/errors"
	"github.com/ledgersync/ledgersync/pkg/logging"
	"github.com/ledgersync/ledgersync/pkg/reconcile"
)

// App is the CLI application.
type App struct {
	version string
	commit  string
	date    string

	config *Config
	logger zerolog.Logger
	root   *cobra.Command
}

// New creates the application, loading configuration from env and files.
func New(version, commit, date string) (*App, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	a := &App{
		version: version,
		commit:  commit,
		date:    date,
		config:  config,
	}
	a.root = a.commands()

	return a, nil
}

// Execute parses args and runs the selected command.
func (a *App) Execute(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.root.ExecuteContext(ctx)
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return &a.logger
}

// setup finalizes configuration after flag parsing and installs the logger.
// Runs as the root command's PersistentPreRun.
func (a *App) setup(cmd *cobra.Command) {
	flags := cmd.Flags()
	verbose, _ := flags.GetBool("verbose")
	quiet, _ := flags.GetBool("quiet")
	noColor, _ := flags.GetBool("no-color")
	baseURL, _ := flags.GetString("base-url")
	apiKey, _ := flags.GetString("api-key")
	if logLevel, _ := flags.GetString("log-level"); logLevel != "" {
		a.config.LogLevel = logLevel
	}

	a.config.UpdateFromFlags(verbose, quiet, noColor, baseURL, apiKey)

	a.logger = NewLogger(a.config)
	logging.SetDefault(a.logger)
}

// client builds the backend client from the resolved configuration.
func (a *App) client() (ledgersync.Client, error) {
	opts := []ledgersync.Option{
		ledgersync.WithBaseURL(a.config.BaseURL),
		ledgersync.WithAPIKey(a.config.APIKey),
		ledgersync.WithHTTPTimeout(a.config.Timeout),
		ledgersync.WithLogger(&a.logger),
	}
	if a.config.MaxInFlight > 0 {
		opts = append(opts, ledgersync.WithMaxInFlight(a.config.MaxInFlight))
	}
	if a.config.RecreateStale {
		opts = append(opts, ledgersync.WithStalePolicy(reconcile.StaleRecreate))
	}
	return ledgersync.New(opts...)
}

// ExitOnError prints the error and exits with a status reflecting its kind.
func ExitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	switch {
	case errors.IsValidationError(err):
		os.Exit(2)
	case errors.IsNotFound(err):
		os.Exit(3)
	default:
		os.Exit(1)
	}
}
