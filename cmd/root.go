// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for rustatl.
// Every command builds its dependencies explicitly (config, logger, storage,
// backend client and session store) through newApp, so nothing is shared
// between invocations except what the storage backends persist.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"rustatl/cli/internal/backend"
	"rustatl/cli/internal/config"
	clierrors "rustatl/cli/internal/errors"
	"rustatl/cli/internal/keychain"
	"rustatl/cli/internal/logging"
	"rustatl/cli/internal/session"
	"rustatl/cli/internal/sessionfile"
)

var (
	showVersion bool
	apiURLFlag  string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "rustatl",
	Short: "Rust Atlanta command-line client",
	Long: `rustatl signs you in to the Rust Atlanta backend and makes authenticated
requests on your behalf. Sessions are kept in the OS keychain when you ask to be
remembered, and in a per-login-session file otherwise.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Fprintf(cmd.OutOrStdout(), "rustatl %s\n", Version)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, logging.PresentError("", err))
		os.Exit(exitCode(err))
	}
}

// exitCode maps error kinds to process exit codes.
func exitCode(err error) int {
	switch clierrors.KindOf(err) {
	case clierrors.Unauthenticated, clierrors.TokenRejected:
		return 3
	case clierrors.InvalidConfig:
		return 2
	}
	return 1
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "Backend base URL (overrides config and "+config.EnvAPIURL+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose debug output")
}

// app bundles what a command needs to talk to the backend as the current user.
type app struct {
	cfg   config.Config
	log   *pterm.Logger
	api   *backend.HTTP
	store *session.Store
}

// openStorage returns the persistent and ephemeral backends. Either may be
// nil when the platform cannot provide it. Replaced in tests.
var openStorage = func(log *pterm.Logger) (persistent, ephemeral session.Storage) {
	if km, err := keychain.NewManager(); err == nil {
		persistent = km
	} else {
		log.Warn("OS keychain unavailable, sessions cannot be remembered", log.Args("error", err.Error()))
	}
	if f, err := sessionfile.Open(sessionfile.WithLogger(log)); err == nil {
		ephemeral = f
	} else {
		log.Warn("session file unavailable", log.Args("error", err.Error()))
	}
	return persistent, ephemeral
}

// loadConfig reads the config file and applies command-line overrides.
// Verbose mode also enables pterm's debug printers.
func loadConfig() (config.Config, error) {
	if verbose || logging.IsVerbose() {
		pterm.EnableDebugMessages()
	}
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if apiURLFlag != "" {
		cfg.APIURL = apiURLFlag
		if err := cfg.Validate(); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// newApp loads configuration and builds the session store. A stored session
// is restored and verified in the background; call app.store.Wait to block
// on that verification.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.LogLevel, verbose)

	api := backend.New(cfg.APIURL, cfg.Endpoints,
		backend.WithTimeout(cfg.Timeout()),
		backend.WithUserAgent("rustatl-cli/"+Version),
	)
	persistent, ephemeral := openStorage(log)

	store, err := session.New(ctx, session.Options{
		Persistent: persistent,
		Ephemeral:  ephemeral,
		API:        api,
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}
	if verbose || logging.IsVerbose() {
		traceSession(store, log)
	}
	return &app{cfg: cfg, log: log, api: api, store: store}, nil
}

// traceSession logs every session state change at debug level.
func traceSession(store *session.Store, log *pterm.Logger) {
	store.Subscribe(func(st session.State) {
		args := []any{"authenticated", st.IsAuthenticated, "loading", st.IsLoading}
		if st.User != nil {
			args = append(args, "pid", st.User.PID)
		}
		if st.Token != "" {
			args = append(args, "token", logging.MaskToken(st.Token))
		}
		log.Debug("session state", log.Args(args...))
	})
}
