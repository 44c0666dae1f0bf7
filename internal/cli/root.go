// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-identity.
//
// go-identity is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package cli implements the identity command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TrentShailer/go-identity/internal/config"
	"github.com/TrentShailer/go-identity/pkg/api"
	"github.com/TrentShailer/go-identity/pkg/ceremony"
	"github.com/TrentShailer/go-identity/pkg/identity"
	"github.com/TrentShailer/go-identity/pkg/logging"
	"github.com/TrentShailer/go-identity/pkg/token"
)

var (
	configFile string
	debug      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "identity",
	Short: "identity CLI - Passkey client for the identity service",
	Long: `identity CLI drives passkey ceremonies against the identity service:
registering credentials, logging in, proving step-up consent, and
inspecting the current session.

Assertions are signed by an in-process software authenticator, so this
tool is intended for development and testing against a local backend.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is built-in localhost settings)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "verbose", "v", false,
		"verbose output")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(consentCmd)
	rootCmd.AddCommand(versionCmd)
}

// app bundles everything a command needs to talk to the backend.
type app struct {
	cfg         *config.Config
	log         *logging.Logger
	client      *identity.Client
	orchestrate *ceremony.Orchestrator
}

// newApp builds the client stack from the effective configuration.
func newApp() (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.Logging.Debug = true
	}
	log := logging.NewLogger(cfg.Logging.Debug)

	store, err := token.NewFileStore(cfg.Token.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %w", err)
	}

	apiClient, err := api.New(api.Config{
		BaseURL:      cfg.API.URL,
		APIKeyHeader: cfg.API.KeyHeader,
		APIKey:       cfg.API.Key,
		Store:        store,
		Logger:       log,
		OnSessionExpired: func(hadSession bool) {
			if hadSession {
				fmt.Fprintln(os.Stderr, "Session expired, log in again.")
			}
		},
	})
	if err != nil {
		return nil, err
	}

	client := identity.NewClient(apiClient)
	orchestrate, err := ceremony.New(ceremony.Params{
		Client: client,
		Authenticator: ceremony.NewVirtualAuthenticator(
			cfg.Authenticator.RelyingPartyID,
			cfg.Authenticator.RelyingPartyName,
			cfg.Authenticator.Origin,
		),
		Logger: log,
	})
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, log: log, client: client, orchestrate: orchestrate}, nil
}

// handleError prints an error and exits with code 1
func handleError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// reportResult prints a ceremony outcome and exits non-zero when it failed.
func reportResult(verb string, status ceremony.Status) {
	switch status {
	case ceremony.StatusOK:
		fmt.Printf("%s succeeded\n", verb)
	case ceremony.StatusCancelled:
		fmt.Fprintf(os.Stderr, "%s cancelled\n", verb)
		os.Exit(1)
	case ceremony.StatusUnauthenticated:
		fmt.Fprintf(os.Stderr, "%s requires a valid session, log in first\n", verb)
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "%s failed, try again later\n", verb)
		os.Exit(1)
	}
}
