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

package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// whoamiCmd prints the current session
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	Long: `Whoami decodes the stored session credential and asks the backend for
the identity it belongs to.`,
	Run: func(cmd *cobra.Command, args []string) {
		application, err := newApp()
		if err != nil {
			handleError(err)
		}

		session, err := application.client.API().Store().Get()
		if err != nil {
			handleError(err)
		}
		if session == nil {
			fmt.Println("Not logged in")
			os.Exit(1)
		}

		fmt.Printf("Identity:  %s\n", session.Claims.Subject)
		fmt.Printf("Token:     %s\n", session.Claims.Type)
		fmt.Printf("Expires:   %s\n", session.Claims.ExpiresAt.Format(time.RFC3339))

		profile, resp := application.client.Identity(cmd.Context(), session.Claims.Subject)
		if !resp.OK() {
			fmt.Fprintln(os.Stderr, "Warning: failed to fetch identity profile")
			return
		}
		fmt.Printf("Username:  %s\n", profile.Username)
		fmt.Printf("Name:      %s\n", profile.DisplayName)
	},
}
