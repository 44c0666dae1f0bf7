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
	"github.com/spf13/cobra"
)

var loginUsername string

// loginCmd runs the login ceremony
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with a passkey",
	Long: `Login runs the assertion ceremony and establishes a session. With no
username the authenticator picks a discoverable credential.`,
	Run: func(cmd *cobra.Command, args []string) {
		application, err := newApp()
		if err != nil {
			handleError(err)
		}

		result := application.orchestrate.Login(cmd.Context(), loginUsername)
		reportResult("Login", result.Status)
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "",
		"username to scope credentials to (optional)")
}
