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

	"github.com/spf13/cobra"
)

// logoutCmd ends the current session
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	Long: `Logout revokes the session credential on the backend when possible and
always clears the local token store.`,
	Run: func(cmd *cobra.Command, args []string) {
		application, err := newApp()
		if err != nil {
			handleError(err)
		}

		if application.client.API().Logout(cmd.Context()) {
			fmt.Println("Logged out")
		} else {
			fmt.Println("No active session")
		}
	},
}
