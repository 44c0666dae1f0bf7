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

	"github.com/TrentShailer/go-identity/pkg/ceremony"
)

var (
	registerDisplayName string
	registerResident    bool
)

// registerCmd runs the passkey registration ceremony
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new passkey for the current session's identity",
	Long: `Register runs the passkey registration ceremony. It requires an
established session; the new credential is stored by the authenticator
and its public key is registered with the backend.`,
	Run: func(cmd *cobra.Command, args []string) {
		application, err := newApp()
		if err != nil {
			handleError(err)
		}

		result := application.orchestrate.Register(cmd.Context(), ceremony.RegisterParams{
			DisplayName:       registerDisplayName,
			PreferResidentKey: registerResident,
		})
		reportResult("Registration", result.Status)
	},
}

func init() {
	registerCmd.Flags().StringVarP(&registerDisplayName, "name", "n", "",
		"display name for the new passkey")
	registerCmd.Flags().BoolVar(&registerResident, "resident", true,
		"ask the authenticator to store the credential on-device")
	_ = registerCmd.MarkFlagRequired("name")
}
