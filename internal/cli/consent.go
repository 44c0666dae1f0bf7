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

	"github.com/TrentShailer/go-identity/pkg/ceremony"
)

// consentCmd runs the step-up consent ceremony
var consentCmd = &cobra.Command{
	Use:   "consent <action>",
	Short: "Prove step-up consent for a privileged action",
	Long: `Consent runs the assertion ceremony against the current identity and
obtains a short-lived consent credential scoped to the given action. The
session credential is untouched; the consent token is printed for use as
an Authorization override on the one request it authorizes.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		application, err := newApp()
		if err != nil {
			handleError(err)
		}

		result := application.orchestrate.Consent(cmd.Context(), args[0])
		if result.Status != ceremony.StatusOK {
			reportResult("Consent", result.Status)
			return
		}

		fmt.Printf("Action:        %s\n", result.Consent.Action)
		fmt.Printf("Consent token: %s\n", result.Consent.ConsentToken)
	},
}
