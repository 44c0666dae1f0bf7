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

package ceremony

import (
	"context"

	"github.com/TrentShailer/go-identity/pkg/token"
)

// Consent runs the step-up consent flow: it proves current possession of an
// authenticator for one specific action string without terminating the
// user's existing session.
//
// On success the backend has issued a consent-typed credential scoped to
// the action, and the pipeline has briefly persisted it; the original
// session credential is restored before this method returns. The ambient
// credential used by all other calls must never remain a narrowly-scoped
// consent credential.
//
// The returned consent token is single-use by convention: pass it as an
// explicit Authorization override on the one privileged request it
// authorizes, then discard it.
func (o *Orchestrator) Consent(ctx context.Context, action string) ConsentResult {
	original, err := o.store.Get()
	if err != nil || original == nil {
		return ConsentResult{Status: StatusUnauthenticated}
	}

	credential, status := o.assert(ctx, assertScope{identityID: original.Claims.Subject})
	if status != StatusOK {
		// No assertion was submitted, so the store was never overwritten;
		// nothing to restore.
		return ConsentResult{Status: status}
	}

	result := o.issueToken(ctx, credential, token.TypeConsent, &action)
	if result.Status != StatusOK {
		return ConsentResult{Status: result.Status}
	}

	// The consent bearer is captured; put the session credential back.
	if err := o.store.Set(original.Bearer); err != nil {
		o.log.Errorf("failed to restore session credential: %v", err)
		return ConsentResult{Status: StatusError}
	}

	return ConsentResult{
		Status: StatusOK,
		Consent: &Consent{
			Action:        action,
			ConsentToken:  result.Bearer,
			OriginalToken: original.Bearer,
		},
	}
}
