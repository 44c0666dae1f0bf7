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

	"github.com/TrentShailer/go-identity/pkg/identity"
	"github.com/go-webauthn/webauthn/protocol"
)

// Authenticator abstracts the platform credential authenticator. It is the
// only component that touches key material; the orchestrator shuttles its
// opaque output to the backend unmodified.
//
// Both methods may block on out-of-band user interaction. The orchestrator
// folds any returned error, and any nil credential, into a cancelled
// outcome: at this layer user dismissal is indistinguishable from an
// authenticator fault, and retrying the whole ceremony is the correct
// remedy for both.
type Authenticator interface {
	// Create asks the authenticator to mint a new credential for a
	// registration ceremony.
	Create(ctx context.Context, options *protocol.PublicKeyCredentialCreationOptions) (*identity.AttestationCredential, error)

	// Get asks the authenticator to sign an assertion with an existing
	// credential for a login or consent ceremony.
	Get(ctx context.Context, options *protocol.PublicKeyCredentialRequestOptions) (*identity.AssertionCredential, error)
}
