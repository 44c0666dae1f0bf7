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

package identity

import (
	"time"

	"github.com/TrentShailer/go-identity/pkg/token"
	"github.com/go-webauthn/webauthn/protocol"
)

// Challenge is a single-use, server-issued nonce consumed by exactly one
// ceremony. Never cached or reused.
type Challenge struct {
	// Challenge is the nonce, base64url-encoded on the wire.
	Challenge protocol.URLEncodedBase64 `json:"challenge"`

	// IdentityID scopes the challenge to one identity. Nil for
	// unscoped challenges such as login.
	IdentityID *string `json:"identityId"`

	// Issued is when the backend created the challenge.
	Issued time.Time `json:"issued"`

	// Expires is when the challenge stops being accepted.
	Expires time.Time `json:"expires"`

	// Origin is the origin the challenge was issued for.
	Origin string `json:"origin"`
}

// Identity is an account profile on the identity service.
type Identity struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"displayName"`
	Created     time.Time  `json:"created"`
	Expires     *time.Time `json:"expires"`
}

// TokenDetails are the claims of the ambient session credential as reported
// by the backend.
type TokenDetails struct {
	Subject string     `json:"sub"`
	Type    token.Type `json:"typ"`
	Expires time.Time  `json:"exp"`
	Action  *string    `json:"act"`
	TokenID string     `json:"tid"`
}

// PublicKey describes a passkey registered with the identity service.
type PublicKey struct {
	RawID              protocol.URLEncodedBase64 `json:"rawId"`
	IdentityID         string                    `json:"identityId"`
	DisplayName        string                    `json:"displayName"`
	PublicKey          protocol.URLEncodedBase64 `json:"publicKey"`
	PublicKeyAlgorithm int64                     `json:"publicKeyAlgorithm"`
	Transports         []string                  `json:"transports"`
	SignatureCounter   int64                     `json:"signatureCounter"`
	Created            time.Time                 `json:"created"`
	LastUsed           *time.Time                `json:"lastUsed"`
}
