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
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/protocol/webauthncose"
)

// AttestationCredential is the authenticator's output for a registration
// ceremony, shaped as the backend expects it. All binary fields are
// base64url-encoded without padding on the wire.
type AttestationCredential struct {
	// ID is the base64url credential identifier.
	ID string `json:"id"`

	// RawID is the raw credential identifier.
	RawID protocol.URLEncodedBase64 `json:"rawId"`

	// AuthenticatorAttachment reports how the authenticator is attached,
	// when known.
	AuthenticatorAttachment *string `json:"authenticatorAttachment"`

	Response AttestationResponse `json:"response"`
}

// AttestationResponse carries the attestation material for a newly created
// credential.
type AttestationResponse struct {
	AttestationObject protocol.URLEncodedBase64 `json:"attestationObject"`
	ClientDataJSON    protocol.URLEncodedBase64 `json:"clientDataJSON"`
	AuthenticatorData protocol.URLEncodedBase64 `json:"authenticatorData"`

	// PublicKey is the credential public key as DER-encoded
	// SubjectPublicKeyInfo.
	PublicKey protocol.URLEncodedBase64 `json:"publicKey"`

	// PublicKeyAlgorithm is the COSE algorithm the key signs with.
	PublicKeyAlgorithm webauthncose.COSEAlgorithmIdentifier `json:"publicKeyAlgorithm"`

	Transports []protocol.AuthenticatorTransport `json:"transports"`
}

// AssertionCredential is the authenticator's output for a login or consent
// ceremony.
type AssertionCredential struct {
	ID string `json:"id"`

	RawID protocol.URLEncodedBase64 `json:"rawId"`

	AuthenticatorAttachment *string `json:"authenticatorAttachment"`

	Response AssertionResponse `json:"response"`
}

// AssertionResponse carries the signature material proving possession of a
// registered credential.
type AssertionResponse struct {
	AuthenticatorData protocol.URLEncodedBase64 `json:"authenticatorData"`
	ClientDataJSON    protocol.URLEncodedBase64 `json:"clientDataJSON"`
	Signature         protocol.URLEncodedBase64 `json:"signature"`

	// UserHandle identifies the account for discoverable credentials.
	// Empty when the authenticator did not report one.
	UserHandle protocol.URLEncodedBase64 `json:"userHandle,omitempty"`
}
