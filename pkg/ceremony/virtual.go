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
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"

	"github.com/TrentShailer/go-identity/pkg/identity"
	"github.com/descope/virtualwebauthn"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/protocol/webauthncose"
)

// virtualAttachment is what the in-process authenticator reports itself as.
const virtualAttachment = "platform"

// VirtualAuthenticator is an in-process software authenticator. It holds
// its credentials in memory for the lifetime of the process, which makes it
// suitable for tests and for exercising ceremonies against a development
// backend; it is not a secure credential store.
type VirtualAuthenticator struct {
	mu          sync.Mutex
	rp          virtualwebauthn.RelyingParty
	auth        virtualwebauthn.Authenticator
	credentials []virtualwebauthn.Credential
}

// NewVirtualAuthenticator creates a virtual authenticator bound to the
// given relying party. The relying party ID and origin must match what the
// backend publishes, or it will reject the signed client data.
func NewVirtualAuthenticator(rpID, rpName, origin string) *VirtualAuthenticator {
	return &VirtualAuthenticator{
		rp: virtualwebauthn.RelyingParty{
			ID:     rpID,
			Name:   rpName,
			Origin: origin,
		},
		auth: virtualwebauthn.NewAuthenticator(),
	}
}

// Create mints a new EC2 credential and produces its attestation in the
// shape the backend expects, including the SPKI-encoded public key a
// browser would report.
func (v *VirtualAuthenticator) Create(ctx context.Context, options *protocol.PublicKeyCredentialCreationOptions) (*identity.AttestationCredential, error) {
	optionsJSON, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode creation options: %w", err)
	}

	parsed, err := virtualwebauthn.ParseAttestationOptions(string(optionsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse creation options: %w", err)
	}

	credential := virtualwebauthn.NewCredential(virtualwebauthn.KeyTypeEC2)
	responseJSON := virtualwebauthn.CreateAttestationResponse(v.rp, v.auth, credential, *parsed)

	var ccr protocol.CredentialCreationResponse
	if err := json.Unmarshal([]byte(responseJSON), &ccr); err != nil {
		return nil, fmt.Errorf("failed to decode attestation response: %w", err)
	}
	parsedResponse, err := ccr.Parse()
	if err != nil {
		return nil, fmt.Errorf("failed to parse attestation response: %w", err)
	}

	attestation := parsedResponse.Response.AttestationObject
	publicKey, algorithm, err := coseToSPKI(attestation.AuthData.AttData.CredentialPublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to convert credential public key: %w", err)
	}

	v.mu.Lock()
	v.auth.AddCredential(credential)
	v.credentials = append(v.credentials, credential)
	v.mu.Unlock()

	attachment := virtualAttachment
	return &identity.AttestationCredential{
		ID:                      ccr.ID,
		RawID:                   ccr.RawID,
		AuthenticatorAttachment: &attachment,
		Response: identity.AttestationResponse{
			AttestationObject:  ccr.AttestationResponse.AttestationObject,
			ClientDataJSON:     ccr.AttestationResponse.ClientDataJSON,
			AuthenticatorData:  attestation.RawAuthData,
			PublicKey:          publicKey,
			PublicKeyAlgorithm: algorithm,
			Transports:         []protocol.AuthenticatorTransport{protocol.Internal},
		},
	}, nil
}

// Get signs an assertion with a stored credential matching the allow list.
// With an empty allow list the first stored credential acts as the
// discoverable one. Returns a nil credential when nothing matches, which
// the orchestrator folds into a cancelled outcome the same way a dismissed
// platform prompt would be.
func (v *VirtualAuthenticator) Get(ctx context.Context, options *protocol.PublicKeyCredentialRequestOptions) (*identity.AssertionCredential, error) {
	optionsJSON, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request options: %w", err)
	}

	parsed, err := virtualwebauthn.ParseAssertionOptions(string(optionsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request options: %w", err)
	}

	credential := v.selectCredential(*parsed)
	if credential == nil {
		return nil, nil
	}
	credential.Counter++

	responseJSON := virtualwebauthn.CreateAssertionResponse(v.rp, v.auth, *credential, *parsed)

	var car protocol.CredentialAssertionResponse
	if err := json.Unmarshal([]byte(responseJSON), &car); err != nil {
		return nil, fmt.Errorf("failed to decode assertion response: %w", err)
	}

	attachment := virtualAttachment
	return &identity.AssertionCredential{
		ID:                      car.ID,
		RawID:                   car.RawID,
		AuthenticatorAttachment: &attachment,
		Response: identity.AssertionResponse{
			AuthenticatorData: car.AssertionResponse.AuthenticatorData,
			ClientDataJSON:    car.AssertionResponse.ClientDataJSON,
			Signature:         car.AssertionResponse.Signature,
			UserHandle:        car.AssertionResponse.UserHandle,
		},
	}, nil
}

// selectCredential picks the stored credential the allow list permits.
func (v *VirtualAuthenticator) selectCredential(options virtualwebauthn.AssertionOptions) *virtualwebauthn.Credential {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(v.credentials) == 0 {
		return nil
	}
	if len(options.AllowCredentials) == 0 {
		return &v.credentials[0]
	}
	for i := range v.credentials {
		if v.credentials[i].IsAllowedForAssertion(options) {
			return &v.credentials[i]
		}
	}
	return nil
}

// coseToSPKI converts a COSE credential public key into DER-encoded
// SubjectPublicKeyInfo, the format browsers report from getPublicKey(),
// and extracts the COSE signature algorithm.
func coseToSPKI(coseKey []byte) (protocol.URLEncodedBase64, webauthncose.COSEAlgorithmIdentifier, error) {
	parsed, err := webauthncose.ParsePublicKey(coseKey)
	if err != nil {
		return nil, 0, err
	}

	switch key := parsed.(type) {
	case webauthncose.EC2PublicKeyData:
		curve, err := ec2Curve(key.Curve)
		if err != nil {
			return nil, 0, err
		}
		der, err := x509.MarshalPKIXPublicKey(&ecdsa.PublicKey{
			Curve: curve,
			X:     new(big.Int).SetBytes(key.XCoord),
			Y:     new(big.Int).SetBytes(key.YCoord),
		})
		return der, webauthncose.COSEAlgorithmIdentifier(key.Algorithm), err

	case webauthncose.RSAPublicKeyData:
		der, err := x509.MarshalPKIXPublicKey(&rsa.PublicKey{
			N: new(big.Int).SetBytes(key.Modulus),
			E: int(new(big.Int).SetBytes(key.Exponent).Int64()),
		})
		return der, webauthncose.COSEAlgorithmIdentifier(key.Algorithm), err

	case webauthncose.OKPPublicKeyData:
		der, err := x509.MarshalPKIXPublicKey(ed25519.PublicKey(key.XCoord))
		return der, webauthncose.COSEAlgorithmIdentifier(key.Algorithm), err

	default:
		return nil, 0, fmt.Errorf("unsupported COSE key type %T", parsed)
	}
}

// ec2Curve maps a COSE elliptic curve identifier to its Go curve.
func ec2Curve(curve int64) (elliptic.Curve, error) {
	switch webauthncose.COSEEllipticCurve(curve) {
	case webauthncose.P256:
		return elliptic.P256(), nil
	case webauthncose.P384:
		return elliptic.P384(), nil
	case webauthncose.P521:
		return elliptic.P521(), nil
	default:
		return nil, fmt.Errorf("unsupported COSE elliptic curve %d", curve)
	}
}
