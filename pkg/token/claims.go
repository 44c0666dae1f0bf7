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

// Package token manages the client's session credential: the opaque bearer
// value issued by the identity service, its embedded claim set, and the
// single persisted slot it lives in.
//
// The bearer is stored exactly as the backend hands it out in the
// Authorization response header, scheme prefix included, so it can be
// replayed verbatim on subsequent requests. Claims are decoded without
// signature verification; verification is the backend's job.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Type identifies what a session credential authorizes.
type Type string

const (
	// TypeCommon is an ordinary long-lived session credential.
	TypeCommon Type = "common"

	// TypeProvisioning is issued while an identity is being set up and
	// before its first passkey exists.
	TypeProvisioning Type = "provisioning"

	// TypeConsent is a short-lived credential scoped to a single action,
	// obtained through the step-up consent flow.
	TypeConsent Type = "consent"
)

// ErrMalformed is returned by Parse when the bearer value does not contain a
// decodable three-segment token.
var ErrMalformed = errors.New("malformed bearer token")

// Claims is the claim set embedded in a session credential.
type Claims struct {
	// Subject is the identity identifier the credential was issued for.
	Subject string

	// Type is the credential type.
	Type Type

	// ExpiresAt is the credential expiry instant. Zero when the claim is
	// absent or unreadable.
	ExpiresAt time.Time

	// Action is the action string a consent credential authorizes.
	// Nil for non-consent credentials.
	Action *string

	// TokenID is the backend's identifier for this credential.
	TokenID string
}

// Details pairs the raw bearer value with its decoded claims.
type Details struct {
	// Bearer is the full header value, including the scheme prefix when
	// the backend issued one.
	Bearer string

	Claims Claims
}

// Parse decodes the claim set embedded in a bearer header value without
// verifying its signature. The backend prefixes the serialized token with
// the "bearer " scheme; the prefix is stripped before decoding.
//
// A value that does not split into three dot-separated segments, or whose
// middle segment is not base64url-encoded JSON, yields ErrMalformed.
func Parse(bearer string) (*Claims, error) {
	raw := stripScheme(bearer)

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	parsed := &Claims{}
	if sub, ok := claims["sub"].(string); ok {
		parsed.Subject = sub
	}
	if typ, ok := claims["typ"].(string); ok {
		parsed.Type = Type(typ)
	}
	if act, ok := claims["act"].(string); ok {
		parsed.Action = &act
	}
	if tid, ok := claims["tid"].(string); ok {
		parsed.TokenID = tid
	}
	parsed.ExpiresAt = expiry(claims)

	return parsed, nil
}

// expiry reads the exp claim, accepting both the numeric form produced by
// standard JWT libraries and the RFC 3339 string some backend revisions emit.
func expiry(claims jwt.MapClaims) time.Time {
	if date, err := claims.GetExpirationTime(); err == nil && date != nil {
		return date.Time
	}
	if s, ok := claims["exp"].(string); ok {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func stripScheme(bearer string) string {
	for _, scheme := range []string{"bearer ", "Bearer "} {
		if rest, ok := strings.CutPrefix(bearer, scheme); ok {
			return strings.TrimSpace(rest)
		}
	}
	return bearer
}
