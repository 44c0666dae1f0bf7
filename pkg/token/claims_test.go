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

package token

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mintBearer produces a signed token in the exact shape the backend emits in
// the Authorization response header, scheme prefix included.
func mintBearer(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return "bearer " + signed
}

func TestParseCommonToken(t *testing.T) {
	expires := time.Now().Add(time.Hour).Truncate(time.Second)
	bearer := mintBearer(t, jwt.MapClaims{
		"sub": "0193a1b2-0000-7000-8000-000000000001",
		"typ": "common",
		"exp": expires.Unix(),
		"tid": "token-1",
	})

	claims, err := Parse(bearer)
	require.NoError(t, err)

	assert.Equal(t, "0193a1b2-0000-7000-8000-000000000001", claims.Subject)
	assert.Equal(t, TypeCommon, claims.Type)
	assert.Equal(t, "token-1", claims.TokenID)
	assert.Nil(t, claims.Action)
	assert.True(t, claims.ExpiresAt.Equal(expires))
}

func TestParseConsentToken(t *testing.T) {
	bearer := mintBearer(t, jwt.MapClaims{
		"sub": "identity-1",
		"typ": "consent",
		"act": "delete-account",
		"exp": time.Now().Add(time.Minute).Unix(),
	})

	claims, err := Parse(bearer)
	require.NoError(t, err)

	assert.Equal(t, TypeConsent, claims.Type)
	require.NotNil(t, claims.Action)
	assert.Equal(t, "delete-account", *claims.Action)
}

func TestParseStringExpiry(t *testing.T) {
	// Some backend revisions emit exp as an RFC 3339 string instead of the
	// standard numeric date.
	bearer := mintBearer(t, jwt.MapClaims{
		"sub": "identity-1",
		"typ": "common",
		"exp": "2031-06-15T12:00:00Z",
	})

	claims, err := Parse(bearer)
	require.NoError(t, err)

	expected, err := time.Parse(time.RFC3339, "2031-06-15T12:00:00Z")
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.Equal(expected))
}

func TestParseMissingClaims(t *testing.T) {
	bearer := mintBearer(t, jwt.MapClaims{"foo": "bar"})

	claims, err := Parse(bearer)
	require.NoError(t, err)

	assert.Empty(t, claims.Subject)
	assert.Empty(t, claims.Type)
	assert.Empty(t, claims.TokenID)
	assert.Nil(t, claims.Action)
	assert.True(t, claims.ExpiresAt.IsZero())
}

func TestParseSchemeVariants(t *testing.T) {
	bearer := mintBearer(t, jwt.MapClaims{"sub": "identity-1"})
	raw := bearer[len("bearer "):]

	for _, value := range []string{bearer, "Bearer " + raw, raw} {
		claims, err := Parse(value)
		require.NoError(t, err, "value %q", value)
		assert.Equal(t, "identity-1", claims.Subject)
	}
}

func TestParseMalformed(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256"}`))
	notJSON := base64.RawURLEncoding.EncodeToString([]byte("not json"))

	malformed := []string{
		"",
		"bearer ",
		"bearer not-a-token",
		"only.two",
		"one.two.three.four",
		header + "." + notJSON + ".signature",
	}
	for _, value := range malformed {
		claims, err := Parse(value)
		assert.ErrorIs(t, err, ErrMalformed, "value %q", value)
		assert.Nil(t, claims)
	}
}
