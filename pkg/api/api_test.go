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

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrentShailer/go-identity/pkg/token"
)

func mintBearer(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return "bearer " + signed
}

// newClient builds a pipeline client over a memory store pointed at server.
func newClient(t *testing.T, server *httptest.Server) (*Client, *token.MemoryStore) {
	t.Helper()
	store := token.NewMemoryStore()
	client, err := New(Config{
		BaseURL: server.URL,
		APIKey:  "identity-site",
		Store:   store,
	})
	require.NoError(t, err)
	return client, store
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{Store: token.NewMemoryStore()})
	assert.ErrorIs(t, err, ErrMissingBaseURL)

	_, err = New(Config{BaseURL: "http://localhost:8081"})
	assert.ErrorIs(t, err, ErrMissingStore)
}

func TestDoSetsHeaders(t *testing.T) {
	bearer := mintBearer(t, jwt.MapClaims{"sub": "identity-1", "typ": "common"})

	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, store := newClient(t, server)
	require.NoError(t, store.Set(bearer))

	resp := client.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/challenges",
		Body:   map[string]any{"identityId": nil},
	})
	require.Equal(t, StatusOK, resp.Status)

	assert.Equal(t, "identity-site", got.Get(DefaultAPIKeyHeader))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, bearer, got.Get("Authorization"))
}

func TestDoWithoutSessionOmitsAuthorization(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, _ := newClient(t, server)
	resp := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	require.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, got.Get("Authorization"))
}

func TestDoAuthorizationOverride(t *testing.T) {
	ambient := mintBearer(t, jwt.MapClaims{"sub": "identity-1", "typ": "common"})
	override := mintBearer(t, jwt.MapClaims{"sub": "identity-1", "typ": "consent", "act": "pay"})

	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, store := newClient(t, server)
	require.NoError(t, store.Set(ambient))

	client.Do(context.Background(), Request{
		Method:        http.MethodDelete,
		Path:          "/identities/identity-1",
		Authorization: override,
	})
	assert.Equal(t, override, got)
}

func TestDoCapturesIssuedCredential(t *testing.T) {
	issued := mintBearer(t, jwt.MapClaims{"sub": "identity-1", "typ": "common"})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Authorization", issued)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client, store := newClient(t, server)
	resp := client.Do(context.Background(), Request{Method: http.MethodPost, Path: "/tokens"})
	require.Equal(t, StatusOK, resp.Status)

	details, err := store.Get()
	require.NoError(t, err)
	require.NotNil(t, details)
	assert.Equal(t, issued, details.Bearer, "header value persisted verbatim")
}

func TestDoUnusableSuccessBody(t *testing.T) {
	bodies := map[string]string{"empty": "", "invalid": "<!doctype html>"}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			client, _ := newClient(t, server)
			resp := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
			require.Equal(t, StatusOK, resp.Status)
			assert.Equal(t, json.RawMessage("{}"), resp.Body)
		})
	}
}

func TestDoClientErrorProblems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"problems":[{"pointer":"/displayName","detail":"Too long."}]}`))
	}))
	defer server.Close()

	client, _ := newClient(t, server)
	resp := client.Do(context.Background(), Request{Method: http.MethodPost, Path: "/public-keys"})

	require.Equal(t, StatusClientError, resp.Status)
	require.Len(t, resp.Problems, 1)
	assert.Equal(t, "Too long.", resp.Problems[0].Message())
}

func TestDoUnauthorizedTeardown(t *testing.T) {
	bearer := mintBearer(t, jwt.MapClaims{"sub": "identity-1", "typ": "common"})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	var expired []bool
	store := token.NewMemoryStore()
	client, err := New(Config{
		BaseURL:          server.URL,
		Store:            store,
		OnSessionExpired: func(hadSession bool) { expired = append(expired, hadSession) },
	})
	require.NoError(t, err)
	require.NoError(t, store.Set(bearer))

	resp := client.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/tokens/current",
		Logout: LogoutOnUnauthorized,
	})
	require.Equal(t, StatusUnauthorized, resp.Status)

	details, err := store.Get()
	require.NoError(t, err)
	assert.Nil(t, details, "session slot must be cleared")
	assert.Equal(t, []bool{true}, expired)

	// A second rejection finds no session to lose.
	client.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/tokens/current",
		Logout: LogoutOnUnauthorized,
	})
	assert.Equal(t, []bool{true, false}, expired)
}

func TestDoUnauthorizedWithoutPolicy(t *testing.T) {
	bearer := mintBearer(t, jwt.MapClaims{"sub": "identity-1", "typ": "common"})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client, store := newClient(t, server)
	require.NoError(t, store.Set(bearer))

	resp := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/tokens/current"})
	require.Equal(t, StatusUnauthorized, resp.Status)

	details, err := store.Get()
	require.NoError(t, err)
	require.NotNil(t, details, "session survives when teardown is not requested")
	assert.Equal(t, bearer, details.Bearer)
}

func TestDoNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client, _ := newClient(t, server)
	resp := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/identities/missing"})
	assert.Equal(t, StatusNotFound, resp.Status)
}

func TestDoServerFault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, _ := newClient(t, server)
	resp := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	assert.Equal(t, StatusServerError, resp.Status)
}

func TestDoTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, _ := newClient(t, server)
	server.Close()

	resp := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	assert.Equal(t, StatusServerError, resp.Status)
	assert.Error(t, resp.Err)
}

func TestLogout(t *testing.T) {
	bearer := mintBearer(t, jwt.MapClaims{"sub": "identity-1", "typ": "common"})

	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, store := newClient(t, server)
	require.NoError(t, store.Set(bearer))

	assert.True(t, client.Logout(context.Background()))
	assert.Equal(t, []string{"DELETE /tokens/current"}, requests)

	details, err := store.Get()
	require.NoError(t, err)
	assert.Nil(t, details)

	// Without a session there is nothing to invalidate server-side.
	assert.False(t, client.Logout(context.Background()))
	assert.Len(t, requests, 1)
}

func TestLogoutClearsDespiteServerRefusal(t *testing.T) {
	bearer := mintBearer(t, jwt.MapClaims{"sub": "identity-1", "typ": "common"})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, store := newClient(t, server)
	require.NoError(t, store.Set(bearer))

	assert.True(t, client.Logout(context.Background()))
	details, err := store.Get()
	require.NoError(t, err)
	assert.Nil(t, details, "local slot cleared even when invalidation fails")
}
