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

// Package identity provides typed wrappers for the identity service's
// endpoints on top of the request pipeline. Each method performs exactly
// one call and propagates the pipeline's classification unchanged.
package identity

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/TrentShailer/go-identity/pkg/api"
	"github.com/TrentShailer/go-identity/pkg/token"
	"github.com/go-webauthn/webauthn/protocol"
)

// Client wraps the request pipeline with one method per backend route.
type Client struct {
	api *api.Client
}

// NewClient creates an endpoint client over the given pipeline.
func NewClient(apiClient *api.Client) *Client {
	return &Client{api: apiClient}
}

// API returns the underlying pipeline client.
func (c *Client) API() *api.Client {
	return c.api
}

type createChallengeRequest struct {
	IdentityID *string `json:"identityId"`
}

// CreateChallenge requests a single-use challenge, optionally scoped to one
// identity.
func (c *Client) CreateChallenge(ctx context.Context, identityID *string) (*Challenge, *api.Response) {
	resp := c.api.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/challenges",
		Body:   createChallengeRequest{IdentityID: identityID},
		Logout: api.LogoutOnUnauthorized,
	})
	return decode[Challenge](resp)
}

// RelyingParty fetches the backend's relying-party descriptor. Fetched
// fresh per ceremony to tolerate server-side rotation.
func (c *Client) RelyingParty(ctx context.Context) (*protocol.RelyingPartyEntity, *api.Response) {
	resp := c.api.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/.well-known/relying-party.json",
		Logout: api.LogoutOnUnauthorized,
	})
	return decode[protocol.RelyingPartyEntity](resp)
}

// ExistingCredentials enumerates credentials already registered for an
// identity or a username. With neither given the backend scopes to all
// credentials and returns an empty list.
func (c *Client) ExistingCredentials(ctx context.Context, identityID, username string) ([]protocol.CredentialDescriptor, *api.Response) {
	query := ""
	switch {
	case identityID != "":
		query = "?identityId=" + url.QueryEscape(identityID)
	case username != "":
		query = "?username=" + url.QueryEscape(username)
	}

	resp := c.api.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/existing-credentials" + query,
		Logout: api.LogoutOnUnauthorized,
	})

	type envelope struct {
		Credentials []protocol.CredentialDescriptor `json:"credentials"`
	}
	body, resp := decode[envelope](resp)
	if body == nil {
		return nil, resp
	}
	return body.Credentials, resp
}

// PublicKeyParameters fetches the signature algorithms the backend accepts
// for new credentials.
func (c *Client) PublicKeyParameters(ctx context.Context) ([]protocol.CredentialParameter, *api.Response) {
	resp := c.api.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/.well-known/public-key-parameters.json",
		Logout: api.LogoutOnUnauthorized,
	})

	type envelope struct {
		PublicKeyParameters []protocol.CredentialParameter `json:"publicKeyParameters"`
	}
	body, resp := decode[envelope](resp)
	if body == nil {
		return nil, resp
	}
	return body.PublicKeyParameters, resp
}

// Identity fetches an identity profile.
func (c *Client) Identity(ctx context.Context, id string) (*Identity, *api.Response) {
	resp := c.api.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/identities/%s", url.PathEscape(id)),
		Logout: api.LogoutOnUnauthorized,
	})
	return decode[Identity](resp)
}

// TokenDetails fetches the claims of the ambient session credential.
func (c *Client) TokenDetails(ctx context.Context) (*TokenDetails, *api.Response) {
	resp := c.api.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/tokens/current",
		Logout: api.LogoutOnUnauthorized,
	})
	return decode[TokenDetails](resp)
}

// PublicKeys enumerates the passkeys registered for an identity.
func (c *Client) PublicKeys(ctx context.Context, identityID string) ([]PublicKey, *api.Response) {
	resp := c.api.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/public-keys?identityId=" + url.QueryEscape(identityID),
		Logout: api.LogoutOnUnauthorized,
	})

	type envelope struct {
		PublicKeys []PublicKey `json:"publicKeys"`
	}
	body, resp := decode[envelope](resp)
	if body == nil {
		return nil, resp
	}
	return body.PublicKeys, resp
}

type issueTokenRequest struct {
	Credential *AssertionCredential `json:"credential"`
	Type       token.Type           `json:"typ"`
	Action     *string              `json:"act,omitempty"`
}

// IssueToken submits an assertion to obtain a credential of the given type.
// On success the backend returns the new bearer in the Authorization
// response header, which the pipeline persists into the token store before
// this method returns.
func (c *Client) IssueToken(ctx context.Context, credential *AssertionCredential, typ token.Type, action *string) *api.Response {
	return c.api.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/tokens",
		Body: issueTokenRequest{
			Credential: credential,
			Type:       typ,
			Action:     action,
		},
		Logout: api.LogoutOnUnauthorized,
	})
}

type registerPublicKeyRequest struct {
	DisplayName string                 `json:"displayName"`
	Credential  *AttestationCredential `json:"credential"`
}

// RegisterPublicKey submits a newly created credential for persistent
// registration.
func (c *Client) RegisterPublicKey(ctx context.Context, credential *AttestationCredential, displayName string) *api.Response {
	return c.api.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/public-keys",
		Body: registerPublicKeyRequest{
			DisplayName: displayName,
			Credential:  credential,
		},
		Logout: api.LogoutOnUnauthorized,
	})
}

// RevokeToken invalidates the current session credential server-side via
// the legacy revocation route. Prefer Client.API().Logout, which uses
// DELETE /tokens/current and clears the local slot.
func (c *Client) RevokeToken(ctx context.Context) *api.Response {
	return c.api.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/revoked-tokens",
	})
}

// decode unmarshals a successful response body into T. Propagates non-ok
// responses untouched; a body that does not match the expected shape
// reclassifies as a server error.
func decode[T any](resp *api.Response) (*T, *api.Response) {
	if !resp.OK() {
		return nil, resp
	}
	value, err := api.DecodeBody[T](resp)
	if err != nil {
		resp.Status = api.StatusServerError
		resp.Err = err
		return nil, resp
	}
	return value, resp
}
