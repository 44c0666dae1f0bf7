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

// Package api implements the authenticated request pipeline against the
// identity service.
//
// Every call carries the API-identification header and the ambient session
// credential from the token store, classifies the response into a closed
// Status enumeration, captures freshly issued credentials from the
// Authorization response header, and optionally tears the session down when
// the backend rejects the credential.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/TrentShailer/go-identity/pkg/logging"
	"github.com/TrentShailer/go-identity/pkg/token"
)

// DefaultAPIKeyHeader is the header the identity service uses to identify
// calling applications.
const DefaultAPIKeyHeader = "X-TS-API-Key"

// Sentinel errors for client construction.
var (
	// ErrMissingBaseURL is returned when no backend URL is configured.
	ErrMissingBaseURL = errors.New("base URL is required")

	// ErrMissingStore is returned when no token store is configured.
	ErrMissingStore = errors.New("token store is required")
)

// LogoutPolicy controls whether an unauthorized response tears down the
// local session.
type LogoutPolicy int

const (
	// LogoutDisabled leaves the session untouched on 401/403. Used by
	// calls that probe authorization state without owning the session.
	LogoutDisabled LogoutPolicy = iota

	// LogoutOnUnauthorized clears the session slot and notifies the
	// session-expired callback when the backend rejects the credential.
	LogoutOnUnauthorized
)

// Config configures a pipeline Client.
type Config struct {
	// BaseURL is the identity service origin, e.g. "https://id.example.com".
	BaseURL string

	// APIKeyHeader is the API-identification header name.
	// Defaults to DefaultAPIKeyHeader.
	APIKeyHeader string

	// APIKey is the API-identification header value.
	APIKey string

	// Store holds the session credential slot.
	Store token.Store

	// HTTPClient performs the HTTP exchanges. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Logger receives diagnostics. Defaults to logging.DefaultLogger().
	Logger *logging.Logger

	// OnSessionExpired is invoked after a teardown triggered by an
	// unauthorized response. hadSession reports whether a credential
	// existed before the teardown, so callers can alert the user only
	// when a real session was lost.
	OnSessionExpired func(hadSession bool)
}

// Client issues classified requests against the identity service.
type Client struct {
	baseURL          string
	apiKeyHeader     string
	apiKey           string
	store            token.Store
	http             *http.Client
	log              *logging.Logger
	onSessionExpired func(hadSession bool)
}

// New creates a pipeline client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if cfg.Store == nil {
		return nil, ErrMissingStore
	}

	header := cfg.APIKeyHeader
	if header == "" {
		header = DefaultAPIKeyHeader
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	log := cfg.Logger
	if log == nil {
		log = logging.DefaultLogger()
	}

	return &Client{
		baseURL:          strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKeyHeader:     header,
		apiKey:           cfg.APIKey,
		store:            cfg.Store,
		http:             httpClient,
		log:              log,
		onSessionExpired: cfg.OnSessionExpired,
	}, nil
}

// Store returns the session credential store the pipeline mutates.
func (c *Client) Store() token.Store {
	return c.store
}

// Request is the immutable configuration of one pipeline call.
type Request struct {
	// Method is the HTTP method.
	Method string

	// Path is the endpoint path, joined onto the configured base URL.
	Path string

	// Body, when non-nil, is JSON-encoded into the request.
	Body any

	// Authorization, when non-empty, replaces the ambient session
	// credential for this call. The step-up consent flow uses this to
	// send a consent-scoped credential on a single privileged request.
	Authorization string

	// Logout decides whether an unauthorized response tears the local
	// session down before the call returns.
	Logout LogoutPolicy
}

// Do performs one classified HTTP call. It never returns a Go error:
// transport failures classify as StatusServerError with the fault recorded
// on the response.
func (c *Client) Do(ctx context.Context, req Request) *Response {
	var reqBody io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return c.serverError(fmt.Errorf("failed to marshal request body: %w", err))
		}
		reqBody = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, reqBody)
	if err != nil {
		return c.serverError(fmt.Errorf("failed to create request: %w", err))
	}

	httpReq.Header.Set(c.apiKeyHeader, c.apiKey)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	authorization := req.Authorization
	if authorization == "" {
		if details, err := c.store.Get(); err == nil && details != nil {
			authorization = details.Bearer
		}
	}
	if authorization != "" {
		httpReq.Header.Set("Authorization", authorization)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return c.serverError(fmt.Errorf("request failed: %w", err))
	}
	defer func() {
		if closeErr := httpResp.Body.Close(); closeErr != nil {
			c.log.Warn("failed to close response body", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return c.serverError(fmt.Errorf("failed to read response body: %w", err))
	}

	response := &Response{
		Status: classify(httpResp.StatusCode),
		Header: httpResp.Header,
	}

	switch response.Status {
	case StatusOK:
		if bearer := httpResp.Header.Get("Authorization"); bearer != "" {
			if err := c.store.Set(bearer); err != nil {
				c.log.Warn("failed to persist session credential", "error", err)
			}
		}
		if len(body) == 0 || !json.Valid(body) {
			body = []byte("{}")
		}
		response.Body = json.RawMessage(body)

	case StatusClientError:
		response.Problems = decodeProblems(body)

	case StatusUnauthorized:
		if req.Logout == LogoutOnUnauthorized {
			c.teardown()
		}
	}

	return response
}

// Logout invalidates the session server-side, then clears the local slot
// regardless of the outcome. It reports whether a session credential
// existed, so callers alert the user only when one did.
func (c *Client) Logout(ctx context.Context) bool {
	details, err := c.store.Get()
	if err != nil {
		c.log.Warn("failed to read session credential", "error", err)
	}
	hadSession := details != nil

	if hadSession {
		resp := c.Do(ctx, Request{
			Method: http.MethodDelete,
			Path:   "/tokens/current",
		})
		if !resp.OK() {
			c.log.Debug("server-side token invalidation refused", "status", string(resp.Status))
		}
	}

	if err := c.store.Clear(); err != nil {
		c.log.Warn("failed to clear session credential", "error", err)
	}
	return hadSession
}

// teardown clears the local session slot after the backend rejected the
// credential. The rejected credential is already useless server-side, so no
// invalidation round trip is made.
func (c *Client) teardown() {
	details, err := c.store.Get()
	if err != nil {
		c.log.Warn("failed to read session credential", "error", err)
	}
	hadSession := details != nil

	if err := c.store.Clear(); err != nil {
		c.log.Warn("failed to clear session credential", "error", err)
	}
	if c.onSessionExpired != nil {
		c.onSessionExpired(hadSession)
	}
}

func (c *Client) serverError(err error) *Response {
	c.log.Warn("request did not complete", "error", err)
	return &Response{
		Status: StatusServerError,
		Err:    err,
	}
}
