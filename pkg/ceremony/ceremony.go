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

// Package ceremony orchestrates the multi-step credential ceremonies
// against the identity service: passkey registration, login, and step-up
// consent.
//
// Each ceremony is a fixed, sequential list of steps. A non-ok result at
// any step short-circuits the remainder and becomes the ceremony's outcome
// verbatim. There is no parallelism and no automatic retry; a second
// ceremony started before the first resolves can race on the shared token
// store (last writer wins).
package ceremony

import (
	"context"
	"errors"

	"github.com/TrentShailer/go-identity/pkg/identity"
	"github.com/TrentShailer/go-identity/pkg/logging"
	"github.com/TrentShailer/go-identity/pkg/token"
	"github.com/go-webauthn/webauthn/protocol"
)

// Construction errors.
var (
	// ErrMissingClient is returned when no endpoint client is configured.
	ErrMissingClient = errors.New("identity client is required")

	// ErrMissingAuthenticator is returned when no authenticator is configured.
	ErrMissingAuthenticator = errors.New("authenticator is required")
)

// ceremonyHints tells the platform which authenticator classes to offer.
var ceremonyHints = []protocol.PublicKeyCredentialHints{
	protocol.PublicKeyCredentialHintSecurityKey,
	protocol.PublicKeyCredentialHintHybrid,
	protocol.PublicKeyCredentialHintClientDevice,
}

// Params configures an Orchestrator.
type Params struct {
	// Client performs the backend round trips.
	Client *identity.Client

	// Authenticator produces and proves possession of credentials.
	Authenticator Authenticator

	// Logger receives diagnostics. Defaults to logging.DefaultLogger().
	Logger *logging.Logger
}

// Orchestrator sequences the network calls and the authenticator
// invocation for each ceremony. The token store is reached through the
// pipeline underneath the endpoint client; the orchestrator never persists
// anything itself except through that path.
type Orchestrator struct {
	client *identity.Client
	store  token.Store
	authn  Authenticator
	log    *logging.Logger
}

// New creates a ceremony orchestrator.
func New(p Params) (*Orchestrator, error) {
	if p.Client == nil {
		return nil, ErrMissingClient
	}
	if p.Authenticator == nil {
		return nil, ErrMissingAuthenticator
	}
	log := p.Logger
	if log == nil {
		log = logging.DefaultLogger()
	}
	return &Orchestrator{
		client: p.Client,
		store:  p.Client.API().Store(),
		authn:  p.Authenticator,
		log:    log,
	}, nil
}

// RegisterParams are the caller-supplied inputs to a registration ceremony.
type RegisterParams struct {
	// DisplayName labels the new passkey on the backend.
	DisplayName string

	// PreferResidentKey asks the authenticator to store the credential
	// on-device, enabling username-less login later. Maps to the
	// "preferred" resident-key requirement; otherwise "discouraged".
	// Never left unset: the backend requires an explicit value.
	PreferResidentKey bool
}

// Register runs the passkey registration ceremony for the identity that
// owns the current session. Outcome payload is empty; the new passkey
// lives on the backend and the authenticator.
func (o *Orchestrator) Register(ctx context.Context, params RegisterParams) Result {
	session, err := o.store.Get()
	if err != nil || session == nil {
		return Result{Status: StatusUnauthenticated}
	}
	identityID := session.Claims.Subject

	challenge, resp := o.client.CreateChallenge(ctx, &identityID)
	if !resp.OK() {
		return Result{Status: statusOf(resp)}
	}

	relyingParty, resp := o.client.RelyingParty(ctx)
	if !resp.OK() {
		return Result{Status: statusOf(resp)}
	}

	exclude, resp := o.client.ExistingCredentials(ctx, identityID, "")
	if !resp.OK() {
		return Result{Status: statusOf(resp)}
	}

	profile, resp := o.client.Identity(ctx, identityID)
	if !resp.OK() {
		return Result{Status: statusOf(resp)}
	}

	parameters, resp := o.client.PublicKeyParameters(ctx)
	if !resp.OK() {
		return Result{Status: statusOf(resp)}
	}

	residentKey := protocol.ResidentKeyRequirementDiscouraged
	if params.PreferResidentKey {
		residentKey = protocol.ResidentKeyRequirementPreferred
	}

	options := &protocol.PublicKeyCredentialCreationOptions{
		Challenge:    challenge.Challenge,
		RelyingParty: *relyingParty,
		User: protocol.UserEntity{
			CredentialEntity: protocol.CredentialEntity{Name: profile.Username},
			DisplayName:      profile.DisplayName,
			ID:               profile.ID,
		},
		Parameters:            parameters,
		CredentialExcludeList: exclude,
		Hints:                 ceremonyHints,
		AuthenticatorSelection: protocol.AuthenticatorSelection{
			ResidentKey:      residentKey,
			UserVerification: protocol.VerificationPreferred,
		},
	}

	credential, err := o.authn.Create(ctx, options)
	if err != nil || credential == nil {
		o.log.Debug("authenticator declined creation", "error", err)
		return Result{Status: StatusCancelled}
	}
	if len(credential.Response.PublicKey) == 0 {
		return Result{Status: StatusError}
	}

	resp = o.client.RegisterPublicKey(ctx, credential, params.DisplayName)
	if !resp.OK() {
		return Result{Status: statusOf(resp)}
	}
	return Result{Status: StatusOK}
}

// Login runs the login ceremony and establishes a common session
// credential. Username is optional: when empty the backend scopes to all
// credentials and the authenticator picks a discoverable one.
func (o *Orchestrator) Login(ctx context.Context, username string) Result {
	credential, status := o.assert(ctx, assertScope{username: username})
	if status != StatusOK {
		return Result{Status: status}
	}
	return o.issueToken(ctx, credential, token.TypeCommon, nil)
}

// assertScope selects which credentials an assertion ceremony may use.
// Zero value means all credentials (discoverable flow).
type assertScope struct {
	identityID string
	username   string
}

// assert runs the shared front half of login and consent: challenge,
// relying party, allowed credentials, authenticator assertion.
func (o *Orchestrator) assert(ctx context.Context, scope assertScope) (*identity.AssertionCredential, Status) {
	var challengeScope *string
	if scope.identityID != "" {
		challengeScope = &scope.identityID
	}

	challenge, resp := o.client.CreateChallenge(ctx, challengeScope)
	if !resp.OK() {
		return nil, statusOf(resp)
	}

	relyingParty, resp := o.client.RelyingParty(ctx)
	if !resp.OK() {
		return nil, statusOf(resp)
	}

	allowed, resp := o.client.ExistingCredentials(ctx, scope.identityID, scope.username)
	if !resp.OK() {
		return nil, statusOf(resp)
	}

	options := &protocol.PublicKeyCredentialRequestOptions{
		Challenge:          challenge.Challenge,
		RelyingPartyID:     relyingParty.ID,
		AllowedCredentials: allowed,
		Hints:              ceremonyHints,
		UserVerification:   protocol.VerificationRequired,
	}

	credential, err := o.authn.Get(ctx, options)
	if err != nil || credential == nil {
		o.log.Debug("authenticator declined assertion", "error", err)
		return nil, StatusCancelled
	}
	return credential, StatusOK
}

// issueToken submits the assertion and reads back the bearer the pipeline
// captured from the Authorization response header.
func (o *Orchestrator) issueToken(ctx context.Context, credential *identity.AssertionCredential, typ token.Type, action *string) Result {
	resp := o.client.IssueToken(ctx, credential, typ, action)
	if !resp.OK() {
		return Result{Status: statusOf(resp)}
	}

	details, err := o.store.Get()
	if err != nil || details == nil {
		// The backend accepted the assertion but no bearer landed in the
		// store; the response header must have been missing or unusable.
		return Result{Status: StatusError}
	}
	return Result{Status: StatusOK, Bearer: details.Bearer}
}
