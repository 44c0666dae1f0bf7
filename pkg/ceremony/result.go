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

import "github.com/TrentShailer/go-identity/pkg/api"

// Status is the closed outcome enumeration shared by every ceremony.
type Status string

const (
	// StatusOK means the ceremony completed and its payload is valid.
	StatusOK Status = "ok"

	// StatusCancelled means the authenticator produced no usable
	// credential. User dismissal and authenticator faults are not
	// distinguished; retrying the whole ceremony is the remedy either way.
	StatusCancelled Status = "cancelled"

	// StatusUnauthenticated means a network step was rejected as
	// unauthorized. The pipeline has already torn the session down.
	StatusUnauthenticated Status = "unauthenticated"

	// StatusError covers every other failure: server faults, validation
	// rejections, and malformed authenticator output.
	StatusError Status = "error"
)

// Result is the outcome of a registration, login or consent ceremony.
type Result struct {
	Status Status

	// Bearer is the issued credential for login and consent ceremonies.
	// Empty for registration and for any non-ok status.
	Bearer string
}

// Consent is a successfully obtained step-up consent proof.
type Consent struct {
	// Action is the backend action the proof authorizes.
	Action string

	// ConsentToken is the consent-scoped bearer. Callers pass it as an
	// explicit Authorization override on the single privileged request it
	// authorizes, then discard it.
	ConsentToken string

	// OriginalToken is the ambient session credential that was restored
	// to the store.
	OriginalToken string
}

// ConsentResult is the outcome of the step-up consent flow.
type ConsentResult struct {
	Status Status

	// Consent is set only when Status is StatusOK.
	Consent *Consent
}

// statusOf maps a pipeline classification onto a ceremony outcome.
func statusOf(resp *api.Response) Status {
	switch resp.Status {
	case api.StatusOK:
		return StatusOK
	case api.StatusUnauthorized:
		return StatusUnauthenticated
	default:
		return StatusError
	}
}
