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

// Store holds the single session credential slot. One store instance is
// shared by the request pipeline and the ceremony orchestrator; every
// successful authenticated response overwrites the slot and every detected
// authorization failure clears it.
//
// Implementations return errors only for faults of the persistence medium
// itself. A persisted value that cannot be decoded is not an error: Get
// reports it as absent and purges the slot so the next read starts clean.
type Store interface {
	// Get returns the current session credential, or (nil, nil) when the
	// slot is empty or holds an undecodable value.
	Get() (*Details, error)

	// Set overwrites the slot unconditionally with the given bearer value.
	Set(bearer string) error

	// Clear empties the slot. Clearing an empty slot is a no-op.
	Clear() error
}

// decode turns a persisted raw value into Details. The boolean reports
// whether the value was usable; callers purge the slot when it was not.
func decode(raw string) (*Details, bool) {
	if raw == "" {
		return nil, false
	}
	claims, err := Parse(raw)
	if err != nil {
		return nil, false
	}
	return &Details{Bearer: raw, Claims: *claims}, true
}
