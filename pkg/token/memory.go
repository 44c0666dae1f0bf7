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

import "sync"

// MemoryStore keeps the session credential in memory. Useful for tests and
// for embedding the SDK in processes that manage persistence themselves.
type MemoryStore struct {
	mu     sync.RWMutex
	bearer string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the stored session credential. An undecodable value is
// treated as absent and the slot is cleared.
func (s *MemoryStore) Get() (*Details, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	details, ok := decode(s.bearer)
	if !ok {
		s.bearer = ""
		return nil, nil
	}
	return details, nil
}

// Set overwrites the slot unconditionally.
func (s *MemoryStore) Set(bearer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bearer = bearer
	return nil
}

// Clear empties the slot.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bearer = ""
	return nil
}
