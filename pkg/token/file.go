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
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	// Directory holding the token file is owner-only.
	tokenDirPerms = 0700

	// The bearer grants a session; owner read/write only.
	tokenFilePerms = 0600
)

// FileStore persists the session credential in a single file so it survives
// process restarts. It is safe for concurrent use within one process; it
// makes no attempt to coordinate between processes.
type FileStore struct {
	mu   sync.RWMutex
	path string
}

// NewFileStore creates a FileStore backed by the file at path. The parent
// directory is created with 0700 permissions if it does not exist.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("token store: path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), tokenDirPerms); err != nil {
		return nil, fmt.Errorf("token store: failed to create directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Get returns the persisted session credential. An unreadable or
// undecodable file is treated as absent and the file is removed.
func (s *FileStore) Get() (*Details, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("token store: failed to read %q: %w", s.path, err)
	}

	details, ok := decode(strings.TrimSpace(string(data)))
	if !ok {
		if err := s.clearLocked(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return details, nil
}

// Set overwrites the persisted slot unconditionally.
func (s *FileStore) Set(bearer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.path, []byte(bearer), tokenFilePerms); err != nil {
		return fmt.Errorf("token store: failed to write %q: %w", s.path, err)
	}
	return nil
}

// Clear removes the persisted slot. Clearing an absent slot is a no-op.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

func (s *FileStore) clearLocked() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("token store: failed to remove %q: %w", s.path, err)
	}
	return nil
}
