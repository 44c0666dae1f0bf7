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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stores builds one of each Store implementation for contract tests.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	file, err := NewFileStore(filepath.Join(t.TempDir(), "token"))
	require.NoError(t, err)
	return map[string]Store{
		"file":   file,
		"memory": NewMemoryStore(),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	bearer := mintBearer(t, jwt.MapClaims{
		"sub": "identity-1",
		"typ": "common",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			details, err := store.Get()
			require.NoError(t, err)
			assert.Nil(t, details, "fresh store must be empty")

			require.NoError(t, store.Set(bearer))

			details, err = store.Get()
			require.NoError(t, err)
			require.NotNil(t, details)
			assert.Equal(t, bearer, details.Bearer)
			assert.Equal(t, "identity-1", details.Claims.Subject)
			assert.Equal(t, TypeCommon, details.Claims.Type)

			require.NoError(t, store.Clear())
			details, err = store.Get()
			require.NoError(t, err)
			assert.Nil(t, details)
		})
	}
}

func TestStoreOverwrite(t *testing.T) {
	first := mintBearer(t, jwt.MapClaims{"sub": "identity-1", "typ": "common"})
	second := mintBearer(t, jwt.MapClaims{"sub": "identity-1", "typ": "consent", "act": "pay"})

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(first))
			require.NoError(t, store.Set(second))

			details, err := store.Get()
			require.NoError(t, err)
			require.NotNil(t, details)
			assert.Equal(t, second, details.Bearer)
			assert.Equal(t, TypeConsent, details.Claims.Type)
		})
	}
}

func TestStoreSelfHealsUndecodableValue(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set("bearer garbage"))

			details, err := store.Get()
			require.NoError(t, err)
			assert.Nil(t, details, "undecodable value reads as absent")

			// The slot was purged, not just masked.
			details, err = store.Get()
			require.NoError(t, err)
			assert.Nil(t, details)
		})
	}
}

func TestStoreClearAbsent(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Clear())
			require.NoError(t, store.Clear())
		})
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	bearer := mintBearer(t, jwt.MapClaims{"sub": "identity-1", "typ": "common"})

	first, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(bearer))

	second, err := NewFileStore(path)
	require.NoError(t, err)
	details, err := second.Get()
	require.NoError(t, err)
	require.NotNil(t, details)
	assert.Equal(t, bearer, details.Bearer)
}

func TestFileStoreRemovesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("corrupt"), 0600))

	details, err := store.Get()
	require.NoError(t, err)
	assert.Nil(t, details)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "corrupt file must be removed")
}

func TestFileStorePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	store, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(mintBearer(t, jwt.MapClaims{"sub": "identity-1"})))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestNewFileStoreEmptyPath(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}
