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

// Package config loads the CLI configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the complete client configuration
type Config struct {
	API           APIConfig           `yaml:"api"`
	Token         TokenConfig         `yaml:"token"`
	Authenticator AuthenticatorConfig `yaml:"authenticator"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// APIConfig contains identity service connection settings
type APIConfig struct {
	URL       string `yaml:"url"`
	KeyHeader string `yaml:"key_header"`
	Key       string `yaml:"key"`
}

// TokenConfig controls where the session credential is persisted
type TokenConfig struct {
	Path string `yaml:"path"`
}

// AuthenticatorConfig describes the relying party the virtual
// authenticator signs for. It must match what the backend publishes.
type AuthenticatorConfig struct {
	RelyingPartyID   string `yaml:"rp_id"`
	RelyingPartyName string `yaml:"rp_name"`
	Origin           string `yaml:"origin"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

// Default returns the configuration for a local development backend.
func Default() *Config {
	tokenPath := "token"
	if home, err := os.UserHomeDir(); err == nil {
		tokenPath = filepath.Join(home, ".identity", "token")
	}
	return &Config{
		API: APIConfig{
			URL:       "http://localhost:8081",
			KeyHeader: "X-TS-API-Key",
			Key:       "identity-site",
		},
		Token: TokenConfig{
			Path: tokenPath,
		},
		Authenticator: AuthenticatorConfig{
			RelyingPartyID:   "localhost",
			RelyingPartyName: "Identity Service",
			Origin:           "http://localhost:8080",
		},
	}
}

// Load reads configuration from a YAML file over the defaults and applies
// environment variable overrides. An empty path loads defaults plus
// overrides only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		// #nosec G304 - Config file path is provided by the user
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) {
	if url := os.Getenv("IDENTITY_API_URL"); url != "" {
		cfg.API.URL = url
	}
	if key := os.Getenv("IDENTITY_API_KEY"); key != "" {
		cfg.API.Key = key
	}
	if header := os.Getenv("IDENTITY_API_KEY_HEADER"); header != "" {
		cfg.API.KeyHeader = header
	}
	if path := os.Getenv("IDENTITY_TOKEN_PATH"); path != "" {
		cfg.Token.Path = path
	}
	if os.Getenv("IDENTITY_DEBUG") != "" {
		cfg.Logging.Debug = true
	}
}

// Validate checks the configuration for missing required values
func (c *Config) Validate() error {
	if c.API.URL == "" {
		return fmt.Errorf("api.url is required")
	}
	if c.Token.Path == "" {
		return fmt.Errorf("token.path is required")
	}
	if c.Authenticator.RelyingPartyID == "" {
		return fmt.Errorf("authenticator.rp_id is required")
	}
	if c.Authenticator.Origin == "" {
		return fmt.Errorf("authenticator.origin is required")
	}
	return nil
}
