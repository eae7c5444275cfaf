// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; tokens go to the session store.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rustatl/cli/internal/backend"
	clierrors "rustatl/cli/internal/errors"
	"rustatl/cli/internal/xdg"
)

const (
	// EnvAPIURL overrides api_url.
	EnvAPIURL = "RUSTATL_API_URL"
	// EnvGRPCAddr overrides grpc_addr.
	EnvGRPCAddr = "RUSTATL_GRPC_ADDR"

	DefaultAPIURL   = "http://localhost:5150"
	DefaultLogLevel = "info"
	DefaultTimeout  = 10
)

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel       string            `json:"log_level"`
	APIURL         string            `json:"api_url"`
	GRPCAddr       string            `json:"grpc_addr,omitempty"`
	TimeoutSeconds int               `json:"timeout_seconds"`
	Endpoints      backend.Endpoints `json:"endpoints"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		LogLevel:       DefaultLogLevel,
		APIURL:         DefaultAPIURL,
		TimeoutSeconds: DefaultTimeout,
		Endpoints:      backend.DefaultEndpoints(),
	}
}

// Timeout returns the HTTP timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; a missing file yields defaults. Fields absent
// from the file keep their defaults and environment overrides are applied last.
func Load() (Config, error) {
	c, err := LoadFile()
	if err != nil {
		return c, err
	}
	c.applyEnv()
	return c, c.Validate()
}

// LoadFile reads the config file without environment overrides.
func LoadFile() (Config, error) {
	c := Default()
	p, err := Path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return c, err
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return c, clierrors.Wrap(clierrors.InvalidConfig, p, err)
		}
	}
	c.fillDefaults()
	return c, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvGRPCAddr)); v != "" {
		c.GRPCAddr = v
	}
}

// fillDefaults repairs zero values written by hand.
func (c *Config) fillDefaults() {
	def := Default()
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.APIURL == "" {
		c.APIURL = def.APIURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = def.TimeoutSeconds
	}
	if c.Endpoints.Current == "" {
		c.Endpoints.Current = def.Endpoints.Current
	}
}

// Validate checks that the API URL is absolute.
func (c Config) Validate() error {
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return clierrors.New(clierrors.InvalidConfig, fmt.Sprintf("api_url %q must start with http:// or https://", c.APIURL))
	}
	return nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
