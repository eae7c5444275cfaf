// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides thread-safe OS credential store operations for rustatl.
// A Manager is the persistent storage backend of the session store: values written
// here survive process exits and reboots until they are removed.
//
// On macOS the native `security` command is preferred; everywhere else (and as the
// macOS fallback) the 99designs/keyring library picks the best available backend.
// Missing keys read as the empty string so callers can treat absence and emptiness
// the same way.
package keychain

import (
	"errors"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/99designs/keyring"

	"rustatl/cli/internal/xdg"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "rustatl"

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu      sync.RWMutex
	ring    keyring.Keyring
	backend keychainBackend
}

// keychainBackend defines the interface for keychain operations.
type keychainBackend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// errNotFound is returned by native backends for absent keys.
var errNotFound = errors.New("key not found")

// NewManager creates a new keychain manager with the OS keyring initialized.
func NewManager() (*Manager, error) {
	// Try native security backend first on macOS
	if runtime.GOOS == "darwin" {
		backend, err := newSecurityBackend()
		if err == nil {
			return &Manager{backend: backend}, nil
		}
		// Fall through to keyring library if security command fails
	}

	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return NewWithRing(ring), nil
}

// NewWithRing wraps an already opened keyring. Tests pass keyring.NewArrayKeyring.
func NewWithRing(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// openRing opens the OS keyring, preferring native platform stores.
// The encrypted file backend is the last resort for headless Linux machines.
func openRing() (keyring.Keyring, error) {
	var allowedBackends []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		// Pass requires 'pass' utility installed: brew install pass
		allowedBackends = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowedBackends = []keyring.BackendType{keyring.WinCredBackend}
	default:
		allowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		}
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowedBackends,
		PassPrefix:      ServiceName,
		WinCredPrefix:   ServiceName,
		// KWallet folder and libsecret collection names.
		KWalletFolder:           ServiceName,
		LibSecretCollectionName: ServiceName,
		FilePasswordFunc:        keyring.TerminalPrompt,
	}
	if dir, err := xdg.ConfigDir(); err == nil {
		cfg.FileDir = filepath.Join(dir, "keyring")
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		if runtime.GOOS == "darwin" {
			return nil, errors.New("macOS Keychain unavailable. On macOS 26.0+, install 'pass': brew install pass gnupg && gpg --generate-key && pass init <gpg-key-id>")
		}
		return nil, err
	}
	return ring, nil
}

// Get returns the value stored under key, or "" when the key is absent.
// This method is thread-safe.
func (m *Manager) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.backend != nil {
		v, err := m.backend.Get(key)
		if errors.Is(err, errNotFound) {
			return "", nil
		}
		return v, err
	}

	it, err := m.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(it.Data), nil
}

// Set stores value under key, replacing any previous value.
// This method is thread-safe.
func (m *Manager) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Set(key, value)
	}

	return m.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: ServiceName + " " + key,
	})
}

// Remove deletes key. Removing an absent key is not an error.
// This method is thread-safe.
func (m *Manager) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		err := m.backend.Delete(key)
		if errors.Is(err, errNotFound) {
			return nil
		}
		return err
	}

	err := m.ring.Remove(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	return err
}

// keys lists the keys currently held in the ring. The native macOS backend
// cannot enumerate, so it always reports nil.
func (m *Manager) keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.backend != nil {
		return nil, nil
	}
	return m.ring.Keys()
}
