// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package xdg provides helpers to resolve XDG Base Directory paths for rustatl.
// It implements the XDG Base Directory specification for determining appropriate
// locations for configuration files and per-login-session runtime files.
//
// The package handles fallback to traditional locations when XDG environment
// variables are not set and ensures private permissions for the directories it creates.
package xdg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// AppName is the directory name used under every XDG base directory.
const AppName = "rustatl"

// ErrUnsafeDir is returned when the runtime dir fallback cannot be trusted.
var ErrUnsafeDir = errors.New("unsafe runtime directory")

// ConfigDir returns the XDG config directory for rustatl.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.config/rustatl when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	dir := filepath.Join(base, AppName)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}

// RuntimeDir returns the XDG runtime directory for rustatl.
// XDG_RUNTIME_DIR is bound to the user's login session and removed when it ends,
// which makes it the home for session-scoped credentials.
// Without it, a per-user directory under the system temp dir is used.
func RuntimeDir() (string, error) {
	base := os.Getenv("XDG_RUNTIME_DIR")
	if base == "" {
		return privateTempDir(fmt.Sprintf("%s-%d", AppName, os.Getuid()))
	}
	dir := filepath.Join(base, AppName)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}

// privateTempDir creates name under the shared temp dir. Since other users can
// create entries there first, an existing entry must be a real directory owned
// by the current user; its mode is then forced to 0700.
func privateTempDir(name string) (string, error) {
	dir := filepath.Join(os.TempDir(), name)
	if err := os.Mkdir(dir, 0o700); err != nil && !errors.Is(err, os.ErrExist) {
		return "", err
	}
	fi, err := os.Lstat(dir)
	if err != nil {
		return "", err
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("%s: %w: not a directory", dir, ErrUnsafeDir)
	}
	if !ownedByCurrentUser(fi) {
		return "", fmt.Errorf("%s: %w: owned by another user", dir, ErrUnsafeDir)
	}
	if fi.Mode().Perm() != 0o700 {
		if err := os.Chmod(dir, 0o700); err != nil {
			return "", err
		}
	}
	return dir, nil
}
