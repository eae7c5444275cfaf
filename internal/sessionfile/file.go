// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package sessionfile is the session-scoped storage backend: a small JSON object
// kept in the XDG runtime directory, which the OS clears when the user's login
// session ends. Values never outlive that session the way keychain entries do.
package sessionfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pterm/pterm"

	"rustatl/cli/internal/logging"
	"rustatl/cli/internal/xdg"
)

// FileName is the name of the session file inside the runtime directory.
const FileName = "session.json"

// errCorrupt marks a session file that is not a JSON object of strings.
var errCorrupt = errors.New("unreadable session file")

// File stores string values in a single JSON file with 0600 permissions.
type File struct {
	path string
	log  *pterm.Logger
	mu   sync.Mutex
}

// Option configures a File.
type Option func(*File)

// WithLogger sets the logger that reports discarded files.
func WithLogger(l *pterm.Logger) Option {
	return func(f *File) { f.log = l }
}

// New returns a File backed by path. The file is created on first write.
func New(path string, opts ...Option) *File {
	f := &File{path: path, log: logging.Discard()}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Open returns the File for the current login session.
func Open(opts ...Option) (*File, error) {
	dir, err := xdg.RuntimeDir()
	if err != nil {
		return nil, err
	}
	return New(filepath.Join(dir, FileName), opts...), nil
}

// Path returns the location of the backing file.
func (f *File) Path() string { return f.path }

// Get returns the value stored under key, or "" when absent. An unreadable
// file is reported as an error.
func (f *File) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.load()
	if err != nil {
		return "", err
	}
	return m[key], nil
}

// Set stores value under key. An unreadable file is replaced.
func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.loadForWrite()
	if err != nil {
		return err
	}
	m[key] = value
	return f.save(m)
}

// Remove deletes key. The file itself is removed once it holds nothing;
// an unreadable file holds nothing.
func (f *File) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.loadForWrite()
	if err != nil {
		return err
	}
	if len(m) == 0 {
		return f.removeFile()
	}
	if _, ok := m[key]; !ok {
		return nil
	}
	delete(m, key)
	if len(m) == 0 {
		return f.removeFile()
	}
	return f.save(m)
}

func (f *File) removeFile() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// loadForWrite is load with unreadable content treated as empty, so that a
// damaged file is overwritten or removed instead of blocking every write.
func (f *File) loadForWrite() (map[string]string, error) {
	m, err := f.load()
	if errors.Is(err, errCorrupt) {
		f.log.Debug("discarding unreadable session file", f.log.Args("path", f.path, "error", err.Error()))
		return make(map[string]string), nil
	}
	return m, err
}

// load reads the file; a missing or empty file yields an empty map.
func (f *File) load() (map[string]string, error) {
	m := make(map[string]string)
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w %s: %w", errCorrupt, f.path, err)
	}
	return m, nil
}

// save writes m through a temp file and rename so readers never see a partial file.
func (f *File) save(m map[string]string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+FileName+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
