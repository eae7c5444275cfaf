// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package xdg

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigDir_UsesXDGConfigHome(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	dir, err := ConfigDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(base, AppName), dir)

	fi, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, fi.IsDir())
	require.Equal(t, os.FileMode(0o700), fi.Mode().Perm())
}

func TestRuntimeDir_UsesXDGRuntimeDir(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", base)

	dir, err := RuntimeDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(base, AppName), dir)
}

func TestRuntimeDir_FallsBackToTempDir(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", "")
	t.Setenv("TMPDIR", tmp)

	dir, err := RuntimeDir()
	require.NoError(t, err)
	require.Equal(t, tmp, filepath.Dir(dir))
	require.Contains(t, filepath.Base(dir), AppName+"-")
}

func TestRuntimeDir_FallbackTightensExistingDir(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", "")
	t.Setenv("TMPDIR", tmp)

	want := filepath.Join(tmp, fmt.Sprintf("%s-%d", AppName, os.Getuid()))
	require.NoError(t, os.Mkdir(want, 0o755))
	require.NoError(t, os.Chmod(want, 0o755))

	dir, err := RuntimeDir()
	require.NoError(t, err)
	require.Equal(t, want, dir)

	fi, err := os.Lstat(dir)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o700), fi.Mode().Perm())
}

func TestRuntimeDir_FallbackRejectsSymlink(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", "")
	t.Setenv("TMPDIR", tmp)

	target := t.TempDir()
	link := filepath.Join(tmp, fmt.Sprintf("%s-%d", AppName, os.Getuid()))
	require.NoError(t, os.Symlink(target, link))

	_, err := RuntimeDir()
	require.ErrorIs(t, err, ErrUnsafeDir)
}

func TestRuntimeDir_FallbackRejectsFile(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", "")
	t.Setenv("TMPDIR", tmp)

	p := filepath.Join(tmp, fmt.Sprintf("%s-%d", AppName, os.Getuid()))
	require.NoError(t, os.WriteFile(p, nil, 0o600))

	_, err := RuntimeDir()
	require.ErrorIs(t, err, ErrUnsafeDir)
}
