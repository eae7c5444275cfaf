// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sessionfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	f := New(path)

	v, err := f.Get("auth_token")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, f.Set("auth_token", "t1"))
	require.NoError(t, f.Set("user_pid", "p1"))

	v, err = f.Get("auth_token")
	require.NoError(t, err)
	assert.Equal(t, "t1", v)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	// A second handle on the same path sees the same data.
	v, err = New(path).Get("user_pid")
	require.NoError(t, err)
	assert.Equal(t, "p1", v)
}

func TestFile_RemoveDeletesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	f := New(path)

	require.NoError(t, f.Set("auth_token", "t1"))
	require.NoError(t, f.Set("user_name", "n1"))

	require.NoError(t, f.Remove("auth_token"))
	_, err := os.Stat(path)
	require.NoError(t, err, "file kept while keys remain")

	require.NoError(t, f.Remove("user_name"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, f.Remove("user_name"), "removing an absent key is fine")
}

func TestFile_CorruptFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := New(path).Get("auth_token")
	assert.Error(t, err)
}

func TestOpen_UsesRuntimeDir(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", base)

	f, err := Open()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "rustatl", FileName), f.Path())
}

func TestFile_UnreadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("{trunc"), 0o600))
	f := New(path)

	_, err := f.Get("auth_token")
	assert.ErrorIs(t, err, errCorrupt)

	require.NoError(t, f.Set("auth_token", "t1"))
	v, err := f.Get("auth_token")
	require.NoError(t, err)
	assert.Equal(t, "t1", v)

	require.NoError(t, os.WriteFile(path, []byte("[1,2]"), 0o600))
	require.NoError(t, f.Remove("auth_token"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
