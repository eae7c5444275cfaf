// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/99designs/keyring"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rustatl/cli/internal/config"
	clierrors "rustatl/cli/internal/errors"
	"rustatl/cli/internal/keychain"
	"rustatl/cli/internal/session"
)

type harness struct {
	persistent session.Storage
	ephemeral  session.Storage
	hits       atomic.Int32
	srv        *httptest.Server
}

// newHarness points the CLI at a fake backend that accepts token "t1" and
// swaps the OS storage for in-memory keyrings.
func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		persistent: keychain.NewWithRing(keyring.NewArrayKeyring(nil)),
		ephemeral:  keychain.NewWithRing(keyring.NewArrayKeyring(nil)),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/current", func(w http.ResponseWriter, r *http.Request) {
		h.hits.Add(1)
		if r.Header.Get("Authorization") != "Bearer t1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"pid": "p1", "name": "Ferris", "email": "ferris@rustatl.dev"})
	})
	mux.HandleFunc("/api/notes", func(w http.ResponseWriter, r *http.Request) {
		h.hits.Add(1)
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(r.Method + " " + r.Header.Get("Authorization")))
	})
	h.srv = httptest.NewServer(mux)
	t.Cleanup(h.srv.Close)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.EnvAPIURL, h.srv.URL)
	t.Setenv(config.EnvGRPCAddr, "")

	origStorage, origInteractive := openStorage, interactive
	openStorage = func(*pterm.Logger) (session.Storage, session.Storage) { return h.persistent, h.ephemeral }
	interactive = func() bool { return false }
	t.Cleanup(func() { openStorage, interactive = origStorage, origInteractive })
	return h
}

func (h *harness) seed(t *testing.T, st session.Storage, token string) {
	t.Helper()
	require.NoError(t, st.Set(session.KeyToken, token))
	require.NoError(t, st.Set(session.KeyPID, "p1"))
	require.NoError(t, st.Set(session.KeyName, "Ferris"))
}

func get(t *testing.T, st session.Storage, key string) string {
	t.Helper()
	v, err := st.Get(key)
	require.NoError(t, err)
	return v
}

// run executes the CLI with args and returns what commands wrote to their
// configured output. Flag state is reset first since cobra keeps it between runs.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if f.Value.Type() != "stringArray" {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
	fetchHeaders = nil
}

func TestLogin_RememberWritesKeychain(t *testing.T) {
	h := newHarness(t)

	_, err := run(t, "login", "--token", "t1", "--pid", "p1", "--name", "Ferris", "--remember")
	require.NoError(t, err)

	assert.Equal(t, "t1", get(t, h.persistent, session.KeyToken))
	assert.Equal(t, "p1", get(t, h.persistent, session.KeyPID))
	assert.Equal(t, "Ferris", get(t, h.persistent, session.KeyName))
	assert.Empty(t, get(t, h.ephemeral, session.KeyToken))
	assert.Zero(t, h.hits.Load(), "login does not contact the backend")
}

func TestLogin_ResponseFileIsSessionOnly(t *testing.T) {
	h := newHarness(t)
	p := filepath.Join(t.TempDir(), "login.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"token":"t1","pid":"p1","name":"Ferris","is_verified":true}`), 0o600))

	_, err := run(t, "login", "--response", p)
	require.NoError(t, err)

	assert.Equal(t, "t1", get(t, h.ephemeral, session.KeyToken))
	assert.Empty(t, get(t, h.persistent, session.KeyToken))
}

func TestLogin_MissingFields(t *testing.T) {
	h := newHarness(t)

	_, err := run(t, "login", "--token", "t1", "--name", "Ferris")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--pid")
	assert.Empty(t, get(t, h.ephemeral, session.KeyToken))
}

func TestLogout_ClearsBothBackends(t *testing.T) {
	h := newHarness(t)
	h.seed(t, h.persistent, "t1")
	h.seed(t, h.ephemeral, "t1")

	_, err := run(t, "logout")
	require.NoError(t, err)

	for _, st := range []session.Storage{h.persistent, h.ephemeral} {
		for _, k := range []string{session.KeyToken, session.KeyPID, session.KeyName} {
			assert.Empty(t, get(t, st, k))
		}
	}
}

func TestWhoami_RejectedTokenLogsOut(t *testing.T) {
	h := newHarness(t)
	h.seed(t, h.persistent, "expired")

	_, err := run(t, "whoami")
	require.ErrorIs(t, err, session.ErrTokenRejected)
	assert.Equal(t, 3, exitCode(err))
	assert.Empty(t, get(t, h.persistent, session.KeyToken))
}

func TestWhoami_ValidToken(t *testing.T) {
	h := newHarness(t)
	h.seed(t, h.ephemeral, "t1")

	_, err := run(t, "whoami")
	require.NoError(t, err)
	assert.Equal(t, int32(1), h.hits.Load())
	assert.Equal(t, "t1", get(t, h.ephemeral, session.KeyToken))
}

func TestFetch_WithoutSessionSendsNothing(t *testing.T) {
	h := newHarness(t)

	_, err := run(t, "fetch", "/api/notes")
	require.ErrorIs(t, err, session.ErrUnauthenticated)
	assert.Zero(t, h.hits.Load())
}

func TestFetch_SendsBearerToken(t *testing.T) {
	h := newHarness(t)
	h.seed(t, h.persistent, "t1")

	out, err := run(t, "fetch", "-d", "{}", "/api/notes")
	require.NoError(t, err)
	assert.Equal(t, "POST Bearer t1", out)
}

func TestToken_Reveal(t *testing.T) {
	h := newHarness(t)
	h.seed(t, h.ephemeral, "t1")

	out, err := run(t, "token", "--reveal")
	require.NoError(t, err)
	assert.Equal(t, "t1\n", out)
}

func TestConfigSet(t *testing.T) {
	newHarness(t)

	_, err := run(t, "config", "set", "timeout_seconds", "3")
	require.NoError(t, err)
	c, err := config.LoadFile()
	require.NoError(t, err)
	assert.Equal(t, 3, c.TimeoutSeconds)

	_, err = run(t, "config", "set", "api_url", "localhost")
	assert.Equal(t, clierrors.InvalidConfig, clierrors.KindOf(err))

	_, err = run(t, "config", "set", "nope", "1")
	assert.Error(t, err)
}

func TestVersionFlag(t *testing.T) {
	newHarness(t)

	out, err := run(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "rustatl "+Version+"\n", out)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, exitCode(errors.New("boom")))
	assert.Equal(t, 3, exitCode(session.ErrUnauthenticated))
	assert.Equal(t, 3, exitCode(fmt.Errorf("%w: %w", session.ErrTokenRejected, errors.New("401"))))
	assert.Equal(t, 1, exitCode(errors.Join(clierrors.New(clierrors.StorageFailed, "remove"))))
	assert.Equal(t, 2, exitCode(clierrors.New(clierrors.InvalidConfig, "x")))
}

func TestConfig_ShowsPath(t *testing.T) {
	newHarness(t)

	out, err := run(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "config file: ")
	assert.Contains(t, out, filepath.Join("rustatl", "config.json"))
}

func TestVerboseEnablesDebugPrinters(t *testing.T) {
	newHarness(t)
	pterm.DisableDebugMessages()
	t.Cleanup(pterm.DisableDebugMessages)

	_, err := run(t, "config", "--verbose")
	require.NoError(t, err)
	assert.True(t, pterm.PrintDebugMessages)
}

func TestHelpMentionsBackgroundCheck(t *testing.T) {
	for _, c := range []*cobra.Command{tokenCmd, logoutCmd} {
		assert.NotContains(t, c.Long, "not contacted", c.Name())
	}
	assert.Contains(t, tokenCmd.Long, "background check")
}
