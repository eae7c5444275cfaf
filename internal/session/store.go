// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session holds the client-side authentication state of rustatl: the
// signed-in user, the bearer token and whether a verification call is in flight.
//
// A Store is built explicitly with New and passed to whoever needs it. On
// construction it restores a previous session from storage, trusting it
// optimistically while a background call to the backend confirms the token.
// Credentials are written to persistent storage when the user asks to be
// remembered and to session-scoped storage otherwise; logout clears both.
//
// Every state change is delivered to subscribers before the mutating call
// returns, so UIs can render from Subscribe alone.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/pterm/pterm"

	"rustatl/cli/internal/backend"
	clierrors "rustatl/cli/internal/errors"
	"rustatl/cli/internal/logging"
)

// Options configures a Store.
type Options struct {
	// Persistent survives restarts (OS keychain). Optional.
	Persistent Storage
	// Ephemeral lives as long as the user's login session. Optional.
	Ephemeral Storage
	// API verifies tokens and carries authenticated requests. Required.
	API backend.API
	// Logger receives diagnostics. Defaults to a discarding logger.
	Logger *pterm.Logger
}

// Store is the session state holder. It is safe for concurrent use.
type Store struct {
	persistent Storage
	ephemeral  Storage
	api        backend.API
	log        *pterm.Logger

	mu         sync.RWMutex
	state      State
	observers  []observer
	nextID     int
	restoreErr error

	// writeMu serializes Login and logout so a state change and its storage
	// writes are never interleaved with another's.
	writeMu sync.Mutex
	// notifyMu keeps subscriber delivery in the same order as the writes.
	notifyMu sync.Mutex
	restore  sync.WaitGroup
}

type observer struct {
	id int
	fn func(State)
}

// New builds a Store. When at least one storage backend is configured the
// previous session is restored from it; without storage the store always
// starts logged out.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.API == nil {
		return nil, errors.New("session: API is required")
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	s := &Store{
		persistent: opts.Persistent,
		ephemeral:  opts.Ephemeral,
		api:        opts.API,
		log:        log,
	}
	if s.persistent != nil || s.ephemeral != nil {
		s.initializeFromStorage(ctx)
	}
	return s, nil
}

// initializeFromStorage looks for a token in persistent storage, then in
// ephemeral storage, and reads the profile keys from the backend that had it.
// An incomplete record leaves the session logged out.
func (s *Store) initializeFromStorage(ctx context.Context) {
	var (
		src   Storage
		token string
	)
	for _, st := range []Storage{s.persistent, s.ephemeral} {
		if st == nil {
			continue
		}
		if token = s.read(st, KeyToken); token != "" {
			src = st
			break
		}
	}
	if src == nil {
		return
	}

	name := s.read(src, KeyName)
	pid := s.read(src, KeyPID)
	if name == "" || pid == "" {
		s.log.Debug("stored session is incomplete, staying logged out")
		return
	}

	s.update(func(st *State) bool {
		st.User = &User{PID: pid, Name: name}
		st.Token = token
		st.IsAuthenticated = true
		return true
	})
	s.log.Debug("session restored", s.log.Args("pid", pid))

	s.restore.Add(1)
	go func() {
		defer s.restore.Done()
		err := s.VerifyToken(ctx)
		s.mu.Lock()
		s.restoreErr = err
		s.mu.Unlock()
	}()
}

// read returns "" when the key is absent or the backend fails.
func (s *Store) read(st Storage, key string) string {
	v, err := st.Get(key)
	if err != nil {
		s.log.Debug("storage read failed", s.log.Args("key", key, "error", logging.Mask(err.Error())))
		return ""
	}
	return v
}

// Wait blocks until the verification started by a restored session has
// finished and returns its error. It returns nil immediately when nothing
// was restored.
func (s *Store) Wait() error {
	s.restore.Wait()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.restoreErr
}

// Login replaces the session with creds and stores them: in persistent
// storage when remember is set, in ephemeral storage otherwise. The other
// backend is left as it is. The in-memory state is updated even when the
// storage write fails.
func (s *Store) Login(creds Credentials, remember bool) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	verified := creds.Verified
	s.update(func(st *State) bool {
		st.User = &User{PID: creds.PID, Name: creds.Name, Verified: &verified}
		st.Token = creds.Token
		st.IsAuthenticated = true
		return true
	})

	target, kind := s.ephemeral, "ephemeral"
	if remember {
		target, kind = s.persistent, "persistent"
	}
	if target == nil {
		return fmt.Errorf("%s storage: %w", kind, ErrStorageUnavailable)
	}

	for _, kv := range [][2]string{
		{KeyToken, creds.Token},
		{KeyPID, creds.PID},
		{KeyName, creds.Name},
	} {
		if err := target.Set(kv[0], kv[1]); err != nil {
			return clierrors.Wrap(clierrors.StorageFailed, fmt.Sprintf("write %s to %s storage", kv[0], kind), err)
		}
	}
	s.log.Debug("session stored", s.log.Args("storage", kind, "pid", creds.PID))
	return nil
}

// Logout resets the session and removes the stored keys from both backends,
// whichever of them was used. Removal failures are reported after the
// in-memory state has been cleared.
func (s *Store) Logout() error {
	_, err := s.clear("")
	return err
}

// clear logs out. With a non-empty onlyToken it does so only while that token
// is still the current one, reporting whether anything was cleared.
func (s *Store) clear(onlyToken string) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cleared := s.update(func(st *State) bool {
		if onlyToken != "" && st.Token != onlyToken {
			return false
		}
		st.User = nil
		st.Token = ""
		st.IsAuthenticated = false
		return true
	})
	if !cleared {
		return false, nil
	}

	var errs []error
	for _, b := range []struct {
		name string
		st   Storage
	}{
		{"persistent", s.persistent},
		{"ephemeral", s.ephemeral},
	} {
		if b.st == nil {
			continue
		}
		for _, key := range storageKeys {
			if err := b.st.Remove(key); err != nil {
				errs = append(errs, clierrors.Wrap(clierrors.StorageFailed, fmt.Sprintf("remove %s from %s storage", key, b.name), err))
			}
		}
	}
	return true, errors.Join(errs...)
}

// VerifyToken asks the backend who the current token belongs to.
//
// A 2xx answer refreshes the profile. Any other status means the token is no
// longer valid: the session is logged out and ErrTokenRejected is returned.
// When the backend cannot be reached the session is kept as it is and the
// transport error is returned, so users stay signed in while offline.
// Answers for a token that was replaced in the meantime are ignored.
func (s *Store) VerifyToken(ctx context.Context) error {
	token, ok := s.Token()
	if !ok {
		return nil
	}

	s.update(func(st *State) bool {
		st.IsLoading = true
		return true
	})
	defer s.update(func(st *State) bool {
		st.IsLoading = false
		return true
	})

	u, err := s.api.Current(ctx, token)
	switch {
	case err == nil:
		applied := s.update(func(st *State) bool {
			if st.Token != token {
				return false
			}
			st.User = &User{PID: u.PID, Name: u.Name, Email: u.Email}
			st.IsAuthenticated = true
			return true
		})
		if !applied {
			s.log.Debug("discarding verification result for a replaced token")
			return nil
		}
		s.log.Debug("token verified", s.log.Args("pid", u.PID))
		return nil

	case backend.IsRejected(err):
		cleared, lerr := s.clear(token)
		if !cleared {
			s.log.Debug("discarding rejection for a replaced token")
			return nil
		}
		s.log.Warn("token rejected, session cleared", s.log.Args("error", logging.Mask(err.Error())))
		if lerr != nil {
			s.log.Error("failed to clear stored session", s.log.Args("error", lerr.Error()))
		}
		return fmt.Errorf("%w: %w", ErrTokenRejected, err)

	default:
		s.log.Error("failed to verify token", s.log.Args("error", logging.Mask(err.Error())))
		return fmt.Errorf("verify token: %w", err)
	}
}

// FetchWithAuth sends req with an Authorization header carrying the bearer
// token. The caller's request is not modified; its headers are kept, except
// that the injected Authorization replaces any caller value. Without a token
// it fails with ErrUnauthenticated before anything is sent. The response is
// returned as-is.
func (s *Store) FetchWithAuth(req *http.Request) (*http.Response, error) {
	token, ok := s.Token()
	if !ok {
		return nil, ErrUnauthenticated
	}
	out := req.Clone(req.Context())
	if out.Header == nil {
		out.Header = make(http.Header)
	}
	out.Header.Set("Authorization", "Bearer "+token)
	return s.api.Do(out)
}

// IsLoggedIn reports whether the session is authenticated and has a user.
func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.LoggedIn()
}

// Token returns the bearer token and whether one is held.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token, s.state.Token != ""
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers fn to receive a copy of the state after every change.
// Subscribers run synchronously, in registration order, and must not call
// mutating Store methods. The returned function unregisters fn.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers = append(s.observers, observer{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, o := range s.observers {
				if o.id == id {
					s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// update applies fn under the lock and, when fn reports a change, delivers
// the new state to subscribers before returning.
func (s *Store) update(fn func(*State) bool) bool {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if !fn(&s.state) {
		s.mu.Unlock()
		return false
	}
	snap := s.state.clone()
	obs := append([]observer(nil), s.observers...)
	s.mu.Unlock()

	for _, o := range obs {
		o.fn(snap.clone())
	}
	return true
}
