package state

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// AuthGateway authenticates credentials against the storefront API.
type AuthGateway interface {
	Login(ctx context.Context, username, password string) (token string, err error)
}

// CredentialStore is the durable key-value slot that outlives the process.
// It holds the session token and the username it was issued for.
type CredentialStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Credential store keys.
const (
	CredKeyToken    = "token"
	CredKeyUsername = "username"
)

// RestoredUsername is the placeholder identity used when a stored token has
// no username recorded next to it (credential databases written by older
// builds).
const RestoredUsername = "restored_user"

// loginFailedReason is the fixed user-facing login failure message. The
// underlying cause is logged, never surfaced.
const loginFailedReason = "Login failed. Please check your credentials."

// Session holds authentication state. Invariant: Authenticated is true iff
// the token is non-empty.
type Session struct {
	mu    sync.Mutex
	gw    AuthGateway
	creds CredentialStore
	log   *slog.Logger

	authenticated bool
	token         string
	username      string
	status        Status
	err           string
}

// NewSession creates the session store.
func NewSession(gw AuthGateway, creds CredentialStore, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{gw: gw, creds: creds, log: log}
}

// SessionView is a point-in-time copy of the session state.
type SessionView struct {
	Authenticated bool
	Token         string
	Username      string
	Status        Status
	Err           string
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionView{
		Authenticated: s.authenticated,
		Token:         s.token,
		Username:      s.username,
		Status:        s.status,
		Err:           s.err,
	}
}

// Login authenticates against the gateway. On success the token is kept in
// memory and persisted durably. A 2xx answer without a token is a distinct
// outcome: the operation fulfills but the session stays unauthenticated.
func (s *Session) Login(ctx context.Context, username, password string) error {
	s.apply(sessEvent{op: opLogin, phase: phasePending})
	token, err := s.gw.Login(ctx, username, password)
	if err != nil {
		s.log.Warn("login rejected", "username", username, "err", err)
		s.apply(sessEvent{op: opLogin, phase: phaseRejected, reason: loginFailedReason})
		return errors.New(loginFailedReason)
	}
	s.apply(sessEvent{op: opLogin, phase: phaseFulfilled, token: token, username: username})
	if token == "" {
		s.log.Warn("login fulfilled without a token", "username", username)
		return nil
	}
	if err := s.creds.Set(ctx, CredKeyToken, token); err != nil {
		s.log.Warn("persist token", "err", err)
	}
	if err := s.creds.Set(ctx, CredKeyUsername, username); err != nil {
		s.log.Warn("persist username", "err", err)
	}
	return nil
}

// Logout unconditionally fulfills: the in-memory session is dropped even
// when the durable slot cannot be erased.
func (s *Session) Logout(ctx context.Context) error {
	s.apply(sessEvent{op: opLogout, phase: phasePending})
	if err := s.creds.Remove(ctx, CredKeyToken); err != nil {
		s.log.Warn("erase token", "err", err)
	}
	if err := s.creds.Remove(ctx, CredKeyUsername); err != nil {
		s.log.Warn("erase username", "err", err)
	}
	s.apply(sessEvent{op: opLogout, phase: phaseFulfilled})
	return nil
}

// Restore re-authenticates from the durable store. A missing token fulfills
// with nothing: the session stays unauthenticated and no error is recorded.
func (s *Session) Restore(ctx context.Context) error {
	s.apply(sessEvent{op: opRestore, phase: phasePending})
	token, ok, err := s.creds.Get(ctx, CredKeyToken)
	if err != nil {
		s.apply(sessEvent{op: opRestore, phase: phaseRejected, reason: "Failed to restore session"})
		return err
	}
	if !ok || token == "" {
		s.apply(sessEvent{op: opRestore, phase: phaseFulfilled})
		return nil
	}
	username, ok, err := s.creds.Get(ctx, CredKeyUsername)
	if err != nil || !ok || username == "" {
		username = RestoredUsername
	}
	s.apply(sessEvent{op: opRestore, phase: phaseFulfilled, token: token, username: username})
	return nil
}

// Invalidate is the forced-logout path: the gateway calls it when the server
// rejects the current token mid-session. It erases the durable token and
// drops the in-memory session without touching status or error; the
// operation that hit the rejection reports its own failure.
func (s *Session) Invalidate() {
	if err := s.creds.Remove(context.Background(), CredKeyToken); err != nil {
		s.log.Warn("erase token", "err", err)
	}
	s.mu.Lock()
	s.authenticated = false
	s.token = ""
	s.username = ""
	s.mu.Unlock()
	s.log.Info("session invalidated by server")
}

// apply is the only mutation path for the three session operations.
func (s *Session) apply(ev sessEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch ev.phase {
	case phasePending:
		s.status = StatusLoading
		s.err = ""
	case phaseRejected:
		s.status = StatusFailed
		s.err = ev.reason
	case phaseFulfilled:
		s.status = StatusSucceeded
		s.err = ""
		switch ev.op {
		case opLogin, opRestore:
			if ev.token != "" {
				s.authenticated = true
				s.token = ev.token
				s.username = ev.username
			}
		case opLogout:
			s.authenticated = false
			s.token = ""
			s.username = ""
		}
	}
	s.log.Debug("session transition", "status", s.status.String(), "authenticated", s.authenticated)
}
