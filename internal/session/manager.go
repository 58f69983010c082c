// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nvakumar/ssfrontend/internal/logging"
	"github.com/nvakumar/ssfrontend/internal/model"
	"github.com/nvakumar/ssfrontend/internal/security"
	"github.com/nvakumar/ssfrontend/internal/storage"
)

var (
	// ErrNoSession is returned by Token when nobody is signed in.
	ErrNoSession = errors.New("not logged in")
	// ErrSessionExpired is returned by Token once the bearer token's exp has
	// passed.
	ErrSessionExpired = errors.New("session expired, please log in again")
	// ErrMissingCredentials is returned by Login for an empty email or
	// password.
	ErrMissingCredentials = errors.New("email and password are required")
)

// Authenticator exchanges credentials for a user and bearer token.
// api.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (model.User, string, error)
}

// Listener is notified after the session changes. active is false after a
// logout or when a hydrate found nothing.
type Listener func(s model.Session, active bool)

// =============================================================================
// MANAGER
// =============================================================================

// Manager holds the current session and keeps it in sync with a Store.
type Manager struct {
	store storage.Store
	log   *zap.SugaredLogger
	now   func() time.Time

	mu      sync.RWMutex
	current model.Session
	active  bool

	subsMu    sync.Mutex
	subs      map[int]Listener
	nextSubID int
}

// NewManager returns a Manager with no session. Call Hydrate to restore one.
func NewManager(store storage.Store, log *zap.SugaredLogger) *Manager {
	return &Manager{
		store: store,
		log:   logging.OrNop(log),
		now:   time.Now,
		subs:  make(map[int]Listener),
	}
}

// Hydrate loads the persisted session. A missing, corrupt or expired record
// leaves the manager logged out; corrupt and expired records are also
// removed from the store.
func (m *Manager) Hydrate(ctx context.Context) error {
	sess, ok, err := m.load(ctx)
	if err != nil {
		return err
	}
	m.set(sess, ok)
	return nil
}

func (m *Manager) load(ctx context.Context) (model.Session, bool, error) {
	token, err := m.store.Get(ctx, storage.KeyToken)
	if errors.Is(err, storage.ErrNotFound) {
		return model.Session{}, false, nil
	}
	if err != nil {
		return model.Session{}, false, fmt.Errorf("failed to read token: %w", err)
	}

	rawUser, err := m.store.Get(ctx, storage.KeyUser)
	if errors.Is(err, storage.ErrNotFound) {
		m.log.Warnw("token without user record, discarding")
		return model.Session{}, false, m.clearStore(ctx)
	}
	if err != nil {
		return model.Session{}, false, fmt.Errorf("failed to read user: %w", err)
	}

	var sess model.Session
	if err := json.Unmarshal([]byte(rawUser), &sess); err != nil || sess.UserID == "" {
		m.log.Warnw("corrupt user record, discarding", "error", err)
		return model.Session{}, false, m.clearStore(ctx)
	}
	sess.Token = token

	if security.TokenExpired(token, m.now()) {
		m.log.Infow("stored session expired", "user", sess.UserID)
		return model.Session{}, false, m.clearStore(ctx)
	}
	return sess, true, nil
}

// Login authenticates with auth, persists the result and makes it current.
// On failure the previous state is left untouched.
func (m *Manager) Login(ctx context.Context, auth Authenticator, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrMissingCredentials
	}

	user, token, err := auth.Login(ctx, email, password)
	if err != nil {
		m.log.Infow("login failed", "email", email, "error", err)
		return err
	}
	if user.ID == "" || token == "" {
		return errors.New("login response missing user or token")
	}

	sess := model.SessionFromUser(user, token)
	if err := m.persist(ctx, sess); err != nil {
		return err
	}
	m.log.Infow("logged in", "user", sess.UserID)
	m.set(sess, true)
	return nil
}

func (m *Manager) persist(ctx context.Context, sess model.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := m.store.Set(ctx, storage.KeyUser, string(raw)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if err := m.store.Set(ctx, storage.KeyToken, sess.Token); err != nil {
		_ = m.store.Delete(ctx, storage.KeyUser)
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Logout clears the store and the in-memory session. Memory is cleared even
// when the store fails.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.clearStore(ctx)
	if s, ok := m.Current(); ok {
		m.log.Infow("logged out", "user", s.UserID)
	}
	m.set(model.Session{}, false)
	return err
}

func (m *Manager) clearStore(ctx context.Context) error {
	if err := storage.Clear(ctx, m.store); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Current returns the session and whether one is active.
func (m *Manager) Current() (model.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, m.active
}

// UserID returns the signed-in user's id, or "".
func (m *Manager) UserID() string {
	s, ok := m.Current()
	if !ok {
		return ""
	}
	return s.UserID
}

// Token returns the bearer token for API calls.
func (m *Manager) Token() (string, error) {
	s, ok := m.Current()
	if !ok {
		return "", ErrNoSession
	}
	if security.TokenExpired(s.Token, m.now()) {
		return "", ErrSessionExpired
	}
	return s.Token, nil
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// Subscribe registers fn for session changes and returns a function that
// removes it.
func (m *Manager) Subscribe(fn Listener) func() {
	m.subsMu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subs[id] = fn
	m.subsMu.Unlock()

	return func() {
		m.subsMu.Lock()
		delete(m.subs, id)
		m.subsMu.Unlock()
	}
}

// set swaps the state and notifies listeners outside the lock when anything
// changed.
func (m *Manager) set(sess model.Session, active bool) {
	m.mu.Lock()
	changed := m.active != active || m.current != sess
	m.current, m.active = sess, active
	m.mu.Unlock()

	if !changed {
		return
	}

	m.subsMu.Lock()
	listeners := make([]Listener, 0, len(m.subs))
	for _, fn := range m.subs {
		listeners = append(listeners, fn)
	}
	m.subsMu.Unlock()

	for _, fn := range listeners {
		fn(sess, active)
	}
}
