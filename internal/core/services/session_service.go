package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"retail-console/internal/adapters/persistence/repositories"
	"retail-console/internal/core/domain"
	"retail-console/internal/pkg/metrics"
)

// SessionState is the lifecycle state of the operator session
type SessionState int

const (
	StateUninitialized SessionState = iota
	StateInitializing
	StateAuthenticated
	StateAnonymous
)

func (s SessionState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "uninitialized"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s SessionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is the session state at one point in time.
// User is nil unless State is StateAuthenticated.
type Snapshot struct {
	State SessionState        `json:"state"`
	User  *domain.CurrentUser `json:"user"`
}

// Authenticated reports whether the snapshot carries a resolved operator
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}

type listener struct {
	id uint64
	fn func(Snapshot)
}

// SessionManager owns the process-wide operator session
type SessionManager struct {
	tokens      repositories.TokenStore
	resolver    Resolver
	credentials CredentialsAPI

	mu        sync.Mutex
	state     SessionState
	user      *domain.CurrentUser
	initDone  chan struct{}
	listeners []listener
	nextID    uint64
}

// NewSessionManager creates a new session manager
func NewSessionManager(tokens repositories.TokenStore, resolver Resolver, credentials CredentialsAPI) *SessionManager {
	return &SessionManager{
		tokens:      tokens,
		resolver:    resolver,
		credentials: credentials,
	}
}

// Snapshot returns the current state
func (m *SessionManager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{State: m.state, User: m.user}
}

// Subscribe registers fn to be called after every transition.
// fn runs on the goroutine that caused the transition and must not block.
func (m *SessionManager) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.listeners = append(m.listeners, listener{id: id, fn: fn})
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, l := range m.listeners {
			if l.id == id {
				m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

// Initialize resolves the session from the stored token. Only the first call
// resolves; concurrent callers wait for that resolution and share its result.
func (m *SessionManager) Initialize(ctx context.Context) Snapshot {
	m.mu.Lock()
	if m.state != StateUninitialized {
		done := m.initDone
		m.mu.Unlock()
		if done != nil {
			select {
			case <-done:
			case <-ctx.Done():
			}
		}
		return m.Snapshot()
	}

	done := make(chan struct{})
	m.initDone = done
	snap, changed := m.setLocked(StateInitializing, nil)
	m.mu.Unlock()
	m.emit(snap, changed)

	// Session state is process-wide; a caller going away must not abort it.
	user := m.resolver.Resolve(context.WithoutCancel(ctx))
	if user != nil {
		m.transitionFrom(StateInitializing, StateAuthenticated, user)
	} else {
		m.transitionFrom(StateInitializing, StateAnonymous, nil)
	}
	close(done)

	snap = m.Snapshot()
	log.Printf("✅ Session initialized [%s]", snap.State)
	return snap
}

// Login stores tokens and resolves the operator they belong to. If the
// profile cannot be resolved the tokens are cleared again and the session
// stays anonymous.
func (m *SessionManager) Login(ctx context.Context, tokens domain.TokenPair) error {
	if err := m.tokens.Save(ctx, tokens); err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}

	user := m.resolver.Resolve(context.WithoutCancel(ctx))
	if user == nil {
		if err := m.tokens.Clear(context.WithoutCancel(ctx)); err != nil {
			log.Printf("❌ Failed to clear tokens after login: %v", err)
		}
		m.set(StateAnonymous, nil)
		return domain.ErrAuthenticationRequired
	}

	m.set(StateAuthenticated, user)
	log.Printf("✅ Operator logged in: %s (%s)", user.Name, user.Role)
	return nil
}

// SignIn exchanges credentials for tokens and logs in with them
func (m *SessionManager) SignIn(ctx context.Context, phoneNumber, password string) error {
	tokens, err := m.credentials.Credentials(ctx, phoneNumber, password)
	if err != nil {
		return err
	}
	return m.Login(ctx, tokens)
}

// Logout clears the tokens and drops to anonymous. No network call is made.
func (m *SessionManager) Logout(ctx context.Context) error {
	err := m.tokens.Clear(ctx)
	if err != nil {
		err = fmt.Errorf("failed to clear tokens: %w", err)
	}
	m.set(StateAnonymous, nil)
	log.Println("✅ Operator logged out")
	return err
}

// HandleAuthFailure is called when the session cannot be refreshed
func (m *SessionManager) HandleAuthFailure() {
	if err := m.Logout(context.Background()); err != nil {
		log.Printf("❌ %v", err)
	}
}

// RefreshUser re-resolves the operator, e.g. after a profile edit.
// The token store is left as is; the API client clears it when the session
// is unrecoverable. A failed resolution with the token still stored keeps
// the current session.
func (m *SessionManager) RefreshUser(ctx context.Context) Snapshot {
	ctx = context.WithoutCancel(ctx)
	user := m.resolver.Resolve(ctx)
	switch {
	case user != nil:
		m.set(StateAuthenticated, user)
	case m.hasAccessToken(ctx):
		log.Println("⚠️ Could not refresh operator profile, keeping current session")
	default:
		m.set(StateAnonymous, nil)
	}
	return m.Snapshot()
}

func (m *SessionManager) hasAccessToken(ctx context.Context) bool {
	_, ok := m.tokens.Access(ctx)
	return ok
}

func (m *SessionManager) set(state SessionState, user *domain.CurrentUser) {
	m.mu.Lock()
	snap, changed := m.setLocked(state, user)
	m.mu.Unlock()
	m.emit(snap, changed)
}

// transitionFrom applies the transition only if the session is still in from.
// A login or logout that raced ahead wins.
func (m *SessionManager) transitionFrom(from, to SessionState, user *domain.CurrentUser) {
	m.mu.Lock()
	if m.state != from {
		m.mu.Unlock()
		return
	}
	snap, changed := m.setLocked(to, user)
	m.mu.Unlock()
	m.emit(snap, changed)
}

func (m *SessionManager) setLocked(state SessionState, user *domain.CurrentUser) (Snapshot, bool) {
	if m.state == state && m.user == user {
		return Snapshot{State: state, User: user}, false
	}
	m.state = state
	m.user = user
	metrics.SessionTransitions.WithLabelValues(state.String()).Inc()
	return Snapshot{State: state, User: user}, true
}

func (m *SessionManager) emit(snap Snapshot, changed bool) {
	if !changed {
		return
	}
	m.mu.Lock()
	listeners := append([]listener(nil), m.listeners...)
	m.mu.Unlock()

	for _, l := range listeners {
		l.fn(snap)
	}
}
