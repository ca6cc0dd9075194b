package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	domainauth "github.com/tejinder0007/real-estate-frontend/internal/domain/auth"
	apperrors "github.com/tejinder0007/real-estate-frontend/internal/errors"
	"github.com/tejinder0007/real-estate-frontend/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthAPI             = (*MockAuthAPI)(nil)
	_ ports.SessionStore        = (*MemorySessionStore)(nil)
	_ ports.CredentialInspector = FixedExpiry{}
)

// MockAuthAPI simulates the backend auth endpoints with deterministic identities.
// Emails starting with "admin" log in as admins; the password "wrong" is rejected.
type MockAuthAPI struct {
	LoginFunc    func(ctx context.Context, in ports.Credentials) (domainauth.Identity, error)
	RegisterFunc func(ctx context.Context, in ports.Credentials) (domainauth.Identity, error)

	mu    sync.Mutex
	calls int
}

// NewMockAuthAPI creates a MockAuthAPI with default behavior.
func NewMockAuthAPI() *MockAuthAPI { return &MockAuthAPI{} }

// Calls returns how many times Login or Register hit the default behavior.
func (m *MockAuthAPI) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockAuthAPI) Login(ctx context.Context, in ports.Credentials) (domainauth.Identity, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, in)
	}
	return m.identityFor(in)
}

func (m *MockAuthAPI) Register(ctx context.Context, in ports.Credentials) (domainauth.Identity, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, in)
	}
	return m.identityFor(in)
}

func (m *MockAuthAPI) identityFor(in ports.Credentials) (domainauth.Identity, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if in.Password == "wrong" {
		return domainauth.Identity{}, apperrors.Unauthorized("Invalid credentials")
	}
	role := domainauth.RoleUser
	if strings.HasPrefix(in.Email, "admin") {
		role = domainauth.RoleAdmin
	}
	return domainauth.NewIdentity("id-"+in.Email, in.Email, role, "token-"+in.Email)
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session

	// GetDelay, when set, blocks Get to simulate slow durable storage.
	GetDelay time.Duration
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if m.GetDelay > 0 {
		select {
		case <-time.After(m.GetDelay):
		case <-ctx.Done():
			return domainauth.Session{}, ctx.Err()
		}
	}
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ErrNotFound is returned by mocks when an entity is not present.
var ErrNotFound error = apperrors.NotFound("not found")

// FixedExpiry reports the same expiry for every credential. The zero value
// reports nothing.
type FixedExpiry struct {
	At time.Time
}

func (f FixedExpiry) ExpiresAt(string) (time.Time, bool) {
	return f.At, !f.At.IsZero()
}
