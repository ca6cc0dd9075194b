package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainauth "github.com/tejinder0007/real-estate-frontend/internal/domain/auth"
	apperrors "github.com/tejinder0007/real-estate-frontend/internal/errors"
	"github.com/tejinder0007/real-estate-frontend/internal/ports"
)

// IdentityLoader loads a previously persisted identity. It returns Anonymous
// when nothing was persisted.
type IdentityLoader func(ctx context.Context) (domainauth.Identity, error)

// ClientSession is the session state of one client. It starts out resolving
// and stays so until Restore finishes; after that it never resolves again.
type ClientSession struct {
	id string

	mu        sync.RWMutex
	identity  domainauth.Identity
	resolving bool
	// generation increments on every Login/Logout so a late restoration
	// cannot overwrite a newer identity.
	generation uint64

	resolved    chan struct{}
	resolveOnce sync.Once
	restoreOnce sync.Once

	lastSeen atomic.Int64
}

// NewClientSession creates a session that is still resolving.
func NewClientSession(id string) *ClientSession {
	s := &ClientSession{
		id:        id,
		resolving: true,
		resolved:  make(chan struct{}),
	}
	s.Touch(time.Now())
	return s
}

// ID returns the opaque session identifier carried by the cookie.
func (s *ClientSession) ID() string { return s.id }

// State returns a snapshot of the session. It never blocks on restoration.
func (s *ClientSession) State() domainauth.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domainauth.SessionState{Identity: s.identity, Resolving: s.resolving}
}

// Resolved is closed once restoration has finished.
func (s *ClientSession) Resolved() <-chan struct{} { return s.resolved }

// Login replaces the identity atomically. A login also ends resolution: the
// client has just proven who it is.
func (s *ClientSession) Login(ident domainauth.Identity) {
	s.mu.Lock()
	s.identity = ident
	s.generation++
	s.mu.Unlock()
	s.markResolved()
}

// Logout resets the identity to Anonymous, dropping the credential.
func (s *ClientSession) Logout() {
	s.mu.Lock()
	s.identity = domainauth.Anonymous()
	s.generation++
	s.mu.Unlock()
	s.markResolved()
}

// Restore runs the initial resolution once. Later calls return immediately.
// Errors leave the client Anonymous; the backend still authorizes every call,
// so restoring never needs a backend round trip.
func (s *ClientSession) Restore(ctx context.Context, load IdentityLoader) error {
	var err error
	s.restoreOnce.Do(func() {
		s.mu.RLock()
		gen := s.generation
		s.mu.RUnlock()

		ident := domainauth.Anonymous()
		var loaded domainauth.Identity
		loaded, err = load(ctx)
		if err == nil {
			ident = loaded
		}

		s.mu.Lock()
		if s.generation == gen {
			s.identity = ident
		}
		s.mu.Unlock()
		s.markResolved()
	})
	return err
}

func (s *ClientSession) markResolved() {
	s.resolveOnce.Do(func() {
		s.mu.Lock()
		s.resolving = false
		s.mu.Unlock()
		close(s.resolved)
	})
}

// Touch records activity for idle eviction.
func (s *ClientSession) Touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

// LastSeen returns when the session was last touched.
func (s *ClientSession) LastSeen() time.Time { return time.Unix(0, s.lastSeen.Load()) }

// SessionRegistryConfig tunes the registry.
type SessionRegistryConfig struct {
	// IdleTTL evicts sessions not touched for this long.
	IdleTTL time.Duration
	// RestoreTimeout bounds one restoration read.
	RestoreTimeout time.Duration
}

// SessionRegistryOptions groups dependencies for SessionRegistry.
type SessionRegistryOptions struct {
	Store     ports.SessionStore
	Config    SessionRegistryConfig
	Telemetry Telemetry
}

// SessionRegistry maps session IDs to live client sessions and restores
// each from durable storage the first time it is seen.
type SessionRegistry struct {
	store     ports.SessionStore
	cfg       SessionRegistryConfig
	telemetry Telemetry
	logger    *zap.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*ClientSession
	restores sync.WaitGroup
}

// NewSessionRegistry constructs a new SessionRegistry.
func NewSessionRegistry(opts SessionRegistryOptions) *SessionRegistry {
	if opts.Store == nil {
		panic("SessionStore is required")
	}
	cfg := opts.Config
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	if cfg.RestoreTimeout <= 0 {
		cfg.RestoreTimeout = 3 * time.Second
	}
	return &SessionRegistry{
		store:     opts.Store,
		cfg:       cfg,
		telemetry: opts.Telemetry,
		logger:    opts.Telemetry.logger(),
		now:       time.Now,
		sessions:  make(map[string]*ClientSession),
	}
}

// Acquire returns the live session for id, creating it and starting its
// restoration in the background when first seen. An empty id gets a fresh one.
func (r *SessionRegistry) Acquire(ctx context.Context, id string) *ClientSession {
	now := r.now()

	r.mu.Lock()
	if s, ok := r.sessions[id]; ok && id != "" {
		r.mu.Unlock()
		s.Touch(now)
		return s
	}
	fresh := id == ""
	if fresh {
		id = uuid.NewString()
	}
	s := NewClientSession(id)
	s.Touch(now)
	r.sessions[id] = s
	live := len(r.sessions)
	r.mu.Unlock()

	r.telemetry.Metrics.SetLiveSessions(live)

	if fresh {
		// nothing can have been persisted under an ID we just minted
		_ = s.Restore(ctx, func(context.Context) (domainauth.Identity, error) {
			return domainauth.Anonymous(), nil
		})
		return s
	}

	base := context.WithoutCancel(ctx)
	r.restores.Add(1)
	go func() {
		defer r.restores.Done()
		restoreCtx, cancel := context.WithTimeout(base, r.cfg.RestoreTimeout)
		defer cancel()
		if err := s.Restore(restoreCtx, r.loader(id)); err != nil {
			r.logger.Warn("session restore failed", zap.String("session_id", id), zap.Error(err))
		}
	}()
	return s
}

func (r *SessionRegistry) loader(id string) IdentityLoader {
	return func(ctx context.Context) (domainauth.Identity, error) {
		stored, err := r.store.Get(ctx, id)
		if err != nil {
			if apperrors.IsNotFound(err) {
				r.telemetry.Metrics.RecordSessionRestore("anonymous")
				return domainauth.Anonymous(), nil
			}
			r.telemetry.Metrics.RecordSessionRestore("error")
			return domainauth.Identity{}, err
		}
		ident, err := stored.Identity()
		if err != nil {
			r.telemetry.Metrics.RecordSessionRestore("error")
			return domainauth.Identity{}, err
		}
		r.telemetry.Metrics.RecordSessionRestore("restored")
		return ident, nil
	}
}

// Start registers a new, already resolved session for an identity that just
// authenticated, under a freshly minted ID.
func (r *SessionRegistry) Start(ident domainauth.Identity) *ClientSession {
	s := NewClientSession(uuid.NewString())
	s.Login(ident)

	r.mu.Lock()
	r.sessions[s.ID()] = s
	live := len(r.sessions)
	r.mu.Unlock()

	r.telemetry.Metrics.SetLiveSessions(live)
	return s
}

// Get returns the live session for id without creating one.
func (r *SessionRegistry) Get(id string) (*ClientSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove forgets a session.
func (r *SessionRegistry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	live := len(r.sessions)
	r.mu.Unlock()
	r.telemetry.Metrics.SetLiveSessions(live)
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle since before now-IdleTTL. Persisted logins are
// untouched and restore on the client's next request.
func (r *SessionRegistry) Sweep(now time.Time) int {
	cutoff := now.Add(-r.cfg.IdleTTL)

	r.mu.Lock()
	evicted := 0
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
	}
	live := len(r.sessions)
	r.mu.Unlock()

	r.telemetry.Metrics.SetLiveSessions(live)
	return evicted
}

// Run sweeps idle sessions until ctx is done.
func (r *SessionRegistry) Run(ctx context.Context) {
	interval := max(r.cfg.IdleTTL/2, time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(r.now()); n > 0 {
				r.logger.Debug("evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}

// Wait blocks until in-flight restorations finish or ctx is done.
func (r *SessionRegistry) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.restores.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
