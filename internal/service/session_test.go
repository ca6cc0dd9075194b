package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/tejinder0007/real-estate-frontend/internal/domain/auth"
	mockauth "github.com/tejinder0007/real-estate-frontend/internal/mocks/auth"
)

func waitResolved(t *testing.T, s *ClientSession) {
	t.Helper()
	select {
	case <-s.Resolved():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not resolve")
	}
}

func TestClientSession_RestoreResolvesOnce(t *testing.T) {
	s := NewClientSession("s1")
	assert.True(t, s.State().Resolving)

	user := mustIdentity(t, "u1", domainauth.RoleUser)
	require.NoError(t, s.Restore(context.Background(), func(context.Context) (domainauth.Identity, error) {
		return user, nil
	}))
	waitResolved(t, s)

	state := s.State()
	assert.False(t, state.Resolving)
	assert.True(t, state.Identity.IsUser())

	// a second restoration is a no-op
	calls := 0
	require.NoError(t, s.Restore(context.Background(), func(context.Context) (domainauth.Identity, error) {
		calls++
		return domainauth.Anonymous(), nil
	}))
	assert.Zero(t, calls)
	assert.True(t, s.State().Identity.IsUser())
}

func TestClientSession_RestoreErrorLeavesAnonymous(t *testing.T) {
	s := NewClientSession("s1")
	err := s.Restore(context.Background(), func(context.Context) (domainauth.Identity, error) {
		return domainauth.Identity{}, errors.New("corrupt record")
	})
	require.Error(t, err)

	state := s.State()
	assert.False(t, state.Resolving)
	assert.True(t, state.Identity.IsAnonymous())
}

func TestClientSession_LateRestoreDoesNotOverrideLogin(t *testing.T) {
	s := NewClientSession("s1")
	admin := mustIdentity(t, "a1", domainauth.RoleAdmin)

	release := make(chan struct{})
	restored := make(chan error, 1)
	go func() {
		restored <- s.Restore(context.Background(), func(context.Context) (domainauth.Identity, error) {
			<-release
			return domainauth.Anonymous(), nil
		})
	}()

	s.Login(admin)
	waitResolved(t, s)
	close(release)
	require.NoError(t, <-restored)

	assert.True(t, s.State().Identity.IsAdmin())
}

func TestClientSession_Logout(t *testing.T) {
	s := NewClientSession("s1")
	s.Login(mustIdentity(t, "u1", domainauth.RoleUser))
	s.Logout()

	state := s.State()
	assert.False(t, state.Resolving)
	assert.True(t, state.Identity.IsAnonymous())
	assert.Empty(t, state.Identity.Credential())
}

func TestSessionRegistry_AcquireRestoresFromStore(t *testing.T) {
	store := mockauth.NewMemorySessionStore()
	user := mustIdentity(t, "u1", domainauth.RoleUser)
	require.NoError(t, store.Save(context.Background(),
		domainauth.NewSession("s1", user, time.Now().Add(time.Hour))))

	reg := NewSessionRegistry(SessionRegistryOptions{Store: store})
	s := reg.Acquire(context.Background(), "s1")
	waitResolved(t, s)

	assert.Equal(t, "s1", s.ID())
	assert.True(t, s.State().Identity.IsUser())
	assert.Same(t, s, reg.Acquire(context.Background(), "s1"))
	assert.Equal(t, 1, reg.Len())
}

func TestSessionRegistry_UnknownIDResolvesAnonymous(t *testing.T) {
	reg := NewSessionRegistry(SessionRegistryOptions{Store: mockauth.NewMemorySessionStore()})
	s := reg.Acquire(context.Background(), "missing")
	waitResolved(t, s)
	assert.True(t, s.State().Identity.IsAnonymous())
}

func TestSessionRegistry_FreshIDResolvesImmediately(t *testing.T) {
	store := mockauth.NewMemorySessionStore()
	store.GetDelay = time.Hour
	reg := NewSessionRegistry(SessionRegistryOptions{Store: store})

	s := reg.Acquire(context.Background(), "")
	require.NotEmpty(t, s.ID())
	state := s.State()
	assert.False(t, state.Resolving)
	assert.True(t, state.Identity.IsAnonymous())
}

func TestSessionRegistry_SlowStoreStaysResolving(t *testing.T) {
	store := mockauth.NewMemorySessionStore()
	store.GetDelay = 200 * time.Millisecond
	reg := NewSessionRegistry(SessionRegistryOptions{Store: store})

	s := reg.Acquire(context.Background(), "s1")
	assert.True(t, s.State().Resolving)

	require.NoError(t, reg.Wait(context.Background()))
	assert.False(t, s.State().Resolving)
}

func TestSessionRegistry_RestoreTimeout(t *testing.T) {
	store := mockauth.NewMemorySessionStore()
	store.GetDelay = time.Hour
	reg := NewSessionRegistry(SessionRegistryOptions{
		Store:  store,
		Config: SessionRegistryConfig{RestoreTimeout: 50 * time.Millisecond},
	})

	s := reg.Acquire(context.Background(), "s1")
	waitResolved(t, s)
	assert.True(t, s.State().Identity.IsAnonymous())
}

func TestSessionRegistry_RestoreSurvivesRequestCancel(t *testing.T) {
	store := mockauth.NewMemorySessionStore()
	store.GetDelay = 50 * time.Millisecond
	user := mustIdentity(t, "u1", domainauth.RoleUser)
	require.NoError(t, store.Save(context.Background(),
		domainauth.NewSession("s1", user, time.Now().Add(time.Hour))))
	reg := NewSessionRegistry(SessionRegistryOptions{Store: store})

	ctx, cancel := context.WithCancel(context.Background())
	s := reg.Acquire(ctx, "s1")
	cancel()

	waitResolved(t, s)
	assert.True(t, s.State().Identity.IsUser())
}

func TestSessionRegistry_StartAndSweep(t *testing.T) {
	reg := NewSessionRegistry(SessionRegistryOptions{
		Store:  mockauth.NewMemorySessionStore(),
		Config: SessionRegistryConfig{IdleTTL: time.Minute},
	})

	s := reg.Start(mustIdentity(t, "u1", domainauth.RoleUser))
	assert.False(t, s.State().Resolving)
	got, ok := reg.Get(s.ID())
	require.True(t, ok)
	assert.Same(t, s, got)

	assert.Zero(t, reg.Sweep(time.Now()))
	assert.Equal(t, 1, reg.Sweep(time.Now().Add(2*time.Minute)))
	_, ok = reg.Get(s.ID())
	assert.False(t, ok)
}

func TestNewSessionRegistry_PanicsWithoutStore(t *testing.T) {
	assert.Panics(t, func() { NewSessionRegistry(SessionRegistryOptions{}) })
}
