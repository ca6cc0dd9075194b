package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/tejinder0007/real-estate-frontend/internal/domain/auth"
	"github.com/tejinder0007/real-estate-frontend/internal/ports"
)

func TestMockAuthAPI_Defaults(t *testing.T) {
	api := NewMockAuthAPI()
	ctx := context.Background()

	user, err := api.Login(ctx, ports.Credentials{Email: "asha@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, user.IsUser())
	assert.Equal(t, "token-asha@example.com", user.Credential())

	admin, err := api.Register(ctx, ports.Credentials{Email: "admin@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	_, err = api.Login(ctx, ports.Credentials{Email: "asha@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, 3, api.Calls())
}

func TestMockAuthAPI_CustomFunc(t *testing.T) {
	api := &MockAuthAPI{
		LoginFunc: func(context.Context, ports.Credentials) (domainauth.Identity, error) {
			return domainauth.Anonymous(), nil
		},
	}
	id, err := api.Login(context.Background(), ports.Credentials{})
	require.NoError(t, err)
	assert.True(t, id.IsAnonymous())
	assert.Zero(t, api.Calls())
}

func TestMemorySessionStore(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	require.Error(t, store.Save(ctx, domainauth.Session{}))

	sess := domainauth.Session{ID: "s1", UserID: "u1", Role: domainauth.RoleUser, Credential: "tok"}
	require.NoError(t, store.Save(ctx, sess))
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(ctx, "s1"))
	require.NoError(t, store.Delete(ctx, ""))
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySessionStore_GetDelayHonorsContext(t *testing.T) {
	store := NewMemorySessionStore()
	store.GetDelay = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFixedExpiry(t *testing.T) {
	_, ok := FixedExpiry{}.ExpiresAt("tok")
	assert.False(t, ok)

	at := time.Now().Add(time.Hour)
	got, ok := FixedExpiry{At: at}.ExpiresAt("tok")
	assert.True(t, ok)
	assert.Equal(t, at, got)
}
