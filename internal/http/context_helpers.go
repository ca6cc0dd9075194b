package httpx

import (
	"context"

	"github.com/tejinder0007/real-estate-frontend/internal/service"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
type sessionKey struct{}

// SetClientSessionInContext returns a child context that carries the client session.
// If session is nil, the original ctx is returned unchanged.
func SetClientSessionInContext(ctx context.Context, session *service.ClientSession) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// ClientSessionFromContext returns the client session and whether one is present.
func ClientSessionFromContext(ctx context.Context) (*service.ClientSession, bool) {
	if s, ok := ctx.Value(sessionKey{}).(*service.ClientSession); ok && s != nil {
		return s, true
	}
	return nil, false
}
