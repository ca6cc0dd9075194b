package ports

// Package ports defines interfaces (hexagonal ports) for the portal.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/tejinder0007/real-estate-frontend/internal/domain/auth"
)

// Credentials are the email/password pair submitted on the login or register screen.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthAPI exchanges credentials for a backend-issued identity.
type AuthAPI interface {
	// Login returns the identity, including its bearer credential, for an existing account.
	Login(ctx context.Context, in Credentials) (domainauth.Identity, error)
	// Register creates an account and returns its identity.
	Register(ctx context.Context, in Credentials) (domainauth.Identity, error)
}

// SessionStore persists and retrieves logged-in sessions so they survive restarts.
// Get reports a missing or expired session with an error for which
// errors.IsNotFound holds.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// CredentialInspector reads metadata from an opaque bearer credential without
// trusting it. The boolean is false when nothing could be read.
type CredentialInspector interface {
	ExpiresAt(credential string) (time.Time, bool)
}
