package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"errors"
	"time"
)

// Role represents an application's authorization role as issued by the backend.
// Keep string form for easy persistence.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole validates a backend-issued role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), nil
	default:
		return "", errors.New("unknown role: " + s)
	}
}

// Kind enumerates the closed set of identity variants.
type Kind int

const (
	KindAnonymous Kind = iota
	KindUser
	KindAdmin
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindAdmin:
		return "admin"
	default:
		return "anonymous"
	}
}

// Identity is who the current client is. The zero value is Anonymous.
// Fields are unexported so an Identity can only be built through Anonymous or
// NewIdentity; role and credential never change after construction.
type Identity struct {
	kind       Kind
	userID     string
	email      string
	credential string
}

// Anonymous returns the identity of a client that has not logged in.
func Anonymous() Identity { return Identity{} }

// NewIdentity builds an authenticated identity from backend-issued fields.
func NewIdentity(userID, email string, role Role, credential string) (Identity, error) {
	if userID == "" {
		return Identity{}, errors.New("user id is required")
	}
	if credential == "" {
		return Identity{}, errors.New("credential is required")
	}
	var kind Kind
	switch role {
	case RoleUser:
		kind = KindUser
	case RoleAdmin:
		kind = KindAdmin
	default:
		return Identity{}, errors.New("unknown role: " + string(role))
	}
	return Identity{kind: kind, userID: userID, email: email, credential: credential}, nil
}

func (i Identity) Kind() Kind          { return i.kind }
func (i Identity) UserID() string      { return i.userID }
func (i Identity) Email() string       { return i.email }
func (i Identity) Credential() string  { return i.credential }
func (i Identity) IsAnonymous() bool   { return i.kind == KindAnonymous }
func (i Identity) IsAdmin() bool       { return i.kind == KindAdmin }
func (i Identity) IsUser() bool        { return i.kind == KindUser }
func (i Identity) Authenticated() bool { return i.kind != KindAnonymous }

// Role returns the backend role, or "" for Anonymous.
func (i Identity) Role() Role {
	switch i.kind {
	case KindUser:
		return RoleUser
	case KindAdmin:
		return RoleAdmin
	default:
		return ""
	}
}

// SessionState is the snapshot consumers read before making any access decision.
// While Resolving is true the Identity must be treated as unknown.
type SessionState struct {
	Identity  Identity
	Resolving bool
}

// Session is the server-side record we persist for a logged-in client.
// ID is the opaque identifier carried by the session cookie.
type Session struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	Credential string    `json:"credential"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Identity rebuilds the identity asserted by a stored session.
func (s Session) Identity() (Identity, error) {
	return NewIdentity(s.UserID, s.Email, s.Role, s.Credential)
}

// NewSession captures an authenticated identity for persistence.
func NewSession(id string, ident Identity, expiresAt time.Time) Session {
	return Session{
		ID:         id,
		UserID:     ident.UserID(),
		Email:      ident.Email(),
		Role:       ident.Role(),
		Credential: ident.Credential(),
		ExpiresAt:  expiresAt,
	}
}
