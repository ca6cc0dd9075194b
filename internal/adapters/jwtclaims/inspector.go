// Package jwtclaims reads claims from backend-issued bearer tokens.
package jwtclaims

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tejinder0007/real-estate-frontend/internal/ports"
)

var _ ports.CredentialInspector = Inspector{}

// Inspector reads the exp claim of a JWT without verifying its signature.
// The portal never holds the backend's signing key; the backend verifies
// the token on every call. The expiry only bounds how long we keep a login.
type Inspector struct {
	parser *jwt.Parser
}

// NewInspector creates an Inspector.
func NewInspector() Inspector {
	return Inspector{parser: jwt.NewParser()}
}

// ExpiresAt implements ports.CredentialInspector.
func (i Inspector) ExpiresAt(credential string) (time.Time, bool) {
	if credential == "" {
		return time.Time{}, false
	}
	p := i.parser
	if p == nil {
		p = jwt.NewParser()
	}

	var claims jwt.RegisteredClaims
	if _, _, err := p.ParseUnverified(credential, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
