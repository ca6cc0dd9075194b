package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	domainauth "github.com/tejinder0007/real-estate-frontend/internal/domain/auth"
	apperrors "github.com/tejinder0007/real-estate-frontend/internal/errors"
	"github.com/tejinder0007/real-estate-frontend/internal/ports"
)

// SessionPersistence groups what AuthService needs to persist logins.
type SessionPersistence struct {
	Store     ports.SessionStore
	Inspector ports.CredentialInspector // Optional: reads credential expiry
	// TTL bounds a login whose credential expiry cannot be read.
	TTL time.Duration
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Backend     ports.AuthAPI
	Registry    *SessionRegistry
	Persistence SessionPersistence
	Logger      *zap.Logger
}

// AuthService exchanges credentials with the backend and binds the resulting
// identity to a client session.
type AuthService struct {
	backend  ports.AuthAPI
	registry *SessionRegistry
	persist  SessionPersistence
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.Backend == nil {
		panic("AuthAPI is required")
	}
	if opts.Registry == nil {
		panic("SessionRegistry is required")
	}
	if opts.Persistence.Store == nil {
		panic("SessionStore is required")
	}
	if opts.Persistence.TTL <= 0 {
		opts.Persistence.TTL = 24 * time.Hour
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		backend:  opts.Backend,
		registry: opts.Registry,
		persist:  opts.Persistence,
		logger:   logger,
		now:      time.Now,
	}
}

// Login authenticates against the backend and returns the new session. The
// previous session, if any, is discarded so a session ID never changes owner.
func (s *AuthService) Login(ctx context.Context, previous *ClientSession, in ports.Credentials) (*ClientSession, error) {
	return s.authenticate(ctx, previous, in, s.backend.Login)
}

// Register creates an account and logs it in.
func (s *AuthService) Register(ctx context.Context, previous *ClientSession, in ports.Credentials) (*ClientSession, error) {
	return s.authenticate(ctx, previous, in, s.backend.Register)
}

type authCall func(ctx context.Context, in ports.Credentials) (domainauth.Identity, error)

func (s *AuthService) authenticate(
	ctx context.Context,
	previous *ClientSession,
	in ports.Credentials,
	call authCall,
) (*ClientSession, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		return nil, apperrors.Validation("Email and password are required.")
	}

	ident, err := call(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if ident.IsAnonymous() {
		return nil, apperrors.Unauthorized("Authentication failed")
	}

	sess := s.registry.Start(ident)
	record := domainauth.NewSession(sess.ID(), ident, s.expiry(ident.Credential()))
	if err := s.persist.Store.Save(ctx, record); err != nil {
		// the login still holds for this process; it just will not survive a restart
		s.logger.Warn("persist session failed",
			zap.String("session_id", sess.ID()),
			zap.String("user_id", ident.UserID()),
			zap.Error(err))
	}

	if previous != nil {
		s.discard(ctx, previous)
	}

	s.logger.Info("user logged in",
		zap.String("user_id", ident.UserID()),
		zap.String("role", string(ident.Role())))
	return sess, nil
}

// Logout resets the session to Anonymous and deletes its persisted login.
func (s *AuthService) Logout(ctx context.Context, sess *ClientSession) error {
	if sess == nil {
		return nil
	}
	userID := sess.State().Identity.UserID()
	sess.Logout()
	s.registry.Remove(sess.ID())
	if err := s.persist.Store.Delete(ctx, sess.ID()); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if userID != "" {
		s.logger.Info("user logged out", zap.String("user_id", userID))
	}
	return nil
}

func (s *AuthService) discard(ctx context.Context, sess *ClientSession) {
	sess.Logout()
	s.registry.Remove(sess.ID())
	if err := s.persist.Store.Delete(ctx, sess.ID()); err != nil {
		s.logger.Warn("delete replaced session failed", zap.String("session_id", sess.ID()), zap.Error(err))
	}
}

func (s *AuthService) expiry(credential string) time.Time {
	now := s.now()
	if s.persist.Inspector != nil {
		if exp, ok := s.persist.Inspector.ExpiresAt(credential); ok && exp.After(now) {
			return exp
		}
	}
	return now.Add(s.persist.TTL)
}
