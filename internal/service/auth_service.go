package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-triage/internal/auth"
	"github.com/spec-kit/helpdesk-triage/internal/config"
	"github.com/spec-kit/helpdesk-triage/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-triage/pkg/util/errorutil"
)

// ErrAdminNotConfigured is returned by NewAuthService when neither a hash nor a password is set.
var ErrAdminNotConfigured = errors.New("admin password not configured")

// AuthService handles admin login and logout.
type AuthService struct {
	passwordHash string
	tokens       *auth.TokenManager
	revocations  auth.RevocationStore
	limiter      auth.LoginLimiter
	logger       *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Tokens      *auth.TokenManager
	Revocations auth.RevocationStore
	Limiter     auth.LoginLimiter
	Logger      *zap.Logger
}

// NewAuthService builds the service. ADMIN_PASSWORD_HASH wins; otherwise ADMIN_PASSWORD is
// hashed once at startup. With neither set every login fails.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) (*AuthService, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	hash := cfg.AdminPasswordHash
	if hash == "" && cfg.AdminPassword != "" {
		derived, err := auth.HashPassword(cfg.AdminPassword, cfg.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		hash = derived
	}
	if hash == "" {
		logger.Warn("admin login disabled", zap.Error(ErrAdminNotConfigured))
	}

	return &AuthService{
		passwordHash: hash,
		tokens:       deps.Tokens,
		revocations:  deps.Revocations,
		limiter:      deps.Limiter,
		logger:       logger,
	}, nil
}

// Login checks the admin password and issues a token. remoteAddr keys the failure throttle.
func (s *AuthService) Login(ctx context.Context, password, remoteAddr string) (string, domain.Token, error) {
	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, remoteAddr)
		if err != nil {
			s.logger.Warn("login throttle lookup failed", zap.Error(err))
		} else if !allowed {
			s.logger.Warn("admin login throttled", zap.String("remote_addr", remoteAddr))
			return "", domain.Token{}, apperrors.NewTooManyRequests("too many failed login attempts", nil)
		}
	}

	if s.passwordHash == "" || password == "" || auth.ComparePassword(s.passwordHash, password) != nil {
		s.logger.Warn("failed admin login attempt", zap.String("remote_addr", remoteAddr))
		if s.limiter != nil {
			if err := s.limiter.RecordFailure(ctx, remoteAddr); err != nil {
				s.logger.Warn("record login failure", zap.Error(err))
			}
		}
		return "", domain.Token{}, apperrors.NewUnauthorized("invalid password")
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, remoteAddr); err != nil {
			s.logger.Warn("reset login failures", zap.Error(err))
		}
	}

	raw, token, err := s.tokens.GenerateToken(domain.SubjectTypeAdmin)
	if err != nil {
		return "", domain.Token{}, fmt.Errorf("issue token: %w", err)
	}
	s.logger.Info("admin logged in", zap.String("remote_addr", remoteAddr), zap.String("token_id", token.ID))
	return raw, token, nil
}

// Logout revokes the token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, token domain.Token) error {
	if s.revocations == nil {
		return nil
	}
	if err := s.revocations.Revoke(ctx, token.ID, token.ExpiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.logger.Info("admin logged out", zap.String("token_id", token.ID))
	return nil
}
