// Package admin authenticates site administrators.
package admin

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/fitcoach/backend/internal/infrastructure/auth"
	"github.com/fitcoach/backend/internal/infrastructure/config"
	"github.com/fitcoach/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ErrInvalidCredentials is returned for a wrong username or password
var ErrInvalidCredentials = shared.NewDomainError(shared.CodeUnauthorized, "Invalid username or password")

// dummyHash keeps the bcrypt cost paid when the username is wrong
const dummyHash = "$2a$12$C6UzMDM.H6dfI/f/IKcEeO2gkvxpNnbNxeCwFXNO4ODS8jK2Plxbm"

// LoginRequest is the admin login input
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResult carries the issued bearer token
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Service logs admins in and out
type Service struct {
	username     string
	passwordHash string
	tokens       *auth.JWTService
	revoked      auth.RevocationList
	logger       *zap.Logger
}

// NewService creates the admin service. revoked may be nil, which disables logout.
func NewService(cfg config.AdminConfig, tokens *auth.JWTService, revoked auth.RevocationList, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		username:     cfg.Username,
		passwordHash: cfg.PasswordHash,
		tokens:       tokens,
		revoked:      revoked,
		logger:       log,
	}
}

// Login checks credentials against the configured admin account
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	log := logger.Or(ctx, s.logger)

	if s.username == "" || s.passwordHash == "" {
		log.Warn("Admin login attempted but no admin account is configured")
		return nil, ErrInvalidCredentials
	}

	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(req.Username)), []byte(s.username)) == 1
	hash := s.passwordHash
	if !userOK {
		hash = dummyHash
	}
	passOK := auth.VerifyPassword(hash, req.Password)
	if !userOK || !passOK {
		log.Warn("Admin login failed", zap.String("username", req.Username))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(s.username)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	log.Info("Admin logged in", zap.String("username", s.username))
	return &LoginResult{Token: token.Value, ExpiresAt: token.ExpiresAt}, nil
}

// Authenticate validates a bearer token and checks it was not revoked
func (s *Service) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	if s.revoked == nil {
		return claims, nil
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, auth.ErrTokenRevoked
	}
	return claims, nil
}

// Logout revokes the token for the rest of its lifetime
func (s *Service) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return errors.New("logout: missing claims")
	}
	if s.revoked == nil {
		return nil
	}
	ttl := s.tokens.RemainingLifetime(claims)
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	logger.Or(ctx, s.logger).Info("Admin logged out", zap.String("username", claims.Subject))
	return nil
}
