package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/service-orders/internal/auth"
	"github.com/spec-kit/service-orders/internal/config"
	"github.com/spec-kit/service-orders/internal/domain"
	apperrors "github.com/spec-kit/service-orders/pkg/util/errorutil"
)

// LoginResult is returned on successful login.
type LoginResult struct {
	Identity  domain.Identity
	Token     string
	ExpiresAt time.Time
}

// AuthService resolves identities from the static table and issues tokens.
type AuthService struct {
	identities map[string]domain.Identity
	tokenMgr   *auth.TokenManager
	logger     *zap.Logger
}

// NewAuthService hashes the configured identity secrets and prepares the token manager.
// Without a configured signing secret a random per-process one is generated.
func NewAuthService(cfg config.AuthConfig, logger *zap.Logger) (*AuthService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	secret := cfg.JWTSecret
	if secret == "" {
		generated, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("generate signing secret: %w", err)
		}
		secret = generated
		logger.Warn("AUTH_JWT_SECRET not set; using a random secret, tokens will not survive restarts")
	}

	identities := make(map[string]domain.Identity, len(cfg.Identities))
	for _, entry := range cfg.Identities {
		role, err := domain.ParseRole(entry.Role)
		if err != nil {
			return nil, fmt.Errorf("identity %q: %w", entry.Identity, err)
		}
		identity := domain.Identity{
			Identity: entry.Identity,
			Name:     entry.Name,
			Role:     role,
		}
		if identity.Name == "" {
			identity.Name = entry.Identity
		}
		if entry.Secret != "" {
			hash, err := auth.HashPassword(entry.Secret, cfg.BcryptCost)
			if err != nil {
				return nil, fmt.Errorf("identity %q: %w", entry.Identity, err)
			}
			identity.SecretHash = hash
		}
		identities[identityKey(entry.Identity)] = identity
	}
	if len(identities) == 0 {
		logger.Warn("AUTH_IDENTITIES is empty; every login will be rejected")
	}

	return &AuthService{
		identities: identities,
		tokenMgr:   auth.NewTokenManager(secret, cfg.AccessTokenTTLMinutes),
		logger:     logger,
	}, nil
}

// Login looks up the identity and returns a signed token carrying its role.
func (s *AuthService) Login(_ context.Context, identity, secret string) (*LoginResult, error) {
	entry, ok := s.identities[identityKey(identity)]
	if !ok {
		s.logger.Debug("login rejected: unknown identity")
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if entry.RequiresSecret() {
		if err := auth.ComparePassword(entry.SecretHash, secret); err != nil {
			s.logger.Debug("login rejected: secret mismatch", zap.String("identity", entry.Identity))
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
	}

	token, exp, err := s.tokenMgr.GenerateToken(entry)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Identity: entry, Token: token, ExpiresAt: exp}, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func identityKey(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
