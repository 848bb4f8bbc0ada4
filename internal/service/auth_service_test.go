package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/service-orders/internal/config"
	"github.com/spec-kit/service-orders/internal/domain"
	apperrors "github.com/spec-kit/service-orders/pkg/util/errorutil"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	svc, err := NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 15,
		BcryptCost:            bcrypt.MinCost,
		Identities: []config.IdentityEntry{
			{Identity: "admin@aviagen.com", Role: "admin", Name: "Diretoria", Secret: "123"},
			{Identity: "tecnico@aviagen.com", Role: "technician", Name: "Técnico João", Secret: "123"},
			{Identity: "kiosk", Role: "manager"},
		},
	}, nil)
	require.NoError(t, err)
	return svc
}

func TestAuthService_LoginKnownIdentity(t *testing.T) {
	svc := newTestAuthService(t)

	result, err := svc.Login(context.Background(), " Admin@Aviagen.com ", "123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, result.Identity.Role)
	assert.Equal(t, "Diretoria", result.Identity.Name)
	assert.NotEmpty(t, result.Token)

	claims, err := svc.TokenManager().ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, "admin@aviagen.com", claims.Subject)
	assert.WithinDuration(t, result.ExpiresAt, claims.ExpiresAt.Time, time.Second)
}

func TestAuthService_LoginWithoutSecretWhenNoneConfigured(t *testing.T) {
	svc := newTestAuthService(t)

	result, err := svc.Login(context.Background(), "kiosk", "")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, result.Identity.Role)
	assert.Equal(t, "kiosk", result.Identity.Name)
}

func TestAuthService_LoginRejected(t *testing.T) {
	svc := newTestAuthService(t)

	cases := map[string][2]string{
		"unknown identity": {"ghost@aviagen.com", "123"},
		"wrong secret":     {"tecnico@aviagen.com", "321"},
		"missing secret":   {"tecnico@aviagen.com", ""},
	}
	for name, creds := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), creds[0], creds[1])
			var domainErr *apperrors.DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, http.StatusUnauthorized, domainErr.HTTPStatus)
		})
	}
}

func TestNewAuthService_RejectsUnknownRole(t *testing.T) {
	_, err := NewAuthService(config.AuthConfig{
		JWTSecret:  "s",
		BcryptCost: bcrypt.MinCost,
		Identities: []config.IdentityEntry{{Identity: "root", Role: "superuser"}},
	}, nil)
	assert.ErrorContains(t, err, "superuser")
}

func TestNewAuthService_GeneratesSecretWhenMissing(t *testing.T) {
	first, err := NewAuthService(config.AuthConfig{
		Identities: []config.IdentityEntry{{Identity: "kiosk", Role: "manager"}},
	}, nil)
	require.NoError(t, err)
	second, err := NewAuthService(config.AuthConfig{}, nil)
	require.NoError(t, err)

	result, err := first.Login(context.Background(), "kiosk", "")
	require.NoError(t, err)

	_, err = first.TokenManager().ParseToken(result.Token)
	assert.NoError(t, err)
	_, err = second.TokenManager().ParseToken(result.Token)
	assert.Error(t, err)
}
