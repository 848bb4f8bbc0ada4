package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/service-orders/internal/domain"
	apperrors "github.com/spec-kit/service-orders/pkg/util/errorutil"
)

func newProtectedApp(tm *TokenManager) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var domainErr *apperrors.DomainError
			if errors.As(err, &domainErr) {
				return c.Status(domainErr.HTTPStatus).SendString(domainErr.Code)
			}
			return fiber.DefaultErrorHandler(c, err)
		},
	})
	mw := NewAuthMiddleware(tm)
	app.Get("/me", mw.Handle, func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.SendString(principal.Identity + ":" + string(principal.Role))
	})
	app.Get("/admin", mw.Handle, RequireRole(domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, path, authorization string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	buf := make([]byte, 256)
	n, _ := resp.Body.Read(buf)
	return resp.StatusCode, string(buf[:n])
}

func TestAuthMiddleware_MissingCredential(t *testing.T) {
	app := newProtectedApp(NewTokenManager("secret", 5))

	status, body := doGet(t, app, "/me", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", body)

	status, _ = doGet(t, app, "/me", "Basic dXNlcjpwYXNz")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	app := newProtectedApp(NewTokenManager("secret", 5))

	status, body := doGet(t, app, "/me", "Bearer forged.token.value")
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body)
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	issuer := NewTokenManager("secret", 1)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := issuer.GenerateToken(testIdentity())
	require.NoError(t, err)

	status, _ := doGet(t, newProtectedApp(NewTokenManager("secret", 1)), "/me", "Bearer "+token)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestAuthMiddleware_AttachesPrincipal(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, _, err := tm.GenerateToken(testIdentity())
	require.NoError(t, err)

	status, body := doGet(t, newProtectedApp(tm), "/me", "bearer "+token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "gestor@aviagen.com:manager", body)
}

func TestRequireRole(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	app := newProtectedApp(tm)

	managerToken, _, err := tm.GenerateToken(testIdentity())
	require.NoError(t, err)
	status, body := doGet(t, app, "/admin", "Bearer "+managerToken)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body)

	adminToken, _, err := tm.GenerateToken(domain.Identity{Identity: "admin@aviagen.com", Role: domain.RoleAdmin})
	require.NoError(t, err)
	status, _ = doGet(t, app, "/admin", "Bearer "+adminToken)
	assert.Equal(t, fiber.StatusNoContent, status)
}
