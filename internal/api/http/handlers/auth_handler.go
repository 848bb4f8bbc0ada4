package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-orders/internal/api/dto"
	"github.com/spec-kit/service-orders/internal/service"
	apperrors "github.com/spec-kit/service-orders/pkg/util/errorutil"
)

// AuthHandler exposes the login endpoint.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(err)
	}
	identity, secret := req.Credentials()
	if identity == "" {
		return apperrors.NewUnauthorized("identity required")
	}

	result, err := h.auth.Login(c.UserContext(), identity, secret)
	if err != nil {
		return err
	}

	return c.JSON(dto.LoginResponse{
		Token:     result.Token,
		Role:      result.Identity.Role,
		Name:      result.Identity.Name,
		ExpiresAt: result.ExpiresAt,
	})
}
