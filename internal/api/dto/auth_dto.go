package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/service-orders/internal/domain"
)

// LoginRequest payload. Email and password are accepted from older clients.
type LoginRequest struct {
	Identity string `json:"identity"`
	Secret   string `json:"secret"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Credentials resolves the identity/secret pair, preferring the canonical keys.
func (r LoginRequest) Credentials() (string, string) {
	identity := strings.TrimSpace(r.Identity)
	if identity == "" {
		identity = strings.TrimSpace(r.Email)
	}
	secret := r.Secret
	if secret == "" {
		secret = r.Password
	}
	return identity, secret
}

// LoginResponse standard response for the login endpoint.
type LoginResponse struct {
	Token     string      `json:"token"`
	Role      domain.Role `json:"role"`
	Name      string      `json:"name"`
	ExpiresAt time.Time   `json:"expiresAt"`
}
