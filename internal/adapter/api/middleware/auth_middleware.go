package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"storefront/internal/infrastructure/firebase"
	"storefront/pkg/errors"
	"storefront/pkg/response"
)

const identityKey = "identity"

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*firebase.Identity, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Error(c, errors.Unauthorized("Authorization header is required", nil))
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return response.Error(c, errors.Unauthorized("Invalid authorization format", nil))
		}

		identity, err := m.verifier.VerifyToken(c.Request().Context(), parts[1])
		if err != nil {
			return response.Error(c, errors.Unauthorized("Invalid or expired token", err))
		}

		c.Set("uid", identity.UID)
		c.Set(identityKey, identity)

		return next(c)
	}
}

func CurrentIdentity(c echo.Context) *firebase.Identity {
	identity, _ := c.Get(identityKey).(*firebase.Identity)
	return identity
}
