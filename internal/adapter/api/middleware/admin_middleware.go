package middleware

import (
	"github.com/labstack/echo/v4"

	"storefront/pkg/errors"
	"storefront/pkg/logger"
	"storefront/pkg/response"
)

type AdminMiddleware struct {
	claim string
}

func NewAdminMiddleware(claim string) *AdminMiddleware {
	return &AdminMiddleware{
		claim: claim,
	}
}

// AdminOnly requires the configured custom claim on the verified token.
func (m *AdminMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity := CurrentIdentity(c)
		if identity == nil {
			return response.Error(c, errors.Unauthorized("Authentication required", nil))
		}

		if !identity.HasClaim(m.claim) {
			logger.Warn("Admin access denied: uid=%s path=%s", identity.UID, c.Path())
			return response.Error(c, errors.Forbidden("Admin privileges required", nil))
		}

		return next(c)
	}
}
