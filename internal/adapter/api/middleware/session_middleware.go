package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"storefront/internal/usecase"
)

const (
	SessionCookie = "sf_session"
	sessionKey    = "session"
	sessionMaxAge = 30 * 24 * time.Hour
)

type SessionMiddleware struct {
	registry *usecase.SessionRegistry
	secure   bool
}

func NewSessionMiddleware(registry *usecase.SessionRegistry, secure bool) *SessionMiddleware {
	return &SessionMiddleware{
		registry: registry,
		secure:   secure,
	}
}

// Attach resolves the visitor's session from the cookie, issuing a new
// one when the cookie is missing, forged or expired server side.
func (m *SessionMiddleware) Attach(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var id string
		if cookie, err := c.Cookie(SessionCookie); err == nil {
			id = cookie.Value
		}

		session, _ := m.registry.Acquire(c.Request().Context(), id)
		if session.ID != id {
			c.SetCookie(&http.Cookie{
				Name:     SessionCookie,
				Value:    session.ID,
				Path:     "/",
				MaxAge:   int(sessionMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   m.secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		c.Set(sessionKey, session)
		return next(c)
	}
}

// CurrentSession is only valid behind Attach.
func CurrentSession(c echo.Context) *usecase.Session {
	session, _ := c.Get(sessionKey).(*usecase.Session)
	return session
}
