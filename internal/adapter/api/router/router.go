package router

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/middleware"
)

func Setup(
	e *echo.Echo,
	sessionMiddleware *middleware.SessionMiddleware,
	authMiddleware *middleware.AuthMiddleware,
	adminMiddleware *middleware.AdminMiddleware,
) {
	SetupHealthRouter(e)
	SetupCatalogRouter(e, sessionMiddleware)
	SetupCartRouter(e, sessionMiddleware)
	SetupWebSocketRouter(e, sessionMiddleware)
	SetupAdminRouter(e, sessionMiddleware, authMiddleware, adminMiddleware)
}
