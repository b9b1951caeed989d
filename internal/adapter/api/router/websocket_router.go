package router

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/handler"
	"storefront/internal/adapter/api/middleware"
)

func SetupWebSocketRouter(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware) {
	wsHandler := handler.GetWebSocketHandler()
	e.GET("/v1/ws", wsHandler.HandleWebSocket, sessionMiddleware.Attach)
}
