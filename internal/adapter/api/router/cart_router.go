package router

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/handler"
	"storefront/internal/adapter/api/middleware"
)

func SetupCartRouter(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware) {
	cartHandler := handler.GetCartHandler()

	cart := e.Group("/v1/cart")
	cart.Use(sessionMiddleware.Attach)
	cart.GET("", cartHandler.GetCart)
	cart.DELETE("", cartHandler.ClearCart)
	cart.POST("/items", cartHandler.AddItem)
	cart.PATCH("/items/:key", cartHandler.ChangeQuantity)
	cart.DELETE("/items/:key", cartHandler.RemoveItem)
	cart.POST("/checkout", cartHandler.Checkout)
}
