package router

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/handler"
	"storefront/internal/adapter/api/middleware"
)

func SetupCatalogRouter(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware) {
	catalogHandler := handler.GetCatalogHandler()
	detailHandler := handler.GetDetailHandler()

	catalog := e.Group("/v1/catalog")
	catalog.Use(sessionMiddleware.Attach)
	catalog.GET("", catalogHandler.GetCatalog)
	catalog.POST("/refresh", catalogHandler.RefreshCatalog)

	detail := e.Group("/v1/detail")
	detail.Use(sessionMiddleware.Attach)
	detail.GET("", detailHandler.OpenDetail)
	detail.POST("/color", detailHandler.SelectColor)
	detail.POST("/size", detailHandler.SelectSize)
	detail.POST("/quantity", detailHandler.SetQuantity)
	detail.POST("/cart", detailHandler.AddToCart)
}
