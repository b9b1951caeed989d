package router

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/handler"
	"storefront/internal/adapter/api/middleware"
)

func SetupAdminRouter(
	e *echo.Echo,
	sessionMiddleware *middleware.SessionMiddleware,
	authMiddleware *middleware.AuthMiddleware,
	adminMiddleware *middleware.AdminMiddleware,
) {
	adminHandler := handler.GetAdminHandler()

	admin := e.Group("/v1/admin")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(adminMiddleware.AdminOnly)
	admin.Use(sessionMiddleware.Attach)

	products := admin.Group("/products")
	products.GET("", adminHandler.ListProducts)
	products.POST("", adminHandler.CreateProduct)
	products.PUT("/:id", adminHandler.UpdateProduct)
	products.DELETE("/:id", adminHandler.DeleteProduct)

	images := admin.Group("/images")
	images.GET("", adminHandler.GetImages)
	images.POST("/begin", adminHandler.BeginImages)
	images.POST("/url", adminHandler.AppendImageURL)
	images.POST("/gradient", adminHandler.AppendGradient)
	images.POST("/upload", adminHandler.UploadImage)
	images.DELETE("/:index", adminHandler.RemoveImage)
}
