package handler

import (
	"storefront/internal/domain/repository"
	ws "storefront/internal/infrastructure/websocket"
	"storefront/internal/usecase"
	"storefront/internal/view"
)

var (
	healthHandler    *HealthHandler
	catalogHandler   *CatalogHandler
	detailHandler    *DetailHandler
	cartHandler      *CartHandler
	adminHandler     *AdminHandler
	websocketHandler *WebSocketHandler
)

func Setup(
	cache *usecase.CatalogCache,
	products repository.ProductRepository,
	admin *usecase.AdminMutator,
	checkout *usecase.CheckoutMessage,
	readiness *usecase.Readiness,
	wsManager *ws.Manager,
	renderer *view.Renderer,
	pageSize int,
) {
	healthHandler = NewHealthHandler(cache, readiness, wsManager)
	catalogHandler = NewCatalogHandler(cache, renderer, pageSize)
	detailHandler = NewDetailHandler(renderer)
	cartHandler = NewCartHandler(cache, products, checkout, renderer)
	adminHandler = NewAdminHandler(cache, admin, renderer)
	websocketHandler = NewWebSocketHandler(wsManager)
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func GetCatalogHandler() *CatalogHandler {
	return catalogHandler
}

func GetDetailHandler() *DetailHandler {
	return detailHandler
}

func GetCartHandler() *CartHandler {
	return cartHandler
}

func GetAdminHandler() *AdminHandler {
	return adminHandler
}

func GetWebSocketHandler() *WebSocketHandler {
	return websocketHandler
}
