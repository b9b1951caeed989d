package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	ws "storefront/internal/infrastructure/websocket"
	"storefront/internal/usecase"
)

type HealthHandler struct {
	cache     *usecase.CatalogCache
	readiness *usecase.Readiness
	wsManager *ws.Manager
}

func NewHealthHandler(cache *usecase.CatalogCache, readiness *usecase.Readiness, wsManager *ws.Manager) *HealthHandler {
	return &HealthHandler{
		cache:     cache,
		readiness: readiness,
		wsManager: wsManager,
	}
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "Server is running",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// CheckReady reports whether the remote store answered and the catalog
// is loaded. It never waits for the probe.
func (h *HealthHandler) CheckReady(c echo.Context) error {
	store := "pending"
	if h.readiness.Resolved() {
		store = "ok"
		if err := h.readiness.Wait(c.Request().Context()); err != nil {
			store = "unreachable"
		}
	}

	status := http.StatusOK
	if store != "ok" || !h.cache.Loaded() {
		status = http.StatusServiceUnavailable
	}

	body := map[string]interface{}{
		"store":          store,
		"catalog_loaded": h.cache.Loaded(),
	}
	if h.wsManager != nil {
		body["open_views"] = h.wsManager.Connected("")
	}
	return c.JSON(status, body)
}
