package handler

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/middleware"
	"storefront/internal/usecase"
	"storefront/internal/view"
	"storefront/pkg/response"
	"storefront/pkg/utils"
)

type CatalogHandler struct {
	cache    *usecase.CatalogCache
	renderer *view.Renderer
	pageSize int
}

func NewCatalogHandler(cache *usecase.CatalogCache, renderer *view.Renderer, pageSize int) *CatalogHandler {
	return &CatalogHandler{
		cache:    cache,
		renderer: renderer,
		pageSize: pageSize,
	}
}

// GetCatalog applies whichever of category, sort and page are present to
// the session's grid state, in that order, and renders the result.
func (h *CatalogHandler) GetCatalog(c echo.Context) error {
	session := middleware.CurrentSession(c)
	params := c.QueryParams()

	if params.Has("category") {
		session.View.SetFilter(c.QueryParam("category"))
	}
	if params.Has("sort") {
		if err := session.View.SetSort(c.QueryParam("sort")); err != nil {
			return response.Error(c, err)
		}
	}
	if params.Has("page") {
		session.View.SetPage(utils.GetPageParam(c))
	}

	page := h.cache.Page(session.View.Snapshot(), h.pageSize)
	return response.Success(c, h.renderer.CatalogPage(page))
}

func (h *CatalogHandler) RefreshCatalog(c echo.Context) error {
	if err := h.cache.Hydrate(c.Request().Context()); err != nil {
		return response.Error(c, err)
	}

	session := middleware.CurrentSession(c)
	page := h.cache.Page(session.View.Snapshot(), h.pageSize)
	return response.Success(c, h.renderer.CatalogPage(page))
}
