package handler

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/middleware"
	"storefront/internal/domain/repository"
	"storefront/internal/usecase"
	"storefront/internal/view"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
	"storefront/pkg/response"
)

type CartHandler struct {
	cache    *usecase.CatalogCache
	products repository.ProductRepository
	checkout *usecase.CheckoutMessage
	renderer *view.Renderer
}

func NewCartHandler(
	cache *usecase.CatalogCache,
	products repository.ProductRepository,
	checkout *usecase.CheckoutMessage,
	renderer *view.Renderer,
) *CartHandler {
	return &CartHandler{
		cache:    cache,
		products: products,
		checkout: checkout,
		renderer: renderer,
	}
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Size      string `json:"size" validate:"required"`
	Color     string `json:"color" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1,max=10"`
}

type changeQuantityRequest struct {
	Delta int `json:"delta"`
}

func (h *CartHandler) GetCart(c echo.Context) error {
	session := middleware.CurrentSession(c)
	return response.Success(c, h.renderer.Cart(session.Ledger.Lines()))
}

// AddItem adds from the grid, where no detail page has loaded variants;
// they are fetched here so the price override still applies.
func (h *CartHandler) AddItem(c echo.Context) error {
	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, ok := h.cache.Get(req.ProductID)
	if !ok {
		return response.Error(c, errors.NotFound("Product", nil))
	}

	variants, err := h.products.ListVariants(c.Request().Context(), product.ID)
	if err != nil {
		logger.Warn("Variants of %s unavailable, adding at list price: %v", product.ID, err)
		variants = nil
	}

	session := middleware.CurrentSession(c)
	if _, err := session.Ledger.AddOrIncrement(product, req.Size, req.Color, req.Quantity, variants...); err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, h.renderer.Cart(session.Ledger.Lines()))
}

func (h *CartHandler) ChangeQuantity(c echo.Context) error {
	var req changeQuantityRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	session := middleware.CurrentSession(c)
	session.Ledger.ChangeQuantity(c.Param("key"), req.Delta)

	return response.Success(c, h.renderer.Cart(session.Ledger.Lines()))
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	session := middleware.CurrentSession(c)
	session.Ledger.Remove(c.Param("key"))

	return response.Success(c, h.renderer.Cart(session.Ledger.Lines()))
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	session := middleware.CurrentSession(c)
	session.Ledger.Clear()

	return response.Success(c, h.renderer.Cart(session.Ledger.Lines()))
}

func (h *CartHandler) Checkout(c echo.Context) error {
	var input usecase.CheckoutInput
	if err := c.Bind(&input); err != nil {
		return response.Error(c, err)
	}

	// Validated by the checkout itself, with shopper-facing messages.
	session := middleware.CurrentSession(c)
	order, err := h.checkout.Checkout(session.Ledger, input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, order)
}
