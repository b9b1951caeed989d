package handler

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/middleware"
	"storefront/internal/view"
	"storefront/pkg/response"
)

type DetailHandler struct {
	renderer *view.Renderer
}

func NewDetailHandler(renderer *view.Renderer) *DetailHandler {
	return &DetailHandler{
		renderer: renderer,
	}
}

type selectColorRequest struct {
	Color string `json:"color" validate:"required"`
}

type selectSizeRequest struct {
	Size string `json:"size" validate:"required"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *DetailHandler) OpenDetail(c echo.Context) error {
	session := middleware.CurrentSession(c)

	snapshot, err := session.Detail.Open(c.Request().Context(), c.QueryParam("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, h.renderer.Detail(snapshot))
}

func (h *DetailHandler) SelectColor(c echo.Context) error {
	var req selectColorRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	snapshot, err := middleware.CurrentSession(c).Detail.SelectColor(req.Color)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, h.renderer.Detail(snapshot))
}

func (h *DetailHandler) SelectSize(c echo.Context) error {
	var req selectSizeRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	snapshot, err := middleware.CurrentSession(c).Detail.SelectSize(req.Size)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, h.renderer.Detail(snapshot))
}

// SetQuantity clamps instead of rejecting out-of-range values.
func (h *DetailHandler) SetQuantity(c echo.Context) error {
	var req setQuantityRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	detail := middleware.CurrentSession(c).Detail
	detail.SetQuantity(req.Quantity)

	return response.Success(c, h.renderer.Detail(detail.Snapshot()))
}

func (h *DetailHandler) AddToCart(c echo.Context) error {
	session := middleware.CurrentSession(c)

	if _, err := session.Detail.AddToCart(session.Ledger); err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, h.renderer.Cart(session.Ledger.Lines()))
}
