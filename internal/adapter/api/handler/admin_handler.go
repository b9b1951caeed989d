package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/middleware"
	"storefront/internal/domain/entity"
	"storefront/internal/usecase"
	"storefront/internal/view"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
	"storefront/pkg/response"
)

type AdminHandler struct {
	cache    *usecase.CatalogCache
	admin    *usecase.AdminMutator
	renderer *view.Renderer
}

func NewAdminHandler(cache *usecase.CatalogCache, admin *usecase.AdminMutator, renderer *view.Renderer) *AdminHandler {
	return &AdminHandler{
		cache:    cache,
		admin:    admin,
		renderer: renderer,
	}
}

type updateProductRequest struct {
	Name          *string           `json:"name"`
	Category      *string           `json:"category"`
	Description   *string           `json:"description"`
	Price         *float64          `json:"price" validate:"omitempty,gte=0"`
	OldPrice      *float64          `json:"old_price" validate:"omitempty,gte=0"`
	ClearOldPrice bool              `json:"clear_old_price"`
	Badge         *string           `json:"badge"`
	Images        []entity.ImageRef `json:"images"`
	Colors        []entity.Color    `json:"colors"`
	Sizes         []string          `json:"sizes"`
}

func (req updateProductRequest) patch() entity.ProductPatch {
	patch := entity.ProductPatch{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Price:       req.Price,
		OldPrice:    req.OldPrice,
		ClearOld:    req.ClearOldPrice,
		Badge:       req.Badge,
		Images:      req.Images,
		Colors:      req.Colors,
		Sizes:       req.Sizes,
	}
	// A zero strike-through price means "no discount".
	if patch.OldPrice != nil && *patch.OldPrice <= 0 {
		patch.OldPrice = nil
		patch.ClearOld = true
	}
	return patch
}

type beginImagesRequest struct {
	ProductID string `json:"product_id"`
}

type imageURLRequest struct {
	URL string `json:"url" validate:"required"`
}

type gradientRequest struct {
	Gradient string `json:"gradient" validate:"required"`
}

type imagesResponse struct {
	ProductID string            `json:"product_id,omitempty"`
	Images    []entity.ImageRef `json:"images"`
}

func (h *AdminHandler) ListProducts(c echo.Context) error {
	return response.Success(c, h.renderer.AdminGrid(h.cache.All(), h.cache.Alert()))
}

// CreateProduct falls back to the staged images when the body has none
// and the buffer was started for a new product.
func (h *AdminHandler) CreateProduct(c echo.Context) error {
	var input usecase.ProductInput
	if err := c.Bind(&input); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&input); err != nil {
		return response.Error(c, err)
	}

	buffer := middleware.CurrentSession(c).Images
	if input.Images == nil && buffer.ProductID() == "" {
		input.Images = buffer.Images()
	}

	product, err := h.admin.Create(c.Request().Context(), input)
	if err != nil {
		return response.Error(c, err)
	}

	logger.Info("Product created: id=%s by uid=%s", product.ID, c.Get("uid"))
	return response.Created(c, h.renderer.ProductCard(product))
}

func (h *AdminHandler) UpdateProduct(c echo.Context) error {
	id := c.Param("id")

	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	patch := req.patch()
	buffer := middleware.CurrentSession(c).Images
	if patch.Images == nil && buffer.ProductID() == id {
		patch.Images = buffer.Images()
	}
	if patch.IsEmpty() {
		return response.Error(c, errors.Validation("Nothing to update"))
	}

	product, err := h.admin.Update(c.Request().Context(), id, patch)
	if err != nil {
		return response.Error(c, err)
	}

	logger.Info("Product updated: id=%s by uid=%s", id, c.Get("uid"))
	return response.Success(c, h.renderer.ProductCard(product))
}

func (h *AdminHandler) DeleteProduct(c echo.Context) error {
	id := c.Param("id")

	if err := h.admin.Delete(c.Request().Context(), id); err != nil {
		return response.Error(c, err)
	}

	logger.Info("Product deleted: id=%s by uid=%s", id, c.Get("uid"))
	return c.NoContent(http.StatusNoContent)
}

// BeginImages starts the staging buffer from the product's current images,
// or empty for a new product.
func (h *AdminHandler) BeginImages(c echo.Context) error {
	var req beginImagesRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	var current []entity.ImageRef
	if req.ProductID != "" {
		product, ok := h.cache.Get(req.ProductID)
		if !ok {
			return response.Error(c, errors.NotFound("Product", nil))
		}
		current = product.Images
	}

	buffer := middleware.CurrentSession(c).Images
	images := buffer.Begin(req.ProductID, current)
	return response.Success(c, imagesResponse{ProductID: req.ProductID, Images: images})
}

func (h *AdminHandler) GetImages(c echo.Context) error {
	buffer := middleware.CurrentSession(c).Images
	return response.Success(c, imagesResponse{ProductID: buffer.ProductID(), Images: buffer.Images()})
}

func (h *AdminHandler) AppendImageURL(c echo.Context) error {
	var req imageURLRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	buffer := middleware.CurrentSession(c).Images
	images, err := buffer.AppendURL(c.Request().Context(), req.URL)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, imagesResponse{ProductID: buffer.ProductID(), Images: images})
}

func (h *AdminHandler) AppendGradient(c echo.Context) error {
	var req gradientRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	buffer := middleware.CurrentSession(c).Images
	images, err := buffer.AppendGradient(req.Gradient)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, imagesResponse{ProductID: buffer.ProductID(), Images: images})
}

func (h *AdminHandler) UploadImage(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.Validation("No file uploaded"))
	}
	if file.Size > usecase.MaxUploadBytes {
		return response.Error(c, errors.Validation("Image is too large"))
	}

	src, err := file.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Failed to open uploaded file", err))
	}
	defer src.Close()

	buffer := middleware.CurrentSession(c).Images
	images, err := buffer.Upload(c.Request().Context(), src)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, imagesResponse{ProductID: buffer.ProductID(), Images: images})
}

func (h *AdminHandler) RemoveImage(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return response.Error(c, errors.Validation("Invalid image index"))
	}

	buffer := middleware.CurrentSession(c).Images
	images, err := buffer.RemoveAt(index)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, imagesResponse{ProductID: buffer.ProductID(), Images: images})
}
