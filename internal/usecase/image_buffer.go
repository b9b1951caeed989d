package usecase

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
)

const (
	gradientMarker = "gradient("
	uploadFolder   = "products"
	// MaxUploadBytes bounds a single admin image upload.
	MaxUploadBytes = 10 << 20
)

// ImageBuffer stages the image list of the product an admin is editing.
// Nothing is written to the product until it is saved, and the buffer
// never shrinks to empty once it has an image.
type ImageBuffer struct {
	prober    service.ImageProber
	files     service.FileUploadService
	optimizer service.ImageOptimizer

	mu        sync.Mutex
	productID string
	images    []entity.ImageRef
}

func NewImageBuffer(prober service.ImageProber, files service.FileUploadService, optimizer service.ImageOptimizer) *ImageBuffer {
	return &ImageBuffer{
		prober:    prober,
		files:     files,
		optimizer: optimizer,
	}
}

// Begin starts editing productID with its current images. An empty
// productID begins a new product with an empty buffer.
func (b *ImageBuffer) Begin(productID string, current []entity.ImageRef) []entity.ImageRef {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.productID = productID
	b.images = append([]entity.ImageRef{}, current...)
	return b.copyImages()
}

func (b *ImageBuffer) ProductID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.productID
}

// AppendURL commits url only after it has actually loaded as an image.
func (b *ImageBuffer) AppendURL(ctx context.Context, rawURL string) ([]entity.ImageRef, error) {
	ref := entity.ParseImageRef(rawURL)
	if ref.IsZero() || !ref.IsURL() {
		return b.Images(), errors.Validation("Enter an image URL")
	}

	if err := b.prober.Probe(ctx, ref.Value); err != nil {
		logger.Warn("Image URL rejected: url=%s error=%v", ref.Value, err)
		return b.Images(), errors.Validation("The image could not be loaded from this URL")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.images = append(b.images, ref)
	return b.copyImages(), nil
}

func (b *ImageBuffer) AppendGradient(descriptor string) ([]entity.ImageRef, error) {
	descriptor = strings.TrimSpace(descriptor)
	if !strings.Contains(strings.ToLower(descriptor), gradientMarker) {
		return b.Images(), errors.Validation("Enter a CSS gradient, e.g. linear-gradient(135deg, #111, #333)")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.images = append(b.images, entity.GradientImage(descriptor))
	return b.copyImages(), nil
}

// Upload optimizes the image read from r, stores it and appends its
// public URL.
func (b *ImageBuffer) Upload(ctx context.Context, r io.Reader) ([]entity.ImageRef, error) {
	if b.files == nil || b.optimizer == nil {
		return b.Images(), errors.Validation("Image uploads are not configured")
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return b.Images(), errors.TransientIO("Upload could not be read", err)
	}
	if len(data) > MaxUploadBytes {
		return b.Images(), errors.Validation("Image is larger than 10 MB")
	}

	optimized, contentType, err := b.optimizer.Optimize(data)
	if err != nil {
		logger.Warn("Upload rejected: %v", err)
		return b.Images(), errors.Validation("File is not a supported image")
	}

	fileURL, err := b.files.UploadFile(ctx, bytes.NewReader(optimized), contentType, uploadFolder)
	if err != nil {
		return b.Images(), errors.TransientIO("Image could not be stored", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.images = append(b.images, entity.URLImage(fileURL))
	return b.copyImages(), nil
}

// RemoveAt refuses to remove the last remaining image.
func (b *ImageBuffer) RemoveAt(index int) ([]entity.ImageRef, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if index < 0 || index >= len(b.images) {
		return b.copyImages(), errors.Validation("No image at that position")
	}
	if len(b.images) == 1 {
		return b.copyImages(), errors.Validation("A product needs at least one image")
	}

	b.images = append(b.images[:index], b.images[index+1:]...)
	return b.copyImages(), nil
}

func (b *ImageBuffer) Images() []entity.ImageRef {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.copyImages()
}

func (b *ImageBuffer) copyImages() []entity.ImageRef {
	return append([]entity.ImageRef{}, b.images...)
}
