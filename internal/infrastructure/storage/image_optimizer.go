package storage

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"

	"storefront/internal/domain/service"
	"storefront/pkg/logger"
)

const (
	// DefaultMaxDimension is the longest edge of a stored product image.
	DefaultMaxDimension = 1200
	DefaultJPEGQuality  = 82
)

// JPEGOptimizer re-encodes uploads as JPEG, honouring EXIF orientation
// and shrinking anything larger than MaxDimension.
type JPEGOptimizer struct {
	MaxDimension int
	Quality      int
}

var _ service.ImageOptimizer = JPEGOptimizer{}

func NewJPEGOptimizer() JPEGOptimizer {
	return JPEGOptimizer{MaxDimension: DefaultMaxDimension, Quality: DefaultJPEGQuality}
}

func (o JPEGOptimizer) Optimize(data []byte) ([]byte, string, error) {
	mtype := mimetype.Detect(data)
	if !mtype.Is("image/jpeg") && !mtype.Is("image/png") && !mtype.Is("image/gif") {
		return nil, "", fmt.Errorf("unsupported image type %s", mtype.String())
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if o.MaxDimension > 0 && (bounds.Dx() > o.MaxDimension || bounds.Dy() > o.MaxDimension) {
		img = imaging.Fit(img, o.MaxDimension, o.MaxDimension, imaging.Lanczos)
		logger.Debug("Resized upload %dx%d -> %dx%d", bounds.Dx(), bounds.Dy(), img.Bounds().Dx(), img.Bounds().Dy())
	}

	quality := o.Quality
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, "", fmt.Errorf("failed to encode to JPEG: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}
