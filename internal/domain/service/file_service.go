package service

import (
	"context"
	"io"
)

type FileUploadService interface {
	UploadFile(ctx context.Context, file io.Reader, fileType, folder string) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
	// OwnsURL reports whether fileURL points into the service's bucket.
	OwnsURL(fileURL string) bool
	Close() error
}

// ImageProber verifies that a URL actually loads as an image.
type ImageProber interface {
	Probe(ctx context.Context, url string) error
}

// ImageOptimizer normalizes an uploaded image before it is stored and
// returns the encoded bytes with their content type.
type ImageOptimizer interface {
	Optimize(data []byte) ([]byte, string, error)
}
