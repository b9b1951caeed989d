package imageprobe

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"storefront/internal/domain/service"
)

// MaxImageBytes bounds how much of a remote image is read.
const MaxImageBytes = 10 << 20

// HTTPProber loads an image URL the way a browser would and fails unless
// the body decodes as an image.
type HTTPProber struct {
	client *http.Client
}

var _ service.ImageProber = (*HTTPProber)(nil)

func NewHTTPProber(timeout time.Duration) *HTTPProber {
	return &HTTPProber{
		client: &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProber) Probe(ctx context.Context, rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)

	if strings.HasPrefix(strings.ToLower(rawURL), "data:") {
		data, err := decodeDataURL(rawURL)
		if err != nil {
			return err
		}
		return CheckImage(data)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("not an absolute http(s) url: %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fetch image: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes))
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	return CheckImage(data)
}

// CheckImage sniffs data and, for formats the standard decoders know,
// decodes the header too.
func CheckImage(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty image body")
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return fmt.Errorf("content is %s, not an image", mtype.String())
	}

	switch {
	case mtype.Is("image/jpeg"), mtype.Is("image/png"), mtype.Is("image/gif"):
		if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
			return fmt.Errorf("decode %s: %w", mtype.String(), err)
		}
	}
	return nil
}

func decodeDataURL(raw string) ([]byte, error) {
	header, payload, ok := strings.Cut(raw, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data url")
	}
	if !strings.HasSuffix(strings.ToLower(header), ";base64") {
		decoded, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("malformed data url: %w", err)
		}
		return []byte(decoded), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("malformed data url: %w", err)
	}
	return data, nil
}
