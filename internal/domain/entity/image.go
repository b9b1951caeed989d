package entity

import (
	"encoding/json"
	"strings"
)

type ImageKind string

const (
	ImageURL      ImageKind = "url"
	ImageGradient ImageKind = "gradient"
)

// ImageRef is either a fetchable image URL or a CSS gradient descriptor
// used as a placeholder swatch. The kind is decided once, at ingestion.
type ImageRef struct {
	Kind  ImageKind `json:"kind"`
	Value string    `json:"value"`
}

var urlPrefixes = []string{"http://", "https://", "data:", "/", "./"}

func ParseImageRef(raw string) ImageRef {
	value := strings.TrimSpace(raw)
	lower := strings.ToLower(value)
	for _, prefix := range urlPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return ImageRef{Kind: ImageURL, Value: value}
		}
	}
	return ImageRef{Kind: ImageGradient, Value: value}
}

func URLImage(url string) ImageRef {
	return ImageRef{Kind: ImageURL, Value: url}
}

func GradientImage(descriptor string) ImageRef {
	return ImageRef{Kind: ImageGradient, Value: descriptor}
}

func (r ImageRef) IsURL() bool {
	return r.Kind == ImageURL
}

func (r ImageRef) IsZero() bool {
	return r.Value == ""
}

// UnmarshalJSON accepts both the tagged object form and a bare string,
// which is how image lists arrive from admin forms and old cart snapshots.
func (r *ImageRef) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*r = ParseImageRef(raw)
		return nil
	}

	type tagged ImageRef
	var t tagged
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	if t.Kind != ImageURL && t.Kind != ImageGradient {
		*r = ParseImageRef(t.Value)
		return nil
	}
	*r = ImageRef(t)
	return nil
}

// ParseImageRefs drops blank entries.
func ParseImageRefs(raw []string) []ImageRef {
	refs := make([]ImageRef, 0, len(raw))
	for _, s := range raw {
		if strings.TrimSpace(s) == "" {
			continue
		}
		refs = append(refs, ParseImageRef(s))
	}
	return refs
}

// ImageValues is the storage form of an image list.
func ImageValues(refs []ImageRef) []string {
	values := make([]string, len(refs))
	for i, ref := range refs {
		values[i] = ref.Value
	}
	return values
}
