package repository

import (
	"math"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
)

// Field names of the product and variant documents. These are the only
// bit-exact contract with the remote store.
const (
	fieldName        = "name"
	fieldCategory    = "category"
	fieldDescription = "description"
	fieldPrice       = "price"
	fieldOldPrice    = "oldPrice"
	fieldBadge       = "badge"
	fieldImages      = "images"
	fieldLegacyImage = "image"
	fieldColors      = "colors"
	fieldSizes       = "sizes"
	fieldCreatedAt   = "createdAt"
	fieldUpdatedAt   = "updatedAt"

	fieldColorName   = "name"
	fieldColorHex    = "hex"
	fieldColorImages = "images"

	fieldVariantSize  = "size"
	fieldVariantColor = "color"
	fieldVariantStock = "stock"
	fieldVariantPrice = "price"
)

func decodeProduct(doc repository.Document) *entity.Product {
	d := doc.Data
	p := &entity.Product{
		ID:          doc.ID,
		Name:        asString(d[fieldName]),
		Category:    asString(d[fieldCategory]),
		Description: asString(d[fieldDescription]),
		Badge:       asString(d[fieldBadge]),
		LegacyImage: asString(d[fieldLegacyImage]),
		Sizes:       asStrings(d[fieldSizes]),
		CreatedAt:   asTime(d[fieldCreatedAt]),
		UpdatedAt:   asTime(d[fieldUpdatedAt]),
	}

	if price, ok := asFloat(d[fieldPrice]); ok && price >= 0 {
		p.Price = price
	}
	if old, ok := asFloat(d[fieldOldPrice]); ok {
		p.OldPrice = &old
	}
	if images := asStrings(d[fieldImages]); images != nil {
		p.Images = entity.ParseImageRefs(images)
	}
	p.Colors = decodeColors(d[fieldColors])

	return p
}

func decodeColors(v interface{}) []entity.Color {
	items, ok := asSlice(v)
	if !ok {
		return nil
	}

	colors := make([]entity.Color, 0, len(items))
	for _, item := range items {
		switch c := item.(type) {
		case string:
			if strings.TrimSpace(c) != "" {
				colors = append(colors, entity.Color{Name: c})
			}
		case map[string]interface{}:
			name := asString(c[fieldColorName])
			if name == "" {
				continue
			}
			color := entity.Color{Name: name, Hex: asString(c[fieldColorHex])}
			if images := asStrings(c[fieldColorImages]); len(images) > 0 {
				color.Images = entity.ParseImageRefs(images)
			}
			colors = append(colors, color)
		}
	}
	return colors
}

func decodeVariant(doc repository.Document) entity.Variant {
	d := doc.Data
	v := entity.Variant{
		ID:    doc.ID,
		Size:  asString(d[fieldVariantSize]),
		Color: asString(d[fieldVariantColor]),
	}
	if stock, ok := asFloat(d[fieldVariantStock]); ok && stock > 0 {
		v.Stock = int(stock)
	}
	if price, ok := asFloat(d[fieldVariantPrice]); ok {
		v.Price = &price
	}
	return v
}

func encodeProduct(p *entity.Product) map[string]interface{} {
	data := map[string]interface{}{
		fieldName:        p.Name,
		fieldCategory:    p.Category,
		fieldDescription: p.Description,
		fieldPrice:       p.Price,
		fieldOldPrice:    nil,
		fieldBadge:       p.Badge,
		fieldImages:      encodeImages(p.Images),
		fieldColors:      encodeColors(p.Colors),
		fieldSizes:       encodeStrings(p.Sizes),
	}
	if p.OldPrice != nil {
		data[fieldOldPrice] = *p.OldPrice
	}
	return data
}

func encodePatch(patch entity.ProductPatch) map[string]interface{} {
	data := make(map[string]interface{})
	if patch.Name != nil {
		data[fieldName] = *patch.Name
	}
	if patch.Category != nil {
		data[fieldCategory] = *patch.Category
	}
	if patch.Description != nil {
		data[fieldDescription] = *patch.Description
	}
	if patch.Price != nil {
		data[fieldPrice] = *patch.Price
	}
	if patch.ClearOld {
		data[fieldOldPrice] = nil
	} else if patch.OldPrice != nil {
		data[fieldOldPrice] = *patch.OldPrice
	}
	if patch.Badge != nil {
		data[fieldBadge] = *patch.Badge
	}
	if patch.Images != nil {
		data[fieldImages] = encodeImages(patch.Images)
	}
	if patch.Colors != nil {
		data[fieldColors] = encodeColors(patch.Colors)
	}
	if patch.Sizes != nil {
		data[fieldSizes] = encodeStrings(patch.Sizes)
	}
	return data
}

func encodeImages(refs []entity.ImageRef) []interface{} {
	return encodeStrings(entity.ImageValues(refs))
}

func encodeStrings(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func encodeColors(colors []entity.Color) []interface{} {
	out := make([]interface{}, len(colors))
	for i, c := range colors {
		m := map[string]interface{}{fieldColorName: c.Name}
		if c.Hex != "" {
			m[fieldColorHex] = c.Hex
		}
		if len(c.Images) > 0 {
			m[fieldColorImages] = encodeImages(c.Images)
		}
		out[i] = m
	}
	return out
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// asFloat coerces the numeric shapes the store hands back, including
// prices typed in as text by the admin panel.
func asFloat(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int64:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", "."), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func asSlice(v interface{}) ([]interface{}, bool) {
	switch s := v.(type) {
	case []interface{}:
		return s, true
	case []string:
		out := make([]interface{}, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out, true
	default:
		return nil, false
	}
}

func asStrings(v interface{}) []string {
	items, ok := asSlice(v)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func asTime(v interface{}) time.Time {
	if t, ok := v.(time.Time); ok {
		return t
	}
	return time.Time{}
}
