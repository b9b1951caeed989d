package entity

// LowStockThreshold is the highest stock count that still shows the
// "last units" hint.
const LowStockThreshold = 3

// Variant is one (size, color) stock line of a product. Duplicate pairs
// are kept as independent lines.
type Variant struct {
	ID    string   `json:"id"`
	Size  string   `json:"size"`
	Color string   `json:"color"`
	Stock int      `json:"stock"`
	Price *float64 `json:"price,omitempty"`
}

// Matches compares normalized size, and normalized color when color is
// non-empty.
func (v Variant) Matches(size, color string) bool {
	if NormalizeKeyPart(v.Size) != NormalizeKeyPart(size) {
		return false
	}
	if color == "" {
		return true
	}
	return NormalizeKeyPart(v.Color) == NormalizeKeyPart(color)
}

// SizeStock summarises the lines matching one size under a color filter.
type SizeStock struct {
	Available bool
	LowStock  bool
	// Stock is the count of the first matching line, -1 when none matched.
	Stock   int
	Matched bool
}

// StockFor evaluates availability as OR across all matching lines; the
// displayed stock is the first match.
func StockFor(variants []Variant, size, color string) SizeStock {
	result := SizeStock{Stock: -1}
	for _, v := range variants {
		if !v.Matches(size, color) {
			continue
		}
		if !result.Matched {
			result.Matched = true
			result.Stock = v.Stock
		}
		if v.Stock > 0 {
			result.Available = true
			if v.Stock <= LowStockThreshold {
				result.LowStock = true
			}
		}
	}
	return result
}

// PriceOverride returns the first matching line's price override.
func PriceOverride(variants []Variant, size, color string) (float64, bool) {
	for _, v := range variants {
		if v.Matches(size, color) && v.Price != nil {
			return *v.Price, true
		}
	}
	return 0, false
}

// VariantColors lists distinct variant colors in first-seen order. Used
// when the product document carries no color list.
func VariantColors(variants []Variant) []Color {
	seen := make(map[string]bool)
	var colors []Color
	for _, v := range variants {
		key := NormalizeKeyPart(v.Color)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		colors = append(colors, Color{Name: v.Color})
	}
	return colors
}
