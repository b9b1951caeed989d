package entity

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// MaxSelectQuantity bounds the quantity picker on the detail page.
const MaxSelectQuantity = 10

// CartLine is a product in the cart under one selected size and color.
// Price and Image are snapshots taken when the line was first added.
type CartLine struct {
	Key       string   `json:"key"`
	ProductID string   `json:"productId"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	Quantity  int      `json:"quantity"`
	Size      string   `json:"size"`
	Color     string   `json:"color"`
	Image     ImageRef `json:"image"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// NormalizeKeyPart lowercases, turns whitespace runs into a hyphen and
// strips anything outside [a-z0-9_-].
func NormalizeKeyPart(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
				inSpace = true
			}
			continue
		}
		inSpace = false
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CompositeKey identifies a cart line: product id plus normalized size
// and color.
func CompositeKey(productID, size, color string) string {
	return productID + "-" + NormalizeKeyPart(size) + "-" + NormalizeKeyPart(color)
}
