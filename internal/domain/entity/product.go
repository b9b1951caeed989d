package entity

import (
	"time"
)

// DefaultSizes is used for products stored without a size list.
var DefaultSizes = []string{"P", "M", "G", "GG"}

// SaleFilter is the synthetic category matching every discounted product.
const SaleFilter = "sale"

type Color struct {
	Name   string     `json:"name"`
	Hex    string     `json:"hex,omitempty"`
	Images []ImageRef `json:"images,omitempty"`
}

type Product struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	OldPrice    *float64   `json:"old_price,omitempty"`
	Badge       string     `json:"badge,omitempty"`
	Images      []ImageRef `json:"images"`
	LegacyImage string     `json:"-"`
	Colors      []Color    `json:"colors"`
	Sizes       []string   `json:"sizes"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// OnSale reports a valid strike-through price.
func (p *Product) OnSale() bool {
	return p.OldPrice != nil && *p.OldPrice > p.Price
}

// Normalized returns a copy with the fallbacks applied: legacy single
// image, default sizes, and non-nil color list.
func (p *Product) Normalized() *Product {
	n := *p
	if len(n.Images) == 0 {
		if n.LegacyImage != "" {
			n.Images = []ImageRef{ParseImageRef(n.LegacyImage)}
		} else {
			n.Images = []ImageRef{}
		}
	} else {
		n.Images = append([]ImageRef(nil), n.Images...)
	}
	if len(n.Sizes) == 0 {
		n.Sizes = append([]string(nil), DefaultSizes...)
	} else {
		n.Sizes = append([]string(nil), n.Sizes...)
	}
	if n.Colors == nil {
		n.Colors = []Color{}
	} else {
		n.Colors = append([]Color(nil), n.Colors...)
	}
	return &n
}

// Cover is the first image, falling back to the legacy single image.
func (p *Product) Cover() ImageRef {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	if p.LegacyImage != "" {
		return ParseImageRef(p.LegacyImage)
	}
	return ImageRef{}
}

// Clone is a shallow copy with its own slices, so mirrors applied by the
// admin never alias a list another reader holds.
func (p *Product) Clone() *Product {
	c := *p
	c.Images = append([]ImageRef(nil), p.Images...)
	c.Colors = append([]Color(nil), p.Colors...)
	c.Sizes = append([]string(nil), p.Sizes...)
	if p.OldPrice != nil {
		old := *p.OldPrice
		c.OldPrice = &old
	}
	return &c
}

// ColorByName matches case-insensitively on the normalized name.
func (p *Product) ColorByName(name string) (Color, bool) {
	want := NormalizeKeyPart(name)
	for _, c := range p.Colors {
		if NormalizeKeyPart(c.Name) == want {
			return c, true
		}
	}
	return Color{}, false
}

// ProductPatch carries the fields an admin update changes. Nil fields are
// left untouched.
type ProductPatch struct {
	Name        *string
	Category    *string
	Description *string
	Price       *float64
	OldPrice    *float64
	ClearOld    bool
	Badge       *string
	Images      []ImageRef
	Colors      []Color
	Sizes       []string
}

// Apply merges the patch into a clone of p.
func (patch ProductPatch) Apply(p *Product) *Product {
	out := p.Clone()
	if patch.Name != nil {
		out.Name = *patch.Name
	}
	if patch.Category != nil {
		out.Category = *patch.Category
	}
	if patch.Description != nil {
		out.Description = *patch.Description
	}
	if patch.Price != nil {
		out.Price = *patch.Price
	}
	if patch.ClearOld {
		out.OldPrice = nil
	} else if patch.OldPrice != nil {
		old := *patch.OldPrice
		out.OldPrice = &old
	}
	if patch.Badge != nil {
		out.Badge = *patch.Badge
	}
	if patch.Images != nil {
		out.Images = append([]ImageRef(nil), patch.Images...)
	}
	if patch.Colors != nil {
		out.Colors = append([]Color(nil), patch.Colors...)
	}
	if patch.Sizes != nil {
		out.Sizes = append([]string(nil), patch.Sizes...)
	}
	return out
}

func (patch ProductPatch) IsEmpty() bool {
	return patch.Name == nil && patch.Category == nil && patch.Description == nil &&
		patch.Price == nil && patch.OldPrice == nil && !patch.ClearOld && patch.Badge == nil &&
		patch.Images == nil && patch.Colors == nil && patch.Sizes == nil
}
