package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/entity"
	"storefront/internal/usecase"
	"storefront/pkg/errors"
)

func oldPrice(v float64) *float64 {
	return &v
}

func TestDiscountBadge(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		oldPrice *float64
		want     string
	}{
		{"rounded percentage", 149.90, oldPrice(189.90), "-21%"},
		{"no old price", 149.90, nil, ""},
		{"old price not above price", 149.90, oldPrice(149.90), ""},
		{"half off", 50, oldPrice(100), "-50%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Discount(tt.price, tt.oldPrice))
		})
	}
}

func TestProductCard(t *testing.T) {
	r := NewRenderer("R$")

	card := r.ProductCard(&entity.Product{
		ID:       "p 1",
		Name:     "Moletom",
		Category: "moletons",
		Price:    149.90,
		OldPrice: oldPrice(189.90),
		Images:   []entity.ImageRef{entity.URLImage("https://cdn.example.com/m.jpg")},
	})
	assert.Equal(t, "R$ 149,90", card.Price)
	assert.Equal(t, "R$ 189,90", card.OldPrice, "strike-through price is rendered")
	assert.Equal(t, "-21%", card.Discount)
	assert.Equal(t, &Image{Kind: entity.ImageURL, Src: "https://cdn.example.com/m.jpg"}, card.Cover)
	assert.Equal(t, "/v1/detail?id=p+1", card.Link)

	plain := r.ProductCard(&entity.Product{
		ID:     "p2",
		Price:  1234.5,
		Images: []entity.ImageRef{entity.GradientImage("linear-gradient(#000, #fff)")},
	})
	assert.Equal(t, "R$ 1.234,50", plain.Price)
	assert.Empty(t, plain.OldPrice)
	assert.Empty(t, plain.Discount)
	assert.Equal(t, &Image{Kind: entity.ImageGradient, Background: "linear-gradient(#000, #fff)"}, plain.Cover)

	assert.Nil(t, r.ProductCard(&entity.Product{ID: "bare"}).Cover)
}

func TestCatalogPage(t *testing.T) {
	r := NewRenderer("R$")

	page := r.CatalogPage(usecase.CatalogPage{
		Alert: errors.TransientIO("Catalog could not be loaded", assert.AnError),
	})
	assert.True(t, page.Empty)
	assert.Equal(t, "Catalog could not be loaded", page.Alert, "causes stay out of the page")
	assert.NotNil(t, page.Products)
	assert.NotNil(t, page.Categories)

	page = r.CatalogPage(usecase.CatalogPage{
		Products:   []*entity.Product{{ID: "a", Price: 10}},
		Filter:     "sale",
		Page:       1,
		TotalPages: 1,
		Total:      1,
	})
	assert.False(t, page.Empty)
	assert.Empty(t, page.Alert)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "R$ 10,00", page.Products[0].Price)
}

func TestCartView(t *testing.T) {
	r := NewRenderer("R$")

	view := r.Cart([]entity.CartLine{
		{Key: "a-m-preto", ProductID: "a", Name: "A", Price: 0.1, Quantity: 3, Size: "M", Color: "Preto"},
		{Key: "b-p-azul", ProductID: "b", Name: "B", Price: 1000, Quantity: 1, Size: "P", Color: "Azul",
			Image: entity.URLImage("https://cdn.example.com/b.jpg")},
	})
	assert.Equal(t, 4, view.ItemCount)
	assert.Equal(t, "R$ 0,30", view.Lines[0].Subtotal, "no float drift")
	assert.Nil(t, view.Lines[0].Image)
	assert.Equal(t, "R$ 1.000,30", view.Total)
	assert.False(t, view.Empty)

	empty := r.Cart(nil)
	assert.True(t, empty.Empty)
	assert.Equal(t, "R$ 0,00", empty.Total)
	assert.NotNil(t, empty.Lines)
}

func TestDetailView(t *testing.T) {
	r := NewRenderer("R$")

	view := r.Detail(usecase.DetailSnapshot{
		State:     usecase.DetailRendered,
		ProductID: "hoodie",
		Product:   &entity.Product{ID: "hoodie", Name: "Hoodie", Category: "moletons"},
		Price:     usecase.PriceBlock{Price: 149.90, OldPrice: oldPrice(189.90)},
		Gallery:   []entity.ImageRef{entity.URLImage("https://cdn.example.com/h.jpg")},
		Colors: []usecase.ColorOption{
			{Name: "red", Hex: "#f00", Selected: true},
			{Name: "blue", Swatch: entity.GradientImage("linear-gradient(#00f, #00a)")},
		},
		Sizes: []usecase.SizeOption{
			{Label: "P", Enabled: true, LowStock: true, Stock: 2, Selected: true},
			{Label: "M", Enabled: false, Stock: 0},
		},
		Description: "Warm.",
		Selection:   usecase.Selection{Color: "red", Size: "P", Quantity: 1},
	})

	assert.Equal(t, "rendered", view.State)
	assert.Equal(t, "R$ 149,90", view.Price)
	assert.Equal(t, "R$ 189,90", view.OldPrice)
	assert.Equal(t, "-21%", view.Discount)
	assert.Len(t, view.Gallery, 1)
	assert.Nil(t, view.Colors[0].Swatch)
	assert.Equal(t, entity.ImageGradient, view.Colors[1].Swatch.Kind)
	assert.Equal(t, lowStockHint, view.Sizes[0].Hint)
	assert.Empty(t, view.Sizes[1].Hint)
	assert.True(t, view.CanAdd)
}

func TestDetailViewFailed(t *testing.T) {
	r := NewRenderer("R$")

	view := r.Detail(usecase.DetailSnapshot{
		State:     usecase.DetailFailed,
		ProductID: "nope",
		Err:       errors.NotFound("Product", nil),
	})
	assert.Equal(t, "failed", view.State)
	assert.Equal(t, "Product not found", view.Error)
	assert.Empty(t, view.Name)
	assert.Empty(t, view.Sizes)
	assert.False(t, view.CanAdd)
}

func TestAdminGrid(t *testing.T) {
	r := NewRenderer("R$")

	grid := r.AdminGrid([]*entity.Product{
		{ID: "a", Name: "A", Price: 10, OldPrice: oldPrice(8), Images: []entity.ImageRef{
			entity.URLImage("https://cdn.example.com/a.jpg"),
			entity.GradientImage("linear-gradient(#000, #fff)"),
		}},
	}, nil)

	require.Len(t, grid.Rows, 1)
	assert.Equal(t, 1, grid.Total)
	assert.Equal(t, 2, grid.Rows[0].ImageCount)
	assert.Equal(t, "R$ 8,00", grid.Rows[0].OldPrice, "admins see the stored value even when it is no discount")
	assert.Empty(t, grid.Alert)
}
