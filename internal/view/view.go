package view

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/entity"
	"storefront/internal/usecase"
	apperrors "storefront/pkg/errors"
	"storefront/pkg/utils"
)

const lowStockHint = "Últimas unidades"

// Image is how a view draws an ImageRef: an <img> source or a CSS
// background.
type Image struct {
	Kind       entity.ImageKind `json:"kind"`
	Src        string           `json:"src,omitempty"`
	Background string           `json:"background,omitempty"`
}

type ProductCard struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Badge    string `json:"badge,omitempty"`
	Price    string `json:"price"`
	OldPrice string `json:"old_price,omitempty"`
	Discount string `json:"discount,omitempty"`
	Cover    *Image `json:"cover,omitempty"`
	Link     string `json:"link"`
}

type CatalogPage struct {
	Products   []ProductCard `json:"products"`
	Filter     string        `json:"filter"`
	Sort       string        `json:"sort"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	Total      int           `json:"total"`
	Categories []string      `json:"categories"`
	Alert      string        `json:"alert,omitempty"`
	Empty      bool          `json:"empty"`
}

type CartLine struct {
	Key       string `json:"key"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	Subtotal  string `json:"subtotal"`
	Image     *Image `json:"image,omitempty"`
}

type CartView struct {
	Lines     []CartLine `json:"lines"`
	ItemCount int        `json:"item_count"`
	Total     string     `json:"total"`
	Empty     bool       `json:"empty"`
}

type ColorView struct {
	Name     string `json:"name"`
	Hex      string `json:"hex,omitempty"`
	Swatch   *Image `json:"swatch,omitempty"`
	Selected bool   `json:"selected"`
}

type SizeView struct {
	Label    string `json:"label"`
	Enabled  bool   `json:"enabled"`
	Selected bool   `json:"selected"`
	Hint     string `json:"hint,omitempty"`
}

type DetailView struct {
	State       string            `json:"state"`
	ID          string            `json:"id,omitempty"`
	Name        string            `json:"name,omitempty"`
	Category    string            `json:"category,omitempty"`
	Badge       string            `json:"badge,omitempty"`
	Price       string            `json:"price,omitempty"`
	OldPrice    string            `json:"old_price,omitempty"`
	Discount    string            `json:"discount,omitempty"`
	Gallery     []Image           `json:"gallery"`
	Colors      []ColorView       `json:"colors"`
	Sizes       []SizeView        `json:"sizes"`
	Description string            `json:"description,omitempty"`
	Related     []ProductCard     `json:"related"`
	Selection   usecase.Selection `json:"selection"`
	CanAdd      bool              `json:"can_add"`
	Error       string            `json:"error,omitempty"`
}

type AdminRow struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Price      string `json:"price"`
	OldPrice   string `json:"old_price,omitempty"`
	Badge      string `json:"badge,omitempty"`
	Cover      *Image `json:"cover,omitempty"`
	ImageCount int    `json:"image_count"`
}

type AdminGrid struct {
	Rows  []AdminRow `json:"rows"`
	Total int        `json:"total"`
	Alert string     `json:"alert,omitempty"`
}

// Renderer projects finalized state into view models. It never mutates
// what it reads.
type Renderer struct {
	currency string
}

func NewRenderer(currency string) *Renderer {
	return &Renderer{currency: currency}
}

func (r *Renderer) Money(amount float64) string {
	return utils.FormatMoney(r.currency, decimal.NewFromFloat(amount))
}

func RenderImage(ref entity.ImageRef) *Image {
	if ref.IsZero() {
		return nil
	}
	if ref.IsURL() {
		return &Image{Kind: entity.ImageURL, Src: ref.Value}
	}
	return &Image{Kind: entity.ImageGradient, Background: ref.Value}
}

// userMessage hides wrapped causes from the page.
func userMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Something went wrong, please try again"
}

// Discount is the "-N%" badge, empty without a valid strike-through price.
func Discount(price float64, oldPrice *float64) string {
	percent, ok := utils.DiscountPercent(price, oldPrice)
	if !ok {
		return ""
	}
	return fmt.Sprintf("-%d%%", percent)
}

func (r *Renderer) ProductCard(p *entity.Product) ProductCard {
	card := ProductCard{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Badge:    p.Badge,
		Price:    r.Money(p.Price),
		Cover:    RenderImage(p.Cover()),
		Link:     "/v1/detail?id=" + url.QueryEscape(p.ID),
	}
	if discount := Discount(p.Price, p.OldPrice); discount != "" {
		card.OldPrice = r.Money(*p.OldPrice)
		card.Discount = discount
	}
	return card
}

func (r *Renderer) productCards(products []*entity.Product) []ProductCard {
	cards := make([]ProductCard, 0, len(products))
	for _, p := range products {
		cards = append(cards, r.ProductCard(p))
	}
	return cards
}

func (r *Renderer) CatalogPage(page usecase.CatalogPage) CatalogPage {
	out := CatalogPage{
		Products:   r.productCards(page.Products),
		Filter:     page.Filter,
		Sort:       page.Sort,
		Page:       page.Page,
		TotalPages: page.TotalPages,
		Total:      page.Total,
		Categories: page.Categories,
		Empty:      page.Total == 0,
	}
	if out.Categories == nil {
		out.Categories = []string{}
	}
	if page.Alert != nil {
		out.Alert = userMessage(page.Alert)
	}
	return out
}

func (r *Renderer) Cart(lines []entity.CartLine) CartView {
	out := CartView{Lines: make([]CartLine, 0, len(lines))}
	total := decimal.Zero
	for _, line := range lines {
		subtotal := line.Subtotal()
		total = total.Add(subtotal)
		out.ItemCount += line.Quantity
		out.Lines = append(out.Lines, CartLine{
			Key:       line.Key,
			ProductID: line.ProductID,
			Name:      line.Name,
			Size:      line.Size,
			Color:     line.Color,
			Quantity:  line.Quantity,
			Price:     r.Money(line.Price),
			Subtotal:  utils.FormatMoney(r.currency, subtotal),
			Image:     RenderImage(line.Image),
		})
	}
	out.Total = utils.FormatMoney(r.currency, total)
	out.Empty = len(lines) == 0
	return out
}

func (r *Renderer) Detail(snapshot usecase.DetailSnapshot) DetailView {
	out := DetailView{
		State:     string(snapshot.State),
		ID:        snapshot.ProductID,
		Gallery:   []Image{},
		Colors:    []ColorView{},
		Sizes:     []SizeView{},
		Related:   r.productCards(snapshot.Related),
		Selection: snapshot.Selection,
	}
	if snapshot.Err != nil {
		out.Error = userMessage(snapshot.Err)
	}
	if snapshot.State != usecase.DetailRendered || snapshot.Product == nil {
		return out
	}

	p := snapshot.Product
	out.Name = p.Name
	out.Category = p.Category
	out.Badge = p.Badge
	out.Description = snapshot.Description
	out.Price = r.Money(snapshot.Price.Price)
	if discount := Discount(snapshot.Price.Price, snapshot.Price.OldPrice); discount != "" {
		out.OldPrice = r.Money(*snapshot.Price.OldPrice)
		out.Discount = discount
	}

	for _, ref := range snapshot.Gallery {
		if img := RenderImage(ref); img != nil {
			out.Gallery = append(out.Gallery, *img)
		}
	}
	for _, c := range snapshot.Colors {
		out.Colors = append(out.Colors, ColorView{
			Name:     c.Name,
			Hex:      c.Hex,
			Swatch:   RenderImage(c.Swatch),
			Selected: c.Selected,
		})
	}
	for _, s := range snapshot.Sizes {
		size := SizeView{Label: s.Label, Enabled: s.Enabled, Selected: s.Selected}
		if s.Enabled && s.LowStock {
			size.Hint = lowStockHint
		}
		out.Sizes = append(out.Sizes, size)
	}
	out.CanAdd = snapshot.Selection.Size != "" && snapshot.Selection.Color != ""
	return out
}

func (r *Renderer) AdminGrid(products []*entity.Product, alert error) AdminGrid {
	out := AdminGrid{Rows: make([]AdminRow, 0, len(products)), Total: len(products)}
	for _, p := range products {
		row := AdminRow{
			ID:         p.ID,
			Name:       p.Name,
			Category:   p.Category,
			Price:      r.Money(p.Price),
			Badge:      p.Badge,
			Cover:      RenderImage(p.Cover()),
			ImageCount: len(p.Images),
		}
		if p.OldPrice != nil {
			row.OldPrice = r.Money(*p.OldPrice)
		}
		out.Rows = append(out.Rows, row)
	}
	if alert != nil {
		out.Alert = userMessage(alert)
	}
	return out
}
