package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
)

type DetailState string

const (
	DetailIdle     DetailState = "idle"
	DetailLoading  DetailState = "loading"
	DetailLoaded   DetailState = "loaded"
	DetailRendered DetailState = "rendered"
	DetailFailed   DetailState = "failed"
)

// RelatedLimit caps the "you may also like" block.
const RelatedLimit = 4

type Selection struct {
	Color    string `json:"color"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

type PriceBlock struct {
	Price    float64
	OldPrice *float64
}

type ColorOption struct {
	Name     string
	Hex      string
	Swatch   entity.ImageRef
	Selected bool
}

type SizeOption struct {
	Label    string
	Enabled  bool
	LowStock bool
	// Stock is the first matching line's count, -1 without stock data.
	Stock    int
	Selected bool
}

// DetailSnapshot is everything the detail page renders, as of the last
// render pass.
type DetailSnapshot struct {
	State       DetailState
	ProductID   string
	Product     *entity.Product
	Variants    []entity.Variant
	Price       PriceBlock
	Gallery     []entity.ImageRef
	Colors      []ColorOption
	Sizes       []SizeOption
	Description string
	Related     []*entity.Product
	Selection   Selection
	Err         error
}

// ProductDetail is the product page state machine of one session:
// Idle -> Loading -> Loaded -> Rendered, or Loading -> Failed.
type ProductDetail struct {
	repo      repository.ProductRepository
	readiness *Readiness
	timeout   time.Duration

	mu        sync.Mutex
	seq       uint64
	state     DetailState
	productID string
	product   *entity.Product
	variants  []entity.Variant
	colors    []entity.Color
	related   []*entity.Product
	err       error
	selection Selection
	gallery   []entity.ImageRef
	sizes     []SizeOption
}

func NewProductDetail(repo repository.ProductRepository, readiness *Readiness, timeout time.Duration) *ProductDetail {
	return &ProductDetail{
		repo:      repo,
		readiness: readiness,
		timeout:   timeout,
		state:     DetailIdle,
		selection: Selection{Quantity: 1},
	}
}

// Open loads the product page for id. A blank id is a silent no-op and
// reopening the product already shown does not fetch again. The returned
// error is the reason for entering Failed.
func (d *ProductDetail) Open(ctx context.Context, id string) (DetailSnapshot, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return d.Snapshot(), nil
	}

	d.mu.Lock()
	if d.productID == id && d.state != DetailFailed {
		d.mu.Unlock()
		return d.Snapshot(), nil
	}
	d.seq++
	seq := d.seq
	d.state = DetailLoading
	d.productID = id
	d.product = nil
	d.variants = nil
	d.colors = nil
	d.related = nil
	d.gallery = nil
	d.sizes = nil
	d.err = nil
	d.selection = Selection{Quantity: 1}
	d.mu.Unlock()

	product, variants, related, err := d.load(ctx, id)

	d.mu.Lock()
	if seq != d.seq {
		// Another Open superseded this one.
		d.mu.Unlock()
		return d.Snapshot(), nil
	}
	if err != nil {
		d.state = DetailFailed
		d.err = err
		d.mu.Unlock()
		logger.Error("Product detail failed: id=%s error=%v", id, err)
		return d.Snapshot(), err
	}

	d.product = product
	d.variants = variants
	d.related = related
	d.state = DetailLoaded
	d.render()
	d.mu.Unlock()

	return d.Snapshot(), nil
}

func (d *ProductDetail) load(ctx context.Context, id string) (*entity.Product, []entity.Variant, []*entity.Product, error) {
	waitCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	if err := d.readiness.Wait(waitCtx); err != nil {
		return nil, nil, nil, err
	}

	product, err := d.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) || errors.Is(err, errors.CodeTransientIO) {
			return nil, nil, nil, err
		}
		return nil, nil, nil, errors.TransientIO("Product could not be loaded", err)
	}
	product = product.Normalized()

	// Missing stock data means "unknown", never "sold out".
	variants, err := d.repo.ListVariants(ctx, id)
	if err != nil {
		logger.Warn("Variants unavailable for product %s: %v", id, err)
		variants = []entity.Variant{}
	}

	return product, variants, d.loadRelated(ctx, product), nil
}

func (d *ProductDetail) loadRelated(ctx context.Context, product *entity.Product) []*entity.Product {
	if product.Category == "" {
		return nil
	}

	candidates, err := d.repo.ListByCategory(ctx, product.Category, RelatedLimit+1)
	if err != nil {
		logger.Warn("Related products unavailable for %s: %v", product.ID, err)
		return nil
	}

	related := make([]*entity.Product, 0, RelatedLimit)
	for _, p := range candidates {
		if p.ID == product.ID {
			continue
		}
		related = append(related, p.Normalized())
		if len(related) == RelatedLimit {
			break
		}
	}
	return related
}

// render is the Loaded -> Rendered pass. Callers hold d.mu.
func (d *ProductDetail) render() {
	d.colors = d.product.Colors
	if len(d.colors) == 0 {
		d.colors = entity.VariantColors(d.variants)
	}
	if len(d.colors) > 0 {
		d.selection.Color = d.colors[0].Name
	}

	d.renderGallery()
	d.renderSizes(true)
	d.state = DetailRendered
}

func (d *ProductDetail) renderGallery() {
	for _, c := range d.colors {
		if c.Name == d.selection.Color && len(c.Images) > 0 {
			d.gallery = append([]entity.ImageRef(nil), c.Images...)
			return
		}
	}
	d.gallery = append([]entity.ImageRef(nil), d.product.Images...)
}

// renderSizes evaluates every declared size under the selected color.
// With pickDefault the selection moves to the first enabled size, or is
// cleared when none is enabled.
func (d *ProductDetail) renderSizes(pickDefault bool) {
	sizes := make([]SizeOption, len(d.product.Sizes))
	for i, label := range d.product.Sizes {
		option := SizeOption{Label: label, Enabled: true, Stock: -1}
		if len(d.variants) > 0 {
			stock := entity.StockFor(d.variants, label, d.selection.Color)
			option.Enabled = stock.Available
			option.LowStock = stock.LowStock
			option.Stock = stock.Stock
		}
		sizes[i] = option
	}

	if pickDefault {
		d.selection.Size = ""
		for _, option := range sizes {
			if option.Enabled {
				d.selection.Size = option.Label
				break
			}
		}
	}
	for i := range sizes {
		sizes[i].Selected = sizes[i].Label == d.selection.Size
	}
	d.sizes = sizes
}

// SelectColor swaps the gallery and re-evaluates sizes for the color.
func (d *ProductDetail) SelectColor(name string) (DetailSnapshot, error) {
	d.mu.Lock()
	if d.state != DetailRendered {
		d.mu.Unlock()
		return d.Snapshot(), errors.Validation("No product is open")
	}

	found := false
	for _, c := range d.colors {
		if entity.NormalizeKeyPart(c.Name) == entity.NormalizeKeyPart(name) {
			d.selection.Color = c.Name
			found = true
			break
		}
	}
	if !found {
		d.mu.Unlock()
		return d.Snapshot(), errors.Validation("Unknown color")
	}

	d.renderGallery()
	d.renderSizes(true)
	d.mu.Unlock()
	return d.Snapshot(), nil
}

func (d *ProductDetail) SelectSize(label string) (DetailSnapshot, error) {
	d.mu.Lock()
	if d.state != DetailRendered {
		d.mu.Unlock()
		return d.Snapshot(), errors.Validation("No product is open")
	}

	var chosen *SizeOption
	for i := range d.sizes {
		if entity.NormalizeKeyPart(d.sizes[i].Label) == entity.NormalizeKeyPart(label) {
			chosen = &d.sizes[i]
			break
		}
	}
	if chosen == nil {
		d.mu.Unlock()
		return d.Snapshot(), errors.Validation("Unknown size")
	}
	if !chosen.Enabled {
		d.mu.Unlock()
		return d.Snapshot(), errors.Validation("Size " + chosen.Label + " is out of stock")
	}

	d.selection.Size = chosen.Label
	d.renderSizes(false)
	d.mu.Unlock()
	return d.Snapshot(), nil
}

// SetQuantity clamps n to [1, MaxSelectQuantity].
func (d *ProductDetail) SetQuantity(n int) int {
	if n < 1 {
		n = 1
	}
	if n > entity.MaxSelectQuantity {
		n = entity.MaxSelectQuantity
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.selection.Quantity = n
	return n
}

// AddToCart puts the current selection into ledger.
func (d *ProductDetail) AddToCart(ledger *CartLedger) (entity.CartLine, error) {
	d.mu.Lock()
	if d.state != DetailRendered {
		d.mu.Unlock()
		return entity.CartLine{}, errors.Validation("No product is open")
	}
	product := d.product
	variants := d.variants
	selection := d.selection
	d.mu.Unlock()

	return ledger.AddOrIncrement(product, selection.Size, selection.Color, selection.Quantity, variants...)
}

func (d *ProductDetail) State() DetailState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *ProductDetail) Snapshot() DetailSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	snapshot := DetailSnapshot{
		State:     d.state,
		ProductID: d.productID,
		Selection: d.selection,
		Err:       d.err,
	}
	if d.state != DetailRendered {
		return snapshot
	}

	snapshot.Product = d.product
	snapshot.Variants = append([]entity.Variant(nil), d.variants...)
	snapshot.Price = PriceBlock{Price: d.product.Price, OldPrice: d.product.OldPrice}
	if override, ok := entity.PriceOverride(d.variants, d.selection.Size, d.selection.Color); ok && d.selection.Size != "" {
		snapshot.Price.Price = override
	}
	snapshot.Gallery = append([]entity.ImageRef(nil), d.gallery...)
	snapshot.Sizes = append([]SizeOption(nil), d.sizes...)
	snapshot.Description = d.product.Description
	snapshot.Related = append([]*entity.Product(nil), d.related...)

	snapshot.Colors = make([]ColorOption, len(d.colors))
	for i, c := range d.colors {
		option := ColorOption{Name: c.Name, Hex: c.Hex, Selected: c.Name == d.selection.Color}
		if len(c.Images) > 0 {
			option.Swatch = c.Images[0]
		}
		snapshot.Colors[i] = option
	}
	return snapshot
}
