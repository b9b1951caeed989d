package usecase

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/entity"
	"storefront/pkg/errors"
)

// CartListener is called with a copy of the lines after every mutation,
// while the ledger lock is still held, so listeners observe mutations in
// order. Listeners must not call back into the ledger.
type CartListener func(lines []entity.CartLine)

// CartLedger is the authoritative in-memory cart of one session.
type CartLedger struct {
	mu        sync.Mutex
	lines     []entity.CartLine
	listeners []CartListener
}

func NewCartLedger(lines []entity.CartLine) *CartLedger {
	return &CartLedger{lines: append([]entity.CartLine(nil), lines...)}
}

func (l *CartLedger) Subscribe(listener CartListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, listener)
}

// AddOrIncrement adds qty units of product under (size, color). An existing
// line for the same composite key is incremented; a new line snapshots the
// unit price (a matching variant price override wins) and image.
func (l *CartLedger) AddOrIncrement(product *entity.Product, size, color string, qty int, variants ...entity.Variant) (entity.CartLine, error) {
	if product == nil || product.ID == "" {
		return entity.CartLine{}, errors.Validation("Product is required")
	}
	if strings.TrimSpace(size) == "" {
		return entity.CartLine{}, errors.Validation("Select a size")
	}
	if strings.TrimSpace(color) == "" {
		return entity.CartLine{}, errors.Validation("Select a color")
	}
	if qty < 1 {
		return entity.CartLine{}, errors.Validation("Quantity must be at least 1")
	}

	key := entity.CompositeKey(product.ID, size, color)

	l.mu.Lock()
	defer l.mu.Unlock()

	if i := l.indexOf(key); i >= 0 {
		l.lines[i].Quantity += qty
		line := l.lines[i]
		l.notify()
		return line, nil
	}

	price := product.Price
	if override, ok := entity.PriceOverride(variants, size, color); ok {
		price = override
	}

	line := entity.CartLine{
		Key:       key,
		ProductID: product.ID,
		Name:      product.Name,
		Price:     price,
		Quantity:  qty,
		Size:      size,
		Color:     color,
		Image:     snapshotImage(product, color),
	}
	l.lines = append(l.lines, line)
	l.notify()
	return line, nil
}

// ChangeQuantity applies delta to the line's quantity and removes the line
// when the result drops to zero or below. Unknown keys are ignored.
func (l *CartLedger) ChangeQuantity(key string, delta int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(key)
	if i < 0 {
		return
	}

	quantity := l.lines[i].Quantity + delta
	if quantity <= 0 {
		l.lines = append(l.lines[:i], l.lines[i+1:]...)
	} else {
		l.lines[i].Quantity = quantity
	}
	l.notify()
}

// Remove is idempotent.
func (l *CartLedger) Remove(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(key)
	if i < 0 {
		return
	}
	l.lines = append(l.lines[:i], l.lines[i+1:]...)
	l.notify()
}

// Clear empties the cart, used once an order message has been built.
func (l *CartLedger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.lines) == 0 {
		return
	}
	l.lines = nil
	l.notify()
}

// Settle hands the current lines and their total to build and empties the
// cart only if build succeeds. Nothing can slip in between the two.
func (l *CartLedger) Settle(build func(lines []entity.CartLine, total decimal.Decimal) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	lines := append([]entity.CartLine(nil), l.lines...)
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	if err := build(lines, total); err != nil {
		return err
	}

	if len(l.lines) > 0 {
		l.lines = nil
		l.notify()
	}
	return nil
}

// Replace swaps the whole line list without notifying listeners. Used to
// hydrate from the persisted snapshot.
func (l *CartLedger) Replace(lines []entity.CartLine) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append([]entity.CartLine(nil), lines...)
}

// Total is exact; rounding to cents happens only when formatting.
func (l *CartLedger) Total() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := decimal.Zero
	for _, line := range l.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

func (l *CartLedger) ItemCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0
	for _, line := range l.lines {
		count += line.Quantity
	}
	return count
}

func (l *CartLedger) Lines() []entity.CartLine {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]entity.CartLine(nil), l.lines...)
}

func (l *CartLedger) Line(key string) (entity.CartLine, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i := l.indexOf(key); i >= 0 {
		return l.lines[i], true
	}
	return entity.CartLine{}, false
}

func (l *CartLedger) indexOf(key string) int {
	for i, line := range l.lines {
		if line.Key == key {
			return i
		}
	}
	return -1
}

func (l *CartLedger) notify() {
	if len(l.listeners) == 0 {
		return
	}
	snapshot := append([]entity.CartLine(nil), l.lines...)
	for _, listener := range l.listeners {
		listener(snapshot)
	}
}

// snapshotImage prefers the selected color's own first image.
func snapshotImage(product *entity.Product, color string) entity.ImageRef {
	if c, ok := product.ColorByName(color); ok && len(c.Images) > 0 {
		return c.Images[0]
	}
	return product.Cover()
}
