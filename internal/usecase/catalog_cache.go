package usecase

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
	"storefront/pkg/utils"
)

const (
	SortNone      = "none"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortName      = "name"
)

// ValidSortKey reports whether key is one of the supported sort orders.
// The empty key means SortNone.
func ValidSortKey(key string) bool {
	switch key {
	case "", SortNone, SortPriceAsc, SortPriceDesc, SortName:
		return true
	}
	return false
}

// CatalogCache is the process-wide copy of the remote product list.
// Readers always get their own slice; the canonical list is only replaced
// by Hydrate or edited by the admin mirror operations.
type CatalogCache struct {
	repo repository.ProductRepository
	tag  language.Tag

	mu       sync.RWMutex
	products []*entity.Product
	loaded   bool
	lastErr  error

	// started counts Hydrate calls; resolved is the newest generation whose
	// response has been taken into account. Older responses are dropped.
	started  uint64
	resolved uint64
}

func NewCatalogCache(repo repository.ProductRepository, locale string) *CatalogCache {
	tag, err := language.Parse(locale)
	if err != nil {
		logger.Warn("Unknown store locale %q, falling back to %s: %v", locale, language.BrazilianPortuguese, err)
		tag = language.BrazilianPortuguese
	}
	return &CatalogCache{repo: repo, tag: tag}
}

// Hydrate replaces the product list from the remote store. A failure is
// returned and kept as the page alert; the previous list stays in place.
func (c *CatalogCache) Hydrate(ctx context.Context) error {
	c.mu.Lock()
	c.started++
	generation := c.started
	c.mu.Unlock()

	products, err := c.repo.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation < c.resolved {
		logger.Debug("Discarding stale catalog response: generation=%d resolved=%d", generation, c.resolved)
		return nil
	}
	c.resolved = generation

	if err != nil {
		if !errors.Is(err, errors.CodeTransientIO) {
			err = errors.TransientIO("Catalog could not be loaded", err)
		}
		c.lastErr = err
		logger.Error("Catalog hydrate failed: %v", err)
		return err
	}

	normalized := make([]*entity.Product, len(products))
	for i, p := range products {
		normalized[i] = p.Normalized()
	}

	c.products = normalized
	c.loaded = true
	c.lastErr = nil
	logger.Info("Catalog hydrated: products=%d generation=%d", len(normalized), generation)
	return nil
}

// Alert is the error of the last hydrate attempt, nil once one succeeds.
func (c *CatalogCache) Alert() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

func (c *CatalogCache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// All returns the canonical list in remote order.
func (c *CatalogCache) All() []*entity.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*entity.Product(nil), c.products...)
}

func (c *CatalogCache) Get(id string) (*entity.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.indexOf(id); i >= 0 {
		return c.products[i], true
	}
	return nil, false
}

// Filtered always starts from the canonical list. "sale" keeps products
// with a valid strike-through price; any other non-empty filter is an
// exact category match.
func (c *CatalogCache) Filtered(filter string) []*entity.Product {
	return FilterProducts(c.All(), filter)
}

// Categories lists distinct categories in first-seen order.
func (c *CatalogCache) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]bool)
	var categories []string
	for _, p := range c.products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		categories = append(categories, p.Category)
	}
	return categories
}

// Sorted returns a sorted copy of list; list itself is left untouched.
func (c *CatalogCache) Sorted(list []*entity.Product, key string) []*entity.Product {
	return SortProducts(list, key, c.tag)
}

// Page runs the full pipeline for one grid view.
func (c *CatalogCache) Page(state CatalogViewSnapshot, pageSize int) CatalogPage {
	filtered := c.Filtered(state.Filter)
	sorted := c.Sorted(filtered, state.Sort)
	return CatalogPage{
		Products:   Paginate(sorted, state.Page, pageSize),
		Filter:     state.Filter,
		Sort:       state.Sort,
		Page:       state.Page,
		PageSize:   pageSize,
		Total:      len(sorted),
		TotalPages: utils.TotalPages(len(sorted), pageSize),
		Categories: c.Categories(),
		Alert:      c.Alert(),
	}
}

// ApplyCreated appends a product the admin just created.
func (c *CatalogCache) ApplyCreated(p *entity.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(p.ID); i >= 0 {
		c.products[i] = p.Normalized()
		return
	}
	c.products = append(c.products, p.Normalized())
}

// ApplyUpdated merges patch into the cached product. It reports whether
// the id was cached.
func (c *CatalogCache) ApplyUpdated(id string, patch entity.ProductPatch) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.products[i] = patch.Apply(c.products[i]).Normalized()
	return true
}

func (c *CatalogCache) ApplyDeleted(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	products := make([]*entity.Product, 0, len(c.products)-1)
	products = append(products, c.products[:i]...)
	c.products = append(products, c.products[i+1:]...)
	return true
}

func (c *CatalogCache) indexOf(id string) int {
	for i, p := range c.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func FilterProducts(products []*entity.Product, filter string) []*entity.Product {
	out := make([]*entity.Product, 0, len(products))
	for _, p := range products {
		switch {
		case filter == "":
			out = append(out, p)
		case filter == entity.SaleFilter:
			if p.OnSale() {
				out = append(out, p)
			}
		case p.Category == filter:
			out = append(out, p)
		}
	}
	return out
}

// SortProducts is a stable sort on a copy. Names compare through a
// collator for tag, so accented names sort the way shoppers expect.
func SortProducts(list []*entity.Product, key string, tag language.Tag) []*entity.Product {
	out := append([]*entity.Product(nil), list...)

	switch key {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortName:
		collator := collate.New(tag, collate.IgnoreCase)
		sort.SliceStable(out, func(i, j int) bool {
			return collator.CompareString(out[i].Name, out[j].Name) < 0
		})
	}
	return out
}

// Paginate returns the page-th slice of size pageSize, clipped to bounds.
func Paginate(list []*entity.Product, page, pageSize int) []*entity.Product {
	start, end := utils.PageBounds(page, pageSize, len(list))
	return append([]*entity.Product(nil), list[start:end]...)
}

// CatalogPage is one evaluated pass of the filter/sort/page pipeline.
type CatalogPage struct {
	Products   []*entity.Product
	Filter     string
	Sort       string
	Page       int
	PageSize   int
	Total      int
	TotalPages int
	Categories []string
	Alert      error
}

// CatalogViewState is the grid state of one session.
type CatalogViewState struct {
	mu     sync.Mutex
	filter string
	sort   string
	page   int
}

type CatalogViewSnapshot struct {
	Filter string
	Sort   string
	Page   int
}

func NewCatalogViewState() *CatalogViewState {
	return &CatalogViewState{sort: SortNone, page: 1}
}

// SetFilter always restarts at page 1.
func (s *CatalogViewState) SetFilter(filter string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = filter
	s.page = 1
}

// SetSort keeps the current page, even if it is now past the end.
func (s *CatalogViewState) SetSort(key string) error {
	if !ValidSortKey(key) {
		return errors.Validation("Unknown sort order")
	}
	if key == "" {
		key = SortNone
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sort = key
	return nil
}

func (s *CatalogViewState) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = page
}

func (s *CatalogViewState) Snapshot() CatalogViewSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CatalogViewSnapshot{Filter: s.filter, Sort: s.sort, Page: s.page}
}
