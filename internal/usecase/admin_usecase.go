package usecase

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
)

// rehydrateTimeout bounds the reconciling fetch that follows a mutation.
const rehydrateTimeout = 30 * time.Second

type ProductInput struct {
	Name        string            `json:"name" validate:"required"`
	Category    string            `json:"category" validate:"required"`
	Description string            `json:"description"`
	Price       float64           `json:"price" validate:"gte=0"`
	OldPrice    *float64          `json:"old_price,omitempty" validate:"omitempty,gte=0"`
	Badge       string            `json:"badge"`
	Images      []entity.ImageRef `json:"images"`
	Colors      []entity.Color    `json:"colors"`
	Sizes       []string          `json:"sizes"`
}

func (in ProductInput) product() *entity.Product {
	p := &entity.Product{
		Name:        strings.TrimSpace(in.Name),
		Category:    strings.TrimSpace(in.Category),
		Description: in.Description,
		Price:       in.Price,
		Badge:       in.Badge,
		Images:      append([]entity.ImageRef(nil), in.Images...),
		Colors:      append([]entity.Color(nil), in.Colors...),
		Sizes:       append([]string(nil), in.Sizes...),
	}
	if in.OldPrice != nil && *in.OldPrice > 0 {
		old := *in.OldPrice
		p.OldPrice = &old
	}
	return p
}

// AdminMutator writes products through the remote store, mirrors each
// change into the catalog cache at once and then reconciles with a full
// background re-hydrate.
type AdminMutator struct {
	repo     repository.ProductRepository
	cache    *CatalogCache
	files    service.FileUploadService
	notifier service.Notifier

	pending sync.WaitGroup
}

func NewAdminMutator(
	repo repository.ProductRepository,
	cache *CatalogCache,
	files service.FileUploadService,
	notifier service.Notifier,
) *AdminMutator {
	if notifier == nil {
		notifier = service.NopNotifier{}
	}
	return &AdminMutator{
		repo:     repo,
		cache:    cache,
		files:    files,
		notifier: notifier,
	}
}

func (m *AdminMutator) Create(ctx context.Context, input ProductInput) (*entity.Product, error) {
	if err := validateProduct(input.Name, input.Price, input.OldPrice, input.Images); err != nil {
		return nil, err
	}

	product := input.product()
	id, err := m.repo.Create(ctx, product)
	if err != nil {
		return nil, err
	}
	product.ID = id
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	m.cache.ApplyCreated(product)
	logger.Info("Product created: id=%s name=%s", id, product.Name)

	m.afterMutation(id)
	return product, nil
}

// Update applies a partial change. Fields absent from patch keep their
// current value.
func (m *AdminMutator) Update(ctx context.Context, id string, patch entity.ProductPatch) (*entity.Product, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, errors.Validation("Name is required")
	}
	if patch.Price != nil && (*patch.Price < 0 || math.IsNaN(*patch.Price) || math.IsInf(*patch.Price, 0)) {
		return nil, errors.Validation("Price must be a non-negative number")
	}
	if patch.Images != nil && len(patch.Images) == 0 {
		return nil, errors.Validation("A product needs at least one image")
	}

	if err := m.repo.Update(ctx, id, patch); err != nil {
		return nil, err
	}

	if !m.cache.ApplyUpdated(id, patch) {
		logger.Warn("Updated product %s was not cached; waiting for re-hydrate", id)
	}
	logger.Info("Product updated: id=%s", id)

	m.afterMutation(id)

	if product, ok := m.cache.Get(id); ok {
		return product, nil
	}
	return m.repo.GetByID(ctx, id)
}

// Delete removes the product and, best effort, the images it had stored
// in our bucket.
func (m *AdminMutator) Delete(ctx context.Context, id string) error {
	product, cached := m.cache.Get(id)
	if !cached {
		p, err := m.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		product = p
	}

	if err := m.repo.Delete(ctx, id); err != nil {
		return err
	}

	m.cache.ApplyDeleted(id)
	logger.Info("Product deleted: id=%s", id)

	if product != nil {
		m.deleteOwnedImages(ctx, product)
	}

	m.afterMutation(id)
	return nil
}

func (m *AdminMutator) deleteOwnedImages(ctx context.Context, product *entity.Product) {
	if m.files == nil {
		return
	}

	refs := append([]entity.ImageRef(nil), product.Images...)
	for _, c := range product.Colors {
		refs = append(refs, c.Images...)
	}

	for _, ref := range refs {
		if !ref.IsURL() || !m.files.OwnsURL(ref.Value) {
			continue
		}
		if err := m.files.DeleteFile(ctx, ref.Value); err != nil {
			logger.Warn("Failed to delete image %s of product %s: %v", ref.Value, product.ID, err)
		}
	}
}

func (m *AdminMutator) afterMutation(id string) {
	m.notifier.Broadcast(service.ViewEvent{Type: service.EventCatalogChanged, ProductID: id})

	m.pending.Add(1)
	go func() {
		defer m.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), rehydrateTimeout)
		defer cancel()

		if err := m.cache.Hydrate(ctx); err != nil {
			logger.Warn("Re-hydrate after mutating %s failed: %v", id, err)
			return
		}
		m.notifier.Broadcast(service.ViewEvent{Type: service.EventCatalogChanged})
	}()
}

// Wait blocks until every background re-hydrate has finished.
func (m *AdminMutator) Wait() {
	m.pending.Wait()
}

func validateProduct(name string, price float64, oldPrice *float64, images []entity.ImageRef) error {
	if strings.TrimSpace(name) == "" {
		return errors.Validation("Name is required")
	}
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return errors.Validation("Price must be a non-negative number")
	}
	if oldPrice != nil && (math.IsNaN(*oldPrice) || math.IsInf(*oldPrice, 0)) {
		return errors.Validation("Old price must be a number")
	}
	if len(images) == 0 {
		return errors.Validation("A product needs at least one image")
	}
	return nil
}
