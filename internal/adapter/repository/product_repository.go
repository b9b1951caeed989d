package repository

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
)

const (
	productsCollection = "products"
	variantsCollection = "variants"
)

type productRepository struct {
	store repository.DocumentStore
}

func NewProductRepository(store repository.DocumentStore) repository.ProductRepository {
	return &productRepository{
		store: store,
	}
}

func (r *productRepository) List(ctx context.Context) ([]*entity.Product, error) {
	docs, err := r.store.GetAll(ctx, productsCollection)
	if err != nil {
		return nil, err
	}

	products := make([]*entity.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, decodeProduct(doc))
	}
	return products, nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	doc, err := r.store.GetByID(ctx, productsCollection, id)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, errors.NotFound("Product", err)
		}
		return nil, err
	}
	return decodeProduct(*doc), nil
}

func (r *productRepository) ListVariants(ctx context.Context, productID string) ([]entity.Variant, error) {
	docs, err := r.store.GetSubcollection(ctx, productsCollection, productID, variantsCollection)
	if err != nil {
		return nil, err
	}

	variants := make([]entity.Variant, 0, len(docs))
	for _, doc := range docs {
		variants = append(variants, decodeVariant(doc))
	}
	return variants, nil
}

func (r *productRepository) ListByCategory(ctx context.Context, category string, limit int) ([]*entity.Product, error) {
	docs, err := r.store.QueryByField(ctx, productsCollection, fieldCategory, category, limit)
	if err != nil {
		return nil, err
	}

	products := make([]*entity.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, decodeProduct(doc))
	}
	return products, nil
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) (string, error) {
	return r.store.Add(ctx, productsCollection, encodeProduct(product))
}

func (r *productRepository) Update(ctx context.Context, id string, patch entity.ProductPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	err := r.store.Update(ctx, productsCollection, id, encodePatch(patch))
	if errors.Is(err, errors.CodeNotFound) {
		return errors.NotFound("Product", err)
	}
	return err
}

// Delete removes the product document. Variant lines are removed first,
// best effort: the store does not cascade into subcollections.
func (r *productRepository) Delete(ctx context.Context, id string) error {
	variants, err := r.store.GetSubcollection(ctx, productsCollection, id, variantsCollection)
	if err != nil {
		logger.Warn("Failed to list variants of deleted product %s: %v", id, err)
	}
	path := SubcollectionPath(productsCollection, id, variantsCollection)
	for _, v := range variants {
		if err := r.store.Delete(ctx, path, v.ID); err != nil {
			logger.Warn("Failed to delete variant %s of product %s: %v", v.ID, id, err)
		}
	}

	return r.store.Delete(ctx, productsCollection, id)
}
