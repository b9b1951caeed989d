package repository

import (
	"context"

	"storefront/internal/domain/entity"
)

type ProductRepository interface {
	List(ctx context.Context) ([]*entity.Product, error)
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	ListVariants(ctx context.Context, productID string) ([]entity.Variant, error)
	ListByCategory(ctx context.Context, category string, limit int) ([]*entity.Product, error)
	Create(ctx context.Context, product *entity.Product) (string, error)
	Update(ctx context.Context, id string, patch entity.ProductPatch) error
	Delete(ctx context.Context, id string) error
}
