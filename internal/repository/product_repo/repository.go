package product_repo

import (
	"context"

	"marketplace/internal/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, q domain.Querier, p *domain.Product) error
	GetByID(ctx context.Context, q domain.Querier, id string) (*domain.Product, error)
	List(ctx context.Context, q domain.Querier, limit, offset int) ([]*domain.Product, error)
}
