package review_repo

import (
	"context"

	"marketplace/internal/domain"
)

type ReviewRepository interface {
	// Create relies on the (user_id, order_id, product_id) unique constraint
	// and maps its violation to domain.ErrDuplicateReview, so concurrent
	// duplicate submissions fail deterministically.
	Create(ctx context.Context, q domain.Querier, review *domain.Review) error
	GetByID(ctx context.Context, q domain.Querier, id string) (*domain.Review, error)
	ListByProduct(ctx context.Context, q domain.Querier, productID string, limit, offset int) ([]*domain.Review, error)
	Update(ctx context.Context, q domain.Querier, review *domain.Review) error
	Delete(ctx context.Context, q domain.Querier, id string) error

	// AggregateForProduct returns average rating and review count.
	AggregateForProduct(ctx context.Context, q domain.Querier, productID string) (float64, int64, error)
	VendorAverageRating(ctx context.Context, q domain.Querier, vendorID string) (float64, error)
}
