package listing_repo

import (
	"context"

	"marketplace/internal/domain"
)

type ListingRepository interface {
	Create(ctx context.Context, q domain.Querier, l *domain.Listing) error
	GetByID(ctx context.Context, q domain.Querier, id string) (*domain.Listing, error)
	ListByProduct(ctx context.Context, q domain.Querier, productID string) ([]*domain.Listing, error)
	ListByVendor(ctx context.Context, q domain.Querier, vendorID string) ([]*domain.Listing, error)
	Update(ctx context.Context, q domain.Querier, l *domain.Listing) error
	CountByVendor(ctx context.Context, q domain.Querier, vendorID string) (int64, error)

	// DecrementStock atomically subtracts qty when current stock covers it.
	// Returns domain.ErrOutOfStock when it does not, so a concurrent checkout
	// that lost the race fails instead of driving stock negative.
	DecrementStock(ctx context.Context, q domain.Querier, listingID string, qty int64) error
}
