package cart_repo

import (
	"context"

	"marketplace/internal/domain"
)

type CartRepository interface {
	// Add merges quantity when the listing is already in the cart.
	Add(ctx context.Context, userID string, line domain.CartLine) error
	Get(ctx context.Context, userID string) ([]domain.CartLine, error)
	SetQuantity(ctx context.Context, userID, listingID string, quantity int64) error
	Remove(ctx context.Context, userID, listingID string) error
	Clear(ctx context.Context, userID string) error
}
