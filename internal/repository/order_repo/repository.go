package order_repo

import (
	"context"
	"time"

	"marketplace/internal/domain"
)

type OrderRepository interface {
	Create(ctx context.Context, q domain.Querier, order *domain.Order) error
	GetByID(ctx context.Context, q domain.Querier, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, q domain.Querier, userID string, limit, offset int) ([]*domain.Order, error)
	ListByVendor(ctx context.Context, q domain.Querier, vendorID string, limit, offset int) ([]*domain.Order, error)

	// MarkPaid flips PENDING → PAID and records the confirmation id in one
	// compare-and-set statement. domain.ErrAlreadyConfirmed is returned when
	// the order exists but is no longer pending, which makes a replayed
	// confirmation a safe no-op for its caller.
	MarkPaid(ctx context.Context, q domain.Querier, orderID, confirmationID string, paidAt time.Time) error

	// UpdateStatus applies from → to with the same guarded-update idiom.
	UpdateStatus(ctx context.Context, q domain.Querier, orderID string, from, to domain.OrderStatus) error

	// VendorSales aggregates paid-or-later order lines for a vendor at read
	// time: number of distinct orders and revenue in minor units.
	VendorSales(ctx context.Context, q domain.Querier, vendorID string) (orders int64, revenue int64, err error)

	// HasPaidOrderLine reports whether the user owns a paid-or-later order
	// with the given id containing the exact (product, vendor) pair, and
	// returns the listing id of that line. Gates review creation.
	HasPaidOrderLine(ctx context.Context, q domain.Querier, userID, orderID, productID, vendorID string) (string, error)
}
