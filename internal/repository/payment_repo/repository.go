package payment_repo

import (
	"context"

	"marketplace/internal/domain"
)

type PaymentRepository interface {
	// Create persists a payment and its payout entries. The payout list is
	// immutable afterwards except for payout-status updates.
	Create(ctx context.Context, q domain.Querier, payment *domain.Payment) error
	GetByOrderID(ctx context.Context, q domain.Querier, orderID string) (*domain.Payment, error)
	ListPayoutsByVendor(ctx context.Context, q domain.Querier, vendorID string, limit, offset int) ([]*domain.PayoutEntry, error)

	// UpdatePayoutStatus flips a PENDING payout to the given terminal status
	// with a guarded update; a replayed settlement message is a no-op.
	UpdatePayoutStatus(ctx context.Context, q domain.Querier, payoutID string, status domain.PayoutStatus) error
}
