package payment

import (
	"context"

	"marketplace/internal/domain"
)

// GatewayOrder is the gateway's handle for a checkout, created before the
// customer pays.
type GatewayOrder struct {
	ID       string
	Amount   int64
	Currency string
}

// Provider abstracts the payment path selected at order-creation time.
// The chosen mode is recorded on the order so verification dispatches to
// the same provider without re-deriving it from configuration.
type Provider interface {
	Mode() domain.PaymentMode

	// CreateOrder registers the amount with the gateway and returns its
	// order handle. Amount is in minor currency units.
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*GatewayOrder, error)

	// VerifySignature checks the client-supplied signature for the given
	// gateway order and payment IDs. Returns domain.ErrSignatureMismatch
	// when the signature does not match.
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) error
}
