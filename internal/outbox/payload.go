package outbox

import (
	"encoding/json"
	"time"

	"marketplace/internal/domain"
)

const (
	MessageTypePaymentConfirmed = "payment.confirmed"
	MessageTypeOrderCancelled   = "order.cancelled"
	MessageTypeStockReconcile   = "stock.reconcile"
)

type PayoutEventEntry struct {
	PayoutID   string `json:"payout_id"`
	VendorID   string `json:"vendor_id"`
	Gross      int64  `json:"gross"`
	Commission int64  `json:"commission"`
	Net        int64  `json:"net"`
}

// PaymentConfirmedEvent is published after the confirmation transaction
// commits; downstream settlement flips each payout to its terminal status.
type PaymentConfirmedEvent struct {
	OrderID   string             `json:"order_id"`
	PaymentID string             `json:"payment_id"`
	UserID    string             `json:"user_id"`
	Mode      string             `json:"mode"`
	Amount    int64              `json:"amount"`
	Currency  string             `json:"currency"`
	Payouts   []PayoutEventEntry `json:"payouts"`
	Timestamp time.Time          `json:"timestamp"`
}

type OrderCancelledEvent struct {
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// StockReconcileEvent flags an order whose confirmation was rolled back
// because a line's stock no longer covered it.
type StockReconcileEvent struct {
	OrderID   string    `json:"order_id"`
	ListingID string    `json:"listing_id"`
	Quantity  int64     `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

func PreparePaymentConfirmedPayload(payment *domain.Payment, currency string, eventTime time.Time) ([]byte, error) {
	event := PaymentConfirmedEvent{
		OrderID:   payment.OrderID,
		PaymentID: payment.ID,
		UserID:    payment.UserID,
		Mode:      string(payment.Mode),
		Amount:    payment.Amount,
		Currency:  currency,
		Timestamp: eventTime,
	}
	for _, p := range payment.Payouts {
		event.Payouts = append(event.Payouts, PayoutEventEntry{
			PayoutID:   p.ID,
			VendorID:   p.VendorID,
			Gross:      p.Gross,
			Commission: p.Commission,
			Net:        p.Net,
		})
	}
	return json.Marshal(event)
}

func PrepareOrderCancelledPayload(orderID, userID string, eventTime time.Time) ([]byte, error) {
	return json.Marshal(OrderCancelledEvent{
		OrderID:   orderID,
		UserID:    userID,
		Timestamp: eventTime,
	})
}

func PrepareStockReconcilePayload(orderID, listingID string, quantity int64, eventTime time.Time) ([]byte, error) {
	return json.Marshal(StockReconcileEvent{
		OrderID:   orderID,
		ListingID: listingID,
		Quantity:  quantity,
		Timestamp: eventTime,
	})
}
