package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusCaptured PaymentStatus = "CAPTURED"
	PaymentStatusFailed   PaymentStatus = "FAILED"
)

type PayoutStatus string

const (
	PayoutStatusPending PayoutStatus = "PENDING"
	PayoutStatusSettled PayoutStatus = "SETTLED"
	PayoutStatusFailed  PayoutStatus = "FAILED"
)

// Payment is one confirmation attempt against an order. Its payout list is
// computed once, at verification time, and only payout statuses change after.
type Payment struct {
	ID               string
	OrderID          string
	UserID           string
	Mode             PaymentMode
	GatewayOrderID   string
	GatewayPaymentID string
	Amount           int64
	Status           PaymentStatus
	Payouts          []PayoutEntry
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PayoutEntry is the amount owed to one vendor for their share of a paid
// order, net of platform commission. Amounts are minor units.
type PayoutEntry struct {
	ID         string
	PaymentID  string
	OrderID    string
	VendorID   string
	Gross      int64
	Commission int64
	Net        int64
	Status     PayoutStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
