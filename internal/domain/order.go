package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type PaymentMode string

const (
	PaymentModeGateway PaymentMode = "GATEWAY"
	PaymentModeDemo    PaymentMode = "DEMO"
)

// OrderLine is an immutable snapshot of one purchased listing, captured at
// checkout time. Later listing price changes never alter historical orders.
type OrderLine struct {
	ID          string
	OrderID     string
	ListingID   string
	ProductID   string
	ProductName string
	VendorID    string
	// UnitPrice in minor units, as of checkout.
	UnitPrice int64
	Quantity  int64
}

func (l OrderLine) Subtotal() int64 { return l.UnitPrice * l.Quantity }

type Order struct {
	ID     string
	UserID string
	Lines  []OrderLine
	// Total in minor units; always Σ line subtotals.
	Total    int64
	Currency string
	Status   OrderStatus
	// Mode records the provider chosen at creation so verification dispatches
	// without re-deriving it from configuration.
	Mode PaymentMode
	// GatewayOrderID is the gateway's order id, or a locally generated demo id.
	GatewayOrderID string
	// ConfirmationID is set exactly once, when the order flips to PAID.
	ConfirmationID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	PaidAt         *time.Time
}

func NewOrder(id, userID, currency string, mode PaymentMode, lines []OrderLine) (*Order, error) {
	if id == "" || userID == "" || len(lines) == 0 {
		return nil, ErrCartEmpty
	}
	var total int64
	for i := range lines {
		if lines[i].Quantity <= 0 || lines[i].UnitPrice <= 0 {
			return nil, ErrInvalidCartLine
		}
		total += lines[i].Subtotal()
	}
	now := time.Now()
	return &Order{
		ID:        id,
		UserID:    userID,
		Lines:     lines,
		Total:     total,
		Currency:  currency,
		Status:    OrderStatusPending,
		Mode:      mode,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CanTransition reports whether the forward-only status machine allows
// from → to. Cancellation is the single side transition, and nothing ever
// returns to PENDING.
func CanTransition(from, to OrderStatus) bool {
	switch from {
	case OrderStatusPending:
		return to == OrderStatusPaid || to == OrderStatusCancelled
	case OrderStatusPaid:
		return to == OrderStatusShipped || to == OrderStatusCancelled
	case OrderStatusShipped:
		return to == OrderStatusDelivered
	default:
		return false
	}
}

func (o *Order) MarkShipped() error {
	if !CanTransition(o.Status, OrderStatusShipped) {
		return ErrInvalidTransition
	}
	o.Status = OrderStatusShipped
	o.UpdatedAt = time.Now()
	return nil
}

func (o *Order) MarkDelivered() error {
	if !CanTransition(o.Status, OrderStatusDelivered) {
		return ErrInvalidTransition
	}
	o.Status = OrderStatusDelivered
	o.UpdatedAt = time.Now()
	return nil
}

func (o *Order) MarkCancelled() error {
	if !CanTransition(o.Status, OrderStatusCancelled) {
		return ErrInvalidTransition
	}
	o.Status = OrderStatusCancelled
	o.UpdatedAt = time.Now()
	return nil
}

// IsPaidOrLater reports whether the order reached PAID at some point.
func (o *Order) IsPaidOrLater() bool {
	switch o.Status {
	case OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}
