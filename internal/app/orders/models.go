package orders

import "time"

type CreateOrderResponse struct {
	OrderID        string `json:"orderId"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	GatewayOrderID string `json:"gatewayOrderId,omitempty"`
	GatewayKeyID   string `json:"gatewayKeyId,omitempty"`
	DemoMode       bool   `json:"demoMode,omitempty"`
}

type VerifyPaymentRequest struct {
	OrderID          string `json:"orderId"`
	GatewayOrderID   string `json:"razorpay_order_id"`
	GatewayPaymentID string `json:"razorpay_payment_id"`
	GatewaySignature string `json:"razorpay_signature"`
}

type DemoCheckoutRequest struct {
	OrderID string `json:"orderId"`
}

type OrderLineResponse struct {
	ListingID   string `json:"listing_id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	VendorID    string `json:"vendor_id"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int64  `json:"quantity"`
	Subtotal    int64  `json:"subtotal"`
}

type OrderResponse struct {
	ID             string              `json:"id"`
	UserID         string              `json:"user_id"`
	Lines          []OrderLineResponse `json:"lines"`
	Total          int64               `json:"total"`
	Currency       string              `json:"currency"`
	Status         string              `json:"status"`
	Mode           string              `json:"mode"`
	GatewayOrderID string              `json:"gateway_order_id,omitempty"`
	ConfirmationID string              `json:"confirmation_id,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	PaidAt         *time.Time          `json:"paid_at,omitempty"`
}

type PayoutResponse struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"order_id"`
	Gross      int64     `json:"gross"`
	Commission int64     `json:"commission"`
	Net        int64     `json:"net"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}
