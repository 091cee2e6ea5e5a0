package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"marketplace/internal/app/payouts"
	"marketplace/internal/cache"
	"marketplace/internal/domain"
	"marketplace/internal/outbox"
	"marketplace/internal/payment"
	"marketplace/internal/repository/cart_repo"
	"marketplace/internal/repository/listing_repo"
	"marketplace/internal/repository/order_repo"
	"marketplace/internal/repository/outbox_repo"
	"marketplace/internal/repository/payment_repo"
	"marketplace/internal/util"
)

type OrderService interface {
	// CreateOrder converts the user's cart into a pending order, re-validating
	// every line against current listings. Stock is not decremented here.
	CreateOrder(ctx context.Context, userID string) (*CreateOrderResponse, error)

	// VerifyPayment confirms a gateway-mode order after checking the
	// client-supplied signature. A replayed confirmation is a no-op.
	VerifyPayment(ctx context.Context, userID string, req *VerifyPaymentRequest) (*OrderResponse, error)

	// DemoCheckout confirms a demo-mode order; the authenticated call itself
	// is the confirmation.
	DemoCheckout(ctx context.Context, userID, orderID string) (*OrderResponse, error)

	GetOrder(ctx context.Context, userID, orderID string) (*OrderResponse, error)
	ListMine(ctx context.Context, userID string, limit, offset int) ([]*OrderResponse, error)
	Cancel(ctx context.Context, userID, orderID string) error
	MarkDelivered(ctx context.Context, userID, orderID string) error

	ListVendorOrders(ctx context.Context, vendorID string, limit, offset int) ([]*OrderResponse, error)
	ListVendorPayouts(ctx context.Context, vendorID string, limit, offset int) ([]*PayoutResponse, error)
	MarkShipped(ctx context.Context, vendorID, orderID string) error
}

type orderService struct {
	db             *sql.DB
	orderRepo      order_repo.OrderRepository
	listingRepo    listing_repo.ListingRepository
	paymentRepo    payment_repo.PaymentRepository
	outboxRepo     outbox_repo.OutboxRepository
	cartRepo       cart_repo.CartRepository
	cache          cache.Cache
	gateway        payment.Provider
	demo           payment.Provider
	gatewayKeyID   string
	currency       string
	eventsTopic    string
	commissionRate decimal.Decimal
	logger         *zap.Logger
}

func NewOrderService(
	db *sql.DB,
	orderRepo order_repo.OrderRepository,
	listingRepo listing_repo.ListingRepository,
	paymentRepo payment_repo.PaymentRepository,
	outboxRepo outbox_repo.OutboxRepository,
	cartRepo cart_repo.CartRepository,
	responseCache cache.Cache,
	gateway payment.Provider,
	gatewayKeyID string,
	currency string,
	eventsTopic string,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		db:             db,
		orderRepo:      orderRepo,
		listingRepo:    listingRepo,
		paymentRepo:    paymentRepo,
		outboxRepo:     outboxRepo,
		cartRepo:       cartRepo,
		cache:          responseCache,
		gateway:        gateway,
		demo:           payment.NewDemoProvider(),
		gatewayKeyID:   gatewayKeyID,
		currency:       currency,
		eventsTopic:    eventsTopic,
		commissionRate: payouts.DefaultCommissionRate,
		logger:         logger,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, userID string) (*CreateOrderResponse, error) {
	cartLines, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load cart for checkout", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if len(cartLines) == 0 {
		return nil, domain.ErrCartEmpty
	}

	orderID := util.GenerateUUID()
	lines := make([]domain.OrderLine, 0, len(cartLines))
	for _, cl := range cartLines {
		listing, err := s.listingRepo.GetByID(ctx, s.db, cl.ListingID)
		if err != nil {
			return nil, err
		}
		if !listing.Active {
			return nil, domain.ErrListingInactive
		}
		if listing.Stock < cl.Quantity {
			return nil, domain.ErrOutOfStock
		}
		lines = append(lines, domain.OrderLine{
			ID:          util.GenerateUUID(),
			OrderID:     orderID,
			ListingID:   listing.ID,
			ProductID:   cl.ProductID,
			ProductName: cl.ProductName,
			VendorID:    listing.VendorID,
			UnitPrice:   listing.Price,
			Quantity:    cl.Quantity,
		})
	}

	provider, gatewayOrder, err := s.openGatewayOrder(ctx, orderID, lines)
	if err != nil {
		return nil, err
	}

	order, err := domain.NewOrder(orderID, userID, s.currency, provider.Mode(), lines)
	if err != nil {
		return nil, err
	}
	order.GatewayOrderID = gatewayOrder.ID

	if err := s.orderRepo.Create(ctx, s.db, order); err != nil {
		s.logger.Error("Failed to persist order", zap.String("order_id", order.ID), zap.Error(err))
		return nil, err
	}
	s.cache.DeletePrefix(cache.UserOrdersPrefix(userID))

	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.String("mode", string(order.Mode)),
		zap.Int64("amount", order.Total))

	resp := &CreateOrderResponse{
		OrderID:  order.ID,
		Amount:   order.Total,
		Currency: order.Currency,
	}
	if order.Mode == domain.PaymentModeGateway {
		resp.GatewayOrderID = order.GatewayOrderID
		resp.GatewayKeyID = s.gatewayKeyID
	} else {
		resp.DemoMode = true
	}
	return resp, nil
}

// openGatewayOrder picks the payment path for this checkout. Gateway failures
// fall back to demo mode instead of surfacing to the caller.
func (s *orderService) openGatewayOrder(ctx context.Context, orderID string, lines []domain.OrderLine) (payment.Provider, *payment.GatewayOrder, error) {
	var total int64
	for _, l := range lines {
		total += l.Subtotal()
	}

	if s.gateway != nil {
		gatewayOrder, err := s.gateway.CreateOrder(ctx, total, s.currency, orderID)
		if err == nil {
			return s.gateway, gatewayOrder, nil
		}
		s.logger.Warn("Gateway order creation failed, falling back to demo mode",
			zap.String("order_id", orderID), zap.Error(err))
	}

	gatewayOrder, err := s.demo.CreateOrder(ctx, total, s.currency, orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open demo order: %w", err)
	}
	return s.demo, gatewayOrder, nil
}

func (s *orderService) VerifyPayment(ctx context.Context, userID string, req *VerifyPaymentRequest) (*OrderResponse, error) {
	order, err := s.ownedOrder(ctx, userID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Mode != domain.PaymentModeGateway || s.gateway == nil {
		return nil, domain.ErrInvalidTransition
	}
	if order.GatewayOrderID != req.GatewayOrderID {
		return nil, domain.ErrSignatureMismatch
	}

	if err := s.gateway.VerifySignature(req.GatewayOrderID, req.GatewayPaymentID, req.GatewaySignature); err != nil {
		s.logger.Warn("Payment signature mismatch, order stays pending",
			zap.String("order_id", order.ID))
		return nil, err
	}

	return s.confirmOrder(ctx, order, req.GatewayPaymentID)
}

func (s *orderService) DemoCheckout(ctx context.Context, userID, orderID string) (*OrderResponse, error) {
	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Mode != domain.PaymentModeDemo {
		return nil, domain.ErrInvalidTransition
	}
	return s.confirmOrder(ctx, order, fmt.Sprintf("demo_pay_%s", util.GenerateUUID()))
}

// confirmOrder is the single confirmation unit: status flip, stock decrements,
// payment and payout rows, and the confirmation event all commit in one
// transaction or not at all.
func (s *orderService) confirmOrder(ctx context.Context, order *domain.Order, confirmationID string) (*OrderResponse, error) {
	if order.Status != domain.OrderStatusPending {
		// Replayed confirmation; report current state without touching stock.
		if order.IsPaidOrLater() {
			return mapOrderToResponse(order), nil
		}
		return nil, domain.ErrInvalidTransition
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin confirmation transaction: %w", err)
	}
	defer tx.Rollback()

	paidAt := time.Now()
	if err := s.orderRepo.MarkPaid(ctx, tx, order.ID, confirmationID, paidAt); err != nil {
		if errors.Is(err, domain.ErrAlreadyConfirmed) {
			s.logger.Info("Order already confirmed, treating as replay", zap.String("order_id", order.ID))
			confirmed, getErr := s.orderRepo.GetByID(ctx, s.db, order.ID)
			if getErr != nil {
				return nil, getErr
			}
			return mapOrderToResponse(confirmed), nil
		}
		return nil, err
	}

	// Decrement in a fixed listing order so concurrent confirmations that
	// share listings take their row locks in the same sequence and cannot
	// deadlock each other.
	lines := make([]domain.OrderLine, len(order.Lines))
	copy(lines, order.Lines)
	sort.Slice(lines, func(i, j int) bool { return lines[i].ListingID < lines[j].ListingID })

	for _, line := range lines {
		if err := s.listingRepo.DecrementStock(ctx, tx, line.ListingID, line.Quantity); err != nil {
			s.logger.Warn("Stock no longer covers confirmed payment, rolling back",
				zap.String("order_id", order.ID),
				zap.String("listing_id", line.ListingID),
				zap.Int64("quantity", line.Quantity),
				zap.Error(err))
			s.emitStockReconcile(ctx, order.ID, line.ListingID, line.Quantity)
			return nil, err
		}
	}

	shares := payouts.Compute(order.Lines, s.commissionRate)
	pmt := &domain.Payment{
		ID:               util.GenerateUUID(),
		OrderID:          order.ID,
		UserID:           order.UserID,
		Mode:             order.Mode,
		GatewayOrderID:   order.GatewayOrderID,
		GatewayPaymentID: confirmationID,
		Amount:           order.Total,
		Status:           domain.PaymentStatusCaptured,
		CreatedAt:        paidAt,
		UpdatedAt:        paidAt,
	}
	for _, share := range shares {
		pmt.Payouts = append(pmt.Payouts, domain.PayoutEntry{
			ID:         util.GenerateUUID(),
			PaymentID:  pmt.ID,
			OrderID:    order.ID,
			VendorID:   share.VendorID,
			Gross:      share.Gross,
			Commission: share.Commission,
			Net:        share.Net,
			Status:     domain.PayoutStatusPending,
			CreatedAt:  paidAt,
			UpdatedAt:  paidAt,
		})
	}
	if err := s.paymentRepo.Create(ctx, tx, pmt); err != nil {
		return nil, err
	}

	payload, err := outbox.PreparePaymentConfirmedPayload(pmt, order.Currency, paidAt)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare confirmation event: %w", err)
	}
	msg := &domain.OutboxMessage{
		ID:            util.GenerateUUID(),
		AggregateID:   order.ID,
		AggregateType: "order",
		MessageType:   outbox.MessageTypePaymentConfirmed,
		Topic:         s.eventsTopic,
		Key:           order.ID,
		Payload:       payload,
		Status:        domain.OutboxStatusPending,
		CreatedAt:     paidAt,
	}
	if err := s.outboxRepo.CreateMessage(ctx, tx, msg); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit confirmation transaction: %w", err)
	}

	order.Status = domain.OrderStatusPaid
	order.ConfirmationID = confirmationID
	order.PaidAt = &paidAt
	order.UpdatedAt = paidAt

	if err := s.cartRepo.Clear(ctx, order.UserID); err != nil {
		s.logger.Warn("Failed to clear cart after confirmation", zap.String("user_id", order.UserID), zap.Error(err))
	}
	s.cache.DeletePrefix(cache.ProductPrefix)
	s.cache.DeletePrefix(cache.VendorPrefix)
	s.cache.DeletePrefix(cache.UserOrdersPrefix(order.UserID))

	s.logger.Info("Payment confirmed",
		zap.String("order_id", order.ID),
		zap.String("payment_id", pmt.ID),
		zap.Int("payout_entries", len(pmt.Payouts)))

	return mapOrderToResponse(order), nil
}

// emitStockReconcile records a reconcile event outside the rolled-back
// confirmation transaction so operators can chase the failed order.
func (s *orderService) emitStockReconcile(ctx context.Context, orderID, listingID string, quantity int64) {
	payload, err := outbox.PrepareStockReconcilePayload(orderID, listingID, quantity, time.Now())
	if err != nil {
		s.logger.Error("Failed to prepare reconcile event", zap.String("order_id", orderID), zap.Error(err))
		return
	}
	msg := &domain.OutboxMessage{
		ID:            util.GenerateUUID(),
		AggregateID:   orderID,
		AggregateType: "order",
		MessageType:   outbox.MessageTypeStockReconcile,
		Topic:         s.eventsTopic,
		Key:           orderID,
		Payload:       payload,
		Status:        domain.OutboxStatusPending,
		CreatedAt:     time.Now(),
	}
	if err := s.outboxRepo.CreateMessage(ctx, s.db, msg); err != nil {
		s.logger.Error("Failed to record reconcile event", zap.String("order_id", orderID), zap.Error(err))
	}
}

func (s *orderService) GetOrder(ctx context.Context, userID, orderID string) (*OrderResponse, error) {
	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return mapOrderToResponse(order), nil
}

func (s *orderService) ListMine(ctx context.Context, userID string, limit, offset int) ([]*OrderResponse, error) {
	key := cache.UserOrdersKey(userID, limit, offset)
	if cached, ok := s.cache.Get(key); ok {
		if responses, ok := cached.([]*OrderResponse); ok {
			return responses, nil
		}
	}

	ordersList, err := s.orderRepo.ListByUser(ctx, s.db, userID, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list orders for user", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	responses := mapOrdersToResponse(ordersList)
	s.cache.Set(key, responses, 0)
	return responses, nil
}

func (s *orderService) Cancel(ctx context.Context, userID, orderID string) error {
	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return err
	}
	from := order.Status
	if err := order.MarkCancelled(); err != nil {
		return err
	}
	if err := s.orderRepo.UpdateStatus(ctx, s.db, orderID, from, domain.OrderStatusCancelled); err != nil {
		return err
	}

	payload, err := outbox.PrepareOrderCancelledPayload(orderID, userID, time.Now())
	if err == nil {
		msg := &domain.OutboxMessage{
			ID:            util.GenerateUUID(),
			AggregateID:   orderID,
			AggregateType: "order",
			MessageType:   outbox.MessageTypeOrderCancelled,
			Topic:         s.eventsTopic,
			Key:           orderID,
			Payload:       payload,
			Status:        domain.OutboxStatusPending,
			CreatedAt:     time.Now(),
		}
		if err := s.outboxRepo.CreateMessage(ctx, s.db, msg); err != nil {
			s.logger.Warn("Failed to record cancellation event", zap.String("order_id", orderID), zap.Error(err))
		}
	}

	s.cache.DeletePrefix(cache.UserOrdersPrefix(userID))
	s.logger.Info("Order cancelled", zap.String("order_id", orderID), zap.String("from", string(from)))
	return nil
}

func (s *orderService) MarkDelivered(ctx context.Context, userID, orderID string) error {
	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return err
	}
	if err := order.MarkDelivered(); err != nil {
		return err
	}
	if err := s.orderRepo.UpdateStatus(ctx, s.db, orderID, domain.OrderStatusShipped, domain.OrderStatusDelivered); err != nil {
		return err
	}
	s.cache.DeletePrefix(cache.UserOrdersPrefix(userID))
	return nil
}

func (s *orderService) ListVendorOrders(ctx context.Context, vendorID string, limit, offset int) ([]*OrderResponse, error) {
	ordersList, err := s.orderRepo.ListByVendor(ctx, s.db, vendorID, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list orders for vendor", zap.String("vendor_id", vendorID), zap.Error(err))
		return nil, err
	}
	return mapOrdersToResponse(ordersList), nil
}

func (s *orderService) ListVendorPayouts(ctx context.Context, vendorID string, limit, offset int) ([]*PayoutResponse, error) {
	entries, err := s.paymentRepo.ListPayoutsByVendor(ctx, s.db, vendorID, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list payouts for vendor", zap.String("vendor_id", vendorID), zap.Error(err))
		return nil, err
	}
	responses := make([]*PayoutResponse, len(entries))
	for i, p := range entries {
		responses[i] = &PayoutResponse{
			ID:         p.ID,
			OrderID:    p.OrderID,
			Gross:      p.Gross,
			Commission: p.Commission,
			Net:        p.Net,
			Status:     string(p.Status),
			CreatedAt:  p.CreatedAt,
		}
	}
	return responses, nil
}

func (s *orderService) MarkShipped(ctx context.Context, vendorID, orderID string) error {
	order, err := s.orderRepo.GetByID(ctx, s.db, orderID)
	if err != nil {
		return err
	}
	vendorInOrder := false
	for _, line := range order.Lines {
		if line.VendorID == vendorID {
			vendorInOrder = true
			break
		}
	}
	if !vendorInOrder {
		return domain.ErrForbidden
	}
	if err := order.MarkShipped(); err != nil {
		return err
	}
	if err := s.orderRepo.UpdateStatus(ctx, s.db, orderID, domain.OrderStatusPaid, domain.OrderStatusShipped); err != nil {
		return err
	}
	s.cache.DeletePrefix(cache.UserOrdersPrefix(order.UserID))
	return nil
}

func (s *orderService) ownedOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrNotOrderOwner
	}
	return order, nil
}

func mapOrderToResponse(order *domain.Order) *OrderResponse {
	resp := &OrderResponse{
		ID:             order.ID,
		UserID:         order.UserID,
		Total:          order.Total,
		Currency:       order.Currency,
		Status:         string(order.Status),
		Mode:           string(order.Mode),
		GatewayOrderID: order.GatewayOrderID,
		ConfirmationID: order.ConfirmationID,
		CreatedAt:      order.CreatedAt,
		PaidAt:         order.PaidAt,
	}
	for _, line := range order.Lines {
		resp.Lines = append(resp.Lines, OrderLineResponse{
			ListingID:   line.ListingID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			VendorID:    line.VendorID,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			Subtotal:    line.Subtotal(),
		})
	}
	return resp
}

func mapOrdersToResponse(ordersList []*domain.Order) []*OrderResponse {
	responses := make([]*OrderResponse, len(ordersList))
	for i, order := range ordersList {
		responses[i] = mapOrderToResponse(order)
	}
	return responses
}
