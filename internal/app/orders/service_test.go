package orders

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"marketplace/internal/cache"
	"marketplace/internal/domain"
	"marketplace/internal/payment"
)

type fakeOrderRepo struct {
	orders map[string]*domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*domain.Order)}
}

func (f *fakeOrderRepo) Create(_ context.Context, _ domain.Querier, order *domain.Order) error {
	cp := *order
	f.orders[order.ID] = &cp
	return nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, _ domain.Querier, id string) (*domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) ListByUser(_ context.Context, _ domain.Querier, userID string, _, _ int) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) ListByVendor(_ context.Context, _ domain.Querier, vendorID string, _, _ int) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range f.orders {
		for _, l := range o.Lines {
			if l.VendorID == vendorID {
				cp := *o
				out = append(out, &cp)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) MarkPaid(_ context.Context, _ domain.Querier, orderID, confirmationID string, paidAt time.Time) error {
	o, ok := f.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if o.Status != domain.OrderStatusPending {
		return domain.ErrAlreadyConfirmed
	}
	o.Status = domain.OrderStatusPaid
	o.ConfirmationID = confirmationID
	o.PaidAt = &paidAt
	return nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, _ domain.Querier, orderID string, from, to domain.OrderStatus) error {
	o, ok := f.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if o.Status != from {
		return domain.ErrInvalidTransition
	}
	o.Status = to
	return nil
}

func (f *fakeOrderRepo) VendorSales(_ context.Context, _ domain.Querier, _ string) (int64, int64, error) {
	return 0, 0, nil
}

func (f *fakeOrderRepo) HasPaidOrderLine(_ context.Context, _ domain.Querier, _, _, _, _ string) (string, error) {
	return "", domain.ErrReviewNotAllowed
}

type fakeListingRepo struct {
	listings   map[string]*domain.Listing
	decrements []string
}

func newFakeListingRepo(listings ...*domain.Listing) *fakeListingRepo {
	f := &fakeListingRepo{listings: make(map[string]*domain.Listing)}
	for _, l := range listings {
		f.listings[l.ID] = l
	}
	return f
}

func (f *fakeListingRepo) Create(_ context.Context, _ domain.Querier, l *domain.Listing) error {
	f.listings[l.ID] = l
	return nil
}

func (f *fakeListingRepo) GetByID(_ context.Context, _ domain.Querier, id string) (*domain.Listing, error) {
	l, ok := f.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeListingRepo) ListByProduct(_ context.Context, _ domain.Querier, _ string) ([]*domain.Listing, error) {
	return nil, nil
}

func (f *fakeListingRepo) ListByVendor(_ context.Context, _ domain.Querier, _ string) ([]*domain.Listing, error) {
	return nil, nil
}

func (f *fakeListingRepo) Update(_ context.Context, _ domain.Querier, l *domain.Listing) error {
	f.listings[l.ID] = l
	return nil
}

func (f *fakeListingRepo) CountByVendor(_ context.Context, _ domain.Querier, _ string) (int64, error) {
	return 0, nil
}

func (f *fakeListingRepo) DecrementStock(_ context.Context, _ domain.Querier, listingID string, qty int64) error {
	f.decrements = append(f.decrements, listingID)
	l, ok := f.listings[listingID]
	if !ok {
		return domain.ErrListingNotFound
	}
	if l.Stock < qty {
		return domain.ErrOutOfStock
	}
	l.Stock -= qty
	return nil
}

type fakePaymentRepo struct {
	payments map[string]*domain.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[string]*domain.Payment)}
}

func (f *fakePaymentRepo) Create(_ context.Context, _ domain.Querier, p *domain.Payment) error {
	f.payments[p.OrderID] = p
	return nil
}

func (f *fakePaymentRepo) GetByOrderID(_ context.Context, _ domain.Querier, orderID string) (*domain.Payment, error) {
	p, ok := f.payments[orderID]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	return p, nil
}

func (f *fakePaymentRepo) ListPayoutsByVendor(_ context.Context, _ domain.Querier, vendorID string, _, _ int) ([]*domain.PayoutEntry, error) {
	var out []*domain.PayoutEntry
	for _, p := range f.payments {
		for i := range p.Payouts {
			if p.Payouts[i].VendorID == vendorID {
				out = append(out, &p.Payouts[i])
			}
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) UpdatePayoutStatus(_ context.Context, _ domain.Querier, _ string, _ domain.PayoutStatus) error {
	return nil
}

type fakeOutboxRepo struct {
	messages []*domain.OutboxMessage
}

func (f *fakeOutboxRepo) CreateMessage(_ context.Context, _ domain.Querier, msg *domain.OutboxMessage) error {
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeOutboxRepo) GetPendingMessages(_ context.Context, _ domain.Querier, _ int) ([]domain.OutboxMessage, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) MarkMessageSent(_ context.Context, _ domain.Querier, _ string) error {
	return nil
}

func (f *fakeOutboxRepo) MarkMessagesFailed(_ context.Context, _ domain.Querier, _ []string) error {
	return nil
}

func (f *fakeOutboxRepo) byType(messageType string) []*domain.OutboxMessage {
	var out []*domain.OutboxMessage
	for _, m := range f.messages {
		if m.MessageType == messageType {
			out = append(out, m)
		}
	}
	return out
}

type fakeCartRepo struct {
	carts map[string][]domain.CartLine
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[string][]domain.CartLine)}
}

func (f *fakeCartRepo) Add(_ context.Context, userID string, line domain.CartLine) error {
	f.carts[userID] = append(f.carts[userID], line)
	return nil
}

func (f *fakeCartRepo) Get(_ context.Context, userID string) ([]domain.CartLine, error) {
	return f.carts[userID], nil
}

func (f *fakeCartRepo) SetQuantity(_ context.Context, _, _ string, _ int64) error { return nil }

func (f *fakeCartRepo) Remove(_ context.Context, _, _ string) error { return nil }

func (f *fakeCartRepo) Clear(_ context.Context, userID string) error {
	delete(f.carts, userID)
	return nil
}

// stubGateway accepts exactly one signature value.
type stubGateway struct{}

func (stubGateway) Mode() domain.PaymentMode { return domain.PaymentModeGateway }

func (stubGateway) CreateOrder(_ context.Context, amount int64, currency, _ string) (*payment.GatewayOrder, error) {
	return &payment.GatewayOrder{ID: "gw_order_1", Amount: amount, Currency: currency}, nil
}

func (stubGateway) VerifySignature(_, _, signature string) error {
	if signature != "valid" {
		return domain.ErrSignatureMismatch
	}
	return nil
}

type testEnv struct {
	service     OrderService
	orderRepo   *fakeOrderRepo
	listingRepo *fakeListingRepo
	paymentRepo *fakePaymentRepo
	outboxRepo  *fakeOutboxRepo
	cartRepo    *fakeCartRepo
	mock        sqlmock.Sqlmock
}

func newTestEnv(t *testing.T, gateway payment.Provider, listings ...*domain.Listing) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		orderRepo:   newFakeOrderRepo(),
		listingRepo: newFakeListingRepo(listings...),
		paymentRepo: newFakePaymentRepo(),
		outboxRepo:  &fakeOutboxRepo{},
		cartRepo:    newFakeCartRepo(),
		mock:        mock,
	}

	responseCache := cache.NewMemory(time.Minute, 0)
	t.Cleanup(responseCache.Close)

	env.service = NewOrderService(db, env.orderRepo, env.listingRepo, env.paymentRepo, env.outboxRepo,
		env.cartRepo, responseCache, gateway, "key_id", "INR", "payment_events", zap.NewNop())
	return env
}

func activeListing(id, vendorID string, price, stock int64) *domain.Listing {
	return &domain.Listing{
		ID:        id,
		ProductID: "prod-" + id,
		VendorID:  vendorID,
		Price:     price,
		Stock:     stock,
		Active:    true,
	}
}

func addToCart(env *testEnv, userID string, listing *domain.Listing, qty int64) {
	env.cartRepo.carts[userID] = append(env.cartRepo.carts[userID], domain.CartLine{
		ListingID:   listing.ID,
		ProductID:   listing.ProductID,
		ProductName: "Product " + listing.ProductID,
		VendorID:    listing.VendorID,
		UnitPrice:   listing.Price,
		Quantity:    qty,
	})
}

func TestCreateOrderEmptyCart(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.service.CreateOrder(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrCartEmpty)
}

func TestCreateOrderOutOfStock(t *testing.T) {
	listing := activeListing("l1", "v1", 100, 2)
	env := newTestEnv(t, nil, listing)
	addToCart(env, "u1", listing, 5)

	_, err := env.service.CreateOrder(context.Background(), "u1")

	assert.ErrorIs(t, err, domain.ErrOutOfStock)
	assert.Empty(t, env.orderRepo.orders)
}

func TestCreateOrderInactiveListing(t *testing.T) {
	listing := activeListing("l1", "v1", 100, 10)
	listing.Active = false
	env := newTestEnv(t, nil, listing)
	addToCart(env, "u1", listing, 1)

	_, err := env.service.CreateOrder(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrListingInactive)
}

func TestCreateOrderDemoFallback(t *testing.T) {
	listing := activeListing("l1", "v1", 100, 10)
	env := newTestEnv(t, nil, listing)
	addToCart(env, "u1", listing, 2)

	resp, err := env.service.CreateOrder(context.Background(), "u1")

	require.NoError(t, err)
	assert.True(t, resp.DemoMode)
	assert.Equal(t, int64(200), resp.Amount)
	assert.Empty(t, resp.GatewayOrderID)

	order := env.orderRepo.orders[resp.OrderID]
	require.NotNil(t, order)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, domain.PaymentModeDemo, order.Mode)
	// Stock untouched until payment confirms.
	assert.Equal(t, int64(10), env.listingRepo.listings["l1"].Stock)
}

func TestCreateOrderGatewayMode(t *testing.T) {
	listing := activeListing("l1", "v1", 100, 10)
	env := newTestEnv(t, stubGateway{}, listing)
	addToCart(env, "u1", listing, 1)

	resp, err := env.service.CreateOrder(context.Background(), "u1")

	require.NoError(t, err)
	assert.False(t, resp.DemoMode)
	assert.Equal(t, "gw_order_1", resp.GatewayOrderID)
	assert.Equal(t, "key_id", resp.GatewayKeyID)
	assert.Equal(t, domain.PaymentModeGateway, env.orderRepo.orders[resp.OrderID].Mode)
}

func TestCreateOrderSnapshotsCurrentPrice(t *testing.T) {
	listing := activeListing("l1", "v1", 100, 10)
	env := newTestEnv(t, nil, listing)
	// Stale cart price; checkout re-reads the listing.
	env.cartRepo.carts["u1"] = []domain.CartLine{{
		ListingID: "l1", ProductID: "p1", ProductName: "P", VendorID: "v1",
		UnitPrice: 50, Quantity: 2,
	}}

	resp, err := env.service.CreateOrder(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, int64(200), resp.Amount)
	assert.Equal(t, int64(100), env.orderRepo.orders[resp.OrderID].Lines[0].UnitPrice)
}

func TestDemoCheckoutConfirms(t *testing.T) {
	listing := activeListing("l1", "v1", 100, 10)
	env := newTestEnv(t, nil, listing)
	addToCart(env, "u1", listing, 2)

	resp, err := env.service.CreateOrder(context.Background(), "u1")
	require.NoError(t, err)

	env.mock.ExpectBegin()
	env.mock.ExpectCommit()

	confirmed, err := env.service.DemoCheckout(context.Background(), "u1", resp.OrderID)

	require.NoError(t, err)
	assert.Equal(t, string(domain.OrderStatusPaid), confirmed.Status)
	assert.NotEmpty(t, confirmed.ConfirmationID)

	// Stock decremented exactly once.
	assert.Equal(t, int64(8), env.listingRepo.listings["l1"].Stock)

	// Payment with a single vendor payout: 200 gross, 1% commission.
	pmt := env.paymentRepo.payments[resp.OrderID]
	require.NotNil(t, pmt)
	assert.Equal(t, domain.PaymentStatusCaptured, pmt.Status)
	require.Len(t, pmt.Payouts, 1)
	assert.Equal(t, int64(200), pmt.Payouts[0].Gross)
	assert.Equal(t, int64(2), pmt.Payouts[0].Commission)
	assert.Equal(t, int64(198), pmt.Payouts[0].Net)
	assert.Equal(t, domain.PayoutStatusPending, pmt.Payouts[0].Status)

	// Confirmation event recorded, cart cleared.
	assert.Len(t, env.outboxRepo.byType("payment.confirmed"), 1)
	assert.Empty(t, env.cartRepo.carts["u1"])
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestDemoCheckoutReplayIsNoop(t *testing.T) {
	listing := activeListing("l1", "v1", 100, 10)
	env := newTestEnv(t, nil, listing)
	addToCart(env, "u1", listing, 2)

	resp, err := env.service.CreateOrder(context.Background(), "u1")
	require.NoError(t, err)

	env.mock.ExpectBegin()
	env.mock.ExpectCommit()

	_, err = env.service.DemoCheckout(context.Background(), "u1", resp.OrderID)
	require.NoError(t, err)

	replayed, err := env.service.DemoCheckout(context.Background(), "u1", resp.OrderID)

	require.NoError(t, err)
	assert.Equal(t, string(domain.OrderStatusPaid), replayed.Status)
	// No second decrement, no second confirmation event.
	assert.Equal(t, int64(8), env.listingRepo.listings["l1"].Stock)
	assert.Len(t, env.outboxRepo.byType("payment.confirmed"), 1)
}

func TestVerifyPaymentBadSignatureLeavesPending(t *testing.T) {
	listing := activeListing("l1", "v1", 100, 10)
	env := newTestEnv(t, stubGateway{}, listing)
	addToCart(env, "u1", listing, 1)

	resp, err := env.service.CreateOrder(context.Background(), "u1")
	require.NoError(t, err)

	_, err = env.service.VerifyPayment(context.Background(), "u1", &VerifyPaymentRequest{
		OrderID:          resp.OrderID,
		GatewayOrderID:   resp.GatewayOrderID,
		GatewayPaymentID: "pay_1",
		GatewaySignature: "forged",
	})

	assert.ErrorIs(t, err, domain.ErrSignatureMismatch)
	assert.Equal(t, domain.OrderStatusPending, env.orderRepo.orders[resp.OrderID].Status)
	assert.Equal(t, int64(10), env.listingRepo.listings["l1"].Stock)
	assert.Nil(t, env.paymentRepo.payments[resp.OrderID])
}

func TestVerifyPaymentConfirms(t *testing.T) {
	listing := activeListing("l1", "v1", 100, 10)
	env := newTestEnv(t, stubGateway{}, listing)
	addToCart(env, "u1", listing, 1)

	resp, err := env.service.CreateOrder(context.Background(), "u1")
	require.NoError(t, err)

	env.mock.ExpectBegin()
	env.mock.ExpectCommit()

	confirmed, err := env.service.VerifyPayment(context.Background(), "u1", &VerifyPaymentRequest{
		OrderID:          resp.OrderID,
		GatewayOrderID:   resp.GatewayOrderID,
		GatewayPaymentID: "pay_1",
		GatewaySignature: "valid",
	})

	require.NoError(t, err)
	assert.Equal(t, string(domain.OrderStatusPaid), confirmed.Status)
	assert.Equal(t, "pay_1", confirmed.ConfirmationID)
	assert.Equal(t, int64(9), env.listingRepo.listings["l1"].Stock)
}

func TestVerifyPaymentWrongOwner(t *testing.T) {
	listing := activeListing("l1", "v1", 100, 10)
	env := newTestEnv(t, stubGateway{}, listing)
	addToCart(env, "u1", listing, 1)

	resp, err := env.service.CreateOrder(context.Background(), "u1")
	require.NoError(t, err)

	_, err = env.service.VerifyPayment(context.Background(), "intruder", &VerifyPaymentRequest{
		OrderID:          resp.OrderID,
		GatewayOrderID:   resp.GatewayOrderID,
		GatewayPaymentID: "pay_1",
		GatewaySignature: "valid",
	})
	assert.ErrorIs(t, err, domain.ErrNotOrderOwner)
}

func TestConfirmStockRaceEmitsReconcile(t *testing.T) {
	listing := activeListing("l1", "v1", 100, 2)
	env := newTestEnv(t, nil, listing)
	addToCart(env, "u1", listing, 2)

	resp, err := env.service.CreateOrder(context.Background(), "u1")
	require.NoError(t, err)

	// Another checkout wins the remaining stock before confirmation.
	env.listingRepo.listings["l1"].Stock = 1

	env.mock.ExpectBegin()
	env.mock.ExpectRollback()

	_, err = env.service.DemoCheckout(context.Background(), "u1", resp.OrderID)

	assert.ErrorIs(t, err, domain.ErrOutOfStock)
	assert.Nil(t, env.paymentRepo.payments[resp.OrderID])
	assert.Len(t, env.outboxRepo.byType("stock.reconcile"), 1)
	assert.Empty(t, env.outboxRepo.byType("payment.confirmed"))
}

func TestMultiVendorPayoutSplit(t *testing.T) {
	l1 := activeListing("l1", "v1", 500, 10)
	l2 := activeListing("l2", "v2", 300, 10)
	env := newTestEnv(t, nil, l1, l2)
	addToCart(env, "u1", l1, 1)
	addToCart(env, "u1", l2, 2)

	resp, err := env.service.CreateOrder(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1100), resp.Amount)

	env.mock.ExpectBegin()
	env.mock.ExpectCommit()

	_, err = env.service.DemoCheckout(context.Background(), "u1", resp.OrderID)
	require.NoError(t, err)

	pmt := env.paymentRepo.payments[resp.OrderID]
	require.NotNil(t, pmt)
	require.Len(t, pmt.Payouts, 2)

	var total int64
	for _, p := range pmt.Payouts {
		assert.Equal(t, p.Gross, p.Commission+p.Net)
		total += p.Gross
	}
	assert.Equal(t, int64(1100), total)
}

func TestConfirmDecrementsInStableListingOrder(t *testing.T) {
	// Lock ordering: whatever sequence the cart produced, stock rows are
	// decremented sorted by listing id so two confirmations sharing
	// listings cannot deadlock each other.
	lz := activeListing("l-z", "v1", 100, 10)
	la := activeListing("l-a", "v2", 100, 10)
	lm := activeListing("l-m", "v3", 100, 10)
	env := newTestEnv(t, nil, lz, la, lm)
	addToCart(env, "u1", lz, 1)
	addToCart(env, "u1", la, 1)
	addToCart(env, "u1", lm, 1)

	resp, err := env.service.CreateOrder(context.Background(), "u1")
	require.NoError(t, err)

	env.mock.ExpectBegin()
	env.mock.ExpectCommit()

	_, err = env.service.DemoCheckout(context.Background(), "u1", resp.OrderID)

	require.NoError(t, err)
	assert.Equal(t, []string{"l-a", "l-m", "l-z"}, env.listingRepo.decrements)
}

func TestCancelPendingOrder(t *testing.T) {
	listing := activeListing("l1", "v1", 100, 10)
	env := newTestEnv(t, nil, listing)
	addToCart(env, "u1", listing, 1)

	resp, err := env.service.CreateOrder(context.Background(), "u1")
	require.NoError(t, err)

	err = env.service.Cancel(context.Background(), "u1", resp.OrderID)

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, env.orderRepo.orders[resp.OrderID].Status)
	// Cancellation never restores stock; nothing was decremented for a
	// pending order.
	assert.Equal(t, int64(10), env.listingRepo.listings["l1"].Stock)
	assert.Len(t, env.outboxRepo.byType("order.cancelled"), 1)
}

func TestCancelDeliveredOrderFails(t *testing.T) {
	listing := activeListing("l1", "v1", 100, 10)
	env := newTestEnv(t, nil, listing)
	addToCart(env, "u1", listing, 1)

	resp, err := env.service.CreateOrder(context.Background(), "u1")
	require.NoError(t, err)
	env.orderRepo.orders[resp.OrderID].Status = domain.OrderStatusDelivered

	err = env.service.Cancel(context.Background(), "u1", resp.OrderID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestMarkShippedRequiresVendorInOrder(t *testing.T) {
	listing := activeListing("l1", "v1", 100, 10)
	env := newTestEnv(t, nil, listing)
	addToCart(env, "u1", listing, 1)

	resp, err := env.service.CreateOrder(context.Background(), "u1")
	require.NoError(t, err)
	env.orderRepo.orders[resp.OrderID].Status = domain.OrderStatusPaid

	err = env.service.MarkShipped(context.Background(), "other-vendor", resp.OrderID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = env.service.MarkShipped(context.Background(), "v1", resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, env.orderRepo.orders[resp.OrderID].Status)
}
