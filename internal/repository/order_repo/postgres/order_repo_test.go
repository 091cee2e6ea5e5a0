package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"marketplace/internal/domain"
)

func TestMarkPaidSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE orders SET status = \$2, confirmation_id = \$3`).
		WithArgs("o1", domain.OrderStatusPaid, "pay_1", sqlmock.AnyArg(), domain.OrderStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewOrderRepository(zap.NewNop())
	err = repo.MarkPaid(context.Background(), db, "o1", "pay_1", time.Now())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPaidAlreadyConfirmed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE orders SET status = \$2, confirmation_id = \$3`).
		WithArgs("o1", domain.OrderStatusPaid, "pay_2", sqlmock.AnyArg(), domain.OrderStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT 1 FROM orders WHERE id = \$1`).
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))

	repo := NewOrderRepository(zap.NewNop())
	err = repo.MarkPaid(context.Background(), db, "o1", "pay_2", time.Now())

	assert.ErrorIs(t, err, domain.ErrAlreadyConfirmed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPaidMissingOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE orders SET status = \$2, confirmation_id = \$3`).
		WithArgs("ghost", domain.OrderStatusPaid, "pay_1", sqlmock.AnyArg(), domain.OrderStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT 1 FROM orders WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"one"}))

	repo := NewOrderRepository(zap.NewNop())
	err = repo.MarkPaid(context.Background(), db, "ghost", "pay_1", time.Now())

	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestUpdateStatusGuarded(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE orders SET status = \$2, updated_at = \$3`).
		WithArgs("o1", domain.OrderStatusShipped, sqlmock.AnyArg(), domain.OrderStatusPaid).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT 1 FROM orders WHERE id = \$1`).
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))

	repo := NewOrderRepository(zap.NewNop())
	err = repo.UpdateStatus(context.Background(), db, "o1", domain.OrderStatusPaid, domain.OrderStatusShipped)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestGetByIDLoadsLines(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM orders WHERE id = \$1`).
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "total", "currency", "status", "mode",
			"gateway_order_id", "confirmation_id", "created_at", "updated_at", "paid_at",
		}).AddRow("o1", "u1", int64(200), "INR", "PENDING", "DEMO", "demo_1", nil, now, now, nil))
	mock.ExpectQuery(`SELECT (.+) FROM order_lines WHERE order_id = \$1`).
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "order_id", "listing_id", "product_id", "product_name", "vendor_id", "unit_price", "quantity",
		}).AddRow("ln1", "o1", "l1", "p1", "Widget", "v1", int64(100), int64(2)))

	repo := NewOrderRepository(zap.NewNop())
	order, err := repo.GetByID(context.Background(), db, "o1")

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, int64(200), order.Lines[0].Subtotal())
	assert.Nil(t, order.PaidAt)
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM orders WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewOrderRepository(zap.NewNop())
	_, err = repo.GetByID(context.Background(), db, "ghost")

	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
