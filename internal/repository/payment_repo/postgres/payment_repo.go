package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/repository/payment_repo"
)

type pgPaymentRepository struct{}

func NewPaymentRepository() payment_repo.PaymentRepository {
	return &pgPaymentRepository{}
}

func (r *pgPaymentRepository) Create(ctx context.Context, q domain.Querier, payment *domain.Payment) error {
	paymentQuery := `INSERT INTO payments (id, order_id, user_id, mode, gateway_order_id, gateway_payment_id, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := q.ExecContext(ctx, paymentQuery,
		payment.ID, payment.OrderID, payment.UserID, payment.Mode,
		payment.GatewayOrderID, payment.GatewayPaymentID, payment.Amount, payment.Status,
		payment.CreatedAt, payment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	payoutQuery := `INSERT INTO payouts (id, payment_id, order_id, vendor_id, gross, commission, net, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for _, p := range payment.Payouts {
		_, err := q.ExecContext(ctx, payoutQuery,
			p.ID, p.PaymentID, p.OrderID, p.VendorID, p.Gross, p.Commission, p.Net,
			p.Status, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create payout entry: %w", err)
		}
	}
	return nil
}

func (r *pgPaymentRepository) GetByOrderID(ctx context.Context, q domain.Querier, orderID string) (*domain.Payment, error) {
	payment := &domain.Payment{}
	query := `SELECT id, order_id, user_id, mode, gateway_order_id, gateway_payment_id, amount, status, created_at, updated_at
		FROM payments WHERE order_id = $1`
	err := q.QueryRowContext(ctx, query, orderID).Scan(
		&payment.ID, &payment.OrderID, &payment.UserID, &payment.Mode,
		&payment.GatewayOrderID, &payment.GatewayPaymentID, &payment.Amount, &payment.Status,
		&payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment by order ID %s: %w", orderID, err)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT id, payment_id, order_id, vendor_id, gross, commission, net, status, created_at, updated_at
		 FROM payouts WHERE payment_id = $1 ORDER BY vendor_id`, payment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payouts for payment %s: %w", payment.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.PayoutEntry
		if err := rows.Scan(&p.ID, &p.PaymentID, &p.OrderID, &p.VendorID,
			&p.Gross, &p.Commission, &p.Net, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payout row: %w", err)
		}
		payment.Payouts = append(payment.Payouts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return payment, nil
}

func (r *pgPaymentRepository) ListPayoutsByVendor(ctx context.Context, q domain.Querier, vendorID string, limit, offset int) ([]*domain.PayoutEntry, error) {
	query := `SELECT id, payment_id, order_id, vendor_id, gross, commission, net, status, created_at, updated_at
		FROM payouts WHERE vendor_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := q.QueryContext(ctx, query, vendorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query payouts for vendor %s: %w", vendorID, err)
	}
	defer rows.Close()

	var payouts []*domain.PayoutEntry
	for rows.Next() {
		p := &domain.PayoutEntry{}
		if err := rows.Scan(&p.ID, &p.PaymentID, &p.OrderID, &p.VendorID,
			&p.Gross, &p.Commission, &p.Net, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payout row: %w", err)
		}
		payouts = append(payouts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return payouts, nil
}

func (r *pgPaymentRepository) UpdatePayoutStatus(ctx context.Context, q domain.Querier, payoutID string, status domain.PayoutStatus) error {
	query := `UPDATE payouts SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`
	res, err := q.ExecContext(ctx, query, payoutID, status, time.Now(), domain.PayoutStatusPending)
	if err != nil {
		return fmt.Errorf("failed to update payout %s status: %w", payoutID, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check payout update result: %w", err)
	}
	if rowsAffected == 0 {
		var one int
		err := q.QueryRowContext(ctx, `SELECT 1 FROM payouts WHERE id = $1`, payoutID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrPayoutNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check payout %s after rejected update: %w", payoutID, err)
		}
		// Already settled or failed; replays are no-ops.
		return nil
	}
	return nil
}
