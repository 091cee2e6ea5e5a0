package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"marketplace/internal/domain"
	"marketplace/internal/repository/order_repo"
)

type pgOrderRepository struct {
	logger *zap.Logger
}

func NewOrderRepository(l *zap.Logger) order_repo.OrderRepository {
	return &pgOrderRepository{logger: l}
}

func (r *pgOrderRepository) Create(ctx context.Context, q domain.Querier, order *domain.Order) error {
	orderQuery := `INSERT INTO orders (id, user_id, total, currency, status, mode, gateway_order_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := q.ExecContext(ctx, orderQuery,
		order.ID, order.UserID, order.Total, order.Currency, order.Status, order.Mode,
		order.GatewayOrderID, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	lineQuery := `INSERT INTO order_lines (id, order_id, listing_id, product_id, product_name, vendor_id, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, line := range order.Lines {
		_, err := q.ExecContext(ctx, lineQuery,
			line.ID, line.OrderID, line.ListingID, line.ProductID, line.ProductName,
			line.VendorID, line.UnitPrice, line.Quantity)
		if err != nil {
			return fmt.Errorf("failed to create order line: %w", err)
		}
	}
	r.logger.Debug("Order inserted", zap.String("order_id", order.ID), zap.Int("lines", len(order.Lines)))
	return nil
}

const orderColumns = `id, user_id, total, currency, status, mode, gateway_order_id, confirmation_id, created_at, updated_at, paid_at`

func scanOrder(row interface{ Scan(...any) error }) (*domain.Order, error) {
	o := &domain.Order{}
	var confirmationID sql.NullString
	var paidAt sql.NullTime
	err := row.Scan(&o.ID, &o.UserID, &o.Total, &o.Currency, &o.Status, &o.Mode,
		&o.GatewayOrderID, &confirmationID, &o.CreatedAt, &o.UpdatedAt, &paidAt)
	if err != nil {
		return nil, err
	}
	if confirmationID.Valid {
		o.ConfirmationID = confirmationID.String
	}
	if paidAt.Valid {
		o.PaidAt = &paidAt.Time
	}
	return o, nil
}

func (r *pgOrderRepository) GetByID(ctx context.Context, q domain.Querier, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	if err := r.loadLines(ctx, q, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *pgOrderRepository) loadLines(ctx context.Context, q domain.Querier, order *domain.Order) error {
	query := `SELECT id, order_id, listing_id, product_id, product_name, vendor_id, unit_price, quantity
		FROM order_lines WHERE order_id = $1 ORDER BY id`
	rows, err := q.QueryContext(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("failed to query order lines for %s: %w", order.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ListingID, &line.ProductID,
			&line.ProductName, &line.VendorID, &line.UnitPrice, &line.Quantity); err != nil {
			return fmt.Errorf("failed to scan order line row: %w", err)
		}
		order.Lines = append(order.Lines, line)
	}
	return rows.Err()
}

func (r *pgOrderRepository) ListByUser(ctx context.Context, q domain.Querier, userID string, limit, offset int) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.listOrders(ctx, q, query, userID, limit, offset)
}

func (r *pgOrderRepository) ListByVendor(ctx context.Context, q domain.Querier, vendorID string, limit, offset int) ([]*domain.Order, error) {
	query := `SELECT DISTINCT o.id, o.user_id, o.total, o.currency, o.status, o.mode, o.gateway_order_id, o.confirmation_id, o.created_at, o.updated_at, o.paid_at
		FROM orders o JOIN order_lines ol ON ol.order_id = o.id
		WHERE ol.vendor_id = $1 ORDER BY o.created_at DESC LIMIT $2 OFFSET $3`
	return r.listOrders(ctx, q, query, vendorID, limit, offset)
}

func (r *pgOrderRepository) listOrders(ctx context.Context, q domain.Querier, query string, arg any, limit, offset int) ([]*domain.Order, error) {
	rows, err := q.QueryContext(ctx, query, arg, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for _, order := range orders {
		if err := r.loadLines(ctx, q, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *pgOrderRepository) MarkPaid(ctx context.Context, q domain.Querier, orderID, confirmationID string, paidAt time.Time) error {
	query := `UPDATE orders SET status = $2, confirmation_id = $3, paid_at = $4, updated_at = $4 WHERE id = $1 AND status = $5`
	res, err := q.ExecContext(ctx, query, orderID, domain.OrderStatusPaid, confirmationID, paidAt, domain.OrderStatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark order %s paid: %w", orderID, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check mark-paid result: %w", err)
	}
	if rowsAffected == 0 {
		var one int
		err := q.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE id = $1`, orderID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check order %s after rejected mark-paid: %w", orderID, err)
		}
		return domain.ErrAlreadyConfirmed
	}
	r.logger.Debug("Order marked paid", zap.String("order_id", orderID), zap.String("confirmation_id", confirmationID))
	return nil
}

func (r *pgOrderRepository) UpdateStatus(ctx context.Context, q domain.Querier, orderID string, from, to domain.OrderStatus) error {
	query := `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`
	res, err := q.ExecContext(ctx, query, orderID, to, time.Now(), from)
	if err != nil {
		return fmt.Errorf("failed to update order %s status: %w", orderID, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check status update result: %w", err)
	}
	if rowsAffected == 0 {
		var one int
		err := q.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE id = $1`, orderID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check order %s after rejected status update: %w", orderID, err)
		}
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *pgOrderRepository) VendorSales(ctx context.Context, q domain.Querier, vendorID string) (int64, int64, error) {
	query := `SELECT COUNT(DISTINCT o.id), COALESCE(SUM(ol.unit_price * ol.quantity), 0)
		FROM orders o JOIN order_lines ol ON ol.order_id = o.id
		WHERE ol.vendor_id = $1 AND o.status IN ($2, $3, $4)`
	var orders, revenue int64
	err := q.QueryRowContext(ctx, query, vendorID,
		domain.OrderStatusPaid, domain.OrderStatusShipped, domain.OrderStatusDelivered).Scan(&orders, &revenue)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate vendor sales for %s: %w", vendorID, err)
	}
	return orders, revenue, nil
}

func (r *pgOrderRepository) HasPaidOrderLine(ctx context.Context, q domain.Querier, userID, orderID, productID, vendorID string) (string, error) {
	query := `SELECT ol.listing_id
		FROM orders o JOIN order_lines ol ON ol.order_id = o.id
		WHERE o.id = $1 AND o.user_id = $2 AND ol.product_id = $3 AND ol.vendor_id = $4
		  AND o.status IN ($5, $6, $7)
		LIMIT 1`
	var listingID string
	err := q.QueryRowContext(ctx, query, orderID, userID, productID, vendorID,
		domain.OrderStatusPaid, domain.OrderStatusShipped, domain.OrderStatusDelivered).Scan(&listingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrReviewNotAllowed
		}
		return "", fmt.Errorf("failed to check purchase for review gate: %w", err)
	}
	return listingID, nil
}
