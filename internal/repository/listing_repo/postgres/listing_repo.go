package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"marketplace/internal/domain"
	"marketplace/internal/repository/listing_repo"
)

type pgListingRepository struct{}

func NewListingRepository() listing_repo.ListingRepository {
	return &pgListingRepository{}
}

const listingColumns = `id, product_id, vendor_id, price, stock, active, created_at, updated_at`

func scanListing(row interface{ Scan(...any) error }) (*domain.Listing, error) {
	l := &domain.Listing{}
	err := row.Scan(&l.ID, &l.ProductID, &l.VendorID, &l.Price, &l.Stock, &l.Active, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *pgListingRepository) Create(ctx context.Context, q domain.Querier, l *domain.Listing) error {
	query := `INSERT INTO listings (id, product_id, vendor_id, price, stock, active, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := q.ExecContext(ctx, query, l.ID, l.ProductID, l.VendorID, l.Price, l.Stock, l.Active, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

func (r *pgListingRepository) GetByID(ctx context.Context, q domain.Querier, id string) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	l, err := scanListing(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing by ID %s: %w", id, err)
	}
	return l, nil
}

func (r *pgListingRepository) ListByProduct(ctx context.Context, q domain.Querier, productID string) ([]*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE product_id = $1 AND active ORDER BY price ASC`
	return r.list(ctx, q, query, productID)
}

func (r *pgListingRepository) ListByVendor(ctx context.Context, q domain.Querier, vendorID string) ([]*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE vendor_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, q, query, vendorID)
}

func (r *pgListingRepository) list(ctx context.Context, q domain.Querier, query string, arg any) ([]*domain.Listing, error) {
	rows, err := q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	var listings []*domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing row: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return listings, nil
}

func (r *pgListingRepository) Update(ctx context.Context, q domain.Querier, l *domain.Listing) error {
	query := `UPDATE listings SET price = $2, stock = $3, active = $4, updated_at = $5 WHERE id = $1`
	res, err := q.ExecContext(ctx, query, l.ID, l.Price, l.Stock, l.Active, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update listing %s: %w", l.ID, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *pgListingRepository) CountByVendor(ctx context.Context, q domain.Querier, vendorID string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM listings WHERE vendor_id = $1`
	if err := q.QueryRowContext(ctx, query, vendorID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count listings for vendor %s: %w", vendorID, err)
	}
	return count, nil
}

func (r *pgListingRepository) DecrementStock(ctx context.Context, q domain.Querier, listingID string, qty int64) error {
	query := `UPDATE listings SET stock = stock - $2, updated_at = NOW() WHERE id = $1 AND stock >= $2`
	res, err := q.ExecContext(ctx, query, listingID, qty)
	if err != nil {
		return fmt.Errorf("failed to decrement stock for listing %s: %w", listingID, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check decrement result: %w", err)
	}
	if rowsAffected == 0 {
		// Distinguish a vanished listing from one the guard rejected.
		var one int
		err := q.QueryRowContext(ctx, `SELECT 1 FROM listings WHERE id = $1`, listingID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrListingNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check listing %s after rejected decrement: %w", listingID, err)
		}
		return domain.ErrOutOfStock
	}
	return nil
}
