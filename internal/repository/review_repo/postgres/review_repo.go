package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"marketplace/internal/domain"
	"marketplace/internal/repository/review_repo"
)

const uniqueViolation = "23505"

type pgReviewRepository struct{}

func NewReviewRepository() review_repo.ReviewRepository {
	return &pgReviewRepository{}
}

func (r *pgReviewRepository) Create(ctx context.Context, q domain.Querier, review *domain.Review) error {
	query := `INSERT INTO reviews (id, user_id, order_id, product_id, vendor_id, listing_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := q.ExecContext(ctx, query,
		review.ID, review.UserID, review.OrderID, review.ProductID, review.VendorID,
		review.ListingID, review.Rating, review.Comment, review.CreatedAt, review.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateReview
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

const reviewColumns = `id, user_id, order_id, product_id, vendor_id, listing_id, rating, comment, created_at, updated_at`

func scanReview(row interface{ Scan(...any) error }) (*domain.Review, error) {
	rv := &domain.Review{}
	err := row.Scan(&rv.ID, &rv.UserID, &rv.OrderID, &rv.ProductID, &rv.VendorID,
		&rv.ListingID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rv, nil
}

func (r *pgReviewRepository) GetByID(ctx context.Context, q domain.Querier, id string) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	review, err := scanReview(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review by ID %s: %w", id, err)
	}
	return review, nil
}

func (r *pgReviewRepository) ListByProduct(ctx context.Context, q domain.Querier, productID string, limit, offset int) ([]*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE product_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := q.QueryContext(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews for product %s: %w", productID, err)
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return reviews, nil
}

func (r *pgReviewRepository) Update(ctx context.Context, q domain.Querier, review *domain.Review) error {
	query := `UPDATE reviews SET rating = $2, comment = $3, updated_at = $4 WHERE id = $1`
	res, err := q.ExecContext(ctx, query, review.ID, review.Rating, review.Comment, review.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update review %s: %w", review.ID, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

func (r *pgReviewRepository) Delete(ctx context.Context, q domain.Querier, id string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review %s: %w", id, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

func (r *pgReviewRepository) AggregateForProduct(ctx context.Context, q domain.Querier, productID string) (float64, int64, error) {
	var avg float64
	var count int64
	query := `SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM reviews WHERE product_id = $1`
	if err := q.QueryRowContext(ctx, query, productID).Scan(&avg, &count); err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate reviews for product %s: %w", productID, err)
	}
	return avg, count, nil
}

func (r *pgReviewRepository) VendorAverageRating(ctx context.Context, q domain.Querier, vendorID string) (float64, error) {
	var avg float64
	query := `SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE vendor_id = $1`
	if err := q.QueryRowContext(ctx, query, vendorID).Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to aggregate rating for vendor %s: %w", vendorID, err)
	}
	return avg, nil
}
