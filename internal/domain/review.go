package domain

import "time"

// Review is uniquely keyed by (user, order, product); the database constraint
// makes concurrent duplicate submissions fail deterministically.
type Review struct {
	ID        string
	UserID    string
	OrderID   string
	ProductID string
	VendorID  string
	ListingID string
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const MaxReviewCommentLen = 2000

func (r *Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidRating
	}
	if len(r.Comment) > MaxReviewCommentLen {
		return ErrCommentTooLong
	}
	return nil
}
