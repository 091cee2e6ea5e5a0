package domain

import "errors"

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrInvalidProduct   = errors.New("invalid product data")
	ErrListingNotFound  = errors.New("listing not found")
	ErrListingInactive  = errors.New("listing is not active")
	ErrOutOfStock       = errors.New("insufficient stock")
	ErrInvalidListing   = errors.New("invalid listing data")
	ErrNotListingOwner  = errors.New("listing does not belong to vendor")

	ErrCartEmpty       = errors.New("cart is empty")
	ErrInvalidCartLine = errors.New("invalid cart line")

	ErrOrderNotFound     = errors.New("order not found")
	ErrNotOrderOwner     = errors.New("order does not belong to caller")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrAlreadyConfirmed  = errors.New("order is no longer pending")
	ErrSignatureMismatch = errors.New("payment signature mismatch")

	ErrPaymentNotFound = errors.New("payment not found")
	ErrPayoutNotFound  = errors.New("payout not found")

	ErrReviewNotFound   = errors.New("review not found")
	ErrNotReviewAuthor  = errors.New("review does not belong to caller")
	ErrDuplicateReview  = errors.New("review already exists for this order line")
	ErrReviewNotAllowed = errors.New("no paid order contains this product from this vendor")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrCommentTooLong   = errors.New("review comment exceeds maximum length")

	ErrReportNotFound = errors.New("report not found")
	ErrInvalidReport  = errors.New("invalid report data")

	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("operation not permitted for this role")
)
