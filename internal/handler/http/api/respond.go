package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"marketplace/internal/domain"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError maps domain errors to HTTP statuses. Ownership failures are
// reported as 404 so callers cannot probe for other users' resources.
// Unexpected errors are logged and redacted.
func WriteError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrListingNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrPaymentNotFound),
		errors.Is(err, domain.ErrPayoutNotFound),
		errors.Is(err, domain.ErrReviewNotFound),
		errors.Is(err, domain.ErrReportNotFound),
		errors.Is(err, domain.ErrNotOrderOwner),
		errors.Is(err, domain.ErrNotListingOwner),
		errors.Is(err, domain.ErrNotReviewAuthor):
		http.Error(w, err.Error(), http.StatusNotFound)

	case errors.Is(err, domain.ErrInvalidProduct),
		errors.Is(err, domain.ErrInvalidListing),
		errors.Is(err, domain.ErrInvalidCartLine),
		errors.Is(err, domain.ErrCartEmpty),
		errors.Is(err, domain.ErrListingInactive),
		errors.Is(err, domain.ErrOutOfStock),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrSignatureMismatch),
		errors.Is(err, domain.ErrDuplicateReview),
		errors.Is(err, domain.ErrReviewNotAllowed),
		errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrCommentTooLong),
		errors.Is(err, domain.ErrInvalidReport):
		http.Error(w, err.Error(), http.StatusBadRequest)

	case errors.Is(err, domain.ErrUnauthorized):
		http.Error(w, "authentication required", http.StatusUnauthorized)

	case errors.Is(err, domain.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)

	default:
		logger.Error("Unhandled error", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
