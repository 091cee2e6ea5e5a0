package reviews

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"marketplace/internal/cache"
	"marketplace/internal/domain"
	"marketplace/internal/repository/order_repo"
	"marketplace/internal/repository/review_repo"
	"marketplace/internal/util"
)

type CreateReviewRequest struct {
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	VendorID  string `json:"vendor_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

type UpdateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type ReviewResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	OrderID   string    `json:"order_id"`
	ProductID string    `json:"product_id"`
	VendorID  string    `json:"vendor_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type ReviewService interface {
	// Create gates on purchase: the caller must own a paid-or-later order
	// with the given id containing this (product, vendor) pair.
	Create(ctx context.Context, userID string, req *CreateReviewRequest) (*ReviewResponse, error)
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*ReviewResponse, error)
	Update(ctx context.Context, userID, reviewID string, req *UpdateReviewRequest) (*ReviewResponse, error)
	Delete(ctx context.Context, userID string, role domain.Role, reviewID string) error
}

type reviewService struct {
	db         *sql.DB
	reviewRepo review_repo.ReviewRepository
	orderRepo  order_repo.OrderRepository
	cache      cache.Cache
	logger     *zap.Logger
}

func NewReviewService(
	db *sql.DB,
	reviewRepo review_repo.ReviewRepository,
	orderRepo order_repo.OrderRepository,
	responseCache cache.Cache,
	logger *zap.Logger,
) ReviewService {
	return &reviewService{
		db:         db,
		reviewRepo: reviewRepo,
		orderRepo:  orderRepo,
		cache:      responseCache,
		logger:     logger,
	}
}

func (s *reviewService) Create(ctx context.Context, userID string, req *CreateReviewRequest) (*ReviewResponse, error) {
	listingID, err := s.orderRepo.HasPaidOrderLine(ctx, s.db, userID, req.OrderID, req.ProductID, req.VendorID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	review := &domain.Review{
		ID:        util.GenerateUUID(),
		UserID:    userID,
		OrderID:   req.OrderID,
		ProductID: req.ProductID,
		VendorID:  req.VendorID,
		ListingID: listingID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := review.Validate(); err != nil {
		return nil, err
	}
	if err := s.reviewRepo.Create(ctx, s.db, review); err != nil {
		return nil, err
	}

	s.invalidate(review.ProductID)
	s.logger.Info("Review created",
		zap.String("review_id", review.ID),
		zap.String("product_id", review.ProductID),
		zap.Int("rating", review.Rating))
	return mapReviewToResponse(review), nil
}

func (s *reviewService) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*ReviewResponse, error) {
	useCache := offset == 0
	key := cache.ProductReviewsKey(productID)
	if useCache {
		if cached, ok := s.cache.Get(key); ok {
			if responses, ok := cached.([]*ReviewResponse); ok {
				return responses, nil
			}
		}
	}

	reviewsList, err := s.reviewRepo.ListByProduct(ctx, s.db, productID, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list reviews", zap.String("product_id", productID), zap.Error(err))
		return nil, err
	}
	responses := make([]*ReviewResponse, len(reviewsList))
	for i, r := range reviewsList {
		responses[i] = mapReviewToResponse(r)
	}
	if useCache {
		s.cache.Set(key, responses, 0)
	}
	return responses, nil
}

func (s *reviewService) Update(ctx context.Context, userID, reviewID string, req *UpdateReviewRequest) (*ReviewResponse, error) {
	review, err := s.reviewRepo.GetByID(ctx, s.db, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, domain.ErrNotReviewAuthor
	}

	review.Rating = req.Rating
	review.Comment = req.Comment
	review.UpdatedAt = time.Now()
	if err := review.Validate(); err != nil {
		return nil, err
	}
	if err := s.reviewRepo.Update(ctx, s.db, review); err != nil {
		return nil, err
	}

	s.invalidate(review.ProductID)
	return mapReviewToResponse(review), nil
}

func (s *reviewService) Delete(ctx context.Context, userID string, role domain.Role, reviewID string) error {
	review, err := s.reviewRepo.GetByID(ctx, s.db, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != userID && role != domain.RoleAdmin {
		return domain.ErrNotReviewAuthor
	}
	if err := s.reviewRepo.Delete(ctx, s.db, reviewID); err != nil {
		return err
	}

	s.invalidate(review.ProductID)
	s.logger.Info("Review deleted", zap.String("review_id", reviewID))
	return nil
}

// invalidate drops the cached review list along with the product summary,
// whose aggregate rating just changed.
func (s *reviewService) invalidate(productID string) {
	s.cache.Delete(cache.ProductReviewsKey(productID))
	s.cache.Delete(cache.ProductKey(productID))
	s.cache.DeletePrefix(cache.VendorPrefix)
}

func mapReviewToResponse(r *domain.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		OrderID:   r.OrderID,
		ProductID: r.ProductID,
		VendorID:  r.VendorID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}
