package cart

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"marketplace/internal/domain"
	"marketplace/internal/repository/cart_repo"
	"marketplace/internal/repository/listing_repo"
	"marketplace/internal/repository/product_repo"
)

type CartService interface {
	// Add snapshots the listing into the cart; quantities merge when the
	// listing is already present. Stock is checked again at checkout.
	Add(ctx context.Context, userID, listingID string, quantity int64) error
	Get(ctx context.Context, userID string) (*CartResponse, error)
	SetQuantity(ctx context.Context, userID, listingID string, quantity int64) error
	Remove(ctx context.Context, userID, listingID string) error
	Clear(ctx context.Context, userID string) error
}

type CartLineResponse struct {
	ListingID   string `json:"listing_id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	VendorID    string `json:"vendor_id"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int64  `json:"quantity"`
	Subtotal    int64  `json:"subtotal"`
}

type CartResponse struct {
	Lines []CartLineResponse `json:"lines"`
	Total int64              `json:"total"`
}

type cartService struct {
	db          *sql.DB
	cartRepo    cart_repo.CartRepository
	listingRepo listing_repo.ListingRepository
	productRepo product_repo.ProductRepository
	logger      *zap.Logger
}

func NewCartService(
	db *sql.DB,
	cartRepo cart_repo.CartRepository,
	listingRepo listing_repo.ListingRepository,
	productRepo product_repo.ProductRepository,
	logger *zap.Logger,
) CartService {
	return &cartService{
		db:          db,
		cartRepo:    cartRepo,
		listingRepo: listingRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

func (s *cartService) Add(ctx context.Context, userID, listingID string, quantity int64) error {
	if quantity <= 0 {
		return domain.ErrInvalidCartLine
	}
	listing, err := s.listingRepo.GetByID(ctx, s.db, listingID)
	if err != nil {
		return err
	}
	if !listing.Active {
		return domain.ErrListingInactive
	}
	if listing.Stock < quantity {
		return domain.ErrOutOfStock
	}
	product, err := s.productRepo.GetByID(ctx, s.db, listing.ProductID)
	if err != nil {
		return err
	}

	line := domain.CartLine{
		ListingID:   listing.ID,
		ProductID:   product.ID,
		ProductName: product.Name,
		VendorID:    listing.VendorID,
		UnitPrice:   listing.Price,
		Quantity:    quantity,
		AddedAt:     time.Now(),
	}
	if err := s.cartRepo.Add(ctx, userID, line); err != nil {
		s.logger.Error("Failed to add cart line", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

func (s *cartService) Get(ctx context.Context, userID string) (*CartResponse, error) {
	lines, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to read cart", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	resp := &CartResponse{Lines: make([]CartLineResponse, 0, len(lines))}
	for _, l := range lines {
		subtotal := l.UnitPrice * l.Quantity
		resp.Lines = append(resp.Lines, CartLineResponse{
			ListingID:   l.ListingID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			VendorID:    l.VendorID,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			Subtotal:    subtotal,
		})
		resp.Total += subtotal
	}
	return resp, nil
}

func (s *cartService) SetQuantity(ctx context.Context, userID, listingID string, quantity int64) error {
	if quantity < 0 {
		return domain.ErrInvalidCartLine
	}
	return s.cartRepo.SetQuantity(ctx, userID, listingID, quantity)
}

func (s *cartService) Remove(ctx context.Context, userID, listingID string) error {
	return s.cartRepo.Remove(ctx, userID, listingID)
}

func (s *cartService) Clear(ctx context.Context, userID string) error {
	return s.cartRepo.Clear(ctx, userID)
}
