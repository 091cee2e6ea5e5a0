package catalog

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.uber.org/zap"

	"marketplace/internal/cache"
	"marketplace/internal/domain"
	"marketplace/internal/repository/listing_repo"
	"marketplace/internal/repository/order_repo"
	"marketplace/internal/repository/product_repo"
	"marketplace/internal/repository/review_repo"
	"marketplace/internal/util"
)

type CatalogService interface {
	CreateProduct(ctx context.Context, req *CreateProductRequest) (*ProductResponse, error)
	GetProduct(ctx context.Context, productID string) (*ProductSummaryResponse, error)
	ListProducts(ctx context.Context, limit, offset int) ([]*ProductResponse, error)

	CreateListing(ctx context.Context, vendorID string, req *CreateListingRequest) (*ListingResponse, error)
	UpdateListing(ctx context.Context, vendorID, listingID string, req *UpdateListingRequest) (*ListingResponse, error)
	ListVendorListings(ctx context.Context, vendorID string) ([]*ListingResponse, error)
	VendorDashboard(ctx context.Context, vendorID string) (*VendorDashboardResponse, error)
}

type catalogService struct {
	db          *sql.DB
	productRepo product_repo.ProductRepository
	listingRepo listing_repo.ListingRepository
	orderRepo   order_repo.OrderRepository
	reviewRepo  review_repo.ReviewRepository
	cache       cache.Cache
	logger      *zap.Logger
}

func NewCatalogService(
	db *sql.DB,
	productRepo product_repo.ProductRepository,
	listingRepo listing_repo.ListingRepository,
	orderRepo order_repo.OrderRepository,
	reviewRepo review_repo.ReviewRepository,
	responseCache cache.Cache,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		db:          db,
		productRepo: productRepo,
		listingRepo: listingRepo,
		orderRepo:   orderRepo,
		reviewRepo:  reviewRepo,
		cache:       responseCache,
		logger:      logger,
	}
}

func (s *catalogService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*ProductResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidProduct
	}
	now := time.Now()
	product := &domain.Product{
		ID:          util.GenerateUUID(),
		Name:        name,
		Description: req.Description,
		Category:    req.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.productRepo.Create(ctx, s.db, product); err != nil {
		s.logger.Error("Failed to create product", zap.Error(err))
		return nil, err
	}
	s.cache.DeletePrefix(cache.ProductPrefix)
	s.logger.Info("Product created", zap.String("product_id", product.ID), zap.String("name", product.Name))
	return mapProductToResponse(product), nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID string) (*ProductSummaryResponse, error) {
	key := cache.ProductKey(productID)
	if cached, ok := s.cache.Get(key); ok {
		if summary, ok := cached.(*ProductSummaryResponse); ok {
			return summary, nil
		}
	}

	product, err := s.productRepo.GetByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	listings, err := s.listingRepo.ListByProduct(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	avg, count, err := s.reviewRepo.AggregateForProduct(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}

	summary := &ProductSummaryResponse{
		Product:       *mapProductToResponse(product),
		Listings:      make([]ListingResponse, 0, len(listings)),
		AverageRating: avg,
		ReviewCount:   count,
	}
	for _, l := range listings {
		summary.Listings = append(summary.Listings, *mapListingToResponse(l))
	}
	s.cache.Set(key, summary, 0)
	return summary, nil
}

func (s *catalogService) ListProducts(ctx context.Context, limit, offset int) ([]*ProductResponse, error) {
	useCache := offset == 0
	if useCache {
		if cached, ok := s.cache.Get(cache.ProductListKey()); ok {
			if products, ok := cached.([]*ProductResponse); ok {
				return products, nil
			}
		}
	}

	products, err := s.productRepo.List(ctx, s.db, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, err
	}
	responses := make([]*ProductResponse, len(products))
	for i, p := range products {
		responses[i] = mapProductToResponse(p)
	}
	if useCache {
		s.cache.Set(cache.ProductListKey(), responses, 0)
	}
	return responses, nil
}

func (s *catalogService) CreateListing(ctx context.Context, vendorID string, req *CreateListingRequest) (*ListingResponse, error) {
	if _, err := s.productRepo.GetByID(ctx, s.db, req.ProductID); err != nil {
		return nil, err
	}

	now := time.Now()
	listing := &domain.Listing{
		ID:        util.GenerateUUID(),
		ProductID: req.ProductID,
		VendorID:  vendorID,
		Price:     req.Price,
		Stock:     req.Stock,
		Active:    req.Active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := listing.Validate(); err != nil {
		return nil, err
	}
	if err := s.listingRepo.Create(ctx, s.db, listing); err != nil {
		s.logger.Error("Failed to create listing", zap.String("vendor_id", vendorID), zap.Error(err))
		return nil, err
	}
	s.cache.DeletePrefix(cache.ProductPrefix)
	s.cache.Delete(cache.VendorDashboardKey(vendorID))
	s.logger.Info("Listing created",
		zap.String("listing_id", listing.ID),
		zap.String("product_id", listing.ProductID),
		zap.String("vendor_id", vendorID))
	return mapListingToResponse(listing), nil
}

func (s *catalogService) UpdateListing(ctx context.Context, vendorID, listingID string, req *UpdateListingRequest) (*ListingResponse, error) {
	listing, err := s.listingRepo.GetByID(ctx, s.db, listingID)
	if err != nil {
		return nil, err
	}
	if listing.VendorID != vendorID {
		return nil, domain.ErrNotListingOwner
	}

	if req.Price != nil {
		listing.Price = *req.Price
	}
	if req.Stock != nil {
		listing.Stock = *req.Stock
	}
	if req.Active != nil {
		listing.Active = *req.Active
	}
	listing.UpdatedAt = time.Now()

	if err := listing.Validate(); err != nil {
		return nil, err
	}
	if err := s.listingRepo.Update(ctx, s.db, listing); err != nil {
		return nil, err
	}
	s.cache.DeletePrefix(cache.ProductPrefix)
	s.cache.Delete(cache.VendorDashboardKey(vendorID))
	return mapListingToResponse(listing), nil
}

func (s *catalogService) ListVendorListings(ctx context.Context, vendorID string) ([]*ListingResponse, error) {
	listings, err := s.listingRepo.ListByVendor(ctx, s.db, vendorID)
	if err != nil {
		s.logger.Error("Failed to list listings for vendor", zap.String("vendor_id", vendorID), zap.Error(err))
		return nil, err
	}
	responses := make([]*ListingResponse, len(listings))
	for i, l := range listings {
		responses[i] = mapListingToResponse(l)
	}
	return responses, nil
}

func (s *catalogService) VendorDashboard(ctx context.Context, vendorID string) (*VendorDashboardResponse, error) {
	key := cache.VendorDashboardKey(vendorID)
	if cached, ok := s.cache.Get(key); ok {
		if dashboard, ok := cached.(*VendorDashboardResponse); ok {
			return dashboard, nil
		}
	}

	listingCount, err := s.listingRepo.CountByVendor(ctx, s.db, vendorID)
	if err != nil {
		return nil, err
	}
	paidOrders, revenue, err := s.orderRepo.VendorSales(ctx, s.db, vendorID)
	if err != nil {
		return nil, err
	}
	avgRating, err := s.reviewRepo.VendorAverageRating(ctx, s.db, vendorID)
	if err != nil {
		return nil, err
	}

	dashboard := &VendorDashboardResponse{
		VendorID:      vendorID,
		ListingCount:  listingCount,
		PaidOrders:    paidOrders,
		Revenue:       revenue,
		AverageRating: avgRating,
	}
	s.cache.Set(key, dashboard, 0)
	return dashboard, nil
}

func mapProductToResponse(p *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
	}
}

func mapListingToResponse(l *domain.Listing) *ListingResponse {
	return &ListingResponse{
		ID:        l.ID,
		ProductID: l.ProductID,
		VendorID:  l.VendorID,
		Price:     l.Price,
		Stock:     l.Stock,
		Active:    l.Active,
	}
}
