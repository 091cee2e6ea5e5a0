package domain

import "time"

// Product is a master-catalog entry shared by all vendor listings.
type Product struct {
	ID          string
	Name        string
	Description string
	Category    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Listing is one vendor's priced, stocked offer of a catalog product.
// Stock is authoritative inventory and is only decremented through the
// order pipeline's payment-confirmation step.
type Listing struct {
	ID        string
	ProductID string
	VendorID  string
	// Price in currency minor units (e.g. paise).
	Price     int64
	Stock     int64
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (l *Listing) Validate() error {
	if l.ProductID == "" || l.VendorID == "" {
		return ErrInvalidListing
	}
	if l.Stock < 0 {
		return ErrInvalidListing
	}
	if l.Active && l.Price <= 0 {
		return ErrInvalidListing
	}
	return nil
}

// ProductSummary is the read-time aggregation served on product detail pages.
type ProductSummary struct {
	Product       Product
	Listings      []*Listing
	AverageRating float64
	ReviewCount   int64
}

// VendorDashboard aggregates a vendor's catalog and sales at read time.
type VendorDashboard struct {
	VendorID      string
	ListingCount  int64
	PaidOrders    int64
	Revenue       int64
	AverageRating float64
}
