package catalog

type CreateProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type CreateListingRequest struct {
	ProductID string `json:"product_id"`
	Price     int64  `json:"price"`
	Stock     int64  `json:"stock"`
	Active    bool   `json:"active"`
}

type UpdateListingRequest struct {
	Price  *int64 `json:"price,omitempty"`
	Stock  *int64 `json:"stock,omitempty"`
	Active *bool  `json:"active,omitempty"`
}

type ListingResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	VendorID  string `json:"vendor_id"`
	Price     int64  `json:"price"`
	Stock     int64  `json:"stock"`
	Active    bool   `json:"active"`
}

type ProductResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type ProductSummaryResponse struct {
	Product       ProductResponse   `json:"product"`
	Listings      []ListingResponse `json:"listings"`
	AverageRating float64           `json:"average_rating"`
	ReviewCount   int64             `json:"review_count"`
}

type VendorDashboardResponse struct {
	VendorID      string  `json:"vendor_id"`
	ListingCount  int64   `json:"listing_count"`
	PaidOrders    int64   `json:"paid_orders"`
	Revenue       int64   `json:"revenue"`
	AverageRating float64 `json:"average_rating"`
}
