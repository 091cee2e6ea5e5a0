package domain

import (
	"sort"
	"time"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleAdmin    Role = "admin"
)

// Session is the identity resolved from a bearer token. Authentication
// mechanics live outside this service; the session store is a collaborator.
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

// CartLine is a session-scoped snapshot of a listing taken at add-to-cart
// time. Availability is re-validated at checkout, not here. AddedAt keeps the
// cart an ordered sequence: merging quantity into an existing line keeps the
// line's original position.
type CartLine struct {
	ListingID   string    `json:"listing_id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	VendorID    string    `json:"vendor_id"`
	UnitPrice   int64     `json:"unit_price"`
	Quantity    int64     `json:"quantity"`
	AddedAt     time.Time `json:"added_at"`
}

// SortCartLines restores insertion order for lines loaded from an unordered
// store (the cart hash has no field order of its own).
func SortCartLines(lines []CartLine) {
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].AddedAt.Equal(lines[j].AddedAt) {
			return lines[i].ListingID < lines[j].ListingID
		}
		return lines[i].AddedAt.Before(lines[j].AddedAt)
	})
}
