package domain

import "time"

// Report is a user complaint about a vendor, optionally about one listing.
type Report struct {
	ID         string
	ReporterID string
	VendorID   string
	ListingID  string
	Reason     string
	Details    string
	Handled    bool
	Resolution string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
