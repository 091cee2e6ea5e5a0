package cache

import "fmt"

// Key prefixes group cached responses by resource so writes can invalidate a
// whole family at once: all product entries flush together, review entries
// flush per product, per-user entries by exact key.
const (
	ProductPrefix = "product:"
	VendorPrefix  = "vendor:"
	ReviewPrefix  = "reviews:"
)

func ProductListKey() string { return ProductPrefix + "list" }

func ProductKey(productID string) string {
	return fmt.Sprintf("%s%s", ProductPrefix, productID)
}

func VendorDashboardKey(vendorID string) string {
	return fmt.Sprintf("%sdashboard:%s", VendorPrefix, vendorID)
}

func ProductReviewsKey(productID string) string {
	return fmt.Sprintf("%s%s", ReviewPrefix, productID)
}

func UserOrdersKey(userID string, limit, offset int) string {
	return fmt.Sprintf("orders:user:%s:%d:%d", userID, limit, offset)
}

func UserOrdersPrefix(userID string) string {
	return fmt.Sprintf("orders:user:%s:", userID)
}
