package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"marketplace/internal/app/catalog"
	"marketplace/internal/domain"
	"marketplace/internal/middleware"
)

func RegisterRoutes(r chi.Router, s catalog.CatalogService, auth func(http.Handler) http.Handler, l *zap.Logger) {
	handler := NewCatalogHandler(s, l.With(zap.String("component", "CatalogHTTPHandler")))

	r.Route("/products", func(r chi.Router) {
		r.Get("/", handler.ListProducts)
		r.Get("/{productID}", handler.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(auth, middleware.RequireRole(domain.RoleVendor, domain.RoleAdmin))
			r.Post("/", handler.CreateProduct)
		})
	})

	r.Route("/vendor", func(r chi.Router) {
		r.Use(auth, middleware.RequireRole(domain.RoleVendor, domain.RoleAdmin))

		r.Post("/listings", handler.CreateListing)
		r.Get("/listings", handler.ListMyListings)
		r.Patch("/listings/{listingID}", handler.UpdateListing)
		r.Get("/dashboard", handler.VendorDashboard)
	})
}
