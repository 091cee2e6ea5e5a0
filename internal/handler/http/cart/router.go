package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"marketplace/internal/app/cart"
)

func RegisterRoutes(r chi.Router, s cart.CartService, auth func(http.Handler) http.Handler, l *zap.Logger) {
	handler := NewCartHandler(s, l.With(zap.String("component", "CartHTTPHandler")))

	r.Route("/cart", func(r chi.Router) {
		r.Use(auth)

		r.Get("/", handler.Get)
		r.Post("/", handler.Add)
		r.Patch("/{listingID}", handler.SetQuantity)
		r.Delete("/{listingID}", handler.Remove)
		r.Delete("/", handler.Clear)
	})
}
