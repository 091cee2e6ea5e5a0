package reviews

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"marketplace/internal/app/reviews"
)

func RegisterRoutes(r chi.Router, s reviews.ReviewService, auth func(http.Handler) http.Handler, l *zap.Logger) {
	handler := NewReviewHandler(s, l.With(zap.String("component", "ReviewHTTPHandler")))

	r.Route("/reviews", func(r chi.Router) {
		r.Get("/product/{productID}", handler.ListByProduct)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/", handler.Create)
			r.Patch("/{reviewID}", handler.Update)
			r.Delete("/{reviewID}", handler.Delete)
		})
	})
}
