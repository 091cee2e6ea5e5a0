package orders

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"marketplace/internal/app/orders"
	"marketplace/internal/domain"
	"marketplace/internal/middleware"
)

func RegisterRoutes(r chi.Router, s orders.OrderService, auth, checkoutLimit func(http.Handler) http.Handler, l *zap.Logger) {
	handler := NewOrderHandler(s, l.With(zap.String("component", "OrderHTTPHandler")))

	r.Route("/orders", func(r chi.Router) {
		r.Use(auth)

		r.Group(func(r chi.Router) {
			r.Use(checkoutLimit)
			r.Post("/create-order", handler.CreateOrder)
		})
		r.Post("/verify-payment", handler.VerifyPayment)
		r.Post("/demo-checkout", handler.DemoCheckout)

		r.Get("/my-orders", handler.ListMine)
		r.Get("/{orderID}", handler.GetOrder)
		r.Post("/{orderID}/cancel", handler.Cancel)
		r.Post("/{orderID}/delivered", handler.MarkDelivered)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleVendor, domain.RoleAdmin))
			r.Get("/vendor/my-orders", handler.ListVendorOrders)
			r.Get("/vendor/payouts", handler.ListVendorPayouts)
			r.Post("/{orderID}/shipped", handler.MarkShipped)
		})
	})
}
