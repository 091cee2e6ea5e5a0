package reports

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"marketplace/internal/app/reports"
	"marketplace/internal/domain"
	"marketplace/internal/middleware"
)

func RegisterRoutes(r chi.Router, s reports.ReportService, auth func(http.Handler) http.Handler, l *zap.Logger) {
	handler := NewReportHandler(s, l.With(zap.String("component", "ReportHTTPHandler")))

	r.Route("/reports", func(r chi.Router) {
		r.Use(auth)

		r.Post("/", handler.Create)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleAdmin))
			r.Get("/", handler.ListUnhandled)
			r.Post("/{reportID}/resolve", handler.Resolve)
		})
	})
}
