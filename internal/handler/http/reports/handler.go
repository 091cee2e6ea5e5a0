package reports

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"marketplace/internal/app/reports"
	"marketplace/internal/handler/http/api"
	"marketplace/internal/middleware"
)

type ReportHandler struct {
	service reports.ReportService
	logger  *zap.Logger
}

func NewReportHandler(s reports.ReportService, l *zap.Logger) *ReportHandler {
	return &ReportHandler{service: s, logger: l}
}

func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())

	var req reports.CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for report Create", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res, err := h.service.Create(r.Context(), session.UserID, &req)
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, res)
}

func (h *ReportHandler) ListUnhandled(w http.ResponseWriter, r *http.Request) {
	limit, offset := api.Pagination(r)

	res, err := h.service.ListUnhandled(r.Context(), limit, offset)
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, res)
}

func (h *ReportHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")

	var req reports.ResolveReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for report Resolve", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.Resolve(r.Context(), reportID, req.Resolution); err != nil {
		api.WriteError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
