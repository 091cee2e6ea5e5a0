package reviews

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"marketplace/internal/app/reviews"
	"marketplace/internal/handler/http/api"
	"marketplace/internal/middleware"
)

type ReviewHandler struct {
	service reviews.ReviewService
	logger  *zap.Logger
}

func NewReviewHandler(s reviews.ReviewService, l *zap.Logger) *ReviewHandler {
	return &ReviewHandler{service: s, logger: l}
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())

	var req reviews.CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for review Create", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.OrderID == "" || req.ProductID == "" || req.VendorID == "" {
		http.Error(w, "Order, product and vendor IDs are required", http.StatusBadRequest)
		return
	}

	res, err := h.service.Create(r.Context(), session.UserID, &req)
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, res)
}

func (h *ReviewHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	limit, offset := api.Pagination(r)

	res, err := h.service.ListByProduct(r.Context(), productID, limit, offset)
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, res)
}

func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())
	reviewID := chi.URLParam(r, "reviewID")

	var req reviews.UpdateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for review Update", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res, err := h.service.Update(r.Context(), session.UserID, reviewID, &req)
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, res)
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())
	reviewID := chi.URLParam(r, "reviewID")

	if err := h.service.Delete(r.Context(), session.UserID, session.Role, reviewID); err != nil {
		api.WriteError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
