package cart

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"marketplace/internal/app/cart"
	"marketplace/internal/handler/http/api"
	"marketplace/internal/middleware"
)

type CartHandler struct {
	service cart.CartService
	logger  *zap.Logger
}

func NewCartHandler(s cart.CartService, l *zap.Logger) *CartHandler {
	return &CartHandler{service: s, logger: l}
}

type addRequest struct {
	ListingID string `json:"listing_id"`
	Quantity  int64  `json:"quantity"`
}

type quantityRequest struct {
	Quantity int64 `json:"quantity"`
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())

	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for cart Add", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ListingID == "" {
		http.Error(w, "Listing ID is required", http.StatusBadRequest)
		return
	}

	if err := h.service.Add(r.Context(), session.UserID, req.ListingID, req.Quantity); err != nil {
		api.WriteError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())

	res, err := h.service.Get(r.Context(), session.UserID)
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, res)
}

func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())
	listingID := chi.URLParam(r, "listingID")

	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for cart SetQuantity", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.SetQuantity(r.Context(), session.UserID, listingID, req.Quantity); err != nil {
		api.WriteError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())
	listingID := chi.URLParam(r, "listingID")

	if err := h.service.Remove(r.Context(), session.UserID, listingID); err != nil {
		api.WriteError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())

	if err := h.service.Clear(r.Context(), session.UserID); err != nil {
		api.WriteError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
