package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bazaarchi/storefront/internal/middleware"
	"github.com/bazaarchi/storefront/internal/repository"
	"github.com/bazaarchi/storefront/internal/service"
	"github.com/go-chi/chi/v5"
)

// ReviewHandler handles product review HTTP requests
type ReviewHandler struct {
	reviews *service.ReviewService
	log     *slog.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews *service.ReviewService, log *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews: reviews,
		log:     log,
	}
}

// createReviewRequest is the POST /api/products/{productId}/reviews body
type createReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ListForProduct handles GET /api/products/{productId}/reviews
func (h *ReviewHandler) ListForProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseUint(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidProductID, h.log)
		return
	}

	summary, err := h.reviews.ProductReviews(r.Context(), uint(productID))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			WriteError(w, http.StatusNotFound, MsgProductNotFound, h.log)
			return
		}
		h.log.Error("failed to list reviews", "product_id", productID, "error", err)
		WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
		return
	}

	WriteData(w, http.StatusOK, summary, h.log)
}

// Create handles POST /api/products/{productId}/reviews
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, MsgUnauthorized, h.log)
		return
	}

	productID, err := strconv.ParseUint(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidProductID, h.log)
		return
	}

	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidRequest, h.log)
		return
	}

	review, err := h.reviews.CreateReview(r.Context(), userID, uint(productID), req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRating):
			WriteError(w, http.StatusBadRequest, MsgInvalidRating, h.log)
		case errors.Is(err, repository.ErrProductNotFound):
			WriteError(w, http.StatusNotFound, MsgProductNotFound, h.log)
		case errors.Is(err, repository.ErrDuplicateReview):
			WriteError(w, http.StatusConflict, MsgDuplicateReview, h.log)
		default:
			h.log.Error("failed to create review", "product_id", productID, "error", err)
			WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
		}
		return
	}

	WriteData(w, http.StatusCreated, review, h.log)
}

// Approve handles PUT /api/admin/reviews/{reviewId}/approve
func (h *ReviewHandler) Approve(w http.ResponseWriter, r *http.Request) {
	reviewID, err := strconv.ParseUint(chi.URLParam(r, "reviewId"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidRequest, h.log)
		return
	}

	if err := h.reviews.Approve(r.Context(), uint(reviewID)); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			WriteError(w, http.StatusNotFound, MsgInvalidRequest, h.log)
			return
		}
		h.log.Error("failed to approve review", "review_id", reviewID, "error", err)
		WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
		return
	}

	WriteData(w, http.StatusOK, map[string]interface{}{"approved": reviewID}, h.log)
}

// Delete handles DELETE /api/admin/reviews/{reviewId}
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	reviewID, err := strconv.ParseUint(chi.URLParam(r, "reviewId"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidRequest, h.log)
		return
	}

	if err := h.reviews.Delete(r.Context(), uint(reviewID)); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			WriteError(w, http.StatusNotFound, MsgInvalidRequest, h.log)
			return
		}
		h.log.Error("failed to delete review", "review_id", reviewID, "error", err)
		WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
		return
	}

	WriteData(w, http.StatusOK, map[string]interface{}{"deleted": reviewID}, h.log)
}
