package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bazaarchi/storefront/internal/models"
	"github.com/bazaarchi/storefront/internal/repository"
	"github.com/bazaarchi/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// CouponHandler handles coupon validation and the admin coupon surface
type CouponHandler struct {
	coupons *service.CouponService
	log     *slog.Logger
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(coupons *service.CouponService, log *slog.Logger) *CouponHandler {
	return &CouponHandler{
		coupons: coupons,
		log:     log,
	}
}

// validateRequest is the POST /api/coupons/validate body
type validateRequest struct {
	Code        string          `json:"code"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// Validate handles POST /api/coupons/validate.
// Gate failures come back as 400 with the gate's own Persian message; an
// unknown code is a 404.
func (h *CouponHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidRequest, h.log)
		return
	}
	if req.Code == "" {
		WriteError(w, http.StatusBadRequest, MsgInvalidRequest, h.log)
		return
	}

	result, err := h.coupons.Validate(r.Context(), req.Code, req.TotalAmount)
	if err != nil {
		var gate *service.GateError
		switch {
		case errors.Is(err, repository.ErrCouponNotFound):
			WriteError(w, http.StatusNotFound, MsgCouponNotFound, h.log)
		case errors.As(err, &gate):
			WriteError(w, http.StatusBadRequest, gate.Message, h.log)
		default:
			h.log.Error("failed to validate coupon", "error", err)
			WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
		}
		return
	}

	WriteData(w, http.StatusOK, result, h.log)
}

// List handles GET /api/admin/coupons
func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.List(r.Context())
	if err != nil {
		h.log.Error("failed to list coupons", "error", err)
		WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
		return
	}
	WriteData(w, http.StatusOK, coupons, h.log)
}

// Create handles POST /api/admin/coupons
func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var coupon models.Coupon
	if err := json.NewDecoder(r.Body).Decode(&coupon); err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidRequest, h.log)
		return
	}

	if err := h.coupons.Create(r.Context(), &coupon); err != nil {
		var gate *service.GateError
		if errors.As(err, &gate) {
			WriteError(w, http.StatusBadRequest, gate.Message, h.log)
			return
		}
		h.log.Error("failed to create coupon", "error", err)
		WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
		return
	}

	h.log.Info("coupon created", "coupon_id", coupon.ID, "code", coupon.Code)
	WriteData(w, http.StatusCreated, coupon, h.log)
}

// Update handles PUT /api/admin/coupons/{couponId}
func (h *CouponHandler) Update(w http.ResponseWriter, r *http.Request) {
	couponID, err := strconv.ParseUint(chi.URLParam(r, "couponId"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidRequest, h.log)
		return
	}

	var coupon models.Coupon
	if err := json.NewDecoder(r.Body).Decode(&coupon); err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidRequest, h.log)
		return
	}
	coupon.ID = uint(couponID)

	if err := h.coupons.Update(r.Context(), &coupon); err != nil {
		var gate *service.GateError
		if errors.As(err, &gate) {
			WriteError(w, http.StatusBadRequest, gate.Message, h.log)
			return
		}
		h.log.Error("failed to update coupon", "coupon_id", couponID, "error", err)
		WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
		return
	}

	WriteData(w, http.StatusOK, coupon, h.log)
}
