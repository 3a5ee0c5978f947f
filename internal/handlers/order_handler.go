package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bazaarchi/storefront/internal/middleware"
	"github.com/bazaarchi/storefront/internal/models"
	"github.com/bazaarchi/storefront/internal/repository"
	"github.com/bazaarchi/storefront/internal/service"
	"github.com/go-chi/chi/v5"
)

// OrderHandler handles checkout and order HTTP requests
type OrderHandler struct {
	orders *service.OrderService
	log    *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *service.OrderService, log *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		log:    log,
	}
}

// checkoutRequest is the POST /api/checkout body
type checkoutRequest struct {
	CouponCode string `json:"couponCode,omitempty"`
}

// statusRequest is the PUT /api/admin/orders/{orderNumber}/status body
type statusRequest struct {
	Status        models.OrderStatus   `json:"status"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
}

// Checkout handles POST /api/checkout
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, MsgUnauthorized, h.log)
		return
	}

	cartToken := r.Header.Get(CartTokenHeader)
	if cartToken == "" {
		WriteError(w, http.StatusBadRequest, MsgEmptyCart, h.log)
		return
	}

	var req checkoutRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, MsgInvalidRequest, h.log)
			return
		}
	}

	order, err := h.orders.PlaceOrder(r.Context(), userID, cartToken, req.CouponCode)
	if err != nil {
		h.writeOrderError(w, err)
		return
	}

	h.log.Info("order placed",
		"order_number", order.OrderNumber,
		"user_id", userID,
		"items", len(order.Items),
		"total", order.Total,
	)
	WriteData(w, http.StatusCreated, order, h.log)
}

// ListOrders handles GET /api/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, MsgUnauthorized, h.log)
		return
	}

	orders, err := h.orders.ListOrders(r.Context(), userID)
	if err != nil {
		h.log.Error("failed to list orders", "user_id", userID, "error", err)
		WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
		return
	}

	WriteData(w, http.StatusOK, orders, h.log)
}

// GetOrder handles GET /api/orders/{orderNumber}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, MsgUnauthorized, h.log)
		return
	}

	order, err := h.orders.GetOrder(r.Context(), userID, chi.URLParam(r, "orderNumber"))
	if err != nil {
		h.writeOrderError(w, err)
		return
	}

	WriteData(w, http.StatusOK, order, h.log)
}

// CancelOrder handles POST /api/orders/{orderNumber}/cancel
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, MsgUnauthorized, h.log)
		return
	}

	order, err := h.orders.CancelOrder(r.Context(), userID, chi.URLParam(r, "orderNumber"))
	if err != nil {
		h.writeOrderError(w, err)
		return
	}

	h.log.Info("order cancelled", "order_number", order.OrderNumber, "user_id", userID)
	WriteData(w, http.StatusOK, order, h.log)
}

// ListAllOrders handles GET /api/admin/orders
func (h *OrderHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)

	orders, total, err := h.orders.ListAllOrders(r.Context(), page, limit)
	if err != nil {
		h.log.Error("failed to list all orders", "error", err)
		WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
		return
	}

	WriteData(w, http.StatusOK, map[string]interface{}{
		"orders": orders,
		"total":  total,
		"page":   page,
	}, h.log)
}

// UpdateStatus handles PUT /api/admin/orders/{orderNumber}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidRequest, h.log)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "orderNumber"), req.Status, req.PaymentStatus)
	if err != nil {
		h.writeOrderError(w, err)
		return
	}

	h.log.Info("order status updated",
		"order_number", order.OrderNumber,
		"status", order.Status,
		"payment_status", order.PaymentStatus,
	)
	WriteData(w, http.StatusOK, order, h.log)
}

func (h *OrderHandler) writeOrderError(w http.ResponseWriter, err error) {
	var gate *service.GateError
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		WriteError(w, http.StatusBadRequest, MsgEmptyCart, h.log)
	case errors.Is(err, repository.ErrOrderNotFound), errors.Is(err, service.ErrNotYourOrder):
		// Both read as "not found" so order numbers don't leak across accounts
		WriteError(w, http.StatusNotFound, MsgOrderNotFound, h.log)
	case errors.Is(err, service.ErrCannotCancel):
		WriteError(w, http.StatusBadRequest, MsgCannotCancel, h.log)
	case errors.Is(err, service.ErrInvalidTransition):
		WriteError(w, http.StatusBadRequest, MsgInvalidTransition, h.log)
	case errors.Is(err, repository.ErrCartChanged):
		WriteError(w, http.StatusConflict, MsgCartChanged, h.log)
	case errors.Is(err, repository.ErrInsufficientStock):
		WriteError(w, http.StatusConflict, MsgInsufficientStock, h.log)
	case errors.Is(err, repository.ErrCouponNotFound):
		WriteError(w, http.StatusNotFound, MsgCouponNotFound, h.log)
	case errors.Is(err, repository.ErrCouponExhausted):
		WriteError(w, http.StatusConflict, MsgCouponExhausted, h.log)
	case errors.As(err, &gate):
		WriteError(w, http.StatusBadRequest, gate.Message, h.log)
	default:
		h.log.Error("order operation failed", "error", err)
		WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
	}
}
