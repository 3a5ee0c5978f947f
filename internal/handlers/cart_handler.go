package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bazaarchi/storefront/internal/repository"
	"github.com/bazaarchi/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CartTokenHeader carries the opaque cart identifier. The server mints one
// when the client has none and echoes it on every cart response.
const CartTokenHeader = "X-Cart-Token"

// CartHandler handles cart HTTP requests
type CartHandler struct {
	carts *service.CartService
	log   *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *service.CartService, log *slog.Logger) *CartHandler {
	return &CartHandler{
		carts: carts,
		log:   log,
	}
}

// addItemRequest is the POST /api/cart/items body
type addItemRequest struct {
	ProductID uint   `json:"productId"`
	VariantID *uint  `json:"variantId,omitempty"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Quantity  int    `json:"quantity"`
}

// updateItemRequest is the PUT /api/cart/items/{itemId} body
type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	token := h.cartToken(w, r)

	cart, err := h.carts.GetCart(r.Context(), token)
	if err != nil {
		h.log.Error("failed to load cart", "error", err)
		WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
		return
	}

	WriteData(w, http.StatusOK, cart, h.log)
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	token := h.cartToken(w, r)

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidRequest, h.log)
		return
	}

	item, err := h.carts.AddItem(r.Context(), token, service.AddItemRequest{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Size:      req.Size,
		Color:     req.Color,
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.writeCartError(w, err)
		return
	}

	WriteData(w, http.StatusCreated, item, h.log)
}

// UpdateItem handles PUT /api/cart/items/{itemId}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	token := h.cartToken(w, r)

	itemID, err := strconv.ParseUint(chi.URLParam(r, "itemId"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidRequest, h.log)
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidRequest, h.log)
		return
	}

	item, err := h.carts.UpdateQuantity(r.Context(), token, uint(itemID), req.Quantity)
	if err != nil {
		h.writeCartError(w, err)
		return
	}

	if item == nil {
		WriteData(w, http.StatusOK, map[string]interface{}{"removed": itemID}, h.log)
		return
	}
	WriteData(w, http.StatusOK, item, h.log)
}

// RemoveItem handles DELETE /api/cart/items/{itemId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	token := h.cartToken(w, r)

	itemID, err := strconv.ParseUint(chi.URLParam(r, "itemId"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidRequest, h.log)
		return
	}

	if err := h.carts.RemoveItem(r.Context(), token, uint(itemID)); err != nil {
		h.writeCartError(w, err)
		return
	}

	WriteData(w, http.StatusOK, map[string]interface{}{"removed": itemID}, h.log)
}

// Clear handles DELETE /api/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	token := h.cartToken(w, r)

	if err := h.carts.Clear(r.Context(), token); err != nil {
		h.log.Error("failed to clear cart", "error", err)
		WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
		return
	}

	WriteData(w, http.StatusOK, map[string]interface{}{"cleared": true}, h.log)
}

// cartToken reads the client's cart token, minting and echoing a fresh one
// when absent
func (h *CartHandler) cartToken(w http.ResponseWriter, r *http.Request) string {
	token := r.Header.Get(CartTokenHeader)
	if token == "" {
		token = uuid.New().String()
	}
	w.Header().Set(CartTokenHeader, token)
	return token
}

func (h *CartHandler) writeCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidQuantity):
		WriteError(w, http.StatusBadRequest, MsgInvalidQuantity, h.log)
	case errors.Is(err, service.ErrProductInactive):
		WriteError(w, http.StatusBadRequest, MsgProductInactive, h.log)
	case errors.Is(err, repository.ErrProductNotFound):
		WriteError(w, http.StatusNotFound, MsgProductNotFound, h.log)
	case errors.Is(err, repository.ErrVariantNotFound), errors.Is(err, service.ErrUnknownVariant):
		WriteError(w, http.StatusNotFound, MsgVariantNotFound, h.log)
	case errors.Is(err, repository.ErrCartItemNotFound):
		WriteError(w, http.StatusNotFound, MsgCartItemNotFound, h.log)
	case errors.Is(err, repository.ErrInsufficientStock):
		WriteError(w, http.StatusConflict, MsgInsufficientStock, h.log)
	default:
		h.log.Error("cart operation failed", "error", err)
		WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
	}
}
