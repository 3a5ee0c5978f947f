package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bazaarchi/storefront/internal/models"
	"github.com/bazaarchi/storefront/internal/repository"
	"github.com/bazaarchi/storefront/internal/service"
	"github.com/shopspring/decimal"
)

// stubCartRepo keeps cart lines in memory keyed by token
type stubCartRepo struct {
	items  map[string][]models.CartItem
	nextID uint
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{items: make(map[string][]models.CartItem), nextID: 1}
}

func (s *stubCartRepo) GetItems(ctx context.Context, token string) ([]models.CartItem, error) {
	return s.items[token], nil
}

func (s *stubCartRepo) AddItem(ctx context.Context, token string, productID uint, variantID *uint, quantity int, unitPrice decimal.Decimal) (*models.CartItem, error) {
	item := models.CartItem{
		ID:        s.nextID,
		CartToken: token,
		ProductID: productID,
		VariantID: variantID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}
	s.nextID++
	s.items[token] = append(s.items[token], item)
	return &item, nil
}

func (s *stubCartRepo) UpdateQuantity(ctx context.Context, token string, itemID uint, quantity int) (*models.CartItem, error) {
	lines := s.items[token]
	for i := range lines {
		if lines[i].ID == itemID {
			if quantity == 0 {
				s.items[token] = append(lines[:i], lines[i+1:]...)
				return nil, nil
			}
			lines[i].Quantity = quantity
			return &lines[i], nil
		}
	}
	return nil, repository.ErrCartItemNotFound
}

func (s *stubCartRepo) RemoveItem(ctx context.Context, token string, itemID uint) error {
	lines := s.items[token]
	for i := range lines {
		if lines[i].ID == itemID {
			s.items[token] = append(lines[:i], lines[i+1:]...)
			return nil
		}
	}
	return repository.ErrCartItemNotFound
}

func (s *stubCartRepo) Clear(ctx context.Context, token string) error {
	delete(s.items, token)
	return nil
}

func newCartTestHandler(t *testing.T) *CartHandler {
	t.Helper()

	products := &stubProductRepo{products: map[uint]*models.Product{
		1: {
			ID:       1,
			Name:     "کلاه بافتنی",
			Slug:     "knit-hat",
			Price:    decimal.NewFromInt(250_000),
			Stock:    10,
			IsActive: true,
		},
	}}
	carts := service.NewCartService(products, newStubCartRepo())
	return NewCartHandler(carts, testDiscardLogger())
}

func TestCartHandler_MintsTokenWhenAbsent(t *testing.T) {
	handler := newCartTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rr := httptest.NewRecorder()
	handler.GetCart(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if rr.Header().Get(CartTokenHeader) == "" {
		t.Error("expected a minted cart token on the response")
	}
}

func TestCartHandler_EchoesClientToken(t *testing.T) {
	handler := newCartTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set(CartTokenHeader, "my-cart")
	rr := httptest.NewRecorder()
	handler.GetCart(rr, req)

	if got := rr.Header().Get(CartTokenHeader); got != "my-cart" {
		t.Errorf("token = %q, want my-cart", got)
	}
}

func TestCartHandler_AddItemThenGetCart(t *testing.T) {
	handler := newCartTestHandler(t)

	body := `{"productId":1,"quantity":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(body))
	req.Header.Set(CartTokenHeader, "my-cart")
	rr := httptest.NewRecorder()
	handler.AddItem(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d, body %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set(CartTokenHeader, "my-cart")
	rr = httptest.NewRecorder()
	handler.GetCart(rr, req)

	var resp struct {
		Data models.Cart `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Data.TotalQuantity != 2 {
		t.Errorf("totalQuantity = %d, want 2", resp.Data.TotalQuantity)
	}
	if !resp.Data.Subtotal.Equal(decimal.NewFromInt(500_000)) {
		t.Errorf("subtotal = %s, want 500000", resp.Data.Subtotal)
	}
}

func TestCartHandler_AddItem_Errors(t *testing.T) {
	handler := newCartTestHandler(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"zero quantity", `{"productId":1,"quantity":0}`, http.StatusBadRequest},
		{"unknown product", `{"productId":99,"quantity":1}`, http.StatusNotFound},
		{"malformed body", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(tt.body))
			req.Header.Set(CartTokenHeader, "my-cart")
			rr := httptest.NewRecorder()
			handler.AddItem(rr, req)
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d, body %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
		})
	}
}
