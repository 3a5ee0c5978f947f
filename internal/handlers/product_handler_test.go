package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bazaarchi/storefront/internal/models"
	"github.com/bazaarchi/storefront/internal/repository"
	"github.com/bazaarchi/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// stubProductRepo serves a fixed catalog
type stubProductRepo struct {
	products map[uint]*models.Product
}

func (s *stubProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]models.Product, int64, error) {
	products := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, *p)
	}
	return products, int64(len(products)), nil
}

func (s *stubProductRepo) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (s *stubProductRepo) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	for _, p := range s.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (s *stubProductRepo) Create(ctx context.Context, product *models.Product) error {
	product.ID = uint(len(s.products) + 1)
	s.products[product.ID] = product
	return nil
}

func (s *stubProductRepo) Update(ctx context.Context, product *models.Product) error {
	s.products[product.ID] = product
	return nil
}

func (s *stubProductRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := s.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *stubProductRepo) UpsertVariants(ctx context.Context, variants []models.ProductVariant) error {
	for _, v := range variants {
		product := s.products[v.ProductID]
		product.Variants = append(product.Variants, v)
	}
	return nil
}

func (s *stubProductRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	return nil, nil
}

func (s *stubProductRepo) CreateCategory(ctx context.Context, category *models.Category) error {
	return nil
}

func newProductTestHandler(t *testing.T) *ProductHandler {
	t.Helper()

	repo := &stubProductRepo{products: map[uint]*models.Product{
		1: {
			ID:       1,
			Name:     "کلاه بافتنی",
			Slug:     "knit-hat",
			Price:    decimal.NewFromInt(250_000),
			Stock:    10,
			Reserved: 7,
			IsActive: true,
		},
		2: {
			ID:       2,
			Name:     "تیشرت نخی",
			Slug:     "cotton-tshirt",
			Price:    decimal.NewFromInt(450_000),
			IsActive: true,
			Variants: []models.ProductVariant{
				{ID: 10, ProductID: 2, Size: "M", Color: "سفید", Stock: 5, Reserved: 2},
				{ID: 11, ProductID: 2, Size: "L", Color: "مشکی", Stock: 8, Reserved: 8},
			},
		},
	}}

	return NewProductHandler(
		service.NewProductService(repo),
		service.NewStockService(repo),
		testDiscardLogger(),
	)
}

// getWithRouteParam runs a GET through the handler with a chi URL parameter
// bound, the way the router would
func getWithRouteParam(t *testing.T, handlerFunc http.HandlerFunc, target, key, value string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rr := httptest.NewRecorder()
	handlerFunc(rr, req)
	return rr
}

func decodeAvailability(t *testing.T, rr *httptest.ResponseRecorder) service.Availability {
	t.Helper()

	var resp struct {
		Success bool                 `json:"success"`
		Data    service.Availability `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if !resp.Success {
		t.Fatal("success = false")
	}
	return resp.Data
}

func TestProductHandler_GetStock_FlatProduct(t *testing.T) {
	handler := newProductTestHandler(t)

	rr := getWithRouteParam(t, handler.GetStock, "/api/products/1/stock", "productId", "1")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	data := decodeAvailability(t, rr)
	if data.BaseStock != 10 || data.CartQuantity != 7 || data.AvailableStock != 3 {
		t.Errorf("availability = %+v, want 10/7/3", data)
	}
}

func TestProductHandler_GetStock_VariantByCombination(t *testing.T) {
	handler := newProductTestHandler(t)

	rr := getWithRouteParam(t, handler.GetStock,
		"/api/products/2/stock?size=M&color=%D8%B3%D9%81%DB%8C%D8%AF", "productId", "2")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	data := decodeAvailability(t, rr)
	if data.AvailableStock != 3 {
		t.Errorf("availableStock = %d, want 3", data.AvailableStock)
	}
	if data.Variant == nil || data.Variant.ID != 10 {
		t.Errorf("variant = %+v, want id 10", data.Variant)
	}
}

func TestProductHandler_GetStock_WholeProductAggregates(t *testing.T) {
	handler := newProductTestHandler(t)

	rr := getWithRouteParam(t, handler.GetStock, "/api/products/2/stock", "productId", "2")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	data := decodeAvailability(t, rr)
	if data.BaseStock != 13 || data.CartQuantity != 10 || data.AvailableStock != 3 {
		t.Errorf("availability = %+v, want 13/10/3", data)
	}
}

func TestProductHandler_GetStock_Errors(t *testing.T) {
	handler := newProductTestHandler(t)

	tests := []struct {
		name       string
		target     string
		productID  string
		wantStatus int
	}{
		{"unknown product", "/api/products/99/stock", "99", http.StatusNotFound},
		{"unknown combination", "/api/products/2/stock?size=XL&color=zard", "2", http.StatusNotFound},
		{"unknown variant id", "/api/products/2/stock?variantId=42", "2", http.StatusNotFound},
		{"bad product id", "/api/products/abc/stock", "abc", http.StatusBadRequest},
		{"bad variant id", "/api/products/2/stock?variantId=abc", "2", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := getWithRouteParam(t, handler.GetStock, tt.target, "productId", tt.productID)
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d, body %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
		})
	}
}

func TestProductHandler_GetProduct_BySlug(t *testing.T) {
	handler := newProductTestHandler(t)

	rr := getWithRouteParam(t, handler.GetProduct, "/api/products/knit-hat", "productId", "knit-hat")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp struct {
		Data models.Product `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Data.ID != 1 {
		t.Errorf("product id = %d, want 1", resp.Data.ID)
	}
}

func TestProductHandler_GetProduct_NotFound(t *testing.T) {
	handler := newProductTestHandler(t)

	rr := getWithRouteParam(t, handler.GetProduct, "/api/products/no-such", "productId", "no-such")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}
