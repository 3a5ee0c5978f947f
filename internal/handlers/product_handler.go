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
)

// ProductHandler handles catalog and stock HTTP requests
type ProductHandler struct {
	products *service.ProductService
	stock    *service.StockService
	log      *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *service.ProductService, stock *service.StockService, log *slog.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		stock:    stock,
		log:      log,
	}
}

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := repository.ProductFilter{
		CategorySlug: r.URL.Query().Get("category"),
		Search:       r.URL.Query().Get("q"),
		Page:         queryInt(r, "page", 1),
		Limit:        queryInt(r, "limit", 20),
	}

	products, total, err := h.products.ListProducts(r.Context(), filter)
	if err != nil {
		h.log.Error("failed to list products", "error", err)
		WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
		return
	}

	WriteData(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"total":    total,
		"page":     filter.Page,
	}, h.log)
}

// GetProduct handles GET /api/products/{productId} (numeric id or slug)
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	idOrSlug := chi.URLParam(r, "productId")
	if idOrSlug == "" {
		WriteError(w, http.StatusBadRequest, MsgInvalidProductID, h.log)
		return
	}

	product, err := h.products.GetProduct(r.Context(), idOrSlug)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			WriteError(w, http.StatusNotFound, MsgProductNotFound, h.log)
			return
		}
		h.log.Error("failed to get product", "product", idOrSlug, "error", err)
		WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
		return
	}

	WriteData(w, http.StatusOK, product, h.log)
}

// GetStock handles GET /api/products/{productId}/stock?size=&color=&variantId=
// It reports live availability: base stock minus open-cart reservations.
func (h *ProductHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseUint(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidProductID, h.log)
		return
	}

	query := service.StockQuery{
		Size:  r.URL.Query().Get("size"),
		Color: r.URL.Query().Get("color"),
	}
	if raw := r.URL.Query().Get("variantId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			WriteError(w, http.StatusBadRequest, MsgInvalidRequest, h.log)
			return
		}
		variantID := uint(id)
		query.VariantID = &variantID
	}

	availability, err := h.stock.Availability(r.Context(), uint(productID), query)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			WriteError(w, http.StatusNotFound, MsgProductNotFound, h.log)
		case errors.Is(err, repository.ErrVariantNotFound), errors.Is(err, service.ErrUnknownVariant):
			WriteError(w, http.StatusNotFound, MsgVariantNotFound, h.log)
		default:
			h.log.Error("failed to resolve stock", "product_id", productID, "error", err)
			WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
		}
		return
	}

	WriteData(w, http.StatusOK, availability, h.log)
}

// ListCategories handles GET /api/categories
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.products.ListCategories(r.Context())
	if err != nil {
		h.log.Error("failed to list categories", "error", err)
		WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
		return
	}
	WriteData(w, http.StatusOK, categories, h.log)
}

// CreateProduct handles POST /api/admin/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidRequest, h.log)
		return
	}

	if err := h.products.CreateProduct(r.Context(), &product); err != nil {
		if errors.Is(err, service.ErrInvalidProduct) {
			WriteError(w, http.StatusBadRequest, MsgInvalidProduct, h.log)
			return
		}
		h.log.Error("failed to create product", "error", err)
		WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
		return
	}

	h.log.Info("product created", "product_id", product.ID, "slug", product.Slug)
	WriteData(w, http.StatusCreated, product, h.log)
}

// UpdateProduct handles PUT /api/admin/products/{productId}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseUint(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidProductID, h.log)
		return
	}

	existing, err := h.products.GetProduct(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			WriteError(w, http.StatusNotFound, MsgProductNotFound, h.log)
			return
		}
		h.log.Error("failed to load product", "product_id", productID, "error", err)
		WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
		return
	}

	if err := json.NewDecoder(r.Body).Decode(existing); err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidRequest, h.log)
		return
	}
	existing.ID = uint(productID)

	if err := h.products.UpdateProduct(r.Context(), existing); err != nil {
		if errors.Is(err, service.ErrInvalidProduct) {
			WriteError(w, http.StatusBadRequest, MsgInvalidProduct, h.log)
			return
		}
		h.log.Error("failed to update product", "product_id", productID, "error", err)
		WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
		return
	}

	WriteData(w, http.StatusOK, existing, h.log)
}

// DeleteProduct handles DELETE /api/admin/products/{productId}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseUint(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidProductID, h.log)
		return
	}

	if err := h.products.DeleteProduct(r.Context(), uint(productID)); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			WriteError(w, http.StatusNotFound, MsgProductNotFound, h.log)
			return
		}
		h.log.Error("failed to delete product", "product_id", productID, "error", err)
		WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
		return
	}

	WriteData(w, http.StatusOK, map[string]interface{}{"deleted": productID}, h.log)
}

// AddVariants handles POST /api/admin/products/{productId}/variants
func (h *ProductHandler) AddVariants(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseUint(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidProductID, h.log)
		return
	}

	var variants []models.ProductVariant
	if err := json.NewDecoder(r.Body).Decode(&variants); err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidRequest, h.log)
		return
	}

	if err := h.products.AddVariants(r.Context(), uint(productID), variants); err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			WriteError(w, http.StatusNotFound, MsgProductNotFound, h.log)
		case errors.Is(err, service.ErrInvalidProduct):
			WriteError(w, http.StatusBadRequest, MsgInvalidProduct, h.log)
		default:
			h.log.Error("failed to add variants", "product_id", productID, "error", err)
			WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
		}
		return
	}

	WriteData(w, http.StatusCreated, map[string]interface{}{"added": len(variants)}, h.log)
}

// ImportSizeStock handles POST /api/admin/products/{productId}/size-stock-import.
// Accepts the legacy {size: {color: qty}} map and converts it to variant rows.
func (h *ProductHandler) ImportSizeStock(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseUint(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidProductID, h.log)
		return
	}

	var legacy models.SizeStockImport
	if err := json.NewDecoder(r.Body).Decode(&legacy); err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidRequest, h.log)
		return
	}

	imported, err := h.products.ImportSizeStock(r.Context(), uint(productID), legacy)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			WriteError(w, http.StatusNotFound, MsgProductNotFound, h.log)
			return
		}
		h.log.Error("failed to import size stock", "product_id", productID, "error", err)
		WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
		return
	}

	h.log.Info("legacy size stock imported", "product_id", productID, "variants", imported)
	WriteData(w, http.StatusOK, map[string]interface{}{"imported": imported}, h.log)
}

// CreateCategory handles POST /api/admin/categories
func (h *ProductHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var category models.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidRequest, h.log)
		return
	}

	if err := h.products.CreateCategory(r.Context(), &category); err != nil {
		if errors.Is(err, service.ErrInvalidProduct) {
			WriteError(w, http.StatusBadRequest, MsgCategoryRequired, h.log)
			return
		}
		h.log.Error("failed to create category", "error", err)
		WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
		return
	}

	WriteData(w, http.StatusCreated, category, h.log)
}

// queryInt reads an integer query parameter with a fallback
func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
