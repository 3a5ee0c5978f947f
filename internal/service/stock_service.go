package service

import (
	"context"
	"errors"

	"github.com/bazaarchi/storefront/internal/models"
	"github.com/bazaarchi/storefront/internal/repository"
)

var (
	ErrUnknownVariant = errors.New("no variant with that size and color")
)

// StockQuery narrows an availability request to one variant, either directly
// by id or by its size/color combination. An empty query addresses the whole
// product.
type StockQuery struct {
	VariantID *uint
	Size      string
	Color     string
}

// Availability is the live purchasable-stock view for a product or variant.
// CartQuantity is the reserved counter maintained transactionally by cart
// mutations, so a single read is sufficient and consistent.
type Availability struct {
	BaseStock      int                    `json:"baseStock"`
	CartQuantity   int                    `json:"cartQuantity"`
	AvailableStock int                    `json:"availableStock"`
	Variant        *models.ProductVariant `json:"variant,omitempty"`
}

// StockService reconciles catalog stock against open-cart reservations
type StockService struct {
	products repository.ProductRepository
}

// NewStockService creates a new stock service
func NewStockService(products repository.ProductRepository) *StockService {
	return &StockService{products: products}
}

// Availability resolves the stock source for the query and reports what is
// actually purchasable right now.
//
// Resolution order: an explicit variant id wins; then the size/color
// combination; a product without variants answers from its flat stock. A
// whole-product query aggregates stock and reservations across every variant.
func (s *StockService) Availability(ctx context.Context, productID uint, query StockQuery) (*Availability, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if query.VariantID != nil {
		variant := findVariantByID(product, *query.VariantID)
		if variant == nil {
			return nil, repository.ErrVariantNotFound
		}
		return availabilityOf(variant.Stock, variant.Reserved, variant), nil
	}

	if query.Size != "" && query.Color != "" {
		if !product.HasVariants() {
			// Products without variant rows carry one flat counter pair
			return availabilityOf(product.Stock, product.Reserved, nil), nil
		}
		variant := product.FindVariant(query.Size, query.Color)
		if variant == nil {
			return nil, ErrUnknownVariant
		}
		return availabilityOf(variant.Stock, variant.Reserved, variant), nil
	}

	// Whole-product request: sum counters across the product
	baseStock := product.Stock
	reserved := product.Reserved
	for i := range product.Variants {
		baseStock += product.Variants[i].Stock
		reserved += product.Variants[i].Reserved
	}
	return availabilityOf(baseStock, reserved, nil), nil
}

// ComputeAvailable clamps base - reserved at zero
func ComputeAvailable(baseStock, reserved int) int {
	available := baseStock - reserved
	if available < 0 {
		return 0
	}
	return available
}

func availabilityOf(baseStock, reserved int, variant *models.ProductVariant) *Availability {
	return &Availability{
		BaseStock:      baseStock,
		CartQuantity:   reserved,
		AvailableStock: ComputeAvailable(baseStock, reserved),
		Variant:        variant,
	}
}

func findVariantByID(product *models.Product, variantID uint) *models.ProductVariant {
	for i := range product.Variants {
		if product.Variants[i].ID == variantID {
			return &product.Variants[i]
		}
	}
	return nil
}
