package service

import (
	"context"
	"errors"

	"github.com/bazaarchi/storefront/internal/models"
	"github.com/bazaarchi/storefront/internal/repository"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrProductInactive = errors.New("product is not available")
)

// AddItemRequest describes one add-to-cart action. The variant may be named
// directly or by size/color.
type AddItemRequest struct {
	ProductID uint
	VariantID *uint
	Size      string
	Color     string
	Quantity  int
}

// CartService handles cart business logic. Stock reservation itself happens
// inside the repository transaction; this layer resolves variants and prices.
type CartService struct {
	products repository.ProductRepository
	carts    repository.CartRepository
}

// NewCartService creates a new cart service
func NewCartService(products repository.ProductRepository, carts repository.CartRepository) *CartService {
	return &CartService{
		products: products,
		carts:    carts,
	}
}

// GetCart returns the cart with computed totals
func (s *CartService) GetCart(ctx context.Context, token string) (*models.Cart, error) {
	items, err := s.carts.GetItems(ctx, token)
	if err != nil {
		return nil, err
	}
	cart := models.BuildCart(token, items)
	return &cart, nil
}

// AddItem resolves the product and variant, snapshots the unit price and adds
// the line to the cart, reserving stock
func (s *CartService) AddItem(ctx context.Context, token string, req AddItemRequest) (*models.CartItem, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrProductInactive
	}

	var variant *models.ProductVariant
	switch {
	case req.VariantID != nil:
		variant = findVariantByID(product, *req.VariantID)
		if variant == nil {
			return nil, repository.ErrVariantNotFound
		}
	case req.Size != "" && req.Color != "":
		if product.HasVariants() {
			variant = product.FindVariant(req.Size, req.Color)
			if variant == nil {
				return nil, ErrUnknownVariant
			}
		}
	default:
		if product.HasVariants() {
			// Variant products cannot be carted without picking a combination
			return nil, ErrUnknownVariant
		}
	}

	unitPrice := product.SalePrice()
	var variantID *uint
	if variant != nil {
		unitPrice = variant.UnitPrice(product)
		variantID = &variant.ID
	}

	return s.carts.AddItem(ctx, token, product.ID, variantID, req.Quantity, unitPrice)
}

// UpdateQuantity sets a line's quantity; zero removes the line
func (s *CartService) UpdateQuantity(ctx context.Context, token string, itemID uint, quantity int) (*models.CartItem, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	return s.carts.UpdateQuantity(ctx, token, itemID, quantity)
}

// RemoveItem deletes a line and releases its reservation
func (s *CartService) RemoveItem(ctx context.Context, token string, itemID uint) error {
	return s.carts.RemoveItem(ctx, token, itemID)
}

// Clear empties the cart and releases every reservation
func (s *CartService) Clear(ctx context.Context, token string) error {
	return s.carts.Clear(ctx, token)
}
