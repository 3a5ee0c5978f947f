package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/bazaarchi/storefront/internal/models"
	"github.com/bazaarchi/storefront/internal/repository"
)

var (
	ErrInvalidProduct = errors.New("invalid product data")
)

// ProductService handles catalog business logic
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// ListProducts returns a page of the catalog
func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]models.Product, int64, error) {
	return s.repo.List(ctx, filter)
}

// GetProduct accepts either a numeric id or a slug
func (s *ProductService) GetProduct(ctx context.Context, idOrSlug string) (*models.Product, error) {
	if id, err := strconv.ParseUint(idOrSlug, 10, 64); err == nil {
		return s.repo.GetByID(ctx, uint(id))
	}
	return s.repo.GetBySlug(ctx, idOrSlug)
}

// ListCategories returns all categories
func (s *ProductService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.ListCategories(ctx)
}

// CreateProduct inserts a product after basic validation
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.Name == "" || product.Slug == "" || product.Price.IsNegative() {
		return ErrInvalidProduct
	}
	if product.DiscountPercent < 0 || product.DiscountPercent > 100 {
		return ErrInvalidProduct
	}
	return s.repo.Create(ctx, product)
}

// UpdateProduct saves product changes
func (s *ProductService) UpdateProduct(ctx context.Context, product *models.Product) error {
	if product.Name == "" || product.Price.IsNegative() {
		return ErrInvalidProduct
	}
	return s.repo.Update(ctx, product)
}

// DeleteProduct removes a product from the catalog
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// AddVariants attaches size/color combinations to a product
func (s *ProductService) AddVariants(ctx context.Context, productID uint, variants []models.ProductVariant) error {
	if _, err := s.repo.GetByID(ctx, productID); err != nil {
		return err
	}
	for i := range variants {
		variants[i].ProductID = productID
		if variants[i].Size == "" || variants[i].Color == "" || variants[i].Stock < 0 {
			return ErrInvalidProduct
		}
	}
	return s.repo.UpsertVariants(ctx, variants)
}

// ImportSizeStock converts a legacy nested size/color stock map into variant
// rows. The map is accepted only here; nothing serves from it.
func (s *ProductService) ImportSizeStock(ctx context.Context, productID uint, legacy models.SizeStockImport) (int, error) {
	if _, err := s.repo.GetByID(ctx, productID); err != nil {
		return 0, err
	}

	variants := legacy.ToVariants(productID)
	if len(variants) == 0 {
		return 0, nil
	}
	if err := s.repo.UpsertVariants(ctx, variants); err != nil {
		return 0, err
	}
	return len(variants), nil
}

// CreateCategory inserts a category
func (s *ProductService) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.Name == "" || category.Slug == "" {
		return ErrInvalidProduct
	}
	return s.repo.CreateCategory(ctx, category)
}
