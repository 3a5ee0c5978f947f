package repository

import (
	"context"
	"errors"

	"github.com/bazaarchi/storefront/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductFilter narrows catalog listings
type ProductFilter struct {
	CategorySlug    string
	Search          string
	Page            int
	Limit           int
	IncludeInactive bool
}

// ProductRepository defines data access for products, variants and categories
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) error
	UpsertVariants(ctx context.Context, variants []models.ProductVariant) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
}

// GormProductRepository implements ProductRepository on MySQL
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new product repository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// List returns a page of products matching the filter plus the total count
func (r *GormProductRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.CategorySlug != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}
	if filter.Search != "" {
		query = query.Where("products.name LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var products []models.Product
	err := query.
		Preload("Variants").
		Preload("Category").
		Order("products.created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// GetByID returns a product with its variants and category
func (r *GormProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Preload("Category").
		First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// GetBySlug returns a product by its URL slug
func (r *GormProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Preload("Category").
		Where("slug = ?", slug).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// Create inserts a product together with any variants
func (r *GormProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update saves changed product fields
func (r *GormProductRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete soft-deletes a product and its variants
func (r *GormProductRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProductNotFound
		}
		return tx.Where("product_id = ?", id).Delete(&models.ProductVariant{}).Error
	})
}

// UpsertVariants inserts variant rows, updating stock on (product, size, color)
// conflicts. This is the landing path for legacy size-stock imports.
func (r *GormProductRepository) UpsertVariants(ctx context.Context, variants []models.ProductVariant) error {
	if len(variants) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "size"}, {Name: "color"}},
			DoUpdates: clause.AssignmentColumns([]string{"stock"}),
		}).
		Create(&variants).Error
}

// ListCategories returns all categories
func (r *GormProductRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).Order("name").Find(&categories).Error
	return categories, err
}

// CreateCategory inserts a category
func (r *GormProductRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}
