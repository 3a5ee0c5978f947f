package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bazaarchi/storefront/internal/models"
	"gorm.io/gorm"
)

// ReviewRepository defines data access for product reviews
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ListApprovedByProduct(ctx context.Context, productID uint) ([]models.Review, error)
	Approve(ctx context.Context, reviewID uint) error
	Delete(ctx context.Context, reviewID uint) error
}

// GormReviewRepository implements ReviewRepository on MySQL
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new review repository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// Create inserts a review; the (product, user) unique index rejects duplicates
func (r *GormReviewRepository) Create(ctx context.Context, review *models.Review) error {
	err := r.db.WithContext(ctx).Create(review).Error
	if err != nil && isDuplicateKey(err) {
		return ErrDuplicateReview
	}
	return err
}

// ListApprovedByProduct returns the approved reviews of a product, newest first
func (r *GormReviewRepository) ListApprovedByProduct(ctx context.Context, productID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND approved = ?", productID, true).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// Approve publishes a review
func (r *GormReviewRepository) Approve(ctx context.Context, reviewID uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ?", reviewID).
		UpdateColumn("approved", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// Delete removes a review
func (r *GormReviewRepository) Delete(ctx context.Context, reviewID uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Review{}, reviewID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// isDuplicateKey matches the MySQL duplicate entry error without importing
// the driver's error types here
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "Duplicate entry")
}
