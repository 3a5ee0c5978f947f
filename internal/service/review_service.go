package service

import (
	"context"
	"errors"

	"github.com/bazaarchi/storefront/internal/models"
	"github.com/bazaarchi/storefront/internal/repository"
)

var (
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// ReviewService handles product review business logic
type ReviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
}

// NewReviewService creates a new review service
func NewReviewService(reviews repository.ReviewRepository, products repository.ProductRepository) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		products: products,
	}
}

// CreateReview stores a pending review for moderation
func (s *ReviewService) CreateReview(ctx context.Context, userID, productID uint, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	review := models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
	}
	if err := s.reviews.Create(ctx, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// ProductReviews returns the approved reviews of a product with its average
// rating
func (s *ReviewService) ProductReviews(ctx context.Context, productID uint) (*models.ReviewSummary, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	reviews, err := s.reviews.ListApprovedByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	summary := models.SummarizeReviews(reviews)
	return &summary, nil
}

// Approve publishes a review
func (s *ReviewService) Approve(ctx context.Context, reviewID uint) error {
	return s.reviews.Approve(ctx, reviewID)
}

// Delete removes a review
func (s *ReviewService) Delete(ctx context.Context, reviewID uint) error {
	return s.reviews.Delete(ctx, reviewID)
}
