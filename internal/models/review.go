package models

import (
	"time"

	"gorm.io/gorm"
)

// Review is a customer rating for a product. One review per user per product;
// only approved reviews are served publicly.
type Review struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProductID uint           `gorm:"uniqueIndex:idx_review_product_user;not null" json:"productId"`
	UserID    uint           `gorm:"uniqueIndex:idx_review_product_user;not null" json:"userId"`
	Rating    int            `gorm:"not null" json:"rating"`
	Comment   string         `gorm:"type:text" json:"comment"`
	Approved  bool           `gorm:"not null;default:false" json:"approved"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ReviewSummary aggregates the approved reviews of a product
type ReviewSummary struct {
	Reviews       []Review `json:"reviews"`
	AverageRating float64  `json:"averageRating"`
	Count         int      `json:"count"`
}

// SummarizeReviews computes the average rating over the given reviews
func SummarizeReviews(reviews []Review) ReviewSummary {
	summary := ReviewSummary{
		Reviews: reviews,
		Count:   len(reviews),
	}
	if len(reviews) == 0 {
		return summary
	}

	total := 0
	for i := range reviews {
		total += reviews[i].Rating
	}
	summary.AverageRating = float64(total) / float64(len(reviews))
	return summary
}
