package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/bazaarchi/storefront/internal/config"
	"github.com/bazaarchi/storefront/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Sentinel errors shared by all repositories
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrVariantNotFound   = errors.New("variant not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrCartChanged       = errors.New("cart changed during checkout")
	ErrCouponNotFound    = errors.New("coupon not found")
	ErrCouponExhausted   = errors.New("coupon usage limit reached")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOrderNotFound     = errors.New("order not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrReviewNotFound    = errors.New("review not found")
	ErrDuplicateReview   = errors.New("review already exists for this product")
)

// Open connects to MySQL and runs schema migration
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.ProductVariant{},
		&models.CartItem{},
		&models.Coupon{},
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}
