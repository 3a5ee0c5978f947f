package repository

import (
	"context"
	"errors"

	"github.com/bazaarchi/storefront/internal/models"
	"gorm.io/gorm"
)

// CouponRepository defines data access for coupons
type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	AllCodes(ctx context.Context) ([]string, error)
	List(ctx context.Context) ([]models.Coupon, error)
	Create(ctx context.Context, coupon *models.Coupon) error
	Update(ctx context.Context, coupon *models.Coupon) error
}

// GormCouponRepository implements CouponRepository on MySQL
type GormCouponRepository struct {
	db *gorm.DB
}

// NewGormCouponRepository creates a new coupon repository
func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// FindByCode looks up a coupon by its normalized code
func (r *GormCouponRepository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Where("code = ?", models.NormalizeCouponCode(code)).
		First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	return &coupon, nil
}

// AllCodes returns every coupon code, used to seed the negative cache at boot
func (r *GormCouponRepository) AllCodes(ctx context.Context) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Pluck("code", &codes).Error
	return codes, err
}

// List returns all coupons for the admin back-office
func (r *GormCouponRepository) List(ctx context.Context) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&coupons).Error
	return coupons, err
}

// Create inserts a coupon, normalizing its code first
func (r *GormCouponRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	coupon.Code = models.NormalizeCouponCode(coupon.Code)
	return r.db.WithContext(ctx).Create(coupon).Error
}

// Update saves changed coupon fields
func (r *GormCouponRepository) Update(ctx context.Context, coupon *models.Coupon) error {
	coupon.Code = models.NormalizeCouponCode(coupon.Code)
	return r.db.WithContext(ctx).Save(coupon).Error
}

// redeemCoupon advances used_count by one inside tx, guarded so the usage
// limit can never be overrun by concurrent checkouts
func redeemCoupon(tx *gorm.DB, couponID uint) error {
	res := tx.Model(&models.Coupon{}).
		Where("id = ? AND is_active = ? AND (usage_limit IS NULL OR used_count < usage_limit)", couponID, true).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCouponExhausted
	}
	return nil
}
