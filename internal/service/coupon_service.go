package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/bazaarchi/storefront/internal/models"
	"github.com/bazaarchi/storefront/internal/repository"
	"github.com/bits-and-blooms/bloom/v3"
	"github.com/shopspring/decimal"
)

// GateError is a coupon validation failure with a user-facing Persian
// message, surfaced to the checkout UI as-is
type GateError struct {
	Message string
}

func (e *GateError) Error() string {
	return e.Message
}

// CouponResult is the discount breakdown for a validated coupon
type CouponResult struct {
	CouponID       uint                `json:"couponId"`
	CouponCode     string              `json:"couponCode"`
	DiscountAmount decimal.Decimal     `json:"discountAmount"`
	FinalAmount    decimal.Decimal     `json:"finalAmount"`
	DiscountType   models.DiscountType `json:"discountType"`
	DiscountValue  decimal.Decimal     `json:"discountValue"`
}

// CouponService evaluates discount codes. A bloom filter over all known codes
// rejects junk lookups without touching the database; false positives fall
// through to the authoritative lookup.
type CouponService struct {
	repo   repository.CouponRepository
	filter *bloom.BloomFilter
	mu     sync.RWMutex
}

// NewCouponService creates a new coupon service
func NewCouponService(repo repository.CouponRepository) *CouponService {
	return &CouponService{
		repo:   repo,
		filter: bloom.NewWithEstimates(100_000, 0.01),
	}
}

// WarmFilter seeds the negative cache with every stored code. Called once at
// startup; lookups work without it, just slower for unknown codes.
func (s *CouponService) WarmFilter(ctx context.Context) (int, error) {
	codes, err := s.repo.AllCodes(ctx)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, code := range codes {
		s.filter.AddString(code)
	}
	return len(codes), nil
}

// Validate runs the sequential gate checks and computes the discount
// breakdown. The first failing gate wins.
func (s *CouponService) Validate(ctx context.Context, code string, totalAmount decimal.Decimal) (*CouponResult, error) {
	normalized := models.NormalizeCouponCode(code)
	if normalized == "" {
		return nil, repository.ErrCouponNotFound
	}
	if totalAmount.IsNegative() {
		return nil, &GateError{Message: "مبلغ سفارش نامعتبر است"}
	}

	s.mu.RLock()
	known := s.filter.TestString(normalized)
	s.mu.RUnlock()
	if !known {
		return nil, repository.ErrCouponNotFound
	}

	coupon, err := s.repo.FindByCode(ctx, normalized)
	if err != nil {
		return nil, err
	}

	if !coupon.IsActive {
		return nil, &GateError{Message: "کد تخفیف غیرفعال است"}
	}
	if coupon.MinPurchase != nil && totalAmount.LessThan(*coupon.MinPurchase) {
		return nil, &GateError{
			Message: fmt.Sprintf("حداقل مبلغ سفارش برای این کد تخفیف %s ریال است", coupon.MinPurchase.String()),
		}
	}
	if coupon.Exhausted() {
		return nil, &GateError{Message: "ظرفیت استفاده از این کد تخفیف تکمیل شده است"}
	}

	discount := coupon.Discount(totalAmount)

	return &CouponResult{
		CouponID:       coupon.ID,
		CouponCode:     coupon.Code,
		DiscountAmount: discount,
		FinalAmount:    totalAmount.Sub(discount),
		DiscountType:   coupon.DiscountType,
		DiscountValue:  coupon.DiscountValue,
	}, nil
}

// List returns every coupon for the admin back-office
func (s *CouponService) List(ctx context.Context) ([]models.Coupon, error) {
	return s.repo.List(ctx)
}

// Create stores a new coupon and registers its code in the negative cache.
// The code is normalized here so the stored form and the filter entry agree
// no matter which repository sits underneath.
func (s *CouponService) Create(ctx context.Context, coupon *models.Coupon) error {
	if err := validateCoupon(coupon); err != nil {
		return err
	}
	coupon.Code = models.NormalizeCouponCode(coupon.Code)
	if err := s.repo.Create(ctx, coupon); err != nil {
		return err
	}

	s.mu.Lock()
	s.filter.AddString(coupon.Code)
	s.mu.Unlock()
	return nil
}

// Update saves coupon changes. Code changes register the new form in the
// filter; the stale entry is a harmless false positive.
func (s *CouponService) Update(ctx context.Context, coupon *models.Coupon) error {
	if err := validateCoupon(coupon); err != nil {
		return err
	}
	coupon.Code = models.NormalizeCouponCode(coupon.Code)
	if err := s.repo.Update(ctx, coupon); err != nil {
		return err
	}

	s.mu.Lock()
	s.filter.AddString(coupon.Code)
	s.mu.Unlock()
	return nil
}

func validateCoupon(coupon *models.Coupon) error {
	if models.NormalizeCouponCode(coupon.Code) == "" {
		return &GateError{Message: "کد تخفیف نمی‌تواند خالی باشد"}
	}
	if coupon.DiscountType != models.DiscountPercentage && coupon.DiscountType != models.DiscountFixed {
		return &GateError{Message: "نوع تخفیف نامعتبر است"}
	}
	if coupon.DiscountValue.IsNegative() || coupon.DiscountValue.IsZero() {
		return &GateError{Message: "مقدار تخفیف باید بزرگتر از صفر باشد"}
	}
	if coupon.DiscountType == models.DiscountPercentage && coupon.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return &GateError{Message: "درصد تخفیف نمی‌تواند بیشتر از ۱۰۰ باشد"}
	}
	return nil
}
