package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DiscountType enumerates the supported coupon discount strategies
type DiscountType string

const (
	// DiscountPercentage applies a percentage of the order total, optionally
	// capped at MaxDiscount
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed subtracts a fixed amount, capped at the order total
	DiscountFixed DiscountType = "fixed"
)

// Coupon is a discount code. Codes are stored uppercase and matched
// case-insensitively. UsedCount is only ever advanced through a guarded
// atomic increment at redemption time.
type Coupon struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	Code          string           `gorm:"uniqueIndex;size:64;not null" json:"code"`
	DiscountType  DiscountType     `gorm:"size:16;not null" json:"discountType"`
	DiscountValue decimal.Decimal  `gorm:"type:decimal(14,0);not null" json:"discountValue"`
	MinPurchase   *decimal.Decimal `gorm:"type:decimal(14,0)" json:"minPurchase,omitempty"`
	MaxDiscount   *decimal.Decimal `gorm:"type:decimal(14,0)" json:"maxDiscount,omitempty"`
	UsageLimit    *int             `json:"usageLimit,omitempty"`
	UsedCount     int              `gorm:"not null;default:0" json:"usedCount"`
	IsActive      bool             `gorm:"not null;default:true" json:"isActive"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`
}

// NormalizeCouponCode trims surrounding whitespace and uppercases a code, the
// canonical form codes are stored and compared in
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Exhausted reports whether the usage limit has been reached
func (c *Coupon) Exhausted() bool {
	return c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit
}

// Discount computes the discount this coupon grants on the given total.
// Percentage discounts are rounded to whole Rials and capped at MaxDiscount;
// fixed discounts never exceed the total itself.
func (c *Coupon) Discount(total decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal

	switch c.DiscountType {
	case DiscountPercentage:
		amount = total.Mul(c.DiscountValue).Div(decimal.NewFromInt(100)).Round(0)
		if c.MaxDiscount != nil && amount.GreaterThan(*c.MaxDiscount) {
			amount = *c.MaxDiscount
		}
	case DiscountFixed:
		amount = c.DiscountValue
		if amount.GreaterThan(total) {
			amount = total
		}
	default:
		amount = decimal.Zero
	}

	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}
