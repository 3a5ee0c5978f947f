package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNormalizeCouponCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercase is uppercased", input: "summer10", want: "SUMMER10"},
		{name: "surrounding whitespace trimmed", input: "  TAKHFIF20 ", want: "TAKHFIF20"},
		{name: "already canonical", input: "NOWRUZ", want: "NOWRUZ"},
		{name: "empty", input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeCouponCode(tt.input); got != tt.want {
				t.Errorf("NormalizeCouponCode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCoupon_Discount(t *testing.T) {
	maxDiscount := decimal.NewFromInt(100_000)

	tests := []struct {
		name   string
		coupon Coupon
		total  int64
		want   int64
	}{
		{
			name: "percentage without cap",
			coupon: Coupon{
				DiscountType:  DiscountPercentage,
				DiscountValue: decimal.NewFromInt(10),
			},
			total: 500_000,
			want:  50_000,
		},
		{
			name: "percentage capped at max discount",
			coupon: Coupon{
				DiscountType:  DiscountPercentage,
				DiscountValue: decimal.NewFromInt(20),
				MaxDiscount:   &maxDiscount,
			},
			total: 1_000_000,
			want:  100_000,
		},
		{
			name: "percentage under cap is untouched",
			coupon: Coupon{
				DiscountType:  DiscountPercentage,
				DiscountValue: decimal.NewFromInt(20),
				MaxDiscount:   &maxDiscount,
			},
			total: 400_000,
			want:  80_000,
		},
		{
			name: "percentage rounds to whole rials",
			coupon: Coupon{
				DiscountType:  DiscountPercentage,
				DiscountValue: decimal.NewFromInt(15),
			},
			total: 99_999,
			want:  15_000,
		},
		{
			name: "fixed smaller than total",
			coupon: Coupon{
				DiscountType:  DiscountFixed,
				DiscountValue: decimal.NewFromInt(30_000),
			},
			total: 200_000,
			want:  30_000,
		},
		{
			name: "fixed larger than total caps at total",
			coupon: Coupon{
				DiscountType:  DiscountFixed,
				DiscountValue: decimal.NewFromInt(500_000),
			},
			total: 120_000,
			want:  120_000,
		},
		{
			name: "unknown type grants nothing",
			coupon: Coupon{
				DiscountType:  DiscountType("bogus"),
				DiscountValue: decimal.NewFromInt(50),
			},
			total: 100_000,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.coupon.Discount(decimal.NewFromInt(tt.total))
			if !got.Equal(decimal.NewFromInt(tt.want)) {
				t.Errorf("Discount(%d) = %s, want %d", tt.total, got, tt.want)
			}
		})
	}
}

func TestCoupon_Discount_FixedExceedingTotalZeroesFinal(t *testing.T) {
	coupon := Coupon{
		DiscountType:  DiscountFixed,
		DiscountValue: decimal.NewFromInt(900_000),
	}

	total := decimal.NewFromInt(250_000)
	discount := coupon.Discount(total)

	if !discount.Equal(total) {
		t.Fatalf("discount = %s, want %s", discount, total)
	}
	if !total.Sub(discount).IsZero() {
		t.Errorf("final amount = %s, want 0", total.Sub(discount))
	}
}

func TestCoupon_Exhausted(t *testing.T) {
	limit := 3

	tests := []struct {
		name   string
		coupon Coupon
		want   bool
	}{
		{name: "no limit never exhausts", coupon: Coupon{UsedCount: 1000}, want: false},
		{name: "below limit", coupon: Coupon{UsageLimit: &limit, UsedCount: 2}, want: false},
		{name: "at limit", coupon: Coupon{UsageLimit: &limit, UsedCount: 3}, want: true},
		{name: "past limit", coupon: Coupon{UsageLimit: &limit, UsedCount: 4}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.coupon.Exhausted(); got != tt.want {
				t.Errorf("Exhausted() = %v, want %v", got, tt.want)
			}
		})
	}
}
