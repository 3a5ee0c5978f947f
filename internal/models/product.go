package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups products for catalog browsing
type Category struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Slug      string         `gorm:"uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Product represents a catalog product.
// Stock and Reserved are the product-level counters used when the product has
// no size/color variants; products with variants carry their counters on the
// variant rows instead. Reserved counts units sitting in open carts and is
// updated in the same transaction as the cart mutation that causes it.
type Product struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	Name            string           `gorm:"not null" json:"name"`
	Slug            string           `gorm:"uniqueIndex;not null" json:"slug"`
	Description     string           `gorm:"type:text" json:"description"`
	Price           decimal.Decimal  `gorm:"type:decimal(14,0);not null" json:"price"`
	DiscountPercent int              `gorm:"not null;default:0" json:"discountPercent"`
	Stock           int              `gorm:"not null;default:0" json:"stock"`
	Reserved        int              `gorm:"not null;default:0" json:"-"`
	CategoryID      uint             `gorm:"index;not null" json:"categoryId"`
	Category        *Category        `json:"category,omitempty"`
	IsActive        bool             `gorm:"not null;default:true" json:"isActive"`
	Variants        []ProductVariant `json:"variants,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt   `gorm:"index" json:"-"`
}

// SalePrice returns the price after the product's own discount percent
func (p *Product) SalePrice() decimal.Decimal {
	if p.DiscountPercent <= 0 {
		return p.Price
	}
	factor := decimal.NewFromInt(int64(100 - p.DiscountPercent)).Div(decimal.NewFromInt(100))
	return p.Price.Mul(factor).Round(0)
}

// HasVariants reports whether per-combination stock lives on variant rows
func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// FindVariant returns the variant with the given size and color, or nil
func (p *Product) FindVariant(size, color string) *ProductVariant {
	for i := range p.Variants {
		if p.Variants[i].Size == size && p.Variants[i].Color == color {
			return &p.Variants[i]
		}
	}
	return nil
}

// ProductVariant is one purchasable size/color combination of a product.
// Unique per (product, size, color).
type ProductVariant struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	ProductID uint             `gorm:"uniqueIndex:idx_variant_combination;not null" json:"productId"`
	Size      string           `gorm:"uniqueIndex:idx_variant_combination;size:64;not null" json:"size"`
	Color     string           `gorm:"uniqueIndex:idx_variant_combination;size:64;not null" json:"color"`
	Stock     int              `gorm:"not null;default:0" json:"stock"`
	Reserved  int              `gorm:"not null;default:0" json:"-"`
	Price     *decimal.Decimal `gorm:"type:decimal(14,0)" json:"price,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
	DeletedAt gorm.DeletedAt   `gorm:"index" json:"-"`
}

// UnitPrice returns the variant's own price when set, falling back to the
// product's sale price
func (v *ProductVariant) UnitPrice(p *Product) decimal.Decimal {
	if v.Price != nil {
		return *v.Price
	}
	return p.SalePrice()
}

// SizeStockImport is the legacy nested stock map (size -> color -> quantity).
// It is accepted only as a one-time import format and converted to variant
// rows; nothing reads it at serving time.
type SizeStockImport map[string]map[string]int

// ToVariants flattens the legacy map into variant rows for the given product
func (s SizeStockImport) ToVariants(productID uint) []ProductVariant {
	variants := make([]ProductVariant, 0, len(s))
	for size, colors := range s {
		for color, qty := range colors {
			if qty < 0 {
				qty = 0
			}
			variants = append(variants, ProductVariant{
				ProductID: productID,
				Size:      size,
				Color:     color,
				Stock:     qty,
			})
		}
	}
	return variants
}
