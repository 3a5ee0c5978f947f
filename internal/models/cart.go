package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartItem is one line in a device's cart. Carts are identified by an opaque
// token carried in the X-Cart-Token header, so guests and signed-in users get
// the same treatment. UnitPrice is snapshotted when the item is added.
type CartItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	CartToken string          `gorm:"index;size:36;not null" json:"-"`
	ProductID uint            `gorm:"index;not null" json:"productId"`
	Product   *Product        `json:"product,omitempty"`
	VariantID *uint           `gorm:"index" json:"variantId,omitempty"`
	Variant   *ProductVariant `json:"variant,omitempty"`
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(14,0);not null" json:"unitPrice"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

// LineTotal returns quantity * unit price
func (i *CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the API view of a cart: its items plus computed totals
type Cart struct {
	Token         string          `json:"token"`
	Items         []CartItem      `json:"items"`
	TotalQuantity int             `json:"totalQuantity"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// BuildCart computes totals over the given items
func BuildCart(token string, items []CartItem) Cart {
	cart := Cart{
		Token:    token,
		Items:    items,
		Subtotal: decimal.Zero,
	}
	for i := range items {
		cart.TotalQuantity += items[i].Quantity
		cart.Subtotal = cart.Subtotal.Add(items[i].LineTotal())
	}
	return cart
}
