package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus is the fulfillment state of an order
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// PaymentStatus is the payment state of an order
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Order is a placed order with immutable line snapshots
type Order struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	OrderNumber    string          `gorm:"uniqueIndex;size:36;not null" json:"orderNumber"`
	UserID         uint            `gorm:"index;not null" json:"userId"`
	Status         OrderStatus     `gorm:"size:16;not null;default:pending" json:"status"`
	PaymentStatus  PaymentStatus   `gorm:"size:16;not null;default:unpaid" json:"paymentStatus"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(14,0);not null" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(14,0);not null;default:0" json:"discountAmount"`
	Total          decimal.Decimal `gorm:"type:decimal(14,0);not null" json:"total"`
	CouponID       *uint           `json:"couponId,omitempty"`
	Items          []OrderItem     `json:"items,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

// OrderItem is one line of an order. Name, size, color and price are
// snapshotted at placement so later catalog edits don't rewrite history.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"index;not null" json:"orderId"`
	ProductID uint            `gorm:"index;not null" json:"productId"`
	VariantID *uint           `json:"variantId,omitempty"`
	Name      string          `gorm:"not null" json:"name"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(14,0);not null" json:"unitPrice"`
	LineTotal decimal.Decimal `gorm:"type:decimal(14,0);not null" json:"lineTotal"`
}

// ProgressStep is one of the four customer-facing order stages
type ProgressStep string

const (
	StepPayment    ProgressStep = "payment"
	StepProcessing ProgressStep = "processing"
	StepShipped    ProgressStep = "shipped"
	StepDelivered  ProgressStep = "delivered"
	StepCancelled  ProgressStep = "cancelled"
)

// Progress is the display mapping of an order's state onto the 4-step tracker
type Progress struct {
	Step      ProgressStep `json:"step"`
	Percent   int          `json:"percent"`
	Cancelled bool         `json:"cancelled"`
}

// OrderProgress maps (status, payment status) onto the fixed tracker steps.
// Cancellation is terminal and overrides the stepper entirely.
func OrderProgress(status OrderStatus, payment PaymentStatus) Progress {
	if status == OrderCancelled {
		return Progress{Step: StepCancelled, Percent: 0, Cancelled: true}
	}

	switch status {
	case OrderDelivered:
		return Progress{Step: StepDelivered, Percent: 100}
	case OrderShipped:
		return Progress{Step: StepShipped, Percent: 75}
	case OrderProcessing:
		return Progress{Step: StepProcessing, Percent: 50}
	}

	// Pending orders sit on the payment step until paid, then count as
	// processing for display purposes.
	if payment == PaymentPaid {
		return Progress{Step: StepProcessing, Percent: 50}
	}
	return Progress{Step: StepPayment, Percent: 25}
}

// CanTransition reports whether an admin status change is allowed.
// Cancelled is terminal and delivery requires payment.
func CanTransition(from Order, toStatus OrderStatus, toPayment PaymentStatus) bool {
	if from.Status == OrderCancelled {
		return false
	}
	if toStatus == OrderDelivered && toPayment != PaymentPaid {
		return false
	}
	if from.Status == OrderDelivered && toStatus != OrderDelivered {
		return false
	}
	return true
}
