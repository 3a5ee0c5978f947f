package repository

import (
	"context"
	"errors"

	"github.com/bazaarchi/storefront/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository defines data access for orders. Placement is a single
// transaction covering stock decrement, reservation release, coupon
// redemption, order insertion and cart cleanup.
type OrderRepository interface {
	Place(ctx context.Context, order *models.Order, cartToken string) error
	ListByUser(ctx context.Context, userID uint) ([]models.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	ListAll(ctx context.Context, page, limit int) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, orderID uint, status models.OrderStatus, payment models.PaymentStatus) error
	Cancel(ctx context.Context, order *models.Order) error
}

// GormOrderRepository implements OrderRepository on MySQL
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new order repository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Place commits an order: every line converts its cart reservation into a
// stock decrement, the coupon slot (if any) is consumed atomically, the order
// and its items are inserted and the cart is emptied. Any failure rolls the
// whole placement back.
//
// The cart is re-read under a row lock and compared against the snapshot the
// order was priced from; a cart mutated between pricing and placement aborts
// with ErrCartChanged so reservations never drift from the token-wide delete.
func (r *GormOrderRepository) Place(ctx context.Context, order *models.Order, cartToken string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lines []models.CartItem
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("cart_token = ?", cartToken).
			Find(&lines).Error
		if err != nil {
			return err
		}
		if !cartMatchesSnapshot(lines, order.Items) {
			return ErrCartChanged
		}

		for i := range order.Items {
			if err := consumeStock(tx, &order.Items[i]); err != nil {
				return err
			}
		}

		if order.CouponID != nil {
			if err := redeemCoupon(tx, *order.CouponID); err != nil {
				return err
			}
		}

		if err := tx.Create(order).Error; err != nil {
			return err
		}

		return tx.Where("cart_token = ?", cartToken).Delete(&models.CartItem{}).Error
	})
}

// ListByUser returns a user's orders, newest first
func (r *GormOrderRepository) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// GetByNumber returns an order with its items
func (r *GormOrderRepository) GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_number = ?", orderNumber).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// ListAll returns a page of all orders for the admin back-office
func (r *GormOrderRepository) ListAll(ctx context.Context, page, limit int) ([]models.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error
	return orders, total, err
}

// UpdateStatus writes new fulfillment and payment states
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, orderID uint, status models.OrderStatus, payment models.PaymentStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":         status,
			"payment_status": payment,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// Cancel marks the order cancelled and returns its units to stock. Paid
// orders move to refunded. Both the customer cancel and the admin status
// change land here so cancellation always restocks; the guard keeps a
// concurrent double cancel from restocking twice.
func (r *GormOrderRepository) Cancel(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment := order.PaymentStatus
		if payment == models.PaymentPaid {
			payment = models.PaymentRefunded
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status <> ?", order.ID, models.OrderCancelled).
			Updates(map[string]interface{}{
				"status":         models.OrderCancelled,
				"payment_status": payment,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOrderNotFound
		}

		for i := range order.Items {
			if err := restock(tx, &order.Items[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// consumeStock turns a cart reservation into a committed sale:
// stock -= qty and reserved -= qty in one guarded update
func consumeStock(tx *gorm.DB, item *models.OrderItem) error {
	var res *gorm.DB
	if item.VariantID != nil {
		res = tx.Model(&models.ProductVariant{}).
			Where("id = ? AND stock >= ? AND reserved >= ?", *item.VariantID, item.Quantity, item.Quantity).
			UpdateColumns(map[string]interface{}{
				"stock":    gorm.Expr("stock - ?", item.Quantity),
				"reserved": gorm.Expr("reserved - ?", item.Quantity),
			})
	} else {
		res = tx.Model(&models.Product{}).
			Where("id = ? AND stock >= ? AND reserved >= ?", item.ProductID, item.Quantity, item.Quantity).
			UpdateColumns(map[string]interface{}{
				"stock":    gorm.Expr("stock - ?", item.Quantity),
				"reserved": gorm.Expr("reserved - ?", item.Quantity),
			})
	}

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// cartMatchesSnapshot reports whether the live cart lines still agree with
// the priced order items, line for line on (product, variant, quantity)
func cartMatchesSnapshot(lines []models.CartItem, items []models.OrderItem) bool {
	if len(lines) != len(items) {
		return false
	}

	type lineKey struct {
		productID uint
		variantID uint
	}
	quantities := make(map[lineKey]int, len(lines))
	for i := range lines {
		key := lineKey{productID: lines[i].ProductID}
		if lines[i].VariantID != nil {
			key.variantID = *lines[i].VariantID
		}
		quantities[key] += lines[i].Quantity
	}

	for i := range items {
		key := lineKey{productID: items[i].ProductID}
		if items[i].VariantID != nil {
			key.variantID = *items[i].VariantID
		}
		quantities[key] -= items[i].Quantity
		if quantities[key] == 0 {
			delete(quantities, key)
		}
	}
	return len(quantities) == 0
}

// restock returns a cancelled line's units to the shelf
func restock(tx *gorm.DB, item *models.OrderItem) error {
	if item.VariantID != nil {
		return tx.Model(&models.ProductVariant{}).
			Where("id = ?", *item.VariantID).
			UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error
	}
	return tx.Model(&models.Product{}).
		Where("id = ?", item.ProductID).
		UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error
}
