package repository

import (
	"context"
	"errors"

	"github.com/bazaarchi/storefront/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartRepository defines data access for cart items. Every mutation adjusts
// the matching reserved counter in the same transaction, so availability is
// always a single consistent read of stock - reserved.
type CartRepository interface {
	GetItems(ctx context.Context, token string) ([]models.CartItem, error)
	AddItem(ctx context.Context, token string, productID uint, variantID *uint, quantity int, unitPrice decimal.Decimal) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, token string, itemID uint, quantity int) (*models.CartItem, error)
	RemoveItem(ctx context.Context, token string, itemID uint) error
	Clear(ctx context.Context, token string) error
}

// GormCartRepository implements CartRepository on MySQL
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new cart repository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// GetItems returns all items in the cart identified by token
func (r *GormCartRepository) GetItems(ctx context.Context, token string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Variant").
		Where("cart_token = ?", token).
		Order("created_at").
		Find(&items).Error
	return items, err
}

// AddItem reserves stock and inserts or grows the matching cart line
func (r *GormCartRepository) AddItem(ctx context.Context, token string, productID uint, variantID *uint, quantity int, unitPrice decimal.Decimal) (*models.CartItem, error) {
	var item models.CartItem

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := reserve(tx, productID, variantID, quantity); err != nil {
			return err
		}

		query := tx.Where("cart_token = ? AND product_id = ?", token, productID)
		if variantID != nil {
			query = query.Where("variant_id = ?", *variantID)
		} else {
			query = query.Where("variant_id IS NULL")
		}

		err := query.First(&item).Error
		switch {
		case err == nil:
			item.Quantity += quantity
			return tx.Model(&item).UpdateColumn("quantity", item.Quantity).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.CartItem{
				CartToken: token,
				ProductID: productID,
				VariantID: variantID,
				Quantity:  quantity,
				UnitPrice: unitPrice,
			}
			return tx.Create(&item).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// UpdateQuantity sets a cart line to the given quantity, adjusting the
// reservation by the delta. Quantity zero removes the line.
func (r *GormCartRepository) UpdateQuantity(ctx context.Context, token string, itemID uint, quantity int) (*models.CartItem, error) {
	var item models.CartItem

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND cart_token = ?", itemID, token).First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartItemNotFound
			}
			return err
		}

		delta := quantity - item.Quantity
		if delta != 0 {
			if err := reserve(tx, item.ProductID, item.VariantID, delta); err != nil {
				return err
			}
		}

		if quantity == 0 {
			return tx.Delete(&item).Error
		}

		item.Quantity = quantity
		return tx.Model(&item).UpdateColumn("quantity", quantity).Error
	})
	if err != nil {
		return nil, err
	}

	if quantity == 0 {
		return nil, nil
	}
	return &item, nil
}

// RemoveItem releases the line's reservation and deletes it
func (r *GormCartRepository) RemoveItem(ctx context.Context, token string, itemID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.CartItem
		err := tx.Where("id = ? AND cart_token = ?", itemID, token).First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartItemNotFound
			}
			return err
		}

		if err := reserve(tx, item.ProductID, item.VariantID, -item.Quantity); err != nil {
			return err
		}
		return tx.Delete(&item).Error
	})
}

// Clear releases every reservation held by the cart and empties it
func (r *GormCartRepository) Clear(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var items []models.CartItem
		if err := tx.Where("cart_token = ?", token).Find(&items).Error; err != nil {
			return err
		}

		for i := range items {
			if err := reserve(tx, items[i].ProductID, items[i].VariantID, -items[i].Quantity); err != nil {
				return err
			}
		}
		return tx.Where("cart_token = ?", token).Delete(&models.CartItem{}).Error
	})
}

// reserve adjusts the reserved counter for a product or variant by delta.
// Positive deltas are guarded by reserved + delta <= stock; negative deltas
// never take the counter below zero.
func reserve(tx *gorm.DB, productID uint, variantID *uint, delta int) error {
	if delta == 0 {
		return nil
	}

	var res *gorm.DB
	if variantID != nil {
		query := tx.Model(&models.ProductVariant{}).Where("id = ?", *variantID)
		if delta > 0 {
			query = query.Where("reserved + ? <= stock", delta)
		} else {
			query = query.Where("reserved >= ?", -delta)
		}
		res = query.UpdateColumn("reserved", gorm.Expr("reserved + ?", delta))
	} else {
		query := tx.Model(&models.Product{}).Where("id = ?", productID)
		if delta > 0 {
			query = query.Where("reserved + ? <= stock", delta)
		} else {
			query = query.Where("reserved >= ?", -delta)
		}
		res = query.UpdateColumn("reserved", gorm.Expr("reserved + ?", delta))
	}

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}
