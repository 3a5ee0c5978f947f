package service

import (
	"context"
	"errors"

	"github.com/bazaarchi/storefront/internal/models"
	"github.com/bazaarchi/storefront/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrNotYourOrder      = errors.New("order belongs to another user")
	ErrCannotCancel      = errors.New("order can no longer be cancelled")
	ErrInvalidTransition = errors.New("status change not allowed")
)

// couponEvaluator is the slice of CouponService the order flow needs
type couponEvaluator interface {
	Validate(ctx context.Context, code string, totalAmount decimal.Decimal) (*CouponResult, error)
}

// OrderView pairs an order with its tracker mapping for display
type OrderView struct {
	models.Order
	Progress models.Progress `json:"progress"`
}

// OrderService handles checkout and order management
type OrderService struct {
	carts   repository.CartRepository
	orders  repository.OrderRepository
	coupons couponEvaluator
}

// NewOrderService creates a new order service
func NewOrderService(carts repository.CartRepository, orders repository.OrderRepository, coupons couponEvaluator) *OrderService {
	return &OrderService{
		carts:   carts,
		orders:  orders,
		coupons: coupons,
	}
}

// PlaceOrder turns the cart into an order. Coupon validation runs against the
// recomputed subtotal; the guarded redemption inside the placement
// transaction is what actually consumes the usage slot.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uint, cartToken, couponCode string) (*OrderView, error) {
	items, err := s.carts.GetItems(ctx, cartToken)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	subtotal := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(items))
	for i := range items {
		line := snapshotLine(&items[i])
		subtotal = subtotal.Add(line.LineTotal)
		orderItems = append(orderItems, line)
	}

	order := models.Order{
		OrderNumber:    uuid.New().String(),
		UserID:         userID,
		Status:         models.OrderPending,
		PaymentStatus:  models.PaymentUnpaid,
		Subtotal:       subtotal,
		DiscountAmount: decimal.Zero,
		Total:          subtotal,
		Items:          orderItems,
	}

	if couponCode != "" {
		result, err := s.coupons.Validate(ctx, couponCode, subtotal)
		if err != nil {
			return nil, err
		}
		order.CouponID = &result.CouponID
		order.DiscountAmount = result.DiscountAmount
		order.Total = result.FinalAmount
	}

	if err := s.orders.Place(ctx, &order, cartToken); err != nil {
		return nil, err
	}

	return s.view(&order), nil
}

// ListOrders returns the user's orders with progress mappings
func (s *OrderService) ListOrders(ctx context.Context, userID uint) ([]OrderView, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, *s.view(&orders[i]))
	}
	return views, nil
}

// GetOrder returns one of the user's orders by number
func (s *OrderService) GetOrder(ctx context.Context, userID uint, orderNumber string) (*OrderView, error) {
	order, err := s.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotYourOrder
	}
	return s.view(order), nil
}

// CancelOrder cancels one of the user's pending orders and restocks its items
func (s *OrderService) CancelOrder(ctx context.Context, userID uint, orderNumber string) (*OrderView, error) {
	order, err := s.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotYourOrder
	}
	if order.Status != models.OrderPending {
		return nil, ErrCannotCancel
	}

	if err := s.orders.Cancel(ctx, order); err != nil {
		return nil, err
	}

	order.Status = models.OrderCancelled
	if order.PaymentStatus == models.PaymentPaid {
		order.PaymentStatus = models.PaymentRefunded
	}
	return s.view(order), nil
}

// ListAllOrders returns a page of every order, for the admin back-office
func (s *OrderService) ListAllOrders(ctx context.Context, page, limit int) ([]OrderView, int64, error) {
	orders, total, err := s.orders.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, *s.view(&orders[i]))
	}
	return views, total, nil
}

// UpdateStatus applies an admin status change, honoring the transition rules.
// A change to cancelled goes through the cancellation path so the order's
// units return to stock.
func (s *OrderService) UpdateStatus(ctx context.Context, orderNumber string, status models.OrderStatus, payment models.PaymentStatus) (*OrderView, error) {
	order, err := s.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(*order, status, payment) {
		return nil, ErrInvalidTransition
	}

	if status == models.OrderCancelled {
		if err := s.orders.Cancel(ctx, order); err != nil {
			return nil, err
		}
		order.Status = models.OrderCancelled
		if order.PaymentStatus == models.PaymentPaid {
			order.PaymentStatus = models.PaymentRefunded
		}
		return s.view(order), nil
	}

	if err := s.orders.UpdateStatus(ctx, order.ID, status, payment); err != nil {
		return nil, err
	}

	order.Status = status
	order.PaymentStatus = payment
	return s.view(order), nil
}

func (s *OrderService) view(order *models.Order) *OrderView {
	return &OrderView{
		Order:    *order,
		Progress: models.OrderProgress(order.Status, order.PaymentStatus),
	}
}

// snapshotLine freezes a cart line into an order item
func snapshotLine(item *models.CartItem) models.OrderItem {
	line := models.OrderItem{
		ProductID: item.ProductID,
		VariantID: item.VariantID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		LineTotal: item.LineTotal(),
	}
	if item.Product != nil {
		line.Name = item.Product.Name
	}
	if item.Variant != nil {
		line.Size = item.Variant.Size
		line.Color = item.Variant.Color
	}
	return line
}
