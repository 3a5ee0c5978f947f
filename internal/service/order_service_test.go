package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bazaarchi/storefront/internal/models"
	"github.com/bazaarchi/storefront/internal/repository"
	"github.com/shopspring/decimal"
)

// mockOrderRepo implements repository.OrderRepository in memory
type mockOrderRepo struct {
	placed      []*models.Order
	byNumber    map[string]*models.Order
	cancelCalls int
	updateCalls int
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{byNumber: make(map[string]*models.Order)}
}

func (m *mockOrderRepo) Place(ctx context.Context, order *models.Order, cartToken string) error {
	order.ID = uint(len(m.placed) + 1)
	m.placed = append(m.placed, order)
	m.byNumber[order.OrderNumber] = order
	return nil
}

func (m *mockOrderRepo) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	for _, o := range m.placed {
		if o.UserID == userID {
			orders = append(orders, *o)
		}
	}
	return orders, nil
}

func (m *mockOrderRepo) GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	order, ok := m.byNumber[orderNumber]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (m *mockOrderRepo) ListAll(ctx context.Context, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	for _, o := range m.placed {
		orders = append(orders, *o)
	}
	return orders, int64(len(orders)), nil
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, orderID uint, status models.OrderStatus, payment models.PaymentStatus) error {
	m.updateCalls++
	for _, o := range m.placed {
		if o.ID == orderID {
			o.Status = status
			o.PaymentStatus = payment
			return nil
		}
	}
	return repository.ErrOrderNotFound
}

func (m *mockOrderRepo) Cancel(ctx context.Context, order *models.Order) error {
	m.cancelCalls++
	for _, o := range m.placed {
		if o.ID == order.ID {
			o.Status = models.OrderCancelled
			return nil
		}
	}
	return repository.ErrOrderNotFound
}

// stubEvaluator returns a fixed coupon result or error
type stubEvaluator struct {
	result *CouponResult
	err    error
}

func (s *stubEvaluator) Validate(ctx context.Context, code string, totalAmount decimal.Decimal) (*CouponResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := *s.result
	result.FinalAmount = totalAmount.Sub(result.DiscountAmount)
	return &result, nil
}

func cartWith(items ...models.CartItem) *mockCartRepo {
	repo := newMockCartRepo()
	for _, item := range items {
		repo.items[item.CartToken] = append(repo.items[item.CartToken], item)
	}
	return repo
}

func TestOrderService_PlaceOrder(t *testing.T) {
	ctx := context.Background()
	variantID := uint(21)

	carts := cartWith(
		models.CartItem{
			ID: 1, CartToken: "t", ProductID: 1, Quantity: 2,
			UnitPrice: decimal.NewFromInt(225_000),
			Product:   &models.Product{ID: 1, Name: "پیراهن مردانه"},
		},
		models.CartItem{
			ID: 2, CartToken: "t", ProductID: 2, VariantID: &variantID, Quantity: 1,
			UnitPrice: decimal.NewFromInt(180_000),
			Product:   &models.Product{ID: 2, Name: "شلوار جین"},
			Variant:   &models.ProductVariant{ID: 21, Size: "L", Color: "مشکی"},
		},
	)
	orders := newMockOrderRepo()
	svc := NewOrderService(carts, orders, &stubEvaluator{})

	view, err := svc.PlaceOrder(ctx, 5, "t", "")
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	if view.OrderNumber == "" {
		t.Error("order number must be set")
	}
	if view.UserID != 5 {
		t.Errorf("userId = %d, want 5", view.UserID)
	}
	// 2 * 225000 + 180000
	if !view.Subtotal.Equal(decimal.NewFromInt(630_000)) {
		t.Errorf("subtotal = %s, want 630000", view.Subtotal)
	}
	if !view.Total.Equal(view.Subtotal) {
		t.Errorf("total = %s, want subtotal %s without a coupon", view.Total, view.Subtotal)
	}
	if len(view.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(view.Items))
	}
	if view.Items[0].Name != "پیراهن مردانه" {
		t.Errorf("item name snapshot = %q", view.Items[0].Name)
	}
	if view.Items[1].Size != "L" || view.Items[1].Color != "مشکی" {
		t.Errorf("variant snapshot = %q/%q, want L/مشکی", view.Items[1].Size, view.Items[1].Color)
	}
	if view.Progress.Step != models.StepPayment {
		t.Errorf("fresh order step = %q, want payment", view.Progress.Step)
	}
}

func TestOrderService_PlaceOrder_WithCoupon(t *testing.T) {
	carts := cartWith(models.CartItem{
		ID: 1, CartToken: "t", ProductID: 1, Quantity: 1,
		UnitPrice: decimal.NewFromInt(1_000_000),
		Product:   &models.Product{ID: 1, Name: "کت"},
	})
	orders := newMockOrderRepo()
	couponID := uint(9)
	svc := NewOrderService(carts, orders, &stubEvaluator{
		result: &CouponResult{
			CouponID:       couponID,
			CouponCode:     "BIG20",
			DiscountAmount: decimal.NewFromInt(100_000),
		},
	})

	view, err := svc.PlaceOrder(context.Background(), 5, "t", "BIG20")
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	if view.CouponID == nil || *view.CouponID != couponID {
		t.Errorf("couponId = %v, want %d", view.CouponID, couponID)
	}
	if !view.DiscountAmount.Equal(decimal.NewFromInt(100_000)) {
		t.Errorf("discount = %s, want 100000", view.DiscountAmount)
	}
	if !view.Total.Equal(decimal.NewFromInt(900_000)) {
		t.Errorf("total = %s, want 900000", view.Total)
	}
}

func TestOrderService_PlaceOrder_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("empty cart", func(t *testing.T) {
		svc := NewOrderService(newMockCartRepo(), newMockOrderRepo(), &stubEvaluator{})
		_, err := svc.PlaceOrder(ctx, 1, "empty", "")
		if !errors.Is(err, ErrEmptyCart) {
			t.Errorf("error = %v, want %v", err, ErrEmptyCart)
		}
	})

	t.Run("coupon failure aborts placement", func(t *testing.T) {
		carts := cartWith(models.CartItem{
			ID: 1, CartToken: "t", ProductID: 1, Quantity: 1,
			UnitPrice: decimal.NewFromInt(50_000),
			Product:   &models.Product{ID: 1, Name: "کلاه"},
		})
		orders := newMockOrderRepo()
		svc := NewOrderService(carts, orders, &stubEvaluator{err: repository.ErrCouponNotFound})

		_, err := svc.PlaceOrder(ctx, 1, "t", "NOPE")
		if !errors.Is(err, repository.ErrCouponNotFound) {
			t.Errorf("error = %v, want coupon not found", err)
		}
		if len(orders.placed) != 0 {
			t.Error("no order must be placed when the coupon fails")
		}
	})
}

func TestOrderService_CancelOrder(t *testing.T) {
	ctx := context.Background()

	place := func(t *testing.T, status models.OrderStatus) (*OrderService, *mockOrderRepo, string) {
		t.Helper()
		carts := cartWith(models.CartItem{
			ID: 1, CartToken: "t", ProductID: 1, Quantity: 1,
			UnitPrice: decimal.NewFromInt(10_000),
			Product:   &models.Product{ID: 1, Name: "جوراب"},
		})
		orders := newMockOrderRepo()
		svc := NewOrderService(carts, orders, &stubEvaluator{})

		view, err := svc.PlaceOrder(ctx, 7, "t", "")
		if err != nil {
			t.Fatalf("place failed: %v", err)
		}
		orders.byNumber[view.OrderNumber].Status = status
		return svc, orders, view.OrderNumber
	}

	t.Run("pending order cancels", func(t *testing.T) {
		svc, orders, number := place(t, models.OrderPending)

		view, err := svc.CancelOrder(ctx, 7, number)
		if err != nil {
			t.Fatalf("cancel failed: %v", err)
		}
		if view.Status != models.OrderCancelled {
			t.Errorf("status = %q, want cancelled", view.Status)
		}
		if !view.Progress.Cancelled {
			t.Error("progress must reflect cancellation")
		}
		if orders.cancelCalls != 1 {
			t.Errorf("cancel calls = %d, want 1", orders.cancelCalls)
		}
	})

	t.Run("shipped order cannot cancel", func(t *testing.T) {
		svc, _, number := place(t, models.OrderShipped)
		if _, err := svc.CancelOrder(ctx, 7, number); !errors.Is(err, ErrCannotCancel) {
			t.Errorf("error = %v, want %v", err, ErrCannotCancel)
		}
	})

	t.Run("other user's order reads as missing", func(t *testing.T) {
		svc, _, number := place(t, models.OrderPending)
		if _, err := svc.CancelOrder(ctx, 8, number); !errors.Is(err, ErrNotYourOrder) {
			t.Errorf("error = %v, want %v", err, ErrNotYourOrder)
		}
	})
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	carts := cartWith(models.CartItem{
		ID: 1, CartToken: "t", ProductID: 1, Quantity: 1,
		UnitPrice: decimal.NewFromInt(10_000),
		Product:   &models.Product{ID: 1, Name: "شال"},
	})
	orders := newMockOrderRepo()
	svc := NewOrderService(carts, orders, &stubEvaluator{})

	view, err := svc.PlaceOrder(ctx, 1, "t", "")
	if err != nil {
		t.Fatalf("place failed: %v", err)
	}

	updated, err := svc.UpdateStatus(ctx, view.OrderNumber, models.OrderProcessing, models.PaymentPaid)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != models.OrderProcessing {
		t.Errorf("status = %q, want processing", updated.Status)
	}
	if updated.Progress.Percent != 50 {
		t.Errorf("percent = %d, want 50", updated.Progress.Percent)
	}

	// Unpaid delivery must be rejected by the transition rules
	if _, err := svc.UpdateStatus(ctx, view.OrderNumber, models.OrderDelivered, models.PaymentUnpaid); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("error = %v, want %v", err, ErrInvalidTransition)
	}
}

func TestOrderService_UpdateStatus_CancelRestocks(t *testing.T) {
	ctx := context.Background()
	carts := cartWith(models.CartItem{
		ID: 1, CartToken: "t", ProductID: 1, Quantity: 3,
		UnitPrice: decimal.NewFromInt(10_000),
		Product:   &models.Product{ID: 1, Name: "شال"},
	})
	orders := newMockOrderRepo()
	svc := NewOrderService(carts, orders, &stubEvaluator{})

	view, err := svc.PlaceOrder(ctx, 1, "t", "")
	if err != nil {
		t.Fatalf("place failed: %v", err)
	}
	orders.byNumber[view.OrderNumber].Status = models.OrderProcessing
	orders.byNumber[view.OrderNumber].PaymentStatus = models.PaymentPaid

	// An admin cancellation must run through the cancel path so the order's
	// units return to stock, not through a bare status write
	updated, err := svc.UpdateStatus(ctx, view.OrderNumber, models.OrderCancelled, models.PaymentRefunded)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != models.OrderCancelled {
		t.Errorf("status = %q, want cancelled", updated.Status)
	}
	if updated.PaymentStatus != models.PaymentRefunded {
		t.Errorf("payment = %q, want refunded", updated.PaymentStatus)
	}
	if !updated.Progress.Cancelled {
		t.Error("progress must reflect cancellation")
	}
	if orders.cancelCalls != 1 {
		t.Errorf("cancel calls = %d, want 1", orders.cancelCalls)
	}
	if orders.updateCalls != 0 {
		t.Errorf("bare status writes = %d, want 0 for a cancellation", orders.updateCalls)
	}
}
