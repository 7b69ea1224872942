package invoice

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/diewo77/storefront/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupInvoiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Order{}, &models.OrderItem{}, &models.Invoice{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedOrder(t *testing.T, db *gorm.DB) models.Order {
	t.Helper()
	order := models.Order{
		Status:          models.OrderStatusDelivered,
		DeliveryAddress: "12 rue du Commerce, Dakar",
		PhoneNumber:     "+221770000000",
		Total:           115000,
		CreatedAt:       time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		Items: []models.OrderItem{
			{ProductID: 1, Quantity: 1, UnitPrice: 115000},
		},
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func TestService_IssueIsIdempotent(t *testing.T) {
	db := setupInvoiceTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	order := seedOrder(t, db)

	first, err := svc.Issue(ctx, order.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if first.Subtotal != 115000 || first.TaxAmount != 20700 || first.Total != 135700 {
		t.Fatalf("totals = %d/%d/%d, want 115000/20700/135700", first.Subtotal, first.TaxAmount, first.Total)
	}
	wantNumber := fmt.Sprintf("FAC-2024-%04d", order.ID)
	if first.Number != wantNumber {
		t.Fatalf("number = %q, want %q", first.Number, wantNumber)
	}

	second, err := svc.Issue(ctx, order.ID)
	if err != nil {
		t.Fatalf("reissue: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("reissue created a new invoice: %d then %d", first.ID, second.ID)
	}

	var count int64
	db.Model(&models.Invoice{}).Count(&count)
	if count != 1 {
		t.Fatalf("invoice count = %d, want 1", count)
	}
}

func TestService_Pay(t *testing.T) {
	db := setupInvoiceTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	order := seedOrder(t, db)

	inv, err := svc.Issue(ctx, order.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	paid, err := svc.Pay(ctx, inv.ID, "card")
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if !paid.IsPaid() || paid.PaymentMethod != "card" || paid.PaymentDate == nil {
		t.Fatalf("unexpected paid invoice: %+v", paid)
	}

	// second settlement is rejected
	if _, err := svc.Pay(ctx, inv.ID, "cash"); !errors.Is(err, ErrNotPayable) {
		t.Fatalf("expected ErrNotPayable, got %v", err)
	}
}

func TestService_CancelForOrder(t *testing.T) {
	db := setupInvoiceTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	order := seedOrder(t, db)

	inv, err := svc.Issue(ctx, order.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.CancelForOrder(ctx, order.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	got, err := svc.Get(ctx, inv.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PaymentStatus != models.PaymentCancelled {
		t.Fatalf("status = %s, want cancelled", got.PaymentStatus)
	}

	// cancelling an order with no invoice is fine
	if err := svc.CancelForOrder(ctx, 9999); err != nil {
		t.Fatalf("cancel without invoice: %v", err)
	}
}
