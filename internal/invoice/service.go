package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/storefront/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrNotPayable is returned when settling an invoice that is already
	// paid or cancelled.
	ErrNotPayable = errors.New("invoice is not payable")
)

// Service issues and settles invoices. An invoice is created on demand from
// an order snapshot; issuing twice for the same order returns the existing
// document.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Issue creates the invoice for an order, or returns the one already issued.
func (s *Service) Issue(ctx context.Context, orderID uint) (*models.Invoice, error) {
	var existing models.Invoice
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("issue invoice: %w", err)
	}

	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Items").First(&order, orderID).Error; err != nil {
		return nil, fmt.Errorf("issue invoice: %w", err)
	}

	lines := make([]Line, 0, len(order.Items))
	for _, it := range order.Items {
		lines = append(lines, Line{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	totals := Compute(lines, DefaultTaxRateBps)

	inv := models.Invoice{
		Number:        FormatNumber(order.ID, order.CreatedAt.Year()),
		OrderID:       order.ID,
		Subtotal:      totals.Subtotal,
		TaxRateBps:    DefaultTaxRateBps,
		TaxAmount:     totals.TaxAmount,
		Total:         totals.Total,
		PaymentStatus: models.PaymentUnpaid,
	}
	if err := s.db.WithContext(ctx).Create(&inv).Error; err != nil {
		return nil, fmt.Errorf("issue invoice: %w", err)
	}
	return &inv, nil
}

// Pay settles an unpaid invoice with the given payment method.
func (s *Service) Pay(ctx context.Context, invoiceID uint, method string) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.db.WithContext(ctx).First(&inv, invoiceID).Error; err != nil {
		return nil, fmt.Errorf("pay invoice: %w", err)
	}
	if !inv.CanPay() {
		return nil, fmt.Errorf("invoice %s is %s: %w", inv.Number, inv.PaymentStatus, ErrNotPayable)
	}
	now := time.Now()
	updates := map[string]any{
		"payment_status": models.PaymentPaid,
		"payment_method": method,
		"payment_date":   now,
	}
	if err := s.db.WithContext(ctx).Model(&inv).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("pay invoice: %w", err)
	}
	inv.PaymentStatus = models.PaymentPaid
	inv.PaymentMethod = method
	inv.PaymentDate = &now
	return &inv, nil
}

// CancelForOrder voids any unpaid invoice issued for the order. Called when
// the order itself is cancelled; a missing or already settled invoice is not
// an error.
func (s *Service) CancelForOrder(ctx context.Context, orderID uint) error {
	res := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("order_id = ? AND payment_status = ?", orderID, models.PaymentUnpaid).
		Update("payment_status", models.PaymentCancelled)
	if res.Error != nil {
		return fmt.Errorf("cancel invoice: %w", res.Error)
	}
	return nil
}

// Get loads one invoice by id.
func (s *Service) Get(ctx context.Context, invoiceID uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.db.WithContext(ctx).Preload("Order.Items").First(&inv, invoiceID).Error; err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

// List returns invoices newest first.
func (s *Service) List(ctx context.Context) ([]models.Invoice, error) {
	var invs []models.Invoice
	if err := s.db.WithContext(ctx).Order("id desc").Find(&invs).Error; err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invs, nil
}
