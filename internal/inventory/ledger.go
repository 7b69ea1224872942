// Package inventory is the single source of truth for how much of a product
// can be promised to carts and orders, and for stock level alerting.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/diewo77/storefront/internal/models"
	"gorm.io/gorm"
)

// ErrInsufficientStock is returned by Reserve when the requested quantity
// exceeds what the ledger can commit.
var ErrInsufficientStock = errors.New("insufficient stock")

// Ledger tracks available quantity per product. Reservations decrement stock
// atomically; quantity can never go negative.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// WithTx returns a ledger bound to the given transaction, so reservations for
// several lines commit or roll back together.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	return &Ledger{db: tx}
}

// ClampQuantity returns min(requested, available) for stock-tracked products,
// and requested unchanged otherwise. Callers guarantee requested > 0.
func (l *Ledger) ClampQuantity(ctx context.Context, productID uint, requested int) (int, error) {
	var p models.Product
	if err := l.db.WithContext(ctx).First(&p, productID).Error; err != nil {
		return 0, fmt.Errorf("clamp quantity: %w", err)
	}
	if !p.StockTracked {
		return requested, nil
	}
	if requested > p.AvailableQuantity {
		return p.AvailableQuantity, nil
	}
	return requested, nil
}

// Reserve decrements available quantity by qty. It is called at order commit
// only; carts never hold a hard reservation. The decrement is a conditional
// UPDATE so two concurrent reservations cannot drive stock negative.
func (l *Ledger) Reserve(ctx context.Context, productID uint, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("reserve: quantity must be positive, got %d", qty)
	}
	var p models.Product
	if err := l.db.WithContext(ctx).First(&p, productID).Error; err != nil {
		return fmt.Errorf("reserve: %w", err)
	}
	if !p.StockTracked {
		return nil
	}
	res := l.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND available_quantity >= ?", productID, qty).
		UpdateColumn("available_quantity", gorm.Expr("available_quantity - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("reserve: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", productID, ErrInsufficientStock)
	}
	return nil
}

// Release returns qty units to the ledger, used when an order is cancelled
// within policy. MaxQuantity is advisory; excess above it is accepted.
func (l *Ledger) Release(ctx context.Context, productID uint, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("release: quantity must be positive, got %d", qty)
	}
	var p models.Product
	if err := l.db.WithContext(ctx).First(&p, productID).Error; err != nil {
		return fmt.Errorf("release: %w", err)
	}
	if !p.StockTracked {
		return nil
	}
	res := l.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("available_quantity", gorm.Expr("available_quantity + ?", qty))
	if res.Error != nil {
		return fmt.Errorf("release: %w", res.Error)
	}
	return nil
}

// Adjust sets the absolute available quantity for a product (back-office
// stock corrections). Negative targets are rejected.
func (l *Ledger) Adjust(ctx context.Context, productID uint, quantity int) (*models.Product, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("adjust: quantity cannot be negative, got %d", quantity)
	}
	var p models.Product
	if err := l.db.WithContext(ctx).First(&p, productID).Error; err != nil {
		return nil, fmt.Errorf("adjust: %w", err)
	}
	if err := l.db.WithContext(ctx).Model(&p).
		UpdateColumn("available_quantity", quantity).Error; err != nil {
		return nil, fmt.Errorf("adjust: %w", err)
	}
	p.AvailableQuantity = quantity
	return &p, nil
}

// Classify buckets a product's stock level. Out of stock when quantity is
// zero; otherwise the ratio of available to the reorder threshold decides:
// critical at <= 50%, warning at <= 75%.
func Classify(p models.Product) models.StockLevel {
	if !p.StockTracked {
		return models.StockNormal
	}
	if p.AvailableQuantity == 0 {
		return models.StockOut
	}
	if p.MinQuantity <= 0 {
		return models.StockNormal
	}
	ratio := float64(p.AvailableQuantity) / float64(p.MinQuantity) * 100
	switch {
	case ratio <= 50:
		return models.StockCritical
	case ratio <= 75:
		return models.StockWarning
	default:
		return models.StockNormal
	}
}

// Alert pairs a product with its non-normal stock classification.
type Alert struct {
	Product models.Product    `json:"product"`
	Level   models.StockLevel `json:"level"`
}

// Alerts lists every stock-tracked product whose classification is not
// normal, worst first.
func (l *Ledger) Alerts(ctx context.Context) ([]Alert, error) {
	var products []models.Product
	if err := l.db.WithContext(ctx).
		Where("stock_tracked = ?", true).
		Order("available_quantity asc").
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("alerts: %w", err)
	}
	var alerts []Alert
	for _, p := range products {
		if lvl := Classify(p); lvl != models.StockNormal {
			alerts = append(alerts, Alert{Product: p, Level: lvl})
		}
	}
	return alerts, nil
}
