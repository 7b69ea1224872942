// Package lifecycle owns the order state machine: placement, status and
// delivery transitions, stock commit/release, and lifecycle event emission.
package lifecycle

import (
	"context"
	"fmt"
	"log"

	"github.com/diewo77/storefront/internal/cart"
	"github.com/diewo77/storefront/internal/inventory"
	"github.com/diewo77/storefront/internal/invoice"
	"github.com/diewo77/storefront/internal/models"
	"github.com/diewo77/storefront/internal/notify"
	"github.com/diewo77/storefront/validation"
	"gorm.io/gorm"
)

// Manager drives orders through their lifecycle. Stock is committed on the
// first pending -> processing transition and returned on cancellation; each
// successful transition emits one event to the dispatcher.
type Manager struct {
	db         *gorm.DB
	ledger     *inventory.Ledger
	dispatcher notify.Dispatcher
}

func NewManager(db *gorm.DB, ledger *inventory.Ledger, dispatcher notify.Dispatcher) *Manager {
	return &Manager{db: db, ledger: ledger, dispatcher: dispatcher}
}

// PlacementRequest is the checkout payload: the cart snapshot plus the
// delivery details the order needs.
type PlacementRequest struct {
	Lines           []cart.Line
	DeliveryAddress string
	PhoneNumber     string
	Note            string
}

// Place freezes a cart snapshot into a pending order. The total is fixed
// here and never changes afterwards, even if product prices do.
func (m *Manager) Place(ctx context.Context, req PlacementRequest) (*models.Order, error) {
	v := validation.Violations{}
	validation.Required("delivery_address", req.DeliveryAddress, v)
	validation.Phone("phone_number", req.PhoneNumber, v)
	if len(req.Lines) == 0 {
		v["items"] = "required"
	}
	for _, l := range req.Lines {
		if l.Quantity <= 0 || l.UnitPrice < 0 {
			v["items"] = "invalid_quantity_or_price"
			break
		}
	}
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}

	lines := make([]invoice.Line, 0, len(req.Lines))
	items := make([]models.OrderItem, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, invoice.Line{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
		items = append(items, models.OrderItem{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	totals := invoice.Compute(lines, invoice.DefaultTaxRateBps)

	order := models.Order{
		Status:          models.OrderStatusPending,
		DeliveryStatus:  models.DeliveryPending,
		DeliveryAddress: req.DeliveryAddress,
		PhoneNumber:     req.PhoneNumber,
		Note:            req.Note,
		Total:           totals.Subtotal,
		Items:           items,
	}
	if err := m.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	m.emit(ctx, notify.NewEvent(order.ID, "", string(models.OrderStatusPending), "email"))
	return &order, nil
}

// Transition moves an order to a new status per the transition table. The
// status change is a conditional update on the previous status, so two
// concurrent calls cannot both succeed; the loser gets
// InvalidTransitionError and the order is left unchanged.
func (m *Manager) Transition(ctx context.Context, orderID uint, to models.OrderStatus) (*models.Order, error) {
	var order models.Order
	if err := m.db.WithContext(ctx).Preload("Items").First(&order, orderID).Error; err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	from := order.Status
	if !CanTransition(from, to) {
		return nil, &InvalidTransitionError{From: from, To: to}
	}

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, from).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// a concurrent transition won the race
			return &InvalidTransitionError{From: from, To: to}
		}

		ledger := m.ledger.WithTx(tx)
		switch {
		case to == models.OrderStatusProcessing && !order.StockCommitted:
			for _, it := range order.Items {
				if err := ledger.Reserve(ctx, it.ProductID, it.Quantity); err != nil {
					return err
				}
			}
			if err := tx.Model(&models.Order{}).Where("id = ?", orderID).
				Update("stock_committed", true).Error; err != nil {
				return err
			}
			order.StockCommitted = true
		case to == models.OrderStatusCancelled && order.StockCommitted:
			for _, it := range order.Items {
				if err := ledger.Release(ctx, it.ProductID, it.Quantity); err != nil {
					return err
				}
			}
			if err := tx.Model(&models.Order{}).Where("id = ?", orderID).
				Update("stock_committed", false).Error; err != nil {
				return err
			}
			order.StockCommitted = false
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Status = to
	m.emit(ctx, notify.NewEvent(order.ID, string(from), string(to), "email"))
	return &order, nil
}

// TransitionDelivery advances the delivery sub-status, independently of the
// order's own status.
func (m *Manager) TransitionDelivery(ctx context.Context, orderID uint, to models.DeliveryStatus) (*models.Order, error) {
	var order models.Order
	if err := m.db.WithContext(ctx).Preload("Items").First(&order, orderID).Error; err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	from := order.DeliveryStatus
	if !CanTransitionDelivery(from, to) {
		return nil, &InvalidTransitionError{From: models.OrderStatus(from), To: models.OrderStatus(to)}
	}

	res := m.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND delivery_status = ?", orderID, from).
		Update("delivery_status", to)
	if res.Error != nil {
		return nil, fmt.Errorf("update delivery status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, &InvalidTransitionError{From: models.OrderStatus(from), To: models.OrderStatus(to)}
	}

	order.DeliveryStatus = to
	m.emit(ctx, notify.NewEvent(order.ID, string(from), string(to), "sms"))
	return &order, nil
}

// Get loads one order with its items.
func (m *Manager) Get(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := m.db.WithContext(ctx).Preload("Items").First(&order, orderID).Error; err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	return &order, nil
}

// List returns orders newest first.
func (m *Manager) List(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := m.db.WithContext(ctx).Preload("Items").Order("id desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// emit dispatches a lifecycle event. Dispatch failure is logged, never
// propagated: notification is best-effort, not transactional with the
// state change.
func (m *Manager) emit(ctx context.Context, ev notify.Event) {
	if m.dispatcher == nil {
		return
	}
	if err := m.dispatcher.Notify(ctx, ev); err != nil {
		log.Printf("notify order %d (%s -> %s): %v", ev.OrderID, ev.FromStatus, ev.ToStatus, err)
	}
}
