// Package cart maintains the active shopping cart for one client session,
// with stock-aware quantity control. A cart is single-writer: it is owned by
// its session and mutated synchronously, never shared between sessions.
package cart

import (
	"context"

	"github.com/diewo77/storefront/internal/models"
)

// Clamper advises the maximum quantity a cart may carry for a product. Carts
// only advise a ceiling; they never hold a hard stock reservation.
type Clamper interface {
	ClampQuantity(ctx context.Context, productID uint, requested int) (int, error)
}

// Line is one cart line. UnitPrice is snapshotted when the product is first
// added and does not track later price changes.
type Line struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// Amount is the line total in minor units.
func (l Line) Amount() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Signal reports the informational outcome of a cart mutation. These are
// expected user-facing conditions, not faults.
type Signal int

const (
	SignalNone Signal = iota
	SignalAdded
	SignalIncremented
	SignalStockLimit
	SignalRemoved
	SignalUpdated
)

// Engine holds the cart lines in insertion order, one line per product.
type Engine struct {
	clamper Clamper
	lines   []Line
}

func NewEngine(clamper Clamper) *Engine {
	return &Engine{clamper: clamper}
}

func (e *Engine) find(productID uint) int {
	for i := range e.lines {
		if e.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem adds one unit of the product. An existing line is incremented
// rather than duplicated; the increment is clamped to available stock, and
// hitting the ceiling is a no-op reported as SignalStockLimit.
func (e *Engine) AddItem(ctx context.Context, p models.Product) (Signal, error) {
	i := e.find(p.ID)
	if i < 0 {
		allowed, err := e.clamper.ClampQuantity(ctx, p.ID, 1)
		if err != nil {
			return SignalNone, err
		}
		if allowed < 1 {
			return SignalStockLimit, nil
		}
		e.lines = append(e.lines, Line{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.UnitPrice,
			Quantity:  1,
		})
		return SignalAdded, nil
	}
	allowed, err := e.clamper.ClampQuantity(ctx, p.ID, e.lines[i].Quantity+1)
	if err != nil {
		return SignalNone, err
	}
	if allowed <= e.lines[i].Quantity {
		return SignalStockLimit, nil
	}
	e.lines[i].Quantity = allowed
	return SignalIncremented, nil
}

// UpdateQuantity sets a line's quantity, clamped to available stock. A target
// below 1 removes the line.
func (e *Engine) UpdateQuantity(ctx context.Context, productID uint, quantity int) (Signal, error) {
	i := e.find(productID)
	if i < 0 {
		return SignalNone, nil
	}
	if quantity < 1 {
		e.RemoveItem(productID)
		return SignalRemoved, nil
	}
	allowed, err := e.clamper.ClampQuantity(ctx, productID, quantity)
	if err != nil {
		return SignalNone, err
	}
	if allowed < 1 {
		e.RemoveItem(productID)
		return SignalRemoved, nil
	}
	e.lines[i].Quantity = allowed
	if allowed < quantity {
		return SignalStockLimit, nil
	}
	return SignalUpdated, nil
}

// RemoveItem deletes the line unconditionally.
func (e *Engine) RemoveItem(productID uint) {
	if i := e.find(productID); i >= 0 {
		e.lines = append(e.lines[:i], e.lines[i+1:]...)
	}
}

// Clear empties all lines.
func (e *Engine) Clear() {
	e.lines = nil
}

// Total is always recomputed from the current lines, never cached.
func (e *Engine) Total() int64 {
	var total int64
	for _, l := range e.lines {
		total += l.Amount()
	}
	return total
}

// Count is the total number of units across all lines.
func (e *Engine) Count() int {
	var n int
	for _, l := range e.lines {
		n += l.Quantity
	}
	return n
}

// Empty reports whether the cart has no lines.
func (e *Engine) Empty() bool {
	return len(e.lines) == 0
}

// Lines returns a copy of the cart lines in insertion order.
func (e *Engine) Lines() []Line {
	out := make([]Line, len(e.lines))
	copy(out, e.lines)
	return out
}
