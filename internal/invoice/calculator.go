// Package invoice derives monetary figures from an order's frozen lines.
// Calculation is pure: the same lines and rate always produce the same
// totals.
package invoice

import "fmt"

// DefaultTaxRateBps is the VAT rate applied to invoices, in basis points.
const DefaultTaxRateBps = 1800

// Line carries the data needed to price one invoice line. All amounts are in
// minor currency units.
type Line struct {
	ProductID uint
	Quantity  int
	UnitPrice int64
}

// Totals holds the computed invoice figures, in minor units.
type Totals struct {
	Subtotal  int64 `json:"subtotal"`
	TaxAmount int64 `json:"tax_amount"`
	Total     int64 `json:"total"`
}

// Compute prices the given lines at the given tax rate. Tax is rounded to
// the nearest unit, half up, so repeated recomputation never drifts.
func Compute(lines []Line, taxRateBps int) Totals {
	var subtotal int64
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		subtotal += l.UnitPrice * int64(l.Quantity)
	}
	tax := (subtotal*int64(taxRateBps) + 5000) / 10000
	return Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal + tax,
	}
}

// FormatNumber builds the invoice number for an order, e.g. FAC-2024-0007.
func FormatNumber(orderID uint, year int) string {
	return fmt.Sprintf("FAC-%d-%04d", year, orderID)
}
