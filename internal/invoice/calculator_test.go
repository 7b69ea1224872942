package invoice

import (
	"reflect"
	"testing"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name  string
		lines []Line
		want  Totals
	}{
		{
			name:  "single line at 18%",
			lines: []Line{{ProductID: 1, Quantity: 1, UnitPrice: 115000}},
			want:  Totals{Subtotal: 115000, TaxAmount: 20700, Total: 135700},
		},
		{
			name: "multiple lines",
			lines: []Line{
				{ProductID: 1, Quantity: 2, UnitPrice: 25000},
				{ProductID: 2, Quantity: 1, UnitPrice: 10000},
			},
			want: Totals{Subtotal: 60000, TaxAmount: 10800, Total: 70800},
		},
		{
			name:  "tax rounds half up",
			lines: []Line{{ProductID: 1, Quantity: 1, UnitPrice: 3}},
			// 3 * 0.18 = 0.54 -> 1
			want: Totals{Subtotal: 3, TaxAmount: 1, Total: 4},
		},
		{
			name:  "empty lines",
			lines: nil,
			want:  Totals{},
		},
		{
			name: "non-positive quantities are skipped",
			lines: []Line{
				{ProductID: 1, Quantity: 0, UnitPrice: 1000},
				{ProductID: 2, Quantity: -2, UnitPrice: 1000},
				{ProductID: 3, Quantity: 1, UnitPrice: 1000},
			},
			want: Totals{Subtotal: 1000, TaxAmount: 180, Total: 1180},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.lines, DefaultTaxRateBps)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Compute() = %+v, want %+v", got, tt.want)
			}
			// idempotent: a second call yields identical output
			if again := Compute(tt.lines, DefaultTaxRateBps); again != got {
				t.Errorf("recompute drifted: %+v then %+v", got, again)
			}
		})
	}
}

func TestCompute_TotalInvariant(t *testing.T) {
	lines := []Line{
		{ProductID: 1, Quantity: 3, UnitPrice: 333},
		{ProductID: 2, Quantity: 7, UnitPrice: 1499},
	}
	got := Compute(lines, DefaultTaxRateBps)
	if got.Total != got.Subtotal+got.TaxAmount {
		t.Errorf("Total %d != Subtotal %d + TaxAmount %d", got.Total, got.Subtotal, got.TaxAmount)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		orderID uint
		year    int
		want    string
	}{
		{7, 2024, "FAC-2024-0007"},
		{1, 2025, "FAC-2025-0001"},
		{1234, 2025, "FAC-2025-1234"},
		{99999, 2026, "FAC-2026-99999"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.orderID, tt.year); got != tt.want {
			t.Errorf("FormatNumber(%d, %d) = %q, want %q", tt.orderID, tt.year, got, tt.want)
		}
	}
}
