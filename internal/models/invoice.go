package models

import "time"

// PaymentStatus represents the payment state of an invoice.
type PaymentStatus string

const (
	PaymentUnpaid    PaymentStatus = "unpaid"
	PaymentPaid      PaymentStatus = "paid"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Invoice is a monetary document derived from an order's frozen lines plus
// tax. Recomputing it from the same order always yields the same figures.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Number format: FAC-{year}-{order id zero-padded to 4 digits}
	Number string `gorm:"size:50;uniqueIndex" json:"number"`

	OrderID uint   `gorm:"uniqueIndex;not null" json:"order_id"`
	Order   *Order `gorm:"foreignKey:OrderID" json:"-"`

	// Amounts in minor units. TaxRateBps is the VAT rate in basis points.
	Subtotal   int64 `gorm:"not null" json:"subtotal"`
	TaxRateBps int   `gorm:"not null" json:"tax_rate_bps"`
	TaxAmount  int64 `gorm:"not null" json:"tax_amount"`
	Total      int64 `gorm:"not null" json:"total"`

	PaymentStatus PaymentStatus `gorm:"size:20;not null;default:'unpaid'" json:"payment_status"`
	PaymentMethod string        `gorm:"size:50" json:"payment_method,omitempty"`
	PaymentDate   *time.Time    `json:"payment_date,omitempty"`
}

// IsPaid returns true once payment has been settled.
func (i *Invoice) IsPaid() bool {
	return i.PaymentStatus == PaymentPaid
}

// CanPay returns true if the invoice still accepts payment.
func (i *Invoice) CanPay() bool {
	return i.PaymentStatus == PaymentUnpaid
}
