package models

import "time"

// OrderStatus represents the status of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// DeliveryStatus is the delivery sub-state, tracked independently of the
// order's own status.
type DeliveryStatus string

const (
	DeliveryPending    DeliveryStatus = "pending"
	DeliveryInProgress DeliveryStatus = "in_progress"
	DeliveryCompleted  DeliveryStatus = "completed"
	DeliveryCancelled  DeliveryStatus = "cancelled"
	DeliveryDelayed    DeliveryStatus = "delayed"
)

// Order is a frozen commitment derived from a cart. Lines, prices and the
// total are fixed at placement time; only lifecycle transitions mutate it.
type Order struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Status         OrderStatus    `gorm:"size:20;not null;default:'pending'" json:"status"`
	DeliveryStatus DeliveryStatus `gorm:"size:20;not null;default:'pending'" json:"delivery_status"`

	DeliveryAddress string `gorm:"size:500;not null" json:"delivery_address"`
	PhoneNumber     string `gorm:"size:30;not null" json:"phone_number"`
	Note            string `gorm:"type:text" json:"note,omitempty"`

	// Total is the pre-tax cart total frozen at placement, in minor units.
	Total int64 `gorm:"not null" json:"total"`

	// StockCommitted is set when stock was reserved (pending -> processing)
	// and cleared when the reservation is returned on cancellation.
	StockCommitted bool `gorm:"not null;default:false" json:"-"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// Terminal reports whether the order can no longer change status.
func (o *Order) Terminal() bool {
	return o.Status == OrderStatusDelivered || o.Status == OrderStatusCancelled
}

// OrderItem is one frozen order line. UnitPrice is the price snapshot taken
// when the product was added to the cart, not the product's current price.
type OrderItem struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	OrderID   uint  `gorm:"index;not null" json:"order_id"`
	ProductID uint  `gorm:"not null" json:"product_id"`
	Quantity  int   `gorm:"not null" json:"quantity"`
	UnitPrice int64 `gorm:"not null" json:"unit_price"`
}

// Amount is the line total in minor units.
func (it *OrderItem) Amount() int64 {
	return it.UnitPrice * int64(it.Quantity)
}
