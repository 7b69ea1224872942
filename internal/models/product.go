package models

import "time"

// StockLevel classifies a product's remaining quantity against its reorder
// threshold. The classification drives back-office alerting only.
type StockLevel string

const (
	StockNormal   StockLevel = "normal"
	StockWarning  StockLevel = "warning"
	StockCritical StockLevel = "critical"
	StockOut      StockLevel = "out_of_stock"
)

type Product struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;not null" json:"name"`

	// UnitPrice is stored in minor currency units (no fractional values).
	UnitPrice int64 `gorm:"not null" json:"unit_price"`

	// StockTracked marks AvailableQuantity as authoritative. Untracked
	// products are never clamped in carts and never reserved on commit.
	StockTracked      bool `gorm:"not null;default:true" json:"stock_tracked"`
	AvailableQuantity int  `gorm:"not null;default:0" json:"available_quantity"`

	// MinQuantity is the reorder threshold; MaxQuantity is an advisory
	// ceiling, not enforced on release.
	MinQuantity int `gorm:"not null;default:0" json:"min_quantity"`
	MaxQuantity int `gorm:"not null;default:0" json:"max_quantity"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
