package db

import (
	"fmt"

	"github.com/diewo77/storefront/internal/models"
	"gorm.io/gorm"
)

// Seed inserts demo products when the catalogue is empty.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	products := []models.Product{
		{Name: "Sac à main cuir", UnitPrice: 25000, StockTracked: true, AvailableQuantity: 15, MinQuantity: 5, MaxQuantity: 40},
		{Name: "Montre classique", UnitPrice: 45000, StockTracked: true, AvailableQuantity: 8, MinQuantity: 4, MaxQuantity: 20},
		{Name: "Parfum 50ml", UnitPrice: 18000, StockTracked: true, AvailableQuantity: 3, MinQuantity: 6, MaxQuantity: 30},
		{Name: "Carte cadeau", UnitPrice: 10000, StockTracked: false},
	}
	if err := db.Create(&products).Error; err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return nil
}
