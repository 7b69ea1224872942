package db

import (
	"fmt"
	"time"

	"github.com/diewo77/storefront/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ConnectAndMigrate connects to Postgres and applies the schema.
func ConnectAndMigrate(dsn string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	// simple retry to give Postgres time to come up
	for i := 0; i < 5; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		fmt.Printf("attempt %d/5 failed, retrying...\n", i+1)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate applies the GORM schema for all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Invoice{},
	); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}
	return nil
}
