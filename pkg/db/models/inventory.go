package models

import (
	"time"

	"github.com/google/uuid"
)

// Inventory tracks the on-hand quantity of one product in one warehouse.
// The (product, warehouse) pair is unique; quantity never goes below zero.
type Inventory struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID       uuid.UUID  `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_inventory_product_warehouse"`
	WarehouseID     uuid.UUID  `gorm:"column:warehouse_id;type:uuid;not null;uniqueIndex:idx_inventory_product_warehouse"`
	Quantity        int        `gorm:"column:quantity;not null;default:0"`
	MinStockLevel   int        `gorm:"column:min_stock_level;not null;default:0"`
	MaxStockLevel   *int       `gorm:"column:max_stock_level"`
	LastRestockedAt *time.Time `gorm:"column:last_restocked_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
