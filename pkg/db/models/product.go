package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog entry shared by every warehouse.
type Product struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string          `gorm:"column:name;type:text;not null"`
	SKU       string          `gorm:"column:sku;type:text;not null;uniqueIndex"`
	Barcode   *string         `gorm:"column:barcode;type:text"`
	Category  *string         `gorm:"column:category;type:text"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	CostPrice decimal.Decimal `gorm:"column:cost_price;type:numeric(12,2);not null"`
	IsActive  bool            `gorm:"column:is_active;not null;default:true"`
	DeletedAt *time.Time      `gorm:"column:deleted_at"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
