package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sahelretail/pos-backend/pkg/enums"
)

// Warehouse represents a stocking location, either a sales boutique or a
// storage depot.
type Warehouse struct {
	ID        uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string              `gorm:"column:name;type:text;not null;uniqueIndex"`
	Type      enums.WarehouseType `gorm:"column:type;type:warehouse_type_enum;not null"`
	Location  *string             `gorm:"column:location;type:text"`
	IsDefault bool                `gorm:"column:is_default;not null;default:false"`
	IsActive  bool                `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
