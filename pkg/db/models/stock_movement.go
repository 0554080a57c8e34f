package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sahelretail/pos-backend/pkg/enums"
)

// StockMovement is an immutable ledger entry written whenever inventory
// quantity changes. Quantity is the signed delta and Balance is the on-hand
// quantity after the movement was applied.
type StockMovement struct {
	ID          uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID   uuid.UUID               `gorm:"column:product_id;type:uuid;not null;index"`
	WarehouseID uuid.UUID               `gorm:"column:warehouse_id;type:uuid;not null;index"`
	Type        enums.StockMovementType `gorm:"column:type;type:stock_movement_type_enum;not null"`
	Quantity    int                     `gorm:"column:quantity;not null"`
	Balance     int                     `gorm:"column:balance;not null"`
	Reason      *string                 `gorm:"column:reason;type:text"`
	ReferenceID *uuid.UUID              `gorm:"column:reference_id;type:uuid"`
	EmployeeID  uuid.UUID               `gorm:"column:employee_id;type:uuid;not null"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
}
