package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sahelretail/pos-backend/pkg/enums"
)

// Sale records one checkout tied to the shift it happened in.
type Sale struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ShiftID     uuid.UUID        `gorm:"column:shift_id;type:uuid;not null;index"`
	WarehouseID uuid.UUID        `gorm:"column:warehouse_id;type:uuid;not null;index"`
	EmployeeID  uuid.UUID        `gorm:"column:employee_id;type:uuid;not null"`
	Status      enums.SaleStatus `gorm:"column:status;type:sale_status_enum;not null;default:'completed'"`
	Total       decimal.Decimal  `gorm:"column:total;type:numeric(12,2);not null"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
