package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sahelretail/pos-backend/pkg/enums"
)

// Shift represents one cashier session at a warehouse. The sales statistics
// and cash reconciliation columns are snapshotted when the shift closes.
type Shift struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	EmployeeID  uuid.UUID         `gorm:"column:employee_id;type:uuid;not null;index"`
	WarehouseID uuid.UUID         `gorm:"column:warehouse_id;type:uuid;not null;index"`
	Status      enums.ShiftStatus `gorm:"column:status;type:shift_status_enum;not null;default:'open'"`
	OpeningCash decimal.Decimal   `gorm:"column:opening_cash;type:numeric(12,2);not null"`

	ClosingCash    *decimal.Decimal `gorm:"column:closing_cash;type:numeric(12,2)"`
	ExpectedCash   *decimal.Decimal `gorm:"column:expected_cash;type:numeric(12,2)"`
	CashDifference *decimal.Decimal `gorm:"column:cash_difference;type:numeric(12,2)"`

	SalesCount       int             `gorm:"column:sales_count;not null;default:0"`
	TotalSales       decimal.Decimal `gorm:"column:total_sales;type:numeric(12,2);not null;default:0"`
	CashTotal        decimal.Decimal `gorm:"column:cash_total;type:numeric(12,2);not null;default:0"`
	MobileMoneyTotal decimal.Decimal `gorm:"column:mobile_money_total;type:numeric(12,2);not null;default:0"`
	RefundCount      int             `gorm:"column:refund_count;not null;default:0"`
	RefundTotal      decimal.Decimal `gorm:"column:refund_total;type:numeric(12,2);not null;default:0"`
	NetTotal         decimal.Decimal `gorm:"column:net_total;type:numeric(12,2);not null;default:0"`

	Notes     *string    `gorm:"column:notes;type:text"`
	StartedAt time.Time  `gorm:"column:started_at;not null"`
	EndedAt   *time.Time `gorm:"column:ended_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
