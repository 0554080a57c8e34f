package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sahelretail/pos-backend/pkg/enums"
)

// TransferRequest tracks moving product stock between two warehouses through
// the pending, approved and received lifecycle. Quantity may be left empty at
// request time; the approving manager fixes the final amount.
type TransferRequest struct {
	ID                uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID         uuid.UUID            `gorm:"column:product_id;type:uuid;not null;index"`
	SourceWarehouseID uuid.UUID            `gorm:"column:source_warehouse_id;type:uuid;not null;index"`
	DestWarehouseID   uuid.UUID            `gorm:"column:dest_warehouse_id;type:uuid;not null;index"`
	Quantity          *int                 `gorm:"column:quantity"`
	Status            enums.TransferStatus `gorm:"column:status;type:transfer_status_enum;not null;default:'pending'"`
	RequestedByID     uuid.UUID            `gorm:"column:requested_by_id;type:uuid;not null"`
	ApprovedByID      *uuid.UUID           `gorm:"column:approved_by_id;type:uuid"`
	ReceivedByID      *uuid.UUID           `gorm:"column:received_by_id;type:uuid"`
	RejectedByID      *uuid.UUID           `gorm:"column:rejected_by_id;type:uuid"`
	RejectionReason   *string              `gorm:"column:rejection_reason;type:text"`
	Notes             *string              `gorm:"column:notes;type:text"`
	ApprovedAt        *time.Time           `gorm:"column:approved_at"`
	RejectedAt        *time.Time           `gorm:"column:rejected_at"`
	ReceivedAt        *time.Time           `gorm:"column:received_at"`
	CreatedAt         time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
