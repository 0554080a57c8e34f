package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sahelretail/pos-backend/pkg/enums"
)

// Alert is an admin-facing notification materialized from domain events.
type Alert struct {
	ID          uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Type        enums.AlertType     `gorm:"column:type;type:alert_type_enum;not null"`
	Severity    enums.AlertSeverity `gorm:"column:severity;type:alert_severity_enum;not null"`
	Title       string              `gorm:"column:title;type:text;not null"`
	Message     string              `gorm:"column:message;type:text;not null"`
	WarehouseID *uuid.UUID          `gorm:"column:warehouse_id;type:uuid"`
	ReferenceID *uuid.UUID          `gorm:"column:reference_id;type:uuid"`
	IsRead      bool                `gorm:"column:is_read;not null;default:false"`
	ReadAt      *time.Time          `gorm:"column:read_at"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
}
