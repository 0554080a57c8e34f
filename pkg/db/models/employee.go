package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sahelretail/pos-backend/pkg/enums"
)

// Employee represents a staff account that signs in with phone plus PIN.
type Employee struct {
	ID                 uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FullName           string     `gorm:"column:full_name;type:text;not null"`
	Phone              string     `gorm:"column:phone;type:text;not null;uniqueIndex"`
	PINHash            string     `gorm:"column:pin_hash;type:text;not null"`
	Role               enums.Role `gorm:"column:role;type:employee_role_enum;not null"`
	PrimaryWarehouseID *uuid.UUID `gorm:"column:primary_warehouse_id;type:uuid"`
	IsActive           bool       `gorm:"column:is_active;not null;default:true"`
	LastLoginAt        *time.Time `gorm:"column:last_login_at"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// WarehouseAssignment grants an employee access to a warehouse beyond their
// primary one.
type WarehouseAssignment struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	EmployeeID  uuid.UUID `gorm:"column:employee_id;type:uuid;not null;uniqueIndex:idx_assignment_employee_warehouse"`
	WarehouseID uuid.UUID `gorm:"column:warehouse_id;type:uuid;not null;uniqueIndex:idx_assignment_employee_warehouse"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
