package employees

import (
	"time"

	"github.com/google/uuid"

	"github.com/sahelretail/pos-backend/pkg/db/models"
	"github.com/sahelretail/pos-backend/pkg/enums"
)

// EmployeeDTO is the API representation of a staff account. The PIN hash
// never leaves the service layer.
type EmployeeDTO struct {
	ID                 uuid.UUID  `json:"id"`
	FullName           string     `json:"full_name"`
	Phone              string     `json:"phone"`
	Role               enums.Role `json:"role"`
	PrimaryWarehouseID *uuid.UUID `json:"primary_warehouse_id,omitempty"`
	IsActive           bool       `json:"is_active"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// FromModel maps the database row to its API shape.
func FromModel(employee *models.Employee) *EmployeeDTO {
	if employee == nil {
		return nil
	}
	return &EmployeeDTO{
		ID:                 employee.ID,
		FullName:           employee.FullName,
		Phone:              employee.Phone,
		Role:               employee.Role,
		PrimaryWarehouseID: employee.PrimaryWarehouseID,
		IsActive:           employee.IsActive,
		LastLoginAt:        employee.LastLoginAt,
		CreatedAt:          employee.CreatedAt,
	}
}
