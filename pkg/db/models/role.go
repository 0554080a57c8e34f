package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/sahelretail/pos-backend/pkg/enums"
)

// RoleGrant stores the permission strings attached to each employee role.
// The table is loaded once at boot and cached by the access resolver.
type RoleGrant struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Role        enums.Role     `gorm:"column:role;type:employee_role_enum;not null;uniqueIndex"`
	Permissions pq.StringArray `gorm:"column:permissions;type:text[];not null"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
