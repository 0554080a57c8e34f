package access

import (
	"sync"

	"github.com/sahelretail/pos-backend/pkg/db/models"
	"github.com/sahelretail/pos-backend/pkg/enums"
)

// Permission strings stored in role_grants.
const (
	PermInventoryRead   = "inventory:read"
	PermInventoryAdjust = "inventory:adjust"
	PermInventoryLevels = "inventory:levels"

	PermTransfersCreate  = "transfers:create"
	PermTransfersApprove = "transfers:approve"
	PermTransfersReceive = "transfers:receive"
	PermTransfersRead    = "transfers:read"

	PermShiftsStart = "shifts:start"
	PermShiftsEnd   = "shifts:end"
	PermShiftsRead  = "shifts:read"

	PermAlertsRead   = "alerts:read"
	PermAlertsManage = "alerts:manage"

	PermEmployeesManage  = "employees:manage"
	PermWarehousesManage = "warehouses:manage"
)

// PermissionTable holds the role to permission mapping loaded from the
// role_grants table at boot. Reads are lock-free after Replace; Replace is
// called at startup and whenever an admin updates grants.
type PermissionTable struct {
	mtx   sync.RWMutex
	perms map[enums.Role]map[string]struct{}
}

// NewPermissionTable builds a table from role grant rows.
func NewPermissionTable(grants []models.RoleGrant) *PermissionTable {
	t := &PermissionTable{}
	t.Replace(grants)
	return t
}

// Replace swaps the full mapping.
func (t *PermissionTable) Replace(grants []models.RoleGrant) {
	perms := make(map[enums.Role]map[string]struct{}, len(grants))
	for _, grant := range grants {
		set := make(map[string]struct{}, len(grant.Permissions))
		for _, p := range grant.Permissions {
			set[p] = struct{}{}
		}
		perms[grant.Role] = set
	}
	t.mtx.Lock()
	t.perms = perms
	t.mtx.Unlock()
}

// Allows reports whether the role carries the permission.
func (t *PermissionTable) Allows(role enums.Role, permission string) bool {
	t.mtx.RLock()
	defer t.mtx.RUnlock()
	set, ok := t.perms[role]
	if !ok {
		return false
	}
	_, ok = set[permission]
	return ok
}

// Permissions returns the permission strings granted to the role.
func (t *PermissionTable) Permissions(role enums.Role) []string {
	t.mtx.RLock()
	defer t.mtx.RUnlock()
	set, ok := t.perms[role]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	return out
}
