package access

import (
	"github.com/google/uuid"

	"github.com/sahelretail/pos-backend/pkg/enums"
)

// ScopeContext is the resolved warehouse scope for one authenticated actor.
// It is computed once per request by the Resolver and threaded explicitly
// through every core operation; business logic never re-derives scope from
// headers or ambient state.
type ScopeContext struct {
	EmployeeID           uuid.UUID
	Role                 enums.Role
	PrimaryWarehouseID   *uuid.UUID
	AssignedWarehouseIDs []uuid.UUID

	// SelectedWarehouseID is the warehouse the caller picked for this
	// request, already validated against the actor's scope. Nil means no
	// selection: admins read across all warehouses, non-admins fall back
	// to their primary warehouse during resolution.
	SelectedWarehouseID *uuid.UUID
}

// IsAdmin reports whether the actor bypasses warehouse scoping.
func (s *ScopeContext) IsAdmin() bool {
	return s.Role == enums.RoleAdmin
}

// CanAccessWarehouse reports whether the actor may operate against the
// warehouse. Admins always can; everyone else needs the warehouse in their
// primary-or-assigned set.
func (s *ScopeContext) CanAccessWarehouse(warehouseID uuid.UUID) bool {
	if warehouseID == uuid.Nil {
		return false
	}
	if s.IsAdmin() {
		return true
	}
	if s.PrimaryWarehouseID != nil && *s.PrimaryWarehouseID == warehouseID {
		return true
	}
	for _, id := range s.AssignedWarehouseIDs {
		if id == warehouseID {
			return true
		}
	}
	return false
}

// AccessibleWarehouseIDs returns the concrete scope set for non-admins.
// Admins return nil, meaning "all warehouses".
func (s *ScopeContext) AccessibleWarehouseIDs() []uuid.UUID {
	if s.IsAdmin() {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(s.AssignedWarehouseIDs)+1)
	out := make([]uuid.UUID, 0, len(s.AssignedWarehouseIDs)+1)
	if s.PrimaryWarehouseID != nil {
		seen[*s.PrimaryWarehouseID] = struct{}{}
		out = append(out, *s.PrimaryWarehouseID)
	}
	for _, id := range s.AssignedWarehouseIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
