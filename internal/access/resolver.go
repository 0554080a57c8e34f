package access

import (
	"context"

	"github.com/google/uuid"

	pkgerrors "github.com/sahelretail/pos-backend/pkg/errors"
)

// Resolver turns an authenticated actor plus an optional warehouse selection
// into a validated ScopeContext.
type Resolver interface {
	Resolve(ctx context.Context, employeeID uuid.UUID, selectedWarehouseID *uuid.UUID) (*ScopeContext, error)
	RequireWarehouse(scope *ScopeContext) (uuid.UUID, error)
	Table() *PermissionTable
	RefreshPermissions(ctx context.Context) error
}

type resolver struct {
	repo  Repository
	table *PermissionTable
}

// NewResolver loads the role permission table once and returns the resolver.
func NewResolver(ctx context.Context, repo Repository) (Resolver, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "access repository required")
	}
	grants, err := repo.ListRoleGrants(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load role grants")
	}
	return &resolver{
		repo:  repo,
		table: NewPermissionTable(grants),
	}, nil
}

func (r *resolver) Table() *PermissionTable {
	return r.table
}

// RefreshPermissions reloads the role grant table, for use after admin edits.
func (r *resolver) RefreshPermissions(ctx context.Context) error {
	grants, err := r.repo.ListRoleGrants(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload role grants")
	}
	r.table.Replace(grants)
	return nil
}

func (r *resolver) Resolve(ctx context.Context, employeeID uuid.UUID, selectedWarehouseID *uuid.UUID) (*ScopeContext, error) {
	if employeeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee id required")
	}

	employee, err := r.repo.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load employee")
	}
	if employee == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
	}
	if !employee.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "employee is deactivated")
	}

	scope := &ScopeContext{
		EmployeeID:         employee.ID,
		Role:               employee.Role,
		PrimaryWarehouseID: employee.PrimaryWarehouseID,
	}

	if !scope.IsAdmin() {
		assigned, err := r.repo.ListAssignedWarehouseIDs(ctx, employee.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load warehouse assignments")
		}
		scope.AssignedWarehouseIDs = assigned
	}

	switch {
	case selectedWarehouseID != nil:
		warehouse, err := r.repo.GetActiveWarehouse(ctx, *selectedWarehouseID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load warehouse")
		}
		if warehouse == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found or inactive")
		}
		if !scope.CanAccessWarehouse(warehouse.ID) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "warehouse outside actor scope")
		}
		id := warehouse.ID
		scope.SelectedWarehouseID = &id

	case !scope.IsAdmin() && employee.PrimaryWarehouseID != nil:
		// Non-admins without an explicit selection fall back to their
		// primary warehouse.
		id := *employee.PrimaryWarehouseID
		scope.SelectedWarehouseID = &id
	}

	return scope, nil
}

// RequireWarehouse resolves the single target warehouse for a write. Admins
// must have selected one explicitly; non-admins fall back through Resolve.
func (r *resolver) RequireWarehouse(scope *ScopeContext) (uuid.UUID, error) {
	if scope == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "scope required")
	}
	if scope.SelectedWarehouseID == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse selection required")
	}
	return *scope.SelectedWarehouseID, nil
}
