package access

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/sahelretail/pos-backend/pkg/db/models"
	"github.com/sahelretail/pos-backend/pkg/enums"
	pkgerrors "github.com/sahelretail/pos-backend/pkg/errors"
)

type fakeRepository struct {
	employees   map[uuid.UUID]*models.Employee
	assignments map[uuid.UUID][]uuid.UUID
	warehouses  map[uuid.UUID]*models.Warehouse
	grants      []models.RoleGrant
}

func (f *fakeRepository) GetEmployee(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	return f.employees[id], nil
}

func (f *fakeRepository) ListAssignedWarehouseIDs(ctx context.Context, employeeID uuid.UUID) ([]uuid.UUID, error) {
	return f.assignments[employeeID], nil
}

func (f *fakeRepository) GetActiveWarehouse(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	return f.warehouses[id], nil
}

func (f *fakeRepository) ListRoleGrants(ctx context.Context) ([]models.RoleGrant, error) {
	return f.grants, nil
}

func activeWarehouse(id uuid.UUID) *models.Warehouse {
	return &models.Warehouse{ID: id, Name: "wh-" + id.String()[:8], Type: enums.WarehouseTypeBoutique, IsActive: true}
}

func newResolverWithRepo(t *testing.T, repo Repository) Resolver {
	t.Helper()
	r, err := NewResolver(context.Background(), repo)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return r
}

func TestResolveCashierDefaultsToPrimary(t *testing.T) {
	primary := uuid.New()
	employeeID := uuid.New()
	repo := &fakeRepository{
		employees: map[uuid.UUID]*models.Employee{
			employeeID: {ID: employeeID, Role: enums.RoleCashier, PrimaryWarehouseID: &primary, IsActive: true},
		},
		warehouses: map[uuid.UUID]*models.Warehouse{primary: activeWarehouse(primary)},
	}
	r := newResolverWithRepo(t, repo)

	scope, err := r.Resolve(context.Background(), employeeID, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if scope.SelectedWarehouseID == nil || *scope.SelectedWarehouseID != primary {
		t.Fatalf("expected fallback to primary warehouse")
	}
	if scope.IsAdmin() {
		t.Fatal("cashier must not be admin")
	}
}

func TestResolveRejectsWarehouseOutsideScope(t *testing.T) {
	primary := uuid.New()
	other := uuid.New()
	employeeID := uuid.New()
	repo := &fakeRepository{
		employees: map[uuid.UUID]*models.Employee{
			employeeID: {ID: employeeID, Role: enums.RoleManager, PrimaryWarehouseID: &primary, IsActive: true},
		},
		warehouses: map[uuid.UUID]*models.Warehouse{
			primary: activeWarehouse(primary),
			other:   activeWarehouse(other),
		},
	}
	r := newResolverWithRepo(t, repo)

	_, err := r.Resolve(context.Background(), employeeID, &other)
	if err == nil {
		t.Fatal("expected forbidden error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestResolveAllowsAssignedWarehouse(t *testing.T) {
	primary := uuid.New()
	assigned := uuid.New()
	employeeID := uuid.New()
	repo := &fakeRepository{
		employees: map[uuid.UUID]*models.Employee{
			employeeID: {ID: employeeID, Role: enums.RoleManager, PrimaryWarehouseID: &primary, IsActive: true},
		},
		assignments: map[uuid.UUID][]uuid.UUID{employeeID: {assigned}},
		warehouses: map[uuid.UUID]*models.Warehouse{
			primary:  activeWarehouse(primary),
			assigned: activeWarehouse(assigned),
		},
	}
	r := newResolverWithRepo(t, repo)

	scope, err := r.Resolve(context.Background(), employeeID, &assigned)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if scope.SelectedWarehouseID == nil || *scope.SelectedWarehouseID != assigned {
		t.Fatal("expected assigned warehouse selection")
	}
}

func TestResolveAdminBypassesScoping(t *testing.T) {
	warehouseID := uuid.New()
	employeeID := uuid.New()
	repo := &fakeRepository{
		employees: map[uuid.UUID]*models.Employee{
			employeeID: {ID: employeeID, Role: enums.RoleAdmin, IsActive: true},
		},
		warehouses: map[uuid.UUID]*models.Warehouse{warehouseID: activeWarehouse(warehouseID)},
	}
	r := newResolverWithRepo(t, repo)

	scope, err := r.Resolve(context.Background(), employeeID, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if scope.SelectedWarehouseID != nil {
		t.Fatal("admin without selection reads across all warehouses")
	}
	if ids := scope.AccessibleWarehouseIDs(); ids != nil {
		t.Fatalf("admin scope set should be nil, got %v", ids)
	}
	if !scope.CanAccessWarehouse(warehouseID) {
		t.Fatal("admin must access any warehouse")
	}

	// Writes still need an explicit selection.
	if _, err := r.RequireWarehouse(scope); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	scope, err = r.Resolve(context.Background(), employeeID, &warehouseID)
	if err != nil {
		t.Fatalf("resolve with selection: %v", err)
	}
	target, err := r.RequireWarehouse(scope)
	if err != nil {
		t.Fatalf("require warehouse: %v", err)
	}
	if target != warehouseID {
		t.Fatalf("unexpected target %s", target)
	}
}

func TestResolveInactiveEmployee(t *testing.T) {
	employeeID := uuid.New()
	repo := &fakeRepository{
		employees: map[uuid.UUID]*models.Employee{
			employeeID: {ID: employeeID, Role: enums.RoleCashier, IsActive: false},
		},
	}
	r := newResolverWithRepo(t, repo)

	_, err := r.Resolve(context.Background(), employeeID, nil)
	if pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for deactivated employee, got %v", err)
	}
}

func TestResolveUnknownEmployee(t *testing.T) {
	repo := &fakeRepository{}
	r := newResolverWithRepo(t, repo)

	_, err := r.Resolve(context.Background(), uuid.New(), nil)
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPermissionTable(t *testing.T) {
	grants := []models.RoleGrant{
		{Role: enums.RoleCashier, Permissions: []string{PermInventoryRead, PermShiftsStart}},
		{Role: enums.RoleManager, Permissions: []string{PermInventoryRead, PermTransfersApprove}},
	}
	table := NewPermissionTable(grants)

	if !table.Allows(enums.RoleCashier, PermShiftsStart) {
		t.Fatal("cashier should start shifts")
	}
	if table.Allows(enums.RoleCashier, PermTransfersApprove) {
		t.Fatal("cashier must not approve transfers")
	}
	if table.Allows(enums.RoleAdmin, PermInventoryRead) {
		t.Fatal("unknown role has no grants until loaded")
	}

	table.Replace([]models.RoleGrant{
		{Role: enums.RoleAdmin, Permissions: []string{PermAlertsManage}},
	})
	if !table.Allows(enums.RoleAdmin, PermAlertsManage) {
		t.Fatal("replace should install new grants")
	}
	if table.Allows(enums.RoleCashier, PermInventoryRead) {
		t.Fatal("replace should drop old grants")
	}
}

func TestAccessibleWarehouseIDsDeduplicates(t *testing.T) {
	primary := uuid.New()
	assigned := uuid.New()
	scope := &ScopeContext{
		Role:                 enums.RoleManager,
		PrimaryWarehouseID:   &primary,
		AssignedWarehouseIDs: []uuid.UUID{primary, assigned},
	}
	ids := scope.AccessibleWarehouseIDs()
	if len(ids) != 2 {
		t.Fatalf("expected 2 unique warehouse ids, got %d", len(ids))
	}
}
