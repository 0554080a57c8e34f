package employees

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sahelretail/pos-backend/internal/access"
	"github.com/sahelretail/pos-backend/pkg/config"
	"github.com/sahelretail/pos-backend/pkg/db/models"
	"github.com/sahelretail/pos-backend/pkg/enums"
	pkgerrors "github.com/sahelretail/pos-backend/pkg/errors"
	"github.com/sahelretail/pos-backend/pkg/logger"
	"github.com/sahelretail/pos-backend/pkg/outbox"
	"github.com/sahelretail/pos-backend/pkg/outbox/payloads"
	"github.com/sahelretail/pos-backend/pkg/security"
)

type fakeEmployeeRepo struct {
	employees   map[uuid.UUID]*models.Employee
	warehouses  map[uuid.UUID]*models.Warehouse
	assignments map[string]bool
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{
		employees:   map[uuid.UUID]*models.Employee{},
		warehouses:  map[uuid.UUID]*models.Warehouse{},
		assignments: map[string]bool{},
	}
}

func (f *fakeEmployeeRepo) WithTx(*gorm.DB) Repository { return f }

func (f *fakeEmployeeRepo) Create(_ context.Context, employee *models.Employee) error {
	for _, existing := range f.employees {
		if existing.Phone == employee.Phone {
			return errors.New(`duplicate key value violates unique constraint "employees_phone_key"`)
		}
	}
	if employee.ID == uuid.Nil {
		employee.ID = uuid.New()
	}
	copied := *employee
	f.employees[employee.ID] = &copied
	return nil
}

func (f *fakeEmployeeRepo) Get(_ context.Context, id uuid.UUID) (*models.Employee, error) {
	employee, ok := f.employees[id]
	if !ok {
		return nil, nil
	}
	copied := *employee
	return &copied, nil
}

func (f *fakeEmployeeRepo) FindByPhone(_ context.Context, phone string) (*models.Employee, error) {
	for _, employee := range f.employees {
		if employee.Phone == phone {
			copied := *employee
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeEmployeeRepo) List(context.Context) ([]models.Employee, error) {
	var out []models.Employee
	for _, employee := range f.employees {
		out = append(out, *employee)
	}
	return out, nil
}

func (f *fakeEmployeeRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if employee, ok := f.employees[id]; ok {
		employee.LastLoginAt = &at
	}
	return nil
}

func (f *fakeEmployeeRepo) SetActive(_ context.Context, id uuid.UUID, active bool) (bool, error) {
	employee, ok := f.employees[id]
	if !ok || employee.IsActive == active {
		return false, nil
	}
	employee.IsActive = active
	return true, nil
}

func (f *fakeEmployeeRepo) GetWarehouse(_ context.Context, id uuid.UUID) (*models.Warehouse, error) {
	warehouse, ok := f.warehouses[id]
	if !ok {
		return nil, nil
	}
	return warehouse, nil
}

func (f *fakeEmployeeRepo) AddAssignment(_ context.Context, employeeID, warehouseID uuid.UUID) error {
	key := employeeID.String() + "/" + warehouseID.String()
	if f.assignments[key] {
		return errors.New(`duplicate key value violates unique constraint "ux_assignment_employee_warehouse"`)
	}
	f.assignments[key] = true
	return nil
}

func (f *fakeEmployeeRepo) RemoveAssignment(_ context.Context, employeeID, warehouseID uuid.UUID) (bool, error) {
	key := employeeID.String() + "/" + warehouseID.String()
	if !f.assignments[key] {
		return false, nil
	}
	delete(f.assignments, key)
	return true, nil
}

func (f *fakeEmployeeRepo) ListAssignments(context.Context, uuid.UUID) ([]models.WarehouseAssignment, error) {
	return nil, nil
}

type passTx struct{}

func (passTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeOutbox struct {
	events []outbox.DomainEvent
}

func (f *fakeOutbox) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

func newEmployeeService(t *testing.T, repo Repository, sink *fakeOutbox) Service {
	t.Helper()

	svc, err := NewService(repo, passTx{}, sink, config.PINConfig{}, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func adminScope() *access.ScopeContext {
	return &access.ScopeContext{EmployeeID: uuid.New(), Role: enums.RoleAdmin}
}

func seedWarehouse(repo *fakeEmployeeRepo, active bool) uuid.UUID {
	id := uuid.New()
	repo.warehouses[id] = &models.Warehouse{ID: id, Name: "Marché Central", Type: enums.WarehouseTypeBoutique, IsActive: active}
	return id
}

func TestCreateEmployeeGeneratesTempPIN(t *testing.T) {
	repo := newFakeEmployeeRepo()
	warehouseID := seedWarehouse(repo, true)
	sink := &fakeOutbox{}
	svc := newEmployeeService(t, repo, sink)

	result, err := svc.Create(context.Background(), adminScope(), CreateInput{
		FullName:           "Awa Diop",
		Phone:              "+221771234567",
		Role:               enums.RoleCashier,
		PrimaryWarehouseID: &warehouseID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if result.TempPIN == "" {
		t.Fatal("expected a generated temporary pin")
	}
	if len(result.TempPIN) != tempPINLength {
		t.Fatalf("unexpected pin length %d", len(result.TempPIN))
	}

	match, err := security.VerifyPIN(result.TempPIN, result.Employee.PINHash)
	if err != nil {
		t.Fatalf("VerifyPIN: %v", err)
	}
	if !match {
		t.Fatal("stored hash does not match the temporary pin")
	}

	if len(sink.events) != 1 {
		t.Fatalf("expected one event, got %d", len(sink.events))
	}
	event := sink.events[0]
	if event.EventType != enums.EventEmployeeCreated {
		t.Fatalf("unexpected event type %s", event.EventType)
	}
	payload, ok := event.Data.(payloads.EmployeeCreatedEvent)
	if !ok {
		t.Fatalf("unexpected payload %T", event.Data)
	}
	if payload.FullName != "Awa Diop" || payload.Role != enums.RoleCashier {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestCreateEmployeeForbiddenForManagers(t *testing.T) {
	repo := newFakeEmployeeRepo()
	svc := newEmployeeService(t, repo, &fakeOutbox{})

	warehouseID := uuid.New()
	scope := &access.ScopeContext{EmployeeID: uuid.New(), Role: enums.RoleManager, PrimaryWarehouseID: &warehouseID}
	_, err := svc.Create(context.Background(), scope, CreateInput{
		FullName: "Moussa Ba",
		Phone:    "+221770000001",
		Role:     enums.RoleCashier,
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreateEmployeeValidation(t *testing.T) {
	repo := newFakeEmployeeRepo()
	warehouseID := seedWarehouse(repo, true)
	svc := newEmployeeService(t, repo, &fakeOutbox{})

	cases := []struct {
		name  string
		input CreateInput
	}{
		{"empty name", CreateInput{Phone: "+221771234567", Role: enums.RoleCashier, PrimaryWarehouseID: &warehouseID}},
		{"bad phone", CreateInput{FullName: "Awa", Phone: "not-a-phone", Role: enums.RoleCashier, PrimaryWarehouseID: &warehouseID}},
		{"bad role", CreateInput{FullName: "Awa", Phone: "+221771234567", Role: enums.Role("owner"), PrimaryWarehouseID: &warehouseID}},
		{"cashier without warehouse", CreateInput{FullName: "Awa", Phone: "+221771234567", Role: enums.RoleCashier}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), adminScope(), tc.input)
			if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateEmployeeDuplicatePhone(t *testing.T) {
	repo := newFakeEmployeeRepo()
	warehouseID := seedWarehouse(repo, true)
	svc := newEmployeeService(t, repo, &fakeOutbox{})

	input := CreateInput{
		FullName:           "Awa Diop",
		Phone:              "+221771234567",
		Role:               enums.RoleCashier,
		PrimaryWarehouseID: &warehouseID,
	}
	if _, err := svc.Create(context.Background(), adminScope(), input); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := svc.Create(context.Background(), adminScope(), input)
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDeactivateEmployee(t *testing.T) {
	repo := newFakeEmployeeRepo()
	svc := newEmployeeService(t, repo, &fakeOutbox{})
	scope := adminScope()

	target := &models.Employee{ID: uuid.New(), FullName: "Moussa Ba", Phone: "+221770000002", Role: enums.RoleCashier, IsActive: true}
	repo.employees[target.ID] = target

	if err := svc.Deactivate(context.Background(), scope, target.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if repo.employees[target.ID].IsActive {
		t.Fatal("expected employee deactivated")
	}

	if err := svc.Deactivate(context.Background(), scope, scope.EmployeeID); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected self-deactivation rejected, got %v", err)
	}
}

func TestAssignWarehouseIsIdempotent(t *testing.T) {
	repo := newFakeEmployeeRepo()
	warehouseID := seedWarehouse(repo, true)
	svc := newEmployeeService(t, repo, &fakeOutbox{})

	employee := &models.Employee{ID: uuid.New(), FullName: "Awa", Phone: "+221770000003", Role: enums.RoleCashier, IsActive: true}
	repo.employees[employee.ID] = employee

	if err := svc.AssignWarehouse(context.Background(), adminScope(), employee.ID, warehouseID); err != nil {
		t.Fatalf("AssignWarehouse: %v", err)
	}
	if err := svc.AssignWarehouse(context.Background(), adminScope(), employee.ID, warehouseID); err != nil {
		t.Fatalf("AssignWarehouse twice: %v", err)
	}

	if err := svc.UnassignWarehouse(context.Background(), adminScope(), employee.ID, warehouseID); err != nil {
		t.Fatalf("UnassignWarehouse: %v", err)
	}
	err := svc.UnassignWarehouse(context.Background(), adminScope(), employee.ID, warehouseID)
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAssignWarehouseInactiveWarehouse(t *testing.T) {
	repo := newFakeEmployeeRepo()
	warehouseID := seedWarehouse(repo, false)
	svc := newEmployeeService(t, repo, &fakeOutbox{})

	employee := &models.Employee{ID: uuid.New(), FullName: "Awa", Phone: "+221770000004", Role: enums.RoleCashier, IsActive: true}
	repo.employees[employee.ID] = employee

	err := svc.AssignWarehouse(context.Background(), adminScope(), employee.ID, warehouseID)
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
