package employees

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sahelretail/pos-backend/internal/access"
	"github.com/sahelretail/pos-backend/pkg/config"
	dbpkg "github.com/sahelretail/pos-backend/pkg/db"
	"github.com/sahelretail/pos-backend/pkg/db/models"
	"github.com/sahelretail/pos-backend/pkg/enums"
	pkgerrors "github.com/sahelretail/pos-backend/pkg/errors"
	"github.com/sahelretail/pos-backend/pkg/logger"
	"github.com/sahelretail/pos-backend/pkg/outbox"
	"github.com/sahelretail/pos-backend/pkg/outbox/payloads"
	"github.com/sahelretail/pos-backend/pkg/security"
)

const tempPINLength = 6

// Phone numbers are stored in E.164-ish form: optional +, digits only.
var phonePattern = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CreateInput describes a new staff account. When PIN is empty a temporary
// one is generated and returned once in CreateResult.
type CreateInput struct {
	FullName           string
	Phone              string
	Role               enums.Role
	PrimaryWarehouseID *uuid.UUID
	PIN                string
}

// CreateResult carries the stored employee plus the temporary PIN when the
// service generated one.
type CreateResult struct {
	Employee *models.Employee
	TempPIN  string
}

type Service interface {
	Create(ctx context.Context, scope *access.ScopeContext, input CreateInput) (*CreateResult, error)
	Get(ctx context.Context, scope *access.ScopeContext, id uuid.UUID) (*models.Employee, error)
	List(ctx context.Context, scope *access.ScopeContext) ([]models.Employee, error)
	Deactivate(ctx context.Context, scope *access.ScopeContext, id uuid.UUID) error
	AssignWarehouse(ctx context.Context, scope *access.ScopeContext, employeeID, warehouseID uuid.UUID) error
	UnassignWarehouse(ctx context.Context, scope *access.ScopeContext, employeeID, warehouseID uuid.UUID) error
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	pinCfg config.PINConfig
	logg   *logger.Logger
}

func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, pinCfg config.PINConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "employee repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if outboxSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox publisher required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: outboxSvc,
		pinCfg: pinCfg,
		logg:   logg,
	}, nil
}

func (s *service) Create(ctx context.Context, scope *access.ScopeContext, input CreateInput) (*CreateResult, error) {
	if scope == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}
	if !scope.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins manage employees")
	}

	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name is required")
	}
	phone := normalizePhone(input.Phone)
	if !phonePattern.MatchString(phone) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid phone number")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if input.Role != enums.RoleAdmin && input.PrimaryWarehouseID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "primary warehouse is required for non-admin roles")
	}
	if input.PrimaryWarehouseID != nil {
		warehouse, err := s.repo.GetWarehouse(ctx, *input.PrimaryWarehouseID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load warehouse")
		}
		if warehouse == nil || !warehouse.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found or inactive")
		}
	}

	pin := input.PIN
	tempPIN := ""
	if pin == "" {
		generated, err := security.GenerateTempPIN(tempPINLength)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate pin")
		}
		pin = generated
		tempPIN = generated
	}
	pinHash, err := security.HashPIN(pin, s.pinCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash pin")
	}

	employee := &models.Employee{
		FullName:           fullName,
		Phone:              phone,
		PINHash:            pinHash,
		Role:               input.Role,
		PrimaryWarehouseID: input.PrimaryWarehouseID,
		IsActive:           true,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, employee); err != nil {
			if dbpkg.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "phone number already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create employee")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventEmployeeCreated,
			AggregateType: enums.AggregateEmployee,
			AggregateID:   employee.ID,
			Actor:         actorRef(scope),
			Data: payloads.EmployeeCreatedEvent{
				EmployeeID: employee.ID,
				FullName:   employee.FullName,
				Role:       employee.Role,
			},
			Version: 1,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue employee created event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"employee_id": employee.ID.String(),
		"role":        employee.Role,
	})
	s.logg.Info(logCtx, "employee created")
	return &CreateResult{Employee: employee, TempPIN: tempPIN}, nil
}

func (s *service) Get(ctx context.Context, scope *access.ScopeContext, id uuid.UUID) (*models.Employee, error) {
	if scope == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}
	if !scope.IsAdmin() && scope.EmployeeID != id {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view other employees")
	}
	employee, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load employee")
	}
	if employee == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
	}
	return employee, nil
}

func (s *service) List(ctx context.Context, scope *access.ScopeContext) ([]models.Employee, error) {
	if scope == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}
	if !scope.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins manage employees")
	}
	employees, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list employees")
	}
	return employees, nil
}

func (s *service) Deactivate(ctx context.Context, scope *access.ScopeContext, id uuid.UUID) error {
	if scope == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}
	if !scope.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins manage employees")
	}
	if scope.EmployeeID == id {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot deactivate your own account")
	}
	employee, err := s.repo.Get(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load employee")
	}
	if employee == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
	}
	deactivated, err := s.repo.SetActive(ctx, id, false)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate employee")
	}
	if deactivated {
		logCtx := s.logg.WithField(ctx, "employee_id", id.String())
		s.logg.Info(logCtx, "employee deactivated")
	}
	return nil
}

func (s *service) AssignWarehouse(ctx context.Context, scope *access.ScopeContext, employeeID, warehouseID uuid.UUID) error {
	if scope == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}
	if !scope.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins manage assignments")
	}
	employee, err := s.repo.Get(ctx, employeeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load employee")
	}
	if employee == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
	}
	warehouse, err := s.repo.GetWarehouse(ctx, warehouseID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load warehouse")
	}
	if warehouse == nil || !warehouse.IsActive {
		return pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found or inactive")
	}
	if err := s.repo.AddAssignment(ctx, employeeID, warehouseID); err != nil {
		// Re-assigning an already granted warehouse is a no-op.
		if dbpkg.IsUniqueViolation(err, "ux_assignment_employee_warehouse") {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add assignment")
	}
	return nil
}

func (s *service) UnassignWarehouse(ctx context.Context, scope *access.ScopeContext, employeeID, warehouseID uuid.UUID) error {
	if scope == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}
	if !scope.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins manage assignments")
	}
	removed, err := s.repo.RemoveAssignment(ctx, employeeID, warehouseID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove assignment")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
	}
	return nil
}

func normalizePhone(phone string) string {
	trimmed := strings.TrimSpace(phone)
	return strings.ReplaceAll(trimmed, " ", "")
}

func actorRef(scope *access.ScopeContext) *outbox.ActorRef {
	if scope == nil {
		return nil
	}
	return &outbox.ActorRef{
		EmployeeID:  scope.EmployeeID,
		WarehouseID: scope.SelectedWarehouseID,
		Role:        string(scope.Role),
	}
}
