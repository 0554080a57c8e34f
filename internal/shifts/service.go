package shifts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sahelretail/pos-backend/internal/access"
	dbpkg "github.com/sahelretail/pos-backend/pkg/db"
	"github.com/sahelretail/pos-backend/pkg/db/models"
	"github.com/sahelretail/pos-backend/pkg/enums"
	pkgerrors "github.com/sahelretail/pos-backend/pkg/errors"
	"github.com/sahelretail/pos-backend/pkg/logger"
	"github.com/sahelretail/pos-backend/pkg/outbox"
	"github.com/sahelretail/pos-backend/pkg/outbox/payloads"
	"github.com/sahelretail/pos-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// StartInput opens a cash session. WarehouseID may stay empty when the
// actor's resolved scope already selected one.
type StartInput struct {
	WarehouseID *uuid.UUID
	OpeningCash decimal.Decimal
}

// EndInput closes the actor's open shift with the declared drawer count.
type EndInput struct {
	ClosingCash decimal.Decimal
	Notes       *string
}

// ListInput carries shift list filters plus cursor pagination.
type ListInput struct {
	WarehouseID *uuid.UUID
	Status      *enums.ShiftStatus
	Pagination  pagination.Params
}

type Service interface {
	Start(ctx context.Context, scope *access.ScopeContext, input StartInput) (*models.Shift, error)
	End(ctx context.Context, scope *access.ScopeContext, input EndInput) (*models.Shift, error)
	Current(ctx context.Context, scope *access.ScopeContext) (*models.Shift, error)
	Get(ctx context.Context, scope *access.ScopeContext, id uuid.UUID) (*models.Shift, error)
	List(ctx context.Context, scope *access.ScopeContext, input ListInput) ([]models.Shift, *pagination.Cursor, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	logg   *logger.Logger
}

func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shift repository required")
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
		logg:   logg,
	}, nil
}

// Start opens a shift. One open shift per employee; the partial unique index
// on (employee_id) WHERE status = 'open' backs the in-transaction check
// against racing callers.
func (s *service) Start(ctx context.Context, scope *access.ScopeContext, input StartInput) (*models.Shift, error) {
	if scope == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}
	if input.OpeningCash.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "opening cash cannot be negative")
	}

	warehouseID := uuid.Nil
	switch {
	case input.WarehouseID != nil:
		warehouseID = *input.WarehouseID
	case scope.SelectedWarehouseID != nil:
		warehouseID = *scope.SelectedWarehouseID
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse selection required")
	}
	if !scope.CanAccessWarehouse(warehouseID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "warehouse outside actor scope")
	}

	warehouse, err := s.repo.GetActiveWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load warehouse")
	}
	if warehouse == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found or inactive")
	}

	shift := &models.Shift{
		EmployeeID:  scope.EmployeeID,
		WarehouseID: warehouseID,
		Status:      enums.ShiftStatusOpen,
		OpeningCash: input.OpeningCash,
		StartedAt:   time.Now(),
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		open, err := repo.GetOpenByEmployee(ctx, scope.EmployeeID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check open shift")
		}
		if open != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "employee already has an open shift").
				WithDetails(map[string]any{"shift_id": open.ID.String()})
		}
		if err := repo.Create(ctx, shift); err != nil {
			if dbpkg.IsUniqueViolation(err, "ux_shifts_open_per_employee") {
				return pkgerrors.New(pkgerrors.CodeConflict, "employee already has an open shift")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shift")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"shift_id":     shift.ID.String(),
		"warehouse_id": warehouseID.String(),
	})
	s.logg.Info(logCtx, "shift started")
	return shift, nil
}

// End closes the actor's open shift: sums the session's sales, computes the
// expected drawer and the difference against the declared count, and
// snapshots everything onto the shift row.
func (s *service) End(ctx context.Context, scope *access.ScopeContext, input EndInput) (*models.Shift, error) {
	if scope == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}
	if input.ClosingCash.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "closing cash cannot be negative")
	}

	shift, err := s.repo.GetOpenByEmployee(ctx, scope.EmployeeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load open shift")
	}
	if shift == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no open shift")
	}

	now := time.Now()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		stats, err := repo.Stats(ctx, shift.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum shift sales")
		}

		expectedCash := shift.OpeningCash.Add(stats.CashTotal)
		cashDifference := input.ClosingCash.Sub(expectedCash)
		netTotal := stats.TotalSales.Sub(stats.RefundTotal)

		closed, err := repo.Close(ctx, shift.ID, map[string]any{
			"closing_cash":       input.ClosingCash,
			"expected_cash":      expectedCash,
			"cash_difference":    cashDifference,
			"sales_count":        stats.SalesCount,
			"total_sales":        stats.TotalSales,
			"cash_total":         stats.CashTotal,
			"mobile_money_total": stats.MobileMoneyTotal,
			"refund_count":       stats.RefundCount,
			"refund_total":       stats.RefundTotal,
			"net_total":          netTotal,
			"notes":              input.Notes,
			"ended_at":           now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close shift")
		}
		if !closed {
			return pkgerrors.New(pkgerrors.CodeConflict, "shift already closed")
		}

		shift.Status = enums.ShiftStatusClosed
		shift.ClosingCash = &input.ClosingCash
		shift.ExpectedCash = &expectedCash
		shift.CashDifference = &cashDifference
		shift.SalesCount = stats.SalesCount
		shift.TotalSales = stats.TotalSales
		shift.CashTotal = stats.CashTotal
		shift.MobileMoneyTotal = stats.MobileMoneyTotal
		shift.RefundCount = stats.RefundCount
		shift.RefundTotal = stats.RefundTotal
		shift.NetTotal = netTotal
		shift.Notes = input.Notes
		shift.EndedAt = &now

		event := outbox.DomainEvent{
			EventType:     enums.EventShiftClosed,
			AggregateType: enums.AggregateShift,
			AggregateID:   shift.ID,
			Actor:         actorRef(scope),
			Data: payloads.ShiftClosedEvent{
				ShiftID:        shift.ID,
				EmployeeID:     shift.EmployeeID,
				WarehouseID:    shift.WarehouseID,
				ExpectedCash:   expectedCash,
				ClosingCash:    input.ClosingCash,
				CashDifference: cashDifference,
				EndedAt:        now,
			},
			Version: 1,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue shift closed event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"shift_id":        shift.ID.String(),
		"cash_difference": shift.CashDifference,
	})
	s.logg.Info(logCtx, "shift closed")
	return shift, nil
}

func (s *service) Current(ctx context.Context, scope *access.ScopeContext) (*models.Shift, error) {
	if scope == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}
	shift, err := s.repo.GetOpenByEmployee(ctx, scope.EmployeeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load open shift")
	}
	if shift == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no open shift")
	}
	return shift, nil
}

func (s *service) Get(ctx context.Context, scope *access.ScopeContext, id uuid.UUID) (*models.Shift, error) {
	if scope == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}
	shift, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shift")
	}
	if shift == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shift not found")
	}
	if !scope.IsAdmin() && shift.EmployeeID != scope.EmployeeID && !scope.CanAccessWarehouse(shift.WarehouseID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "shift outside actor scope")
	}
	return shift, nil
}

// List pages shifts. Cashiers see their own sessions, managers the sessions
// of their warehouses, admins everything.
func (s *service) List(ctx context.Context, scope *access.ScopeContext, input ListInput) ([]models.Shift, *pagination.Cursor, error) {
	if scope == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}

	filter := ListFilter{Status: input.Status}
	switch scope.Role {
	case enums.RoleAdmin:
		if input.WarehouseID != nil {
			filter.WarehouseIDs = []uuid.UUID{*input.WarehouseID}
		}
	case enums.RoleManager:
		if input.WarehouseID != nil {
			if !scope.CanAccessWarehouse(*input.WarehouseID) {
				return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "warehouse outside actor scope")
			}
			filter.WarehouseIDs = []uuid.UUID{*input.WarehouseID}
		} else {
			filter.WarehouseIDs = scope.AccessibleWarehouseIDs()
			if len(filter.WarehouseIDs) == 0 {
				return []models.Shift{}, nil, nil
			}
		}
	default:
		id := scope.EmployeeID
		filter.EmployeeID = &id
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Pagination.Limit)

	shifts, err := s.repo.List(ctx, filter, cursor, pagination.LimitWithBuffer(input.Pagination.Limit))
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shifts")
	}

	var next *pagination.Cursor
	if len(shifts) > limit {
		shifts = shifts[:limit]
		last := shifts[len(shifts)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return shifts, next, nil
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
