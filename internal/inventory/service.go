package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sahelretail/pos-backend/internal/access"
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

// AdjustStockInput describes one signed stock movement.
type AdjustStockInput struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	Type        enums.StockMovementType
	Quantity    int
	Reason      *string
	ReferenceID *uuid.UUID
}

// SetLevelsInput updates the reorder thresholds of one inventory row.
type SetLevelsInput struct {
	ProductID     uuid.UUID
	WarehouseID   uuid.UUID
	MinStockLevel int
	MaxStockLevel *int
}

// ListMovementsInput carries ledger filters plus cursor pagination.
type ListMovementsInput struct {
	WarehouseID *uuid.UUID
	ProductID   *uuid.UUID
	Type        *enums.StockMovementType
	From        *time.Time
	To          *time.Time
	Pagination  pagination.Params
}

// AdjustResult returns the updated row together with the ledger entry that
// recorded the change.
type AdjustResult struct {
	Inventory *models.Inventory
	Movement  *models.StockMovement
}

type Service interface {
	AdjustStock(ctx context.Context, scope *access.ScopeContext, input AdjustStockInput) (*AdjustResult, error)
	SetStockLevels(ctx context.Context, scope *access.ScopeContext, input SetLevelsInput) (*models.Inventory, error)
	ListStock(ctx context.Context, scope *access.ScopeContext, params pagination.Params) ([]StockRow, *pagination.Cursor, error)
	GetLowStock(ctx context.Context, scope *access.ScopeContext) ([]StockRowWithWarehouse, error)
	ListMovements(ctx context.Context, scope *access.ScopeContext, input ListMovementsInput) ([]models.StockMovement, *pagination.Cursor, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	outbox   outboxPublisher
	resolver access.Resolver
	logg     *logger.Logger
}

func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, resolver access.Resolver, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "inventory repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if outboxSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox publisher required")
	}
	if resolver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "access resolver required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		outbox:   outboxSvc,
		resolver: resolver,
		logg:     logg,
	}, nil
}

// AdjustStock applies a signed quantity delta to one (product, warehouse)
// pair and appends the matching ledger entry. The inventory row is created
// lazily on the first movement; the resulting balance can never go negative.
func (s *service) AdjustStock(ctx context.Context, scope *access.ScopeContext, input AdjustStockInput) (*AdjustResult, error) {
	if scope == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}
	if input.Quantity == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-zero")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid movement type")
	}
	if input.Type == enums.MovementTransfer {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer movements are recorded by the transfer workflow")
	}
	if input.WarehouseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse id required")
	}
	if !scope.CanAccessWarehouse(input.WarehouseID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "warehouse outside actor scope")
	}

	product, err := s.repo.GetProduct(ctx, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	result := &AdjustResult{}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		row, err := repo.Get(ctx, input.ProductID, input.WarehouseID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory row")
		}
		if row == nil {
			row = &models.Inventory{
				ProductID:   input.ProductID,
				WarehouseID: input.WarehouseID,
			}
			if err := repo.Create(ctx, row); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory row")
			}
		}

		var restockedAt *time.Time
		if input.Quantity > 0 {
			now := time.Now()
			restockedAt = &now
		}
		applied, err := repo.ApplyDelta(ctx, row.ID, input.Quantity, restockedAt)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply stock delta")
		}
		if !applied {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "adjustment would drive stock negative").
				WithDetails(map[string]any{
					"product_id": input.ProductID.String(),
					"on_hand":    row.Quantity,
					"requested":  input.Quantity,
				})
		}

		row, err = repo.GetByID(ctx, row.ID)
		if err != nil || row == nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload inventory row")
		}
		balance := row.Quantity

		movement := &models.StockMovement{
			ProductID:   input.ProductID,
			WarehouseID: input.WarehouseID,
			Type:        input.Type,
			Quantity:    input.Quantity,
			Balance:     balance,
			Reason:      input.Reason,
			ReferenceID: input.ReferenceID,
			EmployeeID:  scope.EmployeeID,
		}
		if err := repo.InsertMovement(ctx, movement); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert stock movement")
		}

		if input.Quantity < 0 {
			reason := ""
			if input.Reason != nil {
				reason = *input.Reason
			}
			event := outbox.DomainEvent{
				EventType:     enums.EventStockReduced,
				AggregateType: enums.AggregateInventory,
				AggregateID:   row.ID,
				Actor:         actorRef(scope),
				Data: payloads.StockReducedEvent{
					ProductID:   product.ID,
					ProductName: product.Name,
					WarehouseID: input.WarehouseID,
					Quantity:    -input.Quantity,
					Balance:     balance,
					Reason:      reason,
				},
				Version: 1,
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue stock reduced event")
			}
		}

		result.Inventory = row
		result.Movement = movement
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"product_id":   input.ProductID.String(),
		"warehouse_id": input.WarehouseID.String(),
		"delta":        input.Quantity,
		"balance":      result.Inventory.Quantity,
	})
	s.logg.Info(logCtx, "stock adjusted")
	return result, nil
}

// SetStockLevels updates reorder thresholds, creating the inventory row when
// the product has never moved in this warehouse.
func (s *service) SetStockLevels(ctx context.Context, scope *access.ScopeContext, input SetLevelsInput) (*models.Inventory, error) {
	if scope == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}
	if input.MinStockLevel < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min stock level cannot be negative")
	}
	if input.MaxStockLevel != nil && *input.MaxStockLevel < input.MinStockLevel {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max stock level below min stock level")
	}
	if !scope.CanAccessWarehouse(input.WarehouseID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "warehouse outside actor scope")
	}

	product, err := s.repo.GetProduct(ctx, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	var updated *models.Inventory
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.Get(ctx, input.ProductID, input.WarehouseID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory row")
		}
		if row == nil {
			row = &models.Inventory{
				ProductID:   input.ProductID,
				WarehouseID: input.WarehouseID,
			}
			if err := repo.Create(ctx, row); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory row")
			}
		}
		row.MinStockLevel = input.MinStockLevel
		row.MaxStockLevel = input.MaxStockLevel
		if err := repo.Save(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save inventory row")
		}
		updated = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListStock pages the catalog with the selected warehouse's quantities.
func (s *service) ListStock(ctx context.Context, scope *access.ScopeContext, params pagination.Params) ([]StockRow, *pagination.Cursor, error) {
	if scope == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}
	warehouseID, err := s.resolver.RequireWarehouse(scope)
	if err != nil {
		return nil, nil, err
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListStock(ctx, warehouseID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock")
	}

	var next *pagination.Cursor
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ProductID}
	}
	return rows, next, nil
}

// GetLowStock returns rows at or below their reorder threshold across every
// warehouse the actor can see, most depleted first.
func (s *service) GetLowStock(ctx context.Context, scope *access.ScopeContext) ([]StockRowWithWarehouse, error) {
	if scope == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}

	warehouseIDs := scope.AccessibleWarehouseIDs()
	if scope.SelectedWarehouseID != nil {
		warehouseIDs = []uuid.UUID{*scope.SelectedWarehouseID}
	}
	if !scope.IsAdmin() && len(warehouseIDs) == 0 {
		return []StockRowWithWarehouse{}, nil
	}

	rows, err := s.repo.ListLowStock(ctx, warehouseIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock")
	}
	return rows, nil
}

// ListMovements pages the immutable ledger with optional filters.
func (s *service) ListMovements(ctx context.Context, scope *access.ScopeContext, input ListMovementsInput) ([]models.StockMovement, *pagination.Cursor, error) {
	if scope == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}

	filter := MovementFilter{
		ProductID: input.ProductID,
		Type:      input.Type,
		From:      input.From,
		To:        input.To,
	}
	switch {
	case input.WarehouseID != nil:
		if !scope.CanAccessWarehouse(*input.WarehouseID) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "warehouse outside actor scope")
		}
		filter.WarehouseIDs = []uuid.UUID{*input.WarehouseID}
	case scope.SelectedWarehouseID != nil:
		filter.WarehouseIDs = []uuid.UUID{*scope.SelectedWarehouseID}
	default:
		filter.WarehouseIDs = scope.AccessibleWarehouseIDs()
		if !scope.IsAdmin() && len(filter.WarehouseIDs) == 0 {
			return []models.StockMovement{}, nil, nil
		}
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Pagination.Limit)

	movements, err := s.repo.ListMovements(ctx, filter, cursor, pagination.LimitWithBuffer(input.Pagination.Limit))
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock movements")
	}

	var next *pagination.Cursor
	if len(movements) > limit {
		movements = movements[:limit]
		last := movements[len(movements)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return movements, next, nil
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
