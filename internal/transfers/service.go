package transfers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sahelretail/pos-backend/internal/access"
	"github.com/sahelretail/pos-backend/internal/inventory"
	"github.com/sahelretail/pos-backend/pkg/db/models"
	"github.com/sahelretail/pos-backend/pkg/enums"
	pkgerrors "github.com/sahelretail/pos-backend/pkg/errors"
	"github.com/sahelretail/pos-backend/pkg/logger"
	"github.com/sahelretail/pos-backend/pkg/outbox"
	"github.com/sahelretail/pos-backend/pkg/outbox/payloads"
	"github.com/sahelretail/pos-backend/pkg/pagination"
)

const (
	reasonTransferOut = "transfer-out"
	reasonTransferIn  = "transfer-in"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CreateInput opens a new transfer request. Quantity may stay empty; the
// approving manager sets the final amount either way.
type CreateInput struct {
	ProductID         uuid.UUID
	SourceWarehouseID uuid.UUID
	DestWarehouseID   uuid.UUID
	Quantity          *int
	Notes             *string
}

// DecideInput resolves a pending request. Quantity is required when
// approving and overrides whatever the requester proposed.
type DecideInput struct {
	Decision enums.TransferStatus
	Quantity *int
	Reason   *string
}

// ListInput carries list filters plus cursor pagination.
type ListInput struct {
	Status     *enums.TransferStatus
	ProductID  *uuid.UUID
	Pagination pagination.Params
}

type Service interface {
	Create(ctx context.Context, scope *access.ScopeContext, input CreateInput) (*models.TransferRequest, error)
	Decide(ctx context.Context, scope *access.ScopeContext, id uuid.UUID, input DecideInput) (*models.TransferRequest, error)
	Receive(ctx context.Context, scope *access.ScopeContext, id uuid.UUID) (*models.TransferRequest, error)
	Get(ctx context.Context, scope *access.ScopeContext, id uuid.UUID) (*models.TransferRequest, error)
	List(ctx context.Context, scope *access.ScopeContext, input ListInput) ([]models.TransferRequest, *pagination.Cursor, error)
}

type service struct {
	repo    Repository
	invRepo inventory.Repository
	tx      txRunner
	outbox  outboxPublisher
	logg    *logger.Logger
}

func NewService(repo Repository, invRepo inventory.Repository, tx txRunner, outboxSvc outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transfer repository required")
	}
	if invRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "inventory repository required")
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
		repo:    repo,
		invRepo: invRepo,
		tx:      tx,
		outbox:  outboxSvc,
		logg:    logg,
	}, nil
}

// Create opens a pending request. The requester must have access to the
// source warehouse, since that is where stock will leave from.
func (s *service) Create(ctx context.Context, scope *access.ScopeContext, input CreateInput) (*models.TransferRequest, error) {
	if scope == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}
	if input.SourceWarehouseID == uuid.Nil || input.DestWarehouseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "source and destination warehouses required")
	}
	if input.SourceWarehouseID == input.DestWarehouseID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "source and destination must differ")
	}
	if input.Quantity != nil && *input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if !scope.CanAccessWarehouse(input.SourceWarehouseID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "source warehouse outside actor scope")
	}

	product, err := s.invRepo.GetProduct(ctx, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	request := &models.TransferRequest{
		ProductID:         input.ProductID,
		SourceWarehouseID: input.SourceWarehouseID,
		DestWarehouseID:   input.DestWarehouseID,
		Quantity:          input.Quantity,
		Status:            enums.TransferStatusPending,
		RequestedByID:     scope.EmployeeID,
		Notes:             input.Notes,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create transfer request")
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventTransferRequested,
			AggregateType: enums.AggregateTransferRequest,
			AggregateID:   request.ID,
			Actor:         actorRef(scope),
			Data: payloads.TransferRequestedEvent{
				TransferID:        request.ID,
				ProductID:         product.ID,
				ProductName:       product.Name,
				SourceWarehouseID: request.SourceWarehouseID,
				DestWarehouseID:   request.DestWarehouseID,
				Quantity:          request.Quantity,
			},
			Version: 1,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue transfer requested event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"transfer_id": request.ID.String(),
		"product_id":  request.ProductID.String(),
	})
	s.logg.Info(logCtx, "transfer request created")
	return request, nil
}

// Decide approves or rejects a pending request. Approval carries the
// authoritative quantity and validates it against the source warehouse's
// on-hand stock; no stock moves until the destination confirms receipt.
func (s *service) Decide(ctx context.Context, scope *access.ScopeContext, id uuid.UUID, input DecideInput) (*models.TransferRequest, error) {
	if scope == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}
	if input.Decision != enums.TransferStatusApproved && input.Decision != enums.TransferStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be approved or rejected")
	}

	request, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transfer request")
	}
	if request == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transfer request not found")
	}
	if request.Status != enums.TransferStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "transfer request already decided").
			WithDetails(map[string]any{"status": request.Status})
	}
	if !scope.CanAccessWarehouse(request.SourceWarehouseID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "source warehouse outside actor scope")
	}

	product, err := s.invRepo.GetProduct(ctx, request.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	now := time.Now()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var updates map[string]any
		if input.Decision == enums.TransferStatusApproved {
			quantity := request.Quantity
			if input.Quantity != nil {
				quantity = input.Quantity
			}
			if quantity == nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "quantity required to approve")
			}
			if *quantity <= 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
			}

			onHand := 0
			row, err := s.invRepo.WithTx(tx).Get(ctx, request.ProductID, request.SourceWarehouseID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load source inventory")
			}
			if row != nil {
				onHand = row.Quantity
			}
			if *quantity > onHand {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock, "quantity exceeds source stock").
					WithDetails(map[string]any{"on_hand": onHand, "requested": *quantity})
			}

			request.Quantity = quantity
			request.ApprovedByID = &scope.EmployeeID
			request.ApprovedAt = &now
			request.Status = enums.TransferStatusApproved
			updates = map[string]any{
				"quantity":       *quantity,
				"status":         enums.TransferStatusApproved,
				"approved_by_id": scope.EmployeeID,
				"approved_at":    now,
			}
		} else {
			request.RejectedByID = &scope.EmployeeID
			request.RejectedAt = &now
			request.RejectionReason = input.Reason
			request.Status = enums.TransferStatusRejected
			updates = map[string]any{
				"status":           enums.TransferStatusRejected,
				"rejected_by_id":   scope.EmployeeID,
				"rejected_at":      now,
				"rejection_reason": input.Reason,
			}
		}

		ok, err := repo.Transition(ctx, request.ID, enums.TransferStatusPending, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition transfer request")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "transfer request already decided")
		}

		eventType := enums.EventTransferApproved
		reason := ""
		if input.Decision == enums.TransferStatusRejected {
			eventType = enums.EventTransferRejected
			if input.Reason != nil {
				reason = *input.Reason
			}
		}
		quantity := 0
		if request.Quantity != nil {
			quantity = *request.Quantity
		}
		event := outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateTransferRequest,
			AggregateID:   request.ID,
			Actor:         actorRef(scope),
			Data: payloads.TransferDecidedEvent{
				TransferID:        request.ID,
				ProductID:         product.ID,
				ProductName:       product.Name,
				SourceWarehouseID: request.SourceWarehouseID,
				DestWarehouseID:   request.DestWarehouseID,
				Quantity:          quantity,
				Status:            request.Status,
				Reason:            reason,
			},
			Version: 1,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue transfer decision event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"transfer_id": request.ID.String(),
		"status":      request.Status,
	})
	s.logg.Info(logCtx, "transfer request decided")
	return request, nil
}

// Receive confirms arrival at the destination and performs the actual stock
// move: out of the source, into the destination, two ledger entries and the
// status flip, all in one transaction. If the source no longer holds enough
// stock the whole receipt fails and the request stays approved so it can be
// retried after a restock.
func (s *service) Receive(ctx context.Context, scope *access.ScopeContext, id uuid.UUID) (*models.TransferRequest, error) {
	if scope == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}

	request, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transfer request")
	}
	if request == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transfer request not found")
	}
	if request.Status != enums.TransferStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "transfer request is not approved").
			WithDetails(map[string]any{"status": request.Status})
	}
	if !scope.CanAccessWarehouse(request.DestWarehouseID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "destination warehouse outside actor scope")
	}
	if request.Quantity == nil || *request.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "approved request has no quantity")
	}

	product, err := s.invRepo.GetProduct(ctx, request.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	quantity := *request.Quantity
	now := time.Now()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		invRepo := s.invRepo.WithTx(tx)

		ok, err := repo.Transition(ctx, request.ID, enums.TransferStatusApproved, map[string]any{
			"status":         enums.TransferStatusReceived,
			"received_by_id": scope.EmployeeID,
			"received_at":    now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition transfer request")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "transfer request already received")
		}

		if err := s.moveStock(ctx, invRepo, scope, request, quantity); err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventTransferReceived,
			AggregateType: enums.AggregateTransferRequest,
			AggregateID:   request.ID,
			Actor:         actorRef(scope),
			Data: payloads.TransferReceivedEvent{
				TransferID:        request.ID,
				ProductID:         product.ID,
				ProductName:       product.Name,
				SourceWarehouseID: request.SourceWarehouseID,
				DestWarehouseID:   request.DestWarehouseID,
				Quantity:          quantity,
				ReceivedAt:        now,
			},
			Version: 1,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue transfer received event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	request.Status = enums.TransferStatusReceived
	request.ReceivedByID = &scope.EmployeeID
	request.ReceivedAt = &now

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"transfer_id": request.ID.String(),
		"quantity":    quantity,
	})
	s.logg.Info(logCtx, "transfer request received")
	return request, nil
}

// moveStock applies the dual-warehouse quantity change and writes both
// ledger entries inside the caller's transaction.
func (s *service) moveStock(ctx context.Context, invRepo inventory.Repository, scope *access.ScopeContext, request *models.TransferRequest, quantity int) error {
	source, err := invRepo.Get(ctx, request.ProductID, request.SourceWarehouseID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load source inventory")
	}
	if source == nil {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "source warehouse has no stock").
			WithDetails(map[string]any{"on_hand": 0, "requested": quantity})
	}
	applied, err := invRepo.ApplyDelta(ctx, source.ID, -quantity, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reduce source stock")
	}
	if !applied {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "source stock consumed since approval").
			WithDetails(map[string]any{"on_hand": source.Quantity, "requested": quantity})
	}
	source, err = invRepo.GetByID(ctx, source.ID)
	if err != nil || source == nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload source inventory")
	}

	dest, err := invRepo.Get(ctx, request.ProductID, request.DestWarehouseID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load destination inventory")
	}
	if dest == nil {
		dest = &models.Inventory{
			ProductID:   request.ProductID,
			WarehouseID: request.DestWarehouseID,
		}
		if err := invRepo.Create(ctx, dest); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create destination inventory")
		}
	}
	restockedAt := time.Now()
	if _, err := invRepo.ApplyDelta(ctx, dest.ID, quantity, &restockedAt); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increase destination stock")
	}
	dest, err = invRepo.GetByID(ctx, dest.ID)
	if err != nil || dest == nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload destination inventory")
	}

	outReason := reasonTransferOut
	inReason := reasonTransferIn
	movements := []*models.StockMovement{
		{
			ProductID:   request.ProductID,
			WarehouseID: request.SourceWarehouseID,
			Type:        enums.MovementTransfer,
			Quantity:    -quantity,
			Balance:     source.Quantity,
			Reason:      &outReason,
			ReferenceID: &request.ID,
			EmployeeID:  scope.EmployeeID,
		},
		{
			ProductID:   request.ProductID,
			WarehouseID: request.DestWarehouseID,
			Type:        enums.MovementTransfer,
			Quantity:    quantity,
			Balance:     dest.Quantity,
			Reason:      &inReason,
			ReferenceID: &request.ID,
			EmployeeID:  scope.EmployeeID,
		},
	}
	for _, movement := range movements {
		if err := invRepo.InsertMovement(ctx, movement); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert stock movement")
		}
	}
	return nil
}

func (s *service) Get(ctx context.Context, scope *access.ScopeContext, id uuid.UUID) (*models.TransferRequest, error) {
	if scope == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}
	request, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transfer request")
	}
	if request == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transfer request not found")
	}
	if !scope.IsAdmin() &&
		!scope.CanAccessWarehouse(request.SourceWarehouseID) &&
		!scope.CanAccessWarehouse(request.DestWarehouseID) &&
		request.RequestedByID != scope.EmployeeID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "transfer request outside actor scope")
	}
	return request, nil
}

// List pages transfer requests. Admins see everything, managers see the
// requests leaving their warehouses, cashiers see only what they requested.
func (s *service) List(ctx context.Context, scope *access.ScopeContext, input ListInput) ([]models.TransferRequest, *pagination.Cursor, error) {
	if scope == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}

	filter := ListFilter{
		Status:    input.Status,
		ProductID: input.ProductID,
	}
	switch scope.Role {
	case enums.RoleAdmin:
	case enums.RoleManager:
		filter.SourceWarehouseIDs = scope.AccessibleWarehouseIDs()
		if len(filter.SourceWarehouseIDs) == 0 {
			return []models.TransferRequest{}, nil, nil
		}
	default:
		id := scope.EmployeeID
		filter.RequestedByID = &id
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Pagination.Limit)

	requests, err := s.repo.List(ctx, filter, cursor, pagination.LimitWithBuffer(input.Pagination.Limit))
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transfer requests")
	}

	var next *pagination.Cursor
	if len(requests) > limit {
		requests = requests[:limit]
		last := requests[len(requests)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return requests, next, nil
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
