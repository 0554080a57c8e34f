package products

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

// The catalog is read-mostly here. Deletion is soft so historical ledger
// entries and sales keep their product references.
type Service interface {
	Get(ctx context.Context, scope *access.ScopeContext, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, scope *access.ScopeContext, params pagination.Params) ([]models.Product, *pagination.Cursor, error)
	Delete(ctx context.Context, scope *access.ScopeContext, id uuid.UUID) error
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	logg   *logger.Logger
}

func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product repository required")
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
	return &service{repo: repo, tx: tx, outbox: outboxSvc, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, scope *access.ScopeContext, id uuid.UUID) (*models.Product, error) {
	if scope == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}
	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) List(ctx context.Context, scope *access.ScopeContext, params pagination.Params) ([]models.Product, *pagination.Cursor, error) {
	if scope == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	products, err := s.repo.List(ctx, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	var next *pagination.Cursor
	if len(products) > limit {
		products = products[:limit]
		last := products[len(products)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return products, next, nil
}

func (s *service) Delete(ctx context.Context, scope *access.ScopeContext, id uuid.UUID) error {
	if scope == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}
	if !scope.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins delete products")
	}

	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		deleted, err := repo.SoftDelete(ctx, id, time.Now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
		}
		if !deleted {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product already deleted")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventProductDeleted,
			AggregateType: enums.AggregateProduct,
			AggregateID:   product.ID,
			Actor:         actorRef(scope),
			Data: payloads.ProductDeletedEvent{
				ProductID: product.ID,
				Name:      product.Name,
				SKU:       product.SKU,
			},
			Version: 1,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue product deleted event")
		}
		return nil
	})
	if err != nil {
		return err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"product_id": product.ID.String(),
		"sku":        product.SKU,
	})
	s.logg.Info(logCtx, "product deleted")
	return nil
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
