package alerts

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sahelretail/pos-backend/internal/access"
	"github.com/sahelretail/pos-backend/pkg/db/models"
	pkgerrors "github.com/sahelretail/pos-backend/pkg/errors"
	"github.com/sahelretail/pos-backend/pkg/logger"
	"github.com/sahelretail/pos-backend/pkg/pagination"
)

// ListInput carries alert list filters plus cursor pagination.
type ListInput struct {
	Filter     ListFilter
	Pagination pagination.Params
}

// Alerts are an admin surface. Read state is tracked globally per alert, not
// per admin; non-admin actors see an empty feed and a zero unread count
// rather than an error.
type Service interface {
	List(ctx context.Context, scope *access.ScopeContext, input ListInput) ([]models.Alert, *pagination.Cursor, error)
	MarkRead(ctx context.Context, scope *access.ScopeContext, id uuid.UUID) (*models.Alert, error)
	MarkAllRead(ctx context.Context, scope *access.ScopeContext) (int64, error)
	UnreadCount(ctx context.Context, scope *access.ScopeContext) (int64, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "alert repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) List(ctx context.Context, scope *access.ScopeContext, input ListInput) ([]models.Alert, *pagination.Cursor, error) {
	if scope == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}
	if !scope.IsAdmin() {
		return []models.Alert{}, nil, nil
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Pagination.Limit)

	alerts, err := s.repo.List(ctx, input.Filter, cursor, pagination.LimitWithBuffer(input.Pagination.Limit))
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list alerts")
	}

	var next *pagination.Cursor
	if len(alerts) > limit {
		alerts = alerts[:limit]
		last := alerts[len(alerts)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return alerts, next, nil
}

func (s *service) MarkRead(ctx context.Context, scope *access.ScopeContext, id uuid.UUID) (*models.Alert, error) {
	if scope == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}
	if !scope.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "alerts are admin only")
	}

	alert, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load alert")
	}
	if alert == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "alert not found")
	}
	if alert.IsRead {
		return alert, nil
	}

	now := time.Now()
	if _, err := s.repo.MarkRead(ctx, id, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark alert read")
	}
	alert.IsRead = true
	alert.ReadAt = &now
	return alert, nil
}

func (s *service) MarkAllRead(ctx context.Context, scope *access.ScopeContext) (int64, error) {
	if scope == nil {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}
	if !scope.IsAdmin() {
		return 0, pkgerrors.New(pkgerrors.CodeForbidden, "alerts are admin only")
	}

	count, err := s.repo.MarkAllRead(ctx, time.Now())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark all alerts read")
	}
	logCtx := s.logg.WithField(ctx, "count", count)
	s.logg.Info(logCtx, "alerts marked read")
	return count, nil
}

func (s *service) UnreadCount(ctx context.Context, scope *access.ScopeContext) (int64, error) {
	if scope == nil {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope required")
	}
	if !scope.IsAdmin() {
		return 0, nil
	}
	count, err := s.repo.CountUnread(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread alerts")
	}
	return count, nil
}
