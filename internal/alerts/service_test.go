package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sahelretail/pos-backend/internal/access"
	"github.com/sahelretail/pos-backend/pkg/db/models"
	"github.com/sahelretail/pos-backend/pkg/enums"
	pkgerrors "github.com/sahelretail/pos-backend/pkg/errors"
	"github.com/sahelretail/pos-backend/pkg/logger"
	"github.com/sahelretail/pos-backend/pkg/pagination"
)

type fakeAlertRepo struct {
	alerts map[uuid.UUID]*models.Alert
	order  []uuid.UUID
}

func newFakeAlertRepo() *fakeAlertRepo {
	return &fakeAlertRepo{alerts: map[uuid.UUID]*models.Alert{}}
}

func (f *fakeAlertRepo) add(alert models.Alert) uuid.UUID {
	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	f.alerts[alert.ID] = &alert
	f.order = append(f.order, alert.ID)
	return alert.ID
}

func (f *fakeAlertRepo) Create(_ context.Context, alert *models.Alert) error {
	f.add(*alert)
	return nil
}

func (f *fakeAlertRepo) Get(_ context.Context, id uuid.UUID) (*models.Alert, error) {
	alert, ok := f.alerts[id]
	if !ok {
		return nil, nil
	}
	copied := *alert
	return &copied, nil
}

func (f *fakeAlertRepo) List(_ context.Context, filter ListFilter, _ *pagination.Cursor, limit int) ([]models.Alert, error) {
	var out []models.Alert
	for _, id := range f.order {
		alert := f.alerts[id]
		if filter.UnreadOnly && alert.IsRead {
			continue
		}
		if filter.Type != nil && alert.Type != *filter.Type {
			continue
		}
		out = append(out, *alert)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeAlertRepo) MarkRead(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	alert, ok := f.alerts[id]
	if !ok || alert.IsRead {
		return false, nil
	}
	alert.IsRead = true
	alert.ReadAt = &at
	return true, nil
}

func (f *fakeAlertRepo) MarkAllRead(_ context.Context, at time.Time) (int64, error) {
	var count int64
	for _, alert := range f.alerts {
		if alert.IsRead {
			continue
		}
		alert.IsRead = true
		alert.ReadAt = &at
		count++
	}
	return count, nil
}

func (f *fakeAlertRepo) CountUnread(_ context.Context) (int64, error) {
	var count int64
	for _, alert := range f.alerts {
		if !alert.IsRead {
			count++
		}
	}
	return count, nil
}

func newAlertService(t *testing.T, repo Repository) Service {
	t.Helper()

	svc, err := NewService(repo, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func adminScope() *access.ScopeContext {
	return &access.ScopeContext{EmployeeID: uuid.New(), Role: enums.RoleAdmin}
}

func managerScope() *access.ScopeContext {
	warehouseID := uuid.New()
	return &access.ScopeContext{
		EmployeeID:         uuid.New(),
		Role:               enums.RoleManager,
		PrimaryWarehouseID: &warehouseID,
	}
}

func TestListAlertsAdminOnly(t *testing.T) {
	repo := newFakeAlertRepo()
	repo.add(models.Alert{Type: enums.AlertTypeStockReduction, Severity: enums.AlertSeverityWarning, Title: "Stock reduced"})
	repo.add(models.Alert{Type: enums.AlertTypeTransferRequest, Severity: enums.AlertSeverityInfo, Title: "Transfer requested"})
	svc := newAlertService(t, repo)

	alerts, next, err := svc.List(context.Background(), adminScope(), ListInput{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(alerts))
	}
	if next != nil {
		t.Fatalf("expected no next cursor")
	}

	// Non-admins get an empty feed, not an error.
	alerts, _, err = svc.List(context.Background(), managerScope(), ListInput{})
	if err != nil {
		t.Fatalf("List as manager: %v", err)
	}
	if len(alerts) != 0 {
		t.Fatalf("expected empty feed for manager, got %d", len(alerts))
	}
}

func TestMarkReadIsIdempotent(t *testing.T) {
	repo := newFakeAlertRepo()
	id := repo.add(models.Alert{Type: enums.AlertTypeProductDeletion, Severity: enums.AlertSeverityWarning, Title: "Product deleted"})
	svc := newAlertService(t, repo)
	scope := adminScope()

	alert, err := svc.MarkRead(context.Background(), scope, id)
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if !alert.IsRead || alert.ReadAt == nil {
		t.Fatalf("expected alert marked read")
	}
	firstReadAt := *alert.ReadAt

	again, err := svc.MarkRead(context.Background(), scope, id)
	if err != nil {
		t.Fatalf("MarkRead twice: %v", err)
	}
	if !again.IsRead || !again.ReadAt.Equal(firstReadAt) {
		t.Fatalf("expected second call to be a no-op")
	}
}

func TestMarkReadForbiddenForNonAdmin(t *testing.T) {
	repo := newFakeAlertRepo()
	id := repo.add(models.Alert{Type: enums.AlertTypeStockReduction, Severity: enums.AlertSeverityWarning})
	svc := newAlertService(t, repo)

	_, err := svc.MarkRead(context.Background(), managerScope(), id)
	if pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.MarkAllRead(context.Background(), managerScope()); pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestMarkReadUnknownAlert(t *testing.T) {
	svc := newAlertService(t, newFakeAlertRepo())

	_, err := svc.MarkRead(context.Background(), adminScope(), uuid.New())
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUnreadCount(t *testing.T) {
	repo := newFakeAlertRepo()
	repo.add(models.Alert{Type: enums.AlertTypeStockReduction, Severity: enums.AlertSeverityWarning})
	read := repo.add(models.Alert{Type: enums.AlertTypeTransferApproval, Severity: enums.AlertSeverityInfo})
	svc := newAlertService(t, repo)
	scope := adminScope()

	if _, err := svc.MarkRead(context.Background(), scope, read); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	count, err := svc.UnreadCount(context.Background(), scope)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 unread, got %d", count)
	}

	// Non-admins see zero instead of an error.
	count, err = svc.UnreadCount(context.Background(), managerScope())
	if err != nil {
		t.Fatalf("UnreadCount as manager: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected zero for manager, got %d", count)
	}
}

func TestMarkAllRead(t *testing.T) {
	repo := newFakeAlertRepo()
	repo.add(models.Alert{Type: enums.AlertTypeStockReduction, Severity: enums.AlertSeverityWarning})
	repo.add(models.Alert{Type: enums.AlertTypeTransferRequest, Severity: enums.AlertSeverityInfo})
	svc := newAlertService(t, repo)

	count, err := svc.MarkAllRead(context.Background(), adminScope())
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 marked, got %d", count)
	}

	remaining, err := svc.UnreadCount(context.Background(), adminScope())
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected none unread, got %d", remaining)
	}
}
