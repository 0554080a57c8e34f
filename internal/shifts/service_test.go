package shifts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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

type fakeShiftRepo struct {
	shifts     map[uuid.UUID]*models.Shift
	warehouses map[uuid.UUID]*models.Warehouse
	stats      map[uuid.UUID]*Stats
}

func newFakeShiftRepo() *fakeShiftRepo {
	return &fakeShiftRepo{
		shifts:     map[uuid.UUID]*models.Shift{},
		warehouses: map[uuid.UUID]*models.Warehouse{},
		stats:      map[uuid.UUID]*Stats{},
	}
}

func (f *fakeShiftRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeShiftRepo) Create(ctx context.Context, shift *models.Shift) error {
	shift.ID = uuid.New()
	f.shifts[shift.ID] = shift
	return nil
}

func (f *fakeShiftRepo) Get(ctx context.Context, id uuid.UUID) (*models.Shift, error) {
	return f.shifts[id], nil
}

func (f *fakeShiftRepo) GetOpenByEmployee(ctx context.Context, employeeID uuid.UUID) (*models.Shift, error) {
	for _, shift := range f.shifts {
		if shift.EmployeeID == employeeID && shift.Status == enums.ShiftStatusOpen {
			return shift, nil
		}
	}
	return nil, nil
}

func (f *fakeShiftRepo) GetActiveWarehouse(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	return f.warehouses[id], nil
}

func (f *fakeShiftRepo) Stats(ctx context.Context, shiftID uuid.UUID) (*Stats, error) {
	if stats, ok := f.stats[shiftID]; ok {
		return stats, nil
	}
	return &Stats{}, nil
}

func (f *fakeShiftRepo) Close(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error) {
	shift, ok := f.shifts[id]
	if !ok || shift.Status != enums.ShiftStatusOpen {
		return false, nil
	}
	shift.Status = enums.ShiftStatusClosed
	return true, nil
}

func (f *fakeShiftRepo) List(ctx context.Context, filter ListFilter, cursor *pagination.Cursor, limit int) ([]models.Shift, error) {
	var out []models.Shift
	for _, shift := range f.shifts {
		if filter.EmployeeID != nil && shift.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && shift.Status != *filter.Status {
			continue
		}
		if len(filter.WarehouseIDs) > 0 {
			match := false
			for _, id := range filter.WarehouseIDs {
				if id == shift.WarehouseID {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *shift)
	}
	return out, nil
}

type passTx struct{}

func (passTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeOutbox struct {
	events []outbox.DomainEvent
}

func (f *fakeOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

func newShiftService(t *testing.T, repo *fakeShiftRepo, sink *fakeOutbox) Service {
	t.Helper()
	svc, err := NewService(repo, passTx{}, sink, logger.New(logger.Options{ServiceName: "shifts-test"}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func cashierScope(warehouseID uuid.UUID) *access.ScopeContext {
	id := warehouseID
	return &access.ScopeContext{
		EmployeeID:          uuid.New(),
		Role:                enums.RoleCashier,
		PrimaryWarehouseID:  &id,
		SelectedWarehouseID: &id,
	}
}

func money(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestStartShift(t *testing.T) {
	warehouseID := uuid.New()
	repo := newFakeShiftRepo()
	repo.warehouses[warehouseID] = &models.Warehouse{ID: warehouseID, Name: "Boutique Centre", IsActive: true}
	svc := newShiftService(t, repo, &fakeOutbox{})

	scope := cashierScope(warehouseID)
	shift, err := svc.Start(context.Background(), scope, StartInput{OpeningCash: money("50")})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if shift.Status != enums.ShiftStatusOpen {
		t.Fatalf("expected open shift, got %s", shift.Status)
	}
	if shift.WarehouseID != warehouseID {
		t.Fatal("shift should bind the scoped warehouse")
	}
	if !shift.OpeningCash.Equal(money("50")) {
		t.Fatalf("unexpected opening cash %s", shift.OpeningCash)
	}
}

func TestStartShiftTwiceConflicts(t *testing.T) {
	warehouseID := uuid.New()
	repo := newFakeShiftRepo()
	repo.warehouses[warehouseID] = &models.Warehouse{ID: warehouseID, Name: "Boutique Centre", IsActive: true}
	svc := newShiftService(t, repo, &fakeOutbox{})

	scope := cashierScope(warehouseID)
	if _, err := svc.Start(context.Background(), scope, StartInput{OpeningCash: money("50")}); err != nil {
		t.Fatalf("first start: %v", err)
	}
	_, err := svc.Start(context.Background(), scope, StartInput{OpeningCash: money("20")})
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestStartShiftInactiveWarehouse(t *testing.T) {
	warehouseID := uuid.New()
	repo := newFakeShiftRepo()
	svc := newShiftService(t, repo, &fakeOutbox{})

	_, err := svc.Start(context.Background(), cashierScope(warehouseID), StartInput{OpeningCash: money("10")})
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for inactive warehouse, got %v", err)
	}
}

func TestEndShiftReconciliation(t *testing.T) {
	warehouseID := uuid.New()
	repo := newFakeShiftRepo()
	repo.warehouses[warehouseID] = &models.Warehouse{ID: warehouseID, Name: "Boutique Centre", IsActive: true}
	sink := &fakeOutbox{}
	svc := newShiftService(t, repo, sink)

	scope := cashierScope(warehouseID)
	shift, err := svc.Start(context.Background(), scope, StartInput{OpeningCash: money("50")})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// Cash sales 200, mobile money 80, one refund of 40.
	repo.stats[shift.ID] = &Stats{
		SalesCount:       5,
		TotalSales:       money("280"),
		CashTotal:        money("200"),
		MobileMoneyTotal: money("80"),
		RefundCount:      1,
		RefundTotal:      money("40"),
	}

	closed, err := svc.End(context.Background(), scope, EndInput{ClosingCash: money("250")})
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if closed.Status != enums.ShiftStatusClosed {
		t.Fatalf("expected closed, got %s", closed.Status)
	}
	if closed.ExpectedCash == nil || !closed.ExpectedCash.Equal(money("250")) {
		t.Fatalf("expected cash 250, got %v", closed.ExpectedCash)
	}
	if closed.CashDifference == nil || !closed.CashDifference.Equal(money("0")) {
		t.Fatalf("expected zero difference, got %v", closed.CashDifference)
	}
	if !closed.NetTotal.Equal(money("240")) {
		t.Fatalf("expected net total 240, got %s", closed.NetTotal)
	}
	if closed.EndedAt == nil {
		t.Fatal("ended_at must be stamped")
	}

	if len(sink.events) != 1 || sink.events[0].EventType != enums.EventShiftClosed {
		t.Fatalf("expected shift closed event, got %+v", sink.events)
	}
	payload := sink.events[0].Data.(payloads.ShiftClosedEvent)
	if !payload.ExpectedCash.Equal(money("250")) || !payload.CashDifference.Equal(money("0")) {
		t.Fatalf("unexpected event payload %+v", payload)
	}
}

func TestEndShiftReportsShortage(t *testing.T) {
	warehouseID := uuid.New()
	repo := newFakeShiftRepo()
	repo.warehouses[warehouseID] = &models.Warehouse{ID: warehouseID, Name: "Boutique Centre", IsActive: true}
	svc := newShiftService(t, repo, &fakeOutbox{})

	scope := cashierScope(warehouseID)
	shift, err := svc.Start(context.Background(), scope, StartInput{OpeningCash: money("50")})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	repo.stats[shift.ID] = &Stats{
		SalesCount: 2,
		TotalSales: money("100"),
		CashTotal:  money("100"),
	}

	closed, err := svc.End(context.Background(), scope, EndInput{ClosingCash: money("120")})
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	// Drawer is 30 short; reported, never corrected.
	if closed.CashDifference == nil || !closed.CashDifference.Equal(money("-30")) {
		t.Fatalf("expected -30 difference, got %v", closed.CashDifference)
	}
}

func TestEndShiftWithoutOpenShift(t *testing.T) {
	repo := newFakeShiftRepo()
	svc := newShiftService(t, repo, &fakeOutbox{})

	_, err := svc.End(context.Background(), cashierScope(uuid.New()), EndInput{ClosingCash: money("10")})
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCurrentShift(t *testing.T) {
	warehouseID := uuid.New()
	repo := newFakeShiftRepo()
	repo.warehouses[warehouseID] = &models.Warehouse{ID: warehouseID, Name: "Boutique Centre", IsActive: true}
	svc := newShiftService(t, repo, &fakeOutbox{})

	scope := cashierScope(warehouseID)
	if _, err := svc.Current(context.Background(), scope); pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found before start, got %v", err)
	}

	started, err := svc.Start(context.Background(), scope, StartInput{OpeningCash: money("50")})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	current, err := svc.Current(context.Background(), scope)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.ID != started.ID {
		t.Fatal("current should return the open shift")
	}
}

func TestListShiftsScopesToCashier(t *testing.T) {
	warehouseID := uuid.New()
	repo := newFakeShiftRepo()
	repo.warehouses[warehouseID] = &models.Warehouse{ID: warehouseID, Name: "Boutique Centre", IsActive: true}
	svc := newShiftService(t, repo, &fakeOutbox{})

	mine := cashierScope(warehouseID)
	other := cashierScope(warehouseID)
	if _, err := svc.Start(context.Background(), mine, StartInput{OpeningCash: money("10")}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Start(context.Background(), other, StartInput{OpeningCash: money("10")}); err != nil {
		t.Fatalf("start: %v", err)
	}

	shifts, _, err := svc.List(context.Background(), mine, ListInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(shifts) != 1 || shifts[0].EmployeeID != mine.EmployeeID {
		t.Fatalf("cashier should see only own shifts, got %d", len(shifts))
	}
}
