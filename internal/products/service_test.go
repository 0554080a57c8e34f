package products

import (
	"context"
	"testing"
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

type fakeProductRepo struct {
	products map[uuid.UUID]*models.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[uuid.UUID]*models.Product{}}
}

func (f *fakeProductRepo) WithTx(*gorm.DB) Repository { return f }

func (f *fakeProductRepo) Get(_ context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok || product.DeletedAt != nil {
		return nil, nil
	}
	copied := *product
	return &copied, nil
}

func (f *fakeProductRepo) FindBySKU(_ context.Context, sku string) (*models.Product, error) {
	for _, product := range f.products {
		if product.SKU == sku && product.DeletedAt == nil {
			copied := *product
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeProductRepo) List(_ context.Context, _ *pagination.Cursor, limit int) ([]models.Product, error) {
	var out []models.Product
	for _, product := range f.products {
		if product.DeletedAt != nil {
			continue
		}
		out = append(out, *product)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeProductRepo) SoftDelete(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	product, ok := f.products[id]
	if !ok || product.DeletedAt != nil {
		return false, nil
	}
	product.DeletedAt = &at
	product.IsActive = false
	return true, nil
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

func newProductService(t *testing.T, repo Repository, sink *fakeOutbox) Service {
	t.Helper()

	svc, err := NewService(repo, passTx{}, sink, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func seedProduct(repo *fakeProductRepo, name, sku string) *models.Product {
	product := &models.Product{ID: uuid.New(), Name: name, SKU: sku, IsActive: true}
	repo.products[product.ID] = product
	return product
}

func TestDeleteProductEmitsEvent(t *testing.T) {
	repo := newFakeProductRepo()
	product := seedProduct(repo, "Riz 25kg", "RIZ-025")
	sink := &fakeOutbox{}
	svc := newProductService(t, repo, sink)

	scope := &access.ScopeContext{EmployeeID: uuid.New(), Role: enums.RoleAdmin}
	if err := svc.Delete(context.Background(), scope, product.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if repo.products[product.ID].DeletedAt == nil {
		t.Fatal("expected soft delete timestamp")
	}
	if len(sink.events) != 1 {
		t.Fatalf("expected one event, got %d", len(sink.events))
	}
	event := sink.events[0]
	if event.EventType != enums.EventProductDeleted {
		t.Fatalf("unexpected event type %s", event.EventType)
	}
	payload, ok := event.Data.(payloads.ProductDeletedEvent)
	if !ok {
		t.Fatalf("unexpected payload %T", event.Data)
	}
	if payload.SKU != "RIZ-025" {
		t.Fatalf("unexpected payload %+v", payload)
	}

	// The deleted product disappears from reads.
	if _, err := svc.Get(context.Background(), scope, product.ID); pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestDeleteProductAdminOnly(t *testing.T) {
	repo := newFakeProductRepo()
	product := seedProduct(repo, "Huile 5L", "HUI-005")
	svc := newProductService(t, repo, &fakeOutbox{})

	warehouseID := uuid.New()
	scope := &access.ScopeContext{EmployeeID: uuid.New(), Role: enums.RoleManager, PrimaryWarehouseID: &warehouseID}
	err := svc.Delete(context.Background(), scope, product.ID)
	if pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestDeleteProductTwice(t *testing.T) {
	repo := newFakeProductRepo()
	product := seedProduct(repo, "Sucre 1kg", "SUC-001")
	sink := &fakeOutbox{}
	svc := newProductService(t, repo, sink)

	scope := &access.ScopeContext{EmployeeID: uuid.New(), Role: enums.RoleAdmin}
	if err := svc.Delete(context.Background(), scope, product.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	err := svc.Delete(context.Background(), scope, product.ID)
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(sink.events) != 1 {
		t.Fatalf("expected a single event, got %d", len(sink.events))
	}
}
