package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sahelretail/pos-backend/pkg/db/models"
	"github.com/sahelretail/pos-backend/pkg/enums"
	"github.com/sahelretail/pos-backend/pkg/pagination"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  sku TEXT NOT NULL UNIQUE,
  barcode TEXT,
  category TEXT,
  price NUMERIC NOT NULL DEFAULT 0,
  cost_price NUMERIC NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  deleted_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	inventories := `
CREATE TABLE IF NOT EXISTS inventories (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  warehouse_id TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  min_stock_level INTEGER NOT NULL DEFAULT 0,
  max_stock_level INTEGER,
  last_restocked_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (product_id, warehouse_id)
);`
	movements := `
CREATE TABLE IF NOT EXISTS stock_movements (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  warehouse_id TEXT NOT NULL,
  type TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  balance INTEGER NOT NULL,
  reason TEXT,
  reference_id TEXT,
  employee_id TEXT NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(inventories).Error)
	require.NoError(t, db.Exec(movements).Error)

	t.Cleanup(func() {
		db.Exec("DELETE FROM stock_movements")
		db.Exec("DELETE FROM inventories")
		db.Exec("DELETE FROM products")
	})
	return db
}

func newProduct(t *testing.T, db *gorm.DB, name, sku string, created time.Time) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:        uuid.New(),
		Name:      name,
		SKU:       sku,
		Price:     decimal.NewFromInt(1000),
		CostPrice: decimal.NewFromInt(700),
		IsActive:  true,
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func newInventoryRow(t *testing.T, db *gorm.DB, productID, warehouseID uuid.UUID, qty, minLevel int) *models.Inventory {
	t.Helper()

	row := &models.Inventory{
		ID:            uuid.New(),
		ProductID:     productID,
		WarehouseID:   warehouseID,
		Quantity:      qty,
		MinStockLevel: minLevel,
	}
	require.NoError(t, db.Create(row).Error)
	return row
}

func TestRepositoryListStock_virtualZeroRows(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	warehouseID := uuid.New()

	now := time.Now().UTC()
	stocked := newProduct(t, db, "Sucre 1kg", "SUC-001", now.Add(-time.Hour))
	unstocked := newProduct(t, db, "Thé vert", "THE-001", now)
	newInventoryRow(t, db, stocked.ID, warehouseID, 12, 5)
	// Same product stocked elsewhere must not leak into this warehouse.
	newInventoryRow(t, db, unstocked.ID, uuid.New(), 99, 0)

	rows, err := repo.ListStock(context.Background(), warehouseID, nil, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byID := map[uuid.UUID]StockRow{}
	for _, row := range rows {
		byID[row.ProductID] = row
	}
	assert.Equal(t, 12, byID[stocked.ID].Quantity)
	assert.Equal(t, 5, byID[stocked.ID].MinStockLevel)
	assert.Equal(t, 0, byID[unstocked.ID].Quantity)
}

func TestRepositoryListStock_pagination(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	warehouseID := uuid.New()

	now := time.Now().UTC()
	older := newProduct(t, db, "Farine", "FAR-001", now.Add(-time.Hour))
	newer := newProduct(t, db, "Pates", "PAT-001", now)

	first, err := repo.ListStock(context.Background(), warehouseID, nil, 1)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, newer.ID, first[0].ProductID)

	cursor := &pagination.Cursor{CreatedAt: first[0].CreatedAt, ID: first[0].ProductID}
	second, err := repo.ListStock(context.Background(), warehouseID, cursor, 1)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, older.ID, second[0].ProductID)
}

func TestRepositoryListLowStock_ordersByDepletion(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	warehouseID := uuid.New()

	now := time.Now().UTC()
	nearlyOut := newProduct(t, db, "Bougies", "BOU-001", now)
	low := newProduct(t, db, "Allumettes", "ALL-001", now)
	healthy := newProduct(t, db, "Sel", "SEL-001", now)

	newInventoryRow(t, db, nearlyOut.ID, warehouseID, 1, 10)
	newInventoryRow(t, db, low.ID, warehouseID, 8, 10)
	newInventoryRow(t, db, healthy.ID, warehouseID, 50, 10)

	rows, err := repo.ListLowStock(context.Background(), []uuid.UUID{warehouseID})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, nearlyOut.ID, rows[0].ProductID)
	assert.Equal(t, low.ID, rows[1].ProductID)
}

func TestRepositoryListLowStock_includesZeroThresholdStockouts(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	warehouseID := uuid.New()

	now := time.Now().UTC()
	stockedOut := newProduct(t, db, "Piles AA", "PIL-001", now)
	nearlyOut := newProduct(t, db, "Savon", "SAV-001", now)
	unthresholded := newProduct(t, db, "Eponges", "EPO-001", now)

	// No reorder threshold was ever set, but the shelf is empty.
	newInventoryRow(t, db, stockedOut.ID, warehouseID, 0, 0)
	newInventoryRow(t, db, nearlyOut.ID, warehouseID, 1, 10)
	newInventoryRow(t, db, unthresholded.ID, warehouseID, 5, 0)

	rows, err := repo.ListLowStock(context.Background(), []uuid.UUID{warehouseID})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, stockedOut.ID, rows[0].ProductID)
	assert.Equal(t, nearlyOut.ID, rows[1].ProductID)
}

func TestRepositoryListMovements_filters(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	warehouseID := uuid.New()
	otherWarehouse := uuid.New()
	employeeID := uuid.New()

	product := newProduct(t, db, "Riz 25kg", "RIZ-025", time.Now().UTC())
	now := time.Now().UTC()

	insert := func(wh uuid.UUID, mtype enums.StockMovementType, created time.Time) {
		require.NoError(t, repo.InsertMovement(context.Background(), &models.StockMovement{
			ProductID:   product.ID,
			WarehouseID: wh,
			Type:        mtype,
			Quantity:    5,
			Balance:     5,
			EmployeeID:  employeeID,
			CreatedAt:   created,
		}))
	}
	insert(warehouseID, enums.MovementIn, now.Add(-3*time.Hour))
	insert(warehouseID, enums.MovementOut, now.Add(-2*time.Hour))
	insert(otherWarehouse, enums.MovementIn, now.Add(-time.Hour))

	all, err := repo.ListMovements(context.Background(), MovementFilter{
		WarehouseIDs: []uuid.UUID{warehouseID},
	}, nil, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	outType := enums.MovementOut
	outs, err := repo.ListMovements(context.Background(), MovementFilter{
		WarehouseIDs: []uuid.UUID{warehouseID},
		Type:         &outType,
	}, nil, 10)
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, enums.MovementOut, outs[0].Type)

	from := now.Add(-90 * time.Minute)
	recent, err := repo.ListMovements(context.Background(), MovementFilter{From: &from}, nil, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, otherWarehouse, recent[0].WarehouseID)
}

func TestRepositoryApplyDelta_guardsNegativeBalance(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	warehouseID := uuid.New()

	product := newProduct(t, db, "Café", "CAF-001", time.Now().UTC())
	row := newInventoryRow(t, db, product.ID, warehouseID, 4, 0)

	applied, err := repo.ApplyDelta(context.Background(), row.ID, -5, nil)
	require.NoError(t, err)
	assert.False(t, applied)

	applied, err = repo.ApplyDelta(context.Background(), row.ID, -4, nil)
	require.NoError(t, err)
	assert.True(t, applied)

	reloaded, err := repo.GetByID(context.Background(), row.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, 0, reloaded.Quantity)
}

func TestRepositoryGet_missingRow(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)

	row, err := repo.Get(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, row)
}
