package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sahelretail/pos-backend/pkg/db/models"
	"github.com/sahelretail/pos-backend/pkg/enums"
	"github.com/sahelretail/pos-backend/pkg/pagination"
)

// StockRow joins the catalog with per-warehouse quantities. Products without
// an inventory row report zero on hand.
type StockRow struct {
	ProductID       uuid.UUID  `gorm:"column:product_id"`
	ProductName     string     `gorm:"column:product_name"`
	SKU             string     `gorm:"column:sku"`
	Quantity        int        `gorm:"column:quantity"`
	MinStockLevel   int        `gorm:"column:min_stock_level"`
	MaxStockLevel   *int       `gorm:"column:max_stock_level"`
	LastRestockedAt *time.Time `gorm:"column:last_restocked_at"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
}

// MovementFilter narrows the stock movement ledger query.
type MovementFilter struct {
	WarehouseIDs []uuid.UUID
	ProductID    *uuid.UUID
	Type         *enums.StockMovementType
	From         *time.Time
	To           *time.Time
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Get(ctx context.Context, productID, warehouseID uuid.UUID) (*models.Inventory, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Inventory, error)
	Create(ctx context.Context, row *models.Inventory) error
	Save(ctx context.Context, row *models.Inventory) error
	ApplyDelta(ctx context.Context, id uuid.UUID, delta int, restockedAt *time.Time) (bool, error)
	InsertMovement(ctx context.Context, movement *models.StockMovement) error
	ListStock(ctx context.Context, warehouseID uuid.UUID, cursor *pagination.Cursor, limit int) ([]StockRow, error)
	ListLowStock(ctx context.Context, warehouseIDs []uuid.UUID) ([]StockRowWithWarehouse, error)
	ListMovements(ctx context.Context, filter MovementFilter, cursor *pagination.Cursor, limit int) ([]models.StockMovement, error)
}

// StockRowWithWarehouse is a StockRow tagged with its warehouse for
// cross-warehouse low stock reports.
type StockRowWithWarehouse struct {
	StockRow
	WarehouseID uuid.UUID `gorm:"column:warehouse_id"`
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repositoryImpl) Get(ctx context.Context, productID, warehouseID uuid.UUID) (*models.Inventory, error) {
	var row models.Inventory
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) Create(ctx context.Context, row *models.Inventory) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repositoryImpl) Save(ctx context.Context, row *models.Inventory) error {
	return r.db.WithContext(ctx).Save(row).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Inventory, error) {
	var row models.Inventory
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ApplyDelta adjusts the quantity atomically. The WHERE guard refuses any
// delta that would take the balance below zero; the caller checks the
// returned flag. The updated row stays write-locked until the surrounding
// transaction commits.
func (r *repositoryImpl) ApplyDelta(ctx context.Context, id uuid.UUID, delta int, restockedAt *time.Time) (bool, error) {
	updates := map[string]any{
		"quantity":   gorm.Expr("quantity + ?", delta),
		"updated_at": time.Now(),
	}
	if restockedAt != nil {
		updates["last_restocked_at"] = *restockedAt
	}
	res := r.db.WithContext(ctx).
		Model(&models.Inventory{}).
		Where("id = ? AND quantity + ? >= 0", id, delta).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repositoryImpl) InsertMovement(ctx context.Context, movement *models.StockMovement) error {
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repositoryImpl) ListStock(ctx context.Context, warehouseID uuid.UUID, cursor *pagination.Cursor, limit int) ([]StockRow, error) {
	query := r.db.WithContext(ctx).
		Table("products AS p").
		Select(`p.id AS product_id, p.name AS product_name, p.sku,
			COALESCE(i.quantity, 0) AS quantity,
			COALESCE(i.min_stock_level, 0) AS min_stock_level,
			i.max_stock_level, i.last_restocked_at, p.created_at`).
		Joins("LEFT JOIN inventories i ON i.product_id = p.id AND i.warehouse_id = ?", warehouseID).
		Where("p.deleted_at IS NULL AND p.is_active = ?", true)

	if cursor != nil {
		query = query.Where("(p.created_at, p.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []StockRow
	err := query.
		Order("p.created_at DESC, p.id DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *repositoryImpl) ListLowStock(ctx context.Context, warehouseIDs []uuid.UUID) ([]StockRowWithWarehouse, error) {
	query := r.db.WithContext(ctx).
		Table("inventories AS i").
		Select(`p.id AS product_id, p.name AS product_name, p.sku, i.warehouse_id,
			i.quantity, i.min_stock_level, i.max_stock_level, i.last_restocked_at, p.created_at`).
		Joins("JOIN products p ON p.id = i.product_id AND p.deleted_at IS NULL").
		Where("i.quantity <= i.min_stock_level")

	if len(warehouseIDs) > 0 {
		query = query.Where("i.warehouse_id IN ?", warehouseIDs)
	}

	var rows []StockRowWithWarehouse
	err := query.
		Order("CASE WHEN i.min_stock_level > 0 THEN CAST(i.quantity AS REAL) / i.min_stock_level ELSE 0 END ASC, p.name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *repositoryImpl) ListMovements(ctx context.Context, filter MovementFilter, cursor *pagination.Cursor, limit int) ([]models.StockMovement, error) {
	query := r.db.WithContext(ctx).Model(&models.StockMovement{})

	if len(filter.WarehouseIDs) > 0 {
		query = query.Where("warehouse_id IN ?", filter.WarehouseIDs)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var movements []models.StockMovement
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&movements).Error
	return movements, err
}
