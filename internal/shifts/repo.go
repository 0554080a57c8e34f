package shifts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sahelretail/pos-backend/pkg/db/models"
	"github.com/sahelretail/pos-backend/pkg/enums"
	"github.com/sahelretail/pos-backend/pkg/pagination"
)

// Stats is the reconciliation snapshot summed from a shift's sales.
type Stats struct {
	SalesCount       int
	TotalSales       decimal.Decimal
	CashTotal        decimal.Decimal
	MobileMoneyTotal decimal.Decimal
	RefundCount      int
	RefundTotal      decimal.Decimal
}

// ListFilter narrows shift queries.
type ListFilter struct {
	EmployeeID   *uuid.UUID
	WarehouseIDs []uuid.UUID
	Status       *enums.ShiftStatus
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, shift *models.Shift) error
	Get(ctx context.Context, id uuid.UUID) (*models.Shift, error)
	GetOpenByEmployee(ctx context.Context, employeeID uuid.UUID) (*models.Shift, error)
	GetActiveWarehouse(ctx context.Context, id uuid.UUID) (*models.Warehouse, error)
	Stats(ctx context.Context, shiftID uuid.UUID) (*Stats, error)
	Close(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error)
	List(ctx context.Context, filter ListFilter, cursor *pagination.Cursor, limit int) ([]models.Shift, error)
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

func (r *repositoryImpl) Create(ctx context.Context, shift *models.Shift) error {
	if shift.ID == uuid.Nil {
		shift.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(shift).Error
}

func (r *repositoryImpl) Get(ctx context.Context, id uuid.UUID) (*models.Shift, error) {
	var shift models.Shift
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&shift).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shift, nil
}

func (r *repositoryImpl) GetOpenByEmployee(ctx context.Context, employeeID uuid.UUID) (*models.Shift, error) {
	var shift models.Shift
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND status = ?", employeeID, enums.ShiftStatusOpen).
		First(&shift).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shift, nil
}

func (r *repositoryImpl) GetActiveWarehouse(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&warehouse).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &warehouse, nil
}

// Stats sums the shift's completed sales, their payments by method, and the
// refunded sale totals.
func (r *repositoryImpl) Stats(ctx context.Context, shiftID uuid.UUID) (*Stats, error) {
	stats := &Stats{}

	var completed struct {
		Count int             `gorm:"column:count"`
		Total decimal.Decimal `gorm:"column:total"`
	}
	err := r.db.WithContext(ctx).
		Table("sales").
		Select("COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Where("shift_id = ? AND status = ?", shiftID, enums.SaleStatusCompleted).
		Scan(&completed).Error
	if err != nil {
		return nil, err
	}
	stats.SalesCount = completed.Count
	stats.TotalSales = completed.Total

	var tenders []struct {
		Method enums.PaymentMethod `gorm:"column:method"`
		Total  decimal.Decimal     `gorm:"column:total"`
	}
	err = r.db.WithContext(ctx).
		Table("payments AS p").
		Select("p.method, COALESCE(SUM(p.amount), 0) AS total").
		Joins("JOIN sales s ON s.id = p.sale_id").
		Where("s.shift_id = ? AND s.status = ?", shiftID, enums.SaleStatusCompleted).
		Group("p.method").
		Scan(&tenders).Error
	if err != nil {
		return nil, err
	}
	for _, tender := range tenders {
		switch tender.Method {
		case enums.PaymentMethodCash:
			stats.CashTotal = tender.Total
		case enums.PaymentMethodMobileMoney:
			stats.MobileMoneyTotal = tender.Total
		}
	}

	var refunded struct {
		Count int             `gorm:"column:count"`
		Total decimal.Decimal `gorm:"column:total"`
	}
	err = r.db.WithContext(ctx).
		Table("sales").
		Select("COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Where("shift_id = ? AND status = ?", shiftID, enums.SaleStatusRefunded).
		Scan(&refunded).Error
	if err != nil {
		return nil, err
	}
	stats.RefundCount = refunded.Count
	stats.RefundTotal = refunded.Total

	return stats, nil
}

// Close flips the shift to closed only while it is still open, so two
// concurrent closes cannot both succeed.
func (r *repositoryImpl) Close(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error) {
	updates["status"] = enums.ShiftStatusClosed
	res := r.db.WithContext(ctx).
		Model(&models.Shift{}).
		Where("id = ? AND status = ?", id, enums.ShiftStatusOpen).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repositoryImpl) List(ctx context.Context, filter ListFilter, cursor *pagination.Cursor, limit int) ([]models.Shift, error) {
	query := r.db.WithContext(ctx).Model(&models.Shift{})

	if filter.EmployeeID != nil {
		query = query.Where("employee_id = ?", *filter.EmployeeID)
	}
	if len(filter.WarehouseIDs) > 0 {
		query = query.Where("warehouse_id IN ?", filter.WarehouseIDs)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var shifts []models.Shift
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&shifts).Error
	return shifts, err
}
