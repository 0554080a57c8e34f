package employees

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sahelretail/pos-backend/pkg/db/models"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, employee *models.Employee) error
	Get(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	FindByPhone(ctx context.Context, phone string) (*models.Employee, error)
	List(ctx context.Context) ([]models.Employee, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error)
	GetWarehouse(ctx context.Context, id uuid.UUID) (*models.Warehouse, error)
	AddAssignment(ctx context.Context, employeeID, warehouseID uuid.UUID) error
	RemoveAssignment(ctx context.Context, employeeID, warehouseID uuid.UUID) (bool, error)
	ListAssignments(ctx context.Context, employeeID uuid.UUID) ([]models.WarehouseAssignment, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, employee *models.Employee) error {
	if employee.ID == uuid.Nil {
		employee.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(employee).Error
}

func (r *repositoryImpl) Get(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	var employee models.Employee
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&employee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &employee, nil
}

func (r *repositoryImpl) FindByPhone(ctx context.Context, phone string) (*models.Employee, error) {
	var employee models.Employee
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&employee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &employee, nil
}

func (r *repositoryImpl) List(ctx context.Context) ([]models.Employee, error) {
	var out []models.Employee
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *repositoryImpl) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Employee{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

func (r *repositoryImpl) SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Employee{}).
		Where("id = ? AND is_active = ?", id, !active).
		Update("is_active", active)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repositoryImpl) GetWarehouse(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&warehouse).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &warehouse, nil
}

func (r *repositoryImpl) AddAssignment(ctx context.Context, employeeID, warehouseID uuid.UUID) error {
	assignment := models.WarehouseAssignment{
		ID:          uuid.New(),
		EmployeeID:  employeeID,
		WarehouseID: warehouseID,
	}
	return r.db.WithContext(ctx).Create(&assignment).Error
}

func (r *repositoryImpl) RemoveAssignment(ctx context.Context, employeeID, warehouseID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("employee_id = ? AND warehouse_id = ?", employeeID, warehouseID).
		Delete(&models.WarehouseAssignment{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repositoryImpl) ListAssignments(ctx context.Context, employeeID uuid.UUID) ([]models.WarehouseAssignment, error) {
	var out []models.WarehouseAssignment
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}
