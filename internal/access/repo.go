package access

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sahelretail/pos-backend/pkg/db/models"
)

// Repository exposes the reads the resolver needs.
type Repository interface {
	GetEmployee(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	ListAssignedWarehouseIDs(ctx context.Context, employeeID uuid.UUID) ([]uuid.UUID, error)
	GetActiveWarehouse(ctx context.Context, id uuid.UUID) (*models.Warehouse, error)
	ListRoleGrants(ctx context.Context) ([]models.RoleGrant, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an access repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) GetEmployee(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
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

func (r *repositoryImpl) ListAssignedWarehouseIDs(ctx context.Context, employeeID uuid.UUID) ([]uuid.UUID, error) {
	var assignments []models.WarehouseAssignment
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.WarehouseID)
	}
	return ids, nil
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

func (r *repositoryImpl) ListRoleGrants(ctx context.Context) ([]models.RoleGrant, error) {
	var grants []models.RoleGrant
	err := r.db.WithContext(ctx).Find(&grants).Error
	return grants, err
}
