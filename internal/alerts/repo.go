package alerts

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

// ListFilter narrows alert queries.
type ListFilter struct {
	Type        *enums.AlertType
	Severity    *enums.AlertSeverity
	WarehouseID *uuid.UUID
	UnreadOnly  bool
}

type Repository interface {
	Create(ctx context.Context, alert *models.Alert) error
	Get(ctx context.Context, id uuid.UUID) (*models.Alert, error)
	List(ctx context.Context, filter ListFilter, cursor *pagination.Cursor, limit int) ([]models.Alert, error)
	MarkRead(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	MarkAllRead(ctx context.Context, at time.Time) (int64, error)
	CountUnread(ctx context.Context) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, alert *models.Alert) error {
	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *repositoryImpl) Get(ctx context.Context, id uuid.UUID) (*models.Alert, error) {
	var alert models.Alert
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&alert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

func (r *repositoryImpl) List(ctx context.Context, filter ListFilter, cursor *pagination.Cursor, limit int) ([]models.Alert, error) {
	query := r.db.WithContext(ctx).Model(&models.Alert{})

	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Severity != nil {
		query = query.Where("severity = ?", *filter.Severity)
	}
	if filter.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var alerts []models.Alert
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&alerts).Error
	return alerts, err
}

func (r *repositoryImpl) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Alert{}).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]any{"is_read": true, "read_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repositoryImpl) MarkAllRead(ctx context.Context, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Alert{}).
		Where("is_read = ?", false).
		Updates(map[string]any{"is_read": true, "read_at": at})
	return res.RowsAffected, res.Error
}

func (r *repositoryImpl) CountUnread(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Alert{}).
		Where("is_read = ?", false).
		Count(&count).Error
	return count, err
}
