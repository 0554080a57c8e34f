package transfers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sahelretail/pos-backend/pkg/db/models"
	"github.com/sahelretail/pos-backend/pkg/enums"
	"github.com/sahelretail/pos-backend/pkg/pagination"
)

// ListFilter narrows transfer request queries.
type ListFilter struct {
	Status             *enums.TransferStatus
	ProductID          *uuid.UUID
	SourceWarehouseIDs []uuid.UUID
	RequestedByID      *uuid.UUID
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.TransferRequest) error
	Get(ctx context.Context, id uuid.UUID) (*models.TransferRequest, error)
	Transition(ctx context.Context, id uuid.UUID, from enums.TransferStatus, updates map[string]any) (bool, error)
	List(ctx context.Context, filter ListFilter, cursor *pagination.Cursor, limit int) ([]models.TransferRequest, error)
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

func (r *repositoryImpl) Create(ctx context.Context, request *models.TransferRequest) error {
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repositoryImpl) Get(ctx context.Context, id uuid.UUID) (*models.TransferRequest, error) {
	var request models.TransferRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// Transition applies the updates only while the request still sits in the
// expected state, so concurrent decisions and receipts cannot regress the
// lifecycle. Returns false when the guard did not match.
func (r *repositoryImpl) Transition(ctx context.Context, id uuid.UUID, from enums.TransferStatus, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.TransferRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repositoryImpl) List(ctx context.Context, filter ListFilter, cursor *pagination.Cursor, limit int) ([]models.TransferRequest, error) {
	query := r.db.WithContext(ctx).Model(&models.TransferRequest{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if len(filter.SourceWarehouseIDs) > 0 {
		query = query.Where("source_warehouse_id IN ?", filter.SourceWarehouseIDs)
	}
	if filter.RequestedByID != nil {
		query = query.Where("requested_by_id = ?", *filter.RequestedByID)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var requests []models.TransferRequest
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&requests).Error
	return requests, err
}
