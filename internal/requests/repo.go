package requests

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sonigems/saraf-backend/pkg/db/models"
	"github.com/sonigems/saraf-backend/pkg/enums"
	"github.com/sonigems/saraf-backend/pkg/pagination"
)

// Repository persists product requests, sales requests, and completed sales.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateProductRequest(ctx context.Context, request *models.ProductRequest) (*models.ProductRequest, error)
	FindProductRequestByID(ctx context.Context, id uuid.UUID) (*models.ProductRequest, error)
	ListProductRequests(ctx context.Context, params listRequestsParams) ([]models.ProductRequest, *pagination.Cursor, error)
	TransitionProductRequest(ctx context.Context, id uuid.UUID, status enums.RequestStatus, decidedBy uuid.UUID, now time.Time) (bool, error)

	CreateSalesRequest(ctx context.Context, request *models.SalesRequest) (*models.SalesRequest, error)
	FindSalesRequestByID(ctx context.Context, id uuid.UUID) (*models.SalesRequest, error)
	ListSalesRequests(ctx context.Context, params listRequestsParams) ([]models.SalesRequest, *pagination.Cursor, error)
	TransitionSalesRequest(ctx context.Context, id uuid.UUID, status enums.RequestStatus, decidedBy uuid.UUID, now time.Time) (bool, error)

	CreateSale(ctx context.Context, sale *models.Sale) (*models.Sale, error)
	FindSaleByOrderNumber(ctx context.Context, orderNumber string) (*models.Sale, error)
}

type listRequestsParams struct {
	Status      *enums.RequestStatus
	RequestedBy *uuid.UUID
	Limit       int
	Cursor      *pagination.Cursor
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository constructs the gorm-backed request repository.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateProductRequest(ctx context.Context, request *models.ProductRequest) (*models.ProductRequest, error) {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

func (r *repositoryImpl) FindProductRequestByID(ctx context.Context, id uuid.UUID) (*models.ProductRequest, error) {
	var request models.ProductRequest
	err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repositoryImpl) ListProductRequests(ctx context.Context, params listRequestsParams) ([]models.ProductRequest, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.ProductRequest{})
	query = applyRequestFilters(query, params)

	var requests []models.ProductRequest
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&requests).Error; err != nil {
		return nil, nil, err
	}

	if len(requests) > normalized {
		next := requests[normalized]
		requests = requests[:normalized]
		return requests, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return requests, nil, nil
}

// TransitionProductRequest is the single-fire pending-to-terminal swap. A zero
// row count means another decision already landed.
func (r *repositoryImpl) TransitionProductRequest(ctx context.Context, id uuid.UUID, status enums.RequestStatus, decidedBy uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ProductRequest{}).
		Where("id = ? AND status = ?", id, enums.RequestStatusPending).
		Updates(map[string]any{
			"status":     status,
			"decided_by": decidedBy,
			"decided_at": now,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) CreateSalesRequest(ctx context.Context, request *models.SalesRequest) (*models.SalesRequest, error) {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

func (r *repositoryImpl) FindSalesRequestByID(ctx context.Context, id uuid.UUID) (*models.SalesRequest, error) {
	var request models.SalesRequest
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&request, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repositoryImpl) ListSalesRequests(ctx context.Context, params listRequestsParams) ([]models.SalesRequest, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.SalesRequest{}).Preload("Items")
	query = applyRequestFilters(query, params)

	var requests []models.SalesRequest
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&requests).Error; err != nil {
		return nil, nil, err
	}

	if len(requests) > normalized {
		next := requests[normalized]
		requests = requests[:normalized]
		return requests, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return requests, nil, nil
}

func (r *repositoryImpl) TransitionSalesRequest(ctx context.Context, id uuid.UUID, status enums.RequestStatus, decidedBy uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.SalesRequest{}).
		Where("id = ? AND status = ?", id, enums.RequestStatusPending).
		Updates(map[string]any{
			"status":     status,
			"decided_by": decidedBy,
			"decided_at": now,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) CreateSale(ctx context.Context, sale *models.Sale) (*models.Sale, error) {
	if err := r.db.WithContext(ctx).Create(sale).Error; err != nil {
		return nil, err
	}
	return sale, nil
}

func (r *repositoryImpl) FindSaleByOrderNumber(ctx context.Context, orderNumber string) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).First(&sale, "order_number = ?", orderNumber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func applyRequestFilters(query *gorm.DB, params listRequestsParams) *gorm.DB {
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.RequestedBy != nil {
		query = query.Where("requested_by = ?", *params.RequestedBy)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}
	return query
}
