package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sonigems/saraf-backend/pkg/db/models"
	"github.com/sonigems/saraf-backend/pkg/enums"
	"github.com/sonigems/saraf-backend/pkg/pagination"
)

// Repository persists bills.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, bill *models.Bill) (*models.Bill, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Bill, error)
	List(ctx context.Context, params listBillsParams) ([]models.Bill, *pagination.Cursor, error)
	Update(ctx context.Context, bill *models.Bill) (*models.Bill, error)
}

type listBillsParams struct {
	BillType *enums.BillType
	Limit    int
	Cursor   *pagination.Cursor
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository constructs the gorm-backed bill repository.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, bill *models.Bill) (*models.Bill, error) {
	if err := r.db.WithContext(ctx).Create(bill).Error; err != nil {
		return nil, err
	}
	return bill, nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Bill, error) {
	var bill models.Bill
	err := r.db.WithContext(ctx).First(&bill, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listBillsParams) ([]models.Bill, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Bill{})
	if params.BillType != nil {
		query = query.Where("bill_type = ?", *params.BillType)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var bills []models.Bill
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&bills).Error; err != nil {
		return nil, nil, err
	}

	if len(bills) > normalized {
		next := bills[normalized]
		bills = bills[:normalized]
		return bills, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return bills, nil, nil
}

func (r *repositoryImpl) Update(ctx context.Context, bill *models.Bill) (*models.Bill, error) {
	if err := r.db.WithContext(ctx).Save(bill).Error; err != nil {
		return nil, err
	}
	return bill, nil
}
