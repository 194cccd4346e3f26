package analytics

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sonigems/saraf-backend/pkg/db/models"
	"github.com/sonigems/saraf-backend/pkg/enums"
)

// Repository reads completed sales for aggregation. Analytics never mutates.
type Repository interface {
	SalesBetween(ctx context.Context, start, end time.Time, billType *enums.BillType) ([]models.Sale, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) SalesBetween(ctx context.Context, start, end time.Time, billType *enums.BillType) ([]models.Sale, error) {
	query := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start, end)
	if billType != nil {
		query = query.Where("bill_type = ?", *billType)
	}

	var sales []models.Sale
	if err := query.Order("created_at ASC").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}
