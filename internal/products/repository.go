package product

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sonigems/saraf-backend/pkg/db/models"
	"github.com/sonigems/saraf-backend/pkg/pagination"
)

// Repository wires together product persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads the product with its long-set parts.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Preload("Parts", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindBySKU loads a product by its SKU.
func (r *Repository) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, "sku = ?", sku).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListParams filters the product listing.
type ListParams struct {
	Category string
	Material string
	Search   string
	LowStock bool
	Limit    int
	Cursor   *pagination.Cursor
}

// List returns a page of products ordered by creation time.
func (r *Repository) List(ctx context.Context, params ListParams) ([]models.Product, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Product{}).Preload("Parts")
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Material != "" {
		query = query.Where("material = ?", params.Material)
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", like, like)
	}
	if params.LowStock {
		query = query.Where("stock <= low_stock_threshold")
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var products []models.Product
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&products).Error; err != nil {
		return nil, nil, err
	}

	if len(products) > normalized {
		next := products[normalized]
		products = products[:normalized]
		return products, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return products, nil, nil
}

// Create inserts a new product row together with its parts.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update saves the product row. Parts are managed via ReplaceParts.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Omit("Parts").Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// ReplaceParts swaps the full set of long-set parts for the product.
func (r *Repository) ReplaceParts(ctx context.Context, productID uuid.UUID, parts []models.LongSetPart) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.LongSetPart{}).Error; err != nil {
		return err
	}
	if len(parts) == 0 {
		return nil
	}
	for i := range parts {
		parts[i].ProductID = productID
	}
	return tx.Create(&parts).Error
}

// Delete removes the product row; parts cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DecrementStock subtracts quantity from stock with a non-negative floor.
// Returns false when stock was insufficient (no row changed).
func (r *Repository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
