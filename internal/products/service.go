package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sonigems/saraf-backend/pkg/db/models"
	pkgerrors "github.com/sonigems/saraf-backend/pkg/errors"
	"github.com/sonigems/saraf-backend/pkg/logger"
	"github.com/sonigems/saraf-backend/pkg/pagination"
)

// Service exposes product reads plus the admin-only long-set CRUD. Regular
// products are mutated only through the approval workflow.
type Service interface {
	List(ctx context.Context, params ServiceListParams) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	CreateLongSet(ctx context.Context, input LongSetInput) (*ProductDTO, error)
	UpdateLongSet(ctx context.Context, id uuid.UUID, input LongSetInput) (*ProductDTO, error)
	DeleteLongSet(ctx context.Context, id uuid.UUID) error
}

type productRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	List(ctx context.Context, params ListParams) ([]models.Product, *pagination.Cursor, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	ReplaceParts(ctx context.Context, productID uuid.UUID, parts []models.LongSetPart) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type mediaDeleter interface {
	DeleteByURL(ctx context.Context, imageURL string) error
	PlaceholderURL() string
}

type service struct {
	repo  productRepository
	media mediaDeleter
	logg  *logger.Logger
}

// NewService wires product dependencies.
func NewService(repo productRepository, media mediaDeleter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if media == nil {
		return nil, fmt.Errorf("media service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, media: media, logg: logg}, nil
}

// ServiceListParams configures the product listing.
type ServiceListParams struct {
	Category string
	Material string
	Search   string
	LowStock bool
	Limit    int
	Cursor   string
}

// ListResult wraps returned products and the cursor for the next page.
type ListResult struct {
	Items  []ProductDTO `json:"items"`
	Cursor string       `json:"cursor"`
}

func (s *service) List(ctx context.Context, params ServiceListParams) (*ListResult, error) {
	query := ListParams{
		Category: strings.TrimSpace(params.Category),
		Material: strings.TrimSpace(params.Material),
		Search:   params.Search,
		LowStock: params.LowStock,
		Limit:    params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	items := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: items, Cursor: cursor}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return FromModel(product), nil
}

func (s *service) CreateLongSet(ctx context.Context, input LongSetInput) (*ProductDTO, error) {
	if err := validateLongSetInput(input); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindBySKU(ctx, input.SKU)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check sku")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
	}

	row := longSetToModel(input)
	row.IsLongSet = true
	if row.ImageURL == "" {
		row.ImageURL = s.media.PlaceholderURL()
	}

	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create long set")
	}
	return FromModel(created), nil
}

func (s *service) UpdateLongSet(ctx context.Context, id uuid.UUID, input LongSetInput) (*ProductDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if err := validateLongSetInput(input); err != nil {
		return nil, err
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil || !product.IsLongSet {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "long set not found")
	}

	oldImageURL := product.ImageURL

	product.SKU = input.SKU
	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.CostPrice = input.CostPrice
	product.Stock = input.Stock
	product.Category = input.Category
	product.Material = input.Material
	product.Supplier = input.Supplier
	if input.LowStockThreshold != nil {
		product.LowStockThreshold = *input.LowStockThreshold
	}
	if input.ImageURL != "" {
		product.ImageURL = input.ImageURL
	}

	if _, err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update long set")
	}
	if err := s.repo.ReplaceParts(ctx, product.ID, partsToModels(input.Parts)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace parts")
	}

	if input.ImageURL != "" && oldImageURL != input.ImageURL {
		if err := s.media.DeleteByURL(ctx, oldImageURL); err != nil {
			s.logg.Warn(ctx, "deleting replaced long set image failed")
		}
	}

	updated, err := s.repo.FindByID(ctx, product.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload long set")
	}
	return FromModel(updated), nil
}

func (s *service) DeleteLongSet(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil || !product.IsLongSet {
		return pkgerrors.New(pkgerrors.CodeNotFound, "long set not found")
	}

	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete long set")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "long set not found")
	}

	if err := s.media.DeleteByURL(ctx, product.ImageURL); err != nil {
		s.logg.Warn(ctx, "deleting long set image failed")
	}
	return nil
}

func validateLongSetInput(input LongSetInput) error {
	if strings.TrimSpace(input.SKU) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}
	if len(input.Parts) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "long set requires at least one part")
	}
	for _, part := range input.Parts {
		if strings.TrimSpace(part.PartName) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "part name is required")
		}
		if part.CostPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "part cost must not be negative")
		}
	}
	return nil
}

func longSetToModel(input LongSetInput) *models.Product {
	threshold := 5
	if input.LowStockThreshold != nil {
		threshold = *input.LowStockThreshold
	}
	return &models.Product{
		SKU:               input.SKU,
		Name:              input.Name,
		Description:       input.Description,
		Price:             input.Price,
		CostPrice:         input.CostPrice,
		Stock:             input.Stock,
		Category:          input.Category,
		Material:          input.Material,
		ImageURL:          input.ImageURL,
		Supplier:          input.Supplier,
		LowStockThreshold: threshold,
		Parts:             partsToModels(input.Parts),
	}
}

func partsToModels(parts []PartInput) []models.LongSetPart {
	rows := make([]models.LongSetPart, 0, len(parts))
	for i, part := range parts {
		rows = append(rows, models.LongSetPart{
			Position:        i + 1,
			PartName:        part.PartName,
			PartDescription: part.PartDescription,
			CostPrice:       part.CostPrice,
			KarigarID:       part.KarigarID,
		})
	}
	return rows
}
