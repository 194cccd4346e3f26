package product

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sonigems/saraf-backend/pkg/db/models"
	pkgerrors "github.com/sonigems/saraf-backend/pkg/errors"
	"github.com/sonigems/saraf-backend/pkg/logger"
	"github.com/sonigems/saraf-backend/pkg/pagination"
)

const testPlaceholder = "https://storage.googleapis.com/saraf-assets/placeholder-product.png"

type fakeProductRepo struct {
	byID     map[uuid.UUID]*models.Product
	bySKU    map[string]*models.Product
	replaced map[uuid.UUID][]models.LongSetPart
	deleted  []uuid.UUID
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{
		byID:     map[uuid.UUID]*models.Product{},
		bySKU:    map[string]*models.Product{},
		replaced: map[uuid.UUID][]models.LongSetPart{},
	}
}

func (f *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	return f.byID[id], nil
}

func (f *fakeProductRepo) FindBySKU(_ context.Context, sku string) (*models.Product, error) {
	return f.bySKU[sku], nil
}

func (f *fakeProductRepo) List(_ context.Context, params ListParams) ([]models.Product, *pagination.Cursor, error) {
	var rows []models.Product
	for _, p := range f.byID {
		if params.Category != "" && p.Category != params.Category {
			continue
		}
		rows = append(rows, *p)
	}
	return rows, nil, nil
}

func (f *fakeProductRepo) Create(_ context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	f.byID[product.ID] = product
	f.bySKU[product.SKU] = product
	return product, nil
}

func (f *fakeProductRepo) Update(_ context.Context, product *models.Product) (*models.Product, error) {
	f.byID[product.ID] = product
	f.bySKU[product.SKU] = product
	return product, nil
}

func (f *fakeProductRepo) ReplaceParts(_ context.Context, productID uuid.UUID, parts []models.LongSetPart) error {
	f.replaced[productID] = parts
	if p, ok := f.byID[productID]; ok {
		p.Parts = parts
	}
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return true, nil
}

type fakeMedia struct {
	deleted []string
}

func (f *fakeMedia) DeleteByURL(_ context.Context, imageURL string) error {
	if imageURL == testPlaceholder || imageURL == "" {
		return nil
	}
	f.deleted = append(f.deleted, imageURL)
	return nil
}

func (f *fakeMedia) PlaceholderURL() string { return testPlaceholder }

func newProductService(t *testing.T, repo *fakeProductRepo, media *fakeMedia) Service {
	t.Helper()
	svc, err := NewService(repo, media, logger.New(logger.Options{ServiceName: "saraf-test"}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func longSetInput() LongSetInput {
	return LongSetInput{
		SKU:      "LS-001",
		Name:     "Temple Long Set",
		Price:    decimal.NewFromInt(45000),
		Stock:    2,
		Category: "long-set",
		Material: "gold",
		Parts: []PartInput{
			{PartName: "Necklace", CostPrice: decimal.NewFromInt(30000)},
			{PartName: "Earrings", CostPrice: decimal.NewFromInt(8000)},
		},
	}
}

func TestCreateLongSetAssignsPlaceholderWhenNoImage(t *testing.T) {
	repo := newFakeProductRepo()
	svc := newProductService(t, repo, &fakeMedia{})

	dto, err := svc.CreateLongSet(context.Background(), longSetInput())
	if err != nil {
		t.Fatalf("create long set: %v", err)
	}
	if dto.ImageURL != testPlaceholder {
		t.Fatalf("expected placeholder image, got %s", dto.ImageURL)
	}
	if !dto.IsLongSet {
		t.Fatal("expected is_long_set to be set")
	}
	if len(dto.Parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(dto.Parts))
	}
	if dto.Parts[0].Position != 1 || dto.Parts[1].Position != 2 {
		t.Fatal("expected parts to carry positions")
	}
}

func TestCreateLongSetRequiresParts(t *testing.T) {
	svc := newProductService(t, newFakeProductRepo(), &fakeMedia{})

	input := longSetInput()
	input.Parts = nil
	_, err := svc.CreateLongSet(context.Background(), input)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation, got %s", pkgerrors.As(err).Code())
	}
}

func TestCreateLongSetRejectsDuplicateSKU(t *testing.T) {
	repo := newFakeProductRepo()
	svc := newProductService(t, repo, &fakeMedia{})

	if _, err := svc.CreateLongSet(context.Background(), longSetInput()); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.CreateLongSet(context.Background(), longSetInput())
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %s", pkgerrors.As(err).Code())
	}
}

func TestUpdateLongSetReplacesPartsAndDeletesOldImage(t *testing.T) {
	repo := newFakeProductRepo()
	media := &fakeMedia{}
	svc := newProductService(t, repo, media)

	created, err := svc.CreateLongSet(context.Background(), longSetInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	repo.byID[created.ID].ImageURL = "https://storage.googleapis.com/saraf-media/products/old.png"

	input := longSetInput()
	input.ImageURL = "https://storage.googleapis.com/saraf-media/products/new.png"
	input.Parts = []PartInput{{PartName: "Choker", CostPrice: decimal.NewFromInt(12000)}}

	updated, err := svc.UpdateLongSet(context.Background(), created.ID, input)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Parts) != 1 || updated.Parts[0].PartName != "Choker" {
		t.Fatalf("expected parts replaced wholesale, got %+v", updated.Parts)
	}
	if len(media.deleted) != 1 || media.deleted[0] != "https://storage.googleapis.com/saraf-media/products/old.png" {
		t.Fatalf("expected old image deleted, got %v", media.deleted)
	}
}

func TestUpdateLongSetWithoutImageKeepsExisting(t *testing.T) {
	repo := newFakeProductRepo()
	media := &fakeMedia{}
	svc := newProductService(t, repo, media)

	created, err := svc.CreateLongSet(context.Background(), longSetInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	existing := "https://storage.googleapis.com/saraf-media/products/keep.png"
	repo.byID[created.ID].ImageURL = existing

	input := longSetInput()
	input.Stock = 7

	updated, err := svc.UpdateLongSet(context.Background(), created.ID, input)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ImageURL != existing {
		t.Fatalf("expected image preserved, got %s", updated.ImageURL)
	}
	if len(media.deleted) != 0 {
		t.Fatalf("stock-only edit must not delete the image, got %v", media.deleted)
	}
	if updated.Stock != 7 {
		t.Fatalf("expected stock updated to 7, got %d", updated.Stock)
	}
}

func TestDeleteLongSetRemovesRowAndImage(t *testing.T) {
	repo := newFakeProductRepo()
	media := &fakeMedia{}
	svc := newProductService(t, repo, media)

	created, err := svc.CreateLongSet(context.Background(), longSetInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	repo.byID[created.ID].ImageURL = "https://storage.googleapis.com/saraf-media/products/x.png"

	if err := svc.DeleteLongSet(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Fatal("expected product deleted")
	}
	if len(media.deleted) != 1 {
		t.Fatal("expected image deleted")
	}
}

func TestDeleteLongSetRefusesRegularProduct(t *testing.T) {
	repo := newFakeProductRepo()
	svc := newProductService(t, repo, &fakeMedia{})

	plain := &models.Product{ID: uuid.New(), SKU: "P-1", Name: "Ring", IsLongSet: false}
	repo.byID[plain.ID] = plain

	err := svc.DeleteLongSet(context.Background(), plain.ID)
	if err == nil {
		t.Fatal("expected not found for non long-set product")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %s", pkgerrors.As(err).Code())
	}
}
