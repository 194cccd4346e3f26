package requests

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sonigems/saraf-backend/internal/billing"
	"github.com/sonigems/saraf-backend/internal/idgen"
	"github.com/sonigems/saraf-backend/internal/media"
	"github.com/sonigems/saraf-backend/internal/notifications"
	product "github.com/sonigems/saraf-backend/internal/products"
	"github.com/sonigems/saraf-backend/pkg/config"
	"github.com/sonigems/saraf-backend/pkg/db"
	"github.com/sonigems/saraf-backend/pkg/db/models"
	"github.com/sonigems/saraf-backend/pkg/enums"
	pkgerrors "github.com/sonigems/saraf-backend/pkg/errors"
	"github.com/sonigems/saraf-backend/pkg/logger"
	"github.com/sonigems/saraf-backend/pkg/types"
)

const testPlaceholder = "https://storage.googleapis.com/saraf-assets/placeholder.png"

type fakeMedia struct {
	uploadURL string
	uploadErr error
	uploads   int
	deleted   []string
}

func (f *fakeMedia) UploadProductImage(_ context.Context, _ media.UploadInput) (string, error) {
	f.uploads++
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return f.uploadURL, nil
}

func (f *fakeMedia) DeleteByURL(_ context.Context, imageURL string) error {
	f.deleted = append(f.deleted, imageURL)
	return nil
}

func (f *fakeMedia) PlaceholderURL() string { return testPlaceholder }

type fakeNotifier struct {
	userNotes  []notifications.Note
	userIDs    []uuid.UUID
	adminNotes []notifications.Note
}

func (f *fakeNotifier) NotifyUser(_ context.Context, userID uuid.UUID, note notifications.Note) error {
	f.userIDs = append(f.userIDs, userID)
	f.userNotes = append(f.userNotes, note)
	return nil
}

func (f *fakeNotifier) NotifyAdmins(_ context.Context, note notifications.Note) error {
	f.adminNotes = append(f.adminNotes, note)
	return nil
}

type harness struct {
	conn     *gorm.DB
	svc      Service
	repo     Repository
	products *product.Repository
	media    *fakeMedia
	notifier *fakeNotifier
	ledger   *fakeLedger
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dsn := "file:requests_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.Product{}, &models.LongSetPart{},
		&models.ProductRequest{}, &models.SalesRequest{}, &models.SalesRequestItem{},
		&models.Sale{}, &models.Bill{}, &models.IDSequence{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "saraf-test"})
	gen, err := idgen.NewGenerator(conn)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	billsvc, err := billing.NewService(billing.ServiceParams{
		Repo:    billing.NewRepository(conn),
		Numbers: gen,
		Config: config.BillingConfig{
			DefaultCGSTPercent: "9",
			DefaultSGSTPercent: "9",
			DefaultIGSTPercent: "0",
		},
		Logger: logg,
	})
	if err != nil {
		t.Fatalf("new billing service: %v", err)
	}
	client, err := db.NewWithConn(conn)
	if err != nil {
		t.Fatalf("new db client: %v", err)
	}

	h := &harness{
		conn:     conn,
		repo:     NewRepository(conn),
		products: product.NewRepository(conn),
		media:    &fakeMedia{uploadURL: "https://storage.googleapis.com/saraf-assets/products/new.png"},
		notifier: &fakeNotifier{},
		ledger:   &fakeLedger{},
	}
	svc, err := NewService(ServiceParams{
		DB:       client,
		Repo:     h.repo,
		Products: h.products,
		Numbers:  gen,
		Billing:  billsvc,
		Ledger:   h.ledger,
		Media:    h.media,
		Notifier: h.notifier,
		Logger:   logg,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	h.svc = svc
	return h
}

func (h *harness) seedProduct(t *testing.T, sku string, price int64, stock int) *models.Product {
	t.Helper()
	created, err := h.products.Create(context.Background(), &models.Product{
		SKU:      sku,
		Name:     "Gold Ring " + sku,
		Price:    decimal.NewFromInt(price),
		Stock:    stock,
		Category: "ring",
		Material: "gold",
		ImageURL: testPlaceholder,
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return created
}

func strptr(s string) *string { return &s }

func addDetails(sku string) *types.ProductRequestDetails {
	price := decimal.NewFromInt(1500)
	stock := 3
	return &types.ProductRequestDetails{
		Name:     strptr("Gold Ring " + sku),
		SKU:      &sku,
		Price:    &price,
		Stock:    &stock,
		Category: strptr("ring"),
		Material: strptr("gold"),
	}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestCreateProductRequestAddDefaultsPlaceholder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	created, err := h.svc.CreateProductRequest(ctx, uuid.New(), CreateProductRequestInput{
		Type:    enums.ProductRequestTypeAdd,
		Details: addDetails("RING-001"),
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if !strings.HasPrefix(created.RequestNumber, "PR-") {
		t.Fatalf("unexpected request number %s", created.RequestNumber)
	}
	if created.Status != enums.RequestStatusPending {
		t.Fatalf("expected pending, got %s", created.Status)
	}
	if created.Details.ImageURL == nil || *created.Details.ImageURL != testPlaceholder {
		t.Fatalf("expected placeholder image, got %v", created.Details.ImageURL)
	}
	if len(h.notifier.adminNotes) != 1 || h.notifier.adminNotes[0].Type != enums.NotificationTypeProductRequest {
		t.Fatalf("expected one admin notification, got %v", h.notifier.adminNotes)
	}
}

func TestCreateProductRequestUploadsImage(t *testing.T) {
	h := newHarness(t)

	created, err := h.svc.CreateProductRequest(context.Background(), uuid.New(), CreateProductRequestInput{
		Type:    enums.ProductRequestTypeAdd,
		Details: addDetails("RING-002"),
		Image: &media.UploadInput{
			FileName:    "ring.png",
			ContentType: "image/png",
			SizeBytes:   3,
			Body:        strings.NewReader("png"),
		},
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if h.media.uploads != 1 {
		t.Fatalf("expected one upload, got %d", h.media.uploads)
	}
	if created.Details.ImageURL == nil || *created.Details.ImageURL != h.media.uploadURL {
		t.Fatalf("expected uploaded image url, got %v", created.Details.ImageURL)
	}
}

func TestCreateProductRequestEditLeavesImageUnset(t *testing.T) {
	h := newHarness(t)
	prod := h.seedProduct(t, "RING-003", 1200, 4)

	stock := 9
	created, err := h.svc.CreateProductRequest(context.Background(), uuid.New(), CreateProductRequestInput{
		Type:      enums.ProductRequestTypeEdit,
		ProductID: &prod.ID,
		Details:   &types.ProductRequestDetails{Stock: &stock},
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if created.Details.ImageURL != nil {
		t.Fatalf("expected no image on stock-only edit, got %v", *created.Details.ImageURL)
	}
}

func TestCreateProductRequestValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := uuid.New()

	details := addDetails("RING-004")
	details.SKU = nil
	if _, err := h.svc.CreateProductRequest(ctx, userID, CreateProductRequestInput{
		Type:    enums.ProductRequestTypeAdd,
		Details: details,
	}); err == nil {
		t.Fatal("expected validation error for missing sku")
	} else {
		assertCode(t, err, pkgerrors.CodeValidation)
	}

	if _, err := h.svc.CreateProductRequest(ctx, userID, CreateProductRequestInput{
		Type:    enums.ProductRequestTypeEdit,
		Details: &types.ProductRequestDetails{},
	}); err == nil {
		t.Fatal("expected validation error for missing product id")
	} else {
		assertCode(t, err, pkgerrors.CodeValidation)
	}

	missing := uuid.New()
	if _, err := h.svc.CreateProductRequest(ctx, userID, CreateProductRequestInput{
		Type:      enums.ProductRequestTypeDelete,
		ProductID: &missing,
	}); err == nil {
		t.Fatal("expected not found error for unknown product")
	} else {
		assertCode(t, err, pkgerrors.CodeNotFound)
	}
}

func TestCreateProductRequestLongSetNeedsParts(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.CreateProductRequest(context.Background(), uuid.New(), CreateProductRequestInput{
		Type:      enums.ProductRequestTypeAdd,
		Details:   addDetails("SET-001"),
		IsLongSet: true,
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateSalesRequestComputesTotal(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ring := h.seedProduct(t, "RING-010", 500, 10)
	chain := h.seedProduct(t, "CHAIN-010", 2000, 2)

	override := decimal.NewFromInt(1800)
	created, err := h.svc.CreateSalesRequest(ctx, uuid.New(), CreateSalesRequestInput{
		CustomerName: "Meena Traders",
		Items: []SalesItemInput{
			{ProductID: ring.ID, Quantity: 2},
			{ProductID: chain.ID, Quantity: 1, UnitPrice: &override},
		},
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if !strings.HasPrefix(created.RequestNumber, "SR-") {
		t.Fatalf("unexpected request number %s", created.RequestNumber)
	}
	if !created.TotalValue.Equal(decimal.NewFromInt(2800)) {
		t.Fatalf("expected total 2800, got %s", created.TotalValue)
	}
	if len(created.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(created.Items))
	}
	if created.Items[0].ProductName != ring.Name || created.Items[0].Material != "gold" {
		t.Fatalf("expected product snapshot on item, got %+v", created.Items[0])
	}
	if len(h.notifier.adminNotes) != 1 || h.notifier.adminNotes[0].Type != enums.NotificationTypeSalesRequest {
		t.Fatalf("expected one admin notification, got %v", h.notifier.adminNotes)
	}
}

func TestCreateSalesRequestUnknownProduct(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.CreateSalesRequest(context.Background(), uuid.New(), CreateSalesRequestInput{
		CustomerName: "Meena Traders",
		Items:        []SalesItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestListProductRequestsFiltersByStatus(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := uuid.New()
	adminID := uuid.New()

	first, err := h.svc.CreateProductRequest(ctx, userID, CreateProductRequestInput{
		Type:    enums.ProductRequestTypeAdd,
		Details: addDetails("RING-020"),
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if _, err := h.svc.CreateProductRequest(ctx, userID, CreateProductRequestInput{
		Type:    enums.ProductRequestTypeAdd,
		Details: addDetails("RING-021"),
	}); err != nil {
		t.Fatalf("create request: %v", err)
	}
	if _, err := h.svc.DecideProductRequest(ctx, first.ID, adminID, Decision{Status: enums.RequestStatusRejected}); err != nil {
		t.Fatalf("decide: %v", err)
	}

	pending := enums.RequestStatusPending
	page, err := h.svc.ListProductRequests(ctx, ListParams{Status: &pending})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Requests) != 1 || page.Requests[0].Status != enums.RequestStatusPending {
		t.Fatalf("expected one pending request, got %+v", page.Requests)
	}

	all, err := h.svc.ListProductRequests(ctx, ListParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all.Requests) != 2 {
		t.Fatalf("expected two requests, got %d", len(all.Requests))
	}
}

func TestGetSalesRequestNotFound(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.GetSalesRequest(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}
