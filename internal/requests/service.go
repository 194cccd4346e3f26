package requests

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sonigems/saraf-backend/internal/billing"
	"github.com/sonigems/saraf-backend/internal/idgen"
	"github.com/sonigems/saraf-backend/internal/khata"
	"github.com/sonigems/saraf-backend/internal/media"
	"github.com/sonigems/saraf-backend/internal/notifications"
	product "github.com/sonigems/saraf-backend/internal/products"
	"github.com/sonigems/saraf-backend/pkg/db"
	"github.com/sonigems/saraf-backend/pkg/db/models"
	"github.com/sonigems/saraf-backend/pkg/enums"
	pkgerrors "github.com/sonigems/saraf-backend/pkg/errors"
	"github.com/sonigems/saraf-backend/pkg/logger"
	"github.com/sonigems/saraf-backend/pkg/metrics"
	"github.com/sonigems/saraf-backend/pkg/pagination"
	"github.com/sonigems/saraf-backend/pkg/types"
)

// Service is the request workflow engine: pending product and sales requests
// come in, admin decisions go out, and every inventory mutation in the system
// flows through a decision here.
type Service interface {
	CreateProductRequest(ctx context.Context, userID uuid.UUID, input CreateProductRequestInput) (*ProductRequestDTO, error)
	GetProductRequest(ctx context.Context, id uuid.UUID) (*ProductRequestDTO, error)
	ListProductRequests(ctx context.Context, params ListParams) (*ProductRequestsPage, error)
	DecideProductRequest(ctx context.Context, requestID, adminID uuid.UUID, decision Decision) (*ProductRequestDTO, error)

	CreateSalesRequest(ctx context.Context, userID uuid.UUID, input CreateSalesRequestInput) (*SalesRequestDTO, error)
	GetSalesRequest(ctx context.Context, id uuid.UUID) (*SalesRequestDTO, error)
	ListSalesRequests(ctx context.Context, params ListParams) (*SalesRequestsPage, error)
	DecideSalesRequest(ctx context.Context, requestID, adminID uuid.UUID, decision SalesDecision) (*SalesRequestDTO, error)
}

type billCreator interface {
	CreateFromSale(ctx context.Context, tx *gorm.DB, sale *models.Sale, billType enums.BillType, details billing.BillDetailsInput) (*models.Bill, error)
}

type saleLedger interface {
	RecordVyapariSale(ctx context.Context, vyapariID uuid.UUID, sale *models.Sale, decidedBy uuid.UUID) (*khata.EntryDTO, error)
}

type mediaStore interface {
	UploadProductImage(ctx context.Context, input media.UploadInput) (string, error)
	DeleteByURL(ctx context.Context, imageURL string) error
	PlaceholderURL() string
}

type notifier interface {
	NotifyUser(ctx context.Context, userID uuid.UUID, note notifications.Note) error
	NotifyAdmins(ctx context.Context, note notifications.Note) error
}

type service struct {
	db       *db.Client
	repo     Repository
	products *product.Repository
	numbers  idgen.Generator
	billing  billCreator
	ledger   saleLedger
	media    mediaStore
	notifier notifier
	metrics  *metrics.WorkflowMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// ServiceParams wires the workflow engine.
type ServiceParams struct {
	DB       *db.Client
	Repo     Repository
	Products *product.Repository
	Numbers  idgen.Generator
	Billing  billCreator
	Ledger   saleLedger
	Media    mediaStore
	Notifier notifier
	Metrics  *metrics.WorkflowMetrics
	Logger   *logger.Logger
	Now      func() time.Time
}

// NewService constructs the workflow engine. Metrics, notifier, and ledger are
// optional; everything on the decision path itself is required.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("request repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Numbers == nil {
		return nil, fmt.Errorf("number generator required")
	}
	if params.Billing == nil {
		return nil, fmt.Errorf("billing service required")
	}
	if params.Media == nil {
		return nil, fmt.Errorf("media service required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}

	now := params.Now
	if now == nil {
		now = time.Now
	}

	return &service{
		db:       params.DB,
		repo:     params.Repo,
		products: params.Products,
		numbers:  params.Numbers,
		billing:  params.Billing,
		ledger:   params.Ledger,
		media:    params.Media,
		notifier: params.Notifier,
		metrics:  params.Metrics,
		logg:     params.Logger,
		now:      now,
	}, nil
}

func (s *service) CreateProductRequest(ctx context.Context, userID uuid.UUID, input CreateProductRequestInput) (*ProductRequestDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := s.validateProductRequestInput(ctx, input); err != nil {
		return nil, err
	}

	details := input.Details
	switch input.Type {
	case enums.ProductRequestTypeAdd:
		details = s.resolveImage(ctx, details, input.Image, true)
	case enums.ProductRequestTypeEdit:
		details = s.resolveImage(ctx, details, input.Image, false)
	}

	requestNumber, err := s.numbers.NextNumber(ctx, idgen.ScopeProductRequest, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate request number")
	}

	request := &models.ProductRequest{
		RequestNumber: requestNumber,
		Type:          input.Type,
		ProductID:     input.ProductID,
		Details:       details,
		IsLongSet:     input.IsLongSet,
		AdminAction:   input.AdminAction,
		Status:        enums.RequestStatusPending,
		RequestedBy:   userID,
	}
	created, err := s.repo.CreateProductRequest(ctx, request)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product request")
	}

	s.notifyAdmins(ctx, notifications.Note{
		Type:    enums.NotificationTypeProductRequest,
		Title:   fmt.Sprintf("Product request %s", created.RequestNumber),
		Message: fmt.Sprintf("A %s request is awaiting your decision.", created.Type),
	})
	return productRequestFromModel(created), nil
}

// resolveImage uploads the attached image if any. Add requests fall back to
// the placeholder URL so a flaky object store never blocks the request; edit
// requests leave the image unset so approval keeps the product's current one.
func (s *service) resolveImage(ctx context.Context, details *types.ProductRequestDetails, image *media.UploadInput, placeholderDefault bool) *types.ProductRequestDetails {
	if details == nil {
		details = &types.ProductRequestDetails{}
	}
	if image != nil {
		url, err := s.media.UploadProductImage(ctx, *image)
		if err != nil {
			s.logg.Warn(ctx, "product image upload failed")
			if placeholderDefault {
				placeholder := s.media.PlaceholderURL()
				details.ImageURL = &placeholder
			}
			return details
		}
		details.ImageURL = &url
		return details
	}
	if placeholderDefault && (details.ImageURL == nil || strings.TrimSpace(*details.ImageURL) == "") {
		placeholder := s.media.PlaceholderURL()
		details.ImageURL = &placeholder
	}
	return details
}

func (s *service) validateProductRequestInput(ctx context.Context, input CreateProductRequestInput) error {
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid request type")
	}

	switch input.Type {
	case enums.ProductRequestTypeAdd:
		if err := validateAddDetails(input.Details, input.IsLongSet); err != nil {
			return err
		}
	case enums.ProductRequestTypeEdit:
		if input.ProductID == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "product id is required for edits")
		}
		if input.Details == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "details are required for edits")
		}
		if err := s.requireProduct(ctx, *input.ProductID); err != nil {
			return err
		}
	case enums.ProductRequestTypeDelete:
		if input.ProductID == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "product id is required for deletes")
		}
		if err := s.requireProduct(ctx, *input.ProductID); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) requireProduct(ctx context.Context, id uuid.UUID) error {
	existing, err := s.products.FindByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if existing == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func validateAddDetails(details *types.ProductRequestDetails, isLongSet bool) error {
	if details == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "details are required for adds")
	}
	missing := func(field string) error {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s is required for adds", field))
	}
	if details.Name == nil || strings.TrimSpace(*details.Name) == "" {
		return missing("name")
	}
	if details.SKU == nil || strings.TrimSpace(*details.SKU) == "" {
		return missing("sku")
	}
	if details.Price == nil {
		return missing("price")
	}
	if details.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if details.Stock == nil {
		return missing("stock")
	}
	if *details.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}
	if details.Category == nil || strings.TrimSpace(*details.Category) == "" {
		return missing("category")
	}
	if details.Material == nil || strings.TrimSpace(*details.Material) == "" {
		return missing("material")
	}
	if isLongSet && len(details.LongSetParts) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "long set requires at least one part")
	}
	return nil
}

func (s *service) GetProductRequest(ctx context.Context, id uuid.UUID) (*ProductRequestDTO, error) {
	request, err := s.loadProductRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	return productRequestFromModel(request), nil
}

func (s *service) loadProductRequest(ctx context.Context, id uuid.UUID) (*models.ProductRequest, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id is required")
	}
	request, err := s.repo.FindProductRequestByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product request")
	}
	if request == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product request not found")
	}
	return request, nil
}

func (s *service) ListProductRequests(ctx context.Context, params ListParams) (*ProductRequestsPage, error) {
	cursor, err := parseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	rows, next, err := s.repo.ListProductRequests(ctx, listRequestsParams{
		Status:      params.Status,
		RequestedBy: params.RequestedBy,
		Limit:       params.Limit,
		Cursor:      cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list product requests")
	}

	page := &ProductRequestsPage{Requests: make([]ProductRequestDTO, 0, len(rows))}
	for i := range rows {
		page.Requests = append(page.Requests, *productRequestFromModel(&rows[i]))
	}
	page.NextCursor = encodeCursor(next)
	return page, nil
}

func (s *service) CreateSalesRequest(ctx context.Context, userID uuid.UUID, input CreateSalesRequestInput) (*SalesRequestDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}

	now := s.now()
	total := decimal.Zero
	items := make([]models.SalesRequestItem, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}
		prod, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if prod == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}

		unitPrice := prod.Price
		if item.UnitPrice != nil {
			if item.UnitPrice.IsNegative() {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must not be negative")
			}
			unitPrice = *item.UnitPrice
		}
		total = total.Add(unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))

		items = append(items, models.SalesRequestItem{
			ProductID:   prod.ID,
			Quantity:    item.Quantity,
			UnitPrice:   unitPrice,
			ProductName: prod.Name,
			Category:    prod.Category,
			Material:    prod.Material,
			ImageURL:    prod.ImageURL,
		})
	}

	requestNumber, err := s.numbers.NextNumber(ctx, idgen.ScopeSalesRequest, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate request number")
	}

	request := &models.SalesRequest{
		RequestNumber: requestNumber,
		CustomerName:  strings.TrimSpace(input.CustomerName),
		CustomerPhone: input.CustomerPhone,
		VyapariID:     input.VyapariID,
		TotalValue:    total,
		Status:        enums.RequestStatusPending,
		RequestedBy:   userID,
		Items:         items,
	}
	created, err := s.repo.CreateSalesRequest(ctx, request)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sales request")
	}

	s.notifyAdmins(ctx, notifications.Note{
		Type:    enums.NotificationTypeSalesRequest,
		Title:   fmt.Sprintf("Sales request %s", created.RequestNumber),
		Message: fmt.Sprintf("%s wants to buy %d item(s) for %s.", created.CustomerName, len(created.Items), created.TotalValue.StringFixed(2)),
	})
	return salesRequestFromModel(created), nil
}

func (s *service) GetSalesRequest(ctx context.Context, id uuid.UUID) (*SalesRequestDTO, error) {
	request, err := s.loadSalesRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	return salesRequestFromModel(request), nil
}

func (s *service) loadSalesRequest(ctx context.Context, id uuid.UUID) (*models.SalesRequest, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id is required")
	}
	request, err := s.repo.FindSalesRequestByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sales request")
	}
	if request == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sales request not found")
	}
	return request, nil
}

func (s *service) ListSalesRequests(ctx context.Context, params ListParams) (*SalesRequestsPage, error) {
	cursor, err := parseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	rows, next, err := s.repo.ListSalesRequests(ctx, listRequestsParams{
		Status:      params.Status,
		RequestedBy: params.RequestedBy,
		Limit:       params.Limit,
		Cursor:      cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales requests")
	}

	page := &SalesRequestsPage{Requests: make([]SalesRequestDTO, 0, len(rows))}
	for i := range rows {
		page.Requests = append(page.Requests, *salesRequestFromModel(&rows[i]))
	}
	page.NextCursor = encodeCursor(next)
	return page, nil
}

func (s *service) notifyAdmins(ctx context.Context, note notifications.Note) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyAdmins(ctx, note); err != nil {
		s.logg.Warn(ctx, "admin notification fan-out failed")
	}
}

func (s *service) notifyRequester(ctx context.Context, userID uuid.UUID, requestNumber string, status enums.RequestStatus) {
	if s.notifier == nil {
		return
	}
	noteType := enums.NotificationTypeRequestApproved
	if status == enums.RequestStatusRejected {
		noteType = enums.NotificationTypeRequestRejected
	}
	note := notifications.Note{
		Type:    noteType,
		Title:   fmt.Sprintf("Request %s %s", requestNumber, status),
		Message: fmt.Sprintf("Your request %s was %s.", requestNumber, status),
	}
	if err := s.notifier.NotifyUser(ctx, userID, note); err != nil {
		s.logg.Warn(ctx, "requester notification failed")
	}
}

func parseCursor(raw string) (*pagination.Cursor, error) {
	if raw == "" {
		return nil, nil
	}
	cursor, err := pagination.ParseCursor(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	return cursor, nil
}

func encodeCursor(cursor *pagination.Cursor) *string {
	if cursor == nil {
		return nil
	}
	encoded := pagination.EncodeCursor(*cursor)
	return &encoded
}
