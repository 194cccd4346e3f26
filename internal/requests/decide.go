package requests

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sonigems/saraf-backend/internal/billing"
	product "github.com/sonigems/saraf-backend/internal/products"
	"github.com/sonigems/saraf-backend/pkg/db"
	"github.com/sonigems/saraf-backend/pkg/db/models"
	"github.com/sonigems/saraf-backend/pkg/enums"
	pkgerrors "github.com/sonigems/saraf-backend/pkg/errors"
	"github.com/sonigems/saraf-backend/pkg/types"
)

const (
	metricKindProductRequest = "product_request"
	metricKindSalesRequest   = "sales_request"
)

// DecideProductRequest applies an admin verdict to a product change request.
// All database side effects commit atomically with the status swap; media
// cleanup runs after commit and is logged-and-swallowed.
func (s *service) DecideProductRequest(ctx context.Context, requestID, adminID uuid.UUID, decision Decision) (*ProductRequestDTO, error) {
	if err := validateVerdict(adminID, decision.Status); err != nil {
		return nil, err
	}
	request, err := s.loadProductRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	timer := s.startDecisionTimer(metricKindProductRequest)
	defer timer()

	var cleanupImage string
	now := s.now()

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		swapped, err := s.repo.WithTx(tx).TransitionProductRequest(ctx, request.ID, decision.Status, adminID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition product request")
		}
		if !swapped {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request is already decided")
		}
		if decision.Status != enums.RequestStatusApproved {
			return nil
		}

		products := s.products.WithTx(tx)
		switch request.Type {
		case enums.ProductRequestTypeAdd:
			return s.applyAdd(ctx, products, request)
		case enums.ProductRequestTypeEdit:
			oldImage, err := s.applyEdit(ctx, products, request)
			if err != nil {
				return err
			}
			cleanupImage = oldImage
			return nil
		case enums.ProductRequestTypeDelete:
			oldImage, err := s.applyDelete(ctx, products, request)
			if err != nil {
				return err
			}
			cleanupImage = oldImage
			return nil
		default:
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid request type")
		}
	})
	if err != nil {
		s.recordDecision(metricKindProductRequest, "error")
		return nil, err
	}

	if decision.Status == enums.RequestStatusRejected {
		s.cleanupRejectedImage(ctx, request)
	} else if cleanupImage != "" {
		s.deleteImage(ctx, cleanupImage)
	}

	s.notifyRequester(ctx, request.RequestedBy, request.RequestNumber, decision.Status)
	s.recordDecision(metricKindProductRequest, string(decision.Status))

	request.Status = decision.Status
	request.DecidedBy = &adminID
	request.DecidedAt = &now
	return productRequestFromModel(request), nil
}

func (s *service) applyAdd(ctx context.Context, products *product.Repository, request *models.ProductRequest) error {
	details := request.Details
	if err := validateAddDetails(details, request.IsLongSet); err != nil {
		return err
	}

	existing, err := products.FindBySKU(ctx, strings.TrimSpace(*details.SKU))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check sku")
	}
	if existing != nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
	}

	row := &models.Product{
		SKU:       strings.TrimSpace(*details.SKU),
		Name:      strings.TrimSpace(*details.Name),
		Price:     *details.Price,
		CostPrice: details.CostPrice,
		Stock:     *details.Stock,
		Category:  *details.Category,
		Material:  *details.Material,
		Supplier:  details.Supplier,
		IsLongSet: request.IsLongSet,
		ImageURL:  s.media.PlaceholderURL(),
	}
	if details.Description != nil {
		row.Description = *details.Description
	}
	if details.ImageURL != nil && *details.ImageURL != "" {
		row.ImageURL = *details.ImageURL
	}
	if details.LowStockThreshold != nil {
		row.LowStockThreshold = *details.LowStockThreshold
	}
	row.Parts = partsFromDetails(details.LongSetParts)

	if _, err := products.Create(ctx, row); err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return nil
}

// applyEdit merges non-nil detail fields onto the product. Returns the prior
// image URL when the edit replaced it, so the caller can clean up post-commit.
func (s *service) applyEdit(ctx context.Context, products *product.Repository, request *models.ProductRequest) (string, error) {
	if request.ProductID == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "product id is required for edits")
	}
	details := request.Details
	if details == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "details are required for edits")
	}

	prod, err := products.FindByID(ctx, *request.ProductID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if prod == nil {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "product no longer exists")
	}

	oldImage := prod.ImageURL

	if details.Name != nil {
		prod.Name = strings.TrimSpace(*details.Name)
	}
	if details.SKU != nil {
		prod.SKU = strings.TrimSpace(*details.SKU)
	}
	if details.Description != nil {
		prod.Description = *details.Description
	}
	if details.Price != nil {
		prod.Price = *details.Price
	}
	if details.CostPrice != nil {
		prod.CostPrice = details.CostPrice
	}
	if details.Stock != nil {
		if *details.Stock < 0 {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
		}
		prod.Stock = *details.Stock
	}
	if details.Category != nil {
		prod.Category = *details.Category
	}
	if details.Material != nil {
		prod.Material = *details.Material
	}
	if details.Supplier != nil {
		prod.Supplier = details.Supplier
	}
	if details.ImageURL != nil && *details.ImageURL != "" {
		prod.ImageURL = *details.ImageURL
	}
	if details.LowStockThreshold != nil {
		prod.LowStockThreshold = *details.LowStockThreshold
	}

	if _, err := products.Update(ctx, prod); err != nil {
		if db.IsUniqueViolation(err, "") {
			return "", pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	if len(details.LongSetParts) > 0 {
		if err := products.ReplaceParts(ctx, prod.ID, partsFromDetails(details.LongSetParts)); err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace parts")
		}
	}

	if prod.ImageURL != oldImage {
		return oldImage, nil
	}
	return "", nil
}

func (s *service) applyDelete(ctx context.Context, products *product.Repository, request *models.ProductRequest) (string, error) {
	if request.ProductID == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "product id is required for deletes")
	}
	prod, err := products.FindByID(ctx, *request.ProductID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if prod == nil {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "product no longer exists")
	}

	found, err := products.Delete(ctx, prod.ID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if !found {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "product no longer exists")
	}
	return prod.ImageURL, nil
}

// cleanupRejectedImage removes the image a rejected request uploaded. On edits
// the image is only removed when it differs from the product's current one, so
// a stock-only edit never loses the live image.
func (s *service) cleanupRejectedImage(ctx context.Context, request *models.ProductRequest) {
	if request.Details == nil || request.Details.ImageURL == nil || *request.Details.ImageURL == "" {
		return
	}
	proposed := *request.Details.ImageURL

	if request.Type == enums.ProductRequestTypeEdit && request.ProductID != nil {
		prod, err := s.products.FindByID(ctx, *request.ProductID)
		if err != nil {
			s.logg.Warn(ctx, "loading product for rejected-image cleanup failed")
			return
		}
		if prod != nil && prod.ImageURL == proposed {
			return
		}
	}
	s.deleteImage(ctx, proposed)
}

func (s *service) deleteImage(ctx context.Context, imageURL string) {
	if imageURL == "" || imageURL == s.media.PlaceholderURL() {
		return
	}
	if err := s.media.DeleteByURL(ctx, imageURL); err != nil {
		s.logg.Warn(ctx, "deleting product image failed")
	}
}

// DecideSalesRequest applies an admin verdict to a sales request. Approval
// decrements stock, records the sale, and optionally creates the bill, all in
// one transaction; the vyapari ledger entry stays best-effort outside it.
func (s *service) DecideSalesRequest(ctx context.Context, requestID, adminID uuid.UUID, decision SalesDecision) (*SalesRequestDTO, error) {
	if err := validateVerdict(adminID, decision.Status); err != nil {
		return nil, err
	}
	if decision.BillType != nil && !decision.BillType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid bill type")
	}
	request, err := s.loadSalesRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	timer := s.startDecisionTimer(metricKindSalesRequest)
	defer timer()

	now := s.now()
	var sale *models.Sale

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		swapped, err := s.repo.WithTx(tx).TransitionSalesRequest(ctx, request.ID, decision.Status, adminID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition sales request")
		}
		if !swapped {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request is already decided")
		}
		if decision.Status != enums.RequestStatusApproved {
			return nil
		}

		created, err := s.completeSale(ctx, tx, request, decision)
		if err != nil {
			return err
		}
		sale = created
		return nil
	})
	if err != nil {
		s.recordDecision(metricKindSalesRequest, "error")
		return nil, err
	}

	if sale != nil && request.VyapariID != nil {
		s.recordLedgerEntry(ctx, *request.VyapariID, sale, adminID)
	}

	s.notifyRequester(ctx, request.RequestedBy, request.RequestNumber, decision.Status)
	s.recordDecision(metricKindSalesRequest, string(decision.Status))

	request.Status = decision.Status
	request.DecidedBy = &adminID
	request.DecidedAt = &now
	return salesRequestFromModel(request), nil
}

// completeSale runs inside the approval transaction: stock floor check and
// decrement per line, sale row keyed by the request number, optional bill.
func (s *service) completeSale(ctx context.Context, tx *gorm.DB, request *models.SalesRequest, decision SalesDecision) (*models.Sale, error) {
	products := s.products.WithTx(tx)

	saleItems := make(types.SaleItems, 0, len(request.Items))
	for _, item := range request.Items {
		prod, err := products.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		ok, err := products.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
		}
		if !ok {
			if prod == nil {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %s no longer exists", item.ProductName))
			}
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("insufficient stock for %s", prod.Name))
		}

		saleItems = append(saleItems, snapshotItem(prod, item))
	}

	sale := &models.Sale{
		OrderNumber:  request.RequestNumber,
		CustomerName: request.CustomerName,
		TotalAmount:  request.TotalValue,
		Items:        saleItems,
		BillType:     decision.BillType,
		CreatedBy:    request.RequestedBy,
	}
	created, err := s.repo.WithTx(tx).CreateSale(ctx, sale)
	if err != nil {
		if db.IsUniqueViolation(err, "order_number") {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "sale is already recorded")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sale")
	}

	if decision.BillType != nil {
		details := billing.BillDetailsInput{}
		if decision.BillDetails != nil {
			details = *decision.BillDetails
		}
		if _, err := s.billing.CreateFromSale(ctx, tx, created, *decision.BillType, details); err != nil {
			return nil, err
		}
	}
	return created, nil
}

// snapshotItem captures the product at time of sale, falling back to the
// request-time snapshot if the product was altered or deleted in the meantime.
func snapshotItem(prod *models.Product, item models.SalesRequestItem) types.SaleItem {
	productID := item.ProductID
	snapshot := types.SaleItem{
		ProductID:   &productID,
		ProductName: item.ProductName,
		Category:    item.Category,
		Material:    item.Material,
		ImageURL:    item.ImageURL,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		LineTotal:   item.UnitPrice.Mul(decimalFromInt(item.Quantity)),
	}
	if prod != nil {
		snapshot.ProductName = prod.Name
		snapshot.Category = prod.Category
		snapshot.Material = prod.Material
		snapshot.ImageURL = prod.ImageURL
	}
	return snapshot
}

func (s *service) recordLedgerEntry(ctx context.Context, vyapariID uuid.UUID, sale *models.Sale, decidedBy uuid.UUID) {
	if s.ledger == nil {
		return
	}
	if _, err := s.ledger.RecordVyapariSale(ctx, vyapariID, sale, decidedBy); err != nil {
		s.logg.Warn(ctx, "vyapari ledger entry failed for sale "+sale.OrderNumber)
	}
}

func (s *service) startDecisionTimer(kind string) func() {
	if s.metrics == nil {
		return func() {}
	}
	start := s.now()
	return func() {
		s.metrics.ObserveDecision(kind, s.now().Sub(start))
	}
}

func (s *service) recordDecision(kind, outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncDecision(kind, outcome)
}

func partsFromDetails(parts []types.LongSetPartDetails) []models.LongSetPart {
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

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

func validateVerdict(adminID uuid.UUID, status enums.RequestStatus) error {
	if adminID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "admin id is required")
	}
	if !status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeValidation, "decision must be approved or rejected")
	}
	return nil
}
