package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sonigems/saraf-backend/internal/idgen"
	"github.com/sonigems/saraf-backend/pkg/config"
	"github.com/sonigems/saraf-backend/pkg/db/models"
	"github.com/sonigems/saraf-backend/pkg/enums"
	pkgerrors "github.com/sonigems/saraf-backend/pkg/errors"
	"github.com/sonigems/saraf-backend/pkg/logger"
	"github.com/sonigems/saraf-backend/pkg/pagination"
	"github.com/sonigems/saraf-backend/pkg/types"
)

// Service creates and maintains bills. Bills are born inside the sales
// approval transaction; afterwards only customer and GST metadata may change.
type Service interface {
	CreateFromSale(ctx context.Context, tx *gorm.DB, sale *models.Sale, billType enums.BillType, details BillDetailsInput) (*models.Bill, error)
	Get(ctx context.Context, id uuid.UUID) (*BillDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	UpdateMetadata(ctx context.Context, id uuid.UUID, input UpdateBillInput) (*BillDTO, error)
}

type service struct {
	repo     Repository
	numbers  idgen.Generator
	defaults TaxRates
	logg     *logger.Logger
	now      func() time.Time
}

// ServiceParams wires the billing service.
type ServiceParams struct {
	Repo    Repository
	Numbers idgen.Generator
	Config  config.BillingConfig
	Logger  *logger.Logger
	Now     func() time.Time
}

// NewService constructs the billing service. Default GST percentages come from
// configuration and are validated here so a bad value fails at boot.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("bill repository required")
	}
	if params.Numbers == nil {
		return nil, fmt.Errorf("number generator required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}

	defaults, err := parseDefaultRates(params.Config)
	if err != nil {
		return nil, err
	}

	now := params.Now
	if now == nil {
		now = time.Now
	}

	return &service{
		repo:     params.Repo,
		numbers:  params.Numbers,
		defaults: defaults,
		logg:     params.Logger,
		now:      now,
	}, nil
}

func parseDefaultRates(cfg config.BillingConfig) (TaxRates, error) {
	cgst, err := decimal.NewFromString(cfg.DefaultCGSTPercent)
	if err != nil {
		return TaxRates{}, fmt.Errorf("parsing default cgst percent: %w", err)
	}
	sgst, err := decimal.NewFromString(cfg.DefaultSGSTPercent)
	if err != nil {
		return TaxRates{}, fmt.Errorf("parsing default sgst percent: %w", err)
	}
	igst, err := decimal.NewFromString(cfg.DefaultIGSTPercent)
	if err != nil {
		return TaxRates{}, fmt.Errorf("parsing default igst percent: %w", err)
	}
	return TaxRates{CGSTPercent: cgst, SGSTPercent: sgst, IGSTPercent: igst}, nil
}

// CreateFromSale writes the bill row inside the caller's transaction so the
// bill commits or rolls back together with the sale it documents.
func (s *service) CreateFromSale(ctx context.Context, tx *gorm.DB, sale *models.Sale, billType enums.BillType, details BillDetailsInput) (*models.Bill, error) {
	if sale == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale is required")
	}
	if !billType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid bill type")
	}

	now := s.now()

	repo := s.repo
	numbers := s.numbers
	if tx != nil {
		repo = s.repo.WithTx(tx)
		numbers = s.numbers.WithTx(tx)
	}

	billNumber, err := numbers.NextNumber(ctx, idgen.ScopeBill, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate bill number")
	}

	taxable := billType == enums.BillTypeGST && details.IsTaxable
	rates := s.ratesFrom(details)
	breakdown := ComputeTax(sale.TotalAmount, rates, taxable)

	supplyAt := now
	if details.SupplyDateTime != nil {
		supplyAt = *details.SupplyDateTime
	}

	bill := &models.Bill{
		BillNumber:      billNumber,
		BillType:        billType,
		BillDate:        now,
		DateOfSupply:    supplyAt,
		TimeOfSupply:    supplyAt.Format("15:04"),
		CustomerName:    sale.CustomerName,
		CustomerGSTIN:   details.CustomerGSTIN,
		CustomerAddress: details.CustomerAddress,
		CustomerState:   details.CustomerState,
		TransportMode:   details.TransportMode,
		VehicleNo:       details.VehicleNo,
		PlaceOfSupply:   details.PlaceOfSupply,
		HSNCode:         details.HSNCode,
		IsTaxable:       taxable,
		CGSTPercent:     rates.CGSTPercent,
		SGSTPercent:     rates.SGSTPercent,
		IGSTPercent:     rates.IGSTPercent,
		CGSTAmount:      breakdown.CGSTAmount,
		SGSTAmount:      breakdown.SGSTAmount,
		IGSTAmount:      breakdown.IGSTAmount,
		SubtotalAmount:  sale.TotalAmount,
		TotalAmount:     breakdown.Total,
		Items:           billItemsFromSale(sale, details, rates, taxable),
		SaleID:          &sale.ID,
		CreatedBy:       sale.CreatedBy,
	}

	created, err := repo.Create(ctx, bill)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create bill")
	}
	return created, nil
}

func (s *service) ratesFrom(details BillDetailsInput) TaxRates {
	rates := s.defaults
	if details.CGSTPercent != nil {
		rates.CGSTPercent = *details.CGSTPercent
	}
	if details.SGSTPercent != nil {
		rates.SGSTPercent = *details.SGSTPercent
	}
	if details.IGSTPercent != nil {
		rates.IGSTPercent = *details.IGSTPercent
	}
	return rates
}

func billItemsFromSale(sale *models.Sale, details BillDetailsInput, rates TaxRates, taxable bool) types.BillItems {
	lines := make([]types.BillLineItem, 0, len(sale.Items))
	hsn := ""
	if details.HSNCode != nil {
		hsn = *details.HSNCode
	}
	for _, item := range sale.Items {
		lines = append(lines, types.BillLineItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Category:    item.Category,
			HSNCode:     hsn,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}
	return types.BillItems{
		Lines: lines,
		Meta: types.BillItemsMeta{
			CGSTPercent: rates.CGSTPercent,
			SGSTPercent: rates.SGSTPercent,
			IGSTPercent: rates.IGSTPercent,
			IsTaxable:   taxable,
		},
	}
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*BillDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bill id is required")
	}
	bill, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bill")
	}
	if bill == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bill not found")
	}
	return FromModel(bill), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	var cursor *pagination.Cursor
	if params.Cursor != "" {
		parsed, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
		}
		cursor = parsed
	}

	bills, next, err := s.repo.List(ctx, listBillsParams{
		BillType: params.BillType,
		Limit:    params.Limit,
		Cursor:   cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bills")
	}

	result := &ListResult{Bills: make([]BillDTO, 0, len(bills))}
	for i := range bills {
		result.Bills = append(result.Bills, *FromModel(&bills[i]))
	}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		result.NextCursor = &encoded
	}
	return result, nil
}

// UpdateMetadata edits the mutable surface of a bill. Tax amounts are
// recomputed from the stored subtotal when a GST field changes, so the frozen
// line items always reconcile with the totals on the row.
func (s *service) UpdateMetadata(ctx context.Context, id uuid.UUID, input UpdateBillInput) (*BillDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bill id is required")
	}

	bill, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bill")
	}
	if bill == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bill not found")
	}

	if input.CustomerName != nil {
		bill.CustomerName = *input.CustomerName
	}
	if input.CustomerGSTIN != nil {
		bill.CustomerGSTIN = input.CustomerGSTIN
	}
	if input.CustomerAddress != nil {
		bill.CustomerAddress = input.CustomerAddress
	}
	if input.CustomerState != nil {
		bill.CustomerState = input.CustomerState
	}
	if input.TransportMode != nil {
		bill.TransportMode = input.TransportMode
	}
	if input.VehicleNo != nil {
		bill.VehicleNo = input.VehicleNo
	}
	if input.PlaceOfSupply != nil {
		bill.PlaceOfSupply = input.PlaceOfSupply
	}
	if input.HSNCode != nil {
		bill.HSNCode = input.HSNCode
	}
	if input.SupplyDateTime != nil {
		bill.DateOfSupply = *input.SupplyDateTime
		bill.TimeOfSupply = input.SupplyDateTime.Format("15:04")
	}

	taxChanged := input.IsTaxable != nil || input.CGSTPercent != nil || input.SGSTPercent != nil || input.IGSTPercent != nil
	if taxChanged {
		if input.IsTaxable != nil {
			bill.IsTaxable = *input.IsTaxable && bill.BillType == enums.BillTypeGST
		}
		if input.CGSTPercent != nil {
			bill.CGSTPercent = *input.CGSTPercent
		}
		if input.SGSTPercent != nil {
			bill.SGSTPercent = *input.SGSTPercent
		}
		if input.IGSTPercent != nil {
			bill.IGSTPercent = *input.IGSTPercent
		}
		rates := TaxRates{CGSTPercent: bill.CGSTPercent, SGSTPercent: bill.SGSTPercent, IGSTPercent: bill.IGSTPercent}
		breakdown := ComputeTax(bill.SubtotalAmount, rates, bill.IsTaxable)
		bill.CGSTAmount = breakdown.CGSTAmount
		bill.SGSTAmount = breakdown.SGSTAmount
		bill.IGSTAmount = breakdown.IGSTAmount
		bill.TotalAmount = breakdown.Total
		bill.Items.Meta = types.BillItemsMeta{
			CGSTPercent: bill.CGSTPercent,
			SGSTPercent: bill.SGSTPercent,
			IGSTPercent: bill.IGSTPercent,
			IsTaxable:   bill.IsTaxable,
		}
	}

	updated, err := s.repo.Update(ctx, bill)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update bill")
	}
	return FromModel(updated), nil
}
