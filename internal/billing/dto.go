package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sonigems/saraf-backend/pkg/db/models"
	"github.com/sonigems/saraf-backend/pkg/enums"
	"github.com/sonigems/saraf-backend/pkg/types"
)

// BillDetailsInput carries the customer and GST metadata supplied alongside a
// sales-request approval. Nil percentage fields fall back to the configured
// defaults when the bill is taxable.
type BillDetailsInput struct {
	CustomerGSTIN   *string          `json:"customer_gstin" validate:"omitempty,max=15"`
	CustomerAddress *string          `json:"customer_address"`
	CustomerState   *string          `json:"customer_state"`
	TransportMode   *string          `json:"transport_mode"`
	VehicleNo       *string          `json:"vehicle_no"`
	PlaceOfSupply   *string          `json:"place_of_supply"`
	HSNCode         *string          `json:"hsn_code"`
	IsTaxable       bool             `json:"is_taxable"`
	CGSTPercent     *decimal.Decimal `json:"cgst_percent"`
	SGSTPercent     *decimal.Decimal `json:"sgst_percent"`
	IGSTPercent     *decimal.Decimal `json:"igst_percent"`
	SupplyDateTime  *time.Time       `json:"supply_date_time"`
}

// UpdateBillInput is the post-creation edit surface. Line items are immutable
// once the bill exists, so no item field is accepted here.
type UpdateBillInput struct {
	CustomerName    *string          `json:"customer_name" validate:"omitempty,min=1"`
	CustomerGSTIN   *string          `json:"customer_gstin" validate:"omitempty,max=15"`
	CustomerAddress *string          `json:"customer_address"`
	CustomerState   *string          `json:"customer_state"`
	TransportMode   *string          `json:"transport_mode"`
	VehicleNo       *string          `json:"vehicle_no"`
	PlaceOfSupply   *string          `json:"place_of_supply"`
	HSNCode         *string          `json:"hsn_code"`
	IsTaxable       *bool            `json:"is_taxable"`
	CGSTPercent     *decimal.Decimal `json:"cgst_percent"`
	SGSTPercent     *decimal.Decimal `json:"sgst_percent"`
	IGSTPercent     *decimal.Decimal `json:"igst_percent"`
	SupplyDateTime  *time.Time       `json:"supply_date_time"`
}

// ListParams filters the bill listing.
type ListParams struct {
	BillType *enums.BillType
	Cursor   string
	Limit    int
}

// ListResult is one page of bills.
type ListResult struct {
	Bills      []BillDTO
	NextCursor *string
}

// BillDTO is the API shape of a bill.
type BillDTO struct {
	ID              uuid.UUID       `json:"id"`
	BillNumber      string          `json:"bill_number"`
	BillType        enums.BillType  `json:"bill_type"`
	BillDate        time.Time       `json:"bill_date"`
	DateOfSupply    time.Time       `json:"date_of_supply"`
	TimeOfSupply    string          `json:"time_of_supply"`
	CustomerName    string          `json:"customer_name"`
	CustomerGSTIN   *string         `json:"customer_gstin,omitempty"`
	CustomerAddress *string         `json:"customer_address,omitempty"`
	CustomerState   *string         `json:"customer_state,omitempty"`
	TransportMode   *string         `json:"transport_mode,omitempty"`
	VehicleNo       *string         `json:"vehicle_no,omitempty"`
	PlaceOfSupply   *string         `json:"place_of_supply,omitempty"`
	HSNCode         *string         `json:"hsn_code,omitempty"`
	IsTaxable       bool            `json:"is_taxable"`
	CGSTPercent     decimal.Decimal `json:"cgst_percent"`
	SGSTPercent     decimal.Decimal `json:"sgst_percent"`
	IGSTPercent     decimal.Decimal `json:"igst_percent"`
	CGSTAmount      decimal.Decimal `json:"cgst_amount"`
	SGSTAmount      decimal.Decimal `json:"sgst_amount"`
	IGSTAmount      decimal.Decimal `json:"igst_amount"`
	SubtotalAmount  decimal.Decimal `json:"subtotal_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Items           types.BillItems `json:"items"`
	SaleID          *uuid.UUID      `json:"sale_id,omitempty"`
	CreatedBy       uuid.UUID       `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// FromModel converts a persisted bill into its DTO.
func FromModel(b *models.Bill) *BillDTO {
	if b == nil {
		return nil
	}
	return &BillDTO{
		ID:              b.ID,
		BillNumber:      b.BillNumber,
		BillType:        b.BillType,
		BillDate:        b.BillDate,
		DateOfSupply:    b.DateOfSupply,
		TimeOfSupply:    b.TimeOfSupply,
		CustomerName:    b.CustomerName,
		CustomerGSTIN:   b.CustomerGSTIN,
		CustomerAddress: b.CustomerAddress,
		CustomerState:   b.CustomerState,
		TransportMode:   b.TransportMode,
		VehicleNo:       b.VehicleNo,
		PlaceOfSupply:   b.PlaceOfSupply,
		HSNCode:         b.HSNCode,
		IsTaxable:       b.IsTaxable,
		CGSTPercent:     b.CGSTPercent,
		SGSTPercent:     b.SGSTPercent,
		IGSTPercent:     b.IGSTPercent,
		CGSTAmount:      b.CGSTAmount,
		SGSTAmount:      b.SGSTAmount,
		IGSTAmount:      b.IGSTAmount,
		SubtotalAmount:  b.SubtotalAmount,
		TotalAmount:     b.TotalAmount,
		Items:           b.Items,
		SaleID:          b.SaleID,
		CreatedBy:       b.CreatedBy,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
