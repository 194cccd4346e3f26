package types

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillLineItem mirrors the sale snapshot on the bill document. Line items are
// immutable after the bill is created; only customer/GST metadata may change.
type BillLineItem struct {
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	Category    string          `json:"category"`
	HSNCode     string          `json:"hsn_code,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// BillItemsMeta keeps the GST percentages alongside the items so a rendered
// bill can be reconstructed without re-deriving rates from amounts.
type BillItemsMeta struct {
	CGSTPercent decimal.Decimal `json:"cgst_percent"`
	SGSTPercent decimal.Decimal `json:"sgst_percent"`
	IGSTPercent decimal.Decimal `json:"igst_percent"`
	IsTaxable   bool            `json:"is_taxable"`
}

// BillItems is the jsonb column payload for models.Bill.
type BillItems struct {
	Lines []BillLineItem `json:"lines"`
	Meta  BillItemsMeta  `json:"meta"`
}
