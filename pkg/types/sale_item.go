package types

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleItem is the immutable line-item snapshot stored on a completed sale. It
// captures product fields at time of sale so later edits or deletes of the
// product never rewrite history.
type SaleItem struct {
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	Category    string          `json:"category"`
	Material    string          `json:"material"`
	ImageURL    string          `json:"image_url,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// SaleItems is the jsonb column payload for models.Sale.
type SaleItems []SaleItem
