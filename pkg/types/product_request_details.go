package types

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LongSetPartDetails carries one proposed part of a long-set product. Parts are
// replaced wholesale when an edit request is approved; no part-level identity
// survives across edits.
type LongSetPartDetails struct {
	PartName        string          `json:"part_name"`
	PartDescription *string         `json:"part_description,omitempty"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	KarigarID       *uuid.UUID      `json:"karigar_id,omitempty"`
}

// ProductRequestDetails is the proposed field set attached to add/edit product
// requests. Pointer fields distinguish "leave unchanged" from "set to zero
// value" on edits; add requests must populate every required field.
type ProductRequestDetails struct {
	Name              *string              `json:"name,omitempty"`
	SKU               *string              `json:"sku,omitempty"`
	Description       *string              `json:"description,omitempty"`
	Price             *decimal.Decimal     `json:"price,omitempty"`
	CostPrice         *decimal.Decimal     `json:"cost_price,omitempty"`
	Stock             *int                 `json:"stock,omitempty"`
	Category          *string              `json:"category,omitempty"`
	Material          *string              `json:"material,omitempty"`
	Supplier          *string              `json:"supplier,omitempty"`
	ImageURL          *string              `json:"image_url,omitempty"`
	LowStockThreshold *int                 `json:"low_stock_threshold,omitempty"`
	LongSetParts      []LongSetPartDetails `json:"long_set_parts,omitempty"`
}
