package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sonigems/saraf-backend/pkg/db/models"
)

// ProductDTO is the public representation of a product and its parts.
type ProductDTO struct {
	ID                uuid.UUID        `json:"id"`
	SKU               string           `json:"sku"`
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	Price             decimal.Decimal  `json:"price"`
	CostPrice         *decimal.Decimal `json:"cost_price,omitempty"`
	Stock             int              `json:"stock"`
	Category          string           `json:"category"`
	Material          string           `json:"material"`
	ImageURL          string           `json:"image_url"`
	Supplier          *string          `json:"supplier,omitempty"`
	LowStockThreshold int              `json:"low_stock_threshold"`
	IsLongSet         bool             `json:"is_long_set"`
	Parts             []PartDTO        `json:"parts,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// PartDTO is one long-set part.
type PartDTO struct {
	ID              uuid.UUID       `json:"id"`
	Position        int             `json:"position"`
	PartName        string          `json:"part_name"`
	PartDescription *string         `json:"part_description,omitempty"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	KarigarID       *uuid.UUID      `json:"karigar_id,omitempty"`
}

// PartInput models one long-set part on create/update.
type PartInput struct {
	PartName        string          `json:"part_name" validate:"required"`
	PartDescription *string         `json:"part_description"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	KarigarID       *uuid.UUID      `json:"karigar_id"`
}

// LongSetInput models the admin-facing long-set create/update payload.
type LongSetInput struct {
	SKU               string           `json:"sku" validate:"required"`
	Name              string           `json:"name" validate:"required"`
	Description       string           `json:"description"`
	Price             decimal.Decimal  `json:"price"`
	CostPrice         *decimal.Decimal `json:"cost_price"`
	Stock             int              `json:"stock" validate:"gte=0"`
	Category          string           `json:"category" validate:"required"`
	Material          string           `json:"material" validate:"required"`
	ImageURL          string           `json:"image_url"`
	Supplier          *string          `json:"supplier"`
	LowStockThreshold *int             `json:"low_stock_threshold"`
	Parts             []PartInput      `json:"parts" validate:"required,min=1,dive"`
}

// FromModel converts a product row (and its preloaded parts) into a DTO.
func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}

	parts := make([]PartDTO, 0, len(p.Parts))
	for _, part := range p.Parts {
		parts = append(parts, PartDTO{
			ID:              part.ID,
			Position:        part.Position,
			PartName:        part.PartName,
			PartDescription: part.PartDescription,
			CostPrice:       part.CostPrice,
			KarigarID:       part.KarigarID,
		})
	}

	return &ProductDTO{
		ID:                p.ID,
		SKU:               p.SKU,
		Name:              p.Name,
		Description:       p.Description,
		Price:             p.Price,
		CostPrice:         p.CostPrice,
		Stock:             p.Stock,
		Category:          p.Category,
		Material:          p.Material,
		ImageURL:          p.ImageURL,
		Supplier:          p.Supplier,
		LowStockThreshold: p.LowStockThreshold,
		IsLongSet:         p.IsLongSet,
		Parts:             parts,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
