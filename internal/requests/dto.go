package requests

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sonigems/saraf-backend/internal/billing"
	"github.com/sonigems/saraf-backend/internal/media"
	"github.com/sonigems/saraf-backend/pkg/db/models"
	"github.com/sonigems/saraf-backend/pkg/enums"
	"github.com/sonigems/saraf-backend/pkg/types"
)

// CreateProductRequestInput opens a pending product change request. Image is
// populated by the controller from the multipart part, never from JSON.
type CreateProductRequestInput struct {
	Type        enums.ProductRequestType     `json:"type" validate:"required"`
	ProductID   *uuid.UUID                   `json:"product_id"`
	Details     *types.ProductRequestDetails `json:"details"`
	IsLongSet   bool                         `json:"is_long_set"`
	AdminAction bool                         `json:"admin_action"`
	Image       *media.UploadInput           `json:"-"`
}

// SalesItemInput is one proposed line of a sales request. A nil UnitPrice
// means "sell at the product's current price".
type SalesItemInput struct {
	ProductID uuid.UUID        `json:"product_id" validate:"required"`
	Quantity  int              `json:"quantity" validate:"required,min=1"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// CreateSalesRequestInput opens a pending sales request.
type CreateSalesRequestInput struct {
	CustomerName  string           `json:"customer_name" validate:"required,min=1,max=120"`
	CustomerPhone *string          `json:"customer_phone"`
	VyapariID     *uuid.UUID       `json:"vyapari_id"`
	Items         []SalesItemInput `json:"items" validate:"required,min=1,dive"`
}

// Decision is an admin verdict on a product request.
type Decision struct {
	Status enums.RequestStatus `json:"status" validate:"required"`
}

// SalesDecision is an admin verdict on a sales request. BillType asks for a
// bill to be generated alongside the sale; BillDetails feeds its GST fields.
type SalesDecision struct {
	Status      enums.RequestStatus       `json:"status" validate:"required"`
	BillType    *enums.BillType           `json:"bill_type"`
	BillDetails *billing.BillDetailsInput `json:"bill_details"`
}

// ListParams filters request listings.
type ListParams struct {
	Status      *enums.RequestStatus
	RequestedBy *uuid.UUID
	Cursor      string
	Limit       int
}

// ProductRequestDTO is the API shape of a product change request.
type ProductRequestDTO struct {
	ID            uuid.UUID                    `json:"id"`
	RequestNumber string                       `json:"request_number"`
	Type          enums.ProductRequestType     `json:"type"`
	ProductID     *uuid.UUID                   `json:"product_id,omitempty"`
	Details       *types.ProductRequestDetails `json:"details,omitempty"`
	IsLongSet     bool                         `json:"is_long_set"`
	AdminAction   bool                         `json:"admin_action"`
	Status        enums.RequestStatus          `json:"status"`
	RequestedBy   uuid.UUID                    `json:"requested_by"`
	DecidedBy     *uuid.UUID                   `json:"decided_by,omitempty"`
	DecidedAt     *time.Time                   `json:"decided_at,omitempty"`
	CreatedAt     time.Time                    `json:"created_at"`
	UpdatedAt     time.Time                    `json:"updated_at"`
}

// SalesRequestItemDTO is one line of a sales request.
type SalesRequestItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ProductName string          `json:"product_name"`
	Category    string          `json:"category"`
	Material    string          `json:"material"`
	ImageURL    string          `json:"image_url,omitempty"`
}

// SalesRequestDTO is the API shape of a sales request.
type SalesRequestDTO struct {
	ID            uuid.UUID             `json:"id"`
	RequestNumber string                `json:"request_number"`
	CustomerName  string                `json:"customer_name"`
	CustomerPhone *string               `json:"customer_phone,omitempty"`
	VyapariID     *uuid.UUID            `json:"vyapari_id,omitempty"`
	TotalValue    decimal.Decimal       `json:"total_value"`
	Status        enums.RequestStatus   `json:"status"`
	Items         []SalesRequestItemDTO `json:"items"`
	RequestedBy   uuid.UUID             `json:"requested_by"`
	DecidedBy     *uuid.UUID            `json:"decided_by,omitempty"`
	DecidedAt     *time.Time            `json:"decided_at,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

// ProductRequestsPage is one page of product requests.
type ProductRequestsPage struct {
	Requests   []ProductRequestDTO
	NextCursor *string
}

// SalesRequestsPage is one page of sales requests.
type SalesRequestsPage struct {
	Requests   []SalesRequestDTO
	NextCursor *string
}

func productRequestFromModel(r *models.ProductRequest) *ProductRequestDTO {
	if r == nil {
		return nil
	}
	return &ProductRequestDTO{
		ID:            r.ID,
		RequestNumber: r.RequestNumber,
		Type:          r.Type,
		ProductID:     r.ProductID,
		Details:       r.Details,
		IsLongSet:     r.IsLongSet,
		AdminAction:   r.AdminAction,
		Status:        r.Status,
		RequestedBy:   r.RequestedBy,
		DecidedBy:     r.DecidedBy,
		DecidedAt:     r.DecidedAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func salesRequestFromModel(r *models.SalesRequest) *SalesRequestDTO {
	if r == nil {
		return nil
	}
	dto := &SalesRequestDTO{
		ID:            r.ID,
		RequestNumber: r.RequestNumber,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		VyapariID:     r.VyapariID,
		TotalValue:    r.TotalValue,
		Status:        r.Status,
		Items:         make([]SalesRequestItemDTO, 0, len(r.Items)),
		RequestedBy:   r.RequestedBy,
		DecidedBy:     r.DecidedBy,
		DecidedAt:     r.DecidedAt,
		CreatedAt:     r.CreatedAt,
	}
	for _, item := range r.Items {
		dto.Items = append(dto.Items, SalesRequestItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			ProductName: item.ProductName,
			Category:    item.Category,
			Material:    item.Material,
			ImageURL:    item.ImageURL,
		})
	}
	return dto
}
