package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sonigems/saraf-backend/pkg/enums"
)

// SalesRequest is a proposed sale awaiting an admin decision. Line items carry
// a denormalized product snapshot taken at request time so approval can fall
// back to it if the product was altered or deleted in the meantime.
type SalesRequest struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	RequestNumber string              `gorm:"column:request_number;not null;uniqueIndex"`
	CustomerName  string              `gorm:"column:customer_name;not null"`
	CustomerPhone *string             `gorm:"column:customer_phone"`
	VyapariID     *uuid.UUID          `gorm:"column:vyapari_id;type:uuid"`
	TotalValue    decimal.Decimal     `gorm:"column:total_value;type:numeric(12,2);not null"`
	Status        enums.RequestStatus `gorm:"column:status;type:request_status;not null;default:'pending'"`
	RequestedBy   uuid.UUID           `gorm:"column:requested_by;type:uuid;not null"`
	DecidedBy     *uuid.UUID          `gorm:"column:decided_by;type:uuid"`
	DecidedAt     *time.Time          `gorm:"column:decided_at"`
	Items         []SalesRequestItem  `gorm:"foreignKey:SalesRequestID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// SalesRequestItem is one proposed line of a sales request.
type SalesRequestItem struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SalesRequestID uuid.UUID       `gorm:"column:sales_request_id;type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Quantity       int             `gorm:"column:quantity;not null"`
	UnitPrice      decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	ProductName    string          `gorm:"column:product_name;not null"`
	Category       string          `gorm:"column:category;not null"`
	Material       string          `gorm:"column:material;not null"`
	ImageURL       string          `gorm:"column:image_url;not null;default:''"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
}
