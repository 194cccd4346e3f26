package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sonigems/saraf-backend/pkg/enums"
	"github.com/sonigems/saraf-backend/pkg/types"
)

// ProductRequest is the pending/approved/rejected envelope around a proposed
// add, edit, or delete. Details carries the proposed field values for add and
// edit; delete requests only need the target product id.
type ProductRequest struct {
	ID            uuid.UUID                    `gorm:"column:id;type:uuid;primaryKey"`
	RequestNumber string                       `gorm:"column:request_number;not null;uniqueIndex"`
	Type          enums.ProductRequestType     `gorm:"column:type;type:product_request_type;not null"`
	ProductID     *uuid.UUID                   `gorm:"column:product_id;type:uuid"`
	Details       *types.ProductRequestDetails `gorm:"column:details;type:jsonb;serializer:json"`
	IsLongSet     bool                         `gorm:"column:is_long_set;not null;default:false"`
	AdminAction   bool                         `gorm:"column:admin_action;not null;default:false"`
	Status        enums.RequestStatus          `gorm:"column:status;type:request_status;not null;default:'pending'"`
	RequestedBy   uuid.UUID                    `gorm:"column:requested_by;type:uuid;not null"`
	DecidedBy     *uuid.UUID                   `gorm:"column:decided_by;type:uuid"`
	DecidedAt     *time.Time                   `gorm:"column:decided_at"`
	CreatedAt     time.Time                    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                    `gorm:"column:updated_at;autoUpdateTime"`
}
