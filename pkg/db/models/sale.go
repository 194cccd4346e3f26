package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sonigems/saraf-backend/pkg/enums"
	"github.com/sonigems/saraf-backend/pkg/types"
)

// Sale is the immutable record of a completed sale. OrderNumber equals the
// originating sales request number; its unique index is the idempotence guard
// against a retried approval recording the sale twice.
type Sale struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber  string          `gorm:"column:order_number;not null;uniqueIndex:idx_sales_order_number"`
	CustomerName string          `gorm:"column:customer_name;not null"`
	TotalAmount  decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Items        types.SaleItems `gorm:"column:items;type:jsonb;serializer:json;not null"`
	BillType     *enums.BillType `gorm:"column:bill_type;type:bill_type"`
	CreatedBy    uuid.UUID       `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}
