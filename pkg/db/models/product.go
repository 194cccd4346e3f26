package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the canonical inventory record. Rows are only created, mutated,
// and deleted through approved requests or the long-set CRUD surface; stock is
// additionally decremented by sales-request approval.
type Product struct {
	ID                uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	SKU               string           `gorm:"column:sku;not null;uniqueIndex"`
	Name              string           `gorm:"column:name;not null"`
	Description       string           `gorm:"column:description;not null;default:''"`
	Price             decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	CostPrice         *decimal.Decimal `gorm:"column:cost_price;type:numeric(12,2)"`
	Stock             int              `gorm:"column:stock;not null;default:0"`
	Category          string           `gorm:"column:category;not null"`
	Material          string           `gorm:"column:material;not null"`
	ImageURL          string           `gorm:"column:image_url;not null;default:''"`
	Supplier          *string          `gorm:"column:supplier"`
	LowStockThreshold int              `gorm:"column:low_stock_threshold;not null;default:5"`
	IsLongSet         bool             `gorm:"column:is_long_set;not null;default:false"`
	Parts             []LongSetPart    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// LongSetPart is one ordered component of a long-set product, optionally
// attributed to the karigar who made it. The parts list is replaced wholesale
// on every edit.
type LongSetPart struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	Position        int             `gorm:"column:position;not null"`
	PartName        string          `gorm:"column:part_name;not null"`
	PartDescription *string         `gorm:"column:part_description"`
	CostPrice       decimal.Decimal `gorm:"column:cost_price;type:numeric(12,2);not null"`
	KarigarID       *uuid.UUID      `gorm:"column:karigar_id;type:uuid"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
