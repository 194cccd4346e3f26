package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sonigems/saraf-backend/pkg/enums"
	"github.com/sonigems/saraf-backend/pkg/types"
)

// Bill is a tax or non-tax invoice generated from an approved sale. Customer
// and GST metadata stay editable; the items payload is frozen at creation.
type Bill struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	BillNumber      string          `gorm:"column:bill_number;not null;uniqueIndex"`
	BillType        enums.BillType  `gorm:"column:bill_type;type:bill_type;not null"`
	BillDate        time.Time       `gorm:"column:bill_date;not null"`
	DateOfSupply    time.Time       `gorm:"column:date_of_supply;not null"`
	TimeOfSupply    string          `gorm:"column:time_of_supply;not null;default:''"`
	CustomerName    string          `gorm:"column:customer_name;not null"`
	CustomerGSTIN   *string         `gorm:"column:customer_gstin"`
	CustomerAddress *string         `gorm:"column:customer_address"`
	CustomerState   *string         `gorm:"column:customer_state"`
	TransportMode   *string         `gorm:"column:transport_mode"`
	VehicleNo       *string         `gorm:"column:vehicle_no"`
	PlaceOfSupply   *string         `gorm:"column:place_of_supply"`
	HSNCode         *string         `gorm:"column:hsn_code"`
	IsTaxable       bool            `gorm:"column:is_taxable;not null;default:false"`
	CGSTPercent     decimal.Decimal `gorm:"column:cgst_percent;type:numeric(5,2);not null;default:0"`
	SGSTPercent     decimal.Decimal `gorm:"column:sgst_percent;type:numeric(5,2);not null;default:0"`
	IGSTPercent     decimal.Decimal `gorm:"column:igst_percent;type:numeric(5,2);not null;default:0"`
	CGSTAmount      decimal.Decimal `gorm:"column:cgst_amount;type:numeric(12,2);not null;default:0"`
	SGSTAmount      decimal.Decimal `gorm:"column:sgst_amount;type:numeric(12,2);not null;default:0"`
	IGSTAmount      decimal.Decimal `gorm:"column:igst_amount;type:numeric(12,2);not null;default:0"`
	SubtotalAmount  decimal.Decimal `gorm:"column:subtotal_amount;type:numeric(12,2);not null"`
	TotalAmount     decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Items           types.BillItems `gorm:"column:items;type:jsonb;serializer:json;not null"`
	SaleID          *uuid.UUID      `gorm:"column:sale_id;type:uuid"`
	CreatedBy       uuid.UUID       `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
