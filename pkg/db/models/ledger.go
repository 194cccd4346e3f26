package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sonigems/saraf-backend/pkg/enums"
)

// LedgerEntry is a signed khata movement against a party. The sign convention
// is fixed: positive means the shop owes the party, negative means the party
// owes the shop. A sale to a vyapari therefore records -totalValue.
type LedgerEntry struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	EntryNumber string               `gorm:"column:entry_number;not null;uniqueIndex"`
	PartyID     uuid.UUID            `gorm:"column:party_id;type:uuid;not null;index"`
	Amount      decimal.Decimal      `gorm:"column:amount;type:numeric(12,2);not null"`
	Description string               `gorm:"column:description;not null;default:''"`
	SaleID      *uuid.UUID           `gorm:"column:sale_id;type:uuid"`
	Status      enums.ApprovalStatus `gorm:"column:status;type:approval_status;not null;default:'pending'"`
	CreatedBy   uuid.UUID            `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// LedgerPayment is an unsigned cash movement against a party; Direction says
// which way the money went. Only approved payments count toward the balance.
type LedgerPayment struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	PartyID   uuid.UUID              `gorm:"column:party_id;type:uuid;not null;index"`
	Amount    decimal.Decimal        `gorm:"column:amount;type:numeric(12,2);not null"`
	Mode      enums.PaymentMode      `gorm:"column:mode;type:payment_mode;not null"`
	Direction enums.PaymentDirection `gorm:"column:direction;type:payment_direction;not null"`
	Note      *string                `gorm:"column:note"`
	Status    enums.ApprovalStatus   `gorm:"column:status;type:approval_status;not null;default:'pending'"`
	CreatedBy uuid.UUID              `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
