package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sonigems/saraf-backend/pkg/enums"
)

// Party is a khata counterparty, either vyapari or karigar. A party must be
// approved before ledger entries or payments can reference it.
type Party struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Kind      enums.PartyKind      `gorm:"column:kind;type:party_kind;not null"`
	Name      string               `gorm:"column:name;not null"`
	Phone     string               `gorm:"column:phone;not null"`
	Address   *string              `gorm:"column:address"`
	Status    enums.ApprovalStatus `gorm:"column:status;type:approval_status;not null;default:'pending'"`
	CreatedBy uuid.UUID            `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
