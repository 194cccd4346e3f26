package khata

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sonigems/saraf-backend/pkg/db/models"
	"github.com/sonigems/saraf-backend/pkg/enums"
)

// PartyInput creates a pending khata counterparty.
type PartyInput struct {
	Kind    enums.PartyKind `json:"kind" validate:"required"`
	Name    string          `json:"name" validate:"required,min=1,max=120"`
	Phone   string          `json:"phone" validate:"required,min=6,max=20"`
	Address *string         `json:"address"`
}

// EntryInput records a signed khata movement against a party. Positive means
// the shop owes the party, negative means the party owes the shop.
type EntryInput struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"required,min=1"`
	SaleID      *uuid.UUID      `json:"sale_id"`
}

// PaymentInput records a cash movement; Direction says which way it went.
type PaymentInput struct {
	Amount    decimal.Decimal        `json:"amount"`
	Mode      enums.PaymentMode      `json:"mode" validate:"required"`
	Direction enums.PaymentDirection `json:"direction" validate:"required"`
	Note      *string                `json:"note"`
}

// DecisionInput carries an admin's approve/reject verdict.
type DecisionInput struct {
	Status enums.ApprovalStatus `json:"status" validate:"required"`
}

// ListPartiesParams filters the party listing.
type ListPartiesParams struct {
	Kind   *enums.PartyKind
	Status *enums.ApprovalStatus
	Search string
	Cursor string
	Limit  int
}

// ListEntriesParams pages a party's ledger entries.
type ListEntriesParams struct {
	PartyID uuid.UUID
	Cursor  string
	Limit   int
}

// ListPaymentsParams pages a party's payments.
type ListPaymentsParams struct {
	PartyID uuid.UUID
	Cursor  string
	Limit   int
}

// PartyDTO is the API shape of a khata counterparty.
type PartyDTO struct {
	ID        uuid.UUID            `json:"id"`
	Kind      enums.PartyKind      `json:"kind"`
	Name      string               `json:"name"`
	Phone     string               `json:"phone"`
	Address   *string              `json:"address,omitempty"`
	Status    enums.ApprovalStatus `json:"status"`
	CreatedBy uuid.UUID            `json:"created_by"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// EntryDTO is the API shape of a ledger entry.
type EntryDTO struct {
	ID          uuid.UUID            `json:"id"`
	EntryNumber string               `json:"entry_number"`
	PartyID     uuid.UUID            `json:"party_id"`
	Amount      decimal.Decimal      `json:"amount"`
	Description string               `json:"description"`
	SaleID      *uuid.UUID           `json:"sale_id,omitempty"`
	Status      enums.ApprovalStatus `json:"status"`
	CreatedBy   uuid.UUID            `json:"created_by"`
	CreatedAt   time.Time            `json:"created_at"`
}

// PaymentDTO is the API shape of a ledger payment.
type PaymentDTO struct {
	ID        uuid.UUID              `json:"id"`
	PartyID   uuid.UUID              `json:"party_id"`
	Amount    decimal.Decimal        `json:"amount"`
	Mode      enums.PaymentMode      `json:"mode"`
	Direction enums.PaymentDirection `json:"direction"`
	Note      *string                `json:"note,omitempty"`
	Status    enums.ApprovalStatus   `json:"status"`
	CreatedBy uuid.UUID              `json:"created_by"`
	CreatedAt time.Time              `json:"created_at"`
}

// BalanceDTO is a party's running position. Positive balance: the shop owes
// the party. Only approved rows count.
type BalanceDTO struct {
	PartyID       uuid.UUID       `json:"party_id"`
	Balance       decimal.Decimal `json:"balance"`
	EntriesTotal  decimal.Decimal `json:"entries_total"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	TotalReceived decimal.Decimal `json:"total_received"`
}

func partyFromModel(p *models.Party) *PartyDTO {
	if p == nil {
		return nil
	}
	return &PartyDTO{
		ID:        p.ID,
		Kind:      p.Kind,
		Name:      p.Name,
		Phone:     p.Phone,
		Address:   p.Address,
		Status:    p.Status,
		CreatedBy: p.CreatedBy,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func entryFromModel(e *models.LedgerEntry) *EntryDTO {
	if e == nil {
		return nil
	}
	return &EntryDTO{
		ID:          e.ID,
		EntryNumber: e.EntryNumber,
		PartyID:     e.PartyID,
		Amount:      e.Amount,
		Description: e.Description,
		SaleID:      e.SaleID,
		Status:      e.Status,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
}

func paymentFromModel(p *models.LedgerPayment) *PaymentDTO {
	if p == nil {
		return nil
	}
	return &PaymentDTO{
		ID:        p.ID,
		PartyID:   p.PartyID,
		Amount:    p.Amount,
		Mode:      p.Mode,
		Direction: p.Direction,
		Note:      p.Note,
		Status:    p.Status,
		CreatedBy: p.CreatedBy,
		CreatedAt: p.CreatedAt,
	}
}
