package khata

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sonigems/saraf-backend/pkg/db/models"
	"github.com/sonigems/saraf-backend/pkg/enums"
	"github.com/sonigems/saraf-backend/pkg/pagination"
)

// Repository persists khata parties, ledger entries, and payments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateParty(ctx context.Context, party *models.Party) (*models.Party, error)
	FindPartyByID(ctx context.Context, id uuid.UUID) (*models.Party, error)
	ListParties(ctx context.Context, params listPartiesParams) ([]models.Party, *pagination.Cursor, error)
	TransitionParty(ctx context.Context, id uuid.UUID, status enums.ApprovalStatus, now time.Time) (bool, error)

	CreateEntry(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerEntry, error)
	FindEntryByID(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error)
	ListEntries(ctx context.Context, params listEntriesParams) ([]models.LedgerEntry, *pagination.Cursor, error)
	TransitionEntry(ctx context.Context, id uuid.UUID, status enums.ApprovalStatus, now time.Time) (bool, error)

	CreatePayment(ctx context.Context, payment *models.LedgerPayment) (*models.LedgerPayment, error)
	FindPaymentByID(ctx context.Context, id uuid.UUID) (*models.LedgerPayment, error)
	ListPayments(ctx context.Context, params listPaymentsParams) ([]models.LedgerPayment, *pagination.Cursor, error)
	TransitionPayment(ctx context.Context, id uuid.UUID, status enums.ApprovalStatus, now time.Time) (bool, error)

	SumApprovedEntries(ctx context.Context, partyID uuid.UUID) (decimal.Decimal, error)
	SumApprovedPayments(ctx context.Context, partyID uuid.UUID, direction enums.PaymentDirection) (decimal.Decimal, error)

	ApprovedEntriesSince(ctx context.Context, kind *enums.PartyKind, since time.Time) ([]models.LedgerEntry, error)
	ApprovedPaymentsSince(ctx context.Context, kind *enums.PartyKind, since time.Time) ([]models.LedgerPayment, error)
	CountParties(ctx context.Context, kind *enums.PartyKind, status *enums.ApprovalStatus) (int64, error)
}

type listPartiesParams struct {
	Kind   *enums.PartyKind
	Status *enums.ApprovalStatus
	Search string
	Limit  int
	Cursor *pagination.Cursor
}

type listEntriesParams struct {
	PartyID uuid.UUID
	Limit   int
	Cursor  *pagination.Cursor
}

type listPaymentsParams struct {
	PartyID uuid.UUID
	Limit   int
	Cursor  *pagination.Cursor
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository constructs the gorm-backed khata repository.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateParty(ctx context.Context, party *models.Party) (*models.Party, error) {
	if err := r.db.WithContext(ctx).Create(party).Error; err != nil {
		return nil, err
	}
	return party, nil
}

func (r *repositoryImpl) FindPartyByID(ctx context.Context, id uuid.UUID) (*models.Party, error) {
	var party models.Party
	err := r.db.WithContext(ctx).First(&party, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &party, nil
}

func (r *repositoryImpl) ListParties(ctx context.Context, params listPartiesParams) ([]models.Party, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Party{})
	if params.Kind != nil {
		query = query.Where("kind = ?", *params.Kind)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR phone LIKE ?", like, like)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var parties []models.Party
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&parties).Error; err != nil {
		return nil, nil, err
	}

	if len(parties) > normalized {
		next := parties[normalized]
		parties = parties[:normalized]
		return parties, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return parties, nil, nil
}

// TransitionParty is a single-fire pending-to-terminal compare-and-swap.
func (r *repositoryImpl) TransitionParty(ctx context.Context, id uuid.UUID, status enums.ApprovalStatus, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Party{}).
		Where("id = ? AND status = ?", id, enums.ApprovalStatusPending).
		Updates(map[string]any{"status": status, "updated_at": now})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) CreateEntry(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerEntry, error) {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *repositoryImpl) FindEntryByID(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repositoryImpl) ListEntries(ctx context.Context, params listEntriesParams) ([]models.LedgerEntry, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.LedgerEntry{}).Where("party_id = ?", params.PartyID)
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var entries []models.LedgerEntry
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, nil, err
	}

	if len(entries) > normalized {
		next := entries[normalized]
		entries = entries[:normalized]
		return entries, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return entries, nil, nil
}

func (r *repositoryImpl) TransitionEntry(ctx context.Context, id uuid.UUID, status enums.ApprovalStatus, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("id = ? AND status = ?", id, enums.ApprovalStatusPending).
		Updates(map[string]any{"status": status, "updated_at": now})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) CreatePayment(ctx context.Context, payment *models.LedgerPayment) (*models.LedgerPayment, error) {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *repositoryImpl) FindPaymentByID(ctx context.Context, id uuid.UUID) (*models.LedgerPayment, error) {
	var payment models.LedgerPayment
	err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repositoryImpl) ListPayments(ctx context.Context, params listPaymentsParams) ([]models.LedgerPayment, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.LedgerPayment{}).Where("party_id = ?", params.PartyID)
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var payments []models.LedgerPayment
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&payments).Error; err != nil {
		return nil, nil, err
	}

	if len(payments) > normalized {
		next := payments[normalized]
		payments = payments[:normalized]
		return payments, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return payments, nil, nil
}

func (r *repositoryImpl) TransitionPayment(ctx context.Context, id uuid.UUID, status enums.ApprovalStatus, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.LedgerPayment{}).
		Where("id = ? AND status = ?", id, enums.ApprovalStatusPending).
		Updates(map[string]any{"status": status, "updated_at": now})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) SumApprovedEntries(ctx context.Context, partyID uuid.UUID) (decimal.Decimal, error) {
	var raw *string
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Select("CAST(SUM(amount) AS TEXT)").
		Where("party_id = ? AND status = ?", partyID, enums.ApprovalStatusApproved).
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	return parseSum(raw)
}

func (r *repositoryImpl) SumApprovedPayments(ctx context.Context, partyID uuid.UUID, direction enums.PaymentDirection) (decimal.Decimal, error) {
	var raw *string
	err := r.db.WithContext(ctx).
		Model(&models.LedgerPayment{}).
		Select("CAST(SUM(amount) AS TEXT)").
		Where("party_id = ? AND status = ? AND direction = ?", partyID, enums.ApprovalStatusApproved, direction).
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	return parseSum(raw)
}

func parseSum(raw *string) (decimal.Decimal, error) {
	if raw == nil || *raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}

func (r *repositoryImpl) ApprovedEntriesSince(ctx context.Context, kind *enums.PartyKind, since time.Time) ([]models.LedgerEntry, error) {
	query := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("ledger_entries.status = ? AND ledger_entries.created_at >= ?", enums.ApprovalStatusApproved, since)
	if kind != nil {
		query = query.
			Joins("JOIN parties ON parties.id = ledger_entries.party_id").
			Where("parties.kind = ?", *kind)
	}

	var entries []models.LedgerEntry
	if err := query.Order("ledger_entries.created_at ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repositoryImpl) ApprovedPaymentsSince(ctx context.Context, kind *enums.PartyKind, since time.Time) ([]models.LedgerPayment, error) {
	query := r.db.WithContext(ctx).
		Model(&models.LedgerPayment{}).
		Where("ledger_payments.status = ? AND ledger_payments.created_at >= ?", enums.ApprovalStatusApproved, since)
	if kind != nil {
		query = query.
			Joins("JOIN parties ON parties.id = ledger_payments.party_id").
			Where("parties.kind = ?", *kind)
	}

	var payments []models.LedgerPayment
	if err := query.Order("ledger_payments.created_at ASC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repositoryImpl) CountParties(ctx context.Context, kind *enums.PartyKind, status *enums.ApprovalStatus) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Party{})
	if kind != nil {
		query = query.Where("kind = ?", *kind)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
