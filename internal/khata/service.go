package khata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sonigems/saraf-backend/internal/idgen"
	"github.com/sonigems/saraf-backend/internal/notifications"
	"github.com/sonigems/saraf-backend/pkg/db/models"
	"github.com/sonigems/saraf-backend/pkg/enums"
	pkgerrors "github.com/sonigems/saraf-backend/pkg/errors"
	"github.com/sonigems/saraf-backend/pkg/logger"
	"github.com/sonigems/saraf-backend/pkg/pagination"
)

type notifier interface {
	NotifyUser(ctx context.Context, userID uuid.UUID, note notifications.Note) error
}

// Service is the khata book: counterparties, signed ledger entries, payments,
// and balances. Every row passes an admin approval gate before it counts.
type Service interface {
	CreateParty(ctx context.Context, userID uuid.UUID, input PartyInput) (*PartyDTO, error)
	GetParty(ctx context.Context, id uuid.UUID) (*PartyDTO, error)
	ListParties(ctx context.Context, params ListPartiesParams) (*PartiesPage, error)
	DecideParty(ctx context.Context, partyID, adminID uuid.UUID, input DecisionInput) (*PartyDTO, error)

	CreateEntry(ctx context.Context, userID, partyID uuid.UUID, input EntryInput) (*EntryDTO, error)
	ListEntries(ctx context.Context, params ListEntriesParams) (*EntriesPage, error)
	DecideEntry(ctx context.Context, entryID, adminID uuid.UUID, input DecisionInput) (*EntryDTO, error)

	CreatePayment(ctx context.Context, userID, partyID uuid.UUID, input PaymentInput) (*PaymentDTO, error)
	ListPayments(ctx context.Context, params ListPaymentsParams) (*PaymentsPage, error)
	DecidePayment(ctx context.Context, paymentID, adminID uuid.UUID, input DecisionInput) (*PaymentDTO, error)

	Balance(ctx context.Context, partyID uuid.UUID) (*BalanceDTO, error)
	Analytics(ctx context.Context, params AnalyticsParams) (*AnalyticsResult, error)

	RecordVyapariSale(ctx context.Context, vyapariID uuid.UUID, sale *models.Sale, decidedBy uuid.UUID) (*EntryDTO, error)
}

// PartiesPage is one page of parties.
type PartiesPage struct {
	Parties    []PartyDTO
	NextCursor *string
}

// EntriesPage is one page of ledger entries.
type EntriesPage struct {
	Entries    []EntryDTO
	NextCursor *string
}

// PaymentsPage is one page of ledger payments.
type PaymentsPage struct {
	Payments   []PaymentDTO
	NextCursor *string
}

type service struct {
	repo     Repository
	numbers  idgen.Generator
	notifier notifier
	logg     *logger.Logger
	now      func() time.Time
}

// ServiceParams wires the khata service.
type ServiceParams struct {
	Repo     Repository
	Numbers  idgen.Generator
	Notifier notifier
	Logger   *logger.Logger
	Now      func() time.Time
}

// NewService constructs the khata service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("khata repository required")
	}
	if params.Numbers == nil {
		return nil, fmt.Errorf("number generator required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}

	now := params.Now
	if now == nil {
		now = time.Now
	}

	return &service{
		repo:     params.Repo,
		numbers:  params.Numbers,
		notifier: params.Notifier,
		logg:     params.Logger,
		now:      now,
	}, nil
}

func (s *service) CreateParty(ctx context.Context, userID uuid.UUID, input PartyInput) (*PartyDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid party kind")
	}
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	if name == "" || phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and phone are required")
	}

	party := &models.Party{
		Kind:      input.Kind,
		Name:      name,
		Phone:     phone,
		Address:   input.Address,
		Status:    enums.ApprovalStatusPending,
		CreatedBy: userID,
	}
	created, err := s.repo.CreateParty(ctx, party)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create party")
	}
	return partyFromModel(created), nil
}

func (s *service) GetParty(ctx context.Context, id uuid.UUID) (*PartyDTO, error) {
	party, err := s.loadParty(ctx, id)
	if err != nil {
		return nil, err
	}
	return partyFromModel(party), nil
}

func (s *service) loadParty(ctx context.Context, id uuid.UUID) (*models.Party, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "party id is required")
	}
	party, err := s.repo.FindPartyByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load party")
	}
	if party == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "party not found")
	}
	return party, nil
}

func (s *service) ListParties(ctx context.Context, params ListPartiesParams) (*PartiesPage, error) {
	cursor, err := parseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	parties, next, err := s.repo.ListParties(ctx, listPartiesParams{
		Kind:   params.Kind,
		Status: params.Status,
		Search: params.Search,
		Limit:  params.Limit,
		Cursor: cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list parties")
	}

	page := &PartiesPage{Parties: make([]PartyDTO, 0, len(parties))}
	for i := range parties {
		page.Parties = append(page.Parties, *partyFromModel(&parties[i]))
	}
	page.NextCursor = encodeCursor(next)
	return page, nil
}

func (s *service) DecideParty(ctx context.Context, partyID, adminID uuid.UUID, input DecisionInput) (*PartyDTO, error) {
	if err := validateDecision(adminID, input); err != nil {
		return nil, err
	}
	party, err := s.loadParty(ctx, partyID)
	if err != nil {
		return nil, err
	}

	swapped, err := s.repo.TransitionParty(ctx, partyID, input.Status, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition party")
	}
	if !swapped {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "party is already decided")
	}

	party.Status = input.Status
	s.notifyDecision(ctx, party.CreatedBy, fmt.Sprintf("%s %s", titleKind(party.Kind), party.Name), input.Status)
	return partyFromModel(party), nil
}

func (s *service) CreateEntry(ctx context.Context, userID, partyID uuid.UUID, input EntryInput) (*EntryDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.Amount.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be non-zero")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}

	party, err := s.loadParty(ctx, partyID)
	if err != nil {
		return nil, err
	}
	if party.Status != enums.ApprovalStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "party is not approved")
	}

	now := s.now()
	entryNumber, err := s.numbers.NextNumber(ctx, party.Kind.EntryPrefix(), now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate entry number")
	}

	entry := &models.LedgerEntry{
		EntryNumber: entryNumber,
		PartyID:     party.ID,
		Amount:      input.Amount,
		Description: strings.TrimSpace(input.Description),
		SaleID:      input.SaleID,
		Status:      enums.ApprovalStatusPending,
		CreatedBy:   userID,
	}
	created, err := s.repo.CreateEntry(ctx, entry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create ledger entry")
	}
	return entryFromModel(created), nil
}

func (s *service) ListEntries(ctx context.Context, params ListEntriesParams) (*EntriesPage, error) {
	if params.PartyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "party id is required")
	}
	cursor, err := parseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	entries, next, err := s.repo.ListEntries(ctx, listEntriesParams{
		PartyID: params.PartyID,
		Limit:   params.Limit,
		Cursor:  cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger entries")
	}

	page := &EntriesPage{Entries: make([]EntryDTO, 0, len(entries))}
	for i := range entries {
		page.Entries = append(page.Entries, *entryFromModel(&entries[i]))
	}
	page.NextCursor = encodeCursor(next)
	return page, nil
}

func (s *service) DecideEntry(ctx context.Context, entryID, adminID uuid.UUID, input DecisionInput) (*EntryDTO, error) {
	if err := validateDecision(adminID, input); err != nil {
		return nil, err
	}
	entry, err := s.repo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ledger entry")
	}
	if entry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ledger entry not found")
	}

	swapped, err := s.repo.TransitionEntry(ctx, entryID, input.Status, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition ledger entry")
	}
	if !swapped {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "ledger entry is already decided")
	}

	entry.Status = input.Status
	s.notifyDecision(ctx, entry.CreatedBy, fmt.Sprintf("Ledger entry %s", entry.EntryNumber), input.Status)
	return entryFromModel(entry), nil
}

func (s *service) CreatePayment(ctx context.Context, userID, partyID uuid.UUID, input PaymentInput) (*PaymentDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if !input.Mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment mode")
	}
	if !input.Direction.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment direction")
	}

	party, err := s.loadParty(ctx, partyID)
	if err != nil {
		return nil, err
	}
	if party.Status != enums.ApprovalStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "party is not approved")
	}

	payment := &models.LedgerPayment{
		PartyID:   party.ID,
		Amount:    input.Amount,
		Mode:      input.Mode,
		Direction: input.Direction,
		Note:      input.Note,
		Status:    enums.ApprovalStatusPending,
		CreatedBy: userID,
	}
	created, err := s.repo.CreatePayment(ctx, payment)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
	}
	return paymentFromModel(created), nil
}

func (s *service) ListPayments(ctx context.Context, params ListPaymentsParams) (*PaymentsPage, error) {
	if params.PartyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "party id is required")
	}
	cursor, err := parseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	payments, next, err := s.repo.ListPayments(ctx, listPaymentsParams{
		PartyID: params.PartyID,
		Limit:   params.Limit,
		Cursor:  cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}

	page := &PaymentsPage{Payments: make([]PaymentDTO, 0, len(payments))}
	for i := range payments {
		page.Payments = append(page.Payments, *paymentFromModel(&payments[i]))
	}
	page.NextCursor = encodeCursor(next)
	return page, nil
}

func (s *service) DecidePayment(ctx context.Context, paymentID, adminID uuid.UUID, input DecisionInput) (*PaymentDTO, error) {
	if err := validateDecision(adminID, input); err != nil {
		return nil, err
	}
	payment, err := s.repo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	if payment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
	}

	swapped, err := s.repo.TransitionPayment(ctx, paymentID, input.Status, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition payment")
	}
	if !swapped {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment is already decided")
	}

	payment.Status = input.Status
	s.notifyDecision(ctx, payment.CreatedBy, fmt.Sprintf("Payment of %s", payment.Amount.StringFixed(2)), input.Status)
	return paymentFromModel(payment), nil
}

// Balance sums the approved rows for one party. Entries carry their own sign;
// a paid payment reduces what the shop owes, a received payment increases it.
func (s *service) Balance(ctx context.Context, partyID uuid.UUID) (*BalanceDTO, error) {
	party, err := s.loadParty(ctx, partyID)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.SumApprovedEntries(ctx, party.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum ledger entries")
	}
	paid, err := s.repo.SumApprovedPayments(ctx, party.ID, enums.PaymentDirectionPaid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum paid payments")
	}
	received, err := s.repo.SumApprovedPayments(ctx, party.ID, enums.PaymentDirectionReceived)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum received payments")
	}

	return &BalanceDTO{
		PartyID:       party.ID,
		Balance:       entries.Sub(paid).Add(received),
		EntriesTotal:  entries,
		TotalPaid:     paid,
		TotalReceived: received,
	}, nil
}

// RecordVyapariSale writes the approved ledger entry for a completed sale.
// Amount is negative: the trader owes the shop the sale total.
func (s *service) RecordVyapariSale(ctx context.Context, vyapariID uuid.UUID, sale *models.Sale, decidedBy uuid.UUID) (*EntryDTO, error) {
	if sale == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale is required")
	}
	party, err := s.loadParty(ctx, vyapariID)
	if err != nil {
		return nil, err
	}
	if party.Kind != enums.PartyKindVyapari {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "party is not a vyapari")
	}
	if party.Status != enums.ApprovalStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vyapari is not approved")
	}

	entryNumber, err := s.numbers.NextNumber(ctx, party.Kind.EntryPrefix(), s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate entry number")
	}

	entry := &models.LedgerEntry{
		EntryNumber: entryNumber,
		PartyID:     party.ID,
		Amount:      sale.TotalAmount.Neg(),
		Description: fmt.Sprintf("Sale %s", sale.OrderNumber),
		SaleID:      &sale.ID,
		Status:      enums.ApprovalStatusApproved,
		CreatedBy:   decidedBy,
	}
	created, err := s.repo.CreateEntry(ctx, entry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sale ledger entry")
	}
	return entryFromModel(created), nil
}

func (s *service) notifyDecision(ctx context.Context, userID uuid.UUID, subject string, status enums.ApprovalStatus) {
	if s.notifier == nil {
		return
	}
	note := notifications.Note{
		Type:    enums.NotificationTypeStatusUpdate,
		Title:   fmt.Sprintf("%s %s", subject, status),
		Message: fmt.Sprintf("%s was %s.", subject, status),
	}
	if err := s.notifier.NotifyUser(ctx, userID, note); err != nil {
		s.logg.Warn(ctx, "khata decision notification failed")
	}
}

func titleKind(kind enums.PartyKind) string {
	raw := string(kind)
	if raw == "" {
		return raw
	}
	return strings.ToUpper(raw[:1]) + raw[1:]
}

func validateDecision(adminID uuid.UUID, input DecisionInput) error {
	if adminID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "admin id is required")
	}
	if !input.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeValidation, "decision must be approved or rejected")
	}
	return nil
}

func parseCursor(raw string) (*pagination.Cursor, error) {
	if raw == "" {
		return nil, nil
	}
	cursor, err := pagination.ParseCursor(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	return cursor, nil
}

func encodeCursor(cursor *pagination.Cursor) *string {
	if cursor == nil {
		return nil
	}
	encoded := pagination.EncodeCursor(*cursor)
	return &encoded
}
