package khata

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sonigems/saraf-backend/internal/idgen"
	"github.com/sonigems/saraf-backend/internal/notifications"
	"github.com/sonigems/saraf-backend/pkg/db/models"
	"github.com/sonigems/saraf-backend/pkg/enums"
	pkgerrors "github.com/sonigems/saraf-backend/pkg/errors"
	"github.com/sonigems/saraf-backend/pkg/logger"
	"github.com/sonigems/saraf-backend/pkg/types"
)

type fakeNotifier struct {
	notes []notifications.Note
}

func (f *fakeNotifier) NotifyUser(_ context.Context, _ uuid.UUID, note notifications.Note) error {
	f.notes = append(f.notes, note)
	return nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Party{}, &models.LedgerEntry{}, &models.LedgerPayment{}, &models.IDSequence{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		conn.Exec("DELETE FROM ledger_payments")
		conn.Exec("DELETE FROM ledger_entries")
		conn.Exec("DELETE FROM parties")
		conn.Exec("DELETE FROM id_sequences")
	})
	return conn
}

func newKhataService(t *testing.T, conn *gorm.DB, notifier *fakeNotifier) Service {
	t.Helper()

	gen, err := idgen.NewGenerator(conn)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(conn),
		Numbers:  gen,
		Notifier: notifier,
		Logger:   logger.New(logger.Options{ServiceName: "saraf-test"}),
		Now:      time.Now,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func approvedParty(t *testing.T, svc Service, kind enums.PartyKind) *PartyDTO {
	t.Helper()

	userID := uuid.New()
	party, err := svc.CreateParty(context.Background(), userID, PartyInput{
		Kind:  kind,
		Name:  "Ramesh",
		Phone: "9876543210",
	})
	if err != nil {
		t.Fatalf("create party: %v", err)
	}
	decided, err := svc.DecideParty(context.Background(), party.ID, uuid.New(), DecisionInput{Status: enums.ApprovalStatusApproved})
	if err != nil {
		t.Fatalf("approve party: %v", err)
	}
	return decided
}

func TestCreatePartyStartsPending(t *testing.T) {
	svc := newKhataService(t, openTestDB(t), &fakeNotifier{})

	party, err := svc.CreateParty(context.Background(), uuid.New(), PartyInput{
		Kind:  enums.PartyKindVyapari,
		Name:  " Meena Traders ",
		Phone: "9876543210",
	})
	if err != nil {
		t.Fatalf("create party: %v", err)
	}
	if party.Status != enums.ApprovalStatusPending {
		t.Fatalf("expected pending, got %s", party.Status)
	}
	if party.Name != "Meena Traders" {
		t.Fatalf("expected trimmed name, got %q", party.Name)
	}
}

func TestDecidePartyIsSingleFire(t *testing.T) {
	svc := newKhataService(t, openTestDB(t), &fakeNotifier{})
	party := approvedParty(t, svc, enums.PartyKindVyapari)

	_, err := svc.DecideParty(context.Background(), party.ID, uuid.New(), DecisionInput{Status: enums.ApprovalStatusRejected})
	if err == nil {
		t.Fatal("expected state conflict on second decision")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %s", pkgerrors.As(err).Code())
	}
}

func TestCreateEntryRequiresApprovedParty(t *testing.T) {
	svc := newKhataService(t, openTestDB(t), &fakeNotifier{})

	pending, err := svc.CreateParty(context.Background(), uuid.New(), PartyInput{
		Kind:  enums.PartyKindKarigar,
		Name:  "Suresh",
		Phone: "9123456780",
	})
	if err != nil {
		t.Fatalf("create party: %v", err)
	}

	_, err = svc.CreateEntry(context.Background(), uuid.New(), pending.ID, EntryInput{
		Amount:      decimal.NewFromInt(500),
		Description: "advance for polish work",
	})
	if err == nil {
		t.Fatal("expected validation error for unapproved party")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation, got %s", pkgerrors.As(err).Code())
	}
}

func TestEntryNumbersUseKindPrefix(t *testing.T) {
	svc := newKhataService(t, openTestDB(t), &fakeNotifier{})

	vyapari := approvedParty(t, svc, enums.PartyKindVyapari)
	karigar := approvedParty(t, svc, enums.PartyKindKarigar)

	vt, err := svc.CreateEntry(context.Background(), uuid.New(), vyapari.ID, EntryInput{
		Amount:      decimal.NewFromInt(-2500),
		Description: "goods sold on credit",
	})
	if err != nil {
		t.Fatalf("vyapari entry: %v", err)
	}
	kt, err := svc.CreateEntry(context.Background(), uuid.New(), karigar.ID, EntryInput{
		Amount:      decimal.NewFromInt(1200),
		Description: "making charges owed",
	})
	if err != nil {
		t.Fatalf("karigar entry: %v", err)
	}

	if !strings.HasPrefix(vt.EntryNumber, "VT-") {
		t.Fatalf("expected VT prefix, got %s", vt.EntryNumber)
	}
	if !strings.HasPrefix(kt.EntryNumber, "KT-") {
		t.Fatalf("expected KT prefix, got %s", kt.EntryNumber)
	}
}

func TestBalanceSignConventionBothDirections(t *testing.T) {
	svc := newKhataService(t, openTestDB(t), &fakeNotifier{})
	party := approvedParty(t, svc, enums.PartyKindKarigar)
	admin := uuid.New()

	// Shop owes the karigar 1200 in making charges.
	entry, err := svc.CreateEntry(context.Background(), uuid.New(), party.ID, EntryInput{
		Amount:      decimal.NewFromInt(1200),
		Description: "making charges owed",
	})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := svc.DecideEntry(context.Background(), entry.ID, admin, DecisionInput{Status: enums.ApprovalStatusApproved}); err != nil {
		t.Fatalf("approve entry: %v", err)
	}

	// Shop pays 500 of it back.
	paid, err := svc.CreatePayment(context.Background(), uuid.New(), party.ID, PaymentInput{
		Amount:    decimal.NewFromInt(500),
		Mode:      enums.PaymentModeCash,
		Direction: enums.PaymentDirectionPaid,
	})
	if err != nil {
		t.Fatalf("create paid payment: %v", err)
	}
	if _, err := svc.DecidePayment(context.Background(), paid.ID, admin, DecisionInput{Status: enums.ApprovalStatusApproved}); err != nil {
		t.Fatalf("approve paid payment: %v", err)
	}

	// Karigar returns 200 of an earlier advance.
	received, err := svc.CreatePayment(context.Background(), uuid.New(), party.ID, PaymentInput{
		Amount:    decimal.NewFromInt(200),
		Mode:      enums.PaymentModeUPI,
		Direction: enums.PaymentDirectionReceived,
	})
	if err != nil {
		t.Fatalf("create received payment: %v", err)
	}
	if _, err := svc.DecidePayment(context.Background(), received.ID, admin, DecisionInput{Status: enums.ApprovalStatusApproved}); err != nil {
		t.Fatalf("approve received payment: %v", err)
	}

	balance, err := svc.Balance(context.Background(), party.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	// 1200 − 500 + 200
	if !balance.Balance.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("expected balance 900, got %s", balance.Balance)
	}
	if !balance.TotalPaid.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected total paid 500, got %s", balance.TotalPaid)
	}
	if !balance.TotalReceived.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected total received 200, got %s", balance.TotalReceived)
	}
}

func TestPendingRowsDoNotCountTowardBalance(t *testing.T) {
	svc := newKhataService(t, openTestDB(t), &fakeNotifier{})
	party := approvedParty(t, svc, enums.PartyKindVyapari)

	if _, err := svc.CreateEntry(context.Background(), uuid.New(), party.ID, EntryInput{
		Amount:      decimal.NewFromInt(-4000),
		Description: "goods on credit",
	}); err != nil {
		t.Fatalf("create entry: %v", err)
	}

	balance, err := svc.Balance(context.Background(), party.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !balance.Balance.IsZero() {
		t.Fatalf("pending entry must not count, got balance %s", balance.Balance)
	}
}

func TestRecordVyapariSaleWritesNegativeApprovedEntry(t *testing.T) {
	svc := newKhataService(t, openTestDB(t), &fakeNotifier{})
	party := approvedParty(t, svc, enums.PartyKindVyapari)

	sale := &models.Sale{
		ID:           uuid.New(),
		OrderNumber:  "SR-2026-0007",
		CustomerName: "Meena Traders",
		TotalAmount:  decimal.NewFromInt(1000),
		Items:        types.SaleItems{},
		CreatedBy:    uuid.New(),
	}

	entry, err := svc.RecordVyapariSale(context.Background(), party.ID, sale, uuid.New())
	if err != nil {
		t.Fatalf("record vyapari sale: %v", err)
	}
	if !entry.Amount.Equal(decimal.NewFromInt(-1000)) {
		t.Fatalf("expected amount -1000, got %s", entry.Amount)
	}
	if entry.Status != enums.ApprovalStatusApproved {
		t.Fatalf("sale entries are pre-approved, got %s", entry.Status)
	}
	if !strings.HasPrefix(entry.EntryNumber, "VT-") {
		t.Fatalf("expected VT number, got %s", entry.EntryNumber)
	}

	balance, err := svc.Balance(context.Background(), party.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !balance.Balance.Equal(decimal.NewFromInt(-1000)) {
		t.Fatalf("expected balance -1000, got %s", balance.Balance)
	}
}

func TestRecordVyapariSaleRejectsKarigar(t *testing.T) {
	svc := newKhataService(t, openTestDB(t), &fakeNotifier{})
	party := approvedParty(t, svc, enums.PartyKindKarigar)

	sale := &models.Sale{ID: uuid.New(), OrderNumber: "SR-2026-0008", TotalAmount: decimal.NewFromInt(100), Items: types.SaleItems{}}
	_, err := svc.RecordVyapariSale(context.Background(), party.ID, sale, uuid.New())
	if err == nil {
		t.Fatal("expected validation error for karigar party")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation, got %s", pkgerrors.As(err).Code())
	}
}

func TestAnalyticsSeriesIsZeroFilled(t *testing.T) {
	svc := newKhataService(t, openTestDB(t), &fakeNotifier{})

	result, err := svc.Analytics(context.Background(), AnalyticsParams{Days: 7})
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if len(result.Series) != 7 {
		t.Fatalf("expected 7 day points, got %d", len(result.Series))
	}
	for _, point := range result.Series {
		if !point.Net.IsZero() {
			t.Fatalf("expected zero-filled series, got %s on %s", point.Net, point.Date)
		}
	}
	if !result.NetMovement.IsZero() {
		t.Fatalf("expected zero net movement, got %s", result.NetMovement)
	}
}

func TestAnalyticsAggregatesApprovedMovement(t *testing.T) {
	svc := newKhataService(t, openTestDB(t), &fakeNotifier{})
	party := approvedParty(t, svc, enums.PartyKindVyapari)
	admin := uuid.New()

	entry, err := svc.CreateEntry(context.Background(), uuid.New(), party.ID, EntryInput{
		Amount:      decimal.NewFromInt(-3000),
		Description: "goods on credit",
	})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := svc.DecideEntry(context.Background(), entry.ID, admin, DecisionInput{Status: enums.ApprovalStatusApproved}); err != nil {
		t.Fatalf("approve entry: %v", err)
	}

	result, err := svc.Analytics(context.Background(), AnalyticsParams{Days: 30, Kind: "vyapari"})
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if !result.EntriesTotal.Equal(decimal.NewFromInt(-3000)) {
		t.Fatalf("expected entries total -3000, got %s", result.EntriesTotal)
	}
	if result.TotalParties != 1 {
		t.Fatalf("expected 1 vyapari, got %d", result.TotalParties)
	}

	karigarOnly, err := svc.Analytics(context.Background(), AnalyticsParams{Days: 30, Kind: "karigar"})
	if err != nil {
		t.Fatalf("karigar analytics: %v", err)
	}
	if !karigarOnly.EntriesTotal.IsZero() {
		t.Fatalf("karigar filter must exclude vyapari movement, got %s", karigarOnly.EntriesTotal)
	}
}
