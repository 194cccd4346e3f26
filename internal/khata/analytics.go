package khata

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sonigems/saraf-backend/pkg/enums"
	pkgerrors "github.com/sonigems/saraf-backend/pkg/errors"
	"github.com/sonigems/saraf-backend/pkg/ist"
)

const (
	defaultAnalyticsDays = 30
	maxAnalyticsDays     = 365
)

// AnalyticsParams selects the khata analytics window. Kind is "vyapari",
// "karigar", or "all".
type AnalyticsParams struct {
	Days int
	Kind string
}

// DayPoint is one day of ledger movement, dated in IST.
type DayPoint struct {
	Date     string          `json:"date"`
	Entries  decimal.Decimal `json:"entries"`
	Paid     decimal.Decimal `json:"paid"`
	Received decimal.Decimal `json:"received"`
	Net      decimal.Decimal `json:"net"`
}

// AnalyticsResult is the khata dashboard payload. The series always has one
// point per day in the window, zero-filled where nothing moved.
type AnalyticsResult struct {
	Days           int             `json:"days"`
	Kind           string          `json:"kind"`
	TotalParties   int64           `json:"total_parties"`
	PendingParties int64           `json:"pending_parties"`
	EntriesTotal   decimal.Decimal `json:"entries_total"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	TotalReceived  decimal.Decimal `json:"total_received"`
	NetMovement    decimal.Decimal `json:"net_movement"`
	Series         []DayPoint      `json:"series"`
}

// Analytics aggregates approved ledger movement over the trailing window.
func (s *service) Analytics(ctx context.Context, params AnalyticsParams) (*AnalyticsResult, error) {
	days := params.Days
	if days <= 0 {
		days = defaultAnalyticsDays
	}
	if days > maxAnalyticsDays {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "days window is too large")
	}

	var kind *enums.PartyKind
	switch params.Kind {
	case "", "all":
	default:
		parsed, err := enums.ParsePartyKind(params.Kind)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid party kind")
		}
		kind = &parsed
	}

	today := ist.StartOfDay(s.now())
	since := today.AddDate(0, 0, -(days - 1))

	entries, err := s.repo.ApprovedEntriesSince(ctx, kind, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ledger entries")
	}
	payments, err := s.repo.ApprovedPaymentsSince(ctx, kind, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payments")
	}
	totalParties, err := s.repo.CountParties(ctx, kind, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count parties")
	}
	pendingStatus := enums.ApprovalStatusPending
	pendingParties, err := s.repo.CountParties(ctx, kind, &pendingStatus)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending parties")
	}

	series := make([]DayPoint, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := since.AddDate(0, 0, i).Format("2006-01-02")
		series[i] = DayPoint{
			Date:     date,
			Entries:  decimal.Zero,
			Paid:     decimal.Zero,
			Received: decimal.Zero,
			Net:      decimal.Zero,
		}
		index[date] = i
	}

	result := &AnalyticsResult{
		Days:           days,
		Kind:           kindLabel(kind),
		TotalParties:   totalParties,
		PendingParties: pendingParties,
		EntriesTotal:   decimal.Zero,
		TotalPaid:      decimal.Zero,
		TotalReceived:  decimal.Zero,
		NetMovement:    decimal.Zero,
	}

	for _, entry := range entries {
		result.EntriesTotal = result.EntriesTotal.Add(entry.Amount)
		if i, ok := index[dayKey(entry.CreatedAt)]; ok {
			series[i].Entries = series[i].Entries.Add(entry.Amount)
		}
	}
	for _, payment := range payments {
		switch payment.Direction {
		case enums.PaymentDirectionPaid:
			result.TotalPaid = result.TotalPaid.Add(payment.Amount)
			if i, ok := index[dayKey(payment.CreatedAt)]; ok {
				series[i].Paid = series[i].Paid.Add(payment.Amount)
			}
		case enums.PaymentDirectionReceived:
			result.TotalReceived = result.TotalReceived.Add(payment.Amount)
			if i, ok := index[dayKey(payment.CreatedAt)]; ok {
				series[i].Received = series[i].Received.Add(payment.Amount)
			}
		}
	}

	for i := range series {
		series[i].Net = series[i].Entries.Sub(series[i].Paid).Add(series[i].Received)
	}
	result.NetMovement = result.EntriesTotal.Sub(result.TotalPaid).Add(result.TotalReceived)
	result.Series = series
	return result, nil
}

func dayKey(t time.Time) string {
	return t.In(ist.Location()).Format("2006-01-02")
}

func kindLabel(kind *enums.PartyKind) string {
	if kind == nil {
		return "all"
	}
	return string(*kind)
}
