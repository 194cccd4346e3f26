package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sonigems/saraf-backend/pkg/db/models"
	"github.com/sonigems/saraf-backend/pkg/enums"
	pkgerrors "github.com/sonigems/saraf-backend/pkg/errors"
	"github.com/sonigems/saraf-backend/pkg/ist"
	"github.com/sonigems/saraf-backend/pkg/logger"
)

// Timeframe is a named reporting window resolved in IST.
type Timeframe string

const (
	TimeframeToday Timeframe = "today"
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
	TimeframeYear  Timeframe = "year"
)

func (t Timeframe) IsValid() bool {
	switch t {
	case TimeframeToday, TimeframeWeek, TimeframeMonth, TimeframeYear:
		return true
	}
	return false
}

const topProductLimit = 5

// Params selects the window to aggregate: either a named timeframe or an
// explicit [Start, End) range, with an optional bill type filter.
type Params struct {
	Timeframe *Timeframe
	Start     *time.Time
	End       *time.Time
	BillType  *enums.BillType
}

// Metrics are the scalar KPIs for the window, with percentage deltas against
// the equal-length window immediately preceding it. Deltas are zero when the
// previous period is empty.
type Metrics struct {
	TotalRevenue         decimal.Decimal `json:"total_revenue"`
	TotalOrders          int             `json:"total_orders"`
	AvgOrderValue        decimal.Decimal `json:"avg_order_value"`
	RevenueDeltaPercent  decimal.Decimal `json:"revenue_delta_percent"`
	OrdersDeltaPercent   decimal.Decimal `json:"orders_delta_percent"`
	AvgOrderDeltaPercent decimal.Decimal `json:"avg_order_delta_percent"`
}

// TrendPoint is one bucket of the sales trend. Every bucket of the window's
// fixed cardinality is present even when empty.
type TrendPoint struct {
	Label     string          `json:"label"`
	BucketStart time.Time       `json:"bucket_start"`
	Value     decimal.Decimal `json:"value"`
	Orders    int             `json:"orders"`
}

// TopProduct is one row of the revenue-ranked product leaderboard, aggregated
// from the item snapshots frozen at sale time.
type TopProduct struct {
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// CategoryRevenue is revenue attributed to one product category, with its
// share of the window's total revenue.
type CategoryRevenue struct {
	Category string          `json:"category"`
	Revenue  decimal.Decimal `json:"revenue"`
	Percent  decimal.Decimal `json:"percent"`
}

// Result is the full analytics payload for a window.
type Result struct {
	Metrics           Metrics           `json:"metrics"`
	SalesTrend        []TrendPoint      `json:"sales_trend"`
	TopProducts       []TopProduct      `json:"top_products"`
	RevenueByCategory []CategoryRevenue `json:"revenue_by_category"`
}

// Service aggregates sales into trend buckets and KPIs.
type Service interface {
	SalesAnalytics(ctx context.Context, params Params) (*Result, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
	Now    func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, logg: params.Logger, now: now}, nil
}

type granularity int

const (
	granHourly granularity = iota
	granDaily
	granMonthly
	granYearly
)

type window struct {
	start time.Time
	end   time.Time
	gran  granularity
}

func (s *service) SalesAnalytics(ctx context.Context, params Params) (*Result, error) {
	win, err := s.resolveWindow(params)
	if err != nil {
		return nil, err
	}

	sales, err := s.repo.SalesBetween(ctx, win.start, win.end, params.BillType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sales")
	}

	span := win.end.Sub(win.start)
	prev, err := s.repo.SalesBetween(ctx, win.start.Add(-span), win.start, params.BillType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load previous period sales")
	}

	result := &Result{
		Metrics:           computeMetrics(sales, prev),
		SalesTrend:        buildTrend(win, sales),
		TopProducts:       topProducts(sales),
		RevenueByCategory: revenueByCategory(sales),
	}
	return result, nil
}

// resolveWindow maps the request onto a half-open [start, end) range in IST
// with a bucket granularity. Named timeframes have fixed cardinality: today 24
// hourly buckets, week 7 daily, month 12 monthly ending at the current month,
// year 3 yearly ending at the current year.
func (s *service) resolveWindow(params Params) (window, error) {
	if params.Timeframe == nil && (params.Start == nil || params.End == nil) {
		return window{}, pkgerrors.New(pkgerrors.CodeValidation, "timeframe or start and end are required")
	}
	if params.BillType != nil && !params.BillType.IsValid() {
		return window{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid bill type")
	}

	if params.Timeframe != nil {
		if !params.Timeframe.IsValid() {
			return window{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid timeframe")
		}
		now := s.now()
		switch *params.Timeframe {
		case TimeframeToday:
			start := ist.StartOfDay(now)
			return window{start: start, end: start.Add(24 * time.Hour), gran: granHourly}, nil
		case TimeframeWeek:
			today := ist.StartOfDay(now)
			return window{start: today.AddDate(0, 0, -6), end: today.AddDate(0, 0, 1), gran: granDaily}, nil
		case TimeframeMonth:
			month := ist.StartOfMonth(now)
			return window{start: month.AddDate(0, -11, 0), end: month.AddDate(0, 1, 0), gran: granMonthly}, nil
		case TimeframeYear:
			year := ist.StartOfYear(now)
			return window{start: year.AddDate(-2, 0, 0), end: year.AddDate(1, 0, 0), gran: granYearly}, nil
		}
	}

	start, end := params.Start.In(ist.Location()), params.End.In(ist.Location())
	if !start.Before(end) {
		return window{}, pkgerrors.New(pkgerrors.CodeValidation, "start must be before end")
	}
	span := end.Sub(start)
	switch {
	case span <= 24*time.Hour:
		return window{start: start, end: end, gran: granHourly}, nil
	case span <= 31*24*time.Hour:
		return window{start: ist.StartOfDay(start), end: end, gran: granDaily}, nil
	default:
		return window{start: ist.StartOfMonth(start), end: end, gran: granMonthly}, nil
	}
}

// buildTrend generates every bucket of the window up front, then assigns each
// sale by localized timestamp equality at the bucket's granularity. The scan
// is O(buckets x sales), fine at single-shop volume.
func buildTrend(win window, sales []models.Sale) []TrendPoint {
	buckets := make([]TrendPoint, 0, 24)
	for t := win.start; t.Before(win.end); t = advance(t, win.gran) {
		buckets = append(buckets, TrendPoint{
			Label:     bucketLabel(t, win.gran),
			BucketStart: t,
			Value:     decimal.Zero,
		})
	}

	for _, sale := range sales {
		local := sale.CreatedAt.In(ist.Location())
		for i := range buckets {
			if sameBucket(local, buckets[i].BucketStart, win.gran) {
				buckets[i].Value = buckets[i].Value.Add(sale.TotalAmount)
				buckets[i].Orders++
				break
			}
		}
	}
	return buckets
}

func advance(t time.Time, gran granularity) time.Time {
	switch gran {
	case granHourly:
		return t.Add(time.Hour)
	case granDaily:
		return t.AddDate(0, 0, 1)
	case granMonthly:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(1, 0, 0)
	}
}

func bucketLabel(t time.Time, gran granularity) string {
	switch gran {
	case granHourly:
		return t.Format("15:00")
	case granDaily:
		return t.Format("2006-01-02")
	case granMonthly:
		return t.Format("Jan 2006")
	default:
		return t.Format("2006")
	}
}

func sameBucket(a, b time.Time, gran granularity) bool {
	if a.Year() != b.Year() {
		return false
	}
	switch gran {
	case granYearly:
		return true
	case granMonthly:
		return a.Month() == b.Month()
	case granDaily:
		return a.Month() == b.Month() && a.Day() == b.Day()
	default:
		return a.Month() == b.Month() && a.Day() == b.Day() && a.Hour() == b.Hour()
	}
}

func computeMetrics(current, previous []models.Sale) Metrics {
	revenue, orders := sumSales(current)
	prevRevenue, prevOrders := sumSales(previous)

	metrics := Metrics{
		TotalRevenue:         revenue,
		TotalOrders:          orders,
		AvgOrderValue:        decimal.Zero,
		RevenueDeltaPercent:  deltaPercent(revenue, prevRevenue),
		OrdersDeltaPercent:   deltaPercent(decimal.NewFromInt(int64(orders)), decimal.NewFromInt(int64(prevOrders))),
		AvgOrderDeltaPercent: decimal.Zero,
	}
	if orders > 0 {
		metrics.AvgOrderValue = revenue.Div(decimal.NewFromInt(int64(orders))).Round(2)
	}
	if prevOrders > 0 {
		prevAvg := prevRevenue.Div(decimal.NewFromInt(int64(prevOrders))).Round(2)
		metrics.AvgOrderDeltaPercent = deltaPercent(metrics.AvgOrderValue, prevAvg)
	}
	return metrics
}

func sumSales(sales []models.Sale) (decimal.Decimal, int) {
	total := decimal.Zero
	for _, sale := range sales {
		total = total.Add(sale.TotalAmount)
	}
	return total, len(sales)
}

// deltaPercent is zero when the previous value is zero, which conflates "no
// prior data" with "no change" but never divides by zero.
func deltaPercent(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	hundred := decimal.NewFromInt(100)
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2)
}

func topProducts(sales []models.Sale) []TopProduct {
	type key struct {
		id   uuid.UUID
		name string
	}
	totals := map[key]*TopProduct{}
	for _, sale := range sales {
		for _, item := range sale.Items {
			k := key{name: item.ProductName}
			if item.ProductID != nil {
				k.id = *item.ProductID
			}
			row, ok := totals[k]
			if !ok {
				row = &TopProduct{ProductID: item.ProductID, ProductName: item.ProductName, Revenue: decimal.Zero}
				totals[k] = row
			}
			row.Quantity += item.Quantity
			row.Revenue = row.Revenue.Add(item.LineTotal)
		}
	}

	ranked := make([]TopProduct, 0, len(totals))
	for _, row := range totals {
		ranked = append(ranked, *row)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].Revenue.Equal(ranked[j].Revenue) {
			return ranked[i].Revenue.GreaterThan(ranked[j].Revenue)
		}
		return ranked[i].ProductName < ranked[j].ProductName
	})
	if len(ranked) > topProductLimit {
		ranked = ranked[:topProductLimit]
	}
	return ranked
}

// revenueByCategory attributes sale-time line totals to their snapshot
// category. The category sum equals the window's total revenue because sale
// totals are the sum of their line totals.
func revenueByCategory(sales []models.Sale) []CategoryRevenue {
	totals := map[string]decimal.Decimal{}
	grand := decimal.Zero
	for _, sale := range sales {
		for _, item := range sale.Items {
			totals[item.Category] = totals[item.Category].Add(item.LineTotal)
			grand = grand.Add(item.LineTotal)
		}
	}

	rows := make([]CategoryRevenue, 0, len(totals))
	hundred := decimal.NewFromInt(100)
	for category, revenue := range totals {
		percent := decimal.Zero
		if !grand.IsZero() {
			percent = revenue.Div(grand).Mul(hundred).Round(2)
		}
		rows = append(rows, CategoryRevenue{Category: category, Revenue: revenue, Percent: percent})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Revenue.Equal(rows[j].Revenue) {
			return rows[i].Revenue.GreaterThan(rows[j].Revenue)
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}
