package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sonigems/saraf-backend/pkg/db/models"
	"github.com/sonigems/saraf-backend/pkg/enums"
	pkgerrors "github.com/sonigems/saraf-backend/pkg/errors"
	"github.com/sonigems/saraf-backend/pkg/ist"
	"github.com/sonigems/saraf-backend/pkg/logger"
	"github.com/sonigems/saraf-backend/pkg/types"
)

// 2026-08-15 14:30 IST
var testNow = time.Date(2026, 8, 15, 14, 30, 0, 0, ist.Location())

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:analytics_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Sale{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func newAnalyticsService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   NewRepository(conn),
		Logger: logger.New(logger.Options{ServiceName: "saraf-test"}),
		Now:    func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

type saleSpec struct {
	at       time.Time
	total    int64
	billType *enums.BillType
	items    types.SaleItems
}

func seedSale(t *testing.T, conn *gorm.DB, spec saleSpec) {
	t.Helper()
	items := spec.items
	if items == nil {
		productID := uuid.New()
		items = types.SaleItems{{
			ProductID:   &productID,
			ProductName: "Gold Ring",
			Category:    "ring",
			Material:    "gold",
			Quantity:    1,
			UnitPrice:   decimal.NewFromInt(spec.total),
			LineTotal:   decimal.NewFromInt(spec.total),
		}}
	}
	sale := &models.Sale{
		OrderNumber:  "SR-2026-" + uuid.NewString()[:8],
		CustomerName: "Meena Traders",
		TotalAmount:  decimal.NewFromInt(spec.total),
		Items:        items,
		BillType:     spec.billType,
		CreatedBy:    uuid.New(),
		CreatedAt:    spec.at,
	}
	if err := conn.Create(sale).Error; err != nil {
		t.Fatalf("seed sale: %v", err)
	}
}

func timeframe(tf Timeframe) *Timeframe { return &tf }

func TestMonthTimeframeZeroTransactions(t *testing.T) {
	conn := openTestDB(t)
	svc := newAnalyticsService(t, conn)

	result, err := svc.SalesAnalytics(context.Background(), Params{Timeframe: timeframe(TimeframeMonth)})
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if len(result.SalesTrend) != 12 {
		t.Fatalf("expected 12 monthly buckets, got %d", len(result.SalesTrend))
	}
	for _, point := range result.SalesTrend {
		if !point.Value.IsZero() || point.Orders != 0 {
			t.Fatalf("expected empty bucket, got %+v", point)
		}
	}
	if !result.Metrics.TotalRevenue.IsZero() || result.Metrics.TotalOrders != 0 {
		t.Fatalf("expected zero metrics, got %+v", result.Metrics)
	}
	if !result.Metrics.RevenueDeltaPercent.IsZero() || !result.Metrics.AvgOrderValue.IsZero() {
		t.Fatalf("expected zero-safe deltas, got %+v", result.Metrics)
	}
	if len(result.TopProducts) != 0 || len(result.RevenueByCategory) != 0 {
		t.Fatalf("expected empty leaderboards, got %+v", result)
	}
}

func TestTodayHourlyBuckets(t *testing.T) {
	conn := openTestDB(t)
	svc := newAnalyticsService(t, conn)
	seedSale(t, conn, saleSpec{at: time.Date(2026, 8, 15, 10, 30, 0, 0, ist.Location()), total: 1500})
	seedSale(t, conn, saleSpec{at: time.Date(2026, 8, 15, 10, 45, 0, 0, ist.Location()), total: 500})

	result, err := svc.SalesAnalytics(context.Background(), Params{Timeframe: timeframe(TimeframeToday)})
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if len(result.SalesTrend) != 24 {
		t.Fatalf("expected 24 hourly buckets, got %d", len(result.SalesTrend))
	}
	bucket := result.SalesTrend[10]
	if bucket.Label != "10:00" {
		t.Fatalf("expected label 10:00, got %s", bucket.Label)
	}
	if !bucket.Value.Equal(decimal.NewFromInt(2000)) || bucket.Orders != 2 {
		t.Fatalf("expected both sales in the 10:00 bucket, got %+v", bucket)
	}
	if !result.Metrics.TotalRevenue.Equal(decimal.NewFromInt(2000)) || result.Metrics.TotalOrders != 2 {
		t.Fatalf("unexpected metrics %+v", result.Metrics)
	}
	if !result.Metrics.AvgOrderValue.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected avg order 1000, got %s", result.Metrics.AvgOrderValue)
	}
}

func TestWeekDailyBuckets(t *testing.T) {
	conn := openTestDB(t)
	svc := newAnalyticsService(t, conn)
	seedSale(t, conn, saleSpec{at: time.Date(2026, 8, 13, 11, 0, 0, 0, ist.Location()), total: 700})
	seedSale(t, conn, saleSpec{at: time.Date(2026, 8, 15, 9, 0, 0, 0, ist.Location()), total: 300})
	// outside the 7-day window
	seedSale(t, conn, saleSpec{at: time.Date(2026, 8, 1, 9, 0, 0, 0, ist.Location()), total: 9999})

	result, err := svc.SalesAnalytics(context.Background(), Params{Timeframe: timeframe(TimeframeWeek)})
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if len(result.SalesTrend) != 7 {
		t.Fatalf("expected 7 daily buckets, got %d", len(result.SalesTrend))
	}
	if result.SalesTrend[0].Label != "2026-08-09" || result.SalesTrend[6].Label != "2026-08-15" {
		t.Fatalf("unexpected bucket range %s .. %s", result.SalesTrend[0].Label, result.SalesTrend[6].Label)
	}
	if !result.SalesTrend[4].Value.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("expected 700 on Aug 13, got %s", result.SalesTrend[4].Value)
	}
	if !result.Metrics.TotalRevenue.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected window revenue 1000, got %s", result.Metrics.TotalRevenue)
	}
}

func TestYearBucketCardinality(t *testing.T) {
	conn := openTestDB(t)
	svc := newAnalyticsService(t, conn)
	seedSale(t, conn, saleSpec{at: time.Date(2025, 2, 1, 12, 0, 0, 0, ist.Location()), total: 4000})
	seedSale(t, conn, saleSpec{at: time.Date(2026, 3, 1, 12, 0, 0, 0, ist.Location()), total: 6000})

	result, err := svc.SalesAnalytics(context.Background(), Params{Timeframe: timeframe(TimeframeYear)})
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if len(result.SalesTrend) != 3 {
		t.Fatalf("expected 3 yearly buckets, got %d", len(result.SalesTrend))
	}
	if result.SalesTrend[0].Label != "2024" || result.SalesTrend[2].Label != "2026" {
		t.Fatalf("unexpected years %s .. %s", result.SalesTrend[0].Label, result.SalesTrend[2].Label)
	}
	if !result.SalesTrend[1].Value.Equal(decimal.NewFromInt(4000)) {
		t.Fatalf("expected 4000 in 2025, got %s", result.SalesTrend[1].Value)
	}
	if !result.SalesTrend[2].Value.Equal(decimal.NewFromInt(6000)) {
		t.Fatalf("expected 6000 in 2026, got %s", result.SalesTrend[2].Value)
	}
}

func TestPreviousPeriodDeltas(t *testing.T) {
	conn := openTestDB(t)
	svc := newAnalyticsService(t, conn)
	seedSale(t, conn, saleSpec{at: time.Date(2026, 8, 15, 11, 0, 0, 0, ist.Location()), total: 2000})
	// previous day, equal-length preceding window for timeframe=today
	seedSale(t, conn, saleSpec{at: time.Date(2026, 8, 14, 11, 0, 0, 0, ist.Location()), total: 1000})

	result, err := svc.SalesAnalytics(context.Background(), Params{Timeframe: timeframe(TimeframeToday)})
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if !result.Metrics.RevenueDeltaPercent.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected +100%% revenue delta, got %s", result.Metrics.RevenueDeltaPercent)
	}
	if !result.Metrics.OrdersDeltaPercent.IsZero() {
		t.Fatalf("expected 0%% orders delta, got %s", result.Metrics.OrdersDeltaPercent)
	}
	if !result.Metrics.AvgOrderDeltaPercent.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected +100%% avg order delta, got %s", result.Metrics.AvgOrderDeltaPercent)
	}
}

func TestRevenueConservation(t *testing.T) {
	conn := openTestDB(t)
	svc := newAnalyticsService(t, conn)
	ringID, chainID := uuid.New(), uuid.New()
	seedSale(t, conn, saleSpec{
		at:    time.Date(2026, 8, 15, 11, 0, 0, 0, ist.Location()),
		total: 2600,
		items: types.SaleItems{
			{ProductID: &ringID, ProductName: "Gold Ring", Category: "ring", Material: "gold", Quantity: 2, UnitPrice: decimal.NewFromInt(500), LineTotal: decimal.NewFromInt(1000)},
			{ProductID: &chainID, ProductName: "Silver Chain", Category: "chain", Material: "silver", Quantity: 1, UnitPrice: decimal.NewFromInt(1600), LineTotal: decimal.NewFromInt(1600)},
		},
	})

	result, err := svc.SalesAnalytics(context.Background(), Params{Timeframe: timeframe(TimeframeToday)})
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}

	sum := decimal.Zero
	for _, row := range result.RevenueByCategory {
		sum = sum.Add(row.Revenue)
	}
	if !sum.Equal(result.Metrics.TotalRevenue) {
		t.Fatalf("category sum %s != total revenue %s", sum, result.Metrics.TotalRevenue)
	}
	if len(result.RevenueByCategory) != 2 || result.RevenueByCategory[0].Category != "chain" {
		t.Fatalf("expected chain first by revenue, got %+v", result.RevenueByCategory)
	}
	percentSum := decimal.Zero
	for _, row := range result.RevenueByCategory {
		percentSum = percentSum.Add(row.Percent)
	}
	if !percentSum.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected percentages to sum to 100, got %s", percentSum)
	}
}

func TestTopProductsLimitAndOrder(t *testing.T) {
	conn := openTestDB(t)
	svc := newAnalyticsService(t, conn)
	names := []string{"Ring A", "Ring B", "Ring C", "Ring D", "Ring E", "Ring F"}
	for i, name := range names {
		id := uuid.New()
		total := int64((i + 1) * 100)
		seedSale(t, conn, saleSpec{
			at:    time.Date(2026, 8, 15, 11, 0, 0, 0, ist.Location()),
			total: total,
			items: types.SaleItems{{
				ProductID:   &id,
				ProductName: name,
				Category:    "ring",
				Material:    "gold",
				Quantity:    1,
				UnitPrice:   decimal.NewFromInt(total),
				LineTotal:   decimal.NewFromInt(total),
			}},
		})
	}

	result, err := svc.SalesAnalytics(context.Background(), Params{Timeframe: timeframe(TimeframeToday)})
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if len(result.TopProducts) != 5 {
		t.Fatalf("expected top 5, got %d", len(result.TopProducts))
	}
	if result.TopProducts[0].ProductName != "Ring F" || !result.TopProducts[0].Revenue.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("expected Ring F on top, got %+v", result.TopProducts[0])
	}
	if result.TopProducts[4].ProductName != "Ring B" {
		t.Fatalf("expected Ring B last, got %+v", result.TopProducts[4])
	}
}

func TestBillTypeFilter(t *testing.T) {
	conn := openTestDB(t)
	svc := newAnalyticsService(t, conn)
	gst, nonGST := enums.BillTypeGST, enums.BillTypeNonGST
	at := time.Date(2026, 8, 15, 11, 0, 0, 0, ist.Location())
	seedSale(t, conn, saleSpec{at: at, total: 1000, billType: &gst})
	seedSale(t, conn, saleSpec{at: at, total: 700, billType: &nonGST})
	seedSale(t, conn, saleSpec{at: at, total: 300})

	result, err := svc.SalesAnalytics(context.Background(), Params{Timeframe: timeframe(TimeframeToday), BillType: &gst})
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if !result.Metrics.TotalRevenue.Equal(decimal.NewFromInt(1000)) || result.Metrics.TotalOrders != 1 {
		t.Fatalf("expected only the GST sale, got %+v", result.Metrics)
	}
}

func TestCustomRangeGranularity(t *testing.T) {
	conn := openTestDB(t)
	svc := newAnalyticsService(t, conn)
	start := time.Date(2026, 8, 10, 0, 0, 0, 0, ist.Location())
	end := time.Date(2026, 8, 13, 0, 0, 0, 0, ist.Location())
	seedSale(t, conn, saleSpec{at: time.Date(2026, 8, 11, 15, 0, 0, 0, ist.Location()), total: 900})

	result, err := svc.SalesAnalytics(context.Background(), Params{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if len(result.SalesTrend) != 3 {
		t.Fatalf("expected 3 daily buckets for a 3-day span, got %d", len(result.SalesTrend))
	}
	if !result.SalesTrend[1].Value.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("expected 900 on the middle day, got %s", result.SalesTrend[1].Value)
	}

	hourEnd := start.Add(6 * time.Hour)
	hourly, err := svc.SalesAnalytics(context.Background(), Params{Start: &start, End: &hourEnd})
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if len(hourly.SalesTrend) != 6 {
		t.Fatalf("expected 6 hourly buckets for a 6-hour span, got %d", len(hourly.SalesTrend))
	}
}

func TestWindowValidation(t *testing.T) {
	conn := openTestDB(t)
	svc := newAnalyticsService(t, conn)

	_, err := svc.SalesAnalytics(context.Background(), Params{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	bad := Timeframe("quarter")
	_, err = svc.SalesAnalytics(context.Background(), Params{Timeframe: &bad})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	start := testNow
	end := testNow.Add(-time.Hour)
	_, err = svc.SalesAnalytics(context.Background(), Params{Start: &start, End: &end})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
