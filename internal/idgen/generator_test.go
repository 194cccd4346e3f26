package idgen

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sonigems/saraf-backend/pkg/db/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.IDSequence{}); err != nil {
		t.Fatalf("migrate id_sequences: %v", err)
	}
	t.Cleanup(func() {
		conn.Exec("DELETE FROM id_sequences")
	})
	return conn
}

func TestNextAllocatesMonotonicValues(t *testing.T) {
	gen, err := NewGenerator(openTestDB(t))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := gen.Next(ctx, ScopeProductRequest, 2026)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}
}

func TestNextIsolatesScopeAndYear(t *testing.T) {
	gen, err := NewGenerator(openTestDB(t))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	ctx := context.Background()

	if _, err := gen.Next(ctx, ScopeSalesRequest, 2026); err != nil {
		t.Fatalf("next: %v", err)
	}
	if got, _ := gen.Next(ctx, ScopeSalesRequest, 2026); got != 2 {
		t.Fatalf("expected same scope/year to continue at 2, got %d", got)
	}
	if got, _ := gen.Next(ctx, ScopeBill, 2026); got != 1 {
		t.Fatalf("expected fresh scope to start at 1, got %d", got)
	}
	if got, _ := gen.Next(ctx, ScopeSalesRequest, 2027); got != 1 {
		t.Fatalf("expected fresh year to start at 1, got %d", got)
	}
}

func TestNextNumberFormatsDisplayID(t *testing.T) {
	gen, err := NewGenerator(openTestDB(t))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	at := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
	number, err := gen.NextNumber(context.Background(), ScopeBill, at)
	if err != nil {
		t.Fatalf("next number: %v", err)
	}
	if number != "BILL-2026-0001" {
		t.Fatalf("unexpected number %s", number)
	}
}

func TestNextRejectsEmptyScope(t *testing.T) {
	gen, err := NewGenerator(openTestDB(t))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	if _, err := gen.Next(context.Background(), "", 2026); err == nil {
		t.Fatal("expected validation error for empty scope")
	}
}

func TestFormatWidensBeyondFourDigits(t *testing.T) {
	if got := Format(ScopeProductRequest, 2026, 7); got != "PR-2026-0007" {
		t.Fatalf("unexpected format %s", got)
	}
	if got := Format(ScopeProductRequest, 2026, 12345); got != "PR-2026-12345" {
		t.Fatalf("unexpected format %s", got)
	}
}
