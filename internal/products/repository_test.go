package product

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sonigems/saraf-backend/pkg/db/models"
)

func setupRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:products_repo_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Product{}, &models.LongSetPart{}))
	return conn
}

func repoProduct(sku, category string, stock int) *models.Product {
	return &models.Product{
		SKU:      sku,
		Name:     "Gold Ring " + sku,
		Price:    decimal.NewFromInt(1500),
		Stock:    stock,
		Category: category,
		Material: "gold",
	}
}

func TestRepositoryCreateAndFindPreloadsParts(t *testing.T) {
	repo := NewRepository(setupRepoTestDB(t))
	ctx := context.Background()

	prod := repoProduct("SET-001", "long_set", 1)
	prod.IsLongSet = true
	prod.Parts = []models.LongSetPart{
		{Position: 2, PartName: "Pendant", CostPrice: decimal.NewFromInt(900)},
		{Position: 1, PartName: "Chain", CostPrice: decimal.NewFromInt(400)},
	}
	created, err := repo.Create(ctx, prod)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Len(t, found.Parts, 2)
	assert.Equal(t, "Chain", found.Parts[0].PartName)
	assert.Equal(t, "Pendant", found.Parts[1].PartName)
}

func TestRepositoryFindBySKUMissing(t *testing.T) {
	repo := NewRepository(setupRepoTestDB(t))

	found, err := repo.FindBySKU(context.Background(), "NOPE-404")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestRepositoryListFilters(t *testing.T) {
	repo := NewRepository(setupRepoTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, repoProduct("RING-001", "ring", 10))
	require.NoError(t, err)
	_, err = repo.Create(ctx, repoProduct("CHAIN-001", "chain", 10))
	require.NoError(t, err)
	low := repoProduct("RING-002", "ring", 2)
	low.LowStockThreshold = 5
	_, err = repo.Create(ctx, low)
	require.NoError(t, err)

	rings, _, err := repo.List(ctx, ListParams{Category: "ring"})
	require.NoError(t, err)
	assert.Len(t, rings, 2)

	lowStock, _, err := repo.List(ctx, ListParams{LowStock: true})
	require.NoError(t, err)
	require.Len(t, lowStock, 1)
	assert.Equal(t, "RING-002", lowStock[0].SKU)

	bySearch, _, err := repo.List(ctx, ListParams{Search: "chain"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "CHAIN-001", bySearch[0].SKU)
}

func TestRepositoryListPaginates(t *testing.T) {
	repo := NewRepository(setupRepoTestDB(t))
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		prod := repoProduct(list5SKU(i), "ring", 1)
		prod.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		_, err := repo.Create(ctx, prod)
		require.NoError(t, err)
	}

	first, cursor, err := repo.List(ctx, ListParams{Limit: 3})
	require.NoError(t, err)
	require.Len(t, first, 3)
	require.NotNil(t, cursor)

	second, next, err := repo.List(ctx, ListParams{Limit: 3, Cursor: cursor})
	require.NoError(t, err)
	assert.Len(t, second, 2)
	assert.Nil(t, next)

	seen := map[string]bool{}
	for _, p := range append(first, second...) {
		seen[p.SKU] = true
	}
	assert.Len(t, seen, 5)
}

func list5SKU(i int) string {
	return "PAGE-00" + string(rune('1'+i))
}

func TestRepositoryDecrementStockFloor(t *testing.T) {
	repo := NewRepository(setupRepoTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, repoProduct("RING-010", "ring", 3))
	require.NoError(t, err)

	ok, err := repo.DecrementStock(ctx, created.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DecrementStock(ctx, created.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, found.Stock)
}

func TestRepositoryReplacePartsSwapsWholesale(t *testing.T) {
	repo := NewRepository(setupRepoTestDB(t))
	ctx := context.Background()

	prod := repoProduct("SET-002", "long_set", 1)
	prod.IsLongSet = true
	prod.Parts = []models.LongSetPart{
		{Position: 1, PartName: "Chain", CostPrice: decimal.NewFromInt(400)},
	}
	created, err := repo.Create(ctx, prod)
	require.NoError(t, err)

	err = repo.ReplaceParts(ctx, created.ID, []models.LongSetPart{
		{Position: 1, PartName: "Choker", CostPrice: decimal.NewFromInt(600)},
		{Position: 2, PartName: "Tikka", CostPrice: decimal.NewFromInt(300)},
	})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, found.Parts, 2)
	assert.Equal(t, "Choker", found.Parts[0].PartName)
}

func TestRepositoryDeleteReportsMiss(t *testing.T) {
	repo := NewRepository(setupRepoTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, repoProduct("RING-020", "ring", 1))
	require.NoError(t, err)

	gone, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, gone)

	gone, err = repo.Delete(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, gone)
}
