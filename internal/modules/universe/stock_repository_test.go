package universe

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgehunter/edgehunter/internal/database"
	"github.com/edgehunter/edgehunter/internal/domain"
)

func testMarketDB(t *testing.T, name string) *database.DB {
	t.Helper()
	db, err := database.New(database.Config{
		Path:    "file:" + name + "?mode=memory&cache=shared",
		Profile: database.ProfileStandard,
		Name:    "market",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())
	return db
}

func testStock(symbol, sector string) domain.Stock {
	return domain.Stock{
		Symbol:        symbol,
		Name:          symbol + " Ltd",
		Price:         1.50,
		Change:        -0.12,
		ChangePercent: -7.4,
		Volume:        220_000,
		MarketCap:     95_000_000,
		Sector:        sector,
		LastUpdated:   time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC),
	}
}

func TestStockRepository_UpsertAndGetBySymbol(t *testing.T) {
	db := testMarketDB(t, "universe_upsert")
	repo := NewStockRepository(db.Conn(), zerolog.Nop())

	stock := testStock("ABC.AX", "Materials")
	require.NoError(t, repo.Upsert(stock))

	got, err := repo.GetBySymbol("ABC.AX")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, stock.Name, got.Name)
	assert.Equal(t, stock.Price, got.Price)
	assert.Equal(t, stock.Volume, got.Volume)
	assert.Equal(t, stock.Sector, got.Sector)
	assert.True(t, got.LastUpdated.Equal(stock.LastUpdated))
}

func TestStockRepository_UpsertOverwritesExisting(t *testing.T) {
	db := testMarketDB(t, "universe_overwrite")
	repo := NewStockRepository(db.Conn(), zerolog.Nop())

	stock := testStock("DEF.AX", "Healthcare")
	require.NoError(t, repo.Upsert(stock))

	stock.Price = 1.80
	stock.Sector = "Technology"
	require.NoError(t, repo.Upsert(stock))

	got, err := repo.GetBySymbol("DEF.AX")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1.80, got.Price)
	assert.Equal(t, "Technology", got.Sector)

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStockRepository_SymbolIsNormalized(t *testing.T) {
	db := testMarketDB(t, "universe_normalize")
	repo := NewStockRepository(db.Conn(), zerolog.Nop())

	stock := testStock("ghi.ax", "Energy")
	require.NoError(t, repo.Upsert(stock))

	got, err := repo.GetBySymbol("  ghi.ax ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "GHI.AX", got.Symbol)
}

func TestStockRepository_GetBySymbolMissing(t *testing.T) {
	db := testMarketDB(t, "universe_missing")
	repo := NewStockRepository(db.Conn(), zerolog.Nop())

	got, err := repo.GetBySymbol("NOPE.AX")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStockRepository_GetAll(t *testing.T) {
	db := testMarketDB(t, "universe_getall")
	repo := NewStockRepository(db.Conn(), zerolog.Nop())

	require.NoError(t, repo.Upsert(testStock("AAA.AX", "Materials")))
	require.NoError(t, repo.Upsert(testStock("BBB.AX", "Financials")))
	require.NoError(t, repo.Upsert(testStock("CCC.AX", "Technology")))

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 3)

	symbols := make(map[string]bool, len(all))
	for _, s := range all {
		symbols[s.Symbol] = true
	}
	assert.True(t, symbols["AAA.AX"])
	assert.True(t, symbols["BBB.AX"])
	assert.True(t, symbols["CCC.AX"])
}
