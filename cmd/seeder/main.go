// Command seeder populates the stock universe with a starter set of
// ASX small caps, fetching live quotes for each.
package main

import (
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/equity"

	"github.com/edgehunter/edgehunter/internal/config"
	"github.com/edgehunter/edgehunter/internal/database"
	"github.com/edgehunter/edgehunter/internal/domain"
	"github.com/edgehunter/edgehunter/internal/modules/universe"
	"github.com/edgehunter/edgehunter/pkg/logger"
)

// seedStock pairs a Yahoo symbol with the sector the quote API does not
// provide.
type seedStock struct {
	symbol string
	sector string
}

// seedUniverse is the starter watchlist: ASX small caps spread across
// the sectors the sector laggard detector tracks.
var seedUniverse = []seedStock{
	{"DEG.AX", "Materials"},
	{"CHN.AX", "Materials"},
	{"BGL.AX", "Materials"},
	{"NVX.AX", "Energy"},
	{"BOE.AX", "Energy"},
	{"PNV.AX", "Healthcare"},
	{"IMU.AX", "Healthcare"},
	{"BVS.AX", "Technology"},
	{"DUB.AX", "Technology"},
	{"TYR.AX", "Financials"},
	{"OFX.AX", "Financials"},
	{"SSM.AX", "Industrials"},
	{"AMS.AX", "Industrials"},
	{"BBN.AX", "Consumer Discretionary"},
	{"ADH.AX", "Consumer Discretionary"},
	{"CGC.AX", "Consumer Staples"},
	{"DCC.AX", "Technology"},
	{"CRYP.AX", "Technology"},
	{"EBTC.AX", "Technology"},
}

func main() {
	log := logger.New(logger.Config{Level: "info", Pretty: true})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	marketDB, err := database.New(database.Config{
		Path:    cfg.MarketDBPath,
		Profile: database.ProfileStandard,
		Name:    "market",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open market database")
	}
	defer marketDB.Close()

	if err := marketDB.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	repo := universe.NewStockRepository(marketDB.Conn(), log)

	seeded := 0
	for _, seed := range seedUniverse {
		q, err := equity.Get(seed.symbol)
		if err != nil || q == nil {
			log.Warn().Err(err).Str("symbol", seed.symbol).Msg("Failed to fetch quote, skipping")
			continue
		}

		stock := domainStock(seed, q)
		if err := repo.Upsert(stock); err != nil {
			log.Error().Err(err).Str("symbol", seed.symbol).Msg("Failed to upsert stock")
			continue
		}

		log.Info().
			Str("symbol", stock.Symbol).
			Float64("price", stock.Price).
			Float64("change_percent", stock.ChangePercent).
			Msg("Seeded stock")
		seeded++
	}

	log.Info().Int("seeded", seeded).Int("total", len(seedUniverse)).Msg("Universe seeding complete")
}

func domainStock(seed seedStock, q *finance.Equity) domain.Stock {
	name := q.ShortName
	if name == "" {
		name = seed.symbol
	}

	return domain.Stock{
		Symbol:        seed.symbol,
		Name:          name,
		Sector:        seed.sector,
		Price:         q.RegularMarketPrice,
		Change:        q.RegularMarketChange,
		ChangePercent: q.RegularMarketChangePercent,
		Volume:        int64(q.RegularMarketVolume),
		MarketCap:     float64(q.MarketCap),
		LastUpdated:   time.Now(),
	}
}
