package scanner

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/edgehunter/edgehunter/internal/domain"
)

// sectorETFs is the fixed set of ASX sector-ETF proxies fetched per scan.
var sectorETFs = []string{"XEJ", "XSJ", "XMJ", "XDJ", "XIJ", "XHJ", "XFJ", "XTJ"}

var etfSectorNames = map[string]string{
	"XEJ": "Energy",
	"XSJ": "Consumer Staples",
	"XMJ": "Materials",
	"XDJ": "Consumer Discretionary",
	"XIJ": "Industrials",
	"XHJ": "Healthcare",
	"XFJ": "Financials",
	"XTJ": "Technology",
}

var sectorToETF = map[string]string{
	"Energy":                 "XEJ",
	"Consumer Staples":       "XSJ",
	"Materials":              "XMJ",
	"Consumer Discretionary": "XDJ",
	"Industrials":            "XIJ",
	"Healthcare":             "XHJ",
	"Financials":             "XFJ",
	"Technology":             "XTJ",
}

// defaultSectorETF is used for sectors outside the mapping. Defaulting
// to the energy proxy instead of skipping the stock is a deliberate
// approximation carried over from the original model.
const defaultSectorETF = "XEJ"

// SectorLaggardDetector flags small caps lagging a rising sector.
type SectorLaggardDetector struct {
	quotes EquityQuoter
	stocks StockRepository
	log    zerolog.Logger
}

// NewSectorLaggardDetector creates a new sector laggard detector
func NewSectorLaggardDetector(quotes EquityQuoter, stocks StockRepository, log zerolog.Logger) *SectorLaggardDetector {
	return &SectorLaggardDetector{
		quotes: quotes,
		stocks: stocks,
		log:    log.With().Str("detector", "sector_laggard").Logger(),
	}
}

// Name returns the detector name
func (d *SectorLaggardDetector) Name() string {
	return "sector_laggard"
}

// Scan fetches sector-ETF performance, then walks the small-cap
// universe looking for stocks lagging a rising sector by more than 3%.
// Individual ETF fetch failures shrink the sector table; a repository
// failure degrades to an empty result.
func (d *SectorLaggardDetector) Scan() []domain.Opportunity {
	var opps []domain.Opportunity

	sectors := d.fetchSectorPerformance()

	stocks, err := d.stocks.GetAll()
	if err != nil {
		d.log.Error().Err(err).Msg("Sector laggard scan failed: stock repository unavailable")
		return opps
	}

	for _, stock := range stocks {
		if stock.MarketCap < targetCapMin || stock.MarketCap > targetCapMax {
			continue
		}

		etf := mapSectorToETF(stock.Sector)
		sector, ok := sectors[etf]
		if !ok {
			continue
		}

		relativeLag := stock.ChangePercent - sector.ChangePercent

		// Stock must be lagging a *rising* sector
		if relativeLag >= -3 || sector.ChangePercent <= 0 {
			continue
		}

		baseScore := BaseScore(stock, &sector)
		aiScore := AIAwareScore(baseScore, stock, domain.TypeSectorLaggard)

		if aiScore <= 60 {
			continue
		}

		opps = append(opps, domain.Opportunity{
			ID:           fmt.Sprintf("lag_%s_%d", stock.Symbol, time.Now().UnixMilli()),
			Symbol:       stock.Symbol,
			Type:         domain.TypeSectorLaggard,
			Score:        baseScore,
			AIAwareScore: aiScore,
			Description: fmt.Sprintf("%s lagging %s sector by %.1f%%",
				stock.Name, sector.Name, math.Abs(relativeLag)),
			Triggers: []string{
				fmt.Sprintf("Sector (%s) up %.1f%%", etf, sector.ChangePercent),
				fmt.Sprintf("Stock down %.1f%%", math.Abs(stock.ChangePercent)),
				fmt.Sprintf("Relative lag: %.1f%%", math.Abs(relativeLag)),
			},
			RiskLevel:   assessLaggardRisk(aiScore, stock.MarketCap),
			Timeframe:   "2-10 days",
			FlaggedDate: time.Now(),
		})
	}

	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].AIAwareScore > opps[j].AIAwareScore
	})

	d.log.Info().Int("count", len(opps)).Msg("Sector laggard scan complete")
	return opps
}

// fetchSectorPerformance builds the per-scan sector table from ETF
// quotes. Failed ETFs are logged and omitted.
func (d *SectorLaggardDetector) fetchSectorPerformance() map[string]domain.SectorSnapshot {
	sectors := make(map[string]domain.SectorSnapshot, len(sectorETFs))

	for _, etf := range sectorETFs {
		quote, err := d.quotes.GetQuote(etf)
		if err != nil {
			d.log.Warn().Err(err).Str("etf", etf).Msg("Failed to fetch sector ETF")
			continue
		}

		sectors[etf] = domain.SectorSnapshot{
			Symbol:        etf,
			Name:          etfSectorNames[etf],
			Price:         quote.Price,
			Change:        quote.Change,
			ChangePercent: quote.ChangePercent,
		}
	}

	return sectors
}

func mapSectorToETF(sector string) string {
	if etf, ok := sectorToETF[sector]; ok {
		return etf
	}
	return defaultSectorETF
}

func assessLaggardRisk(score, marketCap float64) domain.RiskLevel {
	if score > 80 && marketCap > 200_000_000 {
		return domain.RiskLow
	}
	if score > 70 && marketCap > 100_000_000 {
		return domain.RiskMedium
	}
	return domain.RiskHigh
}
