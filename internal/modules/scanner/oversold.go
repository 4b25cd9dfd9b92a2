package scanner

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/edgehunter/edgehunter/internal/domain"
)

// OversoldDetector flags small caps down sharply but not
// catastrophically: at least 5% but less than 25%.
type OversoldDetector struct {
	stocks StockRepository
	log    zerolog.Logger
}

// NewOversoldDetector creates a new oversold detector
func NewOversoldDetector(stocks StockRepository, log zerolog.Logger) *OversoldDetector {
	return &OversoldDetector{
		stocks: stocks,
		log:    log.With().Str("detector", "oversold").Logger(),
	}
}

// Name returns the detector name
func (d *OversoldDetector) Name() string {
	return "oversold"
}

// Scan walks the repository; no network fetches are involved, so the
// only failure mode is the repository itself, which degrades to an
// empty result.
func (d *OversoldDetector) Scan() []domain.Opportunity {
	var opps []domain.Opportunity

	stocks, err := d.stocks.GetAll()
	if err != nil {
		d.log.Error().Err(err).Msg("Oversold scan failed: stock repository unavailable")
		return opps
	}

	for _, stock := range stocks {
		if stock.MarketCap < targetCapMin || stock.MarketCap > targetCapMax {
			continue
		}
		if stock.ChangePercent >= -5 || stock.ChangePercent <= -25 {
			continue
		}

		baseScore := BaseScore(stock, nil)
		aiScore := AIAwareScore(baseScore, stock, domain.TypeOversold)

		if aiScore <= 50 {
			continue
		}

		opps = append(opps, domain.Opportunity{
			ID:           fmt.Sprintf("oversold_%s_%d", stock.Symbol, time.Now().UnixMilli()),
			Symbol:       stock.Symbol,
			Type:         domain.TypeOversold,
			Score:        baseScore,
			AIAwareScore: aiScore,
			Description: fmt.Sprintf("%s oversold with %.1f%% decline",
				stock.Name, math.Abs(stock.ChangePercent)),
			Triggers: []string{
				fmt.Sprintf("Price down %.1f%%", math.Abs(stock.ChangePercent)),
				fmt.Sprintf("Volume: %s", humanize.Comma(stock.Volume)),
				fmt.Sprintf("Market cap: $%.0fM", stock.MarketCap/1_000_000),
			},
			RiskLevel:   assessOversoldRisk(stock),
			Timeframe:   "3-14 days",
			FlaggedDate: time.Now(),
		})
	}

	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].AIAwareScore > opps[j].AIAwareScore
	})

	d.log.Info().Int("count", len(opps)).Msg("Oversold scan complete")
	return opps
}

func assessOversoldRisk(stock domain.Stock) domain.RiskLevel {
	if stock.ChangePercent > -10 && stock.MarketCap > 200_000_000 {
		return domain.RiskLow
	}
	if stock.ChangePercent > -15 && stock.MarketCap > 100_000_000 {
		return domain.RiskMedium
	}
	return domain.RiskHigh
}
