package scanner

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/edgehunter/edgehunter/internal/domain"
)

// assumedCorrelation is the fixed assumed co-movement between Bitcoin
// and the crypto-proxy equities. It is not computed from history; the
// technicals module reports realized correlation separately.
const assumedCorrelation = 0.7

// lagThreshold is the minimum divergence (in percentage points) between
// expected and actual movement before a candidate exists.
const lagThreshold = 5.0

// cryptoWatchlist is the fixed watchlist of ASX crypto-proxy equities.
var cryptoWatchlist = []string{"DCC.AX", "CRYP.AX", "EBTC.AX"}

var cryptoStockNames = map[string]string{
	"DCC.AX":  "DigitalX",
	"CRYP.AX": "Crypto ETF",
	"EBTC.AX": "Bitcoin ETF",
}

// estimatedMarketCap stands in when the provider omits market cap for a
// proxy equity.
const estimatedMarketCap = 100_000_000

// CryptoCorrelationDetector flags crypto-proxy equities that have not
// yet followed a significant Bitcoin move.
type CryptoCorrelationDetector struct {
	crypto CryptoQuoter
	equity EquityQuoter
	log    zerolog.Logger
}

// NewCryptoCorrelationDetector creates a new crypto correlation detector
func NewCryptoCorrelationDetector(crypto CryptoQuoter, equity EquityQuoter, log zerolog.Logger) *CryptoCorrelationDetector {
	return &CryptoCorrelationDetector{
		crypto: crypto,
		equity: equity,
		log:    log.With().Str("detector", "crypto_correlation").Logger(),
	}
}

// Name returns the detector name
func (d *CryptoCorrelationDetector) Name() string {
	return "crypto_correlation"
}

// Scan fetches the BTC and ETH reference prices once, then checks each
// watchlist equity for divergence from its expected co-movement.
// A reference fetch failure degrades to an empty result; individual
// equity failures are skipped.
func (d *CryptoCorrelationDetector) Scan() []domain.Opportunity {
	var opps []domain.Opportunity

	btc, err := d.crypto.GetQuote("BTC")
	if err != nil {
		d.log.Error().Err(err).Msg("Crypto correlation scan failed: no BTC reference")
		return opps
	}
	if _, err := d.crypto.GetQuote("ETH"); err != nil {
		d.log.Error().Err(err).Msg("Crypto correlation scan failed: no ETH reference")
		return opps
	}

	btcChange := btc.ChangePercent

	for _, symbol := range cryptoWatchlist {
		quote, err := d.equity.GetQuote(symbol)
		if err != nil {
			d.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to fetch crypto-proxy equity")
			continue
		}

		marketCap := quote.MarketCap
		if marketCap == 0 {
			marketCap = estimatedMarketCap
		}

		stock := domain.Stock{
			Symbol:        quote.Symbol,
			Name:          cryptoStockName(symbol),
			Price:         quote.Price,
			Change:        quote.Change,
			ChangePercent: quote.ChangePercent,
			Volume:        quote.Volume,
			MarketCap:     marketCap,
			Sector:        "Technology",
			LastUpdated:   time.Now(),
		}

		expected := btcChange * assumedCorrelation
		lag := expected - stock.ChangePercent
		if math.Abs(lag) <= lagThreshold {
			continue
		}

		baseScore := BaseScore(stock, nil)
		aiScore := AIAwareScore(baseScore, stock, domain.TypeCryptoCorrelation)

		// Lag-strength multiplier on top of the model output. This is
		// applied after the model's 100 clamp, so the emitted score can
		// exceed 100; the ranking depends on it staying unclamped.
		strength := math.Min(math.Abs(lag)/10, 1.5)
		boosted := aiScore * strength

		if boosted <= 55 {
			continue
		}

		risk := domain.RiskLow
		if math.Abs(lag) > 10 {
			risk = domain.RiskMedium
		}

		opps = append(opps, domain.Opportunity{
			ID:           fmt.Sprintf("crypto_%s_%d", stock.Symbol, time.Now().UnixMilli()),
			Symbol:       stock.Symbol,
			Type:         domain.TypeCryptoCorrelation,
			Score:        baseScore,
			AIAwareScore: boosted,
			Description:  fmt.Sprintf("%s lagging Bitcoin by %.1f%%", stock.Name, lag),
			Triggers: []string{
				fmt.Sprintf("Bitcoin moved %.1f%%", btcChange),
				fmt.Sprintf("%s moved %.1f%%", stock.Symbol, stock.ChangePercent),
				"Historical correlation: ~70%",
			},
			RiskLevel:   risk,
			Timeframe:   "1-5 days",
			FlaggedDate: time.Now(),
		})
	}

	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].AIAwareScore > opps[j].AIAwareScore
	})

	d.log.Info().Int("count", len(opps)).Float64("btc_change", btcChange).Msg("Crypto correlation scan complete")
	return opps
}

func cryptoStockName(symbol string) string {
	if name, ok := cryptoStockNames[symbol]; ok {
		return name
	}
	return symbol
}
