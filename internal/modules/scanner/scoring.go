// Package scanner implements the opportunity scanning engine: the
// scoring model, the three signal detectors, and the orchestrator that
// runs them concurrently and merges their output.
package scanner

import (
	"math"

	"github.com/edgehunter/edgehunter/internal/domain"
)

// Target market cap band for the small-cap focus, in AUD.
const (
	targetCapMin = 50_000_000
	targetCapMax = 500_000_000
)

// BaseScore computes the base opportunity score in [0,100] for a stock,
// optionally relative to its sector's performance.
//
// The model is an additive step function over four factor groups; each
// factor contributes its full points when its threshold holds and
// nothing otherwise. There is no interpolation between thresholds.
func BaseScore(stock domain.Stock, sector *domain.SectorSnapshot) float64 {
	score := 0.0

	// Technical factors (40 points max)
	if stock.ChangePercent < -5 {
		score += 15 // oversold
	}
	if stock.ChangePercent < -10 {
		score += 10 // heavily oversold
	}
	if stock.Volume > 150_000 {
		score += 10 // high volume
	}
	if stock.MarketCap >= targetCapMin && stock.MarketCap <= targetCapMax {
		score += 5 // target size
	}

	// Sector relative performance (30 points max)
	if sector != nil {
		relative := stock.ChangePercent - sector.ChangePercent
		if relative < -3 {
			score += 15 // lagging sector
		}
		if relative < -5 {
			score += 10 // significantly lagging
		}
		if sector.ChangePercent > 2 && stock.ChangePercent < 0 {
			score += 5 // sector up, stock down
		}
	}

	// Market cap efficiency (20 points max); the bands stack
	if stock.MarketCap < 200_000_000 {
		score += 10
	}
	if stock.MarketCap < 100_000_000 {
		score += 5
	}
	if stock.MarketCap > 50_000_000 {
		score += 5 // not micro cap risk
	}

	// Volatility and momentum (10 points max)
	if math.Abs(stock.ChangePercent) > 3 {
		score += 5
	}
	if stock.ChangePercent > -15 && stock.ChangePercent < -3 {
		score += 5 // sweet spot oversold
	}

	return math.Min(score, 100)
}

// AIAwareScore adjusts a base score with multiplicative factors that
// model where automated trading systems are believed to be at a
// structural disadvantage. Each factor's condition is evaluated against
// the stock and signal type, never the intermediate score, so the
// factors compose in any order.
//
// The result is clamped to 100 here, at the model boundary only.
// The crypto correlation detector multiplies this output again with its
// lag-strength factor, so emitted scores for that signal type can
// legitimately exceed 100.
func AIAwareScore(baseScore float64, stock domain.Stock, signalType domain.OpportunityType) float64 {
	score := baseScore

	// Human advantage factors

	// Multi-day lag opportunities: automated systems focus intraday
	if signalType == domain.TypeCryptoCorrelation || signalType == domain.TypeSectorLaggard {
		score *= 1.3
	}

	// Small cap blind spots: algorithms avoid illiquid names
	if stock.MarketCap < 150_000_000 {
		score *= 1.2
	}

	// Cross-asset correlation: harder for single-asset models to detect.
	// Crypto correlation deliberately stacks with the 1.3 boost above.
	if signalType == domain.TypeCryptoCorrelation || signalType == domain.TypeCommodityDisconnect {
		score *= 1.25
	}

	// Sentiment gaps: good earnings ignored by a falling price
	if signalType == domain.TypeEarningsSurprise && stock.ChangePercent < 0 {
		score *= 1.4
	}

	// Disadvantage factors

	// Extreme moves are likely machine driven already
	if math.Abs(stock.ChangePercent) > 15 {
		score *= 0.7
	}

	// High volume with a clear pattern: machines already acting
	if stock.Volume > 300_000 {
		score *= 0.8
	}

	// Large cap efficiency
	if stock.MarketCap > 300_000_000 {
		score *= 0.9
	}

	// Obvious technical signals get recognized faster by machines
	if signalType == domain.TypeOversold && stock.ChangePercent < -20 {
		score *= 0.8
	}

	return math.Min(score, 100)
}
