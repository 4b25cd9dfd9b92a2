package scanner

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgehunter/edgehunter/internal/domain"
)

func TestOversold_FlagsQualifyingStock(t *testing.T) {
	repo := &fakeStockRepo{stocks: []domain.Stock{
		{
			Symbol:        "ABC",
			Name:          "ABC Mining",
			ChangePercent: -12,
			Volume:        200_000,
			MarketCap:     80_000_000,
		},
	}}

	detector := NewOversoldDetector(repo, zerolog.Nop())
	opps := detector.Scan()

	require.Len(t, opps, 1)
	opp := opps[0]
	assert.Equal(t, "ABC", opp.Symbol)
	assert.Equal(t, domain.TypeOversold, opp.Type)
	assert.Equal(t, 70.0, opp.Score)
	assert.InDelta(t, 84.0, opp.AIAwareScore, 1e-9)
	assert.Equal(t, "ABC Mining oversold with 12.0% decline", opp.Description)
	assert.Equal(t, []string{
		"Price down 12.0%",
		"Volume: 200,000",
		"Market cap: $80M",
	}, opp.Triggers)
	assert.Equal(t, domain.RiskHigh, opp.RiskLevel)
	assert.Equal(t, "3-14 days", opp.Timeframe)
	assert.Contains(t, opp.ID, "oversold_ABC_")
}

func TestOversold_DeclineBandIsExclusive(t *testing.T) {
	repo := &fakeStockRepo{stocks: []domain.Stock{
		{Symbol: "FLAT", ChangePercent: -4, Volume: 200_000, MarketCap: 80_000_000},
		{Symbol: "EDGE5", ChangePercent: -5, Volume: 200_000, MarketCap: 80_000_000},
		{Symbol: "EDGE25", ChangePercent: -25, Volume: 200_000, MarketCap: 80_000_000},
		{Symbol: "CRASH", ChangePercent: -30, Volume: 200_000, MarketCap: 80_000_000},
	}}

	detector := NewOversoldDetector(repo, zerolog.Nop())
	assert.Empty(t, detector.Scan())
}

func TestOversold_SkipsOutsideCapBand(t *testing.T) {
	repo := &fakeStockRepo{stocks: []domain.Stock{
		{Symbol: "TINY", ChangePercent: -12, Volume: 200_000, MarketCap: 10_000_000},
		{Symbol: "HUGE", ChangePercent: -12, Volume: 200_000, MarketCap: 600_000_000},
	}}

	detector := NewOversoldDetector(repo, zerolog.Nop())
	assert.Empty(t, detector.Scan())
}

func TestOversold_ScoreGateSkipsWeakCandidates(t *testing.T) {
	// Qualifies on decline and cap band but scores 31.5, under the gate
	repo := &fakeStockRepo{stocks: []domain.Stock{
		{Symbol: "MEH", ChangePercent: -6, Volume: 0, MarketCap: 400_000_000},
	}}

	detector := NewOversoldDetector(repo, zerolog.Nop())
	assert.Empty(t, detector.Scan())
}

func TestOversold_RepositoryFailureDegradesToEmpty(t *testing.T) {
	repo := &fakeStockRepo{err: errors.New("database locked")}

	detector := NewOversoldDetector(repo, zerolog.Nop())
	assert.Empty(t, detector.Scan())
}

func TestOversold_RiskAssessment(t *testing.T) {
	cases := []struct {
		name  string
		stock domain.Stock
		want  domain.RiskLevel
	}{
		{"mild decline large cap", domain.Stock{ChangePercent: -8, MarketCap: 250_000_000}, domain.RiskLow},
		{"moderate decline mid cap", domain.Stock{ChangePercent: -12, MarketCap: 150_000_000}, domain.RiskMedium},
		{"steep decline small cap", domain.Stock{ChangePercent: -18, MarketCap: 80_000_000}, domain.RiskHigh},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, assessOversoldRisk(tc.stock))
		})
	}
}

func TestOversold_SortedByScoreDescending(t *testing.T) {
	repo := &fakeStockRepo{stocks: []domain.Stock{
		{Symbol: "WEAK", ChangePercent: -6, Volume: 160_000, MarketCap: 180_000_000},
		{Symbol: "STRONG", ChangePercent: -12, Volume: 200_000, MarketCap: 80_000_000},
	}}

	detector := NewOversoldDetector(repo, zerolog.Nop())
	opps := detector.Scan()

	require.Len(t, opps, 2)
	assert.Equal(t, "STRONG", opps[0].Symbol)
	assert.Equal(t, "WEAK", opps[1].Symbol)
}
