// Package technicals computes indicator snapshots (RSI, moving
// averages, realized Bitcoin correlation) from historical daily closes.
package technicals

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/edgehunter/edgehunter/internal/domain"
	"github.com/edgehunter/edgehunter/pkg/formulas"
)

const (
	rsiPeriod   = 14
	smaShort    = 20
	smaLong     = 50
	fetchPeriod = "3mo"

	// btcReference is the Yahoo symbol used for the realized
	// correlation series. Quoted in AUD to match the equity series.
	btcReference = "BTC-AUD"

	// minCorrelationSamples is the minimum number of aligned daily
	// returns before a correlation is reported at all.
	minCorrelationSamples = 10
)

// HistoricalSource fetches daily closing prices for a symbol.
// Implemented by the yahoo client.
type HistoricalSource interface {
	GetHistoricalCloses(symbol string, period string) ([]domain.HistoricalClose, error)
}

// Snapshot is one symbol's computed indicator set. Pointer fields are
// nil when there was not enough history to compute the indicator.
type Snapshot struct {
	Symbol         string   `json:"symbol"`
	RSI14          *float64 `json:"rsi_14,omitempty"`
	SMA20          *float64 `json:"sma_20,omitempty"`
	SMA50          *float64 `json:"sma_50,omitempty"`
	BTCCorrelation *float64 `json:"btc_correlation,omitempty"`
	Samples        int      `json:"samples"`
}

// Service computes technical snapshots on demand
type Service struct {
	history HistoricalSource
	log     zerolog.Logger
}

// NewService creates a new technicals service
func NewService(history HistoricalSource, log zerolog.Logger) *Service {
	return &Service{
		history: history,
		log:     log.With().Str("module", "technicals").Logger(),
	}
}

// GetSnapshot fetches the symbol's recent closes and computes its
// indicators. The Bitcoin correlation is best-effort: a failed or short
// reference series leaves the field nil rather than failing the call.
func (s *Service) GetSnapshot(symbol string) (*Snapshot, error) {
	history, err := s.history.GetHistoricalCloses(symbol, fetchPeriod)
	if err != nil {
		return nil, fmt.Errorf("fetching closes for %s: %w", symbol, err)
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("no price history for %s", symbol)
	}

	closes := make([]float64, len(history))
	for i, h := range history {
		closes[i] = h.Close
	}

	snapshot := &Snapshot{
		Symbol:  symbol,
		RSI14:   formulas.CalculateRSI(closes, rsiPeriod),
		SMA20:   formulas.CalculateSMA(closes, smaShort),
		SMA50:   formulas.CalculateSMA(closes, smaLong),
		Samples: len(closes),
	}

	snapshot.BTCCorrelation = s.bitcoinCorrelation(symbol, closes)

	return snapshot, nil
}

// bitcoinCorrelation computes the Pearson correlation between the
// symbol's daily returns and Bitcoin's over the overlapping window.
func (s *Service) bitcoinCorrelation(symbol string, closes []float64) *float64 {
	reference, err := s.history.GetHistoricalCloses(btcReference, fetchPeriod)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("No Bitcoin reference series, skipping correlation")
		return nil
	}

	btcCloses := make([]float64, len(reference))
	for i, h := range reference {
		btcCloses[i] = h.Close
	}

	stockReturns := formulas.CalculateReturns(closes)
	btcReturns := formulas.CalculateReturns(btcCloses)

	// Align on the most recent overlapping window
	n := len(stockReturns)
	if len(btcReturns) < n {
		n = len(btcReturns)
	}
	if n < minCorrelationSamples {
		return nil
	}

	corr := formulas.Correlation(
		stockReturns[len(stockReturns)-n:],
		btcReturns[len(btcReturns)-n:],
	)
	return &corr
}
