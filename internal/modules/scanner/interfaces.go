package scanner

import "github.com/edgehunter/edgehunter/internal/domain"

// EquityQuoter fetches equity and sector-ETF quotes.
// Implemented by the yahoo client, optionally wrapped by the quote cache.
type EquityQuoter interface {
	GetQuote(symbol string) (*domain.Quote, error)
}

// CryptoQuoter fetches crypto reference quotes.
// Implemented by the coingecko client.
type CryptoQuoter interface {
	GetQuote(ticker string) (*domain.Quote, error)
}

// StockRepository reads the stock universe
type StockRepository interface {
	GetAll() ([]domain.Stock, error)
}

// OpportunityStore persists flagged opportunities
type OpportunityStore interface {
	Save(opp domain.Opportunity) error
}

// Detector is one signal detector. Scan never fails: detector-level
// errors degrade to an empty contribution so a broken provider cannot
// take down the whole scan.
type Detector interface {
	Name() string
	Scan() []domain.Opportunity
}
