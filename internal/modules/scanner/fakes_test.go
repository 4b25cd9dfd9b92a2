package scanner

import (
	"fmt"

	"github.com/edgehunter/edgehunter/internal/domain"
)

// fakeEquityQuoter serves canned quotes keyed by symbol and records the
// symbols requested.
type fakeEquityQuoter struct {
	quotes    map[string]*domain.Quote
	errs      map[string]error
	requested []string
}

func (f *fakeEquityQuoter) GetQuote(symbol string) (*domain.Quote, error) {
	f.requested = append(f.requested, symbol)
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	if q, ok := f.quotes[symbol]; ok {
		return q, nil
	}
	return nil, fmt.Errorf("no quote for %s", symbol)
}

type fakeCryptoQuoter struct {
	quotes map[string]*domain.Quote
	errs   map[string]error
}

func (f *fakeCryptoQuoter) GetQuote(ticker string) (*domain.Quote, error) {
	if err, ok := f.errs[ticker]; ok {
		return nil, err
	}
	if q, ok := f.quotes[ticker]; ok {
		return q, nil
	}
	return nil, fmt.Errorf("no quote for %s", ticker)
}

type fakeStockRepo struct {
	stocks []domain.Stock
	err    error
}

func (f *fakeStockRepo) GetAll() ([]domain.Stock, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stocks, nil
}

// fakeStore records saves and can be told to fail on a specific symbol.
type fakeStore struct {
	saved      []domain.Opportunity
	failSymbol string
}

func (f *fakeStore) Save(opp domain.Opportunity) error {
	if f.failSymbol != "" && opp.Symbol == f.failSymbol {
		return fmt.Errorf("disk full")
	}
	f.saved = append(f.saved, opp)
	return nil
}

type fakeDetector struct {
	name string
	opps []domain.Opportunity
}

func (f *fakeDetector) Name() string               { return f.name }
func (f *fakeDetector) Scan() []domain.Opportunity { return f.opps }

// risingSectorQuotes returns quotes for every sector ETF with the given
// change; individual entries can be overridden afterwards.
func risingSectorQuotes(changePercent float64) map[string]*domain.Quote {
	quotes := make(map[string]*domain.Quote, len(sectorETFs))
	for _, etf := range sectorETFs {
		quotes[etf] = &domain.Quote{
			Symbol:        etf,
			Price:         100,
			Change:        changePercent,
			ChangePercent: changePercent,
		}
	}
	return quotes
}
