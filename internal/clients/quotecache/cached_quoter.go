package quotecache

import "github.com/edgehunter/edgehunter/internal/domain"

// Quoter is the single-symbol fetch shared by the provider clients.
type Quoter interface {
	GetQuote(symbol string) (*domain.Quote, error)
}

// CachedQuoter wraps a provider client with the quote cache. Only
// successful fetches are cached; errors (including rate limiting) pass
// through so callers keep their provider error handling.
type CachedQuoter struct {
	source string
	next   Quoter
	cache  *Cache
}

// NewCachedQuoter wraps next with cache lookups keyed under source.
func NewCachedQuoter(source string, next Quoter, cache *Cache) *CachedQuoter {
	return &CachedQuoter{source: source, next: next, cache: cache}
}

// GetQuote returns the cached quote when fresh, otherwise fetches and
// caches the result.
func (q *CachedQuoter) GetQuote(symbol string) (*domain.Quote, error) {
	if quote, ok := q.cache.Get(q.source, symbol); ok {
		return quote, nil
	}

	quote, err := q.next.GetQuote(symbol)
	if err != nil {
		return nil, err
	}

	q.cache.Put(q.source, symbol, quote)
	return quote, nil
}
