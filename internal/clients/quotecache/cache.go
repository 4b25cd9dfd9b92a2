// Package quotecache provides a short-TTL persistent cache for fetched
// quotes, so repeated scans inside one window do not burn provider
// rate budgets on identical lookups.
package quotecache

import (
	"database/sql"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/edgehunter/edgehunter/internal/domain"
)

// Cache stores msgpack-encoded quotes in the cache database keyed by
// source and symbol. A cache miss is never an error: callers fall back
// to the network.
type Cache struct {
	cacheDB *sql.DB
	ttl     time.Duration
	log     zerolog.Logger
	now     func() time.Time
}

// New creates a quote cache with the given TTL
func New(cacheDB *sql.DB, ttl time.Duration, log zerolog.Logger) *Cache {
	return &Cache{
		cacheDB: cacheDB,
		ttl:     ttl,
		log:     log.With().Str("component", "quote_cache").Logger(),
		now:     time.Now,
	}
}

func cacheKey(source, symbol string) string {
	return source + ":" + symbol
}

// Get returns the cached quote for source/symbol if present and fresh.
func (c *Cache) Get(source, symbol string) (*domain.Quote, bool) {
	var payload []byte
	var expiresAt string

	err := c.cacheDB.QueryRow(
		"SELECT payload, expires_at FROM quote_cache WHERE cache_key = ?",
		cacheKey(source, symbol),
	).Scan(&payload, &expiresAt)
	if err != nil {
		return nil, false
	}

	expiry, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil || c.now().After(expiry) {
		return nil, false
	}

	var quote domain.Quote
	if err := msgpack.Unmarshal(payload, &quote); err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to decode cached quote, discarding")
		return nil, false
	}

	return &quote, true
}

// Put stores a quote. Cache write failures are logged, never propagated:
// the quote was already fetched and the scan must not fail on cache I/O.
func (c *Cache) Put(source, symbol string, quote *domain.Quote) {
	payload, err := msgpack.Marshal(quote)
	if err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to encode quote for cache")
		return
	}

	_, err = c.cacheDB.Exec(
		`INSERT INTO quote_cache (cache_key, payload, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET payload = excluded.payload, expires_at = excluded.expires_at`,
		cacheKey(source, symbol), payload, c.now().Add(c.ttl).Format(time.RFC3339),
	)
	if err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to write quote cache")
	}
}

// PurgeExpired removes stale entries. Run by the maintenance job.
func (c *Cache) PurgeExpired() error {
	res, err := c.cacheDB.Exec("DELETE FROM quote_cache WHERE expires_at < ?", c.now().Format(time.RFC3339))
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		c.log.Debug().Int64("purged", n).Msg("Purged expired quote cache entries")
	}
	return nil
}
