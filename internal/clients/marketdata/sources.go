// Package marketdata holds the provider source registry and the error
// taxonomy shared by the market data clients.
package marketdata

// SourceConfig describes one external market data provider
type SourceConfig struct {
	Name      string
	BaseURL   string
	APIKeyEnv string // env var holding the API key, empty for keyless providers
	RateLimit int    // requests per minute
}

// Source identifiers used throughout the engine. The rate limiter keys
// its per-source call windows on these.
const (
	SourceYahooFinance = "yahooFinance"
	SourceAlphaVantage = "alphaVantage"
	SourceFinnhub      = "finnhub"
	SourceCoinGecko    = "coinGecko"
)

// Sources is the closed registry of providers and their free-tier
// per-minute budgets. Unknown sources are rejected by the rate limiter.
var Sources = map[string]SourceConfig{
	SourceYahooFinance: {
		Name:      "Yahoo Finance",
		BaseURL:   "https://query1.finance.yahoo.com/v8/finance/chart",
		RateLimit: 2000,
	},
	SourceAlphaVantage: {
		Name:      "Alpha Vantage",
		BaseURL:   "https://www.alphavantage.co/query",
		APIKeyEnv: "ALPHA_VANTAGE_KEY",
		RateLimit: 5,
	},
	SourceFinnhub: {
		Name:      "Finnhub",
		BaseURL:   "https://finnhub.io/api/v1",
		APIKeyEnv: "FINNHUB_KEY",
		RateLimit: 60,
	},
	SourceCoinGecko: {
		Name:      "CoinGecko",
		BaseURL:   "https://api.coingecko.com/api/v3",
		RateLimit: 50,
	},
}
