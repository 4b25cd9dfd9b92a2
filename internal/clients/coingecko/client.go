// Package coingecko provides the CoinGecko simple-price client used for
// crypto reference quotes.
package coingecko

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/edgehunter/edgehunter/internal/clients/marketdata"
	"github.com/edgehunter/edgehunter/internal/clients/ratelimit"
	"github.com/edgehunter/edgehunter/internal/domain"
)

// assetIDs maps short crypto tickers to CoinGecko asset ids. The
// enumeration is deliberately closed: unmapped tickers fall back to
// defaultAssetID instead of failing, a carried-over approximation from
// the original single-pair correlation analysis.
var assetIDs = map[string]string{
	"BTC": "bitcoin",
	"ETH": "ethereum",
}

const defaultAssetID = "ethereum"

const quoteCurrency = "aud"

// AssetID resolves a ticker to its CoinGecko asset id.
func AssetID(ticker string) string {
	if id, ok := assetIDs[strings.ToUpper(ticker)]; ok {
		return id
	}
	return defaultAssetID
}

// Client is a CoinGecko simple-price client. Like the equity client it
// consults the shared rate limiter before every call and never blocks.
type Client struct {
	client  *http.Client
	limiter *ratelimit.Limiter
	baseURL string
	log     zerolog.Logger
}

// NewClient creates a new CoinGecko client
func NewClient(limiter *ratelimit.Limiter, log zerolog.Logger) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: limiter,
		baseURL: marketdata.Sources[marketdata.SourceCoinGecko].BaseURL,
		log:     log.With().Str("client", "coingecko").Logger(),
	}
}

// SetBaseURL overrides the API base URL. Used by tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// GetQuote fetches the current AUD price and 24h change for a crypto
// ticker and normalizes it into the canonical Quote shape. The previous
// close is derived from the 24h change so the derived fields behave the
// same as equity quotes.
func (c *Client) GetQuote(ticker string) (*domain.Quote, error) {
	if !c.limiter.CanMakeCall(marketdata.SourceCoinGecko) {
		return nil, &marketdata.RateLimitedError{
			Source: marketdata.SourceCoinGecko,
			Wait:   c.limiter.WaitTime(marketdata.SourceCoinGecko),
		}
	}

	assetID := AssetID(ticker)

	params := url.Values{}
	params.Add("ids", assetID)
	params.Add("vs_currencies", quoteCurrency)
	params.Add("include_24hr_change", "true")

	reqURL := c.baseURL + "/simple/price?" + params.Encode()
	req, err := http.NewRequest("GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &marketdata.TransportError{Source: marketdata.SourceCoinGecko, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &marketdata.TransportError{Source: marketdata.SourceCoinGecko, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &marketdata.TransportError{Source: marketdata.SourceCoinGecko, Err: err}
	}

	// Payload shape: {"bitcoin": {"aud": 95000.0, "aud_24h_change": 3.2}}
	var payload map[string]map[string]*float64
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &marketdata.DataFormatError{Source: marketdata.SourceCoinGecko, Reason: err.Error()}
	}

	asset, ok := payload[assetID]
	if !ok {
		return nil, &marketdata.DataFormatError{
			Source: marketdata.SourceCoinGecko,
			Reason: fmt.Sprintf("asset %s missing from payload", assetID),
		}
	}

	price := asset[quoteCurrency]
	change24h := asset[quoteCurrency+"_24h_change"]
	if price == nil || change24h == nil || math.IsNaN(*price) || math.IsNaN(*change24h) {
		return nil, &marketdata.DataFormatError{Source: marketdata.SourceCoinGecko, Reason: "missing numeric price fields"}
	}

	prevClose := *price / (1 + *change24h/100)

	c.log.Debug().
		Str("ticker", ticker).
		Str("asset_id", assetID).
		Float64("price", *price).
		Float64("change_24h", *change24h).
		Msg("Fetched crypto quote")

	return &domain.Quote{
		Symbol:        strings.ToUpper(ticker),
		Price:         *price,
		PreviousClose: prevClose,
		Change:        *price - prevClose,
		ChangePercent: *change24h,
		Currency:      strings.ToUpper(quoteCurrency),
	}, nil
}
