// Package yahoo provides the Yahoo Finance chart API client used for
// equity and sector-ETF quotes.
package yahoo

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

// Client is a Yahoo Finance chart API client. Every fetch consults the
// shared rate limiter before touching the network and fails immediately
// with a RateLimitedError when the source is over budget.
type Client struct {
	client  *http.Client
	limiter *ratelimit.Limiter
	baseURL string
	log     zerolog.Logger
}

// NewClient creates a new Yahoo Finance client
func NewClient(limiter *ratelimit.Limiter, log zerolog.Logger) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: limiter,
		baseURL: marketdata.Sources[marketdata.SourceYahooFinance].BaseURL,
		log:     log.With().Str("client", "yahoo").Logger(),
	}
}

// SetBaseURL overrides the API base URL. Used by tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// ASXSymbol normalizes a ticker to the Yahoo listing for the ASX.
// Symbols already carrying the .AX suffix pass through unchanged.
func ASXSymbol(symbol string) string {
	if strings.HasSuffix(symbol, ".AX") {
		return symbol
	}
	return symbol + ".AX"
}

// chartResponse mirrors the slice of the Yahoo chart payload the engine
// consumes. Numeric fields are pointers so that absent values can be
// told apart from zero and rejected as malformed.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string   `json:"symbol"`
				Currency           string   `json:"currency"`
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
				PreviousClose      *float64 `json:"previousClose"`
				MarketCap          *float64 `json:"marketCap"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// GetQuote fetches and normalizes a quote for one ASX symbol.
func (c *Client) GetQuote(symbol string) (*domain.Quote, error) {
	if !c.limiter.CanMakeCall(marketdata.SourceYahooFinance) {
		return nil, &marketdata.RateLimitedError{
			Source: marketdata.SourceYahooFinance,
			Wait:   c.limiter.WaitTime(marketdata.SourceYahooFinance),
		}
	}

	asxSymbol := ASXSymbol(symbol)
	body, err := c.get(c.baseURL + "/" + url.PathEscape(asxSymbol))
	if err != nil {
		return nil, err
	}

	quote, err := parseChart(body)
	if err != nil {
		return nil, err
	}

	c.log.Debug().
		Str("symbol", quote.Symbol).
		Float64("price", quote.Price).
		Float64("change_percent", quote.ChangePercent).
		Msg("Fetched quote")

	return quote, nil
}

// GetHistoricalCloses fetches daily closing prices for the given range
// (e.g. "1mo", "3mo", "1y"). Used by the technicals module for
// indicator and correlation calculations.
func (c *Client) GetHistoricalCloses(symbol string, period string) ([]domain.HistoricalClose, error) {
	if !c.limiter.CanMakeCall(marketdata.SourceYahooFinance) {
		return nil, &marketdata.RateLimitedError{
			Source: marketdata.SourceYahooFinance,
			Wait:   c.limiter.WaitTime(marketdata.SourceYahooFinance),
		}
	}

	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("range", period)

	body, err := c.get(c.baseURL + "/" + url.PathEscape(symbol) + "?" + params.Encode())
	if err != nil {
		return nil, err
	}

	var result chartResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &marketdata.DataFormatError{Source: marketdata.SourceYahooFinance, Reason: err.Error()}
	}
	if result.Chart.Error != nil || len(result.Chart.Result) == 0 {
		return nil, &marketdata.DataFormatError{Source: marketdata.SourceYahooFinance, Reason: "no chart result"}
	}

	data := result.Chart.Result[0]
	if len(data.Indicators.Quote) == 0 {
		return nil, &marketdata.DataFormatError{Source: marketdata.SourceYahooFinance, Reason: "no quote indicators"}
	}

	quote := data.Indicators.Quote[0]
	var closes []domain.HistoricalClose
	for i, ts := range data.Timestamp {
		if i >= len(quote.Close) {
			break
		}
		// Yahoo pads non-trading days with zeros
		if quote.Close[i] == 0 {
			continue
		}
		volume := int64(0)
		if i < len(quote.Volume) {
			volume = quote.Volume[i]
		}
		closes = append(closes, domain.HistoricalClose{
			Date:   time.Unix(ts, 0),
			Close:  quote.Close[i],
			Volume: volume,
		})
	}

	return closes, nil
}

// get performs the HTTP GET and maps failures onto the transport error type.
func (c *Client) get(reqURL string) ([]byte, error) {
	req, err := http.NewRequest("GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Yahoo rejects requests without a browser-like user agent
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &marketdata.TransportError{Source: marketdata.SourceYahooFinance, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &marketdata.TransportError{Source: marketdata.SourceYahooFinance, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &marketdata.TransportError{Source: marketdata.SourceYahooFinance, Err: err}
	}

	return body, nil
}

// parseChart normalizes the nested chart payload into the canonical
// Quote shape, validating required numeric fields along the way.
func parseChart(body []byte) (*domain.Quote, error) {
	var result chartResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &marketdata.DataFormatError{Source: marketdata.SourceYahooFinance, Reason: err.Error()}
	}

	if result.Chart.Error != nil {
		return nil, &marketdata.DataFormatError{
			Source: marketdata.SourceYahooFinance,
			Reason: fmt.Sprintf("chart error: %v", result.Chart.Error),
		}
	}
	if len(result.Chart.Result) == 0 {
		return nil, &marketdata.DataFormatError{Source: marketdata.SourceYahooFinance, Reason: "empty chart result"}
	}

	meta := result.Chart.Result[0].Meta
	if meta.RegularMarketPrice == nil || meta.PreviousClose == nil {
		return nil, &marketdata.DataFormatError{Source: marketdata.SourceYahooFinance, Reason: "missing price fields"}
	}

	price := *meta.RegularMarketPrice
	prevClose := *meta.PreviousClose
	if math.IsNaN(price) || math.IsNaN(prevClose) || prevClose == 0 {
		return nil, &marketdata.DataFormatError{Source: marketdata.SourceYahooFinance, Reason: "invalid price fields"}
	}

	// Latest volume sample; missing or empty series falls back to 0
	var volume int64
	if quotes := result.Chart.Result[0].Indicators.Quote; len(quotes) > 0 && len(quotes[0].Volume) > 0 {
		volume = quotes[0].Volume[len(quotes[0].Volume)-1]
	}

	var marketCap float64
	if meta.MarketCap != nil {
		marketCap = *meta.MarketCap
	}

	change := price - prevClose
	return &domain.Quote{
		Symbol:        meta.Symbol,
		Price:         price,
		PreviousClose: prevClose,
		Change:        change,
		ChangePercent: change / prevClose * 100,
		Volume:        volume,
		MarketCap:     marketCap,
		Currency:      meta.Currency,
	}, nil
}
