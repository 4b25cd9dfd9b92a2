// Package domain provides core domain models and types.
package domain

import "time"

// OpportunityType identifies which detector flagged an opportunity.
// EarningsSurprise and CommodityDisconnect are reserved: the scoring
// model understands them but no detector emits them yet.
type OpportunityType string

const (
	TypeSectorLaggard       OpportunityType = "sector_laggard"
	TypeOversold            OpportunityType = "oversold"
	TypeCryptoCorrelation   OpportunityType = "crypto_correlation"
	TypeEarningsSurprise    OpportunityType = "earnings_surprise"
	TypeCommodityDisconnect OpportunityType = "commodity_disconnect"
)

// RiskLevel is a coarse risk classification for an opportunity
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Quote is a point-in-time price snapshot for one symbol.
// It is immutable once constructed and lives only for the duration
// of the fetch that produced it.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	PreviousClose float64 `json:"previous_close"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
	MarketCap     float64 `json:"market_cap"`
	Currency      string  `json:"currency"`
}

// Stock is a repository-resident security. The scanning engine only
// reads stocks; the seeder and external sync processes write them.
type Stock struct {
	LastUpdated   time.Time `json:"last_updated"`
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Sector        string    `json:"sector"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	MarketCap     float64   `json:"market_cap"`
	Volume        int64     `json:"volume"`
}

// SectorSnapshot holds the per-scan performance of a sector, proxied
// by its sector ETF. Built transiently during a scan, never persisted.
type SectorSnapshot struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// Opportunity is the engine's output unit: a scored, described candidate
// signal for one symbol and one detection type.
//
// IDs are derived from symbol+type+timestamp and are not collision-proof
// within the same millisecond; the store upserts by id, so uniqueness is
// store-enforced rather than generator-guaranteed.
type Opportunity struct {
	FlaggedDate  time.Time       `json:"flagged_date"`
	ID           string          `json:"id"`
	Symbol       string          `json:"symbol"`
	Type         OpportunityType `json:"type"`
	Description  string          `json:"description"`
	Triggers     []string        `json:"triggers"` // order-significant for display
	RiskLevel    RiskLevel       `json:"risk_level"`
	Timeframe    string          `json:"timeframe"`
	Score        float64         `json:"score"`          // base score, always in [0,100]
	AIAwareScore float64         `json:"ai_aware_score"` // can exceed 100 for crypto correlation
	TargetPrice  *float64        `json:"target_price,omitempty"`
	StopLoss     *float64        `json:"stop_loss,omitempty"`
	Resolved     bool            `json:"resolved"`
	ActualReturn *float64        `json:"actual_return,omitempty"`
}

// DedupKey is the per-scan deduplication key. The orchestrator never
// emits two opportunities sharing it within a single scan.
func (o Opportunity) DedupKey() string {
	return o.Symbol + "_" + string(o.Type)
}

// HistoricalClose is one daily closing price sample, used for
// indicator and correlation calculations.
type HistoricalClose struct {
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// AlertType categorizes an alert
type AlertType string

const (
	AlertOpportunity AlertType = "opportunity"
	AlertRisk        AlertType = "risk"
	AlertUpdate      AlertType = "update"
)

// AlertSeverity is the display severity of an alert
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// Alert announces a noteworthy system event (scan completion, failures)
// to a human. Alerts are written by entry points, not by the core engine.
type Alert struct {
	Created  time.Time     `json:"created"`
	ID       string        `json:"id"`
	Type     AlertType     `json:"type"`
	Title    string        `json:"title"`
	Message  string        `json:"message"`
	Severity AlertSeverity `json:"severity"`
	Read     bool          `json:"read"`
}
