// Package opportunities provides persistence for flagged opportunities.
package opportunities

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/edgehunter/edgehunter/internal/domain"
)

const opportunityColumns = `id, symbol, type, score, ai_aware_score, description, triggers,
risk_level, target_price, stop_loss, timeframe, flagged_date, resolved, actual_return`

// Repository handles opportunity database operations
type Repository struct {
	marketDB *sql.DB
	log      zerolog.Logger
}

// NewRepository creates a new opportunity repository
func NewRepository(marketDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		marketDB: marketDB,
		log:      log.With().Str("repo", "opportunities").Logger(),
	}
}

// Save upserts an opportunity keyed by id. Ids derived from
// symbol+type+timestamp can collide within a millisecond; upserting
// makes the write idempotent either way.
func (r *Repository) Save(opp domain.Opportunity) error {
	triggers, err := json.Marshal(opp.Triggers)
	if err != nil {
		return fmt.Errorf("failed to encode triggers for %s: %w", opp.ID, err)
	}

	_, err = r.marketDB.Exec(
		`INSERT INTO opportunities (id, symbol, type, score, ai_aware_score, description, triggers,
			risk_level, target_price, stop_loss, timeframe, flagged_date, resolved, actual_return)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			score = excluded.score,
			ai_aware_score = excluded.ai_aware_score,
			description = excluded.description,
			triggers = excluded.triggers,
			risk_level = excluded.risk_level,
			target_price = excluded.target_price,
			stop_loss = excluded.stop_loss,
			timeframe = excluded.timeframe,
			resolved = excluded.resolved,
			actual_return = excluded.actual_return`,
		opp.ID,
		opp.Symbol,
		string(opp.Type),
		opp.Score,
		opp.AIAwareScore,
		opp.Description,
		string(triggers),
		string(opp.RiskLevel),
		opp.TargetPrice,
		opp.StopLoss,
		opp.Timeframe,
		opp.FlaggedDate.Format(time.RFC3339),
		opp.Resolved,
		opp.ActualReturn,
	)
	if err != nil {
		return fmt.Errorf("failed to save opportunity %s: %w", opp.ID, err)
	}
	return nil
}

// GetActive returns unresolved opportunities sorted by aiAwareScore
// descending, then flaggedDate descending.
func (r *Repository) GetActive() ([]domain.Opportunity, error) {
	return r.query(
		"SELECT " + opportunityColumns + " FROM opportunities WHERE resolved = 0" +
			" ORDER BY ai_aware_score DESC, flagged_date DESC",
	)
}

// GetByType returns unresolved opportunities of one signal type
func (r *Repository) GetByType(oppType domain.OpportunityType) ([]domain.Opportunity, error) {
	return r.query(
		"SELECT "+opportunityColumns+" FROM opportunities WHERE resolved = 0 AND type = ?"+
			" ORDER BY ai_aware_score DESC",
		string(oppType),
	)
}

// GetByRisk returns unresolved opportunities of one risk level
func (r *Repository) GetByRisk(risk domain.RiskLevel) ([]domain.Opportunity, error) {
	return r.query(
		"SELECT "+opportunityColumns+" FROM opportunities WHERE resolved = 0 AND risk_level = ?"+
			" ORDER BY ai_aware_score DESC",
		string(risk),
	)
}

// Update applies feedback to an already-persisted opportunity. Only the
// resolved flag and actual return are writable after the fact; nil
// fields are left untouched.
func (r *Repository) Update(id string, resolved *bool, actualReturn *float64) error {
	if resolved == nil && actualReturn == nil {
		return nil
	}

	query := "UPDATE opportunities SET "
	args := []interface{}{}

	if resolved != nil {
		query += "resolved = ?"
		args = append(args, *resolved)
	}
	if actualReturn != nil {
		if resolved != nil {
			query += ", "
		}
		query += "actual_return = ?"
		args = append(args, *actualReturn)
	}

	query += " WHERE id = ?"
	args = append(args, id)

	res, err := r.marketDB.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update opportunity %s: %w", id, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("opportunity %s not found", id)
	}
	return nil
}

func (r *Repository) query(query string, args ...interface{}) ([]domain.Opportunity, error) {
	rows, err := r.marketDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query opportunities: %w", err)
	}
	defer rows.Close()

	var opps []domain.Opportunity
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan opportunity: %w", err)
		}
		opps = append(opps, opp)
	}

	return opps, rows.Err()
}

func scanOpportunity(rows *sql.Rows) (domain.Opportunity, error) {
	var opp domain.Opportunity
	var oppType, riskLevel, triggers, flaggedDate string
	var targetPrice, stopLoss, actualReturn sql.NullFloat64

	err := rows.Scan(
		&opp.ID,
		&opp.Symbol,
		&oppType,
		&opp.Score,
		&opp.AIAwareScore,
		&opp.Description,
		&triggers,
		&riskLevel,
		&targetPrice,
		&stopLoss,
		&opp.Timeframe,
		&flaggedDate,
		&opp.Resolved,
		&actualReturn,
	)
	if err != nil {
		return domain.Opportunity{}, err
	}

	opp.Type = domain.OpportunityType(oppType)
	opp.RiskLevel = domain.RiskLevel(riskLevel)

	if err := json.Unmarshal([]byte(triggers), &opp.Triggers); err != nil {
		return domain.Opportunity{}, fmt.Errorf("invalid triggers payload: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, flaggedDate); err == nil {
		opp.FlaggedDate = t
	}
	if targetPrice.Valid {
		opp.TargetPrice = &targetPrice.Float64
	}
	if stopLoss.Valid {
		opp.StopLoss = &stopLoss.Float64
	}
	if actualReturn.Valid {
		opp.ActualReturn = &actualReturn.Float64
	}

	return opp, nil
}
