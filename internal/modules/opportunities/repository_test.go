package opportunities

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgehunter/edgehunter/internal/database"
	"github.com/edgehunter/edgehunter/internal/domain"
)

func testMarketDB(t *testing.T, name string) *database.DB {
	t.Helper()
	db, err := database.New(database.Config{
		Path:    "file:" + name + "?mode=memory&cache=shared",
		Profile: database.ProfileStandard,
		Name:    "market",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())
	return db
}

func testOpportunity(id, symbol string, oppType domain.OpportunityType, aiScore float64) domain.Opportunity {
	return domain.Opportunity{
		ID:           id,
		Symbol:       symbol,
		Type:         oppType,
		Score:        aiScore - 10,
		AIAwareScore: aiScore,
		Description:  symbol + " flagged",
		Triggers:     []string{"Price down 12.0%", "Volume: 200,000"},
		RiskLevel:    domain.RiskMedium,
		Timeframe:    "1-5 days",
		FlaggedDate:  time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC),
	}
}

func TestRepository_SaveAndGetActive(t *testing.T) {
	db := testMarketDB(t, "opps_save")
	repo := NewRepository(db.Conn(), zerolog.Nop())

	require.NoError(t, repo.Save(testOpportunity("o1", "ABC.AX", domain.TypeOversold, 62)))
	require.NoError(t, repo.Save(testOpportunity("o2", "DEF.AX", domain.TypeSectorLaggard, 84)))

	active, err := repo.GetActive()
	require.NoError(t, err)
	require.Len(t, active, 2)

	// Sorted by aiAwareScore descending
	assert.Equal(t, "DEF.AX", active[0].Symbol)
	assert.Equal(t, "ABC.AX", active[1].Symbol)
	assert.Equal(t, []string{"Price down 12.0%", "Volume: 200,000"}, active[0].Triggers)
	assert.Equal(t, domain.RiskMedium, active[0].RiskLevel)
	assert.True(t, active[0].FlaggedDate.Equal(time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC)))
}

func TestRepository_SaveIsIdempotent(t *testing.T) {
	db := testMarketDB(t, "opps_idempotent")
	repo := NewRepository(db.Conn(), zerolog.Nop())

	opp := testOpportunity("o1", "ABC.AX", domain.TypeOversold, 62)
	require.NoError(t, repo.Save(opp))

	opp.AIAwareScore = 71
	require.NoError(t, repo.Save(opp))

	active, err := repo.GetActive()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, 71.0, active[0].AIAwareScore)
}

func TestRepository_ScoresAbove100Survive(t *testing.T) {
	db := testMarketDB(t, "opps_above100")
	repo := NewRepository(db.Conn(), zerolog.Nop())

	require.NoError(t, repo.Save(testOpportunity("o1", "DCC.AX", domain.TypeCryptoCorrelation, 150)))

	active, err := repo.GetActive()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, 150.0, active[0].AIAwareScore)
}

func TestRepository_GetByType(t *testing.T) {
	db := testMarketDB(t, "opps_bytype")
	repo := NewRepository(db.Conn(), zerolog.Nop())

	require.NoError(t, repo.Save(testOpportunity("o1", "ABC.AX", domain.TypeOversold, 62)))
	require.NoError(t, repo.Save(testOpportunity("o2", "DEF.AX", domain.TypeSectorLaggard, 84)))

	oversold, err := repo.GetByType(domain.TypeOversold)
	require.NoError(t, err)
	require.Len(t, oversold, 1)
	assert.Equal(t, "ABC.AX", oversold[0].Symbol)
}

func TestRepository_GetByRisk(t *testing.T) {
	db := testMarketDB(t, "opps_byrisk")
	repo := NewRepository(db.Conn(), zerolog.Nop())

	low := testOpportunity("o1", "ABC.AX", domain.TypeOversold, 62)
	low.RiskLevel = domain.RiskLow
	require.NoError(t, repo.Save(low))
	require.NoError(t, repo.Save(testOpportunity("o2", "DEF.AX", domain.TypeSectorLaggard, 84)))

	got, err := repo.GetByRisk(domain.RiskLow)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ABC.AX", got[0].Symbol)
}

func TestRepository_UpdateResolved(t *testing.T) {
	db := testMarketDB(t, "opps_resolve")
	repo := NewRepository(db.Conn(), zerolog.Nop())

	require.NoError(t, repo.Save(testOpportunity("o1", "ABC.AX", domain.TypeOversold, 62)))

	resolved := true
	actualReturn := 8.5
	require.NoError(t, repo.Update("o1", &resolved, &actualReturn))

	// Resolved opportunities drop out of the active set
	active, err := repo.GetActive()
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestRepository_UpdateActualReturnOnly(t *testing.T) {
	db := testMarketDB(t, "opps_return")
	repo := NewRepository(db.Conn(), zerolog.Nop())

	require.NoError(t, repo.Save(testOpportunity("o1", "ABC.AX", domain.TypeOversold, 62)))

	actualReturn := -3.2
	require.NoError(t, repo.Update("o1", nil, &actualReturn))

	active, err := repo.GetActive()
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.NotNil(t, active[0].ActualReturn)
	assert.Equal(t, -3.2, *active[0].ActualReturn)
	assert.False(t, active[0].Resolved)
}

func TestRepository_UpdateMissingOpportunity(t *testing.T) {
	db := testMarketDB(t, "opps_update_missing")
	repo := NewRepository(db.Conn(), zerolog.Nop())

	resolved := true
	err := repo.Update("nope", &resolved, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRepository_UpdateWithNothingToDo(t *testing.T) {
	db := testMarketDB(t, "opps_update_noop")
	repo := NewRepository(db.Conn(), zerolog.Nop())

	assert.NoError(t, repo.Update("o1", nil, nil))
}
