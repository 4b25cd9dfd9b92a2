package scanner

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgehunter/edgehunter/internal/domain"
	"github.com/edgehunter/edgehunter/internal/events"
)

func opp(id, symbol string, oppType domain.OpportunityType, score float64) domain.Opportunity {
	return domain.Opportunity{
		ID:           id,
		Symbol:       symbol,
		Type:         oppType,
		Score:        score,
		AIAwareScore: score,
		FlaggedDate:  time.Now(),
	}
}

func TestRunAllScans_MergesAndRanksDescending(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(
		&fakeDetector{name: "sector_laggard", opps: []domain.Opportunity{
			opp("lag_ABC_1", "ABC", domain.TypeSectorLaggard, 72),
		}},
		&fakeDetector{name: "crypto_correlation", opps: []domain.Opportunity{
			opp("crypto_DCC.AX_1", "DCC.AX", domain.TypeCryptoCorrelation, 150),
		}},
		&fakeDetector{name: "oversold", opps: []domain.Opportunity{
			opp("oversold_XYZ_1", "XYZ", domain.TypeOversold, 84),
		}},
		store, nil, zerolog.Nop(),
	)

	result := svc.RunAllScans()

	require.Len(t, result, 3)
	assert.Equal(t, "DCC.AX", result[0].Symbol)
	assert.Equal(t, "XYZ", result[1].Symbol)
	assert.Equal(t, "ABC", result[2].Symbol)
	assert.Equal(t, result, store.saved)
}

func TestRunAllScans_ScoresAbove100SurviveRanking(t *testing.T) {
	svc := NewService(
		&fakeDetector{name: "sector_laggard", opps: []domain.Opportunity{
			opp("lag_ABC_1", "ABC", domain.TypeSectorLaggard, 100),
		}},
		&fakeDetector{name: "crypto_correlation", opps: []domain.Opportunity{
			opp("crypto_DCC.AX_1", "DCC.AX", domain.TypeCryptoCorrelation, 130),
		}},
		&fakeDetector{name: "oversold", opps: nil},
		&fakeStore{}, nil, zerolog.Nop(),
	)

	result := svc.RunAllScans()

	require.Len(t, result, 2)
	assert.Equal(t, 130.0, result[0].AIAwareScore)
	assert.Equal(t, "DCC.AX", result[0].Symbol)
}

func TestRunAllScans_DeduplicatesFirstSeen(t *testing.T) {
	// Both the sector laggard and oversold detectors flag ABC with the
	// same type; the earlier detector in the fixed order wins even when
	// the later candidate scores higher.
	svc := NewService(
		&fakeDetector{name: "sector_laggard", opps: []domain.Opportunity{
			opp("first_ABC", "ABC", domain.TypeOversold, 60),
		}},
		&fakeDetector{name: "crypto_correlation", opps: nil},
		&fakeDetector{name: "oversold", opps: []domain.Opportunity{
			opp("second_ABC", "ABC", domain.TypeOversold, 95),
		}},
		&fakeStore{}, nil, zerolog.Nop(),
	)

	result := svc.RunAllScans()

	require.Len(t, result, 1)
	assert.Equal(t, "first_ABC", result[0].ID)
}

func TestRunAllScans_SameSymbolDifferentTypesBothKept(t *testing.T) {
	svc := NewService(
		&fakeDetector{name: "sector_laggard", opps: []domain.Opportunity{
			opp("lag_ABC_1", "ABC", domain.TypeSectorLaggard, 72),
		}},
		&fakeDetector{name: "crypto_correlation", opps: nil},
		&fakeDetector{name: "oversold", opps: []domain.Opportunity{
			opp("oversold_ABC_1", "ABC", domain.TypeOversold, 84),
		}},
		&fakeStore{}, nil, zerolog.Nop(),
	)

	assert.Len(t, svc.RunAllScans(), 2)
}

func TestRunAllScans_StableOrderForEqualScores(t *testing.T) {
	svc := NewService(
		&fakeDetector{name: "sector_laggard", opps: []domain.Opportunity{
			opp("lag_AAA_1", "AAA", domain.TypeSectorLaggard, 80),
		}},
		&fakeDetector{name: "crypto_correlation", opps: []domain.Opportunity{
			opp("crypto_BBB_1", "BBB", domain.TypeCryptoCorrelation, 80),
		}},
		&fakeDetector{name: "oversold", opps: []domain.Opportunity{
			opp("oversold_CCC_1", "CCC", domain.TypeOversold, 80),
		}},
		&fakeStore{}, nil, zerolog.Nop(),
	)

	result := svc.RunAllScans()

	require.Len(t, result, 3)
	assert.Equal(t, "AAA", result[0].Symbol)
	assert.Equal(t, "BBB", result[1].Symbol)
	assert.Equal(t, "CCC", result[2].Symbol)
}

func TestRunAllScans_EmptyDetectorLeavesOthersIntact(t *testing.T) {
	// A detector whose provider failed contributes nothing; the other
	// detectors' results still come through.
	svc := NewService(
		&fakeDetector{name: "sector_laggard", opps: nil},
		&fakeDetector{name: "crypto_correlation", opps: nil},
		&fakeDetector{name: "oversold", opps: []domain.Opportunity{
			opp("oversold_XYZ_1", "XYZ", domain.TypeOversold, 84),
		}},
		&fakeStore{}, nil, zerolog.Nop(),
	)

	result := svc.RunAllScans()

	require.Len(t, result, 1)
	assert.Equal(t, "XYZ", result[0].Symbol)
}

func TestRunAllScans_AllEmptyReturnsEmpty(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(
		&fakeDetector{name: "sector_laggard"},
		&fakeDetector{name: "crypto_correlation"},
		&fakeDetector{name: "oversold"},
		store, nil, zerolog.Nop(),
	)

	assert.Empty(t, svc.RunAllScans())
	assert.Empty(t, store.saved)
}

func TestRunAllScans_SaveFailureReturnsEmpty(t *testing.T) {
	// The store fails on the second item in rank order. The first stays
	// written, the rest are never attempted, and the caller sees an
	// empty list rather than an error.
	store := &fakeStore{failSymbol: "XYZ"}
	svc := NewService(
		&fakeDetector{name: "sector_laggard", opps: []domain.Opportunity{
			opp("lag_ABC_1", "ABC", domain.TypeSectorLaggard, 72),
		}},
		&fakeDetector{name: "crypto_correlation", opps: []domain.Opportunity{
			opp("crypto_DCC.AX_1", "DCC.AX", domain.TypeCryptoCorrelation, 150),
		}},
		&fakeDetector{name: "oversold", opps: []domain.Opportunity{
			opp("oversold_XYZ_1", "XYZ", domain.TypeOversold, 84),
		}},
		store, nil, zerolog.Nop(),
	)

	result := svc.RunAllScans()

	assert.Empty(t, result)
	require.Len(t, store.saved, 1)
	assert.Equal(t, "DCC.AX", store.saved[0].Symbol)
}

func TestRunAllScans_EmitsLifecycleEvents(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	ch, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	svc := NewService(
		&fakeDetector{name: "sector_laggard", opps: []domain.Opportunity{
			opp("lag_ABC_1", "ABC", domain.TypeSectorLaggard, 72),
		}},
		&fakeDetector{name: "crypto_correlation"},
		&fakeDetector{name: "oversold"},
		&fakeStore{}, bus, zerolog.Nop(),
	)

	svc.RunAllScans()

	var types []events.EventType
	for len(ch) > 0 {
		types = append(types, (<-ch).Type)
	}
	assert.Equal(t, []events.EventType{
		events.ScanStarted,
		events.OpportunityFlagged,
		events.ScanCompleted,
	}, types)
}

func TestRunAllScans_EmitsScanFailedOnSaveError(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	ch, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	svc := NewService(
		&fakeDetector{name: "sector_laggard", opps: []domain.Opportunity{
			opp("lag_ABC_1", "ABC", domain.TypeSectorLaggard, 72),
		}},
		&fakeDetector{name: "crypto_correlation"},
		&fakeDetector{name: "oversold"},
		&fakeStore{failSymbol: "ABC"}, bus, zerolog.Nop(),
	)

	svc.RunAllScans()

	var types []events.EventType
	for len(ch) > 0 {
		types = append(types, (<-ch).Type)
	}
	assert.Equal(t, []events.EventType{events.ScanStarted, events.ScanFailed}, types)
}
