package scanner

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/edgehunter/edgehunter/internal/domain"
	"github.com/edgehunter/edgehunter/internal/events"
)

// Service orchestrates the full scan: it runs every detector
// concurrently, merges and deduplicates their output, ranks it, and
// persists the final list.
type Service struct {
	detectors []Detector
	store     OpportunityStore
	bus       *events.Bus
	log       zerolog.Logger
}

// NewService creates the scan orchestrator. Detector order is fixed and
// meaningful: it decides which candidate wins when two detectors flag
// the same (symbol, type) pair.
func NewService(
	sectorLaggard Detector,
	cryptoCorrelation Detector,
	oversold Detector,
	store OpportunityStore,
	bus *events.Bus,
	log zerolog.Logger,
) *Service {
	return &Service{
		detectors: []Detector{sectorLaggard, cryptoCorrelation, oversold},
		store:     store,
		bus:       bus,
		log:       log.With().Str("module", "scanner").Logger(),
	}
}

// RunAllScans runs all detectors concurrently and returns the
// deduplicated, ranked opportunity list. It never returns an error: any
// unrecoverable failure is logged and surfaces as an empty list.
func (s *Service) RunAllScans() []domain.Opportunity {
	s.log.Info().Msg("Starting comprehensive opportunity scan")
	s.bus.Emit(events.ScanStarted, "scanner", nil)

	// Fixed fan-out: one goroutine per detector, joined here. Results
	// land in per-detector slots so the merge order stays deterministic
	// regardless of which detector finishes first.
	results := make([][]domain.Opportunity, len(s.detectors))
	var wg sync.WaitGroup
	for i, detector := range s.detectors {
		wg.Add(1)
		go func(i int, d Detector) {
			defer wg.Done()
			results[i] = d.Scan()
		}(i, detector)
	}
	wg.Wait()

	var merged []domain.Opportunity
	for _, batch := range results {
		merged = append(merged, batch...)
	}

	unique := deduplicate(merged)

	// Stable sort keeps relative input order for equal scores
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].AIAwareScore > unique[j].AIAwareScore
	})

	for _, opp := range unique {
		if err := s.store.Save(opp); err != nil {
			// Abort remaining saves; items already written stay written
			s.log.Error().Err(err).Str("id", opp.ID).Msg("Scan failed: could not persist opportunity")
			s.bus.Emit(events.ScanFailed, "scanner", map[string]interface{}{"error": err.Error()})
			return []domain.Opportunity{}
		}
		s.bus.Emit(events.OpportunityFlagged, "scanner", map[string]interface{}{
			"symbol": opp.Symbol,
			"type":   string(opp.Type),
			"score":  opp.AIAwareScore,
		})
	}

	s.log.Info().Int("count", len(unique)).Msg("Opportunity scan complete")
	s.bus.Emit(events.ScanCompleted, "scanner", map[string]interface{}{"count": len(unique)})

	return unique
}

// deduplicate drops opportunities sharing a (symbol, type) key with an
// earlier one, keeping the first seen.
func deduplicate(opps []domain.Opportunity) []domain.Opportunity {
	seen := make(map[string]struct{}, len(opps))
	unique := make([]domain.Opportunity, 0, len(opps))

	for _, opp := range opps {
		key := opp.DedupKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, opp)
	}

	return unique
}
