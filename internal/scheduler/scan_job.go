package scheduler

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/edgehunter/edgehunter/internal/domain"
	"github.com/edgehunter/edgehunter/internal/modules/alerts"
)

// ScanRunner runs a full opportunity scan.
// Implemented by scanner.Service.
type ScanRunner interface {
	RunAllScans() []domain.Opportunity
}

// AlertWriter persists alerts.
// Implemented by alerts.Repository.
type AlertWriter interface {
	Save(alert domain.Alert) error
}

// ScanJob runs the scheduled opportunity scan and records an alert with
// the outcome. The scan itself never errors; an empty result is still a
// valid outcome.
type ScanJob struct {
	scanner ScanRunner
	alerts  AlertWriter
	log     zerolog.Logger
}

// NewScanJob creates a new scan job
func NewScanJob(scanner ScanRunner, alertWriter AlertWriter, log zerolog.Logger) *ScanJob {
	return &ScanJob{
		scanner: scanner,
		alerts:  alertWriter,
		log:     log.With().Str("job", "scan").Logger(),
	}
}

// Name returns the job name for the scheduler
func (j *ScanJob) Name() string {
	return "scan"
}

// Run executes the scan and writes the outcome alert
func (j *ScanJob) Run() error {
	opportunities := j.scanner.RunAllScans()

	var alert domain.Alert
	if len(opportunities) == 0 {
		alert = alerts.NewAlert(
			domain.AlertUpdate,
			domain.SeverityInfo,
			"Scan completed",
			"No opportunities flagged in this scan",
		)
	} else {
		top := opportunities[0]
		alert = alerts.NewAlert(
			domain.AlertOpportunity,
			domain.SeverityInfo,
			fmt.Sprintf("Scan flagged %d opportunities", len(opportunities)),
			fmt.Sprintf("Top candidate: %s (%s, score %.1f)", top.Symbol, top.Type, top.AIAwareScore),
		)
	}

	if err := j.alerts.Save(alert); err != nil {
		return fmt.Errorf("failed to save scan alert: %w", err)
	}

	return nil
}
