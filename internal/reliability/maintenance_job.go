package reliability

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/edgehunter/edgehunter/internal/database"
)

// QuoteCachePurger removes expired quote cache entries.
// Implemented by quotecache.Cache.
type QuoteCachePurger interface {
	PurgeExpired() error
}

// MaintenanceJob performs nightly database maintenance: WAL checkpoints
// to keep log files bounded, plus quote cache cleanup.
type MaintenanceJob struct {
	databases map[string]*database.DB
	cache     QuoteCachePurger
	log       zerolog.Logger
}

// NewMaintenanceJob creates a new maintenance job
func NewMaintenanceJob(databases map[string]*database.DB, cache QuoteCachePurger, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		databases: databases,
		cache:     cache,
		log:       log.With().Str("job", "maintenance").Logger(),
	}
}

// Name returns the job name for the scheduler
func (j *MaintenanceJob) Name() string {
	return "maintenance"
}

// Run executes the maintenance job
func (j *MaintenanceJob) Run() error {
	startTime := time.Now()

	for name, db := range j.databases {
		if _, err := db.Conn().Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			// Not critical, the checkpoint retries on the next run
			j.log.Warn().Err(err).Str("database", name).Msg("WAL checkpoint failed")
		}
	}

	if err := j.cache.PurgeExpired(); err != nil {
		j.log.Warn().Err(err).Msg("Quote cache purge failed")
	}

	j.log.Info().Dur("duration_ms", time.Since(startTime)).Msg("Maintenance completed")
	return nil
}
