package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// BackupRunner creates and rotates off-site backups.
// Implemented by reliability.BackupService.
type BackupRunner interface {
	CreateAndUploadBackup(ctx context.Context) error
	RotateOldBackups(ctx context.Context, retentionDays int) error
}

const (
	backupTimeout       = 10 * time.Minute
	backupRetentionDays = 30
)

// BackupJob runs the nightly off-site backup
type BackupJob struct {
	backups BackupRunner
	log     zerolog.Logger
}

// NewBackupJob creates a new backup job
func NewBackupJob(backups BackupRunner, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		backups: backups,
		log:     log.With().Str("job", "backup").Logger(),
	}
}

// Name returns the job name for the scheduler
func (j *BackupJob) Name() string {
	return "backup"
}

// Run creates a backup and rotates old ones
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()

	if err := j.backups.CreateAndUploadBackup(ctx); err != nil {
		return err
	}

	if err := j.backups.RotateOldBackups(ctx, backupRetentionDays); err != nil {
		// Rotation failure leaves extra backups behind, not data loss
		j.log.Warn().Err(err).Msg("Backup rotation failed")
	}

	return nil
}
