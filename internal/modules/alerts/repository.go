// Package alerts provides persistence for system alerts: scan
// completions, failures, and other events worth a human's attention.
package alerts

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/edgehunter/edgehunter/internal/domain"
)

// Repository handles alert database operations
type Repository struct {
	marketDB *sql.DB
	log      zerolog.Logger
}

// NewRepository creates a new alert repository
func NewRepository(marketDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		marketDB: marketDB,
		log:      log.With().Str("repo", "alerts").Logger(),
	}
}

// NewAlert builds an alert with a generated id and creation time
func NewAlert(alertType domain.AlertType, severity domain.AlertSeverity, title, message string) domain.Alert {
	return domain.Alert{
		ID:       uuid.New().String(),
		Type:     alertType,
		Title:    title,
		Message:  message,
		Severity: severity,
		Created:  time.Now(),
	}
}

// Save inserts an alert
func (r *Repository) Save(alert domain.Alert) error {
	_, err := r.marketDB.Exec(
		`INSERT INTO alerts (id, type, title, message, severity, created, read)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		alert.ID,
		string(alert.Type),
		alert.Title,
		alert.Message,
		string(alert.Severity),
		alert.Created.Format(time.RFC3339),
		alert.Read,
	)
	if err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}
	return nil
}

// GetUnread returns unread alerts, newest first
func (r *Repository) GetUnread() ([]domain.Alert, error) {
	rows, err := r.marketDB.Query(
		`SELECT id, type, title, message, severity, created, read
		 FROM alerts WHERE read = 0 ORDER BY created DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query unread alerts: %w", err)
	}
	defer rows.Close()

	var results []domain.Alert
	for rows.Next() {
		var alert domain.Alert
		var alertType, severity, created string

		if err := rows.Scan(&alert.ID, &alertType, &alert.Title, &alert.Message, &severity, &created, &alert.Read); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}

		alert.Type = domain.AlertType(alertType)
		alert.Severity = domain.AlertSeverity(severity)
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			alert.Created = t
		}
		results = append(results, alert)
	}

	return results, rows.Err()
}

// MarkAsRead marks one alert as read
func (r *Repository) MarkAsRead(id string) error {
	res, err := r.marketDB.Exec("UPDATE alerts SET read = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to mark alert as read: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("alert %s not found", id)
	}
	return nil
}
