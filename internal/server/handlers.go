package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edgehunter/edgehunter/internal/domain"
)

// ScanService runs a full opportunity scan.
// Implemented by scanner.Service.
type ScanService interface {
	RunAllScans() []domain.Opportunity
}

// OpportunityReader reads and updates persisted opportunities.
// Implemented by opportunities.Repository.
type OpportunityReader interface {
	GetActive() ([]domain.Opportunity, error)
	GetByType(oppType domain.OpportunityType) ([]domain.Opportunity, error)
	GetByRisk(risk domain.RiskLevel) ([]domain.Opportunity, error)
	Update(id string, resolved *bool, actualReturn *float64) error
}

// AlertStore reads and acknowledges alerts.
// Implemented by alerts.Repository.
type AlertStore interface {
	GetUnread() ([]domain.Alert, error)
	MarkAsRead(id string) error
}

// handleHealth returns a basic liveness response
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRunScan triggers a full scan and returns the ranked results
func (s *Server) handleRunScan(w http.ResponseWriter, r *http.Request) {
	opportunities := s.scanner.RunAllScans()

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":         len(opportunities),
		"opportunities": opportunities,
	})
}

// handleGetOpportunities returns active opportunities, optionally
// filtered by type or risk level
func (s *Server) handleGetOpportunities(w http.ResponseWriter, r *http.Request) {
	var (
		opportunities []domain.Opportunity
		err           error
	)

	switch {
	case r.URL.Query().Get("type") != "":
		opportunities, err = s.opportunities.GetByType(domain.OpportunityType(r.URL.Query().Get("type")))
	case r.URL.Query().Get("risk") != "":
		opportunities, err = s.opportunities.GetByRisk(domain.RiskLevel(r.URL.Query().Get("risk")))
	default:
		opportunities, err = s.opportunities.GetActive()
	}

	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":         len(opportunities),
		"opportunities": opportunities,
	})
}

// updateOpportunityRequest is the PATCH body for an opportunity.
// Both fields are optional; omitted fields stay unchanged.
type updateOpportunityRequest struct {
	Resolved     *bool    `json:"resolved,omitempty"`
	ActualReturn *float64 `json:"actual_return,omitempty"`
}

// handleUpdateOpportunity updates an opportunity's outcome fields
func (s *Server) handleUpdateOpportunity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateOpportunityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Resolved == nil && req.ActualReturn == nil {
		s.writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	if err := s.opportunities.Update(id, req.Resolved, req.ActualReturn); err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// handleGetUnreadAlerts returns unread alerts, newest first
func (s *Server) handleGetUnreadAlerts(w http.ResponseWriter, r *http.Request) {
	unread, err := s.alerts.GetUnread()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(unread),
		"alerts": unread,
	})
}

// handleMarkAlertRead acknowledges one alert
func (s *Server) handleMarkAlertRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.alerts.MarkAsRead(id); err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
