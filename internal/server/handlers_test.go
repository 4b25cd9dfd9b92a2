package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgehunter/edgehunter/internal/domain"
	"github.com/edgehunter/edgehunter/internal/events"
	"github.com/edgehunter/edgehunter/internal/modules/technicals"
)

type stubScanner struct {
	opps []domain.Opportunity
}

func (s *stubScanner) RunAllScans() []domain.Opportunity { return s.opps }

type stubOpportunities struct {
	active     []domain.Opportunity
	byType     map[domain.OpportunityType][]domain.Opportunity
	byRisk     map[domain.RiskLevel][]domain.Opportunity
	updateErr  error
	lastUpdate string
}

func (s *stubOpportunities) GetActive() ([]domain.Opportunity, error) { return s.active, nil }

func (s *stubOpportunities) GetByType(t domain.OpportunityType) ([]domain.Opportunity, error) {
	return s.byType[t], nil
}

func (s *stubOpportunities) GetByRisk(r domain.RiskLevel) ([]domain.Opportunity, error) {
	return s.byRisk[r], nil
}

func (s *stubOpportunities) Update(id string, resolved *bool, actualReturn *float64) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.lastUpdate = id
	return nil
}

type stubAlerts struct {
	unread  []domain.Alert
	readErr error
	lastID  string
}

func (s *stubAlerts) GetUnread() ([]domain.Alert, error) { return s.unread, nil }

func (s *stubAlerts) MarkAsRead(id string) error {
	if s.readErr != nil {
		return s.readErr
	}
	s.lastID = id
	return nil
}

type stubHistory struct{}

func (stubHistory) GetHistoricalCloses(symbol string, period string) ([]domain.HistoricalClose, error) {
	return nil, errors.New("no history in tests")
}

func testServer(t *testing.T, scanner ScanService, opps OpportunityReader, alertStore AlertStore) *Server {
	t.Helper()
	log := zerolog.Nop()
	bus := events.NewBus(log)

	return New(Config{
		Port:          0,
		Log:           log,
		Scanner:       scanner,
		Opportunities: opps,
		Alerts:        alertStore,
		Technicals:    technicals.NewHandler(technicals.NewService(stubHistory{}, log), log),
		Events:        NewEventsStreamHandler(bus, log),
		System:        NewSystemHandlers(nil, log),
	})
}

func TestHandleHealth(t *testing.T) {
	srv := testServer(t, &stubScanner{}, &stubOpportunities{}, &stubAlerts{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleRunScan(t *testing.T) {
	scanner := &stubScanner{opps: []domain.Opportunity{
		{ID: "crypto_DCC.AX_1", Symbol: "DCC.AX", Type: domain.TypeCryptoCorrelation, AIAwareScore: 150},
	}}
	srv := testServer(t, scanner, &stubOpportunities{}, &stubAlerts{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/scan", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
	assert.Contains(t, rec.Body.String(), "DCC.AX")
}

func TestHandleGetOpportunities_Filters(t *testing.T) {
	opps := &stubOpportunities{
		active: []domain.Opportunity{{ID: "a"}, {ID: "b"}},
		byType: map[domain.OpportunityType][]domain.Opportunity{
			domain.TypeOversold: {{ID: "oversold_only"}},
		},
		byRisk: map[domain.RiskLevel][]domain.Opportunity{
			domain.RiskLow: {{ID: "low_only"}},
		},
	}
	srv := testServer(t, &stubScanner{}, opps, &stubAlerts{})

	cases := []struct {
		url   string
		count string
		want  string
	}{
		{"/api/opportunities/", `"count":2`, `"a"`},
		{"/api/opportunities/?type=oversold", `"count":1`, "oversold_only"},
		{"/api/opportunities/?risk=low", `"count":1`, "low_only"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.url, nil))

		require.Equal(t, http.StatusOK, rec.Code, tc.url)
		assert.Contains(t, rec.Body.String(), tc.count, tc.url)
		assert.Contains(t, rec.Body.String(), tc.want, tc.url)
	}
}

func TestHandleUpdateOpportunity(t *testing.T) {
	opps := &stubOpportunities{}
	srv := testServer(t, &stubScanner{}, opps, &stubAlerts{})

	body := strings.NewReader(`{"resolved": true, "actual_return": 4.2}`)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/opportunities/lag_ABC_1", body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "lag_ABC_1", opps.lastUpdate)
}

func TestHandleUpdateOpportunity_EmptyBodyRejected(t *testing.T) {
	srv := testServer(t, &stubScanner{}, &stubOpportunities{}, &stubAlerts{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/opportunities/lag_ABC_1", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUpdateOpportunity_NotFound(t *testing.T) {
	opps := &stubOpportunities{updateErr: errors.New("opportunity missing not found")}
	srv := testServer(t, &stubScanner{}, opps, &stubAlerts{})

	body := strings.NewReader(`{"resolved": true}`)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/opportunities/missing", body))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleAlerts(t *testing.T) {
	alertStore := &stubAlerts{unread: []domain.Alert{
		{ID: "alert-1", Title: "Scan completed"},
	}}
	srv := testServer(t, &stubScanner{}, &stubOpportunities{}, alertStore)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/alerts/unread", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alert-1")

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/alerts/alert-1/read", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alert-1", alertStore.lastID)
}

func TestHandleTechnicals_UpstreamFailureIsBadGateway(t *testing.T) {
	srv := testServer(t, &stubScanner{}, &stubOpportunities{}, &stubAlerts{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/technicals/BHP.AX", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
