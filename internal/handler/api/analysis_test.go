package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"MarketBrief/internal/domain/models"
	"MarketBrief/internal/usecase"
	xlogger "MarketBrief/pkg/logger"
	"MarketBrief/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

func testLogger(t *testing.T) *xlogger.Logger {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

type stubQuotes struct {
	quotes map[string]*models.TickerQuote
	panics bool
}

func (s *stubQuotes) FetchQuotes(ctx context.Context, symbols []string) (map[string]*models.TickerQuote, error) {
	if s.panics {
		panic("upstream exploded")
	}
	return s.quotes, nil
}

type stubNews struct{}

func (stubNews) FetchNews(ctx context.Context, symbols []string) *models.MarketNews {
	return &models.MarketNews{Unavailable: "Market news unavailable: FMP_API_KEY not configured. Sign up at https://financialmodelingprep.com/developer/docs"}
}

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(ctx context.Context, quotes map[string]*models.TickerQuote, news *models.MarketNews) (string, *float64, error) {
	return "## 🤖 Technical Analyst\n\nlevels", nil, nil
}

type stubNotifier struct{}

func (stubNotifier) SendReport(ctx context.Context, analysis string, quotes map[string]*models.TickerQuote) bool {
	return false
}

func newTestRouter(t *testing.T, q *stubQuotes) *echo.Echo {
	t.Helper()
	rec := metrics.NewWithRegistry(prometheus.NewRegistry())
	uc := usecase.NewAnalysisUsecase(
		[]string{"SPY"}, "sk-test",
		q, stubNews{}, stubAnalyzer{}, stubNotifier{}, nil,
		rec, testLogger(t),
	)
	e := echo.New()
	NewAnalysisHandler(testLogger(t), uc).RegisterRoutes(e)
	return e
}

func okQuotes() *stubQuotes {
	return &stubQuotes{quotes: map[string]*models.TickerQuote{
		"SPY": {Symbol: "SPY", Price: 560.5},
	}}
}

func TestDashboard(t *testing.T) {
	e := newTestRouter(t, okQuotes())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=300" {
		t.Fatalf("cache-control = %q", got)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "triggerAnalysis()") {
		t.Fatalf("dashboard script missing")
	}
}

func TestTriggerSuccess(t *testing.T) {
	e := newTestRouter(t, okQuotes())
	req := httptest.NewRequest(http.MethodGet, "/trigger", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Message   string                 `json:"message"`
		Timestamp string                 `json:"timestamp"`
		Result    *models.AnalysisResult `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Message != "Stock analysis triggered manually" {
		t.Fatalf("message = %q", resp.Message)
	}
	if resp.Timestamp == "" {
		t.Fatalf("timestamp missing")
	}
	if resp.Result == nil || !resp.Result.Success || resp.Result.SymbolsAnalyzed != 1 {
		t.Fatalf("result = %+v", resp.Result)
	}
}

func TestTriggerDomainFailureStill200(t *testing.T) {
	e := newTestRouter(t, &stubQuotes{quotes: map[string]*models.TickerQuote{
		"SPY": {Symbol: "SPY", Error: "Failed to fetch data: boom"},
	}})
	req := httptest.NewRequest(http.MethodGet, "/trigger", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("domain failure must stay 200, got %d", rec.Code)
	}
	var resp struct {
		Result *models.AnalysisResult `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Result.Success || resp.Result.Error != "No valid market data retrieved" {
		t.Fatalf("result = %+v", resp.Result)
	}
}

func TestTriggerPanicMapsTo500(t *testing.T) {
	e := newTestRouter(t, &stubQuotes{panics: true})
	req := httptest.NewRequest(http.MethodGet, "/trigger", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Error     string `json:"error"`
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error != "Failed to trigger analysis" {
		t.Fatalf("error = %q", resp.Error)
	}
	if !strings.Contains(resp.Message, "upstream exploded") {
		t.Fatalf("message = %q", resp.Message)
	}
}

func TestStatus(t *testing.T) {
	e := newTestRouter(t, okQuotes())
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Status  string `json:"status"`
		Service string `json:"service"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != "active" || resp.Service == "" || resp.Version == "" {
		t.Fatalf("resp = %+v", resp)
	}
}
