package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"MarketBrief/internal/domain/models"
	xlogger "MarketBrief/pkg/logger"
	"MarketBrief/pkg/metrics"

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

type fakeQuotes struct {
	quotes map[string]*models.TickerQuote
	err    error
	calls  int
}

func (f *fakeQuotes) FetchQuotes(ctx context.Context, symbols []string) (map[string]*models.TickerQuote, error) {
	f.calls++
	return f.quotes, f.err
}

type fakeNews struct {
	news  *models.MarketNews
	calls int
}

func (f *fakeNews) FetchNews(ctx context.Context, symbols []string) *models.MarketNews {
	f.calls++
	return f.news
}

type fakeAnalyzer struct {
	analysis string
	cost     *float64
	err      error
	calls    int
	gotNews  *models.MarketNews
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, quotes map[string]*models.TickerQuote, news *models.MarketNews) (string, *float64, error) {
	f.calls++
	f.gotNews = news
	return f.analysis, f.cost, f.err
}

type fakeNotifier struct {
	sent  bool
	calls int
}

func (f *fakeNotifier) SendReport(ctx context.Context, analysis string, quotes map[string]*models.TickerQuote) bool {
	f.calls++
	return f.sent
}

type fakePublisher struct {
	events []*models.RunEvent
	err    error
}

func (f *fakePublisher) PublishRun(ctx context.Context, event *models.RunEvent) error {
	f.events = append(f.events, event)
	return f.err
}

type fixture struct {
	quotes    *fakeQuotes
	news      *fakeNews
	analyzer  *fakeAnalyzer
	notifier  *fakeNotifier
	publisher *fakePublisher
	uc        *AnalysisUsecase
}

func newFixture(t *testing.T, swarmsKey string) *fixture {
	t.Helper()
	f := &fixture{
		quotes: &fakeQuotes{quotes: map[string]*models.TickerQuote{
			"SPY": {Symbol: "SPY", Price: 560.5, ChangePercent: 0.4},
			"QQQ": {Symbol: "QQQ", Error: "Failed to fetch data: boom"},
		}},
		news:      &fakeNews{news: &models.MarketNews{Unavailable: "Market news unavailable: Access forbidden. Please check your FMP_API_KEY is valid and not rate-limited."}},
		analyzer:  &fakeAnalyzer{analysis: "## 🤖 Technical Analyst\n\nlevels"},
		notifier:  &fakeNotifier{sent: true},
		publisher: &fakePublisher{},
	}
	rec := metrics.NewWithRegistry(prometheus.NewRegistry())
	f.uc = NewAnalysisUsecase(
		[]string{"SPY", "QQQ"},
		swarmsKey,
		f.quotes, f.news, f.analyzer, f.notifier, f.publisher,
		rec, testLogger(t),
	)
	return f
}

func TestRunSuccessWithDegradedNews(t *testing.T) {
	f := newFixture(t, "sk-test")
	result := f.uc.Run(context.Background(), TriggerManual)

	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if result.SymbolsAnalyzed != 1 {
		t.Fatalf("symbolsAnalyzed = %d", result.SymbolsAnalyzed)
	}
	if result.Analysis != "## 🤖 Technical Analyst\n\nlevels" {
		t.Fatalf("analysis = %q", result.Analysis)
	}
	// The analyzer still runs with the unavailability reason attached.
	if f.analyzer.gotNews == nil || f.analyzer.gotNews.Available() {
		t.Fatalf("expected degraded news to reach analyzer")
	}
	if f.notifier.calls != 1 {
		t.Fatalf("notifier calls = %d", f.notifier.calls)
	}
}

func TestRunMissingSwarmsKey(t *testing.T) {
	f := newFixture(t, "")
	result := f.uc.Run(context.Background(), TriggerManual)

	if result.Success || result.Error != "SWARMS_API_KEY is required" {
		t.Fatalf("result = %+v", result)
	}
	// Short-circuit before any outbound call.
	if f.quotes.calls != 0 || f.news.calls != 0 || f.analyzer.calls != 0 || f.notifier.calls != 0 {
		t.Fatalf("no provider should be called")
	}
}

func TestRunNoValidQuotes(t *testing.T) {
	f := newFixture(t, "sk-test")
	f.quotes.quotes = map[string]*models.TickerQuote{
		"SPY": {Symbol: "SPY", Error: "Failed to fetch data: x"},
		"QQQ": {Symbol: "QQQ", Error: "Failed to fetch data: y"},
	}
	result := f.uc.Run(context.Background(), TriggerManual)

	if result.Success || result.Error != "No valid market data retrieved" {
		t.Fatalf("result = %+v", result)
	}
	if f.news.calls != 0 || f.analyzer.calls != 0 || f.notifier.calls != 0 {
		t.Fatalf("pipeline must stop after quote stage")
	}
}

func TestRunAnalyzerFailurePreservesMessage(t *testing.T) {
	f := newFixture(t, "sk-test")
	f.analyzer.err = errors.New("Swarms API error: 402 - insufficient credits")
	result := f.uc.Run(context.Background(), TriggerManual)

	if result.Success || result.Error != "Swarms API error: 402 - insufficient credits" {
		t.Fatalf("result = %+v", result)
	}
	if f.notifier.calls != 0 {
		t.Fatalf("no email on failed analysis")
	}
}

func TestRunEmailFailureNotFatal(t *testing.T) {
	f := newFixture(t, "sk-test")
	f.notifier.sent = false
	result := f.uc.Run(context.Background(), TriggerManual)

	if !result.Success {
		t.Fatalf("delivery failure must not fail the run: %q", result.Error)
	}
}

func TestRunPublishesEvent(t *testing.T) {
	f := newFixture(t, "sk-test")
	cost := 0.02
	f.analyzer.cost = &cost
	result := f.uc.Run(context.Background(), TriggerScheduled)

	if !result.Success {
		t.Fatalf("unexpected failure: %q", result.Error)
	}
	if len(f.publisher.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.publisher.events))
	}
	ev := f.publisher.events[0]
	if ev.Trigger != TriggerScheduled || !ev.Success || ev.SymbolsAnalyzed != 1 {
		t.Fatalf("event = %+v", ev)
	}
	if ev.Cost == nil || *ev.Cost != cost {
		t.Fatalf("event cost = %v", ev.Cost)
	}
}

func TestRunRepeatedTriggersMatch(t *testing.T) {
	f := newFixture(t, "sk-test")
	cost := 0.02
	f.analyzer.cost = &cost

	first := f.uc.Run(context.Background(), TriggerManual)
	second := f.uc.Run(context.Background(), TriggerManual)

	// Runs share no state, so identical upstreams give identical results.
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ:\nfirst  = %+v\nsecond = %+v", first, second)
	}
	if f.quotes.calls != 2 || f.analyzer.calls != 2 {
		t.Fatalf("each trigger must run the full pipeline")
	}
}

func TestRunPublishFailureIgnored(t *testing.T) {
	f := newFixture(t, "sk-test")
	f.publisher.err = errors.New("broker down")
	result := f.uc.Run(context.Background(), TriggerManual)
	if !result.Success {
		t.Fatalf("publish failure must not fail the run")
	}
}
