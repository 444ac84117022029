package service

import (
	"context"

	"MarketBrief/internal/domain/models"
)

// QuoteProvider fetches the latest snapshot for every requested symbol.
// The returned map always contains exactly one entry per symbol; per-symbol
// failures are recorded in the entry's Error field, never returned as err.
type QuoteProvider interface {
	FetchQuotes(ctx context.Context, symbols []string) (map[string]*models.TickerQuote, error)
}

// NewsProvider fetches recent headlines. It never fails: any upstream
// problem is reported through the Unavailable branch of MarketNews.
type NewsProvider interface {
	FetchNews(ctx context.Context, symbols []string) *models.MarketNews
}

// Analyzer submits market data to the completion service and returns the
// normalized narrative plus optional billing cost.
type Analyzer interface {
	Analyze(ctx context.Context, quotes map[string]*models.TickerQuote, news *models.MarketNews) (string, *float64, error)
}

// Notifier delivers the finished report. Returns whether the report was
// actually sent; delivery failures are reported as false, never as a
// fatal error.
type Notifier interface {
	SendReport(ctx context.Context, analysis string, quotes map[string]*models.TickerQuote) bool
}

// RunPublisher forwards run summaries to an event stream.
type RunPublisher interface {
	PublishRun(ctx context.Context, event *models.RunEvent) error
}
