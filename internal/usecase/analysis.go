package usecase

import (
	"context"
	"time"

	"MarketBrief/internal/domain/models"
	domsvc "MarketBrief/internal/domain/service"
	"MarketBrief/pkg/logger"
	"MarketBrief/pkg/metrics"
)

// TriggerManual and TriggerScheduled tag where a run originated.
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// AnalysisUsecase orchestrates one pipeline run: quotes, news, AI
// analysis, email, run event. Run never returns an error; every failure
// mode is folded into the result.
type AnalysisUsecase struct {
	symbols   []string
	swarmsKey string
	quotes    domsvc.QuoteProvider
	news      domsvc.NewsProvider
	analyzer  domsvc.Analyzer
	notifier  domsvc.Notifier
	publisher domsvc.RunPublisher
	recorder  *metrics.Recorder
	logger    *logger.Logger
}

func NewAnalysisUsecase(
	symbols []string,
	swarmsKey string,
	quotes domsvc.QuoteProvider,
	news domsvc.NewsProvider,
	analyzer domsvc.Analyzer,
	notifier domsvc.Notifier,
	publisher domsvc.RunPublisher,
	recorder *metrics.Recorder,
	logger *logger.Logger,
) *AnalysisUsecase {
	return &AnalysisUsecase{
		symbols:   symbols,
		swarmsKey: swarmsKey,
		quotes:    quotes,
		news:      news,
		analyzer:  analyzer,
		notifier:  notifier,
		publisher: publisher,
		recorder:  recorder,
		logger:    logger,
	}
}

// Run executes the full pipeline once. Concurrent calls are independent.
func (u *AnalysisUsecase) Run(ctx context.Context, trigger string) *models.AnalysisResult {
	start := time.Now()
	result := u.run(ctx)

	u.recorder.RecordRun(result.Success)
	u.recorder.RecordLatency("analysis_run", time.Since(start).Seconds())
	if result.Cost != nil {
		u.recorder.RecordCost(*result.Cost)
	}
	u.publishRun(ctx, trigger, result)

	if result.Success {
		u.logger.Info("analysis run succeeded",
			logger.String("trigger", trigger),
			logger.Int("symbols", result.SymbolsAnalyzed),
			logger.Duration("elapsed", time.Since(start)))
	} else {
		u.logger.Error("analysis run failed",
			logger.String("trigger", trigger),
			logger.String("reason", result.Error))
	}
	return result
}

func (u *AnalysisUsecase) run(ctx context.Context) *models.AnalysisResult {
	if u.swarmsKey == "" {
		return &models.AnalysisResult{Error: "SWARMS_API_KEY is required"}
	}

	quotes, err := u.quotes.FetchQuotes(ctx, u.symbols)
	if err != nil {
		return &models.AnalysisResult{Error: err.Error()}
	}

	valid := 0
	for _, q := range quotes {
		if q.Valid() {
			valid++
		}
	}
	if valid == 0 {
		return &models.AnalysisResult{Error: "No valid market data retrieved"}
	}

	news := u.news.FetchNews(ctx, u.symbols)
	if !news.Available() {
		u.logger.Warn("proceeding without news", logger.String("reason", news.Unavailable))
	}

	analysis, cost, err := u.analyzer.Analyze(ctx, quotes, news)
	if err != nil {
		return &models.AnalysisResult{Error: err.Error()}
	}

	// Email is best-effort. A delivery failure never fails the run.
	u.notifier.SendReport(ctx, analysis, quotes)

	return &models.AnalysisResult{
		Success:         true,
		Analysis:        analysis,
		SymbolsAnalyzed: valid,
		Cost:            cost,
	}
}

func (u *AnalysisUsecase) publishRun(ctx context.Context, trigger string, result *models.AnalysisResult) {
	if u.publisher == nil {
		return
	}
	event := &models.RunEvent{
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		Trigger:         trigger,
		Success:         result.Success,
		SymbolsAnalyzed: result.SymbolsAnalyzed,
		Cost:            result.Cost,
		Error:           result.Error,
	}
	if err := u.publisher.PublishRun(ctx, event); err != nil {
		u.logger.Warn("run event publish failed", logger.Error(err))
	}
}
