package di

import (
	"fmt"
	"time"

	domsvc "MarketBrief/internal/domain/service"
	"MarketBrief/internal/handler/api"
	"MarketBrief/internal/service/events"
	"MarketBrief/internal/service/fmp"
	"MarketBrief/internal/service/mailgun"
	"MarketBrief/internal/service/swarms"
	"MarketBrief/internal/service/yahoo"
	"MarketBrief/internal/usecase"
	"MarketBrief/pkg/cache"
	"MarketBrief/pkg/config"
	pkgkafka "MarketBrief/pkg/kafka"
	applogger "MarketBrief/pkg/logger"
	"MarketBrief/pkg/metrics"
	"MarketBrief/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideCache builds the quote snapshot cache. Returns nil when caching
// is disabled; the quote provider treats a nil cache as a pass-through.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}

	if cfg.Cache.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Cache.Redis.Host),
			cache.WithRedisPort(cfg.Cache.Redis.Port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return cache.NewLayeredCache(redisCache), nil
	}

	return cache.NewMemoryCache(), nil
}

// ProvideQuoteProvider creates the Yahoo Finance quote client.
func ProvideQuoteProvider(cfg *config.Config, logger *applogger.Logger, cacheSvc cache.Service, recorder *metrics.Recorder) domsvc.QuoteProvider {
	opts := []yahoo.Option{yahoo.WithRecorder(recorder)}
	if cacheSvc != nil {
		opts = append(opts, yahoo.WithCache(cacheSvc, cfg.Cache.TTL))
	}
	return yahoo.New(cfg.Yahoo.BaseURL, cfg.Yahoo.Timeout, logger, opts...)
}

// ProvideNewsProvider creates the FMP news client.
func ProvideNewsProvider(cfg *config.Config, logger *applogger.Logger) domsvc.NewsProvider {
	return fmp.New(cfg.News.BaseURL, cfg.News.APIKey, cfg.News.Timeout, logger)
}

// ProvideAnalyzer creates the Swarms completion client.
func ProvideAnalyzer(cfg *config.Config, logger *applogger.Logger) domsvc.Analyzer {
	return swarms.New(cfg.Swarms.BaseURL, cfg.Swarms.APIKey, cfg.Swarms.Timeout, logger)
}

// ProvideNotifier creates the Mailgun delivery client.
func ProvideNotifier(cfg *config.Config, logger *applogger.Logger) domsvc.Notifier {
	return mailgun.New(cfg.Mailgun.BaseURL, cfg.Mailgun.APIKey, cfg.Mailgun.Domain, cfg.Mailgun.Recipient, cfg.Mailgun.Timeout, logger)
}

// ProvideEventPublisher creates the Kafka run-event publisher when Kafka
// is enabled, and attaches the error-log collector to the same producer.
// A nil publisher is a valid no-op.
func ProvideEventPublisher(cfg *config.Config, logger *applogger.Logger) (*events.Publisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	publisher := events.New(producer, cfg.Kafka.Topic)
	logger.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   30 * time.Second,
		CountThreshold: 100,
		Topic:          cfg.Kafka.Topic + ".logs",
		Publisher:      publisher,
	})
	return publisher, nil
}

// ProvideRunPublisher adapts the concrete publisher to the domain port.
func ProvideRunPublisher(p *events.Publisher) domsvc.RunPublisher {
	if p == nil {
		return nil
	}
	return p
}

// ProvideAnalysisUsecase creates the pipeline orchestrator.
func ProvideAnalysisUsecase(
	cfg *config.Config,
	quotes domsvc.QuoteProvider,
	news domsvc.NewsProvider,
	analyzer domsvc.Analyzer,
	notifier domsvc.Notifier,
	publisher domsvc.RunPublisher,
	recorder *metrics.Recorder,
	logger *applogger.Logger,
) *usecase.AnalysisUsecase {
	return usecase.NewAnalysisUsecase(
		cfg.Symbols,
		cfg.Swarms.APIKey,
		quotes,
		news,
		analyzer,
		notifier,
		publisher,
		recorder,
		logger,
	)
}

// ProvideAnalysisHandler creates the HTTP handler.
func ProvideAnalysisHandler(logger *applogger.Logger, uc *usecase.AnalysisUsecase) *api.AnalysisHandler {
	return api.NewAnalysisHandler(logger, uc)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	handler *api.AnalysisHandler,
	uc *usecase.AnalysisUsecase,
	cacheSvc cache.Service,
	publisher *events.Publisher,
) *server.App {
	return server.New(cfg, logger, handler, uc, cacheSvc, publisher)
}
