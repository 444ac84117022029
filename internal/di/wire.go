//go:build wireinject
// +build wireinject

package di

import (
	"MarketBrief/pkg/config"
	"MarketBrief/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,

		// Providers for the four outbound services
		ProvideQuoteProvider,
		ProvideNewsProvider,
		ProvideAnalyzer,
		ProvideNotifier,
		ProvideEventPublisher,
		ProvideRunPublisher,

		// Use case and HTTP surface
		ProvideAnalysisUsecase,
		ProvideAnalysisHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
