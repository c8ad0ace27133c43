//go:build wireinject
// +build wireinject

package di

import (
	"StockSage/pkg/config"
	"StockSage/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideHTTPClient,
		ProvideRateLimiter,
		ProvideMetricsRecorder,
		ProvideCache,

		// Infrastructure
		ProvideBarStore,
		ProvideArtifactStore,
		ProvideRestClient,
		ProvideHistoryProvider,
		ProvideQuoteProvider,
		ProvideStream,
		ProvideAdvisor,
		ProvidePublisher,

		// Domain services
		ProvidePredictor,
		ProvideEngine,

		// Use cases
		ProvideAnalyzer,
		ProvideWatchlist,
		ProvideTrainer,

		// HTTP and application server
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
