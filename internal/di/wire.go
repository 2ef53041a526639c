//go:build wireinject
// +build wireinject

package di

import (
	"CoinLake/pkg/config"
	"CoinLake/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideObjectStore,
		ProvideBatchPublisher,
		ProvideLatestCache,

		// Venue access
		ProvideStreamFactory,
		ProvideCandleSource,
		ProvideRatePolicy,

		// Use cases
		ProvideFlusher,
		ProvideSupervisor,
		ProvideBackfillRetriever,

		// HTTP + application server
		ProvideAPIHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
