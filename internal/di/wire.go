//go:build wireinject
// +build wireinject

package di

import (
	"GhostRegime/pkg/config"
	"GhostRegime/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideHistoryRepository,
		ProvideCache,
		ProvideDateLocker,
		ProvideSeriesCache,
		ProvideSnapshotPublisher,

		// Market data
		ProvideVendorRegistry,
		ProvideGateway,

		// Engine
		ProvideSignalBank,
		ProvideHistoryStore,
		ProvideSnapshotBuilder,

		// Use cases
		ProvideGhostRegimeService,
		ProvideScheduler,
		ProvideSeeder,

		// HTTP
		ProvideHTTPHandler,
		ProvideHTTPServer,

		ProvideApp,
	)
	return nil, nil, nil
}
