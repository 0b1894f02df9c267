//go:build wireinject
// +build wireinject

package di

import (
	"seawaywatch/pkg/config"
	"seawaywatch/pkg/server"

	"github.com/google/wire"
)

// InitializeApp documents the dependency graph for `wire` codegen. It is
// never built (the wireinject tag excludes it from normal builds); the
// graph it declares is hand-wired in inject.go instead, since generating
// wire_gen.go requires running the wire binary.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideLocation,
		ProvideClock,
		ProvideMetrics,
		ProvideEventBus,

		ProvideSnapshotStore,
		ProvideHistoryStore,
		ProvideVesselRegistry,

		ProvideScraper,
		ProvideAISListener,
		ProvideAISPoller,

		ProvideFanoutHub,
		ProvideRateLimiter,
		ProvideResponseCache,
		ProvideHTTPAPIHandler,

		ProvideScheduler,

		server.New,
	)
	return &server.App{}, nil
}
