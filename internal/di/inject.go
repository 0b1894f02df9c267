//go:build !wireinject
// +build !wireinject

package di

import (
	"seawaywatch/internal/ais"
	"seawaywatch/internal/eventexport"
	pkgkafka "seawaywatch/pkg/kafka"

	"seawaywatch/pkg/config"
	"seawaywatch/pkg/server"
)

// InitializeApp builds the application's full dependency graph. wire.go
// documents the same graph for the `wire` tool, but since generating
// wire_gen.go requires running the wire binary, this hand-wired version
// is what actually ships.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	log, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}
	loc, err := ProvideLocation(cfg)
	if err != nil {
		return nil, err
	}

	clock := ProvideClock(loc)
	metricsRecorder := ProvideMetrics()
	bus := ProvideEventBus()

	snapshotStore := ProvideSnapshotStore(cfg, log)
	historyStore := ProvideHistoryStore(cfg, log)
	vesselRegistry := ProvideVesselRegistry()

	bridgeScraper := ProvideScraper(cfg, loc, snapshotStore, historyStore, vesselRegistry, clock, metricsRecorder, bus, log)

	var aisListener *ais.Listener
	if cfg.AIS.UDPEnabled {
		aisListener = ProvideAISListener(cfg, vesselRegistry, clock, metricsRecorder, log)
	}
	var aisPoller *ais.Poller
	if cfg.AISHubEnabled() {
		aisPoller = ProvideAISPoller(cfg, vesselRegistry, clock, metricsRecorder, log)
	}

	hub := ProvideFanoutHub(bridgeScraper, vesselRegistry, bus, metricsRecorder, clock, log)
	limiter := ProvideRateLimiter(cfg)
	respCache := ProvideResponseCache(cfg, log)
	handler := ProvideHTTPAPIHandler(bridgeScraper, vesselRegistry, hub, clock, loc, limiter, respCache, log)

	sched := ProvideScheduler(clock, log)

	var kafkaProducer *pkgkafka.Producer
	var kafkaExporter *eventexport.KafkaExporter
	if cfg.Kafka.Enabled {
		kafkaProducer, err = ProvideKafkaProducer(cfg)
		if err != nil {
			return nil, err
		}
		kafkaExporter = ProvideKafkaExporter(kafkaProducer, cfg, bridgeScraper, vesselRegistry, bus, log)
	}

	return server.New(cfg, log, bridgeScraper, vesselRegistry, hub, sched, handler, aisListener, aisPoller, kafkaProducer, kafkaExporter), nil
}
