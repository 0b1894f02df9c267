// Package di assembles the process's dependency graph: config, logger,
// clock, metrics, persistence, the vessel registry, the scraper, the
// optional AIS ingest paths, the fanout hub, the HTTP API, the scheduler
// jobs, and the optional Kafka event export — grounded on the teacher's
// internal/di/providers.go Provide* functions, generalized from the
// teacher's ClickHouse/Kafka/Finnhub market-data graph to this domain's
// persistence/AIS/fanout graph.
package di

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"seawaywatch/internal/ais"
	"seawaywatch/internal/domain/models"
	"seawaywatch/internal/domain/repository"
	"seawaywatch/internal/eventbus"
	"seawaywatch/internal/eventexport"
	"seawaywatch/internal/fanout"
	"seawaywatch/internal/httpapi"
	"seawaywatch/internal/persistence"
	"seawaywatch/internal/scheduler"
	"seawaywatch/internal/scraper"
	"seawaywatch/internal/service/ratelimit"
	"seawaywatch/internal/vessel"
	"seawaywatch/pkg/cache"
	"seawaywatch/pkg/config"
	pkgkafka "seawaywatch/pkg/kafka"
	"seawaywatch/pkg/logger"
	"seawaywatch/pkg/metrics"
)

// ProvideLogger builds the process logger (spec.md's ambient logging
// concern, grounded on the teacher's pkg/logger.New).
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	level := "info"
	if cfg.Environment == "development" {
		level = "debug"
	}
	return logger.New(&logger.Config{Level: level, Format: "console", Output: "stdout"})
}

// ProvideLocation resolves the configured IANA timezone, already
// confirmed loadable by config.Validate.
func ProvideLocation(cfg *config.Config) (*time.Location, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load location: %w", err)
	}
	return loc, nil
}

// ProvideClock builds the scheduler's RealClock, anchored to the
// configured zone so day/night and daily-at schedules evaluate in local
// wall-clock time.
func ProvideClock(loc *time.Location) repository.Clock {
	return scheduler.NewRealClock(loc)
}

// ProvideMetrics builds the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideEventBus builds the shared-state event bus decoupling the
// scraper/registry from the fanout hub.
func ProvideEventBus() *eventbus.Bus {
	return eventbus.New()
}

// ProvideSnapshotStore builds the on-disk snapshot store.
func ProvideSnapshotStore(cfg *config.Config, log *logger.Logger) repository.SnapshotStore {
	return persistence.NewSnapshotStore(cfg.Persistence.SnapshotPath, log)
}

// ProvideHistoryStore builds the on-disk per-bridge history store.
func ProvideHistoryStore(cfg *config.Config, log *logger.Logger) repository.HistoryStore {
	return persistence.NewHistoryStore(cfg.Persistence.HistoryDir, log)
}

// ProvideVesselRegistry builds the in-memory vessel registry.
func ProvideVesselRegistry() *vessel.Registry {
	return vessel.New()
}

// regionConfigs translates the YAML-shaped config.RegionInput into the
// scraper's own RegionConfig, keeping the config package free of any
// scraper import.
func regionConfigs(cfg *config.Config) []scraper.RegionConfig {
	regions := make([]scraper.RegionConfig, 0, len(cfg.Bridges.Regions))
	for _, r := range cfg.Bridges.Regions {
		bridges := make([]scraper.BridgeConfig, 0, len(r.Bridges))
		for _, b := range r.Bridges {
			bridges = append(bridges, scraper.BridgeConfig{
				ID:          b.ID,
				Name:        b.Name,
				Coordinates: models.Coordinates{Lat: b.Lat, Lng: b.Lng},
			})
		}
		regions = append(regions, scraper.RegionConfig{
			RegionShort:            r.RegionShort,
			RegionName:             r.RegionName,
			Endpoint:               r.Endpoint,
			InsecureSkipVerifyHost: r.InsecureSkipVerifyHost,
			Bridges:                bridges,
		})
	}
	return regions
}

// ProvideScraper builds the Scraper over the configured regions.
func ProvideScraper(
	cfg *config.Config,
	loc *time.Location,
	snapshotStore repository.SnapshotStore,
	historyStore repository.HistoryStore,
	vesselRegistry *vessel.Registry,
	clock repository.Clock,
	metricsRecorder repository.Metrics,
	bus *eventbus.Bus,
	log *logger.Logger,
) *scraper.Scraper {
	return scraper.New(regionConfigs(cfg), loc, snapshotStore, historyStore, vesselRegistry, clock, metricsRecorder, bus, log)
}

// ProvideAISListener builds the UDP AIS listener. Callers must check
// cfg.AIS.UDPEnabled before starting its Run loop.
func ProvideAISListener(cfg *config.Config, vesselRegistry *vessel.Registry, clock repository.Clock, metricsRecorder repository.Metrics, log *logger.Logger) *ais.Listener {
	return ais.NewListener(cfg.AIS.UDPPort, cfg.AIS.UDPStationMap, vesselRegistry, clock, metricsRecorder, log)
}

// ProvideAISPoller builds the AISHub HTTP poller. Callers must check
// cfg.AISHubEnabled() before starting its Run loop.
func ProvideAISPoller(cfg *config.Config, vesselRegistry *vessel.Registry, clock repository.Clock, metricsRecorder repository.Metrics, log *logger.Logger) *ais.Poller {
	return ais.NewPoller(cfg.AIS.AISHubAPIKey, cfg.AIS.AISHubURL, vesselRegistry, clock, metricsRecorder, log)
}

// ProvideFanoutHub builds the WebSocket fanout hub.
func ProvideFanoutHub(s *scraper.Scraper, vesselRegistry *vessel.Registry, bus *eventbus.Bus, metricsRecorder repository.Metrics, clock repository.Clock, log *logger.Logger) *fanout.Hub {
	return fanout.NewHub(s, vesselRegistry, bus, metricsRecorder, clock, log)
}

// ProvideRateLimiter builds the HTTP API's rate limiter, backed by Redis
// when a shared cap across processes is configured, otherwise in-memory.
func ProvideRateLimiter(cfg *config.Config) *httpapi.RateLimiter {
	if cfg.RateLimit.RedisAddr != "" {
		return httpapi.NewRedisRateLimiter(cfg.RateLimit.RedisAddr, cfg.RateLimit.DataPerMinute, cfg.RateLimit.StaticPerMinute)
	}
	return httpapi.NewRateLimiter(cfg.RateLimit.DataPerMinute, cfg.RateLimit.StaticPerMinute)
}

// ProvideResponseCache builds the HTTP API's short-TTL response cache,
// layered onto Redis when the deployment already has one configured for
// rate limiting, otherwise purely in-memory.
func ProvideResponseCache(cfg *config.Config, log *logger.Logger) *httpapi.ResponseCache {
	if cfg.RateLimit.RedisAddr != "" {
		host, portStr, err := net.SplitHostPort(cfg.RateLimit.RedisAddr)
		if err == nil {
			port, err := strconv.Atoi(portStr)
			if err == nil {
				redisCache, err := cache.NewRedisCache(cache.WithRedisHost(host), cache.WithRedisPort(port), cache.WithRedisPrefix("seawaywatch"))
				if err == nil {
					return httpapi.NewResponseCache(cache.NewLayeredCache(redisCache))
				}
				log.Warn("response cache: redis unavailable, falling back to memory-only", logger.Error(err))
			}
		}
	}
	return httpapi.NewResponseCache(cache.NewMemoryCache())
}

// ProvideHTTPAPIHandler builds the HTTP API handler wired over the
// scraper, vessel registry, and fanout hub.
func ProvideHTTPAPIHandler(
	s *scraper.Scraper,
	vesselRegistry *vessel.Registry,
	hub *fanout.Hub,
	clock repository.Clock,
	loc *time.Location,
	limiter *httpapi.RateLimiter,
	respCache *httpapi.ResponseCache,
	log *logger.Logger,
) *httpapi.Handler {
	return httpapi.New(s, vesselRegistry, hub, hub, clock, loc, limiter, respCache, log)
}

// ProvideKafkaProducer builds the optional event-export Kafka producer.
// Callers must check cfg.Kafka.Enabled before constructing it.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaExporter builds the optional change-event exporter.
func ProvideKafkaExporter(producer *pkgkafka.Producer, cfg *config.Config, s *scraper.Scraper, vesselRegistry *vessel.Registry, bus *eventbus.Bus, log *logger.Logger) *eventexport.KafkaExporter {
	return eventexport.NewKafkaExporter(producer, cfg.Kafka.Topic, s, vesselRegistry, bus, log)
}

// ProvideScheduler builds the Scheduler, not yet populated with jobs
// (Jobs are registered in pkg/server.App once the scraper and registry
// exist, since a couple of them close over those concrete types).
func ProvideScheduler(clock repository.Clock, log *logger.Logger) *scheduler.Scheduler {
	return scheduler.New(clock, time.Second, log)
}

// ProvideRateLimitBucket exposes the plain in-memory limiter type for
// any component besides the HTTP API that wants a local token bucket
// (kept distinct from the HTTP API's RateLimiter wrapper).
func ProvideRateLimitBucket() *ratelimit.Limiter {
	return ratelimit.New()
}
