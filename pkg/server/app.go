// Package server owns the process lifecycle: starting the scheduler, the
// optional AIS ingest goroutines, the fanout hub, the optional Kafka
// exporter, and the HTTP server, then tearing all of it down in order on
// shutdown, grounded on the teacher's App/New/Run/shutdown shape.
package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seawaywatch/internal/ais"
	"seawaywatch/internal/eventexport"
	"seawaywatch/internal/fanout"
	"seawaywatch/internal/scheduler"
	"seawaywatch/internal/scraper"
	"seawaywatch/internal/vessel"
	"seawaywatch/pkg/config"
	xhttp "seawaywatch/pkg/http"
	pkgkafka "seawaywatch/pkg/kafka"
	applogger "seawaywatch/pkg/logger"
)

// statisticsHour/statisticsMinute pin the daily statistics recompute job
// (spec.md §4.1 table: "daily, low-traffic hour").
const (
	statisticsHour   = 3
	statisticsMinute = 0
)

// vesselCleanupInterval drives the vessel registry's stale/idle eviction
// sweep (spec.md §4.3: "cleanup on a periodic sweep").
const vesselCleanupInterval = 5 * time.Minute

// App encapsulates the entire process lifecycle.
type App struct {
	cfg     *config.Config
	log     *applogger.Logger
	scraper *scraper.Scraper
	vessels *vessel.Registry
	hub     *fanout.Hub
	sched   *scheduler.Scheduler

	aisListener *ais.Listener
	aisPoller   *ais.Poller

	kafkaProducer *pkgkafka.Producer
	kafkaExporter *eventexport.KafkaExporter

	httpHandler xhttp.Handler
	httpServer  *xhttp.Server
}

// New creates an App from its already-constructed dependencies. AIS and
// Kafka components are optional: pass nil for whichever the
// configuration left disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	s *scraper.Scraper,
	vessels *vessel.Registry,
	hub *fanout.Hub,
	sched *scheduler.Scheduler,
	httpHandler xhttp.Handler,
	aisListener *ais.Listener,
	aisPoller *ais.Poller,
	kafkaProducer *pkgkafka.Producer,
	kafkaExporter *eventexport.KafkaExporter,
) *App {
	return &App{
		cfg:           cfg,
		log:           log,
		scraper:       s,
		vessels:       vessels,
		hub:           hub,
		sched:         sched,
		httpHandler:   httpHandler,
		aisListener:   aisListener,
		aisPoller:     aisPoller,
		kafkaProducer: kafkaProducer,
		kafkaExporter: kafkaExporter,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.scraper.LoadInitial(ctx); err != nil {
		a.log.Error("initial snapshot load failed", applogger.Error(err))
		return err
	}

	a.registerJobs(ctx)
	a.sched.Start(ctx)
	a.log.Info("scheduler started")

	if a.aisListener != nil {
		go func() {
			if err := a.aisListener.Run(ctx); err != nil {
				a.log.Error("ais udp listener stopped", applogger.Error(err))
			}
		}()
		a.log.Info("ais udp listener started")
	}
	if a.aisPoller != nil {
		go a.aisPoller.Run(ctx)
		a.log.Info("aishub poller started")
	}

	go a.hub.Run(ctx)
	a.log.Info("fanout hub started")

	if a.kafkaExporter != nil {
		go a.kafkaExporter.Run(ctx)
		a.log.Info("kafka event exporter started")
	}

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.log),
	)
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown(context.Background())
}

// registerJobs wires the recurring jobs of spec.md §4.1 onto the
// scheduler: the day/night bridge scrape, the daily statistics
// recompute, and the vessel registry cleanup sweep.
func (a *App) registerJobs(ctx context.Context) {
	a.sched.Register(&scheduler.Job{
		Name: "bridge-scrape",
		Schedule: scheduler.DayNightSchedule{
			DayInterval:   a.cfg.Bridges.DayScrapeInterval,
			NightInterval: a.cfg.Bridges.NightScrapeInterval,
		},
		Run: a.scraper.Tick,
	})
	a.sched.Register(&scheduler.Job{
		Name:     "statistics-recompute",
		Schedule: scheduler.DailyAt{Hour: statisticsHour, Minute: statisticsMinute},
		Run:      a.scraper.RecomputeStatistics,
	})
	a.sched.Register(&scheduler.Job{
		Name:     "vessel-cleanup",
		Schedule: scheduler.Every(vesselCleanupInterval),
		Run: func(ctx context.Context) error {
			now := time.Now()
			evicted := a.vessels.Cleanup(now)
			if evicted > 0 {
				a.log.Debug("vessel cleanup evicted stale records", applogger.Int("count", evicted))
			}
			return nil
		},
	})
}

// shutdown gracefully stops every started component in reverse order of
// startup, bounded by the configured shutdown timeout (spec.md §5).
func (a *App) shutdown(ctx context.Context) error {
	a.log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}

	a.sched.Stop(a.cfg.Server.ShutdownTimeout)

	if a.kafkaProducer != nil {
		if err := a.kafkaProducer.Close(); err != nil {
			a.log.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
