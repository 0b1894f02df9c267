// Package metrics implements repository.Metrics with Prometheus
// collectors, grounded on the same promauto-vec structure the teacher
// used for its market-data counters/gauges.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements internal/domain/repository.Metrics using Prometheus.
type Recorder struct {
	scrapesTotal     *prometheus.CounterVec
	aisMessagesTotal *prometheus.CounterVec
	broadcastsTotal  *prometheus.CounterVec
	websocketClients prometheus.Gauge
	vesselCount      prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		scrapesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seawaywatch_scrapes_total",
				Help: "Bridge-status scrape attempts by region and outcome",
			},
			[]string{"region", "outcome"},
		),
		aisMessagesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seawaywatch_ais_messages_total",
				Help: "AIS messages processed by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		broadcastsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seawaywatch_broadcasts_total",
				Help: "Fanout broadcasts by channel",
			},
			[]string{"channel"},
		),
		websocketClients: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "seawaywatch_websocket_clients",
				Help: "Currently connected WebSocket clients",
			},
		),
		vesselCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "seawaywatch_vessel_count",
				Help: "Vessels currently held in the registry",
			},
		),
	}
}

// RecordScrapeResult records one region scrape attempt's outcome.
func (r *Recorder) RecordScrapeResult(region string, ok bool) {
	r.scrapesTotal.WithLabelValues(region, outcomeLabel(ok)).Inc()
}

// RecordAISMessage records one decoded (or dropped) AIS message.
func (r *Recorder) RecordAISMessage(source string, dropped bool) {
	outcome := "accepted"
	if dropped {
		outcome = "dropped"
	}
	r.aisMessagesTotal.WithLabelValues(source, outcome).Inc()
}

// RecordBroadcast records one fanout push on a channel.
func (r *Recorder) RecordBroadcast(channel string) {
	r.broadcastsTotal.WithLabelValues(channel).Inc()
}

// SetWebsocketClients sets the current connected-client gauge.
func (r *Recorder) SetWebsocketClients(n int) {
	r.websocketClients.Set(float64(n))
}

// SetVesselCount sets the current registry size gauge.
func (r *Recorder) SetVesselCount(n int) {
	r.vesselCount.Set(float64(n))
}

func outcomeLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
