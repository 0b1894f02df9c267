// Package eventexport optionally republishes domain change events onto
// Kafka for downstream consumers outside this process, grounded on the
// teacher's pkg/kafka.Producer (originally used to publish trade ticks).
package eventexport

import (
	"context"
	"encoding/json"
	"time"

	"seawaywatch/internal/domain/models"
	"seawaywatch/internal/eventbus"
	pkgkafka "seawaywatch/pkg/kafka"
	"seawaywatch/pkg/logger"
)

// BridgeSource supplies the current bridge snapshot for enrichment.
type BridgeSource interface {
	Snapshot() *models.Snapshot
}

// VesselSource supplies the current vessel count for enrichment.
type VesselSource interface {
	Snapshot() []models.Record
}

// bridgeChangeEvent is the JSON payload published for a bridge change.
type bridgeChangeEvent struct {
	Region      string    `json:"region"`
	OccurredAt  time.Time `json:"occurred_at"`
	BridgeCount int       `json:"bridge_count"`
}

// vesselChangeEvent is the JSON payload published for a vessel-registry
// change (fired alongside the boats fanout broadcast).
type vesselChangeEvent struct {
	OccurredAt  time.Time `json:"occurred_at"`
	VesselCount int       `json:"vessel_count"`
}

// KafkaExporter subscribes to the event bus and publishes a lightweight
// JSON summary of each change to a Kafka topic, independent of and
// downstream from the WebSocket fanout (spec.md's Non-goals exclude
// multi-node replication of the live store itself, not an external
// notification feed derived from it).
type KafkaExporter struct {
	producer *pkgkafka.Producer
	topic    string
	bridges  BridgeSource
	vessels  VesselSource
	bus      *eventbus.Bus
	log      *logger.Logger
}

// NewKafkaExporter builds a KafkaExporter.
func NewKafkaExporter(producer *pkgkafka.Producer, topic string, bridges BridgeSource, vessels VesselSource, bus *eventbus.Bus, log *logger.Logger) *KafkaExporter {
	return &KafkaExporter{
		producer: producer,
		topic:    topic,
		bridges:  bridges,
		vessels:  vessels,
		bus:      bus,
		log:      log,
	}
}

// Run subscribes to both change streams and publishes until ctx is
// cancelled.
func (e *KafkaExporter) Run(ctx context.Context) {
	bridgeEvents := e.bus.SubscribeBridgeChanges(32)
	vesselEvents := e.bus.SubscribeVesselChanges(8)

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-bridgeEvents:
			e.publishBridgeChange(ctx, ev)
		case <-vesselEvents:
			e.publishVesselChange(ctx)
		}
	}
}

func (e *KafkaExporter) publishBridgeChange(ctx context.Context, ev eventbus.BridgeSnapshotChanged) {
	snap := e.bridges.Snapshot()
	payload := bridgeChangeEvent{
		Region:      ev.Region,
		OccurredAt:  snap.LastUpdated,
		BridgeCount: len(snap.Bridges),
	}
	e.publish(ctx, "bridge-change", payload)
}

func (e *KafkaExporter) publishVesselChange(ctx context.Context) {
	payload := vesselChangeEvent{
		OccurredAt:  time.Now(),
		VesselCount: len(e.vessels.Snapshot()),
	}
	e.publish(ctx, "vessel-change", payload)
}

func (e *KafkaExporter) publish(ctx context.Context, key string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		e.log.Warn("eventexport: marshal failed", logger.Error(err))
		return
	}
	if err := e.producer.Publish(ctx, e.topic, []byte(key), body); err != nil {
		e.log.Warn("eventexport: kafka publish failed", logger.Error(err))
	}
}
