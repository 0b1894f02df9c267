// Package eventbus decouples the Scraper and Vessel Registry from the
// Fanout Gateway (spec.md §9: "Circular imports resolved by a
// shared-state module" / "an event-bus abstraction with typed events").
// The Scraper and Registry publish; the Fanout subscribes. Neither side
// knows about the other's concrete type.
package eventbus

import "sync"

// BridgeSnapshotChanged is published when the Scraper commits an
// observable change to one region's bridges.
type BridgeSnapshotChanged struct {
	Region string
}

// VesselRegistryChanged is published by the boat-change broadcast probe
// when the canonical vessels payload differs from the last one pushed.
type VesselRegistryChanged struct{}

// Bus is a minimal typed pub/sub: each event type has its own list of
// subscriber channels. Publish is non-blocking per subscriber — a full
// subscriber channel drops the event rather than stalling the publisher,
// since the Fanout probe re-derives state from the registry/snapshot on
// its own cadence and does not need every event delivered.
type Bus struct {
	mu         sync.Mutex
	bridgeSubs []chan BridgeSnapshotChanged
	vesselSubs []chan VesselRegistryChanged
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{}
}

// SubscribeBridgeChanges returns a channel that receives every published
// BridgeSnapshotChanged event, buffered so a slow-starting subscriber
// does not cause drops under normal load.
func (b *Bus) SubscribeBridgeChanges(buffer int) <-chan BridgeSnapshotChanged {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan BridgeSnapshotChanged, buffer)
	b.bridgeSubs = append(b.bridgeSubs, ch)
	return ch
}

// SubscribeVesselChanges returns a channel that receives every published
// VesselRegistryChanged event.
func (b *Bus) SubscribeVesselChanges(buffer int) <-chan VesselRegistryChanged {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan VesselRegistryChanged, buffer)
	b.vesselSubs = append(b.vesselSubs, ch)
	return ch
}

// PublishBridgeChange notifies every bridge-change subscriber.
func (b *Bus) PublishBridgeChange(e BridgeSnapshotChanged) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.bridgeSubs {
		select {
		case ch <- e:
		default:
		}
	}
}

// PublishVesselChange notifies every vessel-change subscriber.
func (b *Bus) PublishVesselChange(e VesselRegistryChanged) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.vesselSubs {
		select {
		case ch <- e:
		default:
		}
	}
}
