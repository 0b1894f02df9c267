package eventbus

import "testing"

func TestPublishBridgeChangeDeliversToSubscriber(t *testing.T) {
	bus := New()
	ch := bus.SubscribeBridgeChanges(1)

	bus.PublishBridgeChange(BridgeSnapshotChanged{Region: "SCT"})

	select {
	case e := <-ch:
		if e.Region != "SCT" {
			t.Fatalf("expected region SCT, got %q", e.Region)
		}
	default:
		t.Fatal("expected event to be delivered")
	}
}

func TestPublishDropsRatherThanBlocksOnFullSubscriber(t *testing.T) {
	bus := New()
	ch := bus.SubscribeBridgeChanges(1)

	bus.PublishBridgeChange(BridgeSnapshotChanged{Region: "PC"})  // fills the buffer
	bus.PublishBridgeChange(BridgeSnapshotChanged{Region: "MSS"}) // must drop, not block

	e := <-ch
	if e.Region != "PC" {
		t.Fatalf("expected first published event PC to survive, got %q", e.Region)
	}
	select {
	case extra := <-ch:
		t.Fatalf("expected no second event buffered, got %+v", extra)
	default:
	}
}

func TestPublishVesselChangeFansOutToMultipleSubscribers(t *testing.T) {
	bus := New()
	a := bus.SubscribeVesselChanges(1)
	b := bus.SubscribeVesselChanges(1)

	bus.PublishVesselChange(VesselRegistryChanged{})

	select {
	case <-a:
	default:
		t.Fatal("expected subscriber a to receive the event")
	}
	select {
	case <-b:
	default:
		t.Fatal("expected subscriber b to receive the event")
	}
}
