package fanout

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"seawaywatch/internal/domain/models"
	"seawaywatch/internal/domain/repository"
	"seawaywatch/internal/eventbus"
	"seawaywatch/internal/vessel"
	"seawaywatch/pkg/logger"
)

// boatProbeInterval is the fixed cadence of the boat-change probe
// (spec.md §4.8: "a 5 s probe computes the current boats response").
const boatProbeInterval = 5 * time.Second

// minBoatBroadcastInterval gates consecutive boat broadcasts to prevent
// flooding even if the registry changes faster than the probe samples.
const minBoatBroadcastInterval = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SnapshotSource supplies the current bridge snapshot.
type SnapshotSource interface {
	Snapshot() *models.Snapshot
}

// VesselSource supplies the current vessel registry contents.
type VesselSource interface {
	Snapshot() []models.Record
}

// Hub is the single broadcaster over every accepted WebSocket connection.
// It owns the client set; clients own their subscription sets (spec.md
// §5's "subscription set" row: "owned by client; Fanout iterates a
// captured list of clients and reads each set under a short lock").
type Hub struct {
	bridges SnapshotSource
	vessels VesselSource
	bus     *eventbus.Bus
	metrics repository.Metrics
	clock   repository.Clock
	log     *logger.Logger

	mu      sync.Mutex
	clients map[*client]bool

	lastBoatsBytes    []byte
	lastBoatBroadcast time.Time
}

// NewHub builds a Hub. bridges and vessels are read on every push; they
// are expected to be cheap deep-copy snapshots, not the live stores.
func NewHub(bridges SnapshotSource, vessels VesselSource, bus *eventbus.Bus, metrics repository.Metrics, clock repository.Clock, log *logger.Logger) *Hub {
	return &Hub{
		bridges: bridges,
		vessels: vessels,
		bus:     bus,
		metrics: metrics,
		clock:   clock,
		log:     log,
		clients: make(map[*client]bool),
	}
}

// ServeWS upgrades an HTTP request to a WebSocket connection and
// registers the resulting client. No data is sent until the client
// subscribes (spec.md §4.8 connection lifecycle).
func (h *Hub) ServeWS(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	cl := newClient(h, conn, h.log)
	h.register(cl)

	go cl.writePump()
	cl.readPump()
	return nil
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	h.metrics.SetWebsocketClients(n)
}

// unregister removes c from the client set and closes its send channel.
// It is the sole closer of that channel (never the client's own
// readPump), and is safe to call more than once for the same client: a
// broadcast's failed enqueue and the client's own readPump exit can both
// race to call it, but only the first actually removes it from the map
// or updates the connected-client gauge.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, existed := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	c.closeSend()

	if existed {
		h.metrics.SetWebsocketClients(n)
	}
}

// ClientCount reports the number of currently connected WebSocket clients,
// used by the /health handler's websocket_clients field.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// captured returns a point-in-time list of connected clients to iterate
// outside the hub's own lock.
func (h *Hub) captured() []*client {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}

// Run subscribes to the event bus and drives both push paths until ctx
// is canceled (spec.md §4.8 push triggers).
func (h *Hub) Run(ctx context.Context) {
	bridgeEvents := h.bus.SubscribeBridgeChanges(32)
	ticker := time.NewTicker(boatProbeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll("server shutting down")
			return
		case e := <-bridgeEvents:
			h.broadcastBridges(e.Region)
		case <-ticker.C:
			h.probeBoats()
		}
	}
}

// broadcastBridges pushes the full snapshot to "bridges" subscribers and
// a region-filtered snapshot to that region's sub-channel subscribers.
func (h *Hub) broadcastBridges(regionShort string) {
	snap := h.bridges.Snapshot()
	fullEnv, err := marshalEnvelope("bridges", snap)
	if err != nil {
		h.log.Warn("fanout: marshal bridges snapshot failed", logger.Error(err))
		return
	}

	region := regionNameForShort(snap, regionShort)
	filtered := snap.FilterByRegion(region)
	regionEnv, err := marshalEnvelope("bridges", filtered)
	if err != nil {
		h.log.Warn("fanout: marshal region bridges snapshot failed", logger.Error(err))
		return
	}

	h.metrics.RecordBroadcast("bridges")
	for _, c := range h.captured() {
		subs := c.subscriptions()
		if subs["bridges"] {
			if !c.enqueue(fullEnv) {
				h.unregister(c)
			}
			continue
		}
		if wantsBridges(subs, regionShort) {
			if !c.enqueue(regionEnv) {
				h.unregister(c)
			}
		}
	}
}

// probeBoats computes the current boats payload, compares it against the
// last one pushed by canonical bytes, and broadcasts only on change,
// gated to at most once per minBoatBroadcastInterval (spec.md §4.8).
func (h *Hub) probeBoats() {
	now := h.clock.Now()
	records := h.vessels.Snapshot()
	resp := vessel.BuildResponse(records, now)

	canonical, err := vessel.CanonicalBytes(resp)
	if err != nil {
		h.log.Warn("fanout: canonicalize boats payload failed", logger.Error(err))
		return
	}

	h.mu.Lock()
	unchanged := bytes.Equal(canonical, h.lastBoatsBytes)
	tooSoon := now.Sub(h.lastBoatBroadcast) < minBoatBroadcastInterval
	if unchanged || tooSoon {
		h.mu.Unlock()
		return
	}
	h.lastBoatsBytes = canonical
	h.lastBoatBroadcast = now
	h.mu.Unlock()

	h.bus.PublishVesselChange(eventbus.VesselRegistryChanged{})
	h.broadcastBoats(resp)
}

func (h *Hub) broadcastBoats(full *models.VesselsResponse) {
	fullEnv, err := marshalEnvelope("boats", full)
	if err != nil {
		h.log.Warn("fanout: marshal boats payload failed", logger.Error(err))
		return
	}

	regionEnvs := map[models.Region][]byte{}
	for _, region := range []models.Region{models.RegionWelland, models.RegionMontreal} {
		filtered := full.FilterByRegion(region)
		env, err := marshalEnvelope("boats", filtered)
		if err != nil {
			continue
		}
		regionEnvs[region] = env
	}

	h.metrics.RecordBroadcast("boats")
	for _, c := range h.captured() {
		subs := c.subscriptions()
		if subs["boats"] {
			if !c.enqueue(fullEnv) {
				h.unregister(c)
			}
			continue
		}
		for region, env := range regionEnvs {
			if wantsBoats(subs, string(region)) {
				if !c.enqueue(env) {
					h.unregister(c)
				}
				break
			}
		}
	}
}

// sendInitialSnapshot pushes the current payload for each newly
// subscribed top-level channel (spec.md §4.8: "immediately sends the
// current snapshot for each subscribed top-level channel").
func (h *Hub) sendInitialSnapshot(c *client, channels []string) {
	seenBridges, seenBoats := false, false
	for _, ch := range channels {
		switch {
		case ch == "bridges" && !seenBridges:
			seenBridges = true
			h.sendBridgesTo(c, "")
		case strings.HasPrefix(ch, "bridges:") && !seenBridges:
			h.sendBridgesTo(c, strings.TrimPrefix(ch, "bridges:"))
		case ch == "boats" && !seenBoats:
			seenBoats = true
			h.sendBoatsTo(c, "")
		case strings.HasPrefix(ch, "boats:") && !seenBoats:
			h.sendBoatsTo(c, strings.TrimPrefix(ch, "boats:"))
		}
	}
}

func (h *Hub) sendBridgesTo(c *client, regionShort string) {
	snap := h.bridges.Snapshot()
	if regionShort != "" {
		snap = snap.FilterByRegion(regionNameForShort(snap, regionShort))
	}
	if env, err := marshalEnvelope("bridges", snap); err == nil {
		c.enqueue(env)
	}
}

// regionNameForShort resolves a channel's short region code (e.g. "sct")
// to the full region name snapshot bridges are keyed by, by looking at
// whichever bridge in the snapshot already carries that short code.
func regionNameForShort(snap *models.Snapshot, regionShort string) string {
	for _, b := range snap.Bridges {
		if strings.EqualFold(b.Static.RegionShort, regionShort) {
			return b.Static.Region
		}
	}
	return ""
}

func (h *Hub) sendBoatsTo(c *client, region string) {
	resp := vessel.BuildResponse(h.vessels.Snapshot(), h.clock.Now())
	if region != "" {
		resp = resp.FilterByRegion(models.Region(region))
	}
	if env, err := marshalEnvelope("boats", resp); err == nil {
		c.enqueue(env)
	}
}

func (h *Hub) closeAll(reason string) {
	for _, c := range h.captured() {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, reason),
			time.Now().Add(writeWait))
		c.conn.Close()
	}
}

func marshalEnvelope(typ string, data interface{}) ([]byte, error) {
	return json.Marshal(envelope{Type: typ, Data: data})
}
