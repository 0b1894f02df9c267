// Package scraper implements the bridge-status ingest pipeline: per-region
// HTTP polling, dual-shape JSON parsing, status normalization, history
// bookkeeping, and prediction/attribution enrichment (spec.md §4.4),
// grounded in _examples/original_source/scraper.py's scrape_bridge_data
// orchestration loop.
package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"seawaywatch/internal/attribution"
	"seawaywatch/internal/domain/models"
	"seawaywatch/internal/domain/repository"
	"seawaywatch/internal/eventbus"
	"seawaywatch/internal/prediction"
	"seawaywatch/internal/statistics"
	pkghttp "seawaywatch/pkg/http"
	"seawaywatch/pkg/logger"
)

// maxConcurrentRegions bounds the worker pool processing regions on each
// tick (spec.md §5: "bounded worker pool, per-region failure isolation").
const maxConcurrentRegions = 4

// fetchRetries is the number of attempts per region before the tick gives
// up on it and records a backoff failure.
const fetchRetries = 3

// fetchRetryDelay is the short fixed pause between retries within a tick.
const fetchRetryDelay = 2 * time.Second

// httpTimeout bounds a single upstream request.
const httpTimeout = 10 * time.Second

// Scraper owns the in-memory canonical snapshot and drives it from the
// configured upstream endpoints. It is the single writer of
// models.Snapshot; readers (HTTP handlers, the fanout hub) only ever see
// a Clone().
type Scraper struct {
	regions []RegionConfig
	loc     *time.Location

	snapshotStore  repository.SnapshotStore
	historyStore   repository.HistoryStore
	vesselRegistry repository.VesselRegistry
	clock          repository.Clock
	metrics        repository.Metrics
	bus            *eventbus.Bus
	log            *logger.Logger

	backoff *backoffTable

	mu                    sync.Mutex
	snapshot              *models.Snapshot
	lastScrape            *time.Time
	lastScrapeHadChanges  bool
	lastChangeAt          *time.Time
	statisticsLastUpdated *time.Time
}

// New builds a Scraper. loc is the timezone upstream timestamps without
// an explicit offset are interpreted in (spec.md §6: "timezone" config).
func New(
	regions []RegionConfig,
	loc *time.Location,
	snapshotStore repository.SnapshotStore,
	historyStore repository.HistoryStore,
	vesselRegistry repository.VesselRegistry,
	clock repository.Clock,
	metrics repository.Metrics,
	bus *eventbus.Bus,
	log *logger.Logger,
) *Scraper {
	return &Scraper{
		regions:        regions,
		loc:            loc,
		snapshotStore:  snapshotStore,
		historyStore:   historyStore,
		vesselRegistry: vesselRegistry,
		clock:          clock,
		metrics:        metrics,
		bus:            bus,
		log:            log,
		backoff:        newBackoffTable(),
	}
}

// LoadInitial reads the persisted snapshot and seeds any bridges missing
// from it (first run, or a newly-added bridge in configuration) from the
// region tables and their statistics history.
func (s *Scraper) LoadInitial(ctx context.Context) error {
	snap, err := s.snapshotStore.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if snap.Bridges == nil {
		snap.Bridges = map[string]models.Bridge{}
	}

	var available []models.AvailableBridge
	for _, region := range s.regions {
		for _, bc := range region.Bridges {
			available = append(available, models.AvailableBridge{
				ID: bc.ID, Name: bc.Name, RegionShort: region.RegionShort, Region: region.RegionName,
			})
			if _, ok := snap.Bridges[bc.ID]; ok {
				continue
			}
			history, err := s.historyStore.Load(ctx, bc.ID)
			if err != nil {
				return fmt.Errorf("load history %s: %w", bc.ID, err)
			}
			snap.Bridges[bc.ID] = models.Bridge{
				Static: models.Static{
					ID: bc.ID, Name: bc.Name, Region: region.RegionName, RegionShort: region.RegionShort,
					Coordinates: bc.Coordinates, Statistics: statistics.Compute(history),
				},
				Live: models.Live{Status: models.StatusUnknown, LastUpdated: s.clock.Now()},
			}
		}
	}
	snap.AvailableBridges = available

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
	return nil
}

// Tick scrapes every region whose backoff has elapsed, applies any
// observable change to the in-memory snapshot, and persists once if
// anything changed (spec.md §4.4 steps 1-10).
func (s *Scraper) Tick(ctx context.Context) error {
	now := s.clock.Now()

	due := make([]RegionConfig, 0, len(s.regions))
	for _, r := range s.regions {
		if s.backoff.Due(r.RegionShort, now) {
			due = append(due, r)
		}
	}
	if len(due) == 0 {
		return nil
	}

	sem := make(chan struct{}, maxConcurrentRegions)
	var wg sync.WaitGroup
	var changedMu sync.Mutex
	changedRegions := make(map[string]bool)

	for _, region := range due {
		region := region
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			changed, err := s.processRegion(ctx, region)
			if err != nil {
				s.backoff.RecordFailure(region.RegionShort, s.clock.Now())
				s.metrics.RecordScrapeResult(region.RegionShort, false)
				s.log.Warn("region scrape failed", logger.String("region", region.RegionShort), logger.Error(err))
				return
			}
			s.backoff.RecordSuccess(region.RegionShort)
			s.metrics.RecordScrapeResult(region.RegionShort, true)
			if changed {
				changedMu.Lock()
				changedRegions[region.RegionShort] = true
				changedMu.Unlock()
			}
		}()
	}
	wg.Wait()

	finishedAt := s.clock.Now()
	s.mu.Lock()
	s.lastScrape = &finishedAt
	s.lastScrapeHadChanges = len(changedRegions) > 0
	if s.lastScrapeHadChanges {
		s.lastChangeAt = &finishedAt
	}
	s.mu.Unlock()

	if len(changedRegions) == 0 {
		return nil
	}

	s.mu.Lock()
	s.snapshot.LastUpdated = finishedAt
	snap := s.snapshot.Clone()
	s.mu.Unlock()

	if err := s.snapshotStore.Save(ctx, snap); err != nil {
		s.log.Error("snapshot save failed", logger.Error(err))
		return err
	}
	for region := range changedRegions {
		s.bus.PublishBridgeChange(eventbus.BridgeSnapshotChanged{Region: region})
	}
	return nil
}

// LastScrape reports when the most recent tick finished, if any.
func (s *Scraper) LastScrape() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastScrape
}

// LastScrapeHadChanges reports whether the most recent tick committed an
// observable change.
func (s *Scraper) LastScrapeHadChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastScrapeHadChanges
}

// LastChangeAt reports when a bridge last actually changed state, as
// opposed to LastScrape which advances on every successful tick whether
// or not anything changed. The seasonal bridge-activity health check
// measures staleness against this, not against LastScrape.
func (s *Scraper) LastChangeAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastChangeAt
}

// StatisticsLastUpdated reports when the statistics job last ran.
func (s *Scraper) StatisticsLastUpdated() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statisticsLastUpdated
}

// BridgesCount reports the number of bridges currently tracked.
func (s *Scraper) BridgesCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snapshot.Bridges)
}

// processRegion fetches, parses, normalizes, and merges one region's
// bridges into the snapshot. It returns whether anything observable
// changed.
func (s *Scraper) processRegion(ctx context.Context, region RegionConfig) (bool, error) {
	raw, err := s.fetchRegion(ctx, region)
	if err != nil {
		return false, err
	}

	byName := make(map[string]BridgeConfig, len(region.Bridges))
	for _, bc := range region.Bridges {
		byName[bc.Name] = bc
	}

	now := s.clock.Now()
	changed := false

	for _, rb := range raw {
		bc, ok := byName[rb.Name]
		if !ok {
			continue // upstream bridge not in our configured set, ignore
		}
		live := buildLive(rb, now)

		bridgeChanged, err := s.applyBridge(ctx, bc, live, now)
		if err != nil {
			s.log.Warn("apply bridge failed", logger.String("bridge_id", bc.ID), logger.Error(err))
			continue
		}
		changed = changed || bridgeChanged
	}
	return changed, nil
}

// applyBridge merges one bridge's freshly-parsed live state into the
// snapshot, preserving last_updated when nothing observable changed,
// closing/opening history entries on a status transition, and filling
// the prediction/attribution fields (spec.md §4.4 steps 5-9).
func (s *Scraper) applyBridge(ctx context.Context, bc BridgeConfig, fresh models.Live, now time.Time) (bool, error) {
	s.mu.Lock()
	existing, ok := s.snapshot.Bridges[bc.ID]
	s.mu.Unlock()
	if !ok {
		existing = models.Bridge{Static: models.Static{
			ID: bc.ID, Name: bc.Name, Coordinates: bc.Coordinates,
		}}
	}

	observableChanged := existing.Live.Status != fresh.Status || !closuresEqual(existing.Live.UpcomingClosures, fresh.UpcomingClosures)
	if !observableChanged {
		fresh.LastUpdated = existing.Live.LastUpdated
	} else if existing.Live.Status != fresh.Status {
		if err := s.recordTransition(ctx, bc.ID, fresh.Status, now); err != nil {
			return false, err
		}
	}

	vessels := s.vesselRegistry.Snapshot()
	fresh.ResponsibleVesselMMSI = attribution.ResponsibleVessel(bc.Coordinates, fresh.Status, vessels)
	fresh.Predicted = prediction.Predict(fresh.Status, fresh.LastUpdated, existing.Static.Statistics, fresh.UpcomingClosures, now)

	s.mu.Lock()
	b := s.snapshot.Bridges[bc.ID]
	b.Static.ID, b.Static.Name, b.Static.Coordinates = bc.ID, bc.Name, bc.Coordinates
	b.Live = fresh
	s.snapshot.Bridges[bc.ID] = b
	s.mu.Unlock()

	return observableChanged, nil
}

// recordTransition closes the previously open history period (if any)
// and opens a new one for the incoming status.
func (s *Scraper) recordTransition(ctx context.Context, bridgeID string, to models.Status, now time.Time) error {
	entries, err := s.historyStore.Load(ctx, bridgeID)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if len(entries) > 0 && entries[0].EndTime == nil {
		elapsed := now.Sub(entries[0].StartTime).Seconds()
		entries[0].EndTime = &now
		entries[0].Duration = &elapsed
		if err := s.historyStore.Save(ctx, bridgeID, entries); err != nil {
			return fmt.Errorf("close history entry: %w", err)
		}
	}

	entry := models.HistoryEntry{
		ID:        fmt.Sprintf("%s-%d", bridgeID, now.UnixNano()),
		StartTime: now,
		Status:    to,
	}
	if _, err := s.historyStore.Prepend(ctx, bridgeID, entry); err != nil {
		return fmt.Errorf("prepend history entry: %w", err)
	}
	return nil
}

// RecomputeStatistics rebuilds every bridge's Statistics block from its
// history file, for the daily statistics job (spec.md §4.7).
func (s *Scraper) RecomputeStatistics(ctx context.Context) error {
	s.mu.Lock()
	ids := make([]string, 0, len(s.snapshot.Bridges))
	for id := range s.snapshot.Bridges {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		history, err := s.historyStore.Load(ctx, id)
		if err != nil {
			s.log.Warn("statistics: load history failed", logger.String("bridge_id", id), logger.Error(err))
			continue
		}
		stats := statistics.Compute(history)

		s.mu.Lock()
		b := s.snapshot.Bridges[id]
		b.Static.Statistics = stats
		s.snapshot.Bridges[id] = b
		s.mu.Unlock()
	}

	now := s.clock.Now()
	s.mu.Lock()
	s.snapshot.LastUpdated = now
	s.statisticsLastUpdated = &now
	snap := s.snapshot.Clone()
	s.mu.Unlock()
	return s.snapshotStore.Save(ctx, snap)
}

// Snapshot returns a safe-to-read copy of the current state.
func (s *Scraper) Snapshot() *models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.Clone()
}

// fetchRegion downloads and parses one region's endpoint, discovering
// and caching whichever JSON shape (old or new) actually decodes to a
// non-empty bridge list (spec.md §4.4 step 2).
func (s *Scraper) fetchRegion(ctx context.Context, region RegionConfig) ([]rawBridge, error) {
	client := s.clientFor(region)

	var body []byte
	var lastErr error
	for attempt := 1; attempt <= fetchRetries; attempt++ {
		var raw []byte
		err := client.SendAndParse(ctx, &pkghttp.RequestOptions{Method: pkghttp.MethodGet, URL: region.Endpoint}, &raw)
		if err == nil {
			body = raw
			lastErr = nil
			break
		}
		lastErr = err
		if attempt < fetchRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(fetchRetryDelay):
			}
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("fetch %s: %w", region.RegionShort, lastErr)
	}

	now := s.clock.Now()
	cached := s.backoff.Shape(region.RegionShort)

	bridges, shape, err := s.parseWithShapeFallback(body, cached, now)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", region.RegionShort, err)
	}
	if shape != cached {
		s.backoff.SetShape(region.RegionShort, shape)
	}
	return bridges, nil
}

func (s *Scraper) parseWithShapeFallback(body []byte, preferred endpointShape, now time.Time) ([]rawBridge, endpointShape, error) {
	shapes := []endpointShape{preferred, otherShape(preferred)}
	var lastErr error
	for _, shape := range shapes {
		bridges, err := s.parseShape(body, shape, now)
		if err != nil {
			lastErr = err
			continue
		}
		if len(bridges) > 0 {
			return bridges, shape, nil
		}
	}
	if lastErr != nil {
		return nil, preferred, lastErr
	}
	return nil, preferred, nil
}

func (s *Scraper) parseShape(body []byte, shape endpointShape, now time.Time) ([]rawBridge, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	switch shape {
	case shapeNew:
		var resp newShapeResponse
		if err := dec.Decode(&resp); err != nil {
			return nil, err
		}
		return parseNewShape(resp, s.loc, now), nil
	default:
		var resp oldShapeResponse
		if err := dec.Decode(&resp); err != nil {
			return nil, err
		}
		return parseOldShape(resp, s.loc, now), nil
	}
}

func otherShape(shape endpointShape) endpointShape {
	if shape == shapeOld {
		return shapeNew
	}
	return shapeOld
}

func (s *Scraper) clientFor(region RegionConfig) *pkghttp.Client {
	opts := []pkghttp.ClientOption{pkghttp.WithTimeout(httpTimeout)}
	if region.InsecureSkipVerifyHost != "" {
		if u, err := url.Parse(region.Endpoint); err == nil && u.Hostname() == region.InsecureSkipVerifyHost {
			opts = append(opts, pkghttp.WithInsecureSkipVerify())
		}
	}
	return pkghttp.NewClient(opts...)
}

// closuresEqual compares two closure lists for observable equality,
// ignoring nothing — every field is part of what a subscriber sees.
func closuresEqual(a, b []models.Closure) bool {
	if len(a) != len(b) {
		return false
	}
	ab, err1 := json.Marshal(a)
	bb, err2 := json.Marshal(b)
	if err1 != nil || err2 != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}
