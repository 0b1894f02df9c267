package ais

import (
	"context"
	"fmt"
	"time"

	"seawaywatch/internal/domain/models"
	"seawaywatch/internal/domain/repository"
	"seawaywatch/internal/vessel"
	pkghttp "seawaywatch/pkg/http"
	"seawaywatch/pkg/logger"
)

// Backoff parameters for the AISHub poll path (spec.md §4.3, §7): starts
// at the external rate limit, doubles on each consecutive failure, caps
// at 300s, and resets to base on success.
const (
	pollBaseBackoff = 61 * time.Second
	pollMaxBackoff  = 300 * time.Second
)

// aishubRecord is one row of the AISHub bounding-box response.
type aishubRecord struct {
	MMSI        int      `json:"MMSI"`
	Lat         float64  `json:"LATITUDE"`
	Lon         float64  `json:"LONGITUDE"`
	SpeedKnots  *float64 `json:"SOG"`
	Course      *float64 `json:"COG"`
	Heading     *float64 `json:"HEADING"`
	Name        *string  `json:"NAME"`
	TypeCode    *int     `json:"TYPE"`
	Destination *string  `json:"DESTINATION"`
	Length      *float64 `json:"LENGTH"`
	Width       *float64 `json:"WIDTH"`
}

// Poller issues one bounding-box query per tick against the AISHub API
// and submits returned records through the registry's merge path
// (spec.md §4.3 HTTP poller, §7 AIS HTTP failure handling).
type Poller struct {
	apiKey   string
	baseURL  string
	client   *pkghttp.Client
	registry repository.VesselRegistry
	clock    repository.Clock
	metrics  repository.Metrics
	log      *logger.Logger

	backoff time.Duration
}

// NewPoller builds a Poller. If apiKey is empty the caller should not
// start the poll loop at all (spec.md §5: "if unset, HTTP poller
// disabled").
func NewPoller(apiKey, baseURL string, registry repository.VesselRegistry, clock repository.Clock, metrics repository.Metrics, log *logger.Logger) *Poller {
	return &Poller{
		apiKey:   apiKey,
		baseURL:  baseURL,
		client:   pkghttp.NewClient(pkghttp.WithTimeout(10 * time.Second)),
		registry: registry,
		clock:    clock,
		metrics:  metrics,
		log:      log,
		backoff:  pollBaseBackoff,
	}
}

// Run polls on the base-61s cadence (extended by any active backoff)
// until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			wait := p.tick(ctx)
			timer.Reset(wait)
		}
	}
}

// tick performs one poll attempt and returns how long to wait before the
// next one.
func (p *Poller) tick(ctx context.Context) time.Duration {
	latMin, latMax, lonMin, lonMax := vessel.CombinedBounds()

	var records []aishubRecord
	err := p.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    p.baseURL,
		QueryParams: map[string][]string{
			"username": {p.apiKey},
			"format":   {"1"},
			"output":   {"json"},
			"compress": {"0"},
			"latmin":   {fmt.Sprintf("%.4f", latMin)},
			"latmax":   {fmt.Sprintf("%.4f", latMax)},
			"lonmin":   {fmt.Sprintf("%.4f", lonMin)},
			"lonmax":   {fmt.Sprintf("%.4f", lonMax)},
		},
	}, &records)

	if err != nil {
		return p.onFailure(err)
	}
	p.onSuccess(records)
	return pollBaseBackoff
}

func (p *Poller) onFailure(err error) time.Duration {
	p.log.Warn("aishub poll failed", logger.Error(err))
	if p.metrics != nil {
		p.metrics.RecordScrapeResult("aishub", false)
	}
	p.backoff *= 2
	if p.backoff > pollMaxBackoff {
		p.backoff = pollMaxBackoff
	}
	return p.backoff
}

func (p *Poller) onSuccess(records []aishubRecord) {
	p.backoff = pollBaseBackoff
	if p.metrics != nil {
		p.metrics.RecordScrapeResult("aishub", true)
	}

	now := p.clock.Now()
	for _, rec := range records {
		if !vessel.ValidCoordinate(rec.Lat, rec.Lon) {
			continue
		}
		update := models.Update{
			MMSI:        rec.MMSI,
			Position:    &models.Position{Lat: rec.Lat, Lon: rec.Lon},
			Name:        rec.Name,
			TypeCode:    rec.TypeCode,
			Heading:     rec.Heading,
			Course:      rec.Course,
			SpeedKnots:  rec.SpeedKnots,
			Destination: rec.Destination,
			Source:      models.SourceHTTP,
			Now:         now,
		}
		if rec.Length != nil && rec.Width != nil {
			update.Dimensions = &models.Dimensions{Length: *rec.Length, Width: *rec.Width}
		}
		if err := p.registry.Merge(update); err != nil {
			p.log.Debug("aishub record rejected", logger.String("reason", err.Error()))
		}
	}
}

