package scraper

import "seawaywatch/internal/domain/models"

// RegionConfig describes one configured bridge region: its upstream
// bridge-status endpoint, the bridges it hosts, and their static
// coordinates (grounded in _examples/original_source/config.py's
// BRIDGE_URLS/BRIDGE_COORDINATES tables).
type RegionConfig struct {
	RegionShort string
	RegionName  string
	Endpoint    string
	// InsecureSkipVerifyHost, if non-empty and equal to Endpoint's host,
	// disables TLS verification for this region only (spec.md §4.4: "TLS
	// verification may be disabled for a specifically named upstream").
	InsecureSkipVerifyHost string
	Bridges                []BridgeConfig
}

// BridgeConfig is one bridge's static identity within a region.
type BridgeConfig struct {
	ID          string
	Name        string
	Coordinates models.Coordinates
}
