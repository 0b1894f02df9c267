package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"seawaywatch/internal/domain/models"
)

// rawClosure is an upstream closure before status normalization, used as
// the intermediate shape both endpoint parsers build (grounded in
// _examples/original_source/scraper.py's per-bridge 'upcoming_closures'
// list).
type rawClosure struct {
	Type    models.ClosureType
	Time    time.Time
	Longer  bool
	EndTime *time.Time
}

// rawBridge is one bridge's parsed-but-not-yet-normalized live state.
type rawBridge struct {
	Name      string
	RawStatus string
	Closures  []rawClosure
}

// oldShapeResponse is the SCT/PC/MSS/K endpoint shape.
type oldShapeResponse struct {
	BridgeModelList []struct {
		Address    string `json:"address"`
		Status     string `json:"status"`
		Vessel1ETA string `json:"vessel1ETA"`
	} `json:"bridgeModelList"`
	BridgeClosureList []struct {
		BridgeAddress  string `json:"bridgeAddress"`
		ClosureP       string `json:"closureP"`
		ContinuousHour string `json:"continuousHour"`
	} `json:"bridgeClosureList"`
}

// newShapeResponse is the SBS endpoint shape.
type newShapeResponse struct {
	BridgeStatusList []struct {
		Address        string `json:"address"`
		Status         string `json:"status"`
		Status3        string `json:"status3"`
		BridgeLiftList []struct {
			ETA  string `json:"eta"`
			Type string `json:"type"`
		} `json:"bridgeLiftList"`
		BridgeMaintenanceList []struct {
			CloseDateFr string `json:"closeDateFr"`
			CloseDateTo string `json:"closeDateTo"`
		} `json:"bridgeMaintenanceList"`
	} `json:"bridgeStatusList"`
}

var closurePeriodPattern = regexp.MustCompile(
	`([A-Za-z]{3} \d{1,2}, \d{4}) - ([A-Za-z]{3} \d{1,2}, \d{4}), (\d{2}:\d{2}) - (\d{2}:\d{2})`,
)
var timeOnlyPattern = regexp.MustCompile(`^(\d{2}:\d{2})(\*)?`)

// parseDate accepts the handful of upstream date/time shapes (ISO
// timestamp, bare "HH:MM" with an optional trailing "*" meaning "longer
// closure", or "YYYY-MM-DD HH:MM:SS") and returns the parsed instant and
// the longer flag. Grounded in scraper.py's parse_date.
func parseDate(raw string, loc *time.Location, now time.Time) (time.Time, bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "----" || strings.Contains(raw, "0001-01-01") {
		return time.Time{}, false, false
	}

	if strings.Contains(raw, "T") {
		clean := strings.ReplaceAll(raw, "Z", "+00:00")
		if t, err := time.Parse(time.RFC3339, clean); err == nil {
			return t.In(loc), false, true
		}
	}

	if m := timeOnlyPattern.FindStringSubmatch(raw); m != nil {
		clock, err := time.ParseInLocation("15:04", m[1], loc)
		if err == nil {
			t := time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
			return t, m[2] == "*", true
		}
	}

	if t, err := time.ParseInLocation("2006-01-02 15:04:05", raw, loc); err == nil {
		return t, false, true
	}

	return time.Time{}, false, false
}

// parseOldShape parses the SCT/PC/MSS/K endpoint shape.
func parseOldShape(resp oldShapeResponse, loc *time.Location, now time.Time) []rawBridge {
	bridges := make([]rawBridge, 0, len(resp.BridgeModelList))
	byName := make(map[string]*rawBridge, len(resp.BridgeModelList))

	for _, m := range resp.BridgeModelList {
		rb := rawBridge{Name: strings.TrimSpace(m.Address), RawStatus: strings.TrimSpace(m.Status)}
		if eta := strings.TrimSpace(m.Vessel1ETA); eta != "" && eta != "----" {
			if t, longer, ok := parseDate(eta, loc, now); ok {
				rb.Closures = append(rb.Closures, rawClosure{Type: models.ClosureNextArrival, Time: t, Longer: longer})
			}
		}
		bridges = append(bridges, rb)
	}
	for i := range bridges {
		byName[bridges[i].Name] = &bridges[i]
	}

	for _, c := range resp.BridgeClosureList {
		name := strings.TrimSpace(c.BridgeAddress)
		bridge, ok := byName[name]
		if !ok || c.ClosureP == "" {
			continue
		}
		appendConstructionClosures(bridge, c.ClosureP, c.ContinuousHour != "N", loc, now)
	}

	return bridges
}

func appendConstructionClosures(bridge *rawBridge, period string, continuous bool, loc *time.Location, now time.Time) {
	m := closurePeriodPattern.FindStringSubmatch(period)
	if m == nil {
		return
	}
	startDate, err1 := time.ParseInLocation("Jan 2, 2006", m[1], loc)
	endDate, err2 := time.ParseInLocation("Jan 2, 2006", m[2], loc)
	startHour, startMin, err3 := splitClock(m[3])
	endHour, endMin, err4 := splitClock(m[4])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return
	}

	if continuous {
		start := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), startHour, startMin, 0, 0, loc)
		end := time.Date(endDate.Year(), endDate.Month(), endDate.Day(), endHour, endMin, 0, 0, loc)
		if end.After(now) {
			bridge.Closures = append(bridge.Closures, rawClosure{Type: models.ClosureConstruction, Time: start, EndTime: &end})
		}
		return
	}

	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		dayStart := time.Date(d.Year(), d.Month(), d.Day(), startHour, startMin, 0, 0, loc)
		dayEnd := time.Date(d.Year(), d.Month(), d.Day(), endHour, endMin, 0, 0, loc)
		if dayEnd.After(now) {
			end := dayEnd
			bridge.Closures = append(bridge.Closures, rawClosure{Type: models.ClosureConstruction, Time: dayStart, EndTime: &end})
		}
	}
}

func splitClock(hm string) (hour, min int, err error) {
	parts := strings.Split(hm, ":")
	if len(parts) != 2 {
		return 0, 0, strconv.ErrSyntax
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	min, err = strconv.Atoi(parts[1])
	return hour, min, err
}

// parseNewShape parses the SBS endpoint shape.
func parseNewShape(resp newShapeResponse, loc *time.Location, now time.Time) []rawBridge {
	bridges := make([]rawBridge, 0, len(resp.BridgeStatusList))

	for _, b := range resp.BridgeStatusList {
		status := strings.TrimSpace(b.Status3)
		if status == "" {
			status = strings.TrimSpace(b.Status)
		}
		rb := rawBridge{Name: strings.TrimSpace(b.Address), RawStatus: status}

		for _, lift := range b.BridgeLiftList {
			eta := strings.TrimSpace(lift.ETA)
			if eta == "" {
				continue
			}
			t, _, ok := parseDate(eta, loc, now)
			if !ok || !t.After(now) {
				continue
			}
			closureType := models.ClosureCommercialVessel
			if lift.Type == "a" {
				closureType = models.ClosureNextArrival
			}
			rb.Closures = append(rb.Closures, rawClosure{Type: closureType, Time: t})
		}

		for _, maint := range b.BridgeMaintenanceList {
			if maint.CloseDateFr == "" {
				continue
			}
			start, _, ok := parseDate(maint.CloseDateFr, loc, now)
			if !ok {
				continue
			}
			var endPtr *time.Time
			if maint.CloseDateTo != "" {
				if end, _, ok := parseDate(maint.CloseDateTo, loc, now); ok {
					endPtr = &end
				}
			}
			if endPtr != nil && !endPtr.After(now) {
				continue
			}
			rb.Closures = append(rb.Closures, rawClosure{Type: models.ClosureConstruction, Time: start, EndTime: endPtr})
		}

		bridges = append(bridges, rb)
	}

	return bridges
}
