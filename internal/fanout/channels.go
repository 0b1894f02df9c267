// Package fanout implements the Fanout Gateway: long-lived WebSocket
// connections with per-client subscription sets over the "bridges" and
// "boats" channels and their region sub-channels (spec.md §4.8), built
// on the same gorilla/websocket read/write-pump split used elsewhere in
// this codebase for a client of an upstream feed, here turned around to
// serve as the server side of the connection instead.
package fanout

import "strings"

// validChannels is the closed subscription-set vocabulary (spec.md §3
// "Subscription state"). Anything else is silently dropped.
var validChannels = map[string]bool{
	"bridges":        true,
	"bridges:sct":    true,
	"bridges:pc":     true,
	"bridges:mss":    true,
	"bridges:k":      true,
	"bridges:sbs":    true,
	"boats":          true,
	"boats:welland":  true,
	"boats:montreal": true,
}

// sanitizeChannels drops unknown channel names and de-duplicates,
// preserving the caller's order for the "subscribed" acknowledgement.
func sanitizeChannels(requested []string) []string {
	out := make([]string, 0, len(requested))
	seen := make(map[string]bool, len(requested))
	for _, c := range requested {
		if !validChannels[c] || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// wantsBridges reports whether a subscription set should receive a
// bridges push for the given region_short (lowercased), honoring that
// the bare "bridges" channel implies every region.
func wantsBridges(channels map[string]bool, regionShort string) bool {
	if channels["bridges"] {
		return true
	}
	return channels["bridges:"+strings.ToLower(regionShort)]
}

// wantsBoats reports whether a subscription set should receive a boats
// push for the given region, honoring that "boats" implies every region.
func wantsBoats(channels map[string]bool, region string) bool {
	if channels["boats"] {
		return true
	}
	return channels["boats:"+region]
}
