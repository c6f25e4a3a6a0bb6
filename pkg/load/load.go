// Package load converts a node's utilization into a single 0-9 digit
// and maintains the rolling per-node status string.
package load

import (
	"math"
	"strconv"

	"nodepanel/pkg/model"
)

// OfflineLoad is the sentinel digit for a node that reported itself
// offline; distinct from 0, which would read as "idle but online".
const OfflineLoad = 1

// Each utilization dimension contributes at most this many points.
const dimensionWeight = 3.0

// Encode computes the load digit for one report. Offline reports map to
// OfflineLoad. Otherwise bandwidth/tier, traffic/max and connections/max
// each contribute up to 3 points; the sum is ceiling-rounded and clamped
// into [2,9]. A zero capacity excludes that dimension rather than
// treating it as saturated.
func Encode(n model.Node, bandwidth, traffic float64, connections int, online bool) int {
	if !online {
		return OfflineLoad
	}
	sum := ratio(bandwidth, n.TierBandwidth) +
		ratio(traffic, n.MaxTraffic) +
		ratio(float64(connections), float64(n.MaxConnections))
	l := int(math.Ceil(sum))
	if l < 2 {
		return 2
	}
	if l > 9 {
		return 9
	}
	return l
}

func ratio(used, capacity float64) float64 {
	if capacity <= 0 {
		return 0
	}
	return used / capacity * dimensionWeight
}

// AppendStatus appends one load digit to the rolling status string,
// evicting from the front once the window cap is exceeded.
func AppendStatus(history string, digit int) string {
	s := history + strconv.Itoa(digit)
	if len(s) > model.RecentStatusCap {
		s = s[len(s)-model.RecentStatusCap:]
	}
	return s
}
