// Package discovery selects candidate nodes for clients: an optional
// region filter, a priority mode, and a relay-only flag, returning at
// most three candidates.
package discovery

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"nodepanel/pkg/model"
)

type Priority string

const (
	PriorityNone      Priority = ""
	PriorityTraffic   Priority = "traffic"
	PriorityBandwidth Priority = "bandwidth"
	PriorityLatency   Priority = "latency"
)

// MaxCandidates caps every discovery response.
const MaxCandidates = 3

// Pick filters online nodes and returns up to three candidates. With no
// priority the filtered set is shuffled; otherwise nodes are ranked by
// the priority-specific score, highest first.
func Pick(nodes []model.Node, region string, relayOnly bool, p Priority, now time.Time) []model.Node {
	var pool []model.Node
	for _, n := range nodes {
		if n.Status != model.StatusOnline {
			continue
		}
		if region != "" && n.Region != region {
			continue
		}
		if relayOnly && !n.IsRelay {
			continue
		}
		pool = append(pool, n)
	}

	if p == PriorityNone {
		rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	} else {
		sort.SliceStable(pool, func(i, j int) bool {
			return score(pool[i], p, now) > score(pool[j], p, now)
		})
	}

	if len(pool) > MaxCandidates {
		pool = pool[:MaxCandidates]
	}
	return pool
}

func score(n model.Node, p Priority, now time.Time) float64 {
	switch p {
	case PriorityTraffic:
		// Remaining traffic per day until reset, per active connection.
		remaining := n.MaxTraffic - n.UsedTraffic
		if remaining < 0 {
			remaining = 0
		}
		return remaining / daysUntil(now, n.ResetDate) / float64(n.ConnectionCount+1)
	case PriorityBandwidth:
		return n.TierBandwidth / float64(n.ConnectionCount+1)
	case PriorityLatency:
		// Spare connection capacity as a latency proxy.
		return float64(n.MaxConnections - n.ConnectionCount)
	default:
		return 0
	}
}

func daysUntil(now, until time.Time) float64 {
	d := math.Ceil(until.Sub(now).Hours() / 24)
	if d < 1 {
		return 1
	}
	return d
}
