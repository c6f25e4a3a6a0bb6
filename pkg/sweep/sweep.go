// Package sweep implements the periodic reconciliation job: demote
// silent nodes to offline, then append one aggregate sample to each
// history series.
package sweep

import (
	"time"

	"nodepanel/pkg/history"
	"nodepanel/pkg/lock"
	"nodepanel/pkg/logger"
	"nodepanel/pkg/model"
	"nodepanel/pkg/store"
)

// StaleAfter is how long a node may stay silent before it is assumed to
// have dropped all connections.
const StaleAfter = 10 * time.Minute

// Interval is the sweep cadence, matching the history granularity.
const Interval = 10 * time.Minute

// Snapshot is one aggregate sample across all nodes.
type Snapshot struct {
	TotalNodes    int       `json:"totalNodes"`
	OnlineNodes   int       `json:"onlineNodes"`
	Connections   int       `json:"connections"`
	Bandwidth     float64   `json:"bandwidth"`
	TierBandwidth float64   `json:"tierBandwidth"`
	At            time.Time `json:"at"`
}

type Sweeper struct {
	Store store.Store
	Lock  lock.Locker
	Log   *logger.Logger
	Now   func() time.Time

	// OnSnapshot, when set, receives the aggregate after each
	// successful run (used to feed the dashboard websocket).
	OnSnapshot func(Snapshot)
}

func NewSweeper(st store.Store, lk lock.Locker, log *logger.Logger) *Sweeper {
	return &Sweeper{Store: st, Lock: lk, Log: log, Now: time.Now}
}

// Run executes one sweep. Errors abort the run; the next scheduled run
// simply catches a larger backlog of stale nodes.
func (s *Sweeper) Run() error {
	release, ok := s.Lock.TryAcquire()
	if !ok {
		s.Log.Infow("sweep skipped; previous run still holds the lock")
		return nil
	}
	defer release()

	now := s.Now().UTC()
	if err := s.demoteStale(now); err != nil {
		s.Log.Errorw("sweep: staleness pass failed", "err", err)
		return err
	}
	snap, err := s.aggregate(now)
	if err != nil {
		s.Log.Errorw("sweep: aggregate pass failed", "err", err)
		return err
	}
	if err := s.appendHistory(snap); err != nil {
		s.Log.Errorw("sweep: history append failed", "err", err)
		return err
	}
	s.Log.Infow("sweep complete",
		"total", snap.TotalNodes, "online", snap.OnlineNodes,
		"connections", snap.Connections)
	if s.OnSnapshot != nil {
		s.OnSnapshot(snap)
	}
	return nil
}

// demoteStale marks silent online nodes offline and zeroes their live
// counters.
func (s *Sweeper) demoteStale(now time.Time) error {
	nodes, err := s.Store.ListNodes()
	if err != nil {
		return err
	}
	cutoff := now.Add(-StaleAfter)
	for _, n := range nodes {
		if n.Status != model.StatusOnline || !n.LastReportAt.Before(cutoff) {
			continue
		}
		n.Status = model.StatusOffline
		n.ConnectionCount = 0
		n.CurrentBandwidth = 0
		if err := s.Store.SaveNode(n); err != nil {
			return err
		}
		s.Log.Infow("node marked offline", "node", n.Name, "owner", n.UserEmail,
			"lastReport", n.LastReportAt)
	}
	return nil
}

// aggregate totals node metrics. Runs after demoteStale so offline
// demotions are reflected in the counts.
func (s *Sweeper) aggregate(now time.Time) (Snapshot, error) {
	nodes, err := s.Store.ListNodes()
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{TotalNodes: len(nodes), At: now}
	for _, n := range nodes {
		if n.Status == model.StatusOnline {
			snap.OnlineNodes++
		}
		snap.Connections += n.ConnectionCount
		snap.Bandwidth += n.CurrentBandwidth
		snap.TierBandwidth += n.TierBandwidth
	}
	return snap, nil
}

func (s *Sweeper) appendHistory(snap Snapshot) error {
	values := map[string]float64{
		model.SettingOnlineNodes:   float64(snap.OnlineNodes),
		model.SettingConnections:   float64(snap.Connections),
		model.SettingBandwidth:     snap.Bandwidth,
		model.SettingTierBandwidth: snap.TierBandwidth,
	}
	for _, key := range model.SeriesKeys() {
		raw, _, err := s.Store.GetSetting(key)
		if err != nil {
			return err
		}
		series, err := history.Unmarshal(raw)
		if err != nil {
			// A corrupt row should not wedge the sweep forever.
			s.Log.Warnw("resetting unreadable series", "key", key, "err", err)
			series = &history.Series{}
		}
		series.Append(values[key], snap.At)
		out, err := series.Marshal()
		if err != nil {
			return err
		}
		if err := s.Store.PutSetting(key, out); err != nil {
			return err
		}
	}
	return s.Store.PutSetting(model.SettingStatsUpdated, snap.At.Format(time.RFC3339))
}
