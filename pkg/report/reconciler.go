// Package report implements the node status report reconciler: token
// validation, monthly traffic rollover, load encoding and persistence
// of the node's live metrics.
package report

import (
	"crypto/subtle"
	"time"

	"nodepanel/pkg/apperr"
	"nodepanel/pkg/cycle"
	"nodepanel/pkg/load"
	"nodepanel/pkg/model"
	"nodepanel/pkg/store"
)

// Params is one node status report. Traffic is the cumulative total the
// node tracks itself since its last reset, not a delta.
type Params struct {
	NodeName      string
	Email         string
	Token         string
	Bandwidth     float64
	Traffic       float64
	Connections   int
	Online        bool
	TierBandwidth *float64
}

// Result is returned to the reporting node so it can self-correct drift.
type Result struct {
	UsedTraffic float64   `json:"used_traffic"`
	MaxTraffic  float64   `json:"max_traffic"`
	ResetDate   time.Time `json:"reset_date"`
}

type Reconciler struct {
	Store  store.Store
	Policy TrafficPolicy
	Now    func() time.Time
}

func NewReconciler(st store.Store) *Reconciler {
	return &Reconciler{Store: st, Policy: AcceptReported{}, Now: time.Now}
}

// Process validates and applies one report. The node row is only
// mutated after the token and lease checks pass; a rejected report
// leaves it untouched.
func (r *Reconciler) Process(p Params) (Result, error) {
	node, ok, err := r.Store.GetNodeByOwner(p.NodeName, p.Email)
	if err != nil {
		return Result{}, apperr.NewInternal("node lookup failed", err)
	}
	if !ok {
		return Result{}, apperr.NewNotFound("node not found")
	}
	if subtle.ConstantTimeCompare([]byte(p.Token), []byte(node.ReportToken)) != 1 {
		return Result{}, apperr.NewForbidden("report token mismatch")
	}
	now := r.Now().UTC()
	if node.Expired(now) {
		return Result{}, apperr.NewForbidden("node expired")
	}

	if !now.Before(node.ResetDate) {
		// Rollover: the node's own counter is not reset by this
		// server-side event, so the reported total becomes the new
		// baseline rather than zero.
		node.UsedTraffic = p.Traffic
		node.ResetDate = cycle.RolloverReset(now, node.ResetCycle)
	} else {
		node.UsedTraffic = r.Policy.Apply(node.UsedTraffic, p.Traffic)
	}

	if p.TierBandwidth != nil {
		node.TierBandwidth = *p.TierBandwidth
	}

	digit := load.Encode(node, p.Bandwidth, node.UsedTraffic, p.Connections, p.Online)
	node.RecentStatus = load.AppendStatus(node.RecentStatus, digit)

	node.CurrentBandwidth = p.Bandwidth
	node.ConnectionCount = p.Connections
	if p.Online {
		node.Status = model.StatusOnline
	} else {
		node.Status = model.StatusOffline
	}
	node.LastReportAt = now

	if err := r.Store.SaveNode(node); err != nil {
		return Result{}, apperr.NewInternal("node update failed", err)
	}
	return Result{
		UsedTraffic: node.UsedTraffic,
		MaxTraffic:  node.MaxTraffic,
		ResetDate:   node.ResetDate,
	}, nil
}
