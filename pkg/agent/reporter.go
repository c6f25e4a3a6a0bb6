// Package agent is the node-side reporter: it samples local network
// counters, journals the cumulative traffic total, and posts periodic
// status reports to the panel.
package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"nodepanel/pkg/logger"
)

// Config identifies this node to the panel.
type Config struct {
	Server    string // base URL, e.g. https://panel.example.com
	NodeName  string
	Email     string
	Token     string
	Interface string // interface whose counters are sampled
	Interval  time.Duration
}

type reportBody struct {
	NodeName         string   `json:"node_name"`
	Email            string   `json:"email"`
	Token            string   `json:"token"`
	CurrentBandwidth float64  `json:"current_bandwidth"`
	ReportedTraffic  float64  `json:"reported_traffic"`
	ConnectionCount  int      `json:"connection_count"`
	Status           string   `json:"status"`
	TierBandwidth    *float64 `json:"tier_bandwidth,omitempty"`
}

type reportResult struct {
	UsedTraffic float64   `json:"used_traffic"`
	MaxTraffic  float64   `json:"max_traffic"`
	ResetDate   time.Time `json:"reset_date"`
}

type Reporter struct {
	cfg       Config
	client    *http.Client
	journal   *Journal
	log       *logger.Logger
	lastBytes uint64
	lastAt    time.Time
}

func NewReporter(cfg Config, journal *Journal, log *logger.Logger) *Reporter {
	return &Reporter{
		cfg:     cfg,
		client:  &http.Client{Timeout: 10 * time.Second},
		journal: journal,
		log:     log,
	}
}

// Run samples and reports until stop is closed. Failures are logged and
// retried on the next tick.
func (r *Reporter) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()
	for {
		if err := r.reportOnce(); err != nil {
			r.log.Warnw("report failed", "err", err)
		}
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

func (r *Reporter) reportOnce() error {
	now := time.Now()
	sampled, err := readInterfaceBytes(r.cfg.Interface)
	if err != nil {
		return fmt.Errorf("sample %s: %w", r.cfg.Interface, err)
	}

	var delta float64
	var bandwidth float64
	if !r.lastAt.IsZero() && sampled >= r.lastBytes {
		delta = float64(sampled - r.lastBytes)
		if secs := now.Sub(r.lastAt).Seconds(); secs > 0 {
			bandwidth = delta / secs
		}
	}
	r.lastBytes = sampled
	r.lastAt = now

	total, err := r.journal.AddTraffic(delta)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}

	result, err := r.post(reportBody{
		NodeName:         r.cfg.NodeName,
		Email:            r.cfg.Email,
		Token:            r.cfg.Token,
		CurrentBandwidth: bandwidth,
		ReportedTraffic:  total,
		ConnectionCount:  countEstablished(),
		Status:           "online",
	})
	if err != nil {
		return err
	}

	// Self-correct: if the server rolled the counter over (or knows a
	// lower baseline), adopt its value so the next report agrees.
	if result.UsedTraffic < total {
		if err := r.journal.SetTraffic(result.UsedTraffic); err != nil {
			return fmt.Errorf("journal rebaseline: %w", err)
		}
		r.log.Infow("rebaselined traffic counter",
			"local", total, "server", result.UsedTraffic, "resetDate", result.ResetDate)
	}
	return nil
}

func (r *Reporter) post(body reportBody) (reportResult, error) {
	payload, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPost, r.cfg.Server+"/api/v1/node/report", bytes.NewReader(payload))
	if err != nil {
		return reportResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return reportResult{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return reportResult{}, fmt.Errorf("report rejected: %s", resp.Status)
	}
	var result reportResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return reportResult{}, err
	}
	return result, nil
}
