package model

import "time"

// Node statuses as stored in the status column.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// RecentStatusCap bounds the rolling load-digit history: 30 days of
// 10-minute samples, one ASCII digit per sample.
const RecentStatusCap = 4320

// Node is one reporting endpoint owned by a user.
type Node struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserEmail string    `gorm:"size:128;index:idx_owner_name,unique" json:"userEmail"`
	Name      string    `gorm:"size:64;index:idx_owner_name,unique" json:"name"`
	Region    string    `gorm:"size:32;index" json:"region,omitempty"`
	IsRelay   bool      `json:"isRelay"`
	CreatedAt time.Time `json:"createdAt"`

	// Capacity. TierBandwidth is the allocated ceiling, adjustable via
	// reporting; MaxBandwidth is the hard cap.
	MaxBandwidth   float64 `json:"maxBandwidth"`
	MaxConnections int     `json:"maxConnections"`
	MaxTraffic     float64 `json:"maxTraffic"`
	TierBandwidth  float64 `json:"tierBandwidth"`

	// Live metrics, overwritten by each accepted report.
	CurrentBandwidth  float64 `json:"currentBandwidth"`
	ConnectionCount   int     `json:"connectionCount"`
	UsedTraffic       float64 `json:"usedTraffic"`
	CorrectionTraffic float64 `json:"correctionTraffic"`

	// Lifecycle. ResetCycle is the day-of-month the traffic baseline
	// rolls over; 0 means the last day of the month.
	ValidUntil   time.Time `json:"validUntil"`
	LastReportAt time.Time `json:"lastReportAt"`
	ResetDate    time.Time `json:"resetDate"`
	ResetCycle   int       `json:"resetCycle"`

	Status       string `gorm:"size:16;default:offline" json:"status"`
	RecentStatus string `gorm:"type:text" json:"recentStatus"`

	// ReportToken must accompany every report; regenerating it
	// invalidates the previous value immediately.
	ReportToken string `gorm:"size:64" json:"-"`
}

// DisplayTraffic is the operator-facing counter: reported usage minus
// any administrative correction, floored at zero.
func (n Node) DisplayTraffic() float64 {
	t := n.UsedTraffic - n.CorrectionTraffic
	if t < 0 {
		return 0
	}
	return t
}

// Expired reports whether the node's lease has run out.
func (n Node) Expired(now time.Time) bool {
	return !n.ValidUntil.IsZero() && now.After(n.ValidUntil)
}
