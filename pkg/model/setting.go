package model

import "time"

// Setting keys used by the sweep job. The series values are JSON
// arrays of history points; StatsUpdatedAt is an RFC3339 timestamp.
const (
	SettingOnlineNodes   = "stats_online_nodes"
	SettingConnections   = "stats_connections"
	SettingBandwidth     = "stats_bandwidth"
	SettingTierBandwidth = "stats_tier_bandwidth"
	SettingStatsUpdated  = "stats_updated_at"
)

// Setting is a key/value row holding persisted configuration and the
// serialized aggregate time series.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:64;column:key" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SeriesKeys lists the four aggregate series in persistence order.
func SeriesKeys() []string {
	return []string{SettingOnlineNodes, SettingConnections, SettingBandwidth, SettingTierBandwidth}
}
