package api

// ReportRequest is the body nodes POST on every status report.
// Traffic is the cumulative total since the node's last reset.
type ReportRequest struct {
	NodeName         string   `json:"node_name" validate:"required"`
	Email            string   `json:"email" validate:"required,email"`
	Token            string   `json:"token" validate:"required"`
	CurrentBandwidth *float64 `json:"current_bandwidth" validate:"required,gte=0"`
	ReportedTraffic  *float64 `json:"reported_traffic" validate:"required,gte=0"`
	ConnectionCount  *int     `json:"connection_count" validate:"required,gte=0"`
	Status           string   `json:"status" validate:"required,oneof=online offline"`
	TierBandwidth    *float64 `json:"tier_bandwidth" validate:"omitempty,gte=0"`
}

type CreateNodeRequest struct {
	Name           string  `json:"name"`
	Region         string  `json:"region"`
	IsRelay        bool    `json:"isRelay"`
	MaxBandwidth   float64 `json:"maxBandwidth"`
	MaxConnections int     `json:"maxConnections"`
	MaxTraffic     float64 `json:"maxTraffic"`
	TierBandwidth  float64 `json:"tierBandwidth"`
	ResetCycle     int     `json:"resetCycle"`
	ValidDays      int     `json:"validDays"`
}

type CorrectionRequest struct {
	CorrectionTraffic float64 `json:"correctionTraffic"`
}

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}
