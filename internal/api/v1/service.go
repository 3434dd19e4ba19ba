package v1

import "time"

// ServiceInfo is returned by GET /.
type ServiceInfo struct {
	Message   string   `json:"message"`
	Version   string   `json:"version"`
	Backend   string   `json:"backend"`
	Endpoints []string `json:"endpoints"`
}

// HealthResponse is returned by GET /health. Cache is "ready" or "building".
type HealthResponse struct {
	Status     string          `json:"status"`
	Timestamp  time.Time       `json:"timestamp"`
	Cache      string          `json:"cache"`
	Generation *GenerationInfo `json:"generation,omitempty"`
}

// GenerationInfo describes the serving cache generation.
type GenerationInfo struct {
	ID              string    `json:"id"`
	Backend         string    `json:"backend"`
	BuiltAt         time.Time `json:"built_at"`
	BuildDurationMS int64     `json:"build_duration_ms"`
	InventoryRows   int       `json:"inventory_rows"`
	SalesRows       int       `json:"sales_rows"`
	Snapshots       int       `json:"snapshots"`
	JoinMissedRows  int64     `json:"join_missed_rows"`
}
