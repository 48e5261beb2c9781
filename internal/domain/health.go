package domain

// ============================================================
// Health API responses
// ============================================================

// HealthStatus is returned by GET /readyz.
type HealthStatus struct {
	Status       string             `json:"status"` // ready, unavailable
	Dependencies []DependencyHealth `json:"dependencies"`
}

// DependencyHealth is the outcome of one readiness check.
type DependencyHealth struct {
	Name      string `json:"name"`
	Status    string `json:"status"` // up, down
	LatencyMs int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}
