package dto

// HealthResponse is the body of /health and /ready.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// Checks is keyed by component; only /ready fills it.
	Checks map[string]HealthCheckResult `json:"checks,omitempty"`
}

// HealthCheckResult is the state of one dependency.
type HealthCheckResult struct {
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	ResponseTime int64  `json:"response_time_ms,omitempty"`
}
