package models

// Health represents the health status of the service.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    Timestamp              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SystemStatus represents the overall system status.
type SystemStatus struct {
	Status    HealthStatus     `json:"status"`
	Time      Timestamp        `json:"time"`
	Caches    []CacheStatus    `json:"caches"`
	Providers []ProviderStatus `json:"providers"`
}

// CacheStatus reports one service cache for the ops endpoint.
type CacheStatus struct {
	Name         string `json:"name"`
	Provider     string `json:"provider"`
	TotalEntries int    `json:"totalEntries"`
	FreshEntries int    `json:"freshEntries"`
	StaleEntries int    `json:"staleEntries"`
}

// ProviderStatus represents the status of an external provider.
type ProviderStatus struct {
	Provider      string       `json:"provider"`
	Status        HealthStatus `json:"status"`
	CircuitState  string       `json:"circuitState"`
	LastSuccessAt *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt *Timestamp   `json:"lastFailureAt,omitempty"`
	Message       *string      `json:"message,omitempty"`
}
