package handler

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/safemap/safemap/internal/api/models"
	"github.com/safemap/safemap/internal/api/response"
	"github.com/safemap/safemap/internal/incident"
	"github.com/safemap/safemap/internal/provider/resilience"
	"github.com/safemap/safemap/internal/routing"
)

// OpsConfig wires the subsystems the ops endpoints report on.
type OpsConfig struct {
	Version   string
	BuildTime string

	RouteCacheStats    func() routing.CacheStats
	IncidentCacheStats func() incident.CacheStats
	Registry           *resilience.Registry
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	cfg OpsConfig
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{cfg: cfg}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.cfg.Version,
			"buildTime": h.cfg.BuildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. Reports
// degraded while any provider circuit is open.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatusOK
	if h.cfg.Registry != nil {
		for _, p := range h.cfg.Registry.GetAllHealth() {
			if !p.IsHealthy() {
				status = models.HealthStatusDegraded
				break
			}
		}
	}

	health := models.Health{
		Status: status,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - cache and provider status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())
	status := models.SystemStatus{
		Status: models.HealthStatusOK,
		Time:   now,
	}

	if h.cfg.RouteCacheStats != nil {
		stats := h.cfg.RouteCacheStats()
		status.Caches = append(status.Caches, models.CacheStatus{
			Name:         "routes",
			Provider:     stats.Provider,
			TotalEntries: stats.TotalEntries,
			FreshEntries: stats.FreshEntries,
			StaleEntries: stats.StaleEntries,
		})
	}
	if h.cfg.IncidentCacheStats != nil {
		stats := h.cfg.IncidentCacheStats()
		status.Caches = append(status.Caches, models.CacheStatus{
			Name:         "incidents",
			Provider:     stats.Provider,
			TotalEntries: stats.TotalEntries,
			FreshEntries: stats.FreshEntries,
			StaleEntries: stats.StaleEntries,
		})
	}

	if h.cfg.Registry != nil {
		for _, p := range h.cfg.Registry.GetAllHealth() {
			provider := models.ProviderStatus{
				Provider:     p.Name,
				Status:       providerStatus(p),
				CircuitState: p.CircuitState.String(),
			}
			if p.LastSuccessAt != nil {
				ts := models.Timestamp(*p.LastSuccessAt)
				provider.LastSuccessAt = &ts
			}
			if p.LastFailureAt != nil {
				ts := models.Timestamp(*p.LastFailureAt)
				provider.LastFailureAt = &ts
			}
			if p.LastError != "" {
				msg := p.LastError
				provider.Message = &msg
			}
			status.Providers = append(status.Providers, provider)

			if !p.IsHealthy() {
				status.Status = models.HealthStatusDegraded
			}
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

func providerStatus(p *resilience.ProviderHealth) models.HealthStatus {
	switch p.CircuitState {
	case gobreaker.StateOpen:
		return models.HealthStatusFail
	case gobreaker.StateHalfOpen:
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusOK
	}
}
