package incident

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/safemap/safemap/internal/geo"
)

// ServiceConfig holds configuration for the incident service.
type ServiceConfig struct {
	// Provider is the incident data provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long to cache incident responses (default: 5 minutes).
	CacheTTL time.Duration

	// CacheGridSize is the size of cache grid cells in degrees (default: 0.005,
	// roughly 550m). Bounding boxes quantized to the same cells share results.
	CacheGridSize float64

	// StaleIfErrorTTL allows serving stale data on provider errors (default: 30 minutes).
	StaleIfErrorTTL time.Duration

	// CleanupInterval is how often to clean up expired entries (default: 10 minutes).
	CleanupInterval time.Duration
}

// Service provides styled incidents with caching.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	cacheTTL        time.Duration
	cacheGridSize   float64
	staleIfErrorTTL time.Duration
	cleanupInterval time.Duration

	mu          sync.RWMutex
	cache       map[string]*cachedIncidents
	lastCleanup time.Time
}

type cachedIncidents struct {
	incidents []StyledIncident
	fetchedAt time.Time
	expiresAt time.Time
}

// NewService creates a new incident service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.005
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 30 * time.Minute
	}

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval == 0 {
		cleanupInterval = 10 * time.Minute
	}

	return &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		cacheGridSize:   cacheGridSize,
		staleIfErrorTTL: staleIfErrorTTL,
		cleanupInterval: cleanupInterval,
		cache:           make(map[string]*cachedIncidents),
	}
}

// GetIncidents returns styled incidents for the bounding box.
// Uses cached data if available and not expired.
func (s *Service) GetIncidents(ctx context.Context, box geo.BBox) ([]StyledIncident, error) {
	if !box.Valid() {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "INVALID_BBOX",
			Message:  "bounding box is empty or inverted",
			Err:      ErrFetchFailed,
		}
	}

	cacheKey := s.cacheKey(box)

	s.mu.RLock()
	if cached, ok := s.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		s.logger.Debug().
			Str("cache_key", cacheKey).
			Msg("cache hit for incidents")
		return cached.incidents, nil
	}
	s.mu.RUnlock()

	return s.fetchIncidents(ctx, box, cacheKey)
}

// fetchIncidents fetches from the provider and updates the cache.
func (s *Service) fetchIncidents(ctx context.Context, box geo.BBox, cacheKey string) ([]StyledIncident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check cache (prevents thundering herd)
	if cached, ok := s.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		return cached.incidents, nil
	}

	s.logger.Debug().
		Str("provider", s.provider.Name()).
		Str("cache_key", cacheKey).
		Msg("fetching incidents from provider")

	raw, err := s.provider.FetchIncidents(ctx, box)
	if err != nil {
		s.logger.Error().Err(err).
			Str("cache_key", cacheKey).
			Msg("failed to fetch incidents")

		// Stale-if-error: a recent result beats a hard failure.
		if cached, ok := s.cache[cacheKey]; ok {
			if time.Now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
				s.logger.Warn().
					Time("fetched_at", cached.fetchedAt).
					Str("cache_key", cacheKey).
					Msg("serving stale incidents due to provider error")
				return cached.incidents, nil
			}
		}

		return nil, err
	}

	styled := make([]StyledIncident, 0, len(raw))
	for _, inc := range raw {
		styled = append(styled, StyledIncident{
			Incident: inc,
			Style:    StyleFor(inc.Severity),
		})
	}

	now := time.Now()
	s.cache[cacheKey] = &cachedIncidents{
		incidents: styled,
		fetchedAt: now,
		expiresAt: now.Add(s.cacheTTL),
	}

	s.logger.Debug().
		Str("cache_key", cacheKey).
		Int("incident_count", len(styled)).
		Msg("cached incident response")

	s.cleanupIfNeeded()

	return styled, nil
}

// cacheKey quantizes the bounding box corners onto the cache grid.
func (s *Service) cacheKey(box geo.BBox) string {
	q := func(v float64) float64 {
		return math.Floor(v/s.cacheGridSize) * s.cacheGridSize
	}
	return fmt.Sprintf("%.3f,%.3f:%.3f,%.3f",
		q(box.West), q(box.South), q(box.East), q(box.North))
}

// cleanupIfNeeded removes expired entries if the cleanup interval has passed.
func (s *Service) cleanupIfNeeded() {
	now := time.Now()
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}

	s.lastCleanup = now
	expired := 0

	for key, cached := range s.cache {
		if now.After(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			delete(s.cache, key)
			expired++
		}
	}

	if expired > 0 {
		s.logger.Debug().
			Int("expired_entries", expired).
			Msg("cleaned up expired incident cache entries")
	}
}

// InvalidateCache clears all cached data.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedIncidents)
}

// CacheStats contains cache statistics for the ops endpoint.
type CacheStats struct {
	TotalEntries int
	FreshEntries int
	StaleEntries int
	Provider     string
}

// CacheStats returns cache statistics.
func (s *Service) CacheStats() CacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	fresh := 0
	stale := 0

	for _, c := range s.cache {
		if now.Before(c.expiresAt) {
			fresh++
		} else if now.Before(c.fetchedAt.Add(s.staleIfErrorTTL)) {
			stale++
		}
	}

	return CacheStats{
		TotalEntries: len(s.cache),
		FreshEntries: fresh,
		StaleEntries: stale,
		Provider:     s.provider.Name(),
	}
}

// ProviderName returns the name of the underlying provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}
