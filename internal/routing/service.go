package routing

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the routing service.
type ServiceConfig struct {
	// Provider is the multi-route provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long to cache route responses (default: 2 minutes).
	CacheTTL time.Duration

	// CacheGridSize is the size of cache grid cells in degrees (default: 0.001,
	// roughly 110m). Endpoints within the same cell share cached results.
	CacheGridSize float64

	// StaleIfErrorTTL allows serving stale data on provider errors (default: 10 minutes).
	StaleIfErrorTTL time.Duration

	// CleanupInterval is how often to clean up expired entries (default: 5 minutes).
	CleanupInterval time.Duration
}

// Service provides validated route result sets with caching.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	cacheTTL        time.Duration
	cacheGridSize   float64
	staleIfErrorTTL time.Duration
	cleanupInterval time.Duration

	mu          sync.RWMutex
	cache       map[string]*cachedRoutes
	lastCleanup time.Time
}

type cachedRoutes struct {
	set       *RouteResultSet
	fetchedAt time.Time
	expiresAt time.Time
}

// NewService creates a new routing service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 2 * time.Minute
	}

	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.001
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 10 * time.Minute
	}

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval == 0 {
		cleanupInterval = 5 * time.Minute
	}

	return &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		cacheGridSize:   cacheGridSize,
		staleIfErrorTTL: staleIfErrorTTL,
		cleanupInterval: cleanupInterval,
		cache:           make(map[string]*cachedRoutes),
	}
}

// GetRoutes returns the validated candidate family for the request.
// Uses cached data if available and not expired.
func (s *Service) GetRoutes(ctx context.Context, req RoutesRequest) (*RouteResultSet, error) {
	if !req.Origin.Valid() {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "INVALID_ORIGIN",
			Message:  "invalid origin coordinates",
			Err:      ErrInvalidCoordinates,
		}
	}
	if !req.Destination.Valid() {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "INVALID_DESTINATION",
			Message:  "invalid destination coordinates",
			Err:      ErrInvalidCoordinates,
		}
	}
	if req.Mode == "" {
		req.Mode = ModeWalk
	}

	cacheKey := s.cacheKey(req)

	s.mu.RLock()
	if cached, ok := s.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		s.logger.Debug().
			Str("cache_key", cacheKey).
			Msg("cache hit for routes")
		return cached.set, nil
	}
	s.mu.RUnlock()

	return s.fetchRoutes(ctx, req, cacheKey)
}

// fetchRoutes fetches the route family from the provider and updates the cache.
func (s *Service) fetchRoutes(ctx context.Context, req RoutesRequest, cacheKey string) (*RouteResultSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check cache (prevents thundering herd)
	if cached, ok := s.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		return cached.set, nil
	}

	s.logger.Debug().
		Float64("origin_lat", req.Origin.Lat).
		Float64("origin_lon", req.Origin.Lon).
		Float64("dest_lat", req.Destination.Lat).
		Float64("dest_lon", req.Destination.Lon).
		Str("mode", string(req.Mode)).
		Str("provider", s.provider.Name()).
		Msg("fetching routes from provider")

	set, err := s.provider.GetRoutes(ctx, req)
	if err == nil {
		if vErr := set.Validate(); vErr != nil {
			err = vErr
		}
	}
	if err != nil {
		s.logger.Error().Err(err).
			Str("mode", string(req.Mode)).
			Msg("failed to fetch routes")

		// Stale-if-error: a recent result beats a hard failure.
		if cached, ok := s.cache[cacheKey]; ok {
			if time.Now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
				s.logger.Warn().
					Time("fetched_at", cached.fetchedAt).
					Str("cache_key", cacheKey).
					Msg("serving stale routes due to provider error")
				return cached.set, nil
			}
		}

		return nil, err
	}

	now := time.Now()
	s.cache[cacheKey] = &cachedRoutes{
		set:       set,
		fetchedAt: now,
		expiresAt: now.Add(s.cacheTTL),
	}

	s.logger.Debug().
		Str("cache_key", cacheKey).
		Int("route_count", len(set.Routes)).
		Msg("cached route response")

	s.cleanupIfNeeded()

	return set, nil
}

// cacheKey quantizes both endpoints onto the cache grid.
// Format: {mode}:{gridOriginLat},{gridOriginLon}:{gridDestLat},{gridDestLon}.
func (s *Service) cacheKey(req RoutesRequest) string {
	q := func(v float64) float64 {
		return math.Floor(v/s.cacheGridSize) * s.cacheGridSize
	}
	return fmt.Sprintf("%s:%.3f,%.3f:%.3f,%.3f",
		req.Mode,
		q(req.Origin.Lat), q(req.Origin.Lon),
		q(req.Destination.Lat), q(req.Destination.Lon),
	)
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
			Msg("cleaned up expired route cache entries")
	}
}

// InvalidateCache clears all cached data.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedRoutes)
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
