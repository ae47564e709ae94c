// Package handler provides HTTP handlers for the SafeMap API.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/safemap/safemap/internal/api/models"
	"github.com/safemap/safemap/internal/api/response"
	"github.com/safemap/safemap/internal/geo"
	"github.com/safemap/safemap/internal/geocode"
)

// PointResolver resolves free-text queries into points.
type PointResolver interface {
	Resolve(ctx context.Context, query string) (geo.Point, error)
}

// GeocodeHandler handles geocoding endpoints.
type GeocodeHandler struct {
	resolver PointResolver
}

// NewGeocodeHandler creates a new GeocodeHandler.
func NewGeocodeHandler(resolver PointResolver) *GeocodeHandler {
	return &GeocodeHandler{resolver: resolver}
}

// Resolve handles GET /v1/geocode - resolve a free-text query to a point.
func (h *GeocodeHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		response.BadRequest(w, r, "missing query", []models.FieldError{
			{Field: "q", Message: "query is required", Code: "required"},
		})
		return
	}

	point, err := h.resolver.Resolve(r.Context(), query)
	if err != nil {
		switch {
		case errors.Is(err, geocode.ErrNotFound):
			response.NotFound(w, r, "no match for query")
		case errors.Is(err, geocode.ErrProviderUnavailable):
			response.ServiceUnavailable(w, r, "geocoding service is temporarily unavailable")
		default:
			response.InternalError(w, r, "failed to resolve query")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.GeocodeResponse{
		Query: query,
		Point: models.Point{Lat: point.Lat, Lon: point.Lon, Label: point.Label},
	})
}
