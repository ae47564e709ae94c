package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/safemap/safemap/internal/api/models"
	"github.com/safemap/safemap/internal/api/response"
	"github.com/safemap/safemap/internal/geocode"
	"github.com/safemap/safemap/internal/planner"
	"github.com/safemap/safemap/internal/routing"
	"github.com/safemap/safemap/pkg/polyline"
)

// Submitter runs the full comparison flow for one submission.
type Submitter interface {
	Submit(ctx context.Context, req planner.SubmitRequest) (*planner.Result, error)
}

// RouteHandler handles route comparison endpoints.
type RouteHandler struct {
	planner Submitter
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(p Submitter) *RouteHandler {
	return &RouteHandler{planner: p}
}

// CompareRoutes handles POST /v1/routes:compare - run the full flow and
// return the ranked route cards.
func (h *RouteHandler) CompareRoutes(w http.ResponseWriter, r *http.Request) {
	var req models.CompareRoutesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	var fieldErrors []models.FieldError
	if strings.TrimSpace(req.Origin) == "" {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "origin", Message: "origin is required", Code: "required",
		})
	}
	if strings.TrimSpace(req.Destination) == "" {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "destination", Message: "destination is required", Code: "required",
		})
	}
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "missing required fields", fieldErrors)
		return
	}

	result, err := h.planner.Submit(r.Context(), planner.SubmitRequest{
		OriginQuery:      req.Origin,
		DestinationQuery: req.Destination,
		Mode:             req.Mode,
	})
	if err != nil {
		h.writeSubmitError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toCompareResponse(result))
}

// writeSubmitError maps flow errors onto the problem vocabulary.
func (h *RouteHandler) writeSubmitError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, geocode.ErrNotFound):
		response.NotFound(w, r, "no match for origin or destination")
	case errors.Is(err, routing.ErrUnknownMode):
		response.BadRequest(w, r, "unknown travel mode", []models.FieldError{
			{Field: "mode", Message: "must be one of walk, bike, drive", Code: "invalid"},
		})
	case errors.Is(err, routing.ErrInvalidCoordinates):
		response.BadRequest(w, r, "origin or destination out of range", nil)
	case errors.Is(err, geocode.ErrProviderUnavailable),
		errors.Is(err, routing.ErrProviderUnavailable):
		response.ServiceUnavailable(w, r, "an upstream service is temporarily unavailable")
	case errors.Is(err, routing.ErrRouteComputationFailed):
		response.BadGateway(w, r, "route computation failed")
	default:
		response.InternalError(w, r, "failed to compare routes")
	}
}

// toCompareResponse flattens a planner result into the wire shape.
func toCompareResponse(result *planner.Result) models.CompareRoutesResponse {
	set := result.Set

	resp := models.CompareRoutesResponse{
		SubmissionID: result.SubmissionID,
		Mode:         string(set.Mode),
		Origin: models.Point{
			Lat: result.Origin.Lat, Lon: result.Origin.Lon, Label: result.Origin.Label,
		},
		Destination: models.Point{
			Lat: result.Destination.Lat, Lon: result.Destination.Lon, Label: result.Destination.Label,
		},
		SnappedOrigin: models.Point{
			Lat: set.SnappedOrigin.Lat, Lon: set.SnappedOrigin.Lon,
		},
		SnappedDestination: models.Point{
			Lat: set.SnappedDestination.Lat, Lon: set.SnappedDestination.Lon,
		},
		OverlayGeneration: result.Sequence,
		Rendered:          result.Rendered,
	}
	if set.SnapDistOriginM != 0 || set.SnapDistDestM != 0 {
		resp.SnapDistM = &models.SnapDists{
			Origin:      set.SnapDistOriginM,
			Destination: set.SnapDistDestM,
		}
	}

	resp.Routes = make([]models.RouteCard, 0, len(result.Routes))
	for _, scored := range result.Routes {
		resp.Routes = append(resp.Routes, models.RouteCard{
			Beta:           scored.Beta,
			Name:           scored.Name,
			Title:          scored.Title,
			Description:    scored.Description,
			Color:          scored.Color,
			Chips:          scored.Chips,
			SafetyScore:    scored.SafetyScore,
			Badge:          string(scored.Badge),
			ETAMinutes:     scored.ETAMinutes,
			LengthM:        scored.Stats.LengthM,
			MeanRisk:       scored.Stats.MeanRisk,
			DetourLabel:    scored.DetourLabel,
			RiskDeltaLabel: scored.RiskDeltaLabel,
			Geometry:       polyline.Encode(scored.Geometry),
		})
	}

	return resp
}
