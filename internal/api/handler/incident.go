package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/safemap/safemap/internal/api/models"
	"github.com/safemap/safemap/internal/api/response"
	"github.com/safemap/safemap/internal/geo"
	"github.com/safemap/safemap/internal/incident"
)

// IncidentSource returns styled incidents for a bounding box.
type IncidentSource interface {
	GetIncidents(ctx context.Context, box geo.BBox) ([]incident.StyledIncident, error)
}

// OverlayController toggles the incident overlay on the display state.
type OverlayController interface {
	ShowIncidentOverlay(ctx context.Context, box geo.BBox) (int, error)
	HideIncidentOverlay()
	IncidentOverlayVisible() bool
}

// IncidentHandler handles incident endpoints.
type IncidentHandler struct {
	incidents IncidentSource
	overlay   OverlayController
}

// NewIncidentHandler creates a new IncidentHandler.
func NewIncidentHandler(incidents IncidentSource, overlay OverlayController) *IncidentHandler {
	return &IncidentHandler{incidents: incidents, overlay: overlay}
}

// ListIncidents handles GET /v1/incidents - styled incidents for a bbox.
func (h *IncidentHandler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	box, fieldErrors := parseBBoxQuery(r)
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid bounding box", fieldErrors)
		return
	}

	styled, err := h.incidents.GetIncidents(r.Context(), box)
	if err != nil {
		h.writeIncidentError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toIncidentsResponse(styled))
}

// ToggleOverlay handles POST /v1/incidents/overlay - show or hide the
// incident overlay on the shared display state.
func (h *IncidentHandler) ToggleOverlay(w http.ResponseWriter, r *http.Request) {
	var req models.IncidentOverlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	if !req.Show {
		h.overlay.HideIncidentOverlay()
		response.JSON(w, r, http.StatusOK, models.IncidentOverlayResponse{
			Visible: false,
			Count:   0,
		})
		return
	}

	if req.BBox == nil {
		response.BadRequest(w, r, "bbox is required to show the overlay", []models.FieldError{
			{Field: "bbox", Message: "bbox is required", Code: "required"},
		})
		return
	}

	box := geo.BBox{
		West:  req.BBox.West,
		South: req.BBox.South,
		East:  req.BBox.East,
		North: req.BBox.North,
	}
	if !box.Valid() {
		response.BadRequest(w, r, "bounding box is empty or inverted", nil)
		return
	}

	count, err := h.overlay.ShowIncidentOverlay(r.Context(), box)
	if err != nil {
		h.writeIncidentError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.IncidentOverlayResponse{
		Visible: h.overlay.IncidentOverlayVisible(),
		Count:   count,
	})
}

func (h *IncidentHandler) writeIncidentError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, incident.ErrProviderUnavailable):
		response.ServiceUnavailable(w, r, "incident feed is temporarily unavailable")
	case errors.Is(err, incident.ErrFetchFailed):
		response.BadGateway(w, r, "incident fetch failed")
	default:
		response.InternalError(w, r, "failed to fetch incidents")
	}
}

// parseBBoxQuery reads west/south/east/north query parameters.
func parseBBoxQuery(r *http.Request) (geo.BBox, []models.FieldError) {
	var fieldErrors []models.FieldError

	parse := func(name string) float64 {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field: name, Message: name + " is required", Code: "required",
			})
			return 0
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field: name, Message: name + " must be a number", Code: "invalid",
			})
			return 0
		}
		return v
	}

	box := geo.BBox{
		West:  parse("west"),
		South: parse("south"),
		East:  parse("east"),
		North: parse("north"),
	}
	if len(fieldErrors) == 0 && !box.Valid() {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "bbox", Message: "bounding box is empty or inverted", Code: "invalid",
		})
	}

	return box, fieldErrors
}

func toIncidentsResponse(styled []incident.StyledIncident) models.IncidentsResponse {
	dots := make([]models.IncidentDot, 0, len(styled))
	for _, inc := range styled {
		dots = append(dots, models.IncidentDot{
			Lat:      inc.Lat,
			Lon:      inc.Lon,
			Severity: inc.Severity,
			Color:    inc.Style.Color,
			RadiusPx: inc.Style.RadiusPx,
		})
	}
	return models.IncidentsResponse{
		Count:     len(dots),
		Incidents: dots,
	}
}
