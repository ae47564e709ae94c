package models

// IncidentDot is one styled incident point.
type IncidentDot struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Severity float64 `json:"severity"`
	Color    string  `json:"color"`
	RadiusPx int     `json:"radiusPx"`
}

// IncidentsResponse carries the styled incidents for a bounding box.
type IncidentsResponse struct {
	Count     int           `json:"count"`
	Incidents []IncidentDot `json:"incidents"`
}

// IncidentOverlayRequest toggles the incident overlay on the display state.
type IncidentOverlayRequest struct {
	Show bool    `json:"show"`
	BBox *GeoBox `json:"bbox,omitempty"`
}

// IncidentOverlayResponse reports the overlay state after a toggle.
type IncidentOverlayResponse struct {
	Visible bool `json:"visible"`
	Count   int  `json:"count"`
}
