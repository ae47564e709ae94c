package models

// CompareRoutesRequest is the body of POST /v1/routes:compare. Origin and
// destination are free text: numeric "lat,lon" pairs or place names.
type CompareRoutesRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Mode        string `json:"mode,omitempty"`
}

// CompareRoutesResponse carries the ranked route cards for one submission.
type CompareRoutesResponse struct {
	SubmissionID string `json:"submissionId"`

	Mode string `json:"mode"`

	Origin      Point `json:"origin"`
	Destination Point `json:"destination"`

	SnappedOrigin      Point      `json:"snappedOrigin"`
	SnappedDestination Point      `json:"snappedDestination"`
	SnapDistM          *SnapDists `json:"snapDistM,omitempty"`

	// OverlayGeneration identifies the overlay set drawn for this result;
	// stale submissions that lost the render race report rendered=false.
	OverlayGeneration uint64 `json:"overlayGeneration"`
	Rendered          bool   `json:"rendered"`

	Routes []RouteCard `json:"routes"`
}

// SnapDists reports how far each endpoint was moved onto the routable network.
type SnapDists struct {
	Origin      float64 `json:"origin"`
	Destination float64 `json:"destination"`
}

// RouteCard is one scored candidate ready for presentation.
type RouteCard struct {
	Beta        float64  `json:"beta"`
	Name        string   `json:"name,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Color       string   `json:"color"`
	Chips       []string `json:"chips"`

	SafetyScore int    `json:"safetyScore"`
	Badge       string `json:"badge"`

	ETAMinutes int     `json:"etaMinutes"`
	LengthM    float64 `json:"lengthM"`
	MeanRisk   float64 `json:"meanRisk"`

	DetourLabel    string `json:"detourLabel"`
	RiskDeltaLabel string `json:"riskDeltaLabel"`

	// Geometry is the route path as an encoded polyline (precision 5).
	Geometry string `json:"geometry"`
}
