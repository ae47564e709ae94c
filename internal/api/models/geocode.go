package models

// GeocodeResponse is the resolved point for a free-text query.
type GeocodeResponse struct {
	Query string `json:"query"`
	Point Point  `json:"point"`
}
