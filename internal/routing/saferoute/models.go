package saferoute

import (
	"encoding/json"
	"fmt"

	"github.com/safemap/safemap/pkg/polyline"
)

// multiRouteResponse is the wire envelope of the /route_multi endpoint.
type multiRouteResponse struct {
	Mode               string     `json:"mode"`
	SnappedOrigin      wirePoint  `json:"snapped_origin"`
	SnappedDestination wirePoint  `json:"snapped_destination"`
	SnapDistM          *snapDists `json:"snap_dist_m,omitempty"`
	Routes             []wireRoute `json:"routes"`
}

type wirePoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type snapDists struct {
	Origin      float64 `json:"origin"`
	Destination float64 `json:"destination"`
}

type wireRoute struct {
	Beta    float64         `json:"beta"`
	Name    string          `json:"name,omitempty"`
	Color   string          `json:"color"`
	GeoJSON json.RawMessage `json:"geojson"`
	Stats   wireStats       `json:"stats"`
}

type wireStats struct {
	LengthM          float64 `json:"length_m"`
	MeanRisk         float64 `json:"mean_risk"`
	RiskLengthSumM   float64 `json:"risk_length_sum_m"`
	DetourMVsBeta0   float64 `json:"detour_m_vs_beta0"`
	RiskDeltaVsBeta0 float64 `json:"risk_delta_vs_beta0"`
}

// errorResponse is the wire shape of an error reply.
type errorResponse struct {
	Error string `json:"error"`
}

// geoJSONDocument covers the two geometry encodings the service emits:
// a bare LineString or a FeatureCollection wrapping one.
type geoJSONDocument struct {
	Type        string           `json:"type"`
	Coordinates [][]float64      `json:"coordinates,omitempty"`
	Features    []geoJSONFeature `json:"features,omitempty"`
}

type geoJSONFeature struct {
	Geometry geoJSONGeometry `json:"geometry"`
}

type geoJSONGeometry struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

// decodeGeometry extracts the LineString vertices from the route's geojson
// field. GeoJSON positions are [lon, lat].
func decodeGeometry(raw json.RawMessage) ([]polyline.Coordinate, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing geometry")
	}

	var doc geoJSONDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding geometry: %w", err)
	}

	positions := doc.Coordinates
	if doc.Type == "FeatureCollection" {
		if len(doc.Features) == 0 {
			return nil, fmt.Errorf("empty feature collection")
		}
		positions = doc.Features[0].Geometry.Coordinates
	}

	if len(positions) == 0 {
		return nil, fmt.Errorf("empty geometry")
	}

	coords := make([]polyline.Coordinate, 0, len(positions))
	for i, pos := range positions {
		if len(pos) < 2 {
			return nil, fmt.Errorf("position %d has %d components", i, len(pos))
		}
		coords = append(coords, polyline.Coordinate{Lat: pos[1], Lon: pos[0]})
	}
	return coords, nil
}
