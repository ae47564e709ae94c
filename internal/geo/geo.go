// Package geo provides the geographic primitives shared by every component:
// labeled points produced by the coordinate resolver and bounding boxes used
// for viewport fitting and incident queries.
package geo

import "fmt"

// Point is a resolved geographic point. Label carries the human-readable
// display name chosen during resolution and is immutable afterwards.
type Point struct {
	Lat   float64
	Lon   float64
	Label string
}

// Valid reports whether the point lies within WGS84 coordinate ranges.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// String returns the point formatted as "lat, lon" with 5 decimal places.
func (p Point) String() string {
	return fmt.Sprintf("%.5f, %.5f", p.Lat, p.Lon)
}

// BBox is a geographic bounding box in west/south/east/north order.
type BBox struct {
	West  float64
	South float64
	East  float64
	North float64
}

// NewBBox returns an empty bounding box ready to be extended.
func NewBBox() BBox {
	return BBox{West: 180, South: 90, East: -180, North: -90}
}

// Extend grows the box to include the given coordinate.
func (b BBox) Extend(lat, lon float64) BBox {
	if lat < b.South {
		b.South = lat
	}
	if lat > b.North {
		b.North = lat
	}
	if lon < b.West {
		b.West = lon
	}
	if lon > b.East {
		b.East = lon
	}
	return b
}

// ExtendPoint grows the box to include the given point.
func (b BBox) ExtendPoint(p Point) BBox {
	return b.Extend(p.Lat, p.Lon)
}

// Union returns the smallest box containing both boxes.
func (b BBox) Union(other BBox) BBox {
	return b.Extend(other.South, other.West).Extend(other.North, other.East)
}

// Valid reports whether the box has been extended with at least one
// coordinate and is within WGS84 ranges.
func (b BBox) Valid() bool {
	return b.South <= b.North && b.West <= b.East &&
		b.South >= -90 && b.North <= 90 && b.West >= -180 && b.East <= 180
}

// Center returns the midpoint of the box.
func (b BBox) Center() Point {
	return Point{
		Lat: (b.South + b.North) / 2,
		Lon: (b.West + b.East) / 2,
	}
}
