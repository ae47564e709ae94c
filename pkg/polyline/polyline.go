// Package polyline implements the Google encoded polyline algorithm
// (precision 5) plus haversine helpers for route geometries.
// Route geometries arrive from the routing service as GeoJSON coordinate
// sequences; the encoded form is used for compact transport in API responses.
package polyline

import (
	"math"
)

// Coordinate is a single vertex of a route geometry.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Encode encodes coordinates into a polyline5 string.
func Encode(coords []Coordinate) string {
	if len(coords) == 0 {
		return ""
	}

	buf := make([]byte, 0, len(coords)*4)
	prevLat, prevLon := 0, 0

	for _, c := range coords {
		lat := int(math.Round(c.Lat * 1e5))
		lon := int(math.Round(c.Lon * 1e5))

		buf = appendChunks(buf, lat-prevLat)
		buf = appendChunks(buf, lon-prevLon)

		prevLat, prevLon = lat, lon
	}

	return string(buf)
}

// Decode decodes a polyline5 string into coordinates.
func Decode(encoded string) []Coordinate {
	if encoded == "" {
		return nil
	}

	var coords []Coordinate
	index, lat, lon := 0, 0, 0

	for index < len(encoded) {
		latDelta, next := readChunks(encoded, index)
		index = next
		lat += latDelta

		lonDelta, next := readChunks(encoded, index)
		index = next
		lon += lonDelta

		coords = append(coords, Coordinate{
			Lat: float64(lat) / 1e5,
			Lon: float64(lon) / 1e5,
		})
	}

	return coords
}

// appendChunks encodes one signed delta as 5-bit chunks.
func appendChunks(buf []byte, value int) []byte {
	if value < 0 {
		value = ^(value << 1)
	} else {
		value <<= 1
	}

	for value >= 0x20 {
		buf = append(buf, byte((value&0x1f)|0x20)+63)
		value >>= 5
	}
	return append(buf, byte(value)+63)
}

// readChunks decodes one signed delta starting at index and returns the
// delta along with the index of the next unread byte.
func readChunks(encoded string, index int) (int, int) {
	shift, result := 0, 0

	for index < len(encoded) {
		b := int(encoded[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	if result&1 != 0 {
		return ^(result >> 1), index
	}
	return result >> 1, index
}

// Length returns the total haversine length of the geometry in meters.
func Length(coords []Coordinate) float64 {
	if len(coords) < 2 {
		return 0
	}

	var total float64
	for i := 1; i < len(coords); i++ {
		total += haversine(coords[i-1], coords[i])
	}
	return total
}

// Bounds returns the southwest and northeast corners of the geometry.
// ok is false for an empty geometry.
func Bounds(coords []Coordinate) (sw, ne Coordinate, ok bool) {
	if len(coords) == 0 {
		return Coordinate{}, Coordinate{}, false
	}

	sw, ne = coords[0], coords[0]
	for _, c := range coords[1:] {
		if c.Lat < sw.Lat {
			sw.Lat = c.Lat
		}
		if c.Lat > ne.Lat {
			ne.Lat = c.Lat
		}
		if c.Lon < sw.Lon {
			sw.Lon = c.Lon
		}
		if c.Lon > ne.Lon {
			ne.Lon = c.Lon
		}
	}
	return sw, ne, true
}

const earthRadiusMeters = 6371000

func haversine(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)

	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
