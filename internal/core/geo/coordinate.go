// Package geo is the geospatial engine: projected-to-geographic conversion,
// great-circle distance and radius search. Everything here is pure.
package geo

import (
	"math"
	"strconv"
	"strings"
)

// Coordinate is a projected point as carried on the wire and in storage.
// Values are kept as the exact strings supplied so they round-trip unchanged.
type Coordinate struct {
	Easting  string `json:"easting"`
	Northing string `json:"northing"`
}

// Point is a parsed projected coordinate in metres.
type Point struct {
	Easting  float64
	Northing float64
}

// LatLng is a geographic coordinate in decimal degrees.
type LatLng struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Plausible UTM extents. Values outside them cannot be inverted reliably.
const (
	MinEasting  = 100000.0
	MaxEasting  = 900000.0
	MinNorthing = 0.0
	MaxNorthing = 10000000.0
)

// Parse converts a Coordinate into a Point. ok is false when either field is
// missing, not a finite decimal number, or outside the UTM extents; such
// coordinates are skipped by searches rather than treated as errors.
func (c Coordinate) Parse() (p Point, ok bool) {
	e, ok := parseMetres(c.Easting)
	if !ok {
		return Point{}, false
	}
	n, ok := parseMetres(c.Northing)
	if !ok {
		return Point{}, false
	}
	if e < MinEasting || e > MaxEasting || n < MinNorthing || n > MaxNorthing {
		return Point{}, false
	}
	return Point{Easting: e, Northing: n}, true
}

// IsZero reports whether neither field is set.
func (c Coordinate) IsZero() bool {
	return strings.TrimSpace(c.Easting) == "" && strings.TrimSpace(c.Northing) == ""
}

func parseMetres(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
