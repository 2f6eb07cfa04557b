package geo

import (
	"math"
	"sort"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// DefaultNearbyLimit is used when a search passes a non-positive limit.
const DefaultNearbyLimit = 10

// DistanceKm returns the haversine great-circle distance between two points.
func DistanceKm(a, b LatLng) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Candidate is a labelled projected coordinate offered to Nearby.
type Candidate struct {
	ID         string
	Coordinate Coordinate
}

// Neighbor is a candidate that fell inside the search radius.
type Neighbor struct {
	ID         string
	Coordinate Coordinate
	Location   LatLng
	DistanceKm float64
}

// Nearby projects every candidate, keeps those within radiusKm of center,
// and returns them nearest first. Candidates whose coordinates do not parse
// or do not project to a finite position are skipped. A NaN radius matches
// nothing. Equal distances keep candidate order.
func (p Projection) Nearby(center LatLng, candidates []Candidate, radiusKm float64, limit int) []Neighbor {
	if limit <= 0 {
		limit = DefaultNearbyLimit
	}

	var out []Neighbor
	for _, c := range candidates {
		pt, ok := c.Coordinate.Parse()
		if !ok {
			continue
		}
		loc := p.Inverse(pt)
		if !loc.finite() {
			continue
		}
		// NaN distance or radius never passes.
		d := DistanceKm(center, loc)
		if !(d <= radiusKm) {
			continue
		}
		out = append(out, Neighbor{ID: c.ID, Coordinate: c.Coordinate, Location: loc, DistanceKm: d})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Project converts a stored coordinate to latitude/longitude. ok is false
// when the coordinate does not parse or does not project to a finite position.
func (p Projection) Project(c Coordinate) (LatLng, bool) {
	pt, ok := c.Parse()
	if !ok {
		return LatLng{}, false
	}
	ll := p.Inverse(pt)
	if !ll.finite() {
		return LatLng{}, false
	}
	return ll, true
}

func (ll LatLng) finite() bool {
	return !math.IsNaN(ll.Lat) && !math.IsInf(ll.Lat, 0) && !math.IsNaN(ll.Lon) && !math.IsInf(ll.Lon, 0)
}
