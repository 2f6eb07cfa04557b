package geo

import (
	"math"
	"strconv"
	"testing"
)

// kmNorth returns the point distKm due north of ll along the sphere used by DistanceKm.
func kmNorth(ll LatLng, distKm float64) LatLng {
	return LatLng{Lat: ll.Lat + degrees(distKm/EarthRadiusKm), Lon: ll.Lon}
}

func coordinateAt(p Projection, ll LatLng) Coordinate {
	pt := p.Forward(ll)
	return Coordinate{
		Easting:  strconv.FormatFloat(pt.Easting, 'f', 3, 64),
		Northing: strconv.FormatFloat(pt.Northing, 'f', 3, 64),
	}
}

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name string
		a, b LatLng
		want float64
	}{
		{"same point", LatLng{9, 7}, LatLng{9, 7}, 0},
		{"one degree of latitude", LatLng{0, 0}, LatLng{1, 0}, 111.19492664455873},
		{"quarter meridian", LatLng{0, 0}, LatLng{90, 0}, math.Pi / 2 * EarthRadiusKm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("DistanceKm() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNearby_FiltersSortsAndLimits(t *testing.T) {
	proj, _ := LookupProjection(DefaultProjection)
	center := LatLng{Lat: 9.05, Lon: 7.49}

	candidates := []Candidate{
		{ID: "far", Coordinate: coordinateAt(proj, kmNorth(center, 10))},
		{ID: "three", Coordinate: coordinateAt(proj, kmNorth(center, 3))},
		{ID: "one", Coordinate: coordinateAt(proj, kmNorth(center, 1))},
		{ID: "bad", Coordinate: Coordinate{Easting: "n/a", Northing: "1000"}},
		{ID: "missing", Coordinate: Coordinate{}},
		{ID: "four", Coordinate: coordinateAt(proj, kmNorth(center, 4))},
	}

	got := proj.Nearby(center, candidates, 5, 0)
	wantIDs := []string{"one", "three", "four"}
	if len(got) != len(wantIDs) {
		t.Fatalf("Nearby() returned %d results, want %d: %+v", len(got), len(wantIDs), got)
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Errorf("result[%d].ID = %q, want %q", i, got[i].ID, id)
		}
		if got[i].DistanceKm > 5 {
			t.Errorf("result[%d] distance %.3f exceeds radius", i, got[i].DistanceKm)
		}
	}
	if math.Abs(got[1].DistanceKm-3.0) > 0.01 {
		t.Errorf("distance to 'three' = %.4f, want about 3.0", got[1].DistanceKm)
	}

	limited := proj.Nearby(center, candidates, 5, 2)
	if len(limited) != 2 || limited[0].ID != "one" || limited[1].ID != "three" {
		t.Errorf("Nearby(limit=2) = %+v", limited)
	}
}

func TestNearby_TiesKeepCandidateOrder(t *testing.T) {
	proj := UTM(32, false)
	center := LatLng{Lat: 9, Lon: 9}
	same := coordinateAt(proj, kmNorth(center, 2))

	candidates := []Candidate{
		{ID: "first", Coordinate: same},
		{ID: "second", Coordinate: same},
		{ID: "third", Coordinate: same},
	}
	got := proj.Nearby(center, candidates, 5, 10)
	for i, want := range []string{"first", "second", "third"} {
		if got[i].ID != want {
			t.Errorf("result[%d].ID = %q, want %q", i, got[i].ID, want)
		}
	}
}

func TestNearby_DefaultLimitIsTen(t *testing.T) {
	proj := UTM(32, false)
	center := LatLng{Lat: 9, Lon: 9}
	var candidates []Candidate
	for i := 0; i < 15; i++ {
		candidates = append(candidates, Candidate{
			ID:         strconv.Itoa(i),
			Coordinate: coordinateAt(proj, kmNorth(center, float64(i)*0.1)),
		})
	}
	if got := proj.Nearby(center, candidates, 50, 0); len(got) != DefaultNearbyLimit {
		t.Errorf("len(Nearby()) = %d, want %d", len(got), DefaultNearbyLimit)
	}
}

func TestCoordinateParse(t *testing.T) {
	tests := []struct {
		c      Coordinate
		wantOK bool
	}{
		{Coordinate{"326000.5", "1003000"}, true},
		{Coordinate{" 326000 ", "1003000"}, true},
		{Coordinate{"", "1003000"}, false},
		{Coordinate{"326000", "north"}, false},
		{Coordinate{"NaN", "1"}, false},
		{Coordinate{"Inf", "1"}, false},
		{Coordinate{"1e300", "1e300"}, false},
		{Coordinate{"5000000000", "712004"}, false},
		{Coordinate{"99999.99", "712004"}, false},
		{Coordinate{"326000", "-1"}, false},
		{Coordinate{"326000", "10000000.5"}, false},
		{Coordinate{"100000", "0"}, true},
		{Coordinate{"900000", "10000000"}, true},
	}
	for _, tt := range tests {
		if _, ok := tt.c.Parse(); ok != tt.wantOK {
			t.Errorf("Parse(%+v) ok = %v, want %v", tt.c, ok, tt.wantOK)
		}
	}
}

func TestNearby_SkipsCoordinatesOutsideProjection(t *testing.T) {
	proj, _ := LookupProjection(DefaultProjection)
	center := LatLng{Lat: 9.05, Lon: 7.49}

	candidates := []Candidate{
		{ID: "huge", Coordinate: Coordinate{Easting: "1e300", Northing: "1e300"}},
		{ID: "far-east", Coordinate: Coordinate{Easting: "5000000000", Northing: "712004"}},
		{ID: "two", Coordinate: coordinateAt(proj, kmNorth(center, 2))},
	}
	for _, radius := range []float64{1, 5, 100} {
		got := proj.Nearby(center, candidates, radius, 10)
		for _, n := range got {
			if n.ID != "two" {
				t.Errorf("radius %v: unexpected candidate %q at %v km", radius, n.ID, n.DistanceKm)
			}
			if math.IsNaN(n.DistanceKm) || n.DistanceKm > radius {
				t.Errorf("radius %v: %q has distance %v", radius, n.ID, n.DistanceKm)
			}
		}
	}

	if _, ok := proj.Project(Coordinate{Easting: "1e300", Northing: "1e300"}); ok {
		t.Error("Project() accepted a coordinate outside the projection")
	}
}

func TestNearby_NaNRadiusMatchesNothing(t *testing.T) {
	proj, _ := LookupProjection(DefaultProjection)
	center := LatLng{Lat: 9.05, Lon: 7.49}
	candidates := []Candidate{
		{ID: "near", Coordinate: coordinateAt(proj, kmNorth(center, 1))},
		{ID: "far", Coordinate: coordinateAt(proj, kmNorth(center, 500))},
	}
	if got := proj.Nearby(center, candidates, math.NaN(), 10); len(got) != 0 {
		t.Errorf("Nearby(radius=NaN) = %+v, want none", got)
	}
}
