package geo

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Ellipsoid is a reference ellipsoid given by semi-major axis and flattening.
type Ellipsoid struct {
	A float64
	F float64
}

var (
	WGS84          = Ellipsoid{A: 6378137.0, F: 1 / 298.257223563}
	Clarke1880RGS  = Ellipsoid{A: 6378249.145, F: 1 / 293.465}
	utmScale       = 0.9996
	utmFalseEast   = 500000.0
	utmFalseNorthS = 10000000.0
)

func (el Ellipsoid) e2() float64 { return el.F * (2 - el.F) }

// Shift is a three-parameter geocentric translation to WGS84, in metres.
type Shift struct {
	DX, DY, DZ float64
}

// Projection is a UTM zone on a given ellipsoid, with an optional datum shift
// applied after the inverse projection so results are WGS84 latitude/longitude.
type Projection struct {
	Name      string
	Zone      int
	South     bool
	Ellipsoid Ellipsoid
	ToWGS84   *Shift
}

var minnaShift = &Shift{DX: -92, DY: -93, DZ: 122}

var presets = map[string]Projection{
	"EPSG:26331": {Name: "EPSG:26331", Zone: 31, Ellipsoid: Clarke1880RGS, ToWGS84: minnaShift},
	"EPSG:26332": {Name: "EPSG:26332", Zone: 32, Ellipsoid: Clarke1880RGS, ToWGS84: minnaShift},
	"EPSG:32631": {Name: "EPSG:32631", Zone: 31, Ellipsoid: WGS84},
	"EPSG:32632": {Name: "EPSG:32632", Zone: 32, Ellipsoid: WGS84},
}

// DefaultProjection is Minna / UTM zone 32N.
const DefaultProjection = "EPSG:26332"

// LookupProjection returns a named preset.
func LookupProjection(name string) (Projection, error) {
	p, ok := presets[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return Projection{}, fmt.Errorf("unknown projection %q (known: %s)", name, strings.Join(ProjectionNames(), ", "))
	}
	return p, nil
}

// ProjectionNames lists the supported presets in sorted order.
func ProjectionNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// UTM returns a projection for an arbitrary zone on WGS84.
func UTM(zone int, south bool) Projection {
	hemi := "N"
	if south {
		hemi = "S"
	}
	return Projection{Name: fmt.Sprintf("UTM %d%s", zone, hemi), Zone: zone, South: south, Ellipsoid: WGS84}
}

func (p Projection) centralMeridian() float64 {
	return float64(p.Zone*6-183) * math.Pi / 180
}

func (p Projection) falseNorthing() float64 {
	if p.South {
		return utmFalseNorthS
	}
	return 0
}

// krueger holds the series coefficients of the transverse Mercator
// projection for one ellipsoid, to fourth order in n.
type krueger struct {
	a     float64 // rectifying radius
	alpha [4]float64
	beta  [4]float64
	delta [4]float64
	e     float64
}

func newKrueger(el Ellipsoid) krueger {
	n := el.F / (2 - el.F)
	n2, n3, n4 := n*n, n*n*n, n*n*n*n
	return krueger{
		a: el.A / (1 + n) * (1 + n2/4 + n4/64),
		alpha: [4]float64{
			n/2 - 2*n2/3 + 5*n3/16 + 41*n4/180,
			13*n2/48 - 3*n3/5 + 557*n4/1440,
			61*n3/240 - 103*n4/140,
			49561 * n4 / 161280,
		},
		beta: [4]float64{
			n/2 - 2*n2/3 + 37*n3/96 - n4/360,
			n2/48 + n3/15 - 437*n4/1440,
			17*n3/480 - 37*n4/840,
			4397 * n4 / 161280,
		},
		delta: [4]float64{
			2*n - 2*n2/3 - 2*n3 + 116*n4/45,
			7*n2/3 - 8*n3/5 - 227*n4/45,
			56*n3/15 - 136*n4/35,
			4279 * n4 / 630,
		},
		e: math.Sqrt(el.e2()),
	}
}

// Inverse converts a projected point to WGS84 latitude/longitude.
func (p Projection) Inverse(pt Point) LatLng {
	k := newKrueger(p.Ellipsoid)
	xi := (pt.Northing - p.falseNorthing()) / (utmScale * k.a)
	eta := (pt.Easting - utmFalseEast) / (utmScale * k.a)

	xiP, etaP := xi, eta
	for j := 1; j <= 4; j++ {
		b := k.beta[j-1]
		fj := float64(2 * j)
		xiP -= b * math.Sin(fj*xi) * math.Cosh(fj*eta)
		etaP -= b * math.Cos(fj*xi) * math.Sinh(fj*eta)
	}

	chi := math.Asin(math.Sin(xiP) / math.Cosh(etaP))
	phi := chi
	for j := 1; j <= 4; j++ {
		phi += k.delta[j-1] * math.Sin(float64(2*j)*chi)
	}
	lambda := p.centralMeridian() + math.Atan2(math.Sinh(etaP), math.Cos(xiP))

	if p.ToWGS84 != nil {
		phi, lambda = shiftDatum(phi, lambda, p.Ellipsoid, WGS84, *p.ToWGS84, 1)
	}
	return LatLng{Lat: degrees(phi), Lon: degrees(lambda)}
}

// Forward converts WGS84 latitude/longitude to a projected point. It is the
// independent counterpart of Inverse.
func (p Projection) Forward(ll LatLng) Point {
	phi, lambda := radians(ll.Lat), radians(ll.Lon)
	if p.ToWGS84 != nil {
		phi, lambda = shiftDatum(phi, lambda, WGS84, p.Ellipsoid, *p.ToWGS84, -1)
	}

	k := newKrueger(p.Ellipsoid)
	sinPhi := math.Sin(phi)
	t := math.Sinh(math.Atanh(sinPhi) - k.e*math.Atanh(k.e*sinPhi))
	dl := lambda - p.centralMeridian()
	xiP := math.Atan2(t, math.Cos(dl))
	etaP := math.Atanh(math.Sin(dl) / math.Sqrt(1+t*t))

	xi, eta := xiP, etaP
	for j := 1; j <= 4; j++ {
		a := k.alpha[j-1]
		fj := float64(2 * j)
		xi += a * math.Sin(fj*xiP) * math.Cosh(fj*etaP)
		eta += a * math.Cos(fj*xiP) * math.Sinh(fj*etaP)
	}
	return Point{
		Easting:  utmFalseEast + utmScale*k.a*eta,
		Northing: p.falseNorthing() + utmScale*k.a*xi,
	}
}

// shiftDatum moves a geodetic position (height 0) from one ellipsoid to another
// through geocentric coordinates, applying the translation times sign.
func shiftDatum(phi, lambda float64, from, to Ellipsoid, s Shift, sign float64) (float64, float64) {
	e2 := from.e2()
	sinPhi := math.Sin(phi)
	nu := from.A / math.Sqrt(1-e2*sinPhi*sinPhi)
	x := nu * math.Cos(phi) * math.Cos(lambda)
	y := nu * math.Cos(phi) * math.Sin(lambda)
	z := nu * (1 - e2) * sinPhi

	x += sign * s.DX
	y += sign * s.DY
	z += sign * s.DZ

	e2 = to.e2()
	pr := math.Hypot(x, y)
	outLambda := math.Atan2(y, x)
	outPhi := math.Atan2(z, pr*(1-e2))
	for i := 0; i < 10; i++ {
		sp := math.Sin(outPhi)
		n := to.A / math.Sqrt(1-e2*sp*sp)
		h := pr/math.Cos(outPhi) - n
		outPhi = math.Atan2(z, pr*(1-e2*n/(n+h)))
	}
	return outPhi, outLambda
}

func degrees(r float64) float64 { return r * 180 / math.Pi }
func radians(d float64) float64 { return d * math.Pi / 180 }
