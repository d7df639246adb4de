package geospatial

import (
	"math"
	"strings"
	"testing"

	"github.com/fishivo/geocore/internal/core/domain"
)

func bounds(swLat, swLng, neLat, neLng float64) domain.MapBounds {
	return domain.MapBounds{
		NE: domain.Coordinate{Latitude: neLat, Longitude: neLng},
		SW: domain.Coordinate{Latitude: swLat, Longitude: swLng},
	}
}

func TestIsValidBounds(t *testing.T) {
	tests := []struct {
		name string
		b    domain.MapBounds
		want bool
	}{
		{"valid", bounds(40, 28, 42, 30), true},
		{"inverted latitude", bounds(42, 28, 40, 30), false},
		{"inverted longitude", bounds(40, 30, 42, 28), false},
		{"zero area", bounds(40, 28, 40, 30), false},
		{"antimeridian crossing", bounds(-10, 170, 10, -170), false},
		{"out of range", bounds(-95, 0, 10, 10), false},
		{"nan corner", bounds(math.NaN(), 0, 10, 10), false},
	}
	for _, tt := range tests {
		if got := IsValidBounds(tt.b); got != tt.want {
			t.Errorf("%s: IsValidBounds = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRegionBoundsRoundTrip(t *testing.T) {
	cases := []domain.MapBounds{
		bounds(40, 28, 42, 30),
		bounds(-33.875, 151.125, -33.75, 151.25),
		bounds(-90, -180, 90, 180),
		bounds(10.5, -74.25, 11, -73.5),
	}
	for _, b := range cases {
		got := RegionToBounds(BoundsToRegion(b))
		if got != b {
			t.Errorf("round trip %+v -> %+v", b, got)
		}
	}

	r := BoundsToRegion(bounds(40, 28, 42, 30))
	if r.Center.Latitude != 41 || r.Center.Longitude != 29 || r.LatitudeDelta != 2 || r.LongitudeDelta != 2 {
		t.Errorf("unexpected region %+v", r)
	}
}

func TestIsCoordinateInBounds(t *testing.T) {
	b := bounds(40, 28, 42, 30)

	if !IsCoordinateInBounds(BoundsCenter(b), b) {
		t.Error("center must be inside bounds")
	}
	if !IsCoordinateInBounds(b.NE, b) || !IsCoordinateInBounds(b.SW, b) {
		t.Error("containment must be inclusive on the edges")
	}
	if IsCoordinateInBounds(domain.Coordinate{Latitude: 43, Longitude: 29}, b) {
		t.Error("point north of bounds reported inside")
	}
	if IsCoordinateInBounds(domain.Coordinate{Latitude: 41, Longitude: 29}, bounds(42, 28, 40, 30)) {
		t.Error("invalid bounds must contain nothing")
	}
}

func TestExpandBounds(t *testing.T) {
	b := bounds(40, 28, 42, 32)
	got := ExpandBounds(b, 0.1)
	want := bounds(39.8, 27.6, 42.2, 32.4)
	if !near(got.NE.Latitude, want.NE.Latitude, 1e-12) || !near(got.SW.Longitude, want.SW.Longitude, 1e-12) ||
		!near(got.SW.Latitude, want.SW.Latitude, 1e-12) || !near(got.NE.Longitude, want.NE.Longitude, 1e-12) {
		t.Errorf("ExpandBounds = %+v, want %+v", got, want)
	}
	if c := BoundsToRegion(got).Center; !near(c.Latitude, 41, 1e-12) || !near(c.Longitude, 30, 1e-12) {
		t.Errorf("padding must keep the center, got %+v", c)
	}

	invalid := bounds(42, 28, 40, 30)
	if ExpandBounds(invalid, 0.5) != invalid {
		t.Error("invalid bounds must be returned unchanged")
	}
}

func TestBoundsFromZoom(t *testing.T) {
	center := domain.Coordinate{Latitude: 0, Longitude: 0}
	b := BoundsFromZoom(center, 1)
	if b.NE.Latitude != 45 || b.SW.Latitude != -45 || b.NE.Longitude != 90 || b.SW.Longitude != -90 {
		t.Errorf("zoom 1 bounds = %+v", b)
	}

	wide := BoundsArea(BoundsFromZoom(domain.Coordinate{Latitude: 41, Longitude: 29}, 5))
	narrow := BoundsArea(BoundsFromZoom(domain.Coordinate{Latitude: 41, Longitude: 29}, 15))
	if narrow >= wide {
		t.Errorf("higher zoom must cover less area: z5=%v z15=%v", wide, narrow)
	}
}

func TestIntersection(t *testing.T) {
	a := bounds(40, 28, 42, 30)
	b := bounds(41, 29, 43, 31)

	got, ok := Intersection(a, b)
	if !ok {
		t.Fatal("expected overlap")
	}
	if got != bounds(41, 29, 42, 30) {
		t.Errorf("Intersection = %+v", got)
	}

	if _, ok := Intersection(a, bounds(50, 50, 51, 51)); ok {
		t.Error("disjoint bounds must not intersect")
	}
	if _, ok := Intersection(a, bounds(42, 28, 43, 30)); ok {
		t.Error("bounds sharing only an edge must not intersect")
	}
}

func TestBoundsArea(t *testing.T) {
	equator := BoundsArea(bounds(-0.5, 0, 0.5, 1))
	if !near(equator, 111*111*math.Cos(0), 1e-9) {
		t.Errorf("area at equator = %v", equator)
	}
	north := BoundsArea(bounds(59.5, 0, 60.5, 1))
	if !near(north, 111*111*0.5, 1) {
		t.Errorf("area at 60N = %v", north)
	}
	if BoundsArea(bounds(1, 1, 0, 0)) != 0 {
		t.Error("invalid bounds must have zero area")
	}
}

func TestBoundsToPostGIS(t *testing.T) {
	got := BoundsToPostGIS(bounds(40.5, 28, 42, 30.25))
	want := "POLYGON((28 40.5, 30.25 40.5, 30.25 42, 28 42, 28 40.5))"
	if got != want {
		t.Errorf("BoundsToPostGIS = %q, want %q", got, want)
	}
	if BoundsToPostGIS(bounds(1, 1, 0, 0)) != "" {
		t.Error("invalid bounds must serialise to an empty string")
	}
}

func TestFormatBoundsForDebug(t *testing.T) {
	got := FormatBoundsForDebug(bounds(40, 28, 42, 30))
	if !strings.HasPrefix(got, "Bounds: SW(28.0000, 40.0000) - NE(30.0000, 42.0000) | Center: (29.0000, 41.0000) | Area: ") {
		t.Errorf("unexpected debug string %q", got)
	}
	if FormatBoundsForDebug(domain.MapBounds{}) != "Invalid bounds" {
		t.Error("zero bounds must be reported invalid")
	}
}

func TestDistanceKm(t *testing.T) {
	// One degree of latitude is ~111.19 km on a 6371 km sphere.
	d := DistanceKm(0, 0, 1, 0)
	if !near(d, 111.19, 0.01) {
		t.Errorf("DistanceKm = %v", d)
	}
	if Haversine(0, 0, 1, 0) != d*1000 {
		t.Error("Haversine must return meters")
	}
	if !near(KmToLatDegrees(d), 1, 1e-9) {
		t.Errorf("KmToLatDegrees = %v", KmToLatDegrees(d))
	}
}
