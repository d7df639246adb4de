package navigation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/fishivo/geocore/internal/core/domain"
)

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestBearing(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
	}{
		{"north", 0, 0, 1, 0, 0},
		{"east", 0, 0, 0, 1, 90},
		{"south", 1, 0, 0, 0, 180},
		{"west", 0, 1, 0, 0, 270},
		{"same point", 41, 29, 41, 29, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bearing(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if !approx(got, tt.want, 1e-9) {
				t.Errorf("Bearing = %v, want %v", got, tt.want)
			}
			if got < 0 || got >= 360 {
				t.Errorf("Bearing %v out of [0, 360)", got)
			}
		})
	}
}

func TestDistanceNautical(t *testing.T) {
	// One minute of latitude is close to one nautical mile.
	got := DistanceNautical(41, 29, 41+1.0/60, 29)
	if !approx(got, 1.0007, 1e-3) {
		t.Errorf("DistanceNautical = %v, want ~1.0007", got)
	}
	if d := DistanceNautical(41, 29, 41, 29); d != 0 {
		t.Errorf("same point distance = %v", d)
	}
}

func TestSOG(t *testing.T) {
	tests := []struct {
		distance float64
		ms       int64
		want     float64
	}{
		{10, 3_600_000, 10},
		{10, 0, 0},
		{10, -5, 0},
		{1, 1_800_000, 2},
		{0.123, 3_600_000, 0.1},
		{5.26, 3_600_000, 5.3},
	}
	for _, tt := range tests {
		if got := SOG(tt.distance, tt.ms); got != tt.want {
			t.Errorf("SOG(%v, %v) = %v, want %v", tt.distance, tt.ms, got, tt.want)
		}
	}
}

func TestCalculate(t *testing.T) {
	prev := domain.GPSPosition{Latitude: 41, Longitude: 29, TimestampMillis: 0}
	cur := domain.GPSPosition{Latitude: 41 + 1.0/60, Longitude: 29, TimestampMillis: 600_000}

	got := Calculate(prev, cur, 12.5)

	if !approx(got.COG, 0, 1e-9) {
		t.Errorf("COG = %v, want 0", got.COG)
	}
	// ~1 nm in 10 minutes.
	if got.SOG != 6 {
		t.Errorf("SOG = %v, want 6", got.SOG)
	}
	if got.Heading != 12.5 {
		t.Errorf("Heading = %v, want passthrough 12.5", got.Heading)
	}
	if !approx(got.Distance, 1.0007, 1e-3) {
		t.Errorf("Distance = %v", got.Distance)
	}
}

func TestCompassDirection(t *testing.T) {
	tests := map[float64]string{
		0: "N", 11.24: "N", 11.25: "NNE", 45: "NE", 90: "E",
		180: "S", 270: "W", 348.74: "NNW", 349: "N", 359.9: "N",
		360: "N", -90: "W", -22.5: "NNW", 720 + 45: "NE",
	}
	for deg, want := range tests {
		if got := CompassDirection(deg); got != want {
			t.Errorf("CompassDirection(%v) = %s, want %s", deg, got, want)
		}
	}
}

func TestCardinalDirection(t *testing.T) {
	tests := map[float64]string{
		0: "N", 22.4: "N", 22.5: "NE", 135: "SE", 200: "S",
		315: "NW", 338: "N", -45: "NW",
	}
	for deg, want := range tests {
		if got := CardinalDirection(deg); got != want {
			t.Errorf("CardinalDirection(%v) = %s, want %s", deg, got, want)
		}
	}
}

func TestUnits(t *testing.T) {
	if got := FormatDegrees(123.4); got != "123°" {
		t.Errorf("FormatDegrees = %q", got)
	}
	if got := FormatDegrees(359.6); got != "0°" {
		t.Errorf("FormatDegrees(359.6) = %q", got)
	}
	if got := FormatDegrees(-90); got != "270°" {
		t.Errorf("FormatDegrees(-90) = %q", got)
	}
	if got := FormatSpeed(5.24); got != "5.2 kts" {
		t.Errorf("FormatSpeed = %q", got)
	}
	if got := FormatSpeed(7); got != "7.0 kts" {
		t.Errorf("FormatSpeed(7) = %q", got)
	}
	if got := MpsToKnots(1); got != 1.94384 {
		t.Errorf("MpsToKnots(1) = %v", got)
	}
	if got := KnotsToMps(1); got != 0.514444 {
		t.Errorf("KnotsToMps(1) = %v", got)
	}
	if rt := KnotsToMps(MpsToKnots(10)); !approx(rt, 10, 1e-4) {
		t.Errorf("round trip = %v", rt)
	}
}

func TestIsValidPosition(t *testing.T) {
	tests := []struct {
		p    domain.GPSPosition
		want bool
	}{
		{domain.GPSPosition{Latitude: 41, Longitude: 29}, true},
		{domain.GPSPosition{Latitude: 90, Longitude: -180}, true},
		{domain.GPSPosition{Latitude: 90.1, Longitude: 0}, false},
		{domain.GPSPosition{Latitude: 0, Longitude: 180.5}, false},
		{domain.GPSPosition{Latitude: math.NaN(), Longitude: 0}, false},
		{domain.GPSPosition{Latitude: math.Inf(1), Longitude: 0}, false},
	}
	for _, tt := range tests {
		if got := IsValidPosition(tt.p); got != tt.want {
			t.Errorf("IsValidPosition(%+v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

// randomPairs returns seeded point pairs: uniform ones, near-antipodal ones
// and pairs less than a metre apart.
func randomPairs(n int) [][4]float64 {
	rng := rand.New(rand.NewSource(42))
	lat := func() float64 { return rng.Float64()*180 - 90 }
	lng := func() float64 { return rng.Float64()*360 - 180 }
	wrap := func(v float64) float64 {
		if v > 180 {
			return v - 360
		}
		return v
	}

	pairs := make([][4]float64, 0, 3*n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, [4]float64{lat(), lng(), lat(), lng()})

		a, b := lat(), lng()
		jitter := (rng.Float64() - 0.5) * 1e-6
		pairs = append(pairs, [4]float64{a, b, -a + jitter, wrap(b + 180 - jitter)})

		pairs = append(pairs, [4]float64{a, b, a + jitter, b - jitter})
	}
	return pairs
}

func TestDistanceNautical_Symmetric(t *testing.T) {
	maxNm := math.Pi * earthRadiusNm
	for _, p := range randomPairs(500) {
		ab := DistanceNautical(p[0], p[1], p[2], p[3])
		ba := DistanceNautical(p[2], p[3], p[0], p[1])
		if ab != ba {
			t.Fatalf("DistanceNautical not symmetric for %v: %v != %v", p, ab, ba)
		}
		if ab < 0 || ab > maxNm+1e-9 {
			t.Fatalf("DistanceNautical(%v) = %v out of [0, %v]", p, ab, maxNm)
		}
	}
}

func TestBearing_Range(t *testing.T) {
	for _, p := range randomPairs(500) {
		for _, got := range []float64{
			Bearing(p[0], p[1], p[2], p[3]),
			Bearing(p[2], p[3], p[0], p[1]),
		} {
			if !(got >= 0 && got < 360) {
				t.Fatalf("Bearing for %v = %v, want within [0, 360)", p, got)
			}
		}
	}
}
