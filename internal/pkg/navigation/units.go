package navigation

import (
	"math"
	"strconv"

	"github.com/fishivo/geocore/internal/core/domain"
)

const (
	knotsPerMps = 1.94384
	mpsPerKnot  = 0.514444
)

// FormatDegrees renders a bearing as whole degrees, e.g. "123°".
func FormatDegrees(deg float64) string {
	whole := int(math.Round(normalizeDegrees(deg))) % 360
	return strconv.Itoa(whole) + "°"
}

// FormatSpeed renders a speed in knots with one decimal, e.g. "5.2 kts".
func FormatSpeed(knots float64) string {
	return strconv.FormatFloat(knots, 'f', 1, 64) + " kts"
}

// MpsToKnots converts metres per second to knots.
func MpsToKnots(mps float64) float64 { return mps * knotsPerMps }

// KnotsToMps converts knots to metres per second.
func KnotsToMps(knots float64) float64 { return knots * mpsPerKnot }

// IsValidPosition reports whether the fix has a finite, in-range position.
func IsValidPosition(p domain.GPSPosition) bool {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) {
		return false
	}
	return math.Abs(p.Latitude) <= 90 && math.Abs(p.Longitude) <= 180
}
