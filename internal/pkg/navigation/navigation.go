// Package navigation derives course, speed and heading readings from
// consecutive GPS fixes for a compass display.
package navigation

import (
	"math"

	"github.com/fishivo/geocore/internal/core/domain"
)

// earthRadiusNm is the mean Earth radius in nautical miles.
const earthRadiusNm = 3440.065

const msPerHour = 60 * 60 * 1000

// Bearing returns the initial great-circle bearing from the first point to
// the second, in degrees within [0, 360). Identical points yield 0.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	φ1 := toRad(lat1)
	φ2 := toRad(lat2)
	Δλ := toRad(lon2 - lon1)

	y := math.Sin(Δλ) * math.Cos(φ2)
	x := math.Cos(φ1)*math.Sin(φ2) - math.Sin(φ1)*math.Cos(φ2)*math.Cos(Δλ)

	θ := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(θ+360, 360)
}

// DistanceNautical returns the Haversine distance in nautical miles.
func DistanceNautical(lat1, lon1, lat2, lon2 float64) float64 {
	φ1 := toRad(lat1)
	φ2 := toRad(lat2)
	Δφ := toRad(lat2 - lat1)
	Δλ := toRad(lon2 - lon1)

	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusNm * c
}

// SOG converts a distance in nautical miles covered in timeDiffMs
// milliseconds into knots, rounded to one decimal. A non-positive elapsed
// time yields 0.
func SOG(distanceNm float64, timeDiffMs int64) float64 {
	if timeDiffMs <= 0 {
		return 0
	}
	hours := float64(timeDiffMs) / msPerHour
	return math.Round(distanceNm/hours*10) / 10
}

// COG is the bearing from prev to cur.
func COG(prev, cur domain.GPSPosition) float64 {
	return Bearing(prev.Latitude, prev.Longitude, cur.Latitude, cur.Longitude)
}

// Calculate composes distance, speed and course between two fixes. The
// heading comes from an external compass and is passed through unchanged.
func Calculate(prev, cur domain.GPSPosition, compassHeading float64) domain.NavigationData {
	distance := DistanceNautical(prev.Latitude, prev.Longitude, cur.Latitude, cur.Longitude)
	return domain.NavigationData{
		COG:      COG(prev, cur),
		SOG:      SOG(distance, cur.TimestampMillis-prev.TimestampMillis),
		Heading:  compassHeading,
		Distance: distance,
	}
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
