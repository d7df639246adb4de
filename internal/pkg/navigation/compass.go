package navigation

import "math"

var (
	compassPoints  = [16]string{"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE", "S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW"}
	cardinalPoints = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
)

// CompassDirection maps a bearing to one of 16 compass points.
func CompassDirection(deg float64) string {
	return compassPoints[pointIndex(deg, len(compassPoints))]
}

// CardinalDirection maps a bearing to one of 8 compass points.
func CardinalDirection(deg float64) string {
	return cardinalPoints[pointIndex(deg, len(cardinalPoints))]
}

func pointIndex(deg float64, points int) int {
	step := 360 / float64(points)
	return int(math.Round(normalizeDegrees(deg)/step)) % points
}

// normalizeDegrees folds any finite angle into [0, 360).
func normalizeDegrees(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}
