package geospatial

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fishivo/geocore/internal/core/domain"
)

// DefaultPadding is the fraction of the viewport added on every side when
// prefetching beyond the visible map.
const DefaultPadding = 0.1

// kmPerDegree approximates the length of one degree of latitude.
const kmPerDegree = 111.0

// IsValidCoordinate reports whether c is finite and within WGS 84 ranges.
func IsValidCoordinate(c domain.Coordinate) bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) ||
		math.IsInf(c.Latitude, 0) || math.IsInf(c.Longitude, 0) {
		return false
	}
	return ValidateCoordinateBounds(c.Latitude, c.Longitude)
}

// IsValidBounds reports whether both corners are valid and NE lies strictly
// north-east of SW. Bounds crossing the antimeridian are rejected.
func IsValidBounds(b domain.MapBounds) bool {
	return IsValidCoordinate(b.NE) && IsValidCoordinate(b.SW) &&
		b.NE.Latitude > b.SW.Latitude &&
		b.NE.Longitude > b.SW.Longitude
}

// RegionToBounds converts a center+span region into corner bounds.
func RegionToBounds(r domain.Region) domain.MapBounds {
	halfLat := r.LatitudeDelta / 2
	halfLng := r.LongitudeDelta / 2
	return domain.MapBounds{
		NE: domain.Coordinate{Latitude: r.Center.Latitude + halfLat, Longitude: r.Center.Longitude + halfLng},
		SW: domain.Coordinate{Latitude: r.Center.Latitude - halfLat, Longitude: r.Center.Longitude - halfLng},
	}
}

// BoundsToRegion converts corner bounds into a center+span region.
func BoundsToRegion(b domain.MapBounds) domain.Region {
	return domain.Region{
		Center:         BoundsCenter(b),
		LatitudeDelta:  math.Abs(b.NE.Latitude - b.SW.Latitude),
		LongitudeDelta: math.Abs(b.NE.Longitude - b.SW.Longitude),
	}
}

// IsCoordinateInBounds is an inclusive containment test. Invalid bounds
// contain nothing.
func IsCoordinateInBounds(c domain.Coordinate, b domain.MapBounds) bool {
	if !IsValidBounds(b) {
		return false
	}
	return c.Longitude >= b.SW.Longitude && c.Longitude <= b.NE.Longitude &&
		c.Latitude >= b.SW.Latitude && c.Latitude <= b.NE.Latitude
}

// ExpandBounds grows every edge by paddingPercent of the span on its axis.
// Invalid bounds are returned unchanged.
func ExpandBounds(b domain.MapBounds, paddingPercent float64) domain.MapBounds {
	if !IsValidBounds(b) {
		return b
	}
	latPad := (b.NE.Latitude - b.SW.Latitude) * paddingPercent
	lngPad := (b.NE.Longitude - b.SW.Longitude) * paddingPercent
	return domain.MapBounds{
		NE: domain.Coordinate{Latitude: b.NE.Latitude + latPad, Longitude: b.NE.Longitude + lngPad},
		SW: domain.Coordinate{Latitude: b.SW.Latitude - latPad, Longitude: b.SW.Longitude - lngPad},
	}
}

// BoundsFromZoom approximates the viewport around center at a map zoom
// level: zoom 1 spans roughly the whole world, zoom 20 a street.
func BoundsFromZoom(center domain.Coordinate, zoom float64) domain.MapBounds {
	scale := math.Pow(2, zoom)
	return RegionToBounds(domain.Region{
		Center:         center,
		LatitudeDelta:  180 / scale,
		LongitudeDelta: 360 / scale,
	})
}

// Intersection returns the overlap of two bounds. ok is false when either
// input is invalid or the rectangles do not overlap with positive area.
func Intersection(b1, b2 domain.MapBounds) (domain.MapBounds, bool) {
	if !IsValidBounds(b1) || !IsValidBounds(b2) {
		return domain.MapBounds{}, false
	}

	ne := domain.Coordinate{
		Latitude:  math.Min(b1.NE.Latitude, b2.NE.Latitude),
		Longitude: math.Min(b1.NE.Longitude, b2.NE.Longitude),
	}
	sw := domain.Coordinate{
		Latitude:  math.Max(b1.SW.Latitude, b2.SW.Latitude),
		Longitude: math.Max(b1.SW.Longitude, b2.SW.Longitude),
	}
	if ne.Longitude <= sw.Longitude || ne.Latitude <= sw.Latitude {
		return domain.MapBounds{}, false
	}
	return domain.MapBounds{NE: ne, SW: sw}, true
}

// BoundsArea approximates the area covered by b in km². It is a planar
// estimate for filtering and debug output, not a geodesic area.
func BoundsArea(b domain.MapBounds) float64 {
	if !IsValidBounds(b) {
		return 0
	}
	latKm := (b.NE.Latitude - b.SW.Latitude) * kmPerDegree
	meanLat := (b.NE.Latitude + b.SW.Latitude) / 2
	lngKm := (b.NE.Longitude - b.SW.Longitude) * kmPerDegree * math.Cos(toRad(meanLat))
	return math.Abs(latKm * lngKm)
}

// BoundsCenter returns the arithmetic midpoint of the corners.
func BoundsCenter(b domain.MapBounds) domain.Coordinate {
	return domain.Coordinate{
		Latitude:  (b.NE.Latitude + b.SW.Latitude) / 2,
		Longitude: (b.NE.Longitude + b.SW.Longitude) / 2,
	}
}

// BoundsToPostGIS serialises b as a closed WKT polygon ring
// (SW, SE, NE, NW, SW) in lng/lat order. Invalid bounds yield "".
func BoundsToPostGIS(b domain.MapBounds) string {
	if !IsValidBounds(b) {
		return ""
	}
	ring := []domain.Coordinate{
		b.SW,
		{Latitude: b.SW.Latitude, Longitude: b.NE.Longitude},
		b.NE,
		{Latitude: b.NE.Latitude, Longitude: b.SW.Longitude},
		b.SW,
	}
	points := make([]string, len(ring))
	for i, c := range ring {
		points[i] = wktNumber(c.Longitude) + " " + wktNumber(c.Latitude)
	}
	return "POLYGON((" + strings.Join(points, ", ") + "))"
}

// FormatBoundsForDebug renders corners, center and area on one line.
func FormatBoundsForDebug(b domain.MapBounds) string {
	if !IsValidBounds(b) {
		return "Invalid bounds"
	}
	c := BoundsCenter(b)
	return strings.Join([]string{
		fmt.Sprintf("Bounds: SW(%.4f, %.4f) - NE(%.4f, %.4f)",
			b.SW.Longitude, b.SW.Latitude, b.NE.Longitude, b.NE.Latitude),
		fmt.Sprintf("Center: (%.4f, %.4f)", c.Longitude, c.Latitude),
		fmt.Sprintf("Area: %.2f km²", BoundsArea(b)),
	}, " | ")
}

func wktNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
