package geospatial

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/fishivo/geocore/internal/core/domain"
)

// Notation names a textual coordinate notation.
type Notation string

const (
	NotationDD      Notation = "DD"  // decimal degrees: 40.123456, -74.567890
	NotationDMS     Notation = "DMS" // degrees minutes seconds: 40°42'4.495"N, 74°34'4.404"W
	NotationDDM     Notation = "DDM" // degrees decimal minutes: 40°42.075'N, 74°34.073'W
	NotationUnknown Notation = "unknown"
)

var (
	ddPattern  = regexp.MustCompile(`^(-?\d+\.?\d*)[,\s]+(-?\d+\.?\d*)$`)
	dmsPattern = regexp.MustCompile(`(\d+)[°\s]+(\d+)['\s]+(\d+\.?\d*)["\s]*([NSEW])`)
	ddmPattern = regexp.MustCompile(`(\d+)[°\s]+(\d+\.?\d*)['\s]*([NSEW])`)
)

// ValidateCoordinateBounds reports whether lat is in [-90, 90] and lng in [-180, 180].
func ValidateCoordinateBounds(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// ParseDD parses decimal degrees separated by a comma and/or whitespace.
func ParseDD(input string) (domain.Coordinate, bool) {
	cleaned := strings.Join(strings.Fields(input), " ")
	if cleaned == "" {
		return domain.Coordinate{}, false
	}

	m := ddPattern.FindStringSubmatch(cleaned)
	if m == nil {
		return domain.Coordinate{}, false
	}

	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return domain.Coordinate{}, false
	}
	lng, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return domain.Coordinate{}, false
	}
	if !ValidateCoordinateBounds(lat, lng) {
		return domain.Coordinate{}, false
	}
	return domain.Coordinate{Latitude: lat, Longitude: lng}, true
}

// ParseDMS parses "D°M'S\"H, D°M'S\"H" (or the space separated equivalent).
func ParseDMS(input string) (domain.Coordinate, bool) {
	latPart, lngPart, ok := splitPair(input)
	if !ok {
		return domain.Coordinate{}, false
	}

	latMatch := dmsPattern.FindStringSubmatch(latPart)
	lngMatch := dmsPattern.FindStringSubmatch(lngPart)
	if latMatch == nil || lngMatch == nil {
		return domain.Coordinate{}, false
	}

	lat, ok := dmsComponent(latMatch, 90, "N", "S")
	if !ok {
		return domain.Coordinate{}, false
	}
	lng, ok := dmsComponent(lngMatch, 180, "E", "W")
	if !ok {
		return domain.Coordinate{}, false
	}
	if !ValidateCoordinateBounds(lat, lng) {
		return domain.Coordinate{}, false
	}
	return domain.Coordinate{Latitude: lat, Longitude: lng}, true
}

// ParseDDM parses "D°M.mmm'H, D°M.mmm'H" (or the space separated equivalent).
func ParseDDM(input string) (domain.Coordinate, bool) {
	latPart, lngPart, ok := splitPair(input)
	if !ok {
		return domain.Coordinate{}, false
	}

	latMatch := ddmPattern.FindStringSubmatch(latPart)
	lngMatch := ddmPattern.FindStringSubmatch(lngPart)
	if latMatch == nil || lngMatch == nil {
		return domain.Coordinate{}, false
	}

	lat, ok := ddmComponent(latMatch, 90, "N", "S")
	if !ok {
		return domain.Coordinate{}, false
	}
	lng, ok := ddmComponent(lngMatch, 180, "E", "W")
	if !ok {
		return domain.Coordinate{}, false
	}
	if !ValidateCoordinateBounds(lat, lng) {
		return domain.Coordinate{}, false
	}
	return domain.Coordinate{Latitude: lat, Longitude: lng}, true
}

// ParseAuto tries DD, DMS and DDM in that order.
func ParseAuto(input string) (domain.Coordinate, bool) {
	if c, ok := ParseDD(input); ok {
		return c, true
	}
	if c, ok := ParseDMS(input); ok {
		return c, true
	}
	if c, ok := ParseDDM(input); ok {
		return c, true
	}
	return domain.Coordinate{}, false
}

// DetectFormat returns the first format that parses input, or NotationUnknown.
func DetectFormat(input string) Notation {
	if _, ok := ParseDD(input); ok {
		return NotationDD
	}
	if _, ok := ParseDMS(input); ok {
		return NotationDMS
	}
	if _, ok := ParseDDM(input); ok {
		return NotationDDM
	}
	return NotationUnknown
}

// Parse parses input in notation f. NotationUnknown (or an empty notation)
// falls back to ParseAuto.
func (f Notation) Parse(input string) (domain.Coordinate, bool) {
	switch f {
	case NotationDD:
		return ParseDD(input)
	case NotationDMS:
		return ParseDMS(input)
	case NotationDDM:
		return ParseDDM(input)
	default:
		return ParseAuto(input)
	}
}

// ParseNotation maps a user supplied name to a Notation.
func ParseNotation(s string) Notation {
	switch Notation(strings.ToUpper(strings.TrimSpace(s))) {
	case NotationDD:
		return NotationDD
	case NotationDMS:
		return NotationDMS
	case NotationDDM:
		return NotationDDM
	default:
		return NotationUnknown
	}
}

// FormatDD renders "40.123456, -74.567890". Out of range input yields "".
func FormatDD(lat, lng float64) string {
	if !ValidateCoordinateBounds(lat, lng) {
		return ""
	}
	return fmt.Sprintf("%.6f, %.6f", lat, lng)
}

// FormatDMS renders "40°42'4.495\"N, 74°34'4.404\"W". Out of range input yields "".
func FormatDMS(lat, lng float64) string {
	if !ValidateCoordinateBounds(lat, lng) {
		return ""
	}
	latDeg, latMin, latSec := toDMS(lat)
	lngDeg, lngMin, lngSec := toDMS(lng)
	return fmt.Sprintf(`%d°%d'%.3f"%s, %d°%d'%.3f"%s`,
		latDeg, latMin, latSec, hemisphere(lat, "N", "S"),
		lngDeg, lngMin, lngSec, hemisphere(lng, "E", "W"))
}

// FormatDDM renders "40°42.075'N, 74°34.073'W". Out of range input yields "".
func FormatDDM(lat, lng float64) string {
	if !ValidateCoordinateBounds(lat, lng) {
		return ""
	}
	latDeg, latMin := toDDM(lat)
	lngDeg, lngMin := toDDM(lng)
	return fmt.Sprintf("%d°%.3f'%s, %d°%.3f'%s",
		latDeg, latMin, hemisphere(lat, "N", "S"),
		lngDeg, lngMin, hemisphere(lng, "E", "W"))
}

// FormatAs renders the coordinate in notation f (DD for unknown notations).
func FormatAs(f Notation, lat, lng float64) string {
	switch f {
	case NotationDMS:
		return FormatDMS(lat, lng)
	case NotationDDM:
		return FormatDDM(lat, lng)
	default:
		return FormatDD(lat, lng)
	}
}

// splitPair upper-cases input and splits it on its single comma.
func splitPair(input string) (string, string, bool) {
	cleaned := strings.ToUpper(strings.TrimSpace(input))
	if cleaned == "" {
		return "", "", false
	}
	parts := strings.Split(cleaned, ",")
	if len(parts) != 2 {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}

// dmsComponent converts a dmsPattern match into signed decimal degrees.
func dmsComponent(m []string, maxDeg int, pos, neg string) (float64, bool) {
	deg, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	mins, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	sec, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return 0, false
	}
	if deg > maxDeg || mins >= 60 || sec >= 60 {
		return 0, false
	}
	v := float64(deg) + float64(mins)/60 + sec/3600
	return signed(v, m[4], pos, neg)
}

// ddmComponent converts a ddmPattern match into signed decimal degrees.
func ddmComponent(m []string, maxDeg int, pos, neg string) (float64, bool) {
	deg, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	mins, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, false
	}
	if deg > maxDeg || mins >= 60 {
		return 0, false
	}
	v := float64(deg) + mins/60
	return signed(v, m[3], pos, neg)
}

func signed(v float64, dir, pos, neg string) (float64, bool) {
	switch dir {
	case pos:
		return v, true
	case neg:
		return -v, true
	default:
		return 0, false
	}
}

// toDMS splits |v| into degrees, minutes and seconds. Rounding to the
// printed millisecond happens before the split so seconds never show 60.
func toDMS(v float64) (deg, mins int, sec float64) {
	total := int64(math.Round(math.Abs(v) * 3600 * 1000))
	deg = int(total / 3_600_000)
	rem := total % 3_600_000
	mins = int(rem / 60_000)
	return deg, mins, float64(rem%60_000) / 1000
}

// toDDM splits |v| into degrees and minutes rounded to thousandths.
func toDDM(v float64) (deg int, mins float64) {
	total := int64(math.Round(math.Abs(v) * 60 * 1000))
	return int(total / 60_000), float64(total%60_000) / 1000
}

func hemisphere(v float64, pos, neg string) string {
	if v >= 0 {
		return pos
	}
	return neg
}
