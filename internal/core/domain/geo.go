package domain

// Coordinate represents a geographic coordinate (WGS 84) in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// MapBounds is a rectangular viewport described by its northeast and
// southwest corners. Bounds crossing the antimeridian are not supported.
type MapBounds struct {
	NE Coordinate `json:"ne"`
	SW Coordinate `json:"sw"`
}

// Region describes a viewport as a center point plus its span in degrees.
type Region struct {
	Center         Coordinate `json:"center"`
	LatitudeDelta  float64    `json:"latitude_delta"`
	LongitudeDelta float64    `json:"longitude_delta"`
}
