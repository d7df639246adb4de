package domain

import (
	"time"
)

// Spot is a located entity shown on the map (fishing spot, catch location).
// Only its identity and position matter to the geospatial core.
type Spot struct {
	ID        string     `json:"id"`
	Name      string     `json:"name,omitempty"`
	Location  Coordinate `json:"location"`
	CreatedAt time.Time  `json:"created_at"`
}

// ClusterableItem converts the spot into the [lng, lat] form used by clustering.
func (s Spot) ClusterableItem() ClusterableItem {
	return ClusterableItem{
		ID:          s.ID,
		Coordinates: [2]float64{s.Location.Longitude, s.Location.Latitude},
	}
}

// ClusterableItem is anything with an identity and a position.
// Coordinates are stored as [lng, lat], the order map renderers expect.
type ClusterableItem struct {
	ID          string     `json:"id"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Lng returns the item's longitude.
func (i ClusterableItem) Lng() float64 { return i.Coordinates[0] }

// Lat returns the item's latitude.
func (i ClusterableItem) Lat() float64 { return i.Coordinates[1] }

// Cluster groups two or more nearby items behind a single marker.
type Cluster struct {
	ID       string            `json:"id"`
	Centroid [2]float64        `json:"centroid"` // [lng, lat]
	Count    int               `json:"count"`
	Members  []ClusterableItem `json:"members"`
}

// ClusterResult is the output of one clustering pass. Every input item is
// either in IndividualItems or in exactly one Cluster's Members.
type ClusterResult struct {
	IndividualItems []ClusterableItem `json:"individual_items"`
	Clusters        []Cluster         `json:"clusters"`
}

// GPSPosition is a single fix from a location provider.
type GPSPosition struct {
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	TimestampMillis int64    `json:"timestamp"`
	Speed           *float64 `json:"speed,omitempty"`    // m/s
	Heading         *float64 `json:"heading,omitempty"`  // degrees
	Accuracy        *float64 `json:"accuracy,omitempty"` // meters
}

// Time returns the fix timestamp as a time.Time.
func (p GPSPosition) Time() time.Time {
	return time.UnixMilli(p.TimestampMillis).UTC()
}

// NavigationData is derived from two consecutive fixes.
type NavigationData struct {
	COG      float64 `json:"cog"`      // course over ground, degrees 0-360
	SOG      float64 `json:"sog"`      // speed over ground, knots
	Heading  float64 `json:"heading"`  // compass heading, degrees
	Distance float64 `json:"distance"` // nautical miles
}

// NavigationReading is one published update for a vessel's compass display.
type NavigationReading struct {
	VesselID  string         `json:"vessel_id"`
	SessionID string         `json:"session_id"`
	Time      time.Time      `json:"time"`
	Position  Coordinate     `json:"position"`
	Raw       NavigationData `json:"raw"`
	Smoothed  NavigationData `json:"smoothed"`
	Direction string         `json:"direction"` // 16-point compass
	Cardinal  string         `json:"cardinal"`  // 8-point compass
}
