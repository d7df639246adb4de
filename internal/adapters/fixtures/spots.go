// Package fixtures loads spot seed files.
package fixtures

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fishivo/geocore/internal/core/domain"
	"github.com/fishivo/geocore/internal/pkg/geospatial"
)

// SpotEntry is one spot in a seed file. The location is given either as
// lat/lng or as a position string in DD, DMS or DDM.
type SpotEntry struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	Lat       *float64  `yaml:"lat"`
	Lng       *float64  `yaml:"lng"`
	Position  string    `yaml:"position"`
	CreatedAt time.Time `yaml:"created_at"`
}

// SpotFile is the top-level structure of a seed file.
type SpotFile struct {
	Spots []SpotEntry `yaml:"spots"`
}

// LoadSpots reads and parses a seed file.
func LoadSpots(path string) ([]domain.Spot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spots: %w", err)
	}
	return ParseSpots(data)
}

// ParseSpots decodes seed YAML into spots, in file order.
func ParseSpots(data []byte) ([]domain.Spot, error) {
	var f SpotFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse spots: %w", err)
	}

	seen := make(map[string]bool, len(f.Spots))
	spots := make([]domain.Spot, 0, len(f.Spots))
	for i, e := range f.Spots {
		if e.ID == "" {
			return nil, fmt.Errorf("spot #%d: missing id", i+1)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("spot %s: duplicate id", e.ID)
		}
		seen[e.ID] = true

		loc, err := e.location()
		if err != nil {
			return nil, fmt.Errorf("spot %s: %w", e.ID, err)
		}
		spots = append(spots, domain.Spot{ID: e.ID, Name: e.Name, Location: loc, CreatedAt: e.CreatedAt})
	}
	return spots, nil
}

func (e SpotEntry) location() (domain.Coordinate, error) {
	switch {
	case e.Position != "":
		c, ok := geospatial.ParseAuto(e.Position)
		if !ok {
			return domain.Coordinate{}, fmt.Errorf("%w: %q", domain.ErrInvalidCoordinate, e.Position)
		}
		return c, nil
	case e.Lat != nil && e.Lng != nil:
		if !geospatial.ValidateCoordinateBounds(*e.Lat, *e.Lng) {
			return domain.Coordinate{}, fmt.Errorf("%w: %v, %v", domain.ErrInvalidCoordinate, *e.Lat, *e.Lng)
		}
		return domain.Coordinate{Latitude: *e.Lat, Longitude: *e.Lng}, nil
	default:
		return domain.Coordinate{}, fmt.Errorf("%w: lat/lng or position required", domain.ErrInvalidCoordinate)
	}
}
