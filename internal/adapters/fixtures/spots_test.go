package fixtures_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fishivo/geocore/internal/adapters/fixtures"
	"github.com/fishivo/geocore/internal/core/domain"
)

const seed = `
spots:
  - id: galata
    name: Galata Bridge
    lat: 41.0200
    lng: 28.9730
  - id: kandilli
    position: "41°4'30.000\"N, 29°3'36.000\"E"
  - id: moda
    position: "40.9800, 29.0250"
    created_at: 2026-05-01T06:30:00Z
`

func TestParseSpots(t *testing.T) {
	spots, err := fixtures.ParseSpots([]byte(seed))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(spots) != 3 {
		t.Fatalf("expected 3 spots, got %d", len(spots))
	}

	if spots[0].ID != "galata" || spots[0].Name != "Galata Bridge" || spots[0].Location.Latitude != 41.02 {
		t.Errorf("unexpected first spot: %+v", spots[0])
	}
	if k := spots[1].Location; math.Abs(k.Latitude-41.075) > 1e-9 || math.Abs(k.Longitude-29.06) > 1e-9 {
		t.Errorf("DMS position parsed to %+v", k)
	}
	if spots[2].CreatedAt.IsZero() || spots[2].Location.Longitude != 29.025 {
		t.Errorf("unexpected third spot: %+v", spots[2])
	}
}

func TestParseSpots_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		invalid bool // wraps ErrInvalidCoordinate
	}{
		{"missing id", "spots:\n  - lat: 1\n    lng: 1\n", false},
		{"duplicate id", "spots:\n  - {id: a, lat: 1, lng: 1}\n  - {id: a, lat: 2, lng: 2}\n", false},
		{"no location", "spots:\n  - id: a\n", true},
		{"out of range", "spots:\n  - {id: a, lat: 95, lng: 1}\n", true},
		{"bad position", "spots:\n  - {id: a, position: nowhere}\n", true},
		{"malformed", "spots: [", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fixtures.ParseSpots([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := errors.Is(err, domain.ErrInvalidCoordinate); got != tt.invalid {
				t.Errorf("errors.Is(ErrInvalidCoordinate) = %v, want %v (%v)", got, tt.invalid, err)
			}
		})
	}
}

func TestLoadSpots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spots.yaml")
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	spots, err := fixtures.LoadSpots(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(spots) != 3 {
		t.Errorf("expected 3 spots, got %d", len(spots))
	}

	_, err = fixtures.LoadSpots(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read spots") {
		t.Errorf("expected read error, got %v", err)
	}
}
