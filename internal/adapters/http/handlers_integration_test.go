//go:build integration

package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fishivo/geocore/internal/adapters/http"
	"github.com/fishivo/geocore/internal/adapters/postgres"
	"github.com/fishivo/geocore/internal/core/domain"
	"github.com/fishivo/geocore/internal/core/usecases"
	"github.com/fishivo/geocore/internal/pkg/config"
	"github.com/fishivo/geocore/migrations"
)

// setupTestDB connects to the test database and applies migrations.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("geocore-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if _, err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func setupTestDeps(db *postgres.DB) *http.Dependencies {
	return &http.Dependencies{
		Markers: usecases.NewMarkerService(postgres.NewSpotRepo(db), nil, usecases.MarkerConfig{}),
		Navigation: usecases.NewNavigationService(postgres.NewTrackRepo(db), nil,
			usecases.NavigationConfig{ResetGap: 2 * time.Minute, Source: "http"}),
		DB: db,
	}
}

// seedSpots inserts a tight group and one outlier around a unique origin
// so reruns do not see each other's rows.
func seedSpots(t *testing.T, db *postgres.DB, prefix string, lat, lng float64) {
	spots := []domain.Spot{
		{ID: prefix + "-a", Location: domain.Coordinate{Latitude: lat, Longitude: lng}},
		{ID: prefix + "-b", Location: domain.Coordinate{Latitude: lat + 0.001, Longitude: lng + 0.001}},
		{ID: prefix + "-c", Location: domain.Coordinate{Latitude: lat + 0.4, Longitude: lng + 0.4}},
	}
	if err := postgres.NewSpotRepo(db).UpsertBatch(context.Background(), spots); err != nil {
		t.Fatalf("seed spots: %v", err)
	}
}

func TestMarkers_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	// A pseudo-random patch of open sea per run.
	lat := -50 + float64(time.Now().UnixNano()%1000)/100
	lng := -140 + float64(time.Now().UnixNano()%700)/100
	prefix := fmt.Sprintf("integ-%d", time.Now().UnixNano())
	seedSpots(t, db, prefix, lat, lng)

	app := setupApp(setupTestDeps(db))

	url := fmt.Sprintf("/v1/markers?ne_lat=%f&ne_lng=%f&sw_lat=%f&sw_lng=%f&zoom=10&padding=0",
		lat+0.5, lng+0.5, lat-0.01, lng-0.01)
	resp, err := app.Test(httptest.NewRequest("GET", url, nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var res usecases.MarkerResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Stats.TotalItems < 3 {
		t.Errorf("expected at least 3 items, got %d", res.Stats.TotalItems)
	}

	found := false
	for _, c := range res.Result.Clusters {
		if c.ID == "cluster-"+prefix+"-a" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a cluster anchored on %s-a, got %+v", prefix, res.Result.Clusters)
	}
}

func TestNavigation_Integration_ResumesFromHistory(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	vessel := fmt.Sprintf("integ-boat-%d", time.Now().UnixNano())
	now := time.Now().UnixMilli()
	if err := postgres.NewTrackRepo(db).Insert(context.Background(), vessel, domain.GPSPosition{
		Latitude: 41.0, Longitude: 29.0, TimestampMillis: now - 30000,
	}); err != nil {
		t.Fatalf("seed track: %v", err)
	}

	// A fresh service resumes from the stored fix, so the first live fix
	// already yields a reading.
	deps := setupTestDeps(db)
	reading, err := deps.Navigation.Ingest(context.Background(), vessel, domain.GPSPosition{
		Latitude: 41.0, Longitude: 29.005, TimestampMillis: now,
	}, nil)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if reading == nil {
		t.Fatal("expected a reading resumed from track history")
	}
	if reading.Raw.SOG <= 0 {
		t.Errorf("expected positive SOG, got %v", reading.Raw.SOG)
	}
}
