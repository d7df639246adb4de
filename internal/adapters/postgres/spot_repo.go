package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fishivo/geocore/internal/core/domain"
	"github.com/fishivo/geocore/internal/pkg/geospatial"
)

// SpotRepo implements ports.SpotRepository with pgx and PostGIS.
type SpotRepo struct {
	db *DB
}

// NewSpotRepo creates a new SpotRepo.
func NewSpotRepo(db *DB) *SpotRepo {
	return &SpotRepo{db: db}
}

const upsertSpotSQL = `
	INSERT INTO spots (id, name, location)
	VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name, location = EXCLUDED.location, updated_at = now()
`

// Upsert inserts or updates a single spot.
func (r *SpotRepo) Upsert(ctx context.Context, s *domain.Spot) error {
	_, err := r.db.Pool.Exec(ctx, upsertSpotSQL, s.ID, s.Name, s.Location.Longitude, s.Location.Latitude)
	return err
}

// UpsertBatch inserts many spots using pgx.Batch.
func (r *SpotRepo) UpsertBatch(ctx context.Context, spots []domain.Spot) error {
	batch := &pgx.Batch{}
	for _, s := range spots {
		batch.Queue(upsertSpotSQL, s.ID, s.Name, s.Location.Longitude, s.Location.Latitude)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range spots {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// GetByID returns a spot by id.
func (r *SpotRepo) GetByID(ctx context.Context, id string) (*domain.Spot, error) {
	var s domain.Spot
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name,
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lon,
		       created_at
		FROM spots WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.Location.Latitude, &s.Location.Longitude, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// InBounds returns spots covered by bounds, oldest first. ST_Covers keeps
// points on the edge, matching the inclusive in-memory filter.
func (r *SpotRepo) InBounds(ctx context.Context, b domain.MapBounds, limit int) ([]domain.Spot, error) {
	if limit <= 0 {
		limit = 1 << 30
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name,
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lon,
		       created_at
		FROM spots
		WHERE ST_Covers(ST_GeomFromText($1, 4326), location::geometry)
		ORDER BY created_at, id
		LIMIT $2
	`, geospatial.BoundsToPostGIS(b), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSpots(rows)
}

// ListInBounds pages through the spots covered by bounds.
func (r *SpotRepo) ListInBounds(ctx context.Context, b domain.MapBounds, offset, limit int) ([]domain.Spot, int, error) {
	wkt := geospatial.BoundsToPostGIS(b)

	var total int
	if err := r.db.Pool.QueryRow(ctx, `
		SELECT count(*) FROM spots
		WHERE ST_Covers(ST_GeomFromText($1, 4326), location::geometry)
	`, wkt).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count spots: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name,
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lon,
		       created_at
		FROM spots
		WHERE ST_Covers(ST_GeomFromText($1, 4326), location::geometry)
		ORDER BY created_at, id
		OFFSET $2 LIMIT $3
	`, wkt, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	spots, err := scanSpots(rows)
	return spots, total, err
}

func scanSpots(rows pgx.Rows) ([]domain.Spot, error) {
	spots := []domain.Spot{}
	for rows.Next() {
		var s domain.Spot
		if err := rows.Scan(&s.ID, &s.Name, &s.Location.Latitude, &s.Location.Longitude, &s.CreatedAt); err != nil {
			return nil, err
		}
		spots = append(spots, s)
	}
	return spots, rows.Err()
}
