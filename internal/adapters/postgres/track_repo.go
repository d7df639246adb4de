package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fishivo/geocore/internal/core/domain"
)

// TrackRepo implements ports.TrackRepository.
type TrackRepo struct {
	db *DB
}

func NewTrackRepo(db *DB) *TrackRepo {
	return &TrackRepo{db: db}
}

// Insert stores a fix. A second fix with the same timestamp replaces the first.
func (r *TrackRepo) Insert(ctx context.Context, vesselID string, fix domain.GPSPosition) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO tracks (time, vessel_id, location, speed, heading, accuracy)
		VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography, $5, $6, $7)
		ON CONFLICT (vessel_id, time) DO UPDATE
		SET location = EXCLUDED.location, speed = EXCLUDED.speed,
		    heading = EXCLUDED.heading, accuracy = EXCLUDED.accuracy
	`, fix.Time(), vesselID, fix.Longitude, fix.Latitude, fix.Speed, fix.Heading, fix.Accuracy)
	return err
}

// Latest returns the newest stored fix of a vessel.
func (r *TrackRepo) Latest(ctx context.Context, vesselID string) (*domain.GPSPosition, error) {
	var (
		p  domain.GPSPosition
		ts time.Time
	)
	err := r.db.Pool.QueryRow(ctx, `
		SELECT time,
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lon,
		       speed, heading, accuracy
		FROM tracks
		WHERE vessel_id = $1
		ORDER BY time DESC
		LIMIT 1
	`, vesselID).Scan(&ts, &p.Latitude, &p.Longitude, &p.Speed, &p.Heading, &p.Accuracy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.TimestampMillis = ts.UnixMilli()
	return &p, nil
}
