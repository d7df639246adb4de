package domain

import "errors"

var (
	ErrInvalidBounds     = errors.New("invalid bounds")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrInvalidZoom       = errors.New("invalid zoom")
	ErrInvalidPosition   = errors.New("invalid gps position")
	ErrUnknownVessel     = errors.New("unknown vessel")
	ErrNotFound          = errors.New("not found")
)
