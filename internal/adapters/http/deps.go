package http

import (
	"github.com/nats-io/nats.go"

	"github.com/fishivo/geocore/internal/adapters/postgres"
	"github.com/fishivo/geocore/internal/adapters/valkey"
	"github.com/fishivo/geocore/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Markers    *usecases.MarkerService
	Navigation *usecases.NavigationService
	NATS       *nats.Conn
	DB         *postgres.DB
	Cache      *valkey.Cache
}
