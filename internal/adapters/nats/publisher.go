package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/fishivo/geocore/internal/core/domain"
)

// Publisher implements ports.NavigationPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := Connect(url)
	if err != nil {
		return nil, err
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if err := ensureStreams(js); err != nil {
		conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishNavigation publishes a reading, protobuf-encoded.
func (p *Publisher) PublishNavigation(ctx context.Context, r *domain.NavigationReading) error {
	data, err := EncodeReading(r)
	if err != nil {
		return err
	}
	msg := nats.NewMsg(NavigationSubject(r.VesselID))
	msg.Header.Set("Content-Type", ContentTypeReading)
	msg.Data = data
	_, err = p.js.PublishMsg(msg, nats.Context(ctx))
	return err
}

// PublishFix publishes a raw fix for the navigator to consume.
func (p *Publisher) PublishFix(ctx context.Context, vesselID string, fix domain.GPSPosition, compassHeading *float64) error {
	data, err := json.Marshal(FixMessage{VesselID: vesselID, Position: fix, CompassHeading: compassHeading})
	if err != nil {
		return err
	}
	msg := nats.NewMsg(FixSubject(vesselID))
	msg.Header.Set("Content-Type", ContentTypeFix)
	msg.Data = data
	_, err = p.js.PublishMsg(msg, nats.Context(ctx))
	return err
}

// Conn exposes the underlying connection for plain subscribers.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
