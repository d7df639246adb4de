package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/fishivo/geocore/internal/core/domain"
	"github.com/fishivo/geocore/internal/core/ports"
)

// Subscriber consumes geocore subjects from NATS JetStream. It implements
// ports.NavigationSubscriber and, over the fix subjects, ports.FixSource.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber connects to NATS and enables JetStream.
func NewSubscriber(url string) (*Subscriber, error) {
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
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeNavigation delivers every published reading to handler.
func (s *Subscriber) SubscribeNavigation(ctx context.Context, handler func(ctx context.Context, r *domain.NavigationReading) error) error {
	sub, err := s.js.Subscribe(NavigationSubject(""), func(msg *nats.Msg) {
		r, err := DecodeReading(msg.Data)
		if err != nil {
			slog.Warn("drop undecodable reading", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, r); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.DeliverNew(),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Run consumes fixes from the durable work queue until ctx is done.
// A fix the handler rejects is redelivered up to three times.
func (s *Subscriber) Run(ctx context.Context, handler ports.FixHandler) error {
	sub, err := s.js.Subscribe(FixSubject(""), func(msg *nats.Msg) {
		var fm FixMessage
		if err := json.Unmarshal(msg.Data, &fm); err != nil || fm.VesselID == "" {
			slog.Warn("drop malformed fix", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, fm.VesselID, fm.Position, fm.CompassHeading); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("navigator"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)

	<-ctx.Done()
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
