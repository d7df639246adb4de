package gpsfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/fishivo/geocore/internal/core/domain"
	"github.com/fishivo/geocore/internal/core/ports"
	"github.com/fishivo/geocore/internal/pkg/metrics"
)

// MQTTSource subscribes to JSON fixes published by on-board loggers.
// The vessel id comes from the payload or, failing that, from the last
// topic level (geocore/fixes/<vessel>).
type MQTTSource struct {
	Broker   string
	Topic    string
	ClientID string
}

// mqttFix is the payload accepted on the fix topic.
type mqttFix struct {
	VesselID       string   `json:"vessel_id"`
	CompassHeading *float64 `json:"compass_heading"`
	domain.GPSPosition
}

var errMissingVessel = errors.New("fix has no vessel id")

// decodeMQTTFix parses a payload received on topic.
func decodeMQTTFix(topic string, payload []byte) (string, domain.GPSPosition, *float64, error) {
	var m mqttFix
	if err := json.Unmarshal(payload, &m); err != nil {
		return "", domain.GPSPosition{}, nil, fmt.Errorf("decode fix: %w", err)
	}
	vessel := m.VesselID
	if vessel == "" {
		if i := strings.LastIndexByte(topic, '/'); i >= 0 && i < len(topic)-1 {
			vessel = topic[i+1:]
		}
	}
	if vessel == "" {
		return "", domain.GPSPosition{}, nil, errMissingVessel
	}
	if m.TimestampMillis == 0 {
		m.TimestampMillis = time.Now().UnixMilli()
	}
	return vessel, m.GPSPosition, m.CompassHeading, nil
}

// Run connects, subscribes and feeds fixes to handler until ctx is done.
func (s *MQTTSource) Run(ctx context.Context, handler ports.FixHandler) error {
	opts := mqtt.NewClientOptions().
		AddBroker(s.Broker).
		SetClientID(s.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	defer client.Disconnect(250)
	slog.Info("gps mqtt source connected", "broker", s.Broker, "topic", s.Topic)

	token := client.Subscribe(s.Topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		vessel, fix, heading, err := decodeMQTTFix(msg.Topic(), msg.Payload())
		if err != nil {
			metrics.FixesRejected.WithLabelValues("mqtt").Inc()
			slog.Warn("mqtt fix rejected", "topic", msg.Topic(), "error", err)
			return
		}
		if err := handler(ctx, vessel, fix, heading); err != nil {
			slog.Warn("fix handler failed", "vessel", vessel, "error", err)
		}
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt subscribe %s: %w", s.Topic, token.Error())
	}

	<-ctx.Done()
	client.Unsubscribe(s.Topic).WaitTimeout(time.Second)
	return nil
}
