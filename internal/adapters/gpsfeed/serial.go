package gpsfeed

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/fishivo/geocore/internal/core/ports"
	"github.com/fishivo/geocore/internal/pkg/metrics"
)

// SerialSource reads NMEA 0183 from a GPS receiver on a serial port and
// attributes every fix to one vessel.
type SerialSource struct {
	PortName string
	BaudRate int
	VesselID string
}

// Run opens the port and feeds fixes to handler until ctx is cancelled or
// the port fails.
func (s *SerialSource) Run(ctx context.Context, handler ports.FixHandler) error {
	port, err := serial.Open(serial.OpenOptions{
		PortName:        s.PortName,
		BaudRate:        uint(s.BaudRate),
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	})
	if err != nil {
		return fmt.Errorf("open %s: %w", s.PortName, err)
	}
	slog.Info("gps serial port opened", "port", s.PortName, "baud", s.BaudRate)

	// Closing the port unblocks the pending read.
	stop := context.AfterFunc(ctx, func() { _ = port.Close() })
	defer func() {
		if stop() {
			_ = port.Close()
		}
	}()

	err = readNMEA(ctx, port, s.VesselID, handler)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// readNMEA decodes lines from r until EOF or a read error.
func readNMEA(ctx context.Context, r io.Reader, vesselID string, handler ports.FixHandler) error {
	var dec Decoder
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fix, ok, err := dec.Decode(scanner.Text())
		if err != nil {
			if !errors.Is(err, ErrNoFix) {
				slog.Debug("nmea sentence rejected", "error", err)
			}
			metrics.FixesRejected.WithLabelValues("serial").Inc()
			continue
		}
		if !ok {
			continue
		}
		if err := handler(ctx, vesselID, fix, nil); err != nil {
			slog.Warn("fix handler failed", "vessel", vesselID, "error", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read nmea: %w", err)
	}
	return nil
}
