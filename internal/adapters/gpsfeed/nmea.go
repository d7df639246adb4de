// Package gpsfeed reads GPS fixes from receivers and brokers: NMEA 0183
// over a serial line, or JSON fixes over MQTT.
package gpsfeed

import (
	"errors"
	"fmt"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"

	"github.com/fishivo/geocore/internal/core/domain"
	"github.com/fishivo/geocore/internal/pkg/navigation"
)

// uere is the nominal user-equivalent range error in metres used to turn
// HDOP into a horizontal accuracy estimate.
const uere = 5.0

// ErrNoFix reports a well-formed sentence that carries no usable position.
var ErrNoFix = errors.New("no gps fix")

// Decoder turns a stream of NMEA sentences into fixes. RMC sentences
// produce fixes; GGA sentences refresh the accuracy attached to them.
// A Decoder is not safe for concurrent use.
type Decoder struct {
	accuracy *float64
}

// Decode parses one line. It returns ok == false, with a nil error, for
// sentences that are valid but do not produce a fix (GGA, other types,
// blank lines).
func (d *Decoder) Decode(line string) (domain.GPSPosition, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || !strings.HasPrefix(line, "$") {
		return domain.GPSPosition{}, false, nil
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		return domain.GPSPosition{}, false, fmt.Errorf("parse nmea: %w", err)
	}

	switch sentence.DataType() {
	case nmea.TypeGGA:
		gga := sentence.(nmea.GGA)
		if gga.FixQuality == nmea.Invalid || gga.HDOP <= 0 {
			d.accuracy = nil
			return domain.GPSPosition{}, false, nil
		}
		acc := gga.HDOP * uere
		d.accuracy = &acc
		return domain.GPSPosition{}, false, nil

	case nmea.TypeRMC:
		rmc := sentence.(nmea.RMC)
		if rmc.Validity != nmea.ValidRMC {
			return domain.GPSPosition{}, false, ErrNoFix
		}
		if !rmc.Time.Valid || !rmc.Date.Valid {
			return domain.GPSPosition{}, false, fmt.Errorf("%w: missing time or date", ErrNoFix)
		}

		speed := navigation.KnotsToMps(rmc.Speed)
		course := rmc.Course
		fix := domain.GPSPosition{
			Latitude:        rmc.Latitude,
			Longitude:       rmc.Longitude,
			TimestampMillis: rmcTime(rmc.Date, rmc.Time).UnixMilli(),
			Speed:           &speed,
			Heading:         &course,
		}
		if d.accuracy != nil {
			acc := *d.accuracy
			fix.Accuracy = &acc
		}
		return fix, true, nil
	}

	return domain.GPSPosition{}, false, nil
}

// rmcTime combines the RMC date and time of day. Two-digit years from 80
// upwards are read as 19xx.
func rmcTime(d nmea.Date, t nmea.Time) time.Time {
	year := 2000 + d.YY
	if d.YY >= 80 {
		year = 1900 + d.YY
	}
	return time.Date(year, time.Month(d.MM), d.DD,
		t.Hour, t.Minute, t.Second, t.Millisecond*int(time.Millisecond), time.UTC)
}
