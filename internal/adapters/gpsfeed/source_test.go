package gpsfeed

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fishivo/geocore/internal/core/domain"
)

func TestReadNMEA(t *testing.T) {
	stream := strings.Join([]string{
		"$GPGGA,081836.00,4100.906,N,02858.770,E,1,09,1.2,12.0,M,36.0,M,,*59",
		"$GPRMC,081836.50,A,4100.906,N,02858.770,E,5.2,271.0,011026,,,A*55",
		"$GPRMC,123520,V,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*77",
		"noise",
		"$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A",
	}, "\r\n")

	var got []domain.GPSPosition
	handler := func(ctx context.Context, vesselID string, fix domain.GPSPosition, heading *float64) error {
		if vesselID != "tekne-7" {
			t.Errorf("vessel = %s", vesselID)
		}
		if heading != nil {
			t.Error("serial fixes carry no compass heading")
		}
		got = append(got, fix)
		return errors.New("handler errors are logged, not fatal")
	}

	if err := readNMEA(context.Background(), strings.NewReader(stream), "tekne-7", handler); err != nil {
		t.Fatalf("readNMEA: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 fixes, got %d", len(got))
	}
	if got[0].Accuracy == nil || got[1].Accuracy == nil {
		t.Error("expected accuracy from the preceding GGA on both fixes")
	}
}

func TestDecodeMQTTFix(t *testing.T) {
	payload := []byte(`{"vessel_id":"v9","latitude":41.01,"longitude":28.97,"timestamp":1759306716000,"heading":270,"compass_heading":268.5}`)
	vessel, fix, heading, err := decodeMQTTFix("geocore/fixes/ignored", payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vessel != "v9" || fix.Latitude != 41.01 || fix.TimestampMillis != 1759306716000 {
		t.Errorf("unexpected fix %s %+v", vessel, fix)
	}
	if fix.Heading == nil || *fix.Heading != 270 || heading == nil || *heading != 268.5 {
		t.Errorf("headings = %v / %v", fix.Heading, heading)
	}

	vessel, fix, _, err = decodeMQTTFix("geocore/fixes/v3", []byte(`{"latitude":1,"longitude":2}`))
	if err != nil || vessel != "v3" {
		t.Errorf("topic fallback: vessel=%q err=%v", vessel, err)
	}
	if fix.TimestampMillis == 0 {
		t.Error("missing timestamp should default to receive time")
	}

	if _, _, _, err := decodeMQTTFix("fixes", []byte(`{"latitude":1}`)); !errors.Is(err, errMissingVessel) {
		t.Errorf("expected errMissingVessel, got %v", err)
	}
	if _, _, _, err := decodeMQTTFix("geocore/fixes/v1", []byte(`{`)); err == nil {
		t.Error("expected decode error")
	}
}
