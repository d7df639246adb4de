package navigation

import (
	"sync"
	"testing"
	"time"

	"github.com/fishivo/geocore/internal/core/domain"
)

func fixAt(lat, lng float64, ms int64) domain.GPSPosition {
	return domain.GPSPosition{Latitude: lat, Longitude: lng, TimestampMillis: ms}
}

func ptr(v float64) *float64 { return &v }

func TestSession_FirstFixPrimes(t *testing.T) {
	s := NewSession(3)
	up, ok := s.Advance(fixAt(41, 29, 0), nil, 0)
	if ok {
		t.Fatal("first fix should not produce a reading")
	}
	if up.SessionID == "" {
		t.Error("session id missing")
	}
	if snap := s.Snapshot(); snap.Fixes != 1 || snap.Last == nil {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestSession_HeadingPrecedence(t *testing.T) {
	s := NewSession(3)
	s.Advance(fixAt(41, 29, 0), nil, 0)

	// Heading falls back to COG (due north).
	up, ok := s.Advance(fixAt(41+1.0/60, 29, 600_000), nil, 0)
	if !ok {
		t.Fatal("expected a reading")
	}
	if !approx(up.Raw.Heading, 0, 1e-9) {
		t.Errorf("COG fallback heading = %v", up.Raw.Heading)
	}

	withFixHeading := fixAt(41+2.0/60, 29, 1_200_000)
	withFixHeading.Heading = ptr(45)
	up, _ = s.Advance(withFixHeading, nil, 0)
	if up.Raw.Heading != 45 {
		t.Errorf("fix heading = %v, want 45", up.Raw.Heading)
	}

	withFixHeading.TimestampMillis = 1_800_000
	up, _ = s.Advance(withFixHeading, ptr(-10), 0)
	if up.Raw.Heading != 350 {
		t.Errorf("compass heading = %v, want 350", up.Raw.Heading)
	}
}

func TestSession_SmoothsSOG(t *testing.T) {
	s := NewSession(2)
	s.Advance(fixAt(41, 29, 0), nil, 0)
	// 1 nm per 10 min is 6 kn, then stationary for 10 min is 0 kn.
	up, _ := s.Advance(fixAt(41+1.0/60, 29, 600_000), nil, 0)
	if up.Raw.SOG != 6 || up.Smoothed.SOG != 6 {
		t.Fatalf("first reading raw/smoothed = %v/%v", up.Raw.SOG, up.Smoothed.SOG)
	}
	up, _ = s.Advance(fixAt(41+1.0/60, 29, 1_200_000), nil, 0)
	if up.Raw.SOG != 0 || up.Smoothed.SOG != 3 {
		t.Errorf("second reading raw/smoothed = %v/%v", up.Raw.SOG, up.Smoothed.SOG)
	}
}

func TestSession_GapRestartsStream(t *testing.T) {
	s := NewSession(3)
	first, _ := s.Advance(fixAt(41, 29, 0), nil, time.Minute)
	s.Advance(fixAt(41.01, 29, 30_000), nil, time.Minute)

	up, ok := s.Advance(fixAt(42, 29, 30_000+int64(2*time.Minute/time.Millisecond)), nil, time.Minute)
	if ok {
		t.Fatal("fix after a gap should prime a new stream")
	}
	if up.SessionID == first.SessionID || !up.Restarted {
		t.Errorf("expected a restarted stream with a new id, got %+v", up)
	}
	snap := s.Snapshot()
	if snap.Fixes != 1 || snap.SmoothedSOG != 0 {
		t.Errorf("snapshot after gap = %+v", snap)
	}
}

func TestSession_Reset(t *testing.T) {
	s := NewSession(3)
	s.Advance(fixAt(41, 29, 0), nil, 0)
	s.Advance(fixAt(41.01, 29, 60_000), nil, 0)
	before := s.Snapshot().ID

	s.Reset()
	snap := s.Snapshot()
	if snap.ID == before || snap.Fixes != 0 || snap.Last != nil {
		t.Errorf("snapshot after Reset = %+v", snap)
	}
}

func TestSession_ConcurrentAdvance(t *testing.T) {
	s := NewSession(5)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Advance(fixAt(41+float64(j)*0.001, 29, int64(i*1000+j)), nil, 0)
			}
		}(i)
	}
	wg.Wait()
	if got := s.Snapshot().Fixes; got != 400 {
		t.Errorf("Fixes = %d, want 400", got)
	}
}
