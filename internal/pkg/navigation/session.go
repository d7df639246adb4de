package navigation

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fishivo/geocore/internal/core/domain"
)

// Session tracks one position stream: the previous fix and the smoothing
// windows for speed and heading. A Session is safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	id        string
	startedAt time.Time
	last      *domain.GPSPosition
	fixes     int
	sog       *MovingAverage
	heading   *MovingAverage
}

// Update is the outcome of feeding one fix to a Session.
type Update struct {
	SessionID string
	Restarted bool // a gap restarted the stream before this fix
	Raw       domain.NavigationData
	Smoothed  domain.NavigationData
}

// SessionSnapshot is a read-only view of a Session.
type SessionSnapshot struct {
	ID              string              `json:"id"`
	StartedAt       time.Time           `json:"started_at"`
	Fixes           int                 `json:"fixes"`
	Last            *domain.GPSPosition `json:"last,omitempty"`
	SmoothedSOG     float64             `json:"smoothed_sog"`
	SmoothedHeading float64             `json:"smoothed_heading"`
}

// NewSession starts an empty session smoothing over window readings.
func NewSession(window int) *Session {
	return &Session{
		id:        uuid.NewString(),
		startedAt: time.Now().UTC(),
		sog:       NewMovingAverage(window),
		heading:   NewMovingAverage(window),
	}
}

// Advance feeds fix to the session. The first fix of a stream only primes
// the session and returns ok == false. When the fix arrives more than
// resetGap after the previous one the stream is treated as restarted:
// smoothing state is dropped, a new session id is issued and the fix
// primes the new stream. A zero resetGap disables the check.
//
// Heading precedence is compass, then the fix's own heading, then COG.
func (s *Session) Advance(fix domain.GPSPosition, compassHeading *float64, resetGap time.Duration) (Update, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	restarted := false
	if s.last != nil && resetGap > 0 {
		gap := time.Duration(fix.TimestampMillis-s.last.TimestampMillis) * time.Millisecond
		if gap > resetGap {
			s.resetLocked()
			restarted = true
		}
	}

	prev := s.last
	cur := fix
	s.last = &cur
	s.fixes++
	if prev == nil {
		return Update{SessionID: s.id, Restarted: restarted}, false
	}

	raw := Calculate(*prev, fix, 0)
	switch {
	case compassHeading != nil:
		raw.Heading = normalizeDegrees(*compassHeading)
	case fix.Heading != nil:
		raw.Heading = normalizeDegrees(*fix.Heading)
	default:
		raw.Heading = raw.COG
	}

	// Heading is averaged as a plain scalar, so readings straddling north
	// (359° and 1°) smooth towards 180°.
	smoothed := raw
	smoothed.SOG = s.sog.Add(raw.SOG)
	smoothed.Heading = s.heading.Add(raw.Heading)

	return Update{SessionID: s.id, Raw: raw, Smoothed: smoothed}, true
}

// Reset clears the session as if no fix had been seen.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.id = uuid.NewString()
	s.startedAt = time.Now().UTC()
	s.last = nil
	s.fixes = 0
	s.sog.Reset()
	s.heading.Reset()
}

// Snapshot returns the current state.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := SessionSnapshot{
		ID:              s.id,
		StartedAt:       s.startedAt,
		Fixes:           s.fixes,
		SmoothedSOG:     s.sog.Average(),
		SmoothedHeading: s.heading.Average(),
	}
	if s.last != nil {
		last := *s.last
		snap.Last = &last
	}
	return snap
}
