package viewer

import (
	"math"
	"time"

	"github.com/mobile-next/galleryview/types"
)

// GestureSession lives while at least one contact is down
type GestureSession struct {
	// origin of the first contact, reset on 0->1 and 1->2
	StartPoint types.TouchPoint
	StartTime  time.Time

	ContactCount int
	MaxContacts  int
	Recognizer   Recognizer

	// last single-contact position, used for pan deltas and release deltas
	LastPoint types.TouchPoint

	InitialPinchDistance float64
	InitialScale         float64

	pinchIDs   [2]int
	pinchByID  bool
	panPrimed  bool
	frozen     bool // more than two contacts right now
	invalid    bool // started with more than two contacts
	ended      bool // pinch lost a contact, wait for all-up
	suppressed bool // began while a transition was animating
}

// Active reports whether input of this session may still change the view
func (s *GestureSession) Active() bool {
	return !s.invalid && !s.ended && !s.suppressed && !s.frozen
}

type trackKind int

const (
	trackIgnored trackKind = iota
	trackBegin             // 0 -> n contacts
	trackChange            // contact count changed while the session lives
	trackMove
	trackEnd // last contact lifted
)

type trackEvent struct {
	kind    trackKind
	session *GestureSession
	prev    int // contact count before this event
	count   int
	points  []types.TouchPoint
	// previous single-contact position, valid for moves
	prevPoint types.TouchPoint
}

// tracker turns raw contact lists into session transitions. Every list
// holds the contacts that are down after the event.
type tracker struct {
	session *GestureSession
}

func (t *tracker) update(phase types.TouchPhase, points []types.TouchPoint, now time.Time) trackEvent {
	switch phase {
	case types.TouchStart:
		return t.down(points, now)
	case types.TouchMove:
		return t.move(points)
	case types.TouchEnd:
		return t.up(points)
	}
	return trackEvent{kind: trackIgnored}
}

func (t *tracker) down(points []types.TouchPoint, now time.Time) trackEvent {
	if len(points) == 0 {
		return trackEvent{kind: trackIgnored}
	}

	if t.session == nil {
		s := &GestureSession{
			StartPoint:   points[0],
			StartTime:    now,
			LastPoint:    points[0],
			ContactCount: len(points),
			MaxContacts:  len(points),
		}
		if len(points) > 2 {
			s.invalid = true
		}
		t.session = s
		return trackEvent{kind: trackBegin, session: s, count: len(points), points: points}
	}

	s := t.session
	prev := s.ContactCount
	s.ContactCount = len(points)
	if s.ContactCount > s.MaxContacts {
		s.MaxContacts = s.ContactCount
	}
	if prev == 1 && s.ContactCount == 2 {
		s.StartPoint = points[0]
		s.StartTime = now
	}
	if s.ContactCount == 1 {
		s.LastPoint = points[0]
	}
	return trackEvent{kind: trackChange, session: s, prev: prev, count: s.ContactCount, points: points}
}

func (t *tracker) move(points []types.TouchPoint) trackEvent {
	s := t.session
	// a move with no contacts, or with a count we never saw go down, is noise
	if s == nil || len(points) == 0 || len(points) != s.ContactCount {
		return trackEvent{kind: trackIgnored}
	}

	ev := trackEvent{kind: trackMove, session: s, prev: s.ContactCount, count: s.ContactCount, points: points}
	if len(points) == 1 {
		ev.prevPoint = s.LastPoint
		s.LastPoint = points[0]
	}
	return ev
}

func (t *tracker) up(points []types.TouchPoint) trackEvent {
	s := t.session
	if s == nil {
		return trackEvent{kind: trackIgnored}
	}

	prev := s.ContactCount
	s.ContactCount = len(points)
	if len(points) == 0 {
		t.session = nil
		return trackEvent{kind: trackEnd, session: s, prev: prev}
	}
	if len(points) == 1 && prev != 1 {
		s.LastPoint = points[0]
	}
	return trackEvent{kind: trackChange, session: s, prev: prev, count: s.ContactCount, points: points}
}

func distance(a, b types.TouchPoint) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
