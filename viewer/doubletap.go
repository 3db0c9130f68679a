package viewer

import (
	"time"

	"github.com/mobile-next/galleryview/types"
)

// doubleTap watches finished sessions for two quick taps close together.
// It runs beside the per-session recognizer, never instead of it.
type doubleTap struct {
	th *Thresholds

	hasTap bool
	lastAt time.Time
	last   types.TouchPoint
}

// observe is called for every finished, valid session and reports whether
// it completed a double tap
func (d *doubleTap) observe(s *GestureSession, now time.Time) bool {
	if !d.isTap(s, now) {
		d.hasTap = false
		return false
	}

	if d.hasTap && now.Sub(d.lastAt) <= d.th.DoubleTapInterval && distance(d.last, s.StartPoint) <= d.th.DoubleTapSlop {
		d.hasTap = false
		return true
	}

	d.hasTap = true
	d.lastAt = now
	d.last = s.StartPoint
	return false
}

func (d *doubleTap) isTap(s *GestureSession, now time.Time) bool {
	return s.MaxContacts == 1 &&
		distance(s.StartPoint, s.LastPoint) <= d.th.TapSlop &&
		now.Sub(s.StartTime) <= d.th.TapMaxDuration
}

func (d *doubleTap) reset() {
	d.hasTap = false
}
