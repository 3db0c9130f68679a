package viewer

import (
	"math"
	"time"
)

// Decision is the outcome of a released single-finger gesture at rest
type Decision int

const (
	DecisionCancel Decision = iota
	DecisionNext
	DecisionPrevious
	DecisionDismiss
)

func (d Decision) String() string {
	switch d {
	case DecisionNext:
		return "next"
	case DecisionPrevious:
		return "previous"
	case DecisionDismiss:
		return "dismiss"
	default:
		return "cancel"
	}
}

// Release describes a finished swipe candidate
type Release struct {
	DeltaX      float64
	DeltaY      float64
	Elapsed     time.Duration
	SwipeOffset float64
	Index       int
	Total       int
}

// Velocity is the horizontal speed in px/ms, with the elapsed time floored
// at one millisecond
func (r Release) Velocity() float64 {
	ms := float64(r.Elapsed) / float64(time.Millisecond)
	return math.Abs(r.DeltaX) / math.Max(ms, 1)
}

// Resolve decides between navigating, dismissing and snapping back.
// Navigation past either end of the list resolves to cancel.
func Resolve(th Thresholds, r Release) Decision {
	absX, absY := math.Abs(r.DeltaX), math.Abs(r.DeltaY)

	flick := absX > th.MinSwipeDistance && r.Elapsed < th.MaxSwipeDuration && r.Velocity() > th.MinSwipeVelocity
	horizontal := math.Abs(r.SwipeOffset) > th.CommitOffset || flick

	if horizontal {
		switch {
		case r.DeltaX < 0 && r.Index < r.Total-1:
			return DecisionNext
		case r.DeltaX > 0 && r.Index > 0:
			return DecisionPrevious
		}
		return DecisionCancel
	}

	// upward motion never dismisses
	if r.DeltaY > th.DismissDistance && absY > th.DismissAxisRatio*absX {
		return DecisionDismiss
	}

	return DecisionCancel
}
