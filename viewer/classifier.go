package viewer

import (
	"github.com/mobile-next/galleryview/types"
	"github.com/mobile-next/galleryview/utils"
)

// Recognizer is the interpretation a gesture session is locked to
type Recognizer int

const (
	RecognizerNone Recognizer = iota
	RecognizerPinch
	RecognizerPan
	RecognizerSwipeNav
	RecognizerSwipeDismiss
)

func (r Recognizer) String() string {
	switch r {
	case RecognizerPinch:
		return "pinch"
	case RecognizerPan:
		return "pan"
	case RecognizerSwipeNav:
		return "swipe"
	case RecognizerSwipeDismiss:
		return "dismiss"
	default:
		return "none"
	}
}

// classifier locks a recognizer per session and routes moves to it
type classifier struct {
	tf *transformer
}

func (c *classifier) begin(s *GestureSession, points []types.TouchPoint) {
	switch {
	case s.invalid:
		s.Recognizer = RecognizerNone
		utils.Verbose("Gesture started with %d contacts, ignoring until all lift", len(points))
	case len(points) == 2:
		c.startPinch(s, points)
	case c.tf.state.Zoomed():
		s.Recognizer = RecognizerPan
		utils.Verbose("Gesture locked to %s", s.Recognizer)
	default:
		// swipe navigate vs dismiss is settled on release
		s.Recognizer = RecognizerSwipeNav
		utils.Verbose("Gesture locked to %s", s.Recognizer)
	}
}

func (c *classifier) contactsChanged(s *GestureSession, prev, count int, points []types.TouchPoint) {
	if s.invalid || s.ended || s.suppressed {
		return
	}

	if count > 2 {
		// extra contacts never reclassify; a pinch keeps tracking its pair
		if s.Recognizer != RecognizerPinch {
			s.frozen = true
		}
		return
	}
	s.frozen = false

	switch count {
	case 2:
		if s.Recognizer == RecognizerPinch {
			// a third contact came and went, the pinch carries on
			return
		}
		// pinch wins over any single-finger interpretation
		c.tf.setOffset(0)
		c.startPinch(s, points)
	case 1:
		if s.Recognizer == RecognizerPinch {
			// no downgrade, the user has to start a new gesture
			s.ended = true
			utils.Verbose("Pinch lost a contact, gesture ended")
		}
	}
}

func (c *classifier) move(s *GestureSession, ev trackEvent) {
	if !s.Active() {
		return
	}

	switch s.Recognizer {
	case RecognizerPinch:
		if len(ev.points) < 2 {
			return
		}
		c.tf.pinch(s.InitialScale, s.InitialPinchDistance, pinchDistance(s, ev.points))
	case RecognizerPan:
		if !s.panPrimed {
			// the first move only primes, so the image does not jump
			s.panPrimed = true
			return
		}
		cur := ev.points[0]
		c.tf.pan(cur.X-ev.prevPoint.X, cur.Y-ev.prevPoint.Y)
	case RecognizerSwipeNav:
		// only the horizontal axis is rendered live
		c.tf.swipe(ev.points[0].X - s.StartPoint.X)
	}
}

func (c *classifier) startPinch(s *GestureSession, points []types.TouchPoint) {
	s.Recognizer = RecognizerPinch
	s.InitialScale = c.tf.state.Scale
	s.InitialPinchDistance = distance(points[0], points[1])
	s.pinchByID = points[0].ID != points[1].ID
	s.pinchIDs = [2]int{points[0].ID, points[1].ID}
	utils.Verbose("Gesture locked to %s, initial distance %.1f, initial scale %.2f", s.Recognizer, s.InitialPinchDistance, s.InitialScale)
}

// pinchDistance measures between the contacts that started the pinch when
// the input carries distinct ids, otherwise between the first two reported
func pinchDistance(s *GestureSession, points []types.TouchPoint) float64 {
	if s.pinchByID {
		a, okA := findContact(points, s.pinchIDs[0])
		b, okB := findContact(points, s.pinchIDs[1])
		if okA && okB {
			return distance(a, b)
		}
	}
	return distance(points[0], points[1])
}

func findContact(points []types.TouchPoint, id int) (types.TouchPoint, bool) {
	for _, p := range points {
		if p.ID == id {
			return p, true
		}
	}
	return types.TouchPoint{}, false
}
