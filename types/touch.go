package types

import "fmt"

// TouchPoint is one contact on the screen, sampled at event time.
// ID is optional. When two contacts report different ids the pinch
// recognizer follows them by id; otherwise it uses list order.
type TouchPoint struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	ID int     `json:"id,omitempty"`
}

// TouchPhase is the kind of raw touch event
type TouchPhase string

const (
	TouchStart TouchPhase = "start"
	TouchMove  TouchPhase = "move"
	TouchEnd   TouchPhase = "end"
)

// ParseTouchPhase validates a phase received over the wire
func ParseTouchPhase(s string) (TouchPhase, error) {
	switch TouchPhase(s) {
	case TouchStart, TouchMove, TouchEnd:
		return TouchPhase(s), nil
	}
	return "", fmt.Errorf("invalid touch phase '%s', expected one of: start, move, end", s)
}

// Size represents width and height dimensions.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
