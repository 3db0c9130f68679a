package viewer

import (
	"fmt"
	"math"
)

const scaleEpsilon = 1e-6

// Transform is the visual state applied to the displayed image
type Transform struct {
	Scale       float64 `json:"scale"`
	PanX        float64 `json:"panX"`
	PanY        float64 `json:"panY"`
	SwipeOffset float64 `json:"swipeOffset"`
}

// Zoomed reports scale > 1, the only state in which pan offset applies
func (t Transform) Zoomed() bool {
	return t.Scale > 1+scaleEpsilon
}

// AtRest reports scale == 1, the only state in which swipe offset applies
func (t Transform) AtRest() bool {
	return math.Abs(t.Scale-1) <= scaleEpsilon
}

// Matrix composes translate(swipe) * scale * translate(pan / scale)
func (t Transform) Matrix() Affine {
	m := identity()
	if t.AtRest() {
		m = m.Multiply(translate(t.SwipeOffset, 0))
	}
	m = m.Multiply(uniformScale(t.Scale))
	if t.Zoomed() {
		m = m.Multiply(translate(t.PanX/t.Scale, t.PanY/t.Scale))
	}
	return m
}

// CSS renders the transform in CSS transform syntax
func (t Transform) CSS() string {
	swipe, panX, panY := 0.0, 0.0, 0.0
	if t.AtRest() {
		swipe = t.SwipeOffset
	}
	if t.Zoomed() {
		panX, panY = t.PanX/t.Scale, t.PanY/t.Scale
	}
	return fmt.Sprintf("translateX(%.2fpx) scale(%.4f) translate(%.2fpx, %.2fpx)", swipe, t.Scale, panX, panY)
}

// transformer owns a Transform and applies recognizer updates to it
type transformer struct {
	th    *Thresholds
	state Transform
}

func newTransformer(th *Thresholds) *transformer {
	return &transformer{th: th, state: Transform{Scale: 1}}
}

func (e *transformer) pinch(initialScale, initialDistance, currentDistance float64) {
	if initialDistance <= 0 {
		return
	}
	e.state.Scale = clamp(initialScale*(currentDistance/initialDistance), e.th.MinScale, e.th.MaxScale)
}

func (e *transformer) pan(dx, dy float64) {
	if !e.state.Zoomed() {
		return
	}
	e.state.PanX += dx
	e.state.PanY += dy
}

func (e *transformer) swipe(dx float64) {
	if !e.state.AtRest() {
		return
	}
	e.state.SwipeOffset = clamp(dx, -e.th.SwipeClamp, e.th.SwipeClamp)
}

func (e *transformer) setOffset(offset float64) {
	e.state.SwipeOffset = offset
}

// toggleZoom flips between rest and the double-tap zoom level
func (e *transformer) toggleZoom() {
	if e.state.AtRest() {
		e.state.Scale = e.th.DoubleTapScale
	} else {
		e.state.Scale = 1
	}
	e.state.PanX, e.state.PanY = 0, 0
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
