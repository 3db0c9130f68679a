package viewer

import (
	"fmt"
	"time"

	"github.com/mobile-next/galleryview/types"
	"github.com/mobile-next/galleryview/utils"
)

const (
	// DefaultViewportWidth is used when the collaborator does not report one
	DefaultViewportWidth  = 390
	DefaultViewportHeight = 844
)

// Callbacks are the navigation effects requested from the surrounding gallery
type Callbacks struct {
	OnNext     func()
	OnPrevious func()
	OnClose    func()
}

// Options configures a new Controller
type Options struct {
	Index      int
	Total      int
	Viewport   types.Size
	Thresholds *Thresholds
	Clock      Clock
	Callbacks  Callbacks
}

// Controller is one full-screen viewing session. It owns the transform and
// the gesture session exclusively and is not safe for concurrent use.
type Controller struct {
	th       Thresholds
	clock    Clock
	cb       Callbacks
	viewport types.Size

	index    int
	total    int
	openedAt time.Time

	tracker    tracker
	classifier classifier
	tf         *transformer
	tap        doubleTap
	anim       animation
}

// NewController opens a viewer at opts.Index of opts.Total images
func NewController(opts Options) *Controller {
	th := DefaultThresholds()
	if opts.Thresholds != nil {
		th = *opts.Thresholds
	}

	clock := opts.Clock
	if clock == nil {
		clock = SystemClock()
	}

	c := &Controller{
		th:       th,
		clock:    clock,
		cb:       opts.Callbacks,
		viewport: opts.Viewport,
	}
	if c.viewport.Width <= 0 {
		c.viewport.Width = DefaultViewportWidth
	}
	if c.viewport.Height <= 0 {
		c.viewport.Height = DefaultViewportHeight
	}

	c.tf = newTransformer(&c.th)
	c.classifier = classifier{tf: c.tf}
	c.tap = doubleTap{th: &c.th}
	c.openedAt = clock.Now()

	c.SetTotal(opts.Total)
	c.SetIndex(opts.Index)
	return c
}

// TouchStart handles contacts going down. points are all contacts down
// after the event.
func (c *Controller) TouchStart(points []types.TouchPoint) {
	c.handle(types.TouchStart, points)
}

// TouchMove handles contacts moving. points are all contacts currently down.
func (c *Controller) TouchMove(points []types.TouchPoint) {
	c.handle(types.TouchMove, points)
}

// TouchEnd handles contacts lifting. points are the contacts still down.
func (c *Controller) TouchEnd(points []types.TouchPoint) {
	c.handle(types.TouchEnd, points)
}

// Touch dispatches on phase
func (c *Controller) Touch(phase types.TouchPhase, points []types.TouchPoint) {
	c.handle(phase, points)
}

// Tick advances running animations to the clock's current time
func (c *Controller) Tick() {
	c.advance(c.clock.Now())
}

func (c *Controller) handle(phase types.TouchPhase, points []types.TouchPoint) {
	now := c.clock.Now()
	c.advance(now)

	ev := c.tracker.update(phase, points, now)
	switch ev.kind {
	case trackIgnored:
		return
	case trackBegin:
		if c.anim.phase.Transition() {
			// accepted but without effect until the transition is over
			ev.session.suppressed = true
			return
		}
		if c.anim.phase == AnimationSettling {
			c.anim.stop()
			c.tf.setOffset(0)
		}
		c.classifier.begin(ev.session, ev.points)
	case trackChange:
		c.classifier.contactsChanged(ev.session, ev.prev, ev.count, ev.points)
	case trackMove:
		c.classifier.move(ev.session, ev)
	case trackEnd:
		c.release(ev.session, now)
	}
}

func (c *Controller) release(s *GestureSession, now time.Time) {
	if s.invalid || s.suppressed || s.ended {
		// discarded without evaluating thresholds
		c.tap.reset()
		return
	}

	if s.Recognizer == RecognizerSwipeNav {
		r := Release{
			DeltaX:      s.LastPoint.X - s.StartPoint.X,
			DeltaY:      s.LastPoint.Y - s.StartPoint.Y,
			Elapsed:     now.Sub(s.StartTime),
			SwipeOffset: c.tf.state.SwipeOffset,
			Index:       c.index,
			Total:       c.total,
		}

		decision := Resolve(c.th, r)
		utils.Verbose("Swipe released: dx=%.1f dy=%.1f dt=%v v=%.3fpx/ms offset=%.1f -> %s", r.DeltaX, r.DeltaY, r.Elapsed, r.Velocity(), r.SwipeOffset, decision)

		switch decision {
		case DecisionNext, DecisionPrevious:
			c.tap.reset()
			c.commit(decision, now)
			return
		case DecisionDismiss:
			s.Recognizer = RecognizerSwipeDismiss
			c.tap.reset()
			c.tf.setOffset(0)
			if c.cb.OnClose != nil {
				c.cb.OnClose()
			}
			return
		}
		c.settle(now)
	}

	if s.Recognizer == RecognizerPinch {
		c.tap.reset()
		return
	}

	if c.tap.observe(s, now) {
		c.anim.stop()
		c.tf.setOffset(0)
		c.tf.toggleZoom()
		utils.Verbose("Double tap, scale is now %.2f", c.tf.state.Scale)
	}
}

// commit slides the current image out in the direction of travel
func (c *Controller) commit(direction Decision, now time.Time) {
	target := -c.viewport.Width
	if direction == DecisionPrevious {
		target = c.viewport.Width
	}

	c.anim.begin(AnimationSlidingOut, c.tf.state.SwipeOffset, target, now, c.th.SlideDuration)
	c.anim.direction = direction
	utils.Verbose("Committing %s from index %d", direction, c.index)
}

func (c *Controller) settle(now time.Time) {
	if c.tf.state.SwipeOffset == 0 {
		return
	}
	c.anim.begin(AnimationSettling, c.tf.state.SwipeOffset, 0, now, c.th.SettleDuration)
}

func (c *Controller) advance(now time.Time) {
	for c.anim.phase != AnimationIdle {
		offset, done := c.anim.sample(now)
		c.tf.setOffset(offset)
		if !done {
			return
		}

		end := c.anim.end()
		switch c.anim.phase {
		case AnimationSettling, AnimationSlidingIn:
			utils.Verbose("Animation %s finished", c.anim.phase)
			c.anim.stop()
		case AnimationSlidingOut:
			c.anim.phase = AnimationRepositioning
			c.navigate(c.anim.direction)
			// the new image enters from the opposite edge without a visible jump
			entry := -c.anim.to
			c.tf.setOffset(entry)
			c.anim.begin(AnimationSlidingIn, entry, 0, end, c.th.SlideDuration)
		default:
			c.anim.stop()
		}
	}
}

// navigate moves the index while the image is off-screen and tells the gallery
func (c *Controller) navigate(direction Decision) {
	switch direction {
	case DecisionNext:
		if c.index >= c.total-1 {
			return
		}
		c.index++
		utils.Verbose("Navigated to next image, index %d", c.index)
		if c.cb.OnNext != nil {
			c.cb.OnNext()
		}
	case DecisionPrevious:
		if c.index <= 0 {
			return
		}
		c.index--
		utils.Verbose("Navigated to previous image, index %d", c.index)
		if c.cb.OnPrevious != nil {
			c.cb.OnPrevious()
		}
	}
}

// SetIndex is called by the gallery when it shows another image.
// Out of range values are clamped.
func (c *Controller) SetIndex(i int) {
	if i >= c.total {
		i = c.total - 1
	}
	if i < 0 {
		i = 0
	}
	c.index = i
}

// SetTotal updates the number of images, keeping the index in range
func (c *Controller) SetTotal(n int) {
	if n < 0 {
		n = 0
	}
	c.total = n
	c.SetIndex(c.index)
}

// SetViewport changes the slide distance used by navigation animations
func (c *Controller) SetViewport(size types.Size) {
	if size.Width > 0 {
		c.viewport.Width = size.Width
	}
	if size.Height > 0 {
		c.viewport.Height = size.Height
	}
}

// ResetZoom returns to scale 1 with no pan
func (c *Controller) ResetZoom() {
	c.tf.state.Scale = 1
	c.tf.state.PanX, c.tf.state.PanY = 0, 0
}

// Transform returns the transform to render
func (c *Controller) Transform() Transform {
	return c.tf.state
}

func (c *Controller) Index() int {
	return c.index
}

func (c *Controller) Total() int {
	return c.total
}

func (c *Controller) Viewport() types.Size {
	return c.viewport
}

func (c *Controller) Thresholds() Thresholds {
	return c.th
}

// Animating reports whether a navigation transition is running
func (c *Controller) Animating() bool {
	return c.anim.phase.Transition()
}

func (c *Controller) Phase() AnimationPhase {
	return c.anim.phase
}

// Recognizer returns the recognizer of the live gesture, if any
func (c *Controller) Recognizer() Recognizer {
	if c.tracker.session == nil {
		return RecognizerNone
	}
	return c.tracker.session.Recognizer
}

// Dragging reports a live gesture that is moving the image. Renderers
// disable transform transitions while it is true.
func (c *Controller) Dragging() bool {
	s := c.tracker.session
	return s != nil && s.Active() && s.Recognizer != RecognizerNone
}

// Overlay describes the cosmetic chrome around the image
type Overlay struct {
	ShowPreviousHint bool   `json:"showPreviousHint"`
	ShowNextHint     bool   `json:"showNextHint"`
	ShowCounter      bool   `json:"showCounter"`
	Counter          string `json:"counter"`
	ShowZoomHint     bool   `json:"showZoomHint"`
}

// Overlay returns hint and counter visibility at the clock's current time
func (c *Controller) Overlay() Overlay {
	zoomed := c.tf.state.Zoomed()
	hints := !zoomed && c.clock.Now().Sub(c.openedAt) < c.th.HintDuration

	o := Overlay{
		ShowPreviousHint: hints && c.index > 0,
		ShowNextHint:     hints && c.index < c.total-1,
		ShowZoomHint:     zoomed,
	}
	// nothing to count in an empty list
	if c.total > 0 {
		o.ShowCounter = !zoomed
		o.Counter = fmt.Sprintf("%d / %d", c.index+1, c.total)
	}
	return o
}

// State is a JSON friendly snapshot of the controller
type State struct {
	Transform  Transform  `json:"transform"`
	Matrix     Affine     `json:"matrix"`
	CSS        string     `json:"css"`
	Index      int        `json:"index"`
	Total      int        `json:"total"`
	Viewport   types.Size `json:"viewport"`
	Animating  bool       `json:"animating"`
	Phase      string     `json:"phase"`
	Recognizer string     `json:"recognizer"`
	Dragging   bool       `json:"dragging"`
	Overlay    Overlay    `json:"overlay"`
}

// State advances animations and returns a snapshot
func (c *Controller) State() State {
	c.Tick()
	tf := c.Transform()
	return State{
		Transform:  tf,
		Matrix:     tf.Matrix(),
		CSS:        tf.CSS(),
		Index:      c.index,
		Total:      c.total,
		Viewport:   c.viewport,
		Animating:  c.Animating(),
		Phase:      c.anim.phase.String(),
		Recognizer: c.Recognizer().String(),
		Dragging:   c.Dragging(),
		Overlay:    c.Overlay(),
	}
}
