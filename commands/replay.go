package commands

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/mobile-next/galleryview/sessions"
	"github.com/mobile-next/galleryview/types"
	"github.com/mobile-next/galleryview/viewer"
)

const phaseTick = "tick"

// Script is a recorded touch sequence replayed against a fresh viewer
type Script struct {
	Total          int     `json:"total"`
	Index          int     `json:"index"`
	ViewportWidth  float64 `json:"viewportWidth,omitempty"`
	ViewportHeight float64 `json:"viewportHeight,omitempty"`
	Steps          []Step  `json:"steps"`
}

// Step is one input at a time offset in milliseconds from the start of the script
type Step struct {
	At     int64              `json:"at"`
	Phase  string             `json:"phase"` // start, move, end or tick
	Points []types.TouchPoint `json:"points,omitempty"`
}

// ReplayRequest represents the parameters for replaying a script
type ReplayRequest struct {
	Script     Script
	Thresholds *viewer.Thresholds
	Trace      bool
}

// Frame is the state of the viewer right after a step
type Frame struct {
	At    int64        `json:"at"`
	Phase string       `json:"phase"`
	State viewer.State `json:"state"`
}

// ReplayResponse is the outcome of a replayed script
type ReplayResponse struct {
	Events []sessions.Event `json:"events"`
	Closed bool             `json:"closed"`
	State  viewer.State     `json:"state"`
	Frames []Frame          `json:"frames,omitempty"`
}

// LoadScript reads a JSON script file
func LoadScript(path string) (Script, error) {
	var script Script

	data, err := os.ReadFile(path)
	if err != nil {
		return script, fmt.Errorf("failed to read script: %w", err)
	}
	if err := json.Unmarshal(data, &script); err != nil {
		return script, fmt.Errorf("failed to parse script %s: %w", path, err)
	}
	return script, nil
}

// ReplayCommand runs a script on a virtual clock and reports what the viewer did
func ReplayCommand(req ReplayRequest) *CommandResponse {
	resp, err := Replay(req)
	if err != nil {
		return NewErrorResponse(err)
	}
	return NewSuccessResponse(resp)
}

// Replay runs a script on a virtual clock
func Replay(req ReplayRequest) (*ReplayResponse, error) {
	script := req.Script
	if script.Total <= 0 {
		return nil, fmt.Errorf("total must be positive, got %d", script.Total)
	}

	start := time.Unix(0, 0)
	clock := viewer.NewManualClock(start)
	resp := &ReplayResponse{Events: []sessions.Event{}}

	var c *viewer.Controller
	record := func(eventType string) {
		resp.Events = append(resp.Events, sessions.Event{Type: eventType, Index: c.Index()})
	}

	c = viewer.NewController(viewer.Options{
		Index:      script.Index,
		Total:      script.Total,
		Viewport:   types.Size{Width: script.ViewportWidth, Height: script.ViewportHeight},
		Thresholds: req.Thresholds,
		Clock:      clock,
		Callbacks: viewer.Callbacks{
			OnNext:     func() { record("next") },
			OnPrevious: func() { record("previous") },
			OnClose: func() {
				resp.Closed = true
				record("close")
			},
		},
	})

	var last int64
	for i, step := range script.Steps {
		if step.At < last {
			return nil, fmt.Errorf("step %d goes back in time (%dms after %dms)", i, step.At, last)
		}
		last = step.At
		clock.Set(start.Add(time.Duration(step.At) * time.Millisecond))

		if step.Phase == phaseTick {
			c.Tick()
		} else {
			phase, err := types.ParseTouchPhase(step.Phase)
			if err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			c.Touch(phase, step.Points)
		}

		if req.Trace {
			resp.Frames = append(resp.Frames, Frame{At: step.At, Phase: step.Phase, State: c.State()})
		}
	}

	resp.State = c.State()
	return resp, nil
}

// Gesture describes a synthetic gesture for the io commands
type Gesture struct {
	Total         int
	Index         int
	ViewportWidth float64
}

func (g Gesture) script(steps []Step) Script {
	// let any transition finish before the final snapshot
	end := steps[len(steps)-1].At + 1000
	steps = append(steps, Step{At: end, Phase: phaseTick})

	return Script{
		Total:         g.Total,
		Index:         g.Index,
		ViewportWidth: g.ViewportWidth,
		Steps:         steps,
	}
}

// SwipeScript drags one finger from (x1, y1) to (x2, y2) over duration
func (g Gesture) SwipeScript(x1, y1, x2, y2 float64, duration time.Duration, moves int) Script {
	if moves < 1 {
		moves = 1
	}
	ms := duration.Milliseconds()

	steps := []Step{{At: 0, Phase: string(types.TouchStart), Points: []types.TouchPoint{{X: x1, Y: y1}}}}
	for i := 1; i <= moves; i++ {
		t := float64(i) / float64(moves)
		steps = append(steps, Step{
			At:     int64(math.Round(float64(ms) * t)),
			Phase:  string(types.TouchMove),
			Points: []types.TouchPoint{{X: x1 + (x2-x1)*t, Y: y1 + (y2-y1)*t}},
		})
	}
	steps = append(steps, Step{At: ms, Phase: string(types.TouchEnd)})

	return g.script(steps)
}

// TapScript taps count times at (x, y), interval apart
func (g Gesture) TapScript(x, y float64, count int, interval time.Duration) Script {
	if count < 1 {
		count = 1
	}

	var steps []Step
	for i := 0; i < count; i++ {
		at := int64(i) * interval.Milliseconds()
		steps = append(steps,
			Step{At: at, Phase: string(types.TouchStart), Points: []types.TouchPoint{{X: x, Y: y}}},
			Step{At: at + 50, Phase: string(types.TouchEnd)},
		)
	}
	return g.script(steps)
}

// PinchScript spreads two fingers around (cx, cy) from startDistance to endDistance
func (g Gesture) PinchScript(cx, cy, startDistance, endDistance float64, duration time.Duration, moves int) Script {
	if moves < 1 {
		moves = 1
	}
	ms := duration.Milliseconds()

	pair := func(d float64) []types.TouchPoint {
		return []types.TouchPoint{
			{X: cx - d/2, Y: cy, ID: 1},
			{X: cx + d/2, Y: cy, ID: 2},
		}
	}

	steps := []Step{
		{At: 0, Phase: string(types.TouchStart), Points: pair(startDistance)[:1]},
		{At: 0, Phase: string(types.TouchStart), Points: pair(startDistance)},
	}
	for i := 1; i <= moves; i++ {
		t := float64(i) / float64(moves)
		steps = append(steps, Step{
			At:     int64(math.Round(float64(ms) * t)),
			Phase:  string(types.TouchMove),
			Points: pair(startDistance + (endDistance-startDistance)*t),
		})
	}
	steps = append(steps,
		Step{At: ms, Phase: string(types.TouchEnd), Points: pair(endDistance)[:1]},
		Step{At: ms, Phase: string(types.TouchEnd)},
	)
	return g.script(steps)
}
