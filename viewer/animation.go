package viewer

import (
	"math"
	"time"
)

// AnimationPhase is the timed state of the swipe offset animation
type AnimationPhase int

const (
	AnimationIdle AnimationPhase = iota
	// cancelled gesture, offset eases back to 0
	AnimationSettling
	// committed navigation: current image leaves the viewport
	AnimationSlidingOut
	// index changes while the image is off-screen, offset jumps to the opposite edge
	AnimationRepositioning
	// the new image slides in to 0
	AnimationSlidingIn
)

func (p AnimationPhase) String() string {
	switch p {
	case AnimationSettling:
		return "settling"
	case AnimationSlidingOut:
		return "sliding-out"
	case AnimationRepositioning:
		return "repositioning"
	case AnimationSlidingIn:
		return "sliding-in"
	default:
		return "idle"
	}
}

// Transition reports the phases during which touch input is ignored
func (p AnimationPhase) Transition() bool {
	return p == AnimationSlidingOut || p == AnimationRepositioning || p == AnimationSlidingIn
}

type animation struct {
	phase     AnimationPhase
	from      float64
	to        float64
	start     time.Time
	duration  time.Duration
	direction Decision
}

func (a *animation) begin(phase AnimationPhase, from, to float64, start time.Time, duration time.Duration) {
	a.phase = phase
	a.from = from
	a.to = to
	a.start = start
	a.duration = duration
}

func (a *animation) end() time.Time {
	return a.start.Add(a.duration)
}

// sample returns the offset at now and whether the phase is complete
func (a *animation) sample(now time.Time) (float64, bool) {
	if a.duration <= 0 || !now.Before(a.end()) {
		return a.to, true
	}
	t := float64(now.Sub(a.start)) / float64(a.duration)
	if t < 0 {
		t = 0
	}
	return a.from + (a.to-a.from)*easeOut(t), false
}

func (a *animation) stop() {
	*a = animation{}
}

// easeOut is a cubic ease-out curve on [0, 1]
func easeOut(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}
