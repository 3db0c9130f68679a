package viewer

import (
	"fmt"
	"time"

	"github.com/mobile-next/galleryview/utils"
	"gopkg.in/ini.v1"
)

// Thresholds holds the tuning constants of the gesture engine
type Thresholds struct {
	// zoom
	MinScale       float64
	MaxScale       float64
	DoubleTapScale float64

	// live horizontal drag is clamped to +/- SwipeClamp pixels
	SwipeClamp float64

	// horizontal commit: offset beyond CommitOffset, or a fast flick
	CommitOffset     float64
	MinSwipeDistance float64
	MaxSwipeDuration time.Duration
	MinSwipeVelocity float64 // px/ms

	// vertical dismiss
	DismissDistance  float64
	DismissAxisRatio float64

	// taps
	TapSlop           float64
	TapMaxDuration    time.Duration
	DoubleTapInterval time.Duration
	DoubleTapSlop     float64

	// animation
	SlideDuration  time.Duration
	SettleDuration time.Duration
	HintDuration   time.Duration
}

// DefaultThresholds returns the stock tuning of the viewer
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinScale:       0.5,
		MaxScale:       3.0,
		DoubleTapScale: 2.0,

		SwipeClamp: 150,

		CommitOffset:     50,
		MinSwipeDistance: 30,
		MaxSwipeDuration: 500 * time.Millisecond,
		MinSwipeVelocity: 0.3,

		DismissDistance:  50,
		DismissAxisRatio: 2,

		TapSlop:           10,
		TapMaxDuration:    250 * time.Millisecond,
		DoubleTapInterval: 300 * time.Millisecond,
		DoubleTapSlop:     30,

		SlideDuration:  200 * time.Millisecond,
		SettleDuration: 200 * time.Millisecond,
		HintDuration:   3 * time.Second,
	}
}

// Validate reports the first inconsistent value
func (t Thresholds) Validate() error {
	if t.MinScale <= 0 {
		return fmt.Errorf("zoom.min_scale must be positive, got %v", t.MinScale)
	}
	if t.MaxScale < 1 || t.MinScale > 1 {
		return fmt.Errorf("zoom range [%v, %v] must contain 1", t.MinScale, t.MaxScale)
	}
	if t.DoubleTapScale <= 1 || t.DoubleTapScale > t.MaxScale {
		return fmt.Errorf("zoom.double_tap_scale must be in (1, %v], got %v", t.MaxScale, t.DoubleTapScale)
	}
	if t.SwipeClamp <= 0 {
		return fmt.Errorf("swipe.clamp must be positive, got %v", t.SwipeClamp)
	}
	if t.CommitOffset <= 0 || t.CommitOffset >= t.SwipeClamp {
		return fmt.Errorf("swipe.commit_offset must be in (0, %v), got %v", t.SwipeClamp, t.CommitOffset)
	}
	if t.MinSwipeVelocity < 0 || t.MinSwipeDistance < 0 {
		return fmt.Errorf("swipe velocity and distance must not be negative")
	}
	if t.DismissAxisRatio < 1 {
		return fmt.Errorf("dismiss.axis_ratio must be at least 1, got %v", t.DismissAxisRatio)
	}
	for name, d := range map[string]time.Duration{
		"swipe.max_duration":       t.MaxSwipeDuration,
		"tap.max_duration":         t.TapMaxDuration,
		"tap.double_tap_interval":  t.DoubleTapInterval,
		"animation.slide_duration": t.SlideDuration,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %v", name, d)
		}
	}
	if t.SettleDuration < 0 || t.HintDuration < 0 {
		return fmt.Errorf("animation durations must not be negative")
	}
	return nil
}

// LoadThresholds reads an INI file on top of DefaultThresholds.
// Keys that are missing keep their default value.
func LoadThresholds(path string) (Thresholds, error) {
	t := DefaultThresholds()

	cfg, err := ini.Load(path)
	if err != nil {
		return t, fmt.Errorf("failed to read thresholds %s: %w", path, err)
	}

	zoom := cfg.Section("zoom")
	t.MinScale = zoom.Key("min_scale").MustFloat64(t.MinScale)
	t.MaxScale = zoom.Key("max_scale").MustFloat64(t.MaxScale)
	t.DoubleTapScale = zoom.Key("double_tap_scale").MustFloat64(t.DoubleTapScale)

	swipe := cfg.Section("swipe")
	t.SwipeClamp = swipe.Key("clamp").MustFloat64(t.SwipeClamp)
	t.CommitOffset = swipe.Key("commit_offset").MustFloat64(t.CommitOffset)
	t.MinSwipeDistance = swipe.Key("min_distance").MustFloat64(t.MinSwipeDistance)
	t.MaxSwipeDuration = swipe.Key("max_duration").MustDuration(t.MaxSwipeDuration)
	t.MinSwipeVelocity = swipe.Key("min_velocity").MustFloat64(t.MinSwipeVelocity)

	dismiss := cfg.Section("dismiss")
	t.DismissDistance = dismiss.Key("distance").MustFloat64(t.DismissDistance)
	t.DismissAxisRatio = dismiss.Key("axis_ratio").MustFloat64(t.DismissAxisRatio)

	tap := cfg.Section("tap")
	t.TapSlop = tap.Key("slop").MustFloat64(t.TapSlop)
	t.TapMaxDuration = tap.Key("max_duration").MustDuration(t.TapMaxDuration)
	t.DoubleTapInterval = tap.Key("double_tap_interval").MustDuration(t.DoubleTapInterval)
	t.DoubleTapSlop = tap.Key("double_tap_slop").MustFloat64(t.DoubleTapSlop)

	anim := cfg.Section("animation")
	t.SlideDuration = anim.Key("slide_duration").MustDuration(t.SlideDuration)
	t.SettleDuration = anim.Key("settle_duration").MustDuration(t.SettleDuration)
	t.HintDuration = anim.Key("hint_duration").MustDuration(t.HintDuration)

	if err := t.Validate(); err != nil {
		return DefaultThresholds(), fmt.Errorf("invalid thresholds in %s: %w", path, err)
	}

	utils.Verbose("Loaded gesture thresholds from %s", path)
	return t, nil
}
