package chart

import (
	"math"
	"time"

	"github.com/rustyeddy/chartkit/viewport"
)

// State is the renderer's animation state.
type State int

const (
	Idle State = iota
	Animating
)

func (s State) String() string {
	if s == Animating {
		return "animating"
	}
	return "idle"
}

// animation is one in-flight viewport transition.
type animation struct {
	start    time.Time
	from, to viewport.Viewport
	duration time.Duration
}

// progress returns the linear progress at now, clamped to [0, 1].
func (a *animation) progress(now time.Time) float64 {
	if a.duration <= 0 {
		return 1
	}
	p := float64(now.Sub(a.start)) / float64(a.duration)
	return math.Max(0, math.Min(1, p))
}

// at returns the eased viewport at now. The last frame is exactly a.to.
func (a *animation) at(now time.Time) viewport.Viewport {
	p := a.progress(now)
	if p >= 1 {
		return a.to
	}
	return viewport.Lerp(a.from, a.to, EaseOutCubic(p))
}

// EaseOutCubic is 1-(1-p)^3.
func EaseOutCubic(p float64) float64 {
	q := 1 - p
	return 1 - q*q*q
}
