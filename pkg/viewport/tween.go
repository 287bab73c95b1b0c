package viewport

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
)

// EaseOut is a cubic ease-out curve on [0,1].
func EaseOut(t float64) float64 {
	t = math.Min(math.Max(t, 0), 1)
	u := 1 - t
	return 1 - u*u*u
}

// Tween interpolates the displayed transform towards a target. The engine's
// transform always jumps; only what is drawn animates.
type Tween struct {
	from, to Transform
	start    time.Time
	d        time.Duration
}

// NewTween returns a tween resting at t.
func NewTween(t Transform) *Tween {
	return &Tween{from: t, to: t}
}

// Retarget starts a new transition from `from` to `to` at now. A zero
// duration snaps.
func (tw *Tween) Retarget(from, to Transform, now time.Time, d time.Duration) {
	tw.from, tw.to = from, to
	tw.start = now
	tw.d = d
}

// Target returns the transform the tween is heading to.
func (tw *Tween) Target() Transform {
	return tw.to
}

// At returns the displayed transform at now and whether the tween is done.
func (tw *Tween) At(now time.Time) (Transform, bool) {
	if tw.d <= 0 {
		return tw.to, true
	}
	elapsed := now.Sub(tw.start)
	if elapsed >= tw.d {
		return tw.to, true
	}
	if elapsed < 0 {
		elapsed = 0
	}
	k := EaseOut(float64(elapsed) / float64(tw.d))
	return Transform{
		Zoom: tw.from.Zoom + (tw.to.Zoom-tw.from.Zoom)*k,
		Pan:  r2.Add(tw.from.Pan, r2.Scale(k, r2.Sub(tw.to.Pan, tw.from.Pan))),
	}, false
}
