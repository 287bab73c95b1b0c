package viewport

import (
	"math"

	"github.com/ha1tch/hubview/pkg/layout"
	"gonum.org/v1/gonum/spatial/r2"
)

// Zoom bounds. Every mutation of Transform.Zoom is clamped to this range.
const (
	MinZoom = 0.4
	MaxZoom = 3.0
)

// Transform is the zoom/pan applied after layout. Pan is in screen pixels
// and unbounded; zoom scales about the container center.
type Transform struct {
	Zoom float64
	Pan  layout.Point
}

// Identity returns the reset view: zoom 1, no pan.
func Identity() Transform {
	return Transform{Zoom: 1}
}

// ClampZoom limits z to [MinZoom, MaxZoom]. Clamping is idempotent.
func ClampZoom(z float64) float64 {
	return math.Min(math.Max(z, MinZoom), MaxZoom)
}

// Zoomed returns t with its zoom set to z, clamped. A NaN request leaves
// the zoom unchanged.
func (t Transform) Zoomed(z float64) Transform {
	if math.IsNaN(z) {
		return t
	}
	t.Zoom = ClampZoom(z)
	return t
}

// Panned returns t translated by d. Non-finite deltas are ignored.
func (t Transform) Panned(d layout.Point) Transform {
	if !finitePoint(d) {
		return t
	}
	t.Pan = r2.Add(t.Pan, d)
	return t
}

// Screen maps a layout point to the screen: translate by pan, then scale
// about the container center c.
func (t Transform) Screen(p, c layout.Point) layout.Point {
	return r2.Add(r2.Add(c, t.Pan), r2.Scale(t.Zoom, r2.Sub(p, c)))
}

// Scene maps a screen point back to layout coordinates.
func (t Transform) Scene(p, c layout.Point) layout.Point {
	return r2.Add(c, r2.Scale(1/t.Zoom, r2.Sub(r2.Sub(p, c), t.Pan)))
}

// Percent returns the zoom as a rounded percentage.
func (t Transform) Percent() int {
	return int(math.Round(t.Zoom * 100))
}

func finitePoint(p layout.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}
