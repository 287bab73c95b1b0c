// Geometric primitives for hub diagrams.
// Provides circles, rectangles and collision-aware badge placement.

package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a 2D coordinate in container pixels, y growing downward.
type Point = r2.Vec

// Size is a container measurement in pixels.
type Size struct {
	W, H float64
}

// Valid reports whether both dimensions are finite and positive.
func (s Size) Valid() bool {
	return s.W > 0 && s.H > 0 && !math.IsInf(s.W, 0) && !math.IsInf(s.H, 0)
}

// Center returns the geometric center of the container.
func (s Size) Center() Point {
	return Point{X: s.W / 2, Y: s.H / 2}
}

// Circle is a hub or node glyph.
type Circle struct {
	Center Point
	R      float64
}

// Contains reports whether p lies inside or on the circle.
func (c Circle) Contains(p Point) bool {
	return r2.Norm2(r2.Sub(p, c.Center)) <= c.R*c.R
}

// Box returns the circle's bounding box.
func (c Circle) Box() r2.Box {
	return r2.Box{
		Min: Point{X: c.Center.X - c.R, Y: c.Center.Y - c.R},
		Max: Point{X: c.Center.X + c.R, Y: c.Center.Y + c.R},
	}
}

// Polar converts an angle in degrees and a distance into an offset.
// 0° points along +x and angles grow clockwise on screen.
func Polar(angle, distance float64) Point {
	rad := angle * math.Pi / 180
	return Point{X: math.Cos(rad) * distance, Y: math.Sin(rad) * distance}
}

// Rect represents an axis-aligned rectangle.
type Rect struct {
	X, Y float64 // Center
	W, H float64 // Full width and height
}

// RectOverlap returns the overlap area between two rectangles.
// Returns 0 if they don't overlap.
func RectOverlap(a, b Rect) float64 {
	overlapX := (a.W+b.W)/2 - math.Abs(a.X-b.X)
	overlapY := (a.H+b.H)/2 - math.Abs(a.Y-b.Y)
	if overlapX <= 0 || overlapY <= 0 {
		return 0
	}
	return overlapX * overlapY
}

// BadgePlacer places severity badges along edges, sliding them off the
// midpoint when they would collide with a badge already placed.
type BadgePlacer struct {
	placed []Rect
}

// NewBadgePlacer creates a placer with the given fixed obstacles.
func NewBadgePlacer(obstacles []Rect) *BadgePlacer {
	placed := make([]Rect, len(obstacles))
	copy(placed, obstacles)
	return &BadgePlacer{placed: placed}
}

func (bp *BadgePlacer) overlap(r Rect) float64 {
	total := 0.0
	for _, obs := range bp.placed {
		total += RectOverlap(r, obs)
	}
	return total
}

// PlaceOnEdge returns the badge center for the edge p1-p2. The midpoint is
// tried first, then offsets perpendicular to the edge. When every candidate
// collides the one with the least overlap wins.
func (bp *BadgePlacer) PlaceOnEdge(p1, p2 Point, w, h, gap float64) Point {
	mid := r2.Scale(0.5, r2.Add(p1, p2))

	d := r2.Sub(p2, p1)
	if r2.Norm(d) < 1 {
		bp.placed = append(bp.placed, Rect{mid.X, mid.Y, w, h})
		return mid
	}
	perp := r2.Unit(Point{X: -d.Y, Y: d.X})

	best := mid
	bestOverlap := math.MaxFloat64
	for _, offset := range []float64{0, gap, -gap, 2 * gap, -2 * gap} {
		pos := r2.Add(mid, r2.Scale(offset, perp))
		o := bp.overlap(Rect{pos.X, pos.Y, w, h})
		if o == 0 {
			best = pos
			break
		}
		if o < bestOverlap {
			bestOverlap = o
			best = pos
		}
	}

	bp.placed = append(bp.placed, Rect{best.X, best.Y, w, h})
	return best
}
