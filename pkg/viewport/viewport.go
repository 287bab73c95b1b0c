// Package viewport is the interactive state of a hub diagram: the zoom/pan
// transform, the gesture session that drives it, and the node selection.
//
// A Viewport is not safe for concurrent use. Hosts deliver every event from
// one goroutine and each call runs to completion before the next.
package viewport

import (
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/ha1tch/hubview/pkg/debug"
	"github.com/ha1tch/hubview/pkg/hub"
	"github.com/ha1tch/hubview/pkg/layout"
	"gonum.org/v1/gonum/spatial/r2"
)

// Default interaction tuning.
const (
	DefaultZoomStep         = 0.15
	DefaultWheelSensitivity = 0.002
	DefaultPinchSensitivity = 0.005
	DefaultClickSlop        = 4.0
	DefaultTransition       = 150 * time.Millisecond
)

// Listener receives viewport output events.
type Listener interface {
	// NodeSelected fires on every selection, with "" when the selection is
	// cleared. token increases with each Select.
	NodeSelected(id string, token uint64)
	// NodeHovered fires when the hovered node changes; "" means none.
	NodeHovered(id string)
	// ZoomChanged fires when the rounded zoom percentage changes.
	ZoomChanged(percent int)
}

// Funcs adapts plain functions to Listener. Nil fields are skipped.
type Funcs struct {
	Selected func(id string, token uint64)
	Hovered  func(id string)
	Zoom     func(percent int)
}

func (f Funcs) NodeSelected(id string, token uint64) {
	if f.Selected != nil {
		f.Selected(id, token)
	}
}

func (f Funcs) NodeHovered(id string) {
	if f.Hovered != nil {
		f.Hovered(id)
	}
}

func (f Funcs) ZoomChanged(percent int) {
	if f.Zoom != nil {
		f.Zoom(percent)
	}
}

// Options tunes a Viewport. Zero fields take the defaults; the zoom bounds
// are fixed.
type Options struct {
	ZoomStep         float64
	WheelSensitivity float64
	PinchSensitivity float64
	ClickSlop        float64       // max pointer travel for a press to count as a click
	Transition       time.Duration // display easing outside of pans
	Listener         Listener
	Logger           *slog.Logger
}

// DefaultOptions returns the standard tuning.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.ZoomStep <= 0 {
		o.ZoomStep = DefaultZoomStep
	}
	if o.WheelSensitivity <= 0 {
		o.WheelSensitivity = DefaultWheelSensitivity
	}
	if o.PinchSensitivity <= 0 {
		o.PinchSensitivity = DefaultPinchSensitivity
	}
	if o.ClickSlop <= 0 {
		o.ClickSlop = DefaultClickSlop
	}
	if o.Transition <= 0 {
		o.Transition = DefaultTransition
	}
	if o.Listener == nil {
		o.Listener = Funcs{}
	}
	if o.Logger == nil {
		o.Logger = debug.Logger("viewport")
	}
	return o
}

// press is a pointer-down over a node that may still become a click.
type press struct {
	id     string
	last   layout.Point
	travel float64
}

// Viewport ties the dataset, container size, layout, gesture state and
// selection together.
type Viewport struct {
	opts   Options
	ds     *hub.Dataset
	size   layout.Size
	layout layout.Result
	state  State
	sel    Selection
	press  *press
	warned string
}

// New creates a viewport for ds. The container is unmeasured until the
// first Resize.
func New(ds *hub.Dataset, opts Options) *Viewport {
	if ds == nil {
		ds = hub.New(hub.Hub{})
	}
	v := &Viewport{
		opts:  opts.withDefaults(),
		ds:    ds,
		state: NewState(),
	}
	v.relayout()
	return v
}

// Resize records the container size and recomputes the layout. The
// transform, gesture session and selection are left alone.
func (v *Viewport) Resize(w, h float64) {
	s := layout.Size{W: w, H: h}
	if s == v.size && v.layout.Ready {
		return
	}
	v.size = s
	v.relayout()
}

func (v *Viewport) relayout() {
	v.layout = layout.Compute(v.size, v.ds.Hub, v.ds.Nodes)
	v.logWarnings()
}

// logWarnings reports layout warnings once per distinct set.
func (v *Viewport) logWarnings() {
	if len(v.layout.Warnings) == 0 {
		v.warned = ""
		return
	}
	parts := make([]string, len(v.layout.Warnings))
	for i, w := range v.layout.Warnings {
		parts[i] = w.String()
	}
	key := strings.Join(parts, "\n")
	if key == v.warned {
		return
	}
	v.warned = key
	for _, w := range v.layout.Warnings {
		v.opts.Logger.Warn("node skipped or unlinked", "node", w.NodeID, "reason", w.Reason)
	}
}

// Size returns the current container size.
func (v *Viewport) Size() layout.Size { return v.size }

// Layout returns the most recent layout.
func (v *Viewport) Layout() layout.Result { return v.layout }

// Dataset returns the current dataset.
func (v *Viewport) Dataset() *hub.Dataset { return v.ds }

// State returns the gesture state.
func (v *Viewport) State() State { return v.state }

// Transform returns the current zoom/pan.
func (v *Viewport) Transform() Transform { return v.state.Transform }

// Selection returns the selection state.
func (v *Viewport) Selection() Selection { return v.sel }

// ZoomPercent returns the zoom as a rounded percentage.
func (v *Viewport) ZoomPercent() int { return v.state.Transform.Percent() }

// Transition returns the display transition for the current session.
func (v *Viewport) Transition() time.Duration {
	return TransitionFor(v.state.Session, v.opts)
}

// Screen maps a layout point to screen coordinates.
func (v *Viewport) Screen(p layout.Point) layout.Point {
	return v.state.Transform.Screen(p, v.size.Center())
}

// Scene maps a screen point to layout coordinates.
func (v *Viewport) Scene(p layout.Point) layout.Point {
	return v.state.Transform.Scene(p, v.size.Center())
}

func (v *Viewport) inside(p layout.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= v.size.W && p.Y <= v.size.H
}

// hit returns the node under a screen point.
func (v *Viewport) hit(p layout.Point) (string, bool) {
	if !v.layout.Ready || !finitePoint(p) {
		return "", false
	}
	return v.layout.HitTest(v.Scene(p))
}

// Handle routes one input event: gestures update the transform, pointer
// motion updates hover, and a press-release on one node selects it.
// It reports whether the event was consumed.
func (v *Viewport) Handle(ev Event) bool {
	if ev.Kind == PointerDown && (!v.layout.Ready || !v.inside(ev.Pos)) {
		return false
	}

	before := v.ZoomPercent()
	pinching := v.state.Session.Phase == Pinching
	next, handled := Reduce(v.state, ev, v.opts)
	v.state = next

	switch ev.Kind {
	case PointerDown:
		v.press = nil
		if ev.Button == ButtonPrimary && !pinching {
			if id, ok := v.hit(ev.Pos); ok {
				v.press = &press{id: id, last: ev.Pos}
			}
		}

	case PointerMove:
		if v.press != nil && finitePoint(ev.Pos) {
			v.press.travel += r2.Norm(r2.Sub(ev.Pos, v.press.last))
			v.press.last = ev.Pos
		}
		var id string
		if v.inside(ev.Pos) {
			id, _ = v.hit(ev.Pos)
		}
		if v.sel.Hover(id) {
			v.opts.Listener.NodeHovered(id)
		}

	case PointerUp:
		p := v.press
		v.press = nil
		if p == nil {
			break
		}
		if finitePoint(ev.Pos) {
			p.travel += r2.Norm(r2.Sub(ev.Pos, p.last))
		}
		if id, ok := v.hit(ev.Pos); ok && id == p.id && p.travel <= v.opts.ClickSlop {
			v.selectNode(id)
			handled = true
		}

	case PointerLeave:
		v.press = nil
		if v.sel.Hover("") {
			v.opts.Listener.NodeHovered("")
		}

	case TouchStart, TouchMove:
		if len(ev.Touches) >= 2 {
			v.press = nil
		}
	}

	if after := v.ZoomPercent(); after != before {
		v.opts.Listener.ZoomChanged(after)
	}
	return handled
}

func (v *Viewport) selectNode(id string) {
	v.sel.Select(id)
	v.opts.Listener.NodeSelected(id, v.sel.Token)
}

// Select selects a node by ID, as a click would. Unknown or unplaced IDs
// are ignored.
func (v *Viewport) Select(id string) bool {
	if _, ok := v.layout.Node(id); !ok {
		return false
	}
	v.selectNode(id)
	return true
}

// ClearSelection drops the selection without advancing the token.
func (v *Viewport) ClearSelection() {
	if v.sel.Clear() {
		v.opts.Listener.NodeSelected("", v.sel.Token)
	}
}

// Pan moves the view by d screen pixels, as a keyboard arrow would.
func (v *Viewport) Pan(d layout.Point) {
	v.state.Transform = v.state.Transform.Panned(d)
}

// SetTransform replaces the view transform with zoom clamped. Any gesture
// in progress is abandoned.
func (v *Viewport) SetTransform(t Transform) {
	before := v.ZoomPercent()
	next := Identity().Zoomed(t.Zoom).Panned(t.Pan)
	v.state = State{Transform: next}
	v.press = nil
	if after := v.ZoomPercent(); after != before {
		v.opts.Listener.ZoomChanged(after)
	}
}

// FocusNode pans so the node's center sits at the container center at the
// current zoom.
func (v *Viewport) FocusNode(id string) bool {
	n, ok := v.layout.Node(id)
	if !ok {
		return false
	}
	c := v.size.Center()
	v.state.Transform.Pan = r2.Scale(-v.state.Transform.Zoom, r2.Sub(n.Center, c))
	return true
}

// SetDataset replaces the dataset. Selection and hover are cleared because
// their IDs may no longer exist; the transform is kept.
func (v *Viewport) SetDataset(ds *hub.Dataset) {
	if ds == nil {
		ds = hub.New(hub.Hub{})
	}
	v.ds = ds
	v.press = nil
	if v.sel.Hover("") {
		v.opts.Listener.NodeHovered("")
	}
	v.ClearSelection()
	v.relayout()
}

// Visible returns the layout-space box currently shown in the container.
func (v *Viewport) Visible() r2.Box {
	a := v.Scene(layout.Point{})
	b := v.Scene(layout.Point{X: v.size.W, Y: v.size.H})
	return r2.Box{
		Min: layout.Point{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Max: layout.Point{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
}
