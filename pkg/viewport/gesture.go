package viewport

import (
	"math"
	"time"

	"github.com/ha1tch/hubview/pkg/layout"
	"gonum.org/v1/gonum/spatial/r2"
)

// EventKind identifies a raw input event.
type EventKind int

const (
	PointerDown EventKind = iota
	PointerMove
	PointerUp
	PointerLeave
	Wheel
	TouchStart
	TouchMove
	TouchEnd
	ZoomIn  // zoom button
	ZoomOut // zoom button
	Reset   // reset view button
)

var eventNames = [...]string{
	PointerDown:  "pointer-down",
	PointerMove:  "pointer-move",
	PointerUp:    "pointer-up",
	PointerLeave: "pointer-leave",
	Wheel:        "wheel",
	TouchStart:   "touch-start",
	TouchMove:    "touch-move",
	TouchEnd:     "touch-end",
	ZoomIn:       "zoom-in",
	ZoomOut:      "zoom-out",
	Reset:        "reset",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Button is a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonMiddle
)

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Event is one normalized input event. Positions are container pixels.
type Event struct {
	Kind    EventKind
	Pos     layout.Point
	Button  Button
	Mods    Modifier
	DeltaY  float64        // wheel
	Touches []layout.Point // active touch points
}

// Phase is the gesture session state.
type Phase int

const (
	Idle Phase = iota
	Panning
	Pinching
)

func (p Phase) String() string {
	switch p {
	case Panning:
		return "panning"
	case Pinching:
		return "pinching"
	}
	return "idle"
}

// Session tracks an in-progress gesture. Last is only meaningful while
// panning and LastDistance only while pinching.
type Session struct {
	Phase        Phase
	Last         layout.Point
	LastDistance float64
}

// State is everything the gesture reducer reads and writes.
type State struct {
	Transform Transform
	Session   Session
}

// NewState returns the state at mount: identity transform, idle session.
func NewState() State {
	return State{Transform: Identity()}
}

// Reduce applies one event to the gesture state. The bool reports whether
// the event was consumed; an unmodified wheel is not, so the host can
// scroll. Reduce never reads the clock or any other outside state.
func Reduce(st State, ev Event, opts Options) (State, bool) {
	opts = opts.withDefaults()

	switch ev.Kind {
	case PointerDown:
		if ev.Button != ButtonPrimary {
			return st, false
		}
		if st.Session.Phase == Pinching {
			return st, true
		}
		st.Session = Session{Phase: Panning, Last: ev.Pos}
		return st, true

	case PointerMove:
		if st.Session.Phase != Panning {
			return st, false
		}
		if !finitePoint(ev.Pos) {
			return st, true
		}
		st.Transform = st.Transform.Panned(r2.Sub(ev.Pos, st.Session.Last))
		st.Session.Last = ev.Pos
		return st, true

	case PointerUp, PointerLeave:
		if st.Session.Phase != Panning {
			return st, false
		}
		st.Session = Session{}
		return st, true

	case Wheel:
		if ev.Mods&(ModCtrl|ModMeta) == 0 {
			return st, false
		}
		st.Transform = st.Transform.Zoomed(st.Transform.Zoom - ev.DeltaY*opts.WheelSensitivity)
		return st, true

	case TouchStart, TouchMove, TouchEnd:
		return reduceTouch(st, ev, opts)

	case ZoomIn:
		st.Transform = st.Transform.Zoomed(st.Transform.Zoom + opts.ZoomStep)
		return st, true

	case ZoomOut:
		st.Transform = st.Transform.Zoomed(st.Transform.Zoom - opts.ZoomStep)
		return st, true

	case Reset:
		return NewState(), true
	}
	return st, false
}

func reduceTouch(st State, ev Event, opts Options) (State, bool) {
	if len(ev.Touches) < 2 {
		if st.Session.Phase == Pinching {
			st.Session = Session{}
			return st, true
		}
		return st, false
	}

	d := r2.Norm(r2.Sub(ev.Touches[0], ev.Touches[1]))
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return st, true
	}
	if st.Session.Phase != Pinching {
		// The first two-finger event only sets the baseline.
		st.Session = Session{Phase: Pinching, LastDistance: d}
		return st, true
	}
	if ev.Kind == TouchMove {
		st.Transform = st.Transform.Zoomed(st.Transform.Zoom + (d-st.Session.LastDistance)*opts.PinchSensitivity)
	}
	st.Session.LastDistance = d
	return st, true
}

// TransitionFor returns how long a display should take to reach a new
// transform. Panning tracks the pointer 1:1; everything else eases out.
func TransitionFor(s Session, opts Options) time.Duration {
	if s.Phase == Panning {
		return 0
	}
	return opts.withDefaults().Transition
}
