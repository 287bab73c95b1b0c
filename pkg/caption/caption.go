// Package caption cycles a short list of words through a slide-in, hold,
// slide-out animation. Each Cycler owns at most one pending timer.
package caption

import (
	"sync"
	"time"
)

// Phase is a step of the word animation.
type Phase int

const (
	Entering Phase = iota
	Visible
	Exiting
)

func (p Phase) String() string {
	switch p {
	case Entering:
		return "entering"
	case Visible:
		return "visible"
	case Exiting:
		return "exiting"
	}
	return "unknown"
}

// State is the word on display and where it is in its animation.
type State struct {
	Index int
	Word  string
	Phase Phase
}

// Timings holds the duration of each phase.
type Timings struct {
	SlideIn  time.Duration
	Hold     time.Duration
	SlideOut time.Duration
}

// DefaultTimings matches the dashboard logo animation.
var DefaultTimings = Timings{
	SlideIn:  500 * time.Millisecond,
	Hold:     2800 * time.Millisecond,
	SlideOut: 500 * time.Millisecond,
}

// DefaultWords are the words cycled when none are configured.
var DefaultWords = []string{"Retrieve", "Reason", "Report"}

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. The real clock is time.AfterFunc.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock returns a Clock backed by the time package.
func RealClock() Clock { return realClock{} }

// Cycler runs the Entering -> Visible -> Exiting -> Entering(next) loop.
type Cycler struct {
	mu       sync.Mutex
	fire     sync.Mutex // held while listeners run
	clock    Clock
	words    []string
	timings  Timings
	state    State
	timer    Timer
	running  bool
	gen      uint64
	onChange []func(State)
}

// New creates a stopped cycler. Empty words fall back to DefaultWords and
// zero durations to DefaultTimings. A nil clock uses the real clock.
func New(words []string, t Timings, clock Clock) *Cycler {
	if len(words) == 0 {
		words = DefaultWords
	}
	if t.SlideIn <= 0 {
		t.SlideIn = DefaultTimings.SlideIn
	}
	if t.Hold <= 0 {
		t.Hold = DefaultTimings.Hold
	}
	if t.SlideOut <= 0 {
		t.SlideOut = DefaultTimings.SlideOut
	}
	if clock == nil {
		clock = RealClock()
	}
	w := make([]string, len(words))
	copy(w, words)
	return &Cycler{
		clock:   clock,
		words:   w,
		timings: t,
		state:   State{Word: w[0], Phase: Entering},
	}
}

// OnChange registers f to be called after every transition, including the
// initial state on Start. f must not call Stop.
func (c *Cycler) OnChange(f func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, f)
}

// State returns the current state.
func (c *Cycler) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Running reports whether the cycler has been started and not stopped.
func (c *Cycler) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Start begins cycling from the first word. Calling Start on a running
// cycler does nothing.
func (c *Cycler) Start() {
	c.fire.Lock()
	defer c.fire.Unlock()

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.gen++
	c.state = State{Word: c.words[0], Phase: Entering}
	st := c.state
	c.schedule(c.timings.SlideIn)
	listeners := c.listeners()
	c.mu.Unlock()

	for _, f := range listeners {
		f(st)
	}
}

// Stop cancels the pending timer. No listener runs after Stop returns.
func (c *Cycler) Stop() {
	c.mu.Lock()
	c.running = false
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	// Wait out a callback that was already running.
	c.fire.Lock()
	c.fire.Unlock()
}

// schedule arms the single timer. Caller holds mu.
func (c *Cycler) schedule(d time.Duration) {
	if c.timer != nil {
		c.timer.Stop()
	}
	gen := c.gen
	c.timer = c.clock.AfterFunc(d, func() { c.advance(gen) })
}

func (c *Cycler) listeners() []func(State) {
	out := make([]func(State), len(c.onChange))
	copy(out, c.onChange)
	return out
}

// advance moves to the next phase. Callbacks from a stopped or restarted
// cycler are dropped by the generation check.
func (c *Cycler) advance(gen uint64) {
	c.fire.Lock()
	defer c.fire.Unlock()

	c.mu.Lock()
	if !c.running || gen != c.gen {
		c.mu.Unlock()
		return
	}
	switch c.state.Phase {
	case Entering:
		c.state.Phase = Visible
		c.schedule(c.timings.Hold)
	case Visible:
		c.state.Phase = Exiting
		c.schedule(c.timings.SlideOut)
	case Exiting:
		next := (c.state.Index + 1) % len(c.words)
		c.state = State{Index: next, Word: c.words[next], Phase: Entering}
		c.schedule(c.timings.SlideIn)
	}
	st := c.state
	listeners := c.listeners()
	c.mu.Unlock()

	for _, f := range listeners {
		f(st)
	}
}

// Progress returns how far through its current phase the word is, in
// [0,1], given the time the phase began. Used to slide the word in and out.
func (c *Cycler) Progress(since time.Duration) float64 {
	c.mu.Lock()
	var d time.Duration
	switch c.state.Phase {
	case Entering:
		d = c.timings.SlideIn
	case Visible:
		d = c.timings.Hold
	case Exiting:
		d = c.timings.SlideOut
	}
	c.mu.Unlock()
	if d <= 0 || since >= d {
		return 1
	}
	if since <= 0 {
		return 0
	}
	return float64(since) / float64(d)
}
