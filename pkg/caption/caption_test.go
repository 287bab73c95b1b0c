package caption

import (
	"sort"
	"sync"
	"testing"
	"time"
)

// fakeClock fires timers only when Advance is called.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

// pending returns the number of live timers.
func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Advance moves time forward by d, firing due timers in order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		sort.SliceStable(c.timers, func(i, j int) bool { return c.timers[i].at < c.timers[j].at })
		var next *fakeTimer
		for _, t := range c.timers {
			if !t.stopped && !t.fired && t.at <= target {
				next = t
				break
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		c.now = next.at
		c.mu.Unlock()
		next.f()
	}
}

func record(c *Cycler) *[]State {
	var mu sync.Mutex
	var got []State
	c.OnChange(func(s State) {
		mu.Lock()
		got = append(got, s)
		mu.Unlock()
	})
	return &got
}

func TestCyclerPhaseOrder(t *testing.T) {
	clock := &fakeClock{}
	c := New([]string{"A", "B"}, Timings{}, clock)
	got := record(c)

	c.Start()
	clock.Advance(500 * time.Millisecond)  // -> Visible
	clock.Advance(2800 * time.Millisecond) // -> Exiting
	clock.Advance(500 * time.Millisecond)  // -> Entering B
	clock.Advance(3800 * time.Millisecond) // full cycle -> Entering A

	want := []State{
		{0, "A", Entering},
		{0, "A", Visible},
		{0, "A", Exiting},
		{1, "B", Entering},
		{1, "B", Visible},
		{1, "B", Exiting},
		{0, "A", Entering},
	}
	if len(*got) != len(want) {
		t.Fatalf("got %d transitions, want %d: %v", len(*got), len(want), *got)
	}
	for i := range want {
		if (*got)[i] != want[i] {
			t.Errorf("transition %d = %+v, want %+v", i, (*got)[i], want[i])
		}
	}
}

func TestCyclerNotEarly(t *testing.T) {
	clock := &fakeClock{}
	c := New(nil, Timings{}, clock)
	c.Start()
	clock.Advance(499 * time.Millisecond)
	if c.State().Phase != Entering {
		t.Errorf("phase = %v before slide-in finished", c.State().Phase)
	}
	clock.Advance(time.Millisecond)
	if c.State().Phase != Visible || c.State().Word != "Retrieve" {
		t.Errorf("state = %+v", c.State())
	}
}

func TestCyclerSingleTimer(t *testing.T) {
	clock := &fakeClock{}
	c := New(nil, Timings{}, clock)
	c.Start()
	for i := 0; i < 10; i++ {
		if n := clock.pending(); n != 1 {
			t.Fatalf("step %d: %d pending timers, want 1", i, n)
		}
		clock.Advance(time.Second)
	}
}

func TestCyclerStartIdempotent(t *testing.T) {
	clock := &fakeClock{}
	c := New(nil, Timings{}, clock)
	got := record(c)
	c.Start()
	clock.Advance(500 * time.Millisecond)
	c.Start()
	if len(*got) != 2 {
		t.Errorf("second Start should do nothing, got %v", *got)
	}
	if clock.pending() != 1 {
		t.Errorf("pending timers = %d", clock.pending())
	}
}

func TestCyclerStopCancels(t *testing.T) {
	clock := &fakeClock{}
	c := New(nil, Timings{}, clock)
	got := record(c)
	c.Start()
	c.Stop()

	if clock.pending() != 0 {
		t.Errorf("timer still pending after Stop")
	}
	clock.Advance(time.Minute)
	if len(*got) != 1 {
		t.Errorf("transitions after Stop: %v", *got)
	}
	if c.Running() {
		t.Error("Running after Stop")
	}

	// Restart begins again from the first word.
	c.Start()
	if s := c.State(); s.Index != 0 || s.Phase != Entering {
		t.Errorf("restart state = %+v", s)
	}
}

func TestCyclerStaleCallbackDropped(t *testing.T) {
	clock := &fakeClock{}
	c := New(nil, Timings{}, clock)
	c.Start()

	// Capture the armed callback and invoke it after a restart.
	clock.mu.Lock()
	stale := clock.timers[0].f
	clock.mu.Unlock()

	c.Stop()
	c.Start()
	stale()
	if c.State().Phase != Entering {
		t.Errorf("stale callback advanced the cycler: %+v", c.State())
	}
}

func TestCyclerRealClock(t *testing.T) {
	c := New([]string{"x"}, Timings{SlideIn: time.Millisecond, Hold: time.Millisecond, SlideOut: time.Millisecond}, nil)
	done := make(chan struct{})
	var once sync.Once
	c.OnChange(func(s State) {
		if s.Phase == Exiting {
			once.Do(func() { close(done) })
		}
	})
	c.Start()
	defer c.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("real clock cycler never reached Exiting")
	}
}

func TestProgress(t *testing.T) {
	c := New(nil, Timings{}, &fakeClock{})
	if p := c.Progress(250 * time.Millisecond); p != 0.5 {
		t.Errorf("Progress = %v, want 0.5", p)
	}
	if p := c.Progress(time.Hour); p != 1 {
		t.Errorf("Progress = %v, want 1", p)
	}
	if p := c.Progress(-time.Second); p != 0 {
		t.Errorf("Progress = %v, want 0", p)
	}
}
