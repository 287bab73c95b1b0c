// Command hubview is an interactive terminal viewer for hub-and-spoke
// datasets.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/ha1tch/hubview/pkg/caption"
	"github.com/ha1tch/hubview/pkg/config"
	"github.com/ha1tch/hubview/pkg/debug"
	"github.com/ha1tch/hubview/pkg/hub"
	"github.com/ha1tch/hubview/pkg/viewport"
	"github.com/ha1tch/hubview/pkg/watcher"
)

// Viewer is the terminal front end around one Viewport.
type Viewer struct {
	screen tcell.Screen
	cfg    *config.Config
	lc     LayoutConfig
	path   string
	log    *slog.Logger

	vp    *viewport.Viewport
	tween *viewport.Tween

	captions  *caption.Cycler
	capState  caption.State
	capSince  time.Time
	watcher   *watcher.Watcher
	animating atomic.Bool // read by the refresh ticker

	// injectable for tests
	copy func(string) error
	now  func() time.Time

	// Sidebar
	collapsed     bool
	sidebarScroll int
	sidebarRows   map[int]string // screen row -> node ID, rebuilt on draw

	// Pointer
	primaryDown bool
	onCanvas    bool

	// Search prompt
	searching bool
	query     string

	flash flasher

	message      string
	messageType  MessageType
	messageStart time.Time
}

// Interrupt payloads posted from other goroutines.
type (
	captionMsg struct{ state caption.State }
	reloadMsg  struct{}
	watchErr   struct{ err error }
)

func main() {
	var (
		configPath string
		debugFile  string
		poll       bool
	)
	cmd := &cobra.Command{
		Use:           "hubview <dataset>",
		Short:         "Interactive terminal viewer for hub-and-spoke datasets",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if debugFile != "" {
				debug.Enable(debugFile)
			}
			var (
				cfg *config.Config
				err error
			)
			if configPath != "" {
				cfg, err = config.LoadFrom(configPath)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				return err
			}
			ds, err := hub.Load(args[0])
			if err != nil {
				return fmt.Errorf("loading %s: %w", args[0], err)
			}
			return runViewer(cfg, args[0], ds, poll)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default "+config.Path()+")")
	cmd.Flags().StringVar(&debugFile, "debug", "", "write debug log to file")
	cmd.Flags().BoolVar(&poll, "poll", false, "poll the dataset for changes instead of using file notifications")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runViewer(cfg *config.Config, path string, ds *hub.Dataset, poll bool) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()
	if cfg.Terminal.Mouse {
		screen.EnableMouse()
	}
	screen.Clear()

	v := newViewer(screen, cfg, path, ds)
	if err := v.start(poll); err != nil {
		v.showMessage(fmt.Sprintf("Not watching file: %v", err), MsgWarning)
	}
	defer v.stop()
	v.run()
	return nil
}

func newViewer(screen tcell.Screen, cfg *config.Config, path string, ds *hub.Dataset) *Viewer {
	v := &Viewer{
		screen:      screen,
		cfg:         cfg,
		lc:          LayoutConfigFrom(cfg),
		path:        path,
		log:         debug.Logger("hubview"),
		copy:        clipboard.WriteAll,
		now:         time.Now,
		collapsed:   cfg.Chrome.StartCollapsed,
		sidebarRows: make(map[int]string),
	}
	opts := cfg.ViewportOptions()
	opts.Listener = viewport.Funcs{
		Selected: func(id string, token uint64) {
			v.log.Debug("selected", "id", id, "token", token)
		},
		Zoom: func(percent int) {
			v.log.Debug("zoom", "percent", percent)
		},
	}
	v.vp = viewport.New(ds, opts)
	v.tween = viewport.NewTween(v.vp.Transform())
	v.captions = caption.New(cfg.Captions.Words, cfg.CaptionTimings(), nil)
	v.capState = v.captions.State()
	v.resize()
	return v
}

// start launches the caption cycler and the file watcher. Their callbacks
// only post events; all state changes happen on the event loop.
func (v *Viewer) start(poll bool) error {
	v.captions.OnChange(func(s caption.State) {
		v.screen.PostEvent(tcell.NewEventInterrupt(captionMsg{s}))
	})
	v.captions.Start()

	w, err := watcher.New(v.path,
		watcher.WithPolling(poll),
		watcher.WithOnChange(func() {
			v.screen.PostEvent(tcell.NewEventInterrupt(reloadMsg{}))
		}),
		watcher.WithOnError(func(err error) {
			v.screen.PostEvent(tcell.NewEventInterrupt(watchErr{err}))
		}),
	)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	v.watcher = w
	return nil
}

func (v *Viewer) stop() {
	v.captions.Stop()
	if v.watcher != nil {
		v.watcher.Stop()
	}
}

func (v *Viewer) run() {
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond) // 20fps for tweens and flashes
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if v.animating.Load() {
					v.screen.PostEvent(tcell.NewEventInterrupt(nil))
				}
			}
		}
	}()

	for {
		v.draw()
		v.screen.Show()

		switch ev := v.screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventResize:
			v.screen.Sync()
			v.resize()
		case *tcell.EventKey:
			if v.handleKey(ev) {
				return
			}
		case *tcell.EventMouse:
			v.handleMouse(ev)
		case *tcell.EventInterrupt:
			v.handleInterrupt(ev.Data())
		}
	}
}

func (v *Viewer) handleInterrupt(data any) {
	switch msg := data.(type) {
	case captionMsg:
		v.capState = msg.state
		v.capSince = v.now()
	case reloadMsg:
		v.reload()
	case watchErr:
		v.showMessage(fmt.Sprintf("Watch: %v", msg.err), MsgWarning)
	}
}

// resize remeasures the canvas after a screen resize or sidebar toggle.
func (v *Viewer) resize() {
	w, h := v.screen.Size()
	size := v.lc.CanvasPixels(w, h, v.collapsed)
	v.vp.Resize(size.W, size.H)
}

// reload reads the dataset again. The selection is cleared; the view is
// kept so the user does not lose their place.
func (v *Viewer) reload() {
	ds, err := hub.Load(v.path)
	if err != nil {
		v.showMessage(fmt.Sprintf("Reload failed: %v", err), MsgError)
		return
	}
	v.vp.SetDataset(ds)
	v.sidebarScroll = 0
	res := v.vp.Layout()
	if n := len(res.Warnings); n > 0 {
		v.showMessage(fmt.Sprintf("Reloaded, %d node(s) with problems", n), MsgWarning)
		return
	}
	v.showMessage(fmt.Sprintf("Reloaded %d nodes", len(res.Nodes)), MsgSuccess)
}

func (v *Viewer) showMessage(msg string, t MessageType) {
	v.message = msg
	v.messageType = t
	v.messageStart = v.now()
}

// afterInput reconciles derived state once per handled event.
func (v *Viewer) afterInput() {
	now := v.now()
	target := v.vp.Transform()
	if target != v.tween.Target() {
		shown, _ := v.tween.At(now)
		v.tween.Retarget(shown, target, now, v.vp.Transition())
	}
	sel := v.vp.Selection()
	v.flash.observe(sel.Token, sel.Selected, now)
}

// shown returns the transform to draw with at now.
func (v *Viewer) shown(now time.Time) (viewport.Transform, bool) {
	return v.tween.At(now)
}
