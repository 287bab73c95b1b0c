// Package watcher reports changes to a dataset file so viewers can reload.
// It watches the file's directory with fsnotify, which survives editors that
// save by rename, and falls back to polling the file's mtime and size.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Defaults for a new Watcher.
const (
	DefaultDebounce     = 150 * time.Millisecond
	DefaultPollInterval = 2 * time.Second
)

var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce coalesces bursts of events into one notification.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets how often polling mode checks the file.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithPolling forces polling mode.
func WithPolling(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// WithOnChange sets the change callback. It runs on a watcher goroutine
// and must not call Stop.
func WithOnChange(fn func()) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError sets the error callback. It runs on a watcher goroutine.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// Watcher monitors one file.
type Watcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration
	forcePoll    bool
	onChange     func()
	onError      func(error)

	mu       sync.Mutex
	started  bool
	polling  bool
	cancel   context.CancelFunc
	fsw      *fsnotify.Watcher
	timer    *time.Timer
	lastMod  time.Time
	lastSize int64
	wg       sync.WaitGroup
}

// New creates a stopped watcher for path.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:         abs,
		debounce:     DefaultDebounce,
		pollInterval: DefaultPollInterval,
		onChange:     func() {},
		onError:      func(error) {},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Polling reports whether the watcher fell back to polling.
func (w *Watcher) Polling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polling
}

// Start begins watching.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return ErrAlreadyStarted
	}

	if info, err := os.Stat(w.path); err == nil {
		w.lastMod, w.lastSize = info.ModTime(), info.Size()
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.polling = w.forcePoll

	if !w.polling {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			err = fsw.Add(filepath.Dir(w.path))
			if err != nil {
				fsw.Close()
			}
		}
		if err != nil {
			w.polling = true
		} else {
			w.fsw = fsw
			w.wg.Add(1)
			go w.watchEvents(ctx, fsw)
		}
	}
	if w.polling {
		w.wg.Add(1)
		go w.poll(ctx)
	}

	w.started = true
	return nil
}

// Stop ends watching. No callback runs after Stop returns.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.started = false
	w.cancel()
	fsw := w.fsw
	w.fsw = nil
	if w.timer != nil && w.timer.Stop() {
		w.wg.Done()
	}
	w.timer = nil
	w.mu.Unlock()

	if fsw != nil {
		fsw.Close()
	}
	w.wg.Wait()
}

func (w *Watcher) watchEvents(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.wg.Done()
	target := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			switch {
			case ev.Has(fsnotify.Remove):
				w.report(ErrFileRemoved)
			case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create), ev.Has(fsnotify.Rename):
				w.trigger()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.report(err)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		info, err := os.Stat(w.path)
		w.mu.Lock()
		hadFile := !w.lastMod.IsZero()
		changed := false
		if err == nil {
			changed = !info.ModTime().Equal(w.lastMod) || info.Size() != w.lastSize
			w.lastMod, w.lastSize = info.ModTime(), info.Size()
		} else if os.IsNotExist(err) {
			w.lastMod, w.lastSize = time.Time{}, 0
		}
		w.mu.Unlock()

		switch {
		case err == nil && changed:
			w.trigger()
		case os.IsNotExist(err) && hadFile:
			w.report(ErrFileRemoved)
		case err != nil && !os.IsNotExist(err):
			w.report(err)
		}
	}
}

// trigger (re)arms the debounce timer.
func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	if w.timer != nil && w.timer.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		live := w.started && w.timer == t
		if live {
			w.timer = nil
		}
		w.mu.Unlock()
		if live {
			w.onChange()
		}
	})
	w.timer = t
}

func (w *Watcher) report(err error) {
	w.mu.Lock()
	started := w.started
	w.mu.Unlock()
	if started {
		w.onError(err)
	}
}
