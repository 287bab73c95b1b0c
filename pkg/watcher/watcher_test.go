package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNewResolvesPath(t *testing.T) {
	w, err := New("data.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(w.Path()) {
		t.Errorf("Path = %q, want absolute", w.Path())
	}
}

func TestStartTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.json")
	writeFile(t, path, "{}")
	w, _ := New(path)
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if err := w.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start = %v", err)
	}
}

func TestNotifyOnWrite(t *testing.T) {
	for _, poll := range []bool{false, true} {
		name := "fsnotify"
		if poll {
			name = "polling"
		}
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "d.json")
			writeFile(t, path, "{}")

			var changes atomic.Int32
			w, _ := New(path,
				WithPolling(poll),
				WithPollInterval(20*time.Millisecond),
				WithDebounce(20*time.Millisecond),
				WithOnChange(func() { changes.Add(1) }),
			)
			if err := w.Start(); err != nil {
				t.Fatal(err)
			}
			defer w.Stop()
			if poll && !w.Polling() {
				t.Fatal("expected polling mode")
			}

			// Unrelated files in the same directory are ignored.
			writeFile(t, filepath.Join(dir, "other.json"), "{}")
			time.Sleep(100 * time.Millisecond)
			if changes.Load() != 0 {
				t.Fatalf("change reported for unrelated file")
			}

			time.Sleep(20 * time.Millisecond) // let mtime move on coarse filesystems
			writeFile(t, path, `{"hub":{}}`)
			waitFor(t, "change", func() bool { return changes.Load() > 0 })
		})
	}
}

func TestDebounceCoalesces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.json")
	writeFile(t, path, "{}")

	var changes atomic.Int32
	w, _ := New(path,
		WithDebounce(200*time.Millisecond),
		WithOnChange(func() { changes.Add(1) }),
	)
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	for i := 0; i < 5; i++ {
		writeFile(t, path, `{"n":`+string(rune('0'+i))+`}`)
		time.Sleep(10 * time.Millisecond)
	}
	waitFor(t, "change", func() bool { return changes.Load() > 0 })
	time.Sleep(300 * time.Millisecond)
	if n := changes.Load(); n != 1 {
		t.Errorf("got %d notifications, want 1", n)
	}
}

func TestNoCallbackAfterStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.json")
	writeFile(t, path, "{}")

	var changes atomic.Int32
	w, _ := New(path,
		WithDebounce(100*time.Millisecond),
		WithOnChange(func() { changes.Add(1) }),
	)
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	writeFile(t, path, `{"x":1}`)
	time.Sleep(20 * time.Millisecond)
	w.Stop()
	after := changes.Load()
	time.Sleep(250 * time.Millisecond)
	if changes.Load() != after {
		t.Error("callback ran after Stop returned")
	}
	w.Stop() // second Stop is a no-op
}

func TestRemovedFileReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.json")
	writeFile(t, path, "{}")

	var removed atomic.Bool
	w, _ := New(path,
		WithPolling(true),
		WithPollInterval(20*time.Millisecond),
		WithOnError(func(err error) {
			if errors.Is(err, ErrFileRemoved) {
				removed.Store(true)
			}
		}),
	)
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	os.Remove(path)
	waitFor(t, "removal", removed.Load)
}
