// Package debug provides opt-in structured logging for hubview.
//
// Logging is enabled by setting HUBVIEW_DEBUG:
//
//	HUBVIEW_DEBUG=1 hub render data.yaml -o out.svg
//
// The terminal viewer owns stderr, so HUBVIEW_DEBUG_FILE redirects output
// to a file:
//
//	HUBVIEW_DEBUG=1 HUBVIEW_DEBUG_FILE=/tmp/hubview.log hubview data.yaml
//
// When disabled (default) Logger returns a logger that discards everything.
package debug

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	envEnable = "HUBVIEW_DEBUG"
	envFile   = "HUBVIEW_DEBUG_FILE"
)

var (
	mu      sync.Mutex
	enabled bool
	logger  = discard()
	file    *os.File
)

// discard returns a logger that drops every record.
func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func init() {
	if v := os.Getenv(envEnable); v != "" && v != "0" {
		Enable(os.Getenv(envFile))
	}
}

// Enabled returns whether debug logging is on.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Enable turns logging on. An empty path logs to stderr. If the file cannot
// be opened logging falls back to stderr.
func Enable(path string) {
	mu.Lock()
	defer mu.Unlock()

	var w io.Writer = os.Stderr
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			if file != nil {
				file.Close()
			}
			file = f
			w = f
		}
	}
	setWriter(w, levelFromEnv())
}

// SetOutput sends debug output to w, enabling logging. Used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	setWriter(w, slog.LevelDebug)
}

func setWriter(w io.Writer, level slog.Level) {
	enabled = true
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Disable turns logging off and closes any debug file.
func Disable() {
	mu.Lock()
	defer mu.Unlock()
	enabled = false
	logger = discard()
	if file != nil {
		file.Close()
		file = nil
	}
}

// Logger returns the current logger, tagged with the given component.
func Logger(component string) *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if component == "" {
		return logger
	}
	return logger.With("component", component)
}

// LogTiming logs how long an operation took.
//
//	defer debug.LogTiming("render", time.Now())
func LogTiming(name string, start time.Time) {
	if !Enabled() {
		return
	}
	Logger("").Debug("timing", "op", name, "elapsed", time.Since(start))
}

// levelFromEnv maps HUBVIEW_DEBUG=info|warn to a level; anything else is debug.
func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv(envEnable)) {
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	}
	return slog.LevelDebug
}
