package main

import "time"

// Flash pattern: normal -> inverted -> normal -> inverted -> normal, each
// phase flashPhase long.
const (
	flashPhase    = 125 * time.Millisecond
	flashDuration = 4 * flashPhase
)

// flashInverted reports whether a flash that started elapsed ago is in an
// inverted phase.
func flashInverted(elapsed time.Duration) bool {
	if elapsed < 0 || elapsed >= flashDuration {
		return false
	}
	n := elapsed / flashPhase
	return n == 1 || n == 3
}

// flasher flashes once per selection token. Clicking the selected node
// again bumps the token and flashes again; clearing does not.
type flasher struct {
	token uint64
	start time.Time
}

// observe starts a flash when token is new and a node is selected.
func (f *flasher) observe(token uint64, selected string, now time.Time) {
	if token == f.token {
		return
	}
	f.token = token
	if selected != "" {
		f.start = now
	}
}

func (f *flasher) inverted(now time.Time) bool {
	if f.start.IsZero() {
		return false
	}
	return flashInverted(now.Sub(f.start))
}

func (f *flasher) active(now time.Time) bool {
	return !f.start.IsZero() && now.Sub(f.start) < flashDuration
}

// MessageType for status messages
type MessageType int

const (
	MsgInfo    MessageType = iota // Informative, no flash
	MsgError                      // Errors, flash
	MsgSuccess                    // State changes, flash
	MsgWarning                    // Warnings, flash
)

func (t MessageType) flashes() bool {
	return t != MsgInfo
}
