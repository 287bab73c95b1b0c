package main

import (
	"testing"
	"time"
)

// TestFlashInverted verifies the flash phase pattern.
func TestFlashInverted(t *testing.T) {
	// normal(0-125) -> inverted(125-250) -> normal(250-375) -> inverted(375-500) -> normal(500+)
	tests := []struct {
		elapsed      int64
		wantInverted bool
		description  string
	}{
		{-10, false, "before start - normal"},
		{0, false, "start of flash - normal"},
		{124, false, "end of phase 0 - normal"},
		{125, true, "start of phase 1 - inverted"},
		{249, true, "end of phase 1 - inverted"},
		{250, false, "start of phase 2 - normal"},
		{374, false, "end of phase 2 - normal"},
		{375, true, "start of phase 3 - inverted"},
		{499, true, "end of phase 3 - inverted"},
		{500, false, "after flash period - normal"},
		{1000, false, "long after flash - normal"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			got := flashInverted(time.Duration(tt.elapsed) * time.Millisecond)
			if got != tt.wantInverted {
				t.Errorf("elapsed=%dms: got inverted=%v, want %v", tt.elapsed, got, tt.wantInverted)
			}
		})
	}
}

// TestFlashMessageTypes verifies which message types flash.
func TestFlashMessageTypes(t *testing.T) {
	tests := []struct {
		msgType     MessageType
		shouldFlash bool
		description string
	}{
		{MsgInfo, false, "info messages don't flash"},
		{MsgError, true, "error messages flash"},
		{MsgSuccess, true, "success messages flash"},
		{MsgWarning, true, "warning messages flash"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			if got := tt.msgType.flashes(); got != tt.shouldFlash {
				t.Errorf("msgType=%v: got flashes=%v, want %v", tt.msgType, got, tt.shouldFlash)
			}
		})
	}
}

func TestFlasherOncePerToken(t *testing.T) {
	var f flasher
	t0 := time.Unix(1000, 0)

	if f.active(t0) {
		t.Fatal("fresh flasher is active")
	}

	f.observe(1, "a", t0)
	if !f.active(t0) {
		t.Fatal("new token did not start a flash")
	}
	if !f.inverted(t0.Add(150 * time.Millisecond)) {
		t.Error("expected inverted phase at 150ms")
	}

	// Same token later: no restart.
	f.observe(1, "a", t0.Add(time.Second))
	if f.active(t0.Add(time.Second)) {
		t.Error("same token restarted the flash")
	}

	// Reselecting bumps the token and flashes again.
	t1 := t0.Add(2 * time.Second)
	f.observe(2, "a", t1)
	if !f.active(t1) {
		t.Error("bumped token did not flash")
	}

	// A token change to an empty selection does not flash.
	t2 := t0.Add(5 * time.Second)
	f.observe(3, "", t2)
	if f.active(t2) {
		t.Error("cleared selection flashed")
	}
}
