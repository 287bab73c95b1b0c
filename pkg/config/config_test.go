package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.View.ZoomStep != 0.15 || cfg.View.WheelSensitivity != 0.002 || cfg.View.PinchSensitivity != 0.005 {
		t.Errorf("unexpected view defaults: %+v", cfg.View)
	}
	if cfg.Terminal.CellWidth != 8 || cfg.Terminal.CellHeight != 16 {
		t.Errorf("unexpected cell size: %+v", cfg.Terminal)
	}
	if len(cfg.Captions.Words) != 3 {
		t.Errorf("caption words = %v", cfg.Captions.Words)
	}
}

func TestLoadFromMissing(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Error("missing file should give defaults")
	}
}

func TestLoadFromPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[view]
zoom_step = 0.25

[terminal]
cell_width = 10

[captions]
words = ["One", "Two"]
hold_ms = 1000
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.View.ZoomStep != 0.25 {
		t.Errorf("zoom_step = %v", cfg.View.ZoomStep)
	}
	if cfg.View.WheelSensitivity != 0.002 {
		t.Errorf("unset keys should keep defaults, got %v", cfg.View.WheelSensitivity)
	}
	if cfg.Terminal.CellWidth != 10 || cfg.Terminal.CellHeight != 16 {
		t.Errorf("terminal = %+v", cfg.Terminal)
	}
	if !reflect.DeepEqual(cfg.Captions.Words, []string{"One", "Two"}) {
		t.Errorf("words = %v", cfg.Captions.Words)
	}

	tm := cfg.CaptionTimings()
	if tm.Hold != time.Second || tm.SlideIn != 500*time.Millisecond {
		t.Errorf("timings = %+v", tm)
	}
	opts := cfg.ViewportOptions()
	if opts.ZoomStep != 0.25 || opts.Transition != 150*time.Millisecond {
		t.Errorf("viewport options = %+v", opts)
	}
}

func TestLoadFromFixesBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "[terminal]\ncell_width = -3\n[chrome]\nsidebar_width = 2\nsidebar_collapsed = 6\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Terminal.CellWidth != 8 {
		t.Errorf("cell_width = %v, want default", cfg.Terminal.CellWidth)
	}
	if cfg.Chrome.SidebarWidth != 6 {
		t.Errorf("sidebar_width = %v, want raised to collapsed width", cfg.Chrome.SidebarWidth)
	}
}

func TestLoadFromErrors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	os.WriteFile(bad, []byte("[view\nzoom_step = "), 0o644)
	if _, err := LoadFrom(bad); err == nil {
		t.Error("expected parse error")
	}

	unknown := filepath.Join(dir, "unknown.toml")
	os.WriteFile(unknown, []byte("[view]\nzoom_speed = 2\n"), 0o644)
	_, err := LoadFrom(unknown)
	if err == nil || !strings.Contains(err.Error(), "zoom_speed") {
		t.Errorf("expected unknown key error, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := Default()
	cfg.Chrome.StartCollapsed = true
	cfg.Render.Width = 1234

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	back, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if !reflect.DeepEqual(cfg, back) {
		t.Errorf("round trip mismatch:\n%+v\n%+v", cfg, back)
	}
}

func TestDirHonoursXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := Path(); got != filepath.Join("/tmp/xdg", "hubview", "config.toml") {
		t.Errorf("Path = %q", got)
	}
}
