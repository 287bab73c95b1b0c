// Package config loads hubview settings from
// $XDG_CONFIG_HOME/hubview/config.toml (default ~/.config/hubview).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ha1tch/hubview/pkg/caption"
	"github.com/ha1tch/hubview/pkg/viewport"
)

// Config holds all user settings.
type Config struct {
	View     ViewConfig     `toml:"view"`
	Terminal TerminalConfig `toml:"terminal"`
	Chrome   ChromeConfig   `toml:"chrome"`
	Render   RenderConfig   `toml:"render"`
	Captions CaptionConfig  `toml:"captions"`
}

// ViewConfig tunes zoom and pan input.
type ViewConfig struct {
	ZoomStep         float64 `toml:"zoom_step"`
	WheelSensitivity float64 `toml:"wheel_sensitivity"`
	PinchSensitivity float64 `toml:"pinch_sensitivity"`
	TransitionMS     int     `toml:"transition_ms"`
	ClickSlop        float64 `toml:"click_slop"`
	PanStep          float64 `toml:"pan_step"` // pixels per arrow key
}

// TerminalConfig maps terminal cells to layout pixels.
type TerminalConfig struct {
	CellWidth  float64 `toml:"cell_width"`
	CellHeight float64 `toml:"cell_height"`
	Mouse      bool    `toml:"mouse"`
}

// ChromeConfig sizes the viewer's sidebar and status bar, in cells.
type ChromeConfig struct {
	SidebarWidth     int  `toml:"sidebar_width"`
	SidebarCollapsed int  `toml:"sidebar_collapsed"`
	StartCollapsed   bool `toml:"start_collapsed"`
	StatusRows       int  `toml:"status_rows"`
}

// RenderConfig holds defaults for static output.
type RenderConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
	Scale  float64 `toml:"scale"` // PNG supersampling factor
}

// CaptionConfig drives the status bar word cycler.
type CaptionConfig struct {
	Words      []string `toml:"words"`
	SlideInMS  int      `toml:"slide_in_ms"`
	HoldMS     int      `toml:"hold_ms"`
	SlideOutMS int      `toml:"slide_out_ms"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		View: ViewConfig{
			ZoomStep:         viewport.DefaultZoomStep,
			WheelSensitivity: viewport.DefaultWheelSensitivity,
			PinchSensitivity: viewport.DefaultPinchSensitivity,
			TransitionMS:     int(viewport.DefaultTransition / time.Millisecond),
			ClickSlop:        viewport.DefaultClickSlop,
			PanStep:          40,
		},
		Terminal: TerminalConfig{CellWidth: 8, CellHeight: 16, Mouse: true},
		Chrome:   ChromeConfig{SidebarWidth: 30, SidebarCollapsed: 8, StatusRows: 1},
		Render:   RenderConfig{Width: 900, Height: 620, Scale: 4},
		Captions: CaptionConfig{
			Words:      append([]string(nil), caption.DefaultWords...),
			SlideInMS:  int(caption.DefaultTimings.SlideIn / time.Millisecond),
			HoldMS:     int(caption.DefaultTimings.Hold / time.Millisecond),
			SlideOutMS: int(caption.DefaultTimings.SlideOut / time.Millisecond),
		},
	}
}

// Dir returns the hubview config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "hubview")
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file. A missing file yields the defaults.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config at path over the defaults. Keys absent from the
// file keep their default values; a missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return Default(), fmt.Errorf("parsing %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return cfg, fmt.Errorf("%s: unknown key %q", path, undec[0].String())
	}
	cfg.fix()
	return cfg, nil
}

// fix replaces unusable values with defaults.
func (c *Config) fix() {
	d := Default()
	if c.Terminal.CellWidth <= 0 {
		c.Terminal.CellWidth = d.Terminal.CellWidth
	}
	if c.Terminal.CellHeight <= 0 {
		c.Terminal.CellHeight = d.Terminal.CellHeight
	}
	if c.Chrome.SidebarWidth < c.Chrome.SidebarCollapsed {
		c.Chrome.SidebarWidth = c.Chrome.SidebarCollapsed
	}
	if c.Chrome.StatusRows < 0 {
		c.Chrome.StatusRows = 0
	}
	if c.Render.Scale < 1 {
		c.Render.Scale = d.Render.Scale
	}
	if c.View.PanStep <= 0 {
		c.View.PanStep = d.View.PanStep
	}
	if len(c.Captions.Words) == 0 {
		c.Captions.Words = d.Captions.Words
	}
}

// Save writes cfg to the default path.
func Save(cfg *Config) error {
	return SaveTo(cfg, Path())
}

// SaveTo writes cfg to path, creating parent directories.
func SaveTo(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// ViewportOptions converts the [view] section. Listener and Logger are left
// for the caller.
func (c *Config) ViewportOptions() viewport.Options {
	return viewport.Options{
		ZoomStep:         c.View.ZoomStep,
		WheelSensitivity: c.View.WheelSensitivity,
		PinchSensitivity: c.View.PinchSensitivity,
		ClickSlop:        c.View.ClickSlop,
		Transition:       time.Duration(c.View.TransitionMS) * time.Millisecond,
	}
}

// CaptionTimings converts the [captions] durations.
func (c *Config) CaptionTimings() caption.Timings {
	return caption.Timings{
		SlideIn:  time.Duration(c.Captions.SlideInMS) * time.Millisecond,
		Hold:     time.Duration(c.Captions.HoldMS) * time.Millisecond,
		SlideOut: time.Duration(c.Captions.SlideOutMS) * time.Millisecond,
	}
}
