package main

import (
	"math"

	"github.com/ha1tch/hubview/pkg/config"
	"github.com/ha1tch/hubview/pkg/layout"
)

// LayoutConfig sizes the screen regions. It is passed to every function
// that measures or draws so nothing depends on a global sidebar width.
type LayoutConfig struct {
	SidebarWidth     int // expanded, in cells
	SidebarCollapsed int // collapsed, in cells
	StatusRows       int
	CellWidth        float64 // layout pixels per cell
	CellHeight       float64
}

// LayoutConfigFrom reads the region sizes from cfg.
func LayoutConfigFrom(cfg *config.Config) LayoutConfig {
	return LayoutConfig{
		SidebarWidth:     cfg.Chrome.SidebarWidth,
		SidebarCollapsed: cfg.Chrome.SidebarCollapsed,
		StatusRows:       cfg.Chrome.StatusRows,
		CellWidth:        cfg.Terminal.CellWidth,
		CellHeight:       cfg.Terminal.CellHeight,
	}
}

// Sidebar returns the sidebar width in cells.
func (lc LayoutConfig) Sidebar(collapsed bool) int {
	if collapsed {
		return lc.SidebarCollapsed
	}
	return lc.SidebarWidth
}

// Canvas returns the canvas size in cells for a screen of w x h cells.
func (lc LayoutConfig) Canvas(w, h int, collapsed bool) (cols, rows int) {
	cols = max(w-lc.Sidebar(collapsed), 0)
	rows = max(h-lc.StatusRows, 0)
	return cols, rows
}

// CanvasPixels returns the canvas size in layout pixels.
func (lc LayoutConfig) CanvasPixels(w, h int, collapsed bool) layout.Size {
	cols, rows := lc.Canvas(w, h, collapsed)
	return layout.Size{W: float64(cols) * lc.CellWidth, H: float64(rows) * lc.CellHeight}
}

// CellCenter maps a cell to the layout pixel at its center.
func (lc LayoutConfig) CellCenter(x, y int) layout.Point {
	return layout.Point{
		X: (float64(x) + 0.5) * lc.CellWidth,
		Y: (float64(y) + 0.5) * lc.CellHeight,
	}
}

// Cell maps a layout pixel to the cell containing it.
func (lc LayoutConfig) Cell(p layout.Point) (x, y int) {
	return int(math.Floor(p.X / lc.CellWidth)), int(math.Floor(p.Y / lc.CellHeight))
}
