// Package render draws a computed hub layout as SVG, PNG or Graphviz DOT.
package render

import (
	"fmt"
	"image/color"

	"github.com/ha1tch/hubview/pkg/hub"
	"github.com/ha1tch/hubview/pkg/viewport"
)

// Colors used in rendering
var (
	ColorMajor    = color.RGBA{0xEF, 0x44, 0x44, 0xFF} // #EF4444
	ColorModerate = color.RGBA{0xF5, 0x9E, 0x0B, 0xFF} // #F59E0B
	ColorMinor    = color.RGBA{0x64, 0x74, 0x8B, 0xFF} // #64748b
	ColorUnknown  = color.RGBA{0x94, 0xA3, 0xB8, 0xFF} // #94a3b8

	colorBackdrop = color.RGBA{0x09, 0x0D, 0x16, 0xFF}
	colorPrimary  = color.RGBA{0x00, 0xD4, 0xAA, 0xFF}
	colorText     = color.RGBA{0xE2, 0xE8, 0xF0, 0xFF}
	colorSubtle   = color.RGBA{0x94, 0xA3, 0xB8, 0xFF}
)

// EdgeOpacity is applied to every edge stroke.
const EdgeOpacity = 0.7

// SeverityColor returns the tier colour.
func SeverityColor(s hub.Severity) color.RGBA {
	switch s {
	case hub.SeverityMajor:
		return ColorMajor
	case hub.SeverityModerate:
		return ColorModerate
	case hub.SeverityMinor:
		return ColorMinor
	}
	return ColorUnknown
}

// StrokeWidth returns the edge width for a tier.
func StrokeWidth(s hub.Severity) float64 {
	switch s {
	case hub.SeverityMajor:
		return 3
	case hub.SeverityModerate:
		return 2
	}
	return 1
}

// Dash returns the dash pattern for a tier, nil for solid.
func Dash(s hub.Severity) []float64 {
	if s == hub.SeverityMinor {
		return []float64{6, 4}
	}
	return nil
}

// Options controls static rendering.
type Options struct {
	Title      string
	View       viewport.Transform // zero value renders untransformed
	Selected   string             // node drawn with a highlighted border
	Hovered    string             // node whose tooltip is drawn
	Details    []string           // extra tooltip lines for Hovered
	Background bool
	Badges     bool
	Legend     bool // tier counts drawn untransformed in the corner
	Scale      int  // PNG supersampling factor
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		View:       viewport.Identity(),
		Background: true,
		Badges:     true,
		Legend:     true,
		Scale:      4,
	}
}

func (o Options) view() viewport.Transform {
	if o.View.Zoom == 0 {
		return viewport.Identity()
	}
	return o.View.Zoomed(o.View.Zoom)
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// TooltipDetails picks the lines shown under a node's name in its tooltip.
func TooltipDetails(n hub.Node) []string {
	var lines []string
	if c := n.Meta("class"); c != "" {
		lines = append(lines, c)
	}
	if r := n.Meta("reports"); r != "" {
		lines = append(lines, "FAERS: "+r+" reports")
	}
	return lines
}

const (
	tooltipLine = 14.0
	tooltipPad  = 10.0
)

func tooltipHeight(details int) float64 {
	return 48 + tooltipLine*float64(details)
}

// withAlpha returns c with alpha a in [0,1].
func withAlpha(c color.RGBA, a float64) color.RGBA {
	c.A = uint8(a*255 + 0.5)
	return c
}
