package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/ha1tch/hubview/pkg/hub"
	"github.com/ha1tch/hubview/pkg/layout"
)

// ErrNotReady is returned when asked to render an unmeasured layout.
var ErrNotReady = errors.New("layout has no size")

// errWriter remembers the first write error so svgo's unchecked writes can
// be reported.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func round(v float64) int {
	return int(math.Round(v))
}

// SVG writes res as an SVG document.
func SVG(w io.Writer, res layout.Result, opts Options) error {
	if !res.Ready {
		return ErrNotReady
	}
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	width, height := round(res.Size.W), round(res.Size.H)
	canvas.Start(width, height)
	if opts.Title != "" {
		canvas.Title(opts.Title)
	}
	if opts.Background {
		canvas.Rect(0, 0, width, height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	}

	// Pan, then scale about the container center.
	v := opts.view()
	c := res.Size.Center()
	canvas.Gtransform(fmt.Sprintf("translate(%.2f,%.2f) scale(%.4f) translate(%.2f,%.2f)",
		c.X+v.Pan.X, c.Y+v.Pan.Y, v.Zoom, -c.X, -c.Y))

	for _, e := range res.Edges {
		style := fmt.Sprintf("stroke:%s;stroke-width:%g;stroke-opacity:%g",
			css(SeverityColor(e.Severity)), StrokeWidth(e.Severity), EdgeOpacity)
		if d := Dash(e.Severity); d != nil {
			style += fmt.Sprintf(";stroke-dasharray:%g %g", d[0], d[1])
		}
		canvas.Line(round(e.From.X), round(e.From.Y), round(e.To.X), round(e.To.Y), style)
	}

	if opts.Badges {
		for _, e := range res.Edges {
			drawBadgeSVG(canvas, e)
		}
	}

	hubC := res.Hub.Center
	canvas.Circle(round(hubC.X), round(hubC.Y), round(res.Hub.R),
		fmt.Sprintf("fill:%s;fill-opacity:0.1;stroke:%s;stroke-width:2", css(colorPrimary), css(colorPrimary)))
	canvas.Text(round(hubC.X), round(hubC.Y)+4, res.HubLabel,
		fmt.Sprintf("fill:%s;font-size:12px;font-family:sans-serif;font-weight:bold;text-anchor:middle", css(colorText)))

	for _, n := range res.Nodes {
		col := SeverityColor(n.Severity)
		stroke, opacity := 1, 0.6
		if n.ID == opts.Selected {
			stroke, opacity = 2, 1
		}
		canvas.Circle(round(n.Center.X), round(n.Center.Y), round(n.R),
			fmt.Sprintf("fill:%s;fill-opacity:0.07;stroke:%s;stroke-width:%d;stroke-opacity:%g", css(col), css(col), stroke, opacity))
		canvas.Text(round(n.Center.X), round(n.Center.Y)+3, n.Label,
			fmt.Sprintf("fill:%s;font-size:10px;font-family:sans-serif;text-anchor:middle", css(colorText)))
	}

	canvas.Gend()

	if opts.Hovered != "" {
		if n, ok := res.Node(opts.Hovered); ok {
			screen := layout.Circle{Center: v.Screen(n.Center, c), R: n.R * v.Zoom}
			drawTooltipSVG(canvas, n, opts.Details, screen, res.Size)
		}
	}
	if opts.Legend {
		drawLegendSVG(canvas, res)
	}
	canvas.End()
	return ew.err
}

func drawBadgeSVG(canvas *svg.SVG, e layout.Edge) {
	col := SeverityColor(e.Severity)
	label := e.Severity.String()
	w := badgeWidth(label)
	h := int(layout.BadgeHeight) - 4
	x, y := round(e.Badge.X)-w/2, round(e.Badge.Y)-h/2
	canvas.Roundrect(x, y, w, h, h/2, h/2,
		fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(colorBackdrop), css(col)))
	canvas.Text(round(e.Badge.X), round(e.Badge.Y)+3, label,
		fmt.Sprintf("fill:%s;font-size:8px;font-family:sans-serif;font-weight:bold;text-anchor:middle", css(col)))
}

// drawTooltipSVG draws the hover card in container space next to the node's
// on-screen circle.
func drawTooltipSVG(canvas *svg.SVG, n layout.Placed, details []string, screen layout.Circle, size layout.Size) {
	at := layout.TooltipAnchor(screen, size)
	x, y := round(at.X), round(at.Y)
	pad, line := round(tooltipPad), round(tooltipLine)
	canvas.Roundrect(x, y, int(layout.TooltipWidth), round(tooltipHeight(len(details))), 8, 8,
		fmt.Sprintf("fill:%s;fill-opacity:0.95;stroke:%s;stroke-width:1", css(colorBackdrop), css(colorSubtle)))
	canvas.Text(x+pad, y+18, n.Label, fmt.Sprintf("fill:%s;font-size:11px;font-family:sans-serif;font-weight:bold", css(colorText)))
	ty := y + 18
	for _, d := range details {
		ty += line
		canvas.Text(x+pad, ty, d, fmt.Sprintf("fill:%s;font-size:9px;font-family:sans-serif", css(colorSubtle)))
	}
	canvas.Text(x+pad, ty+18, strings.ToUpper(n.Severity.String()),
		fmt.Sprintf("fill:%s;font-size:8px;font-family:sans-serif;font-weight:bold", css(SeverityColor(n.Severity))))
}

// badgeWidth estimates the pill width for a severity label.
func badgeWidth(label string) int {
	return len(label)*5 + 10
}

type legendEntry struct {
	label string
	count int
	color color.RGBA
}

// legend summarises res as a total followed by per-tier counts, most severe
// first. Tiers with no nodes are left out.
func legend(res layout.Result) []legendEntry {
	counts := make(map[hub.Severity]int)
	for _, n := range res.Nodes {
		counts[n.Severity]++
	}
	out := []legendEntry{{label: "Total", count: len(res.Nodes), color: colorText}}
	for _, s := range hub.Severities {
		if counts[s] > 0 {
			out = append(out, legendEntry{label: s.String(), count: counts[s], color: SeverityColor(s)})
		}
	}
	return out
}

func drawLegendSVG(canvas *svg.SVG, res layout.Result) {
	x, y := 12, round(res.Size.H)-12
	for _, e := range legend(res) {
		text := fmt.Sprintf("%s %d", e.label, e.count)
		canvas.Text(x, y, text, fmt.Sprintf("fill:%s;font-size:10px;font-family:sans-serif", css(e.color)))
		x += len(text)*6 + 14
	}
}
