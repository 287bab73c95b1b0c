package main

import (
	"fmt"
	"image/color"
	"math"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ha1tch/hubview/pkg/caption"
	"github.com/ha1tch/hubview/pkg/hub"
	"github.com/ha1tch/hubview/pkg/layout"
	"github.com/ha1tch/hubview/pkg/render"
	"github.com/ha1tch/hubview/pkg/viewport"
)

// Styles
var (
	styleHub          = tcell.StyleDefault.Foreground(tcell.NewRGBColor(0x00, 0xD4, 0xAA))
	styleHubLabel     = styleHub.Bold(true)
	styleLabel        = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleSidebar      = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleSidebarH     = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleSubtle       = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleMenuSel      = tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite)
	styleStatus       = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo      = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError     = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleMsgWarn      = tcell.StyleDefault.Foreground(tcell.ColorYellow).Background(tcell.ColorNavy)
	styleCaption      = tcell.StyleDefault.Foreground(tcell.NewRGBColor(0x00, 0xD4, 0xAA)).Background(tcell.ColorNavy).Bold(true)
	styleHelp         = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleBorder       = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTooltip      = tcell.StyleDefault.Background(tcell.NewRGBColor(0x09, 0x0D, 0x16)).Foreground(tcell.ColorWhite)
	styleTooltipTitle = styleTooltip.Bold(true)
)

func tcellColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func severityStyle(s hub.Severity) tcell.Style {
	st := tcell.StyleDefault.Foreground(tcellColor(render.SeverityColor(s)))
	if s == hub.SeverityMajor {
		st = st.Bold(true)
	}
	return st
}

func (v *Viewer) draw() {
	now := v.now()
	v.screen.Clear()
	w, h := v.screen.Size()
	cols, rows := v.lc.Canvas(w, h, v.collapsed)

	t, settled := v.shown(now)
	v.drawCanvas(cols, rows, t)
	v.drawSidebar(cols, w, rows, now)
	v.drawStatusBar(w, h, now)

	animating := !settled || v.flash.active(now) || v.messageFlashing(now) ||
		v.capState.Phase != caption.Visible
	v.animating.Store(animating)
}

// canvas maps layout space to cells under a display transform.
type canvas struct {
	v          *Viewer
	cols, rows int
	t          viewport.Transform
	center     layout.Point // canvas center in pixels
}

func (cv canvas) screen(p layout.Point) layout.Point {
	return cv.t.Screen(p, cv.center)
}

func (cv canvas) cell(p layout.Point) (int, int) {
	return cv.v.lc.Cell(cv.screen(p))
}

func (cv canvas) set(x, y int, r rune, st tcell.Style) {
	if x >= 0 && y >= 0 && x < cv.cols && y < cv.rows {
		cv.v.screen.SetContent(x, y, r, nil, st)
	}
}

func (cv canvas) text(x, y int, s string, st tcell.Style) {
	for i, r := range []rune(s) {
		cv.set(x+i, y, r, st)
	}
}

// centered draws s centered on cell (x, y), clipped to maxW cells.
func (cv canvas) centered(x, y int, s string, maxW int, st tcell.Style) {
	s = truncate(s, max(maxW, 3))
	cv.text(x-len([]rune(s))/2, y, s, st)
}

func (v *Viewer) drawCanvas(cols, rows int, t viewport.Transform) {
	res := v.vp.Layout()
	if !res.Ready || cols <= 0 || rows <= 0 {
		return
	}
	cv := canvas{v: v, cols: cols, rows: rows, t: t, center: res.Size.Center()}
	sel := v.vp.Selection()

	for _, e := range res.Edges {
		cv.line(e.From, e.To, e.Severity)
	}
	for _, e := range res.Edges {
		x, y := cv.cell(e.Badge)
		cv.centered(x, y, " "+e.Severity.String()+" ", 12, severityStyle(e.Severity).Reverse(true))
	}

	cv.circle(res.Hub, '•', styleHub)
	hx, hy := cv.cell(res.Hub.Center)
	cv.centered(hx, hy, res.HubLabel, v.diameterCells(res.Hub.R, t), styleHubLabel)

	for _, n := range res.Nodes {
		ring, st := '∙', severityStyle(n.Severity)
		label := styleLabel
		if n.ID == sel.Selected {
			ring, st = '●', st.Bold(true)
			label = label.Bold(true)
		}
		if n.ID == sel.Hovered {
			label = label.Underline(true)
		}
		cv.circle(n.Circle, ring, st)
		x, y := cv.cell(n.Center)
		cv.centered(x, y, n.Label, v.diameterCells(n.R, t), label)
	}

	if sel.Hovered != "" {
		if n, ok := res.Node(sel.Hovered); ok {
			v.drawTooltip(cv, n, res.Size)
		}
	}
}

func (v *Viewer) diameterCells(r float64, t viewport.Transform) int {
	return int(2 * r * t.Zoom / v.lc.CellWidth)
}

// line draws a segment between two layout points. Minor edges are dashed.
func (cv canvas) line(from, to layout.Point, sev hub.Severity) {
	a, b := cv.screen(from), cv.screen(to)
	r := lineRune(b.X-a.X, b.Y-a.Y)
	st := severityStyle(sev)
	x0, y0 := cv.v.lc.Cell(a)
	x1, y1 := cv.v.lc.Cell(b)

	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for i := 0; ; i++ {
		if sev != hub.SeverityMinor || i%3 != 2 {
			cv.set(x0, y0, r, st)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// lineRune picks a box-drawing character for a pixel-space direction.
func lineRune(dx, dy float64) rune {
	switch {
	case math.Abs(dx) > 2*math.Abs(dy):
		return '─'
	case math.Abs(dy) > 2*math.Abs(dx):
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

// circle draws the outline of c. Circles smaller than a cell become a
// single glyph.
func (cv canvas) circle(c layout.Circle, ring rune, st tcell.Style) {
	lc := cv.v.lc
	center := cv.screen(c.Center)
	R := c.R * cv.t.Zoom
	thick := math.Hypot(lc.CellWidth, lc.CellHeight) / 2

	x0, y0 := lc.Cell(r2.Sub(center, layout.Point{X: R, Y: R}))
	x1, y1 := lc.Cell(r2.Add(center, layout.Point{X: R, Y: R}))
	drawn := false
	for y := max(y0, 0); y <= min(y1, cv.rows-1); y++ {
		for x := max(x0, 0); x <= min(x1, cv.cols-1); x++ {
			d := r2.Norm(r2.Sub(lc.CellCenter(x, y), center))
			if d <= R && d > R-thick {
				cv.set(x, y, ring, st)
				drawn = true
			}
		}
	}
	if !drawn {
		x, y := lc.Cell(center)
		cv.set(x, y, ring, st)
	}
}

func (v *Viewer) drawTooltip(cv canvas, n layout.Placed, size layout.Size) {
	screen := layout.Circle{Center: cv.screen(n.Center), R: n.R * cv.t.Zoom}
	at := layout.TooltipAnchor(screen, size)
	x, y := v.lc.Cell(at)

	lines := []string{n.Label}
	if dn, ok := v.vp.Dataset().Node(n.ID); ok {
		lines = append(lines, render.TooltipDetails(*dn)...)
	}
	lines = append(lines, strings.ToUpper(n.Severity.String()))

	w := max(int(layout.TooltipWidth/v.lc.CellWidth), 12)
	h := len(lines) + 2
	x = max(min(x, cv.cols-w), 0)
	y = max(min(y, cv.rows-h), 0)

	v.drawBox(x, y, w, h, styleTooltip)
	for i, line := range lines {
		st := styleTooltip
		switch i {
		case 0:
			st = styleTooltipTitle
		case len(lines) - 1:
			st = styleTooltip.Foreground(tcellColor(render.SeverityColor(n.Severity))).Bold(true)
		}
		v.drawString(x+2, y+1+i, truncate(line, w-4), st)
	}
}

// sideLine is one row of sidebar content. id is set for rows that select a
// node when clicked.
type sideLine struct {
	text  string
	style tcell.Style
	id    string
}

func (v *Viewer) sidebarLines(width int, now time.Time) []sideLine {
	ds := v.vp.Dataset()
	res := v.vp.Layout()
	sel := v.vp.Selection()

	title := ds.Title
	if title == "" {
		title = ds.Hub.Label
	}
	lines := []sideLine{{text: truncate(title, width), style: styleSidebarH}, {}}

	lines = append(lines, sideLine{text: "Selected:", style: styleSidebarH})
	if n, ok := ds.Node(sel.Selected); ok && sel.Selected != "" {
		st := styleSidebar.Bold(true)
		if v.flash.inverted(now) {
			st = st.Reverse(true)
		}
		lines = append(lines,
			sideLine{text: "  " + truncate(n.Name(), width-2), style: st},
			sideLine{text: "  " + n.Severity.String(), style: severityStyle(n.Severity)},
		)
		for _, k := range n.MetaKeys() {
			for i, part := range wrap(k+": "+n.Meta(k), width-4) {
				indent := "  "
				if i > 0 {
					indent = "    "
				}
				lines = append(lines, sideLine{text: indent + part, style: styleSidebar})
			}
		}
	} else {
		lines = append(lines, sideLine{text: "  (none)", style: styleSubtle})
	}
	lines = append(lines, sideLine{})

	lines = append(lines, sideLine{text: "Nodes:", style: styleSidebarH})
	for _, n := range res.Nodes {
		st := severityStyle(n.Severity)
		if n.ID == sel.Selected {
			st = styleMenuSel
		}
		lines = append(lines, sideLine{text: "● " + truncate(n.Label, width-2), style: st, id: n.ID})
	}

	if len(res.Warnings) > 0 {
		lines = append(lines, sideLine{}, sideLine{text: "Problems:", style: styleSidebarH})
		for _, w := range res.Warnings {
			for _, part := range wrap(w.String(), width-2) {
				lines = append(lines, sideLine{text: "  " + part, style: styleMsgWarn.Background(tcell.ColorDefault)})
			}
		}
	}
	return lines
}

func (v *Viewer) drawSidebar(x0, w, rows int, now time.Time) {
	clear(v.sidebarRows)
	sw := w - x0
	if sw <= 0 {
		return
	}
	for y := 0; y < rows; y++ {
		v.screen.SetContent(x0, y, '│', nil, styleBorder)
	}
	width := sw - 3
	if width < 4 {
		return
	}

	lines := v.sidebarLines(width, now)
	v.sidebarScroll = max(min(v.sidebarScroll, len(lines)-1), 0)
	for i, line := range lines[v.sidebarScroll:] {
		if i >= rows {
			break
		}
		v.drawString(x0+2, i, line.text, line.style)
		if line.id != "" {
			v.sidebarRows[i] = line.id
		}
	}
}

func (v *Viewer) drawStatusBar(w, h int, now time.Time) {
	if v.lc.StatusRows <= 0 || h <= 0 {
		return
	}
	y := h - 1
	for x := 0; x < w; x++ {
		v.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	if v.searching {
		v.drawString(1, y, "/"+v.query+"_", styleStatus)
	} else {
		x := 1
		zoom := fmt.Sprintf("%d%%", v.vp.ZoomPercent())
		v.drawString(x, y, zoom, styleStatus)
		x += len(zoom) + 2
		counts := v.vp.Dataset().Counts()
		for _, s := range hub.Severities {
			text := fmt.Sprintf("%s %d", s, counts[s])
			v.drawString(x, y, text, styleStatus.Foreground(tcellColor(render.SeverityColor(s))))
			x += len(text) + 2
		}
	}

	word := v.captionText(now)
	v.drawString(w/2-4, y, word, styleCaption)

	if v.message != "" {
		st := styleMsgInfo
		switch v.messageType {
		case MsgError:
			st = styleMsgError
		case MsgWarning:
			st = styleMsgWarn
		}
		if v.messageType.flashes() && flashInverted(now.Sub(v.messageStart)) {
			st = st.Reverse(true)
		}
		msg := truncate(v.message, max(w/2-8, 3))
		v.drawString(w-len([]rune(msg))-2, y, msg, st)
	}

	if v.lc.StatusRows >= 2 && h >= 2 {
		v.drawString(1, h-2, truncate(helpString(v.searching), w-2), styleHelp)
	}
}

// captionText slides the caption word in and out by revealing or hiding
// its letters as the phase progresses.
func (v *Viewer) captionText(now time.Time) string {
	word := []rune(v.capState.Word)
	p := v.captions.Progress(now.Sub(v.capSince))
	n := len(word)
	switch v.capState.Phase {
	case caption.Entering:
		n = int(math.Ceil(p * float64(len(word))))
	case caption.Exiting:
		n = int(math.Floor((1 - p) * float64(len(word))))
	}
	return string(word[:max(min(n, len(word)), 0)])
}

func (v *Viewer) messageFlashing(now time.Time) bool {
	return v.message != "" && v.messageType.flashes() && now.Sub(v.messageStart) < flashDuration
}

func helpString(searching bool) string {
	if searching {
		return "Type to search  Enter:Select  Esc:Cancel"
	}
	return "q:Quit  +/-:Zoom  0:Reset  Arrows:Pan  Drag:Pan  Click:Select  /:Search  Tab:Next  Enter:Focus  c:Copy  s:Sidebar"
}

func (v *Viewer) drawBox(x, y, w, h int, style tcell.Style) {
	v.screen.SetContent(x, y, '┌', nil, styleBorder)
	v.screen.SetContent(x+w-1, y, '┐', nil, styleBorder)
	v.screen.SetContent(x, y+h-1, '└', nil, styleBorder)
	v.screen.SetContent(x+w-1, y+h-1, '┘', nil, styleBorder)

	for i := x + 1; i < x+w-1; i++ {
		v.screen.SetContent(i, y, '─', nil, styleBorder)
		v.screen.SetContent(i, y+h-1, '─', nil, styleBorder)
	}
	for i := y + 1; i < y+h-1; i++ {
		v.screen.SetContent(x, i, '│', nil, styleBorder)
		v.screen.SetContent(x+w-1, i, '│', nil, styleBorder)
	}
	for row := y + 1; row < y+h-1; row++ {
		for col := x + 1; col < x+w-1; col++ {
			v.screen.SetContent(col, row, ' ', nil, style)
		}
	}
}

func (v *Viewer) drawString(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		v.screen.SetContent(x+i, y, r, nil, style)
	}
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:max(maxLen, 0)])
	}
	return string(r[:maxLen-3]) + "..."
}

// wrap breaks s into lines of at most width runes at spaces. Words longer
// than width are cut.
func wrap(s string, width int) []string {
	if width <= 0 {
		return nil
	}
	var lines []string
	var cur []rune
	for _, word := range strings.Fields(s) {
		wr := []rune(word)
		for len(wr) > width {
			if len(cur) > 0 {
				lines = append(lines, string(cur))
				cur = nil
			}
			lines = append(lines, string(wr[:width]))
			wr = wr[width:]
		}
		switch {
		case len(cur) == 0:
			cur = wr
		case len(cur)+1+len(wr) <= width:
			cur = append(append(cur, ' '), wr...)
		default:
			lines = append(lines, string(cur))
			cur = wr
		}
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
