package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/hubview/pkg/hub"
	"github.com/ha1tch/hubview/pkg/layout"
	"github.com/ha1tch/hubview/pkg/viewport"
)

// wheelNotch is the deltaY reported for one wheel click.
const wheelNotch = 100

// handleKey processes a key press and reports whether to quit.
func (v *Viewer) handleKey(ev *tcell.EventKey) bool {
	defer v.afterInput()

	if v.searching {
		v.handleSearchKey(ev)
		return false
	}

	switch ev.Key() {
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyEscape:
		v.vp.ClearSelection()
	case tcell.KeyTab:
		v.cycleSelection(1)
	case tcell.KeyBacktab:
		v.cycleSelection(-1)
	case tcell.KeyEnter:
		if id := v.vp.Selection().Selected; id != "" {
			v.vp.FocusNode(id)
		}
	case tcell.KeyLeft:
		v.vp.Pan(layout.Point{X: v.cfg.View.PanStep})
	case tcell.KeyRight:
		v.vp.Pan(layout.Point{X: -v.cfg.View.PanStep})
	case tcell.KeyUp:
		v.vp.Pan(layout.Point{Y: v.cfg.View.PanStep})
	case tcell.KeyDown:
		v.vp.Pan(layout.Point{Y: -v.cfg.View.PanStep})
	case tcell.KeyPgUp:
		v.sidebarScroll = max(v.sidebarScroll-5, 0)
	case tcell.KeyPgDn:
		v.sidebarScroll += 5
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return true
		case '+', '=':
			v.vp.Handle(viewport.Event{Kind: viewport.ZoomIn})
		case '-', '_':
			v.vp.Handle(viewport.Event{Kind: viewport.ZoomOut})
		case '0':
			v.vp.Handle(viewport.Event{Kind: viewport.Reset})
		case '/':
			v.searching = true
			v.query = ""
		case 'c':
			v.copySelected()
		case 's':
			v.collapsed = !v.collapsed
			v.resize()
		case 'r':
			v.reload()
		}
	}
	return false
}

func (v *Viewer) handleSearchKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		v.searching = false
	case tcell.KeyEnter:
		v.searching = false
		v.runSearch(v.query)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if r := []rune(v.query); len(r) > 0 {
			v.query = string(r[:len(r)-1])
		}
	case tcell.KeyRune:
		v.query += string(ev.Rune())
	}
}

// runSearch selects and centers the first placed node matching query.
func (v *Viewer) runSearch(query string) {
	ids := v.vp.Dataset().Search(query)
	res := v.vp.Layout()
	var placed []string
	for _, id := range ids {
		if _, ok := res.Node(id); ok {
			placed = append(placed, id)
		}
	}
	if len(placed) == 0 {
		v.showMessage(fmt.Sprintf("No match for %q", query), MsgWarning)
		return
	}
	v.vp.Select(placed[0])
	v.vp.FocusNode(placed[0])
	if len(placed) > 1 {
		v.showMessage(fmt.Sprintf("%d matches, showing %s", len(placed), placed[0]), MsgInfo)
	}
}

// cycleSelection moves the selection through placed nodes in layout order.
func (v *Viewer) cycleSelection(step int) {
	nodes := v.vp.Layout().Nodes
	if len(nodes) == 0 {
		return
	}
	cur := slices.IndexFunc(nodes, func(n layout.Placed) bool {
		return n.ID == v.vp.Selection().Selected
	})
	var next int
	switch {
	case cur < 0 && step < 0:
		next = len(nodes) - 1
	case cur < 0:
		next = 0
	default:
		next = (cur + step + len(nodes)) % len(nodes)
	}
	v.vp.Select(nodes[next].ID)
}

func (v *Viewer) copySelected() {
	id := v.vp.Selection().Selected
	if id == "" {
		v.showMessage("Nothing selected", MsgInfo)
		return
	}
	n, ok := v.vp.Dataset().Node(id)
	if !ok {
		return
	}
	if err := v.copy(nodeSummary(v.vp.Dataset().Hub, *n)); err != nil {
		v.showMessage(fmt.Sprintf("Clipboard: %v", err), MsgError)
		return
	}
	v.showMessage("Copied "+n.Name(), MsgSuccess)
}

// nodeSummary is the text copied to the clipboard for a node.
func nodeSummary(h hub.Hub, n hub.Node) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s + %s: %s\n", h.Label, n.Name(), n.Severity)
	for _, k := range n.MetaKeys() {
		fmt.Fprintf(&sb, "%s: %s\n", k, n.Meta(k))
	}
	return sb.String()
}

func mods(m tcell.ModMask) viewport.Modifier {
	var out viewport.Modifier
	if m&tcell.ModShift != 0 {
		out |= viewport.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= viewport.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		out |= viewport.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		out |= viewport.ModMeta
	}
	return out
}

// handleMouse turns terminal mouse reports into viewport events. tcell
// reports button state rather than transitions, so presses and releases
// are derived from primaryDown. Leaving the canvas ends a drag; the canvas
// does not capture the pointer.
func (v *Viewer) handleMouse(ev *tcell.EventMouse) {
	defer v.afterInput()

	x, y := ev.Position()
	w, h := v.screen.Size()
	cols, rows := v.lc.Canvas(w, h, v.collapsed)
	inCanvas := x < cols && y < rows
	pos := v.lc.CellCenter(x, y)
	buttons := ev.Buttons()
	m := mods(ev.Modifiers())

	if buttons&(tcell.WheelUp|tcell.WheelDown) != 0 {
		delta := float64(wheelNotch)
		if buttons&tcell.WheelUp != 0 {
			delta = -wheelNotch
		}
		switch {
		case inCanvas:
			v.vp.Handle(viewport.Event{Kind: viewport.Wheel, Pos: pos, Mods: m, DeltaY: delta})
		case x >= cols && y < rows:
			if delta < 0 {
				v.sidebarScroll = max(v.sidebarScroll-1, 0)
			} else {
				v.sidebarScroll++
			}
		}
		return
	}

	down := buttons&tcell.Button1 != 0
	switch {
	case down && !v.primaryDown:
		v.primaryDown = true
		if inCanvas {
			v.vp.Handle(viewport.Event{Kind: viewport.PointerDown, Pos: pos, Button: viewport.ButtonPrimary, Mods: m})
		} else if id, ok := v.sidebarRows[y]; ok && x >= cols {
			v.vp.Select(id)
		}
	case !down && v.primaryDown:
		v.primaryDown = false
		if inCanvas {
			v.vp.Handle(viewport.Event{Kind: viewport.PointerUp, Pos: pos, Button: viewport.ButtonPrimary, Mods: m})
		}
	case inCanvas:
		v.vp.Handle(viewport.Event{Kind: viewport.PointerMove, Pos: pos, Mods: m})
	}

	if inCanvas != v.onCanvas {
		v.onCanvas = inCanvas
		if !inCanvas {
			v.vp.Handle(viewport.Event{Kind: viewport.PointerLeave})
		}
	}
}
