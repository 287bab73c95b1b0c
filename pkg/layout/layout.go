// Package layout turns polar node specs into container geometry: node
// circles, edges trimmed to the circle boundaries, severity badge anchors
// and tooltip anchors. Compute is a pure function of its inputs.
package layout

import (
	"errors"
	"fmt"
	"math"

	"github.com/ha1tch/hubview/pkg/hub"
	"gonum.org/v1/gonum/spatial/r2"
)

// Badge and tooltip metrics, in pixels.
const (
	BadgeWidth  = 64.0
	BadgeHeight = 18.0
	BadgeGap    = 12.0

	TooltipWidth  = 180.0
	TooltipGap    = 8.0   // between node edge and tooltip
	TooltipMargin = 190.0 // tooltip width plus right padding
	TooltipLift   = 35.0
	TooltipTop    = 8.0
)

// ErrOverlap marks a node whose circle touches or overlaps the hub, leaving
// no room for an edge.
var ErrOverlap = errors.New("node overlaps hub")

// Placed is a node resolved to container coordinates.
type Placed struct {
	ID       string
	Label    string
	Severity hub.Severity
	Circle
}

// Edge joins the hub to one node. From lies on the hub boundary and To on
// the node boundary.
type Edge struct {
	NodeID   string
	Severity hub.Severity
	From, To Point
	Badge    Point
}

// Warning reports a node that was skipped or drawn without an edge.
type Warning struct {
	NodeID string
	Reason string
	Err    error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.NodeID, w.Reason)
}

// Result is the output of Compute.
type Result struct {
	Ready    bool // false until the container has been measured
	Size     Size
	Hub      Circle
	HubLabel string
	Nodes    []Placed
	Edges    []Edge
	Warnings []Warning
}

// Compute lays out nodes around the hub at the center of a container of the
// given size. Malformed and duplicate nodes are skipped with a warning.
// An unmeasured container yields a Result with Ready unset and nothing placed.
func Compute(size Size, h hub.Hub, nodes []hub.Node) Result {
	res := Result{Size: size, HubLabel: h.Label}
	if !size.Valid() {
		return res
	}
	res.Ready = true

	hubR := h.Radius
	if hubR <= 0 || math.IsNaN(hubR) || math.IsInf(hubR, 0) {
		hubR = hub.DefaultHubRadius
	}
	center := size.Center()
	res.Hub = Circle{Center: center, R: hubR}

	placer := NewBadgePlacer(nil)
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if err := n.Validate(); err != nil {
			res.Warnings = append(res.Warnings, Warning{NodeID: n.ID, Reason: err.Error(), Err: err})
			continue
		}
		if seen[n.ID] {
			res.Warnings = append(res.Warnings, Warning{NodeID: n.ID, Reason: hub.ErrDuplicateID.Error(), Err: hub.ErrDuplicateID})
			continue
		}
		seen[n.ID] = true

		p, _ := n.Polar()
		c := Circle{Center: r2.Add(center, Polar(p.Angle, p.Distance)), R: p.Radius()}
		res.Nodes = append(res.Nodes, Placed{
			ID:       n.ID,
			Label:    n.Name(),
			Severity: n.Severity,
			Circle:   c,
		})

		e, ok := trimEdge(res.Hub, c)
		if !ok {
			res.Warnings = append(res.Warnings, Warning{
				NodeID: n.ID,
				Reason: fmt.Sprintf("%v: distance %g <= %g", ErrOverlap, p.Distance, hubR+c.R),
				Err:    ErrOverlap,
			})
			continue
		}
		e.NodeID = n.ID
		e.Severity = n.Severity
		e.Badge = placer.PlaceOnEdge(res.Hub.Center, c.Center, BadgeWidth, BadgeHeight, BadgeGap)
		res.Edges = append(res.Edges, e)
	}
	return res
}

// trimEdge clips the center-to-center segment to both circle boundaries.
func trimEdge(from, to Circle) (Edge, bool) {
	d := r2.Sub(to.Center, from.Center)
	dist := r2.Norm(d)
	if dist <= from.R+to.R {
		return Edge{}, false
	}
	unit := r2.Scale(1/dist, d)
	return Edge{
		From: r2.Add(from.Center, r2.Scale(from.R, unit)),
		To:   r2.Sub(to.Center, r2.Scale(to.R, unit)),
	}, true
}

// Node returns the placed node with the given ID.
func (r Result) Node(id string) (Placed, bool) {
	for _, p := range r.Nodes {
		if p.ID == id {
			return p, true
		}
	}
	return Placed{}, false
}

// Edge returns the edge leading to the given node.
func (r Result) Edge(id string) (Edge, bool) {
	for _, e := range r.Edges {
		if e.NodeID == id {
			return e, true
		}
	}
	return Edge{}, false
}

// HitTest returns the topmost node containing p. Later nodes draw on top.
// The hub is not hittable.
func (r Result) HitTest(p Point) (string, bool) {
	for i := len(r.Nodes) - 1; i >= 0; i-- {
		if r.Nodes[i].Contains(p) {
			return r.Nodes[i].ID, true
		}
	}
	return "", false
}

// Bounds returns the bounding box of the hub and every node.
func (r Result) Bounds() r2.Box {
	if !r.Ready {
		return r2.Box{}
	}
	b := r.Hub.Box()
	for _, n := range r.Nodes {
		b = b.Union(n.Box())
	}
	return b
}

// Tooltip returns the tooltip anchor for a placed node.
func (r Result) Tooltip(id string) (Point, bool) {
	n, ok := r.Node(id)
	if !ok {
		return Point{}, false
	}
	return TooltipAnchor(n.Circle, r.Size), true
}

// TooltipAnchor returns the top-left corner of a tooltip for a node circle:
// to the right of the node, kept inside the container's right edge and
// below its top margin.
func TooltipAnchor(c Circle, container Size) Point {
	return Point{
		X: math.Min(c.Center.X+c.R+TooltipGap, container.W-TooltipMargin),
		Y: math.Max(c.Center.Y-TooltipLift, TooltipTop),
	}
}
