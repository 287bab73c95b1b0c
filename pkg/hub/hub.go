// Package hub provides the hub-and-spoke dataset types: one central hub and
// the peripheral nodes laid out around it on a fixed polar assignment.
package hub

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// Severity is the ordinal weight of a node's relationship to the hub.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityMinor
	SeverityModerate
	SeverityMajor
)

// Severities lists the known tiers from most to least severe.
var Severities = []Severity{SeverityMajor, SeverityModerate, SeverityMinor}

// DefaultHubRadius is used when a dataset does not give the hub a radius.
const DefaultHubRadius = 60.0

// Validation errors reported for malformed nodes.
var (
	ErrMissingAngle    = errors.New("missing angle")
	ErrMissingDistance = errors.New("missing distance")
	ErrMissingSize     = errors.New("missing size")
	ErrBadValue        = errors.New("invalid value")
	ErrUnknownSeverity = errors.New("unknown severity")
	ErrDuplicateID     = errors.New("duplicate id")
)

// ParseSeverity parses a tier name case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "major":
		return SeverityMajor, nil
	case "moderate":
		return SeverityModerate, nil
	case "minor":
		return SeverityMinor, nil
	}
	return SeverityUnknown, fmt.Errorf("%w: %q", ErrUnknownSeverity, s)
}

func (s Severity) String() string {
	switch s {
	case SeverityMajor:
		return "Major"
	case SeverityModerate:
		return "Moderate"
	case SeverityMinor:
		return "Minor"
	}
	return "Unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names decode to
// SeverityUnknown without error so one bad node does not fail the whole file.
func (s *Severity) UnmarshalText(text []byte) error {
	v, err := ParseSeverity(string(text))
	if err != nil {
		*s = SeverityUnknown
		return nil
	}
	*s = v
	return nil
}

// Hub is the fixed central entity.
type Hub struct {
	Label  string
	Radius float64
}

// Node is a peripheral entity. Angle, Distance and Size are pointers so a
// descriptor that omits one of them can be told apart from a zero value.
type Node struct {
	ID       string
	Label    string
	Severity Severity
	Angle    *float64 // degrees, 0 = +x, clockwise on screen
	Distance *float64 // pixels from hub center
	Size     *float64 // glyph diameter in pixels
	Metadata map[string]any
}

// Polar holds validated polar layout parameters.
type Polar struct {
	Angle    float64
	Distance float64
	Size     float64
}

// Radius returns the glyph radius.
func (p Polar) Radius() float64 {
	return p.Size / 2
}

// Float returns a pointer to v, for building nodes in code.
func Float(v float64) *float64 {
	return &v
}

// Polar returns the node's layout parameters, or an error describing why the node
// cannot be placed.
func (n Node) Polar() (Polar, error) {
	switch {
	case n.Angle == nil:
		return Polar{}, ErrMissingAngle
	case n.Distance == nil:
		return Polar{}, ErrMissingDistance
	case n.Size == nil:
		return Polar{}, ErrMissingSize
	}
	p := Polar{Angle: *n.Angle, Distance: *n.Distance, Size: *n.Size}
	if !finite(p.Angle) || !finite(p.Distance) || !finite(p.Size) {
		return Polar{}, fmt.Errorf("%w: non-finite layout value", ErrBadValue)
	}
	if p.Distance < 0 {
		return Polar{}, fmt.Errorf("%w: negative distance %g", ErrBadValue, p.Distance)
	}
	if p.Size <= 0 {
		return Polar{}, fmt.Errorf("%w: size must be positive, got %g", ErrBadValue, p.Size)
	}
	return p, nil
}

// Validate reports whether the node can be laid out and rendered.
func (n Node) Validate() error {
	if _, err := n.Polar(); err != nil {
		return err
	}
	if n.Severity == SeverityUnknown {
		return ErrUnknownSeverity
	}
	return nil
}

// Name returns the label, falling back to the ID.
func (n Node) Name() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// MetaKeys returns the metadata keys in sorted order.
func (n Node) MetaKeys() []string {
	keys := make([]string, 0, len(n.Metadata))
	for k := range n.Metadata {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Meta formats a metadata value for display. Lists are joined with commas.
// Missing keys give "".
func (n Node) Meta(key string) string {
	v, ok := n.Metadata[key]
	if !ok || v == nil {
		return ""
	}
	switch v := v.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = fmt.Sprint(e)
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(v, ", ")
	}
	return fmt.Sprint(v)
}

// Dataset is one hub and its nodes. It is treated as immutable once handed
// to a viewport.
type Dataset struct {
	Title string
	Hub   Hub
	Nodes []Node
}

// New creates an empty dataset around the given hub.
func New(h Hub) *Dataset {
	if h.Radius <= 0 {
		h.Radius = DefaultHubRadius
	}
	return &Dataset{
		Hub:   h,
		Nodes: make([]Node, 0),
	}
}

// AddNode appends a node. An empty ID falls back to the label.
func (d *Dataset) AddNode(n Node) {
	if n.ID == "" {
		n.ID = n.Label
	}
	d.Nodes = append(d.Nodes, n)
}

// Node looks up a node by ID. The first node with that ID wins.
func (d *Dataset) Node(id string) (*Node, bool) {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i], true
		}
	}
	return nil, false
}

// NodeError ties a validation error to the offending node.
type NodeError struct {
	Index int
	ID    string
	Err   error
}

func (e *NodeError) Error() string {
	id := e.ID
	if id == "" {
		id = fmt.Sprintf("#%d", e.Index)
	}
	return fmt.Sprintf("node %s: %v", id, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// Validate checks every node and returns one NodeError per bad node.
// Problems are never fatal; callers skip the offending nodes.
func (d *Dataset) Validate() []error {
	var errs []error
	seen := make(map[string]bool, len(d.Nodes))
	for i, n := range d.Nodes {
		if err := n.Validate(); err != nil {
			errs = append(errs, &NodeError{Index: i, ID: n.ID, Err: err})
			continue
		}
		if seen[n.ID] {
			errs = append(errs, &NodeError{Index: i, ID: n.ID, Err: ErrDuplicateID})
			continue
		}
		seen[n.ID] = true
	}
	return errs
}

// Counts holds the number of nodes per severity tier.
type Counts map[Severity]int

// Counts tallies nodes by severity.
func (d *Dataset) Counts() Counts {
	c := make(Counts, len(Severities))
	for _, n := range d.Nodes {
		c[n.Severity]++
	}
	return c
}

// Search returns the IDs of nodes whose name contains query, ignoring case,
// in dataset order. An empty query matches every node.
func (d *Dataset) Search(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	var ids []string
	for _, n := range d.Nodes {
		if q == "" || strings.Contains(strings.ToLower(n.Name()), q) {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
