package render

import (
	"fmt"
	"strings"

	"github.com/ha1tch/hubview/pkg/layout"
)

// hubNodeID names the hub in DOT output. Dataset IDs cannot collide with it
// because it is always quoted with the leading underscores.
const hubNodeID = "__hub"

// DOT converts a layout to Graphviz DOT with every node pinned at its
// computed position, so `neato -n` reproduces the layout exactly.
func DOT(res layout.Result, title string) string {
	var sb strings.Builder

	sb.WriteString("graph Hub {\n")
	sb.WriteString("    layout=neato;\n")
	sb.WriteString("    outputorder=edgesfirst;\n")
	sb.WriteString("    node [fontname=\"Helvetica\", fontsize=10, shape=circle, fixedsize=true, style=filled];\n")
	sb.WriteString("    edge [fontname=\"Helvetica\", fontsize=8];\n")
	if res.Ready {
		sb.WriteString(fmt.Sprintf("    bb=\"0,0,%s,%s\";\n", num(res.Size.W), num(res.Size.H)))
	}
	sb.WriteString("\n")

	if title != "" {
		sb.WriteString("    labelloc=\"t\";\n")
		sb.WriteString(fmt.Sprintf("    label=\"%s\";\n", escapeDOT(title)))
		sb.WriteString("\n")
	}

	if !res.Ready {
		sb.WriteString("}\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("    \"%s\" [label=\"%s\", %s, color=\"%s\", fillcolor=\"%s\", penwidth=2];\n",
		hubNodeID, escapeDOT(res.HubLabel), placement(res.Hub, res.Size),
		css(colorPrimary), css(colorPrimary)+"1a"))

	for _, n := range res.Nodes {
		col := css(SeverityColor(n.Severity))
		sb.WriteString(fmt.Sprintf("    \"%s\" [label=\"%s\", %s, color=\"%s\", fillcolor=\"%s12\"];\n",
			escapeDOT(n.ID), escapeDOT(n.Label), placement(n.Circle, res.Size), col, col))
	}
	sb.WriteString("\n")

	for _, e := range res.Edges {
		attrs := []string{
			fmt.Sprintf("label=\"%s\"", e.Severity),
			fmt.Sprintf("color=\"%s\"", css(SeverityColor(e.Severity))),
			fmt.Sprintf("penwidth=%g", StrokeWidth(e.Severity)),
		}
		if Dash(e.Severity) != nil {
			attrs = append(attrs, "style=dashed")
		}
		sb.WriteString(fmt.Sprintf("    \"%s\" -- \"%s\" [%s];\n",
			hubNodeID, escapeDOT(e.NodeID), strings.Join(attrs, ", ")))
	}

	sb.WriteString("}\n")
	return sb.String()
}

// placement pins a circle in Graphviz coordinates: points with y up, sizes
// in inches.
func placement(c layout.Circle, size layout.Size) string {
	return fmt.Sprintf("pos=\"%s,%s!\", width=%s",
		num(c.Center.X), num(size.H-c.Center.Y), num(2*c.R/72))
}

func num(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", v), "0"), ".")
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "<", "\\<")
	s = strings.ReplaceAll(s, ">", "\\>")
	return s
}
