package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/ha1tch/hubview/pkg/layout"
	"github.com/ha1tch/hubview/pkg/render"
)

func dotCmd() *cobra.Command {
	var (
		view   viewFlags
		output string
		title  string
	)
	cmd := &cobra.Command{
		Use:     "dot <dataset>",
		Short:   "Generate Graphviz DOT with pinned positions",
		Example: `  hub dot rivaroxaban.yaml | neato -n -Tpng -o out.png`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(args[0])
			if err != nil {
				return err
			}
			vp, err := view.viewport(ds)
			if err != nil {
				return err
			}
			if title == "" {
				title = ds.Title
			}
			dot := render.DOT(vp.Layout(), title)
			if output != "" {
				return os.WriteFile(output, []byte(dot), 0o644)
			}
			fmt.Fprint(cmd.OutOrStdout(), dot)
			return nil
		},
	}
	view.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().StringVarP(&title, "title", "t", "", "graph title (default dataset title)")
	return cmd
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type jsonCircle struct {
	ID       string    `json:"id,omitempty"`
	Label    string    `json:"label"`
	Severity string    `json:"severity,omitempty"`
	Center   jsonPoint `json:"center"`
	Radius   float64   `json:"radius"`
}

type jsonEdge struct {
	NodeID   string    `json:"node"`
	Severity string    `json:"severity"`
	From     jsonPoint `json:"from"`
	To       jsonPoint `json:"to"`
	Badge    jsonPoint `json:"badge"`
}

type jsonLayout struct {
	Width    float64      `json:"width"`
	Height   float64      `json:"height"`
	Zoom     float64      `json:"zoom"`
	Pan      jsonPoint    `json:"pan"`
	Hub      jsonCircle   `json:"hub"`
	Nodes    []jsonCircle `json:"nodes"`
	Edges    []jsonEdge   `json:"edges"`
	Warnings []string     `json:"warnings,omitempty"`
}

func point(p layout.Point) jsonPoint {
	return jsonPoint{X: p.X, Y: p.Y}
}

// layoutJSON converts computed geometry into its JSON form.
func layoutJSON(res layout.Result, zoom float64, pan layout.Point) jsonLayout {
	out := jsonLayout{
		Width:  res.Size.W,
		Height: res.Size.H,
		Zoom:   zoom,
		Pan:    point(pan),
		Hub:    jsonCircle{Label: res.HubLabel, Center: point(res.Hub.Center), Radius: res.Hub.R},
		Nodes:  make([]jsonCircle, 0, len(res.Nodes)),
		Edges:  make([]jsonEdge, 0, len(res.Edges)),
	}
	for _, n := range res.Nodes {
		out.Nodes = append(out.Nodes, jsonCircle{
			ID:       n.ID,
			Label:    n.Label,
			Severity: n.Severity.String(),
			Center:   point(n.Center),
			Radius:   n.R,
		})
	}
	for _, e := range res.Edges {
		out.Edges = append(out.Edges, jsonEdge{
			NodeID:   e.NodeID,
			Severity: e.Severity.String(),
			From:     point(e.From),
			To:       point(e.To),
			Badge:    point(e.Badge),
		})
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, w.String())
	}
	return out
}

func layoutCmd() *cobra.Command {
	var (
		view    viewFlags
		compact bool
	)
	cmd := &cobra.Command{
		Use:   "layout <dataset>",
		Short: "Print the computed geometry as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(args[0])
			if err != nil {
				return err
			}
			vp, err := view.viewport(ds)
			if err != nil {
				return err
			}
			tr := vp.Transform()
			doc := layoutJSON(vp.Layout(), tr.Zoom, tr.Pan)
			var data []byte
			if compact {
				data, err = json.Marshal(doc)
			} else {
				data, err = json.MarshalIndent(doc, "", "  ")
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	view.register(cmd)
	cmd.Flags().BoolVar(&compact, "compact", false, "single-line output")
	return cmd
}
