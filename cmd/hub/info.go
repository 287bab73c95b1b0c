package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ha1tch/hubview/pkg/hub"
	"github.com/ha1tch/hubview/pkg/layout"
)

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <dataset>",
		Short: "Show dataset summary and node table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(args[0])
			if err != nil {
				return err
			}
			printInfo(cmd.OutOrStdout(), ds)
			return nil
		},
	}
}

func printInfo(w io.Writer, ds *hub.Dataset) {
	if ds.Title != "" {
		fmt.Fprintf(w, "Title:    %s\n", ds.Title)
	}
	fmt.Fprintf(w, "Hub:      %s (radius %g)\n", ds.Hub.Label, ds.Hub.Radius)
	fmt.Fprintf(w, "Nodes:    %d\n", len(ds.Nodes))
	counts := ds.Counts()
	for _, s := range hub.Severities {
		fmt.Fprintf(w, "  %-9s %d\n", s.String()+":", counts[s])
	}
	if n := counts[hub.SeverityUnknown]; n > 0 {
		fmt.Fprintf(w, "  %-9s %s\n", "Unknown:", Warn.Sprint(n))
	}
	fmt.Fprintln(w)

	headers := []string{"ID", "Severity", "Angle", "Distance", "Size"}
	var rows, plain [][]string
	for _, n := range ds.Nodes {
		cells := []string{n.ID, n.Severity.String(), optional(n.Angle), optional(n.Distance), optional(n.Size)}
		plain = append(plain, cells)
		colored := append([]string(nil), cells...)
		colored[1] = severityText(n.Severity)
		rows = append(rows, colored)
	}
	table(w, headers, rows, plain)
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func validateCmd() *cobra.Command {
	var view viewFlags
	cmd := &cobra.Command{
		Use:   "validate <dataset>",
		Short: "Check a dataset; exits 1 if any node would be skipped or drawn without an edge",
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
			problems := validate(ds, vp.Layout())
			out := cmd.OutOrStdout()
			for _, p := range problems {
				fmt.Fprintf(out, "%s %s\n", statusIcon(false), p)
			}
			if len(problems) > 0 {
				Bad.Fprintf(out, "%s: %d problem(s)\n", args[0], len(problems))
				return errInvalid
			}
			fmt.Fprintf(out, "%s %s: %d nodes, %d edges\n",
				statusIcon(true), args[0], len(vp.Layout().Nodes), len(vp.Layout().Edges))
			return nil
		},
	}
	view.register(cmd)
	return cmd
}

// validate merges dataset errors with the layout warnings that only exist
// once nodes are placed, such as nodes overlapping the hub.
func validate(ds *hub.Dataset, res layout.Result) []string {
	var out []string
	for _, err := range ds.Validate() {
		out = append(out, err.Error())
	}
	for _, w := range res.Warnings {
		if errors.Is(w.Err, layout.ErrOverlap) {
			out = append(out, "node "+w.String())
		}
	}
	return out
}
