package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ha1tch/hubview/pkg/debug"
	"github.com/ha1tch/hubview/pkg/hub"
	"github.com/ha1tch/hubview/pkg/layout"
	"github.com/ha1tch/hubview/pkg/render"
	"github.com/ha1tch/hubview/pkg/viewport"
)

// viewFlags are shared by commands that compute a layout.
type viewFlags struct {
	width, height float64
	zoom          float64
	panX, panY    float64
	focus         string
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.width, "width", 0, "container width in pixels (default from config)")
	cmd.Flags().Float64Var(&f.height, "height", 0, "container height in pixels (default from config)")
	cmd.Flags().Float64Var(&f.zoom, "zoom", 1, "zoom factor, clamped to [0.4, 3]")
	cmd.Flags().Float64Var(&f.panX, "pan-x", 0, "horizontal pan in pixels")
	cmd.Flags().Float64Var(&f.panY, "pan-y", 0, "vertical pan in pixels")
	cmd.Flags().StringVar(&f.focus, "focus", "", "center the view on this node")
}

// viewport builds a measured viewport for ds with the flags applied.
func (f *viewFlags) viewport(ds *hub.Dataset) (*viewport.Viewport, error) {
	w, h := f.width, f.height
	if w == 0 {
		w = cfg.Render.Width
	}
	if h == 0 {
		h = cfg.Render.Height
	}
	vp := viewport.New(ds, cfg.ViewportOptions())
	vp.Resize(w, h)
	if !vp.Layout().Ready {
		return nil, fmt.Errorf("invalid size %gx%g", w, h)
	}
	vp.SetTransform(viewport.Transform{Zoom: f.zoom, Pan: layout.Point{X: f.panX, Y: f.panY}})
	if f.focus != "" && !vp.FocusNode(f.focus) {
		return nil, fmt.Errorf("no placed node %q", f.focus)
	}
	return vp, nil
}

func renderCmd() *cobra.Command {
	var (
		view     viewFlags
		outputs  []string
		title    string
		selected string
		hovered  string
		noBadges bool
		noLegend bool
	)

	cmd := &cobra.Command{
		Use:   "render <dataset> -o out.svg [-o out.png ...]",
		Short: "Render a dataset to SVG, PNG or DOT",
		Example: `  hub render rivaroxaban.yaml -o out.svg
  hub render rivaroxaban.yaml -o out.svg -o out.png --zoom 1.5 --select Aspirin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(outputs) == 0 {
				return fmt.Errorf("at least one -o output is required")
			}
			ds, err := loadDataset(args[0])
			if err != nil {
				return err
			}
			vp, err := view.viewport(ds)
			if err != nil {
				return err
			}
			if selected != "" && !vp.Select(selected) {
				return fmt.Errorf("no placed node %q", selected)
			}

			opts := render.DefaultOptions()
			opts.Title = title
			if opts.Title == "" {
				opts.Title = ds.Title
			}
			opts.View = vp.Transform()
			opts.Selected = vp.Selection().Selected
			opts.Badges = !noBadges
			opts.Legend = !noLegend
			opts.Scale = int(cfg.Render.Scale)
			if hovered != "" {
				n, ok := ds.Node(hovered)
				if !ok {
					return fmt.Errorf("no node %q", hovered)
				}
				opts.Hovered = n.ID
				opts.Details = render.TooltipDetails(*n)
			}

			written, err := renderAll(cmd.Context(), vp.Layout(), opts, outputs)
			for _, path := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Written: %s\n", statusIcon(true), path)
			}
			return err
		},
	}

	view.register(cmd)
	cmd.Flags().StringArrayVarP(&outputs, "output", "o", nil, "output file; format from extension (.svg, .png, .dot)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "title (default dataset title)")
	cmd.Flags().StringVar(&selected, "select", "", "draw this node as selected")
	cmd.Flags().StringVar(&hovered, "hover", "", "draw the tooltip for this node")
	cmd.Flags().BoolVar(&noBadges, "no-badges", false, "omit severity badges")
	cmd.Flags().BoolVar(&noLegend, "no-legend", false, "omit the legend")
	return cmd
}

// renderAll writes every output concurrently and returns the paths that
// were written. The first failure cancels outputs that have not started.
func renderAll(ctx context.Context, res layout.Result, opts render.Options, outputs []string) ([]string, error) {
	defer debug.LogTiming("render", time.Now())
	for _, out := range outputs {
		if _, err := formatOf(out); err != nil {
			return nil, err
		}
	}

	ok := make([]bool, len(outputs))
	g, ctx := errgroup.WithContext(ctx)
	for i, out := range outputs {
		i, out := i, out
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := renderFile(res, opts, out); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			ok[i] = true
			return nil
		})
	}
	err := g.Wait()

	var written []string
	for i, out := range outputs {
		if ok[i] {
			written = append(written, out)
		}
	}
	return written, err
}

func formatOf(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".svg", ".png", ".dot", ".gv":
		return ext, nil
	}
	return "", fmt.Errorf("unknown output format %q for %s", ext, path)
}

func renderFile(res layout.Result, opts render.Options, path string) (err error) {
	ext, err := formatOf(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriter(f)

	switch ext {
	case ".svg":
		err = render.SVG(w, res, opts)
	case ".png":
		err = render.PNG(w, res, opts)
	default:
		_, err = w.WriteString(render.DOT(res, opts.Title))
	}
	if err != nil {
		return err
	}
	return w.Flush()
}
