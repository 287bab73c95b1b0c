package render

import (
	"bytes"
	"encoding/xml"
	"errors"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/ha1tch/hubview/pkg/hub"
	"github.com/ha1tch/hubview/pkg/layout"
	"github.com/ha1tch/hubview/pkg/viewport"
)

func sample(t *testing.T) layout.Result {
	t.Helper()
	ds, err := hub.Load("../../testdata/rivaroxaban.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	res := layout.Compute(layout.Size{W: 900, H: 620}, ds.Hub, ds.Nodes)
	if !res.Ready || len(res.Nodes) == 0 {
		t.Fatal("sample layout is empty")
	}
	return res
}

// wellFormed walks the whole document so truncated or unbalanced output
// fails.
func wellFormed(t *testing.T, data []byte) map[string]int {
	t.Helper()
	counts := make(map[string]int)
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return counts
		}
		if err != nil {
			t.Fatalf("invalid XML: %v", err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			counts[se.Name.Local]++
		}
	}
}

func TestSVG(t *testing.T) {
	res := sample(t)
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Title = "Rivaroxaban <interactions>"
	if err := SVG(&buf, res, opts); err != nil {
		t.Fatalf("SVG: %v", err)
	}
	counts := wellFormed(t, buf.Bytes())

	// hub plus one circle per node
	if got, want := counts["circle"], len(res.Nodes)+1; got != want {
		t.Errorf("circles = %d, want %d", got, want)
	}
	if got := counts["line"]; got != len(res.Edges) {
		t.Errorf("lines = %d, want %d", got, len(res.Edges))
	}
	out := buf.String()
	for _, want := range []string{"#ef4444", "#f59e0b", "stroke-dasharray:6 4", "Rivaroxaban &lt;interactions&gt;", "Total 8"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestSVGViewTransform(t *testing.T) {
	res := sample(t)
	opts := DefaultOptions()
	opts.View = viewport.Transform{Zoom: 2, Pan: layout.Point{X: 10, Y: -5}}
	var buf bytes.Buffer
	if err := SVG(&buf, res, opts); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "translate(460.00,305.00) scale(2.0000) translate(-450.00,-310.00)") {
		t.Errorf("transform not applied:\n%s", buf.String()[:300])
	}

	// Zoom beyond the limits is clamped.
	opts.View = viewport.Transform{Zoom: 50}
	buf.Reset()
	SVG(&buf, res, opts)
	if !strings.Contains(buf.String(), "scale(3.0000)") {
		t.Error("zoom not clamped")
	}
}

func TestSVGSelectionAndTooltip(t *testing.T) {
	res := sample(t)
	id := res.Nodes[0].ID
	opts := DefaultOptions()
	opts.Selected = id
	opts.Hovered = id
	opts.Legend = false

	var buf bytes.Buffer
	if err := SVG(&buf, res, opts); err != nil {
		t.Fatal(err)
	}
	counts := wellFormed(t, buf.Bytes())
	if !strings.Contains(buf.String(), "stroke-width:2;stroke-opacity:1") {
		t.Error("selected node not highlighted")
	}
	// one pill per badge plus the tooltip card
	if got, want := counts["rect"], len(res.Edges)+2; got != want {
		t.Errorf("rects = %d, want %d", got, want)
	}
}

func TestSVGNotReady(t *testing.T) {
	var buf bytes.Buffer
	err := SVG(&buf, layout.Result{}, DefaultOptions())
	if !errors.Is(err, ErrNotReady) {
		t.Errorf("err = %v, want ErrNotReady", err)
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written for an unmeasured layout")
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestSVGWriteError(t *testing.T) {
	if err := SVG(failWriter{}, sample(t), DefaultOptions()); err == nil {
		t.Error("expected write error")
	}
}

func TestPNG(t *testing.T) {
	res := sample(t)
	opts := DefaultOptions()
	opts.Scale = 2
	opts.Hovered = res.Nodes[0].ID

	var buf bytes.Buffer
	if err := PNG(&buf, res, opts); err != nil {
		t.Fatalf("PNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 900 || b.Dy() != 620 {
		t.Errorf("size = %v, want 900x620", b)
	}

	// Corner pixel is the backdrop.
	r, g, b, _ := img.At(1, 1).RGBA()
	if r>>8 != uint32(colorBackdrop.R) || g>>8 != uint32(colorBackdrop.G) || b>>8 != uint32(colorBackdrop.B) {
		t.Errorf("corner = %v, want backdrop", img.At(1, 1))
	}
}

func TestImageHubIsTinted(t *testing.T) {
	res := sample(t)
	opts := DefaultOptions()
	opts.Scale = 1
	opts.Badges = false
	opts.Legend = false
	img, err := Image(res, opts)
	if err != nil {
		t.Fatal(err)
	}
	// A point on the hub ring, away from the label.
	c := res.Hub.Center
	px := img.RGBAAt(int(c.X), int(c.Y-res.Hub.R))
	if px.G <= px.R {
		t.Errorf("hub ring pixel %v should be teal", px)
	}
}

func TestImageNotReady(t *testing.T) {
	if _, err := Image(layout.Result{}, DefaultOptions()); !errors.Is(err, ErrNotReady) {
		t.Errorf("err = %v", err)
	}
}

func TestDOT(t *testing.T) {
	res := sample(t)
	out := DOT(res, "Rivaroxaban")

	if !strings.HasPrefix(out, "graph Hub {") || !strings.HasSuffix(out, "}\n") {
		t.Errorf("unexpected framing:\n%s", out)
	}
	// Hub sits at the center with y flipped: (450, 620-310).
	if !strings.Contains(out, `pos="450,310!"`) {
		t.Error("hub not pinned at center")
	}
	if got := strings.Count(out, " -- "); got != len(res.Edges) {
		t.Errorf("edges = %d, want %d", got, len(res.Edges))
	}
	if !strings.Contains(out, "style=dashed") {
		t.Error("minor edge should be dashed")
	}
	if !strings.Contains(out, `label="Rivaroxaban"`) {
		t.Error("missing title")
	}
}

func TestDOTFlipsY(t *testing.T) {
	n := hub.Node{ID: "up", Label: "up", Severity: hub.SeverityMajor,
		Angle: hub.Float(-90), Distance: hub.Float(100), Size: hub.Float(36)}
	res := layout.Compute(layout.Size{W: 400, H: 300}, hub.Hub{Label: "H", Radius: 30}, []hub.Node{n})
	out := DOT(res, "")
	// Screen y 50 is 250 from the bottom. Diameter 36pt is half an inch.
	if !strings.Contains(out, `"up" [label="up", pos="200,250!", width=0.5`) {
		t.Errorf("unexpected node line:\n%s", out)
	}
}

func TestDOTEscaping(t *testing.T) {
	n := hub.Node{ID: `a"b`, Label: `x<y>\z`, Severity: hub.SeverityMinor,
		Angle: hub.Float(0), Distance: hub.Float(100), Size: hub.Float(20)}
	res := layout.Compute(layout.Size{W: 400, H: 300}, hub.Hub{Label: "H"}, []hub.Node{n})
	out := DOT(res, "")
	if !strings.Contains(out, `"a\"b" [label="x\<y\>\\z"`) {
		t.Errorf("escaping failed:\n%s", out)
	}
}

func TestDOTNotReady(t *testing.T) {
	out := DOT(layout.Result{}, "")
	if strings.Contains(out, "pos=") {
		t.Error("unmeasured layout should have no nodes")
	}
}

func TestPalette(t *testing.T) {
	if StrokeWidth(hub.SeverityMajor) != 3 || StrokeWidth(hub.SeverityModerate) != 2 || StrokeWidth(hub.SeverityMinor) != 1 {
		t.Error("unexpected stroke widths")
	}
	if Dash(hub.SeverityMajor) != nil || len(Dash(hub.SeverityMinor)) != 2 {
		t.Error("only minor edges are dashed")
	}
	if SeverityColor(hub.SeverityUnknown) != ColorUnknown {
		t.Error("unknown severity should use the fallback colour")
	}
	if got := css(ColorMajor); got != "#ef4444" {
		t.Errorf("css = %q", got)
	}
}

func TestTooltipDetails(t *testing.T) {
	ds, err := hub.Load("../../testdata/rivaroxaban.yaml")
	if err != nil {
		t.Fatal(err)
	}
	n, _ := ds.Node("Aspirin")
	got := TooltipDetails(*n)
	want := []string{"COX-1 Inhibitor", "FAERS: 21,089 reports"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("TooltipDetails = %q, want %q", got, want)
	}
	if d := TooltipDetails(hub.Node{}); len(d) != 0 {
		t.Errorf("no metadata should give no lines, got %q", d)
	}

	res := sample(t)
	opts := DefaultOptions()
	opts.Hovered = "Aspirin"
	opts.Details = got
	var buf bytes.Buffer
	if err := SVG(&buf, res, opts); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "FAERS: 21,089 reports") {
		t.Error("tooltip details not drawn")
	}
}
