package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ha1tch/hubview/pkg/layout"
)

var (
	fontsOnce sync.Once
	fontsErr  error
	regular   *opentype.Font
	bold      *opentype.Font
)

func loadFonts() error {
	fontsOnce.Do(func() {
		regular, fontsErr = opentype.Parse(goregular.TTF)
		if fontsErr != nil {
			return
		}
		bold, fontsErr = opentype.Parse(gobold.TTF)
	})
	return fontsErr
}

// pngContext draws in supersampled device space. Scene points go through the
// view transform and are then multiplied by the supersampling factor.
type pngContext struct {
	dc    *gg.Context
	view  func(layout.Point) layout.Point
	k     float64 // supersampling factor
	zoom  float64
	faces map[string]font.Face
}

func (pc *pngContext) face(f *opentype.Font, name string, size float64) (font.Face, error) {
	key := fmt.Sprintf("%s/%.2f", name, size)
	if face, ok := pc.faces[key]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	pc.faces[key] = face
	return face, nil
}

// text draws s centred on the scene point p at a scene font size.
func (pc *pngContext) text(s string, p layout.Point, size float64, isBold bool, ax float64) error {
	f, name := regular, "regular"
	if isBold {
		f, name = bold, "bold"
	}
	face, err := pc.face(f, name, size*pc.zoom*pc.k)
	if err != nil {
		return err
	}
	pc.dc.SetFontFace(face)
	q := pc.device(p)
	pc.dc.DrawStringAnchored(s, q.X, q.Y, ax, 0.35)
	return nil
}

func (pc *pngContext) device(p layout.Point) layout.Point {
	return r2.Scale(pc.k, pc.view(p))
}

// length converts a scene length to device pixels.
func (pc *pngContext) length(v float64) float64 {
	return v * pc.zoom * pc.k
}

func (pc *pngContext) close() {
	for _, f := range pc.faces {
		f.Close()
	}
}

// PNG writes res as a PNG image. The scene is drawn at opts.Scale times the
// container size and downsampled for smooth edges.
func PNG(w io.Writer, res layout.Result, opts Options) error {
	img, err := Image(res, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// Image renders res to an RGBA image the size of the container.
func Image(res layout.Result, opts Options) (*image.RGBA, error) {
	if !res.Ready {
		return nil, ErrNotReady
	}
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("loading fonts: %w", err)
	}
	k := opts.Scale
	if k < 1 {
		k = 1
	}
	width, height := round(res.Size.W), round(res.Size.H)
	dc := gg.NewContext(width*k, height*k)

	v := opts.view()
	c := res.Size.Center()
	pc := &pngContext{
		dc:    dc,
		view:  func(p layout.Point) layout.Point { return v.Screen(p, c) },
		k:     float64(k),
		zoom:  v.Zoom,
		faces: make(map[string]font.Face),
	}
	defer pc.close()

	if opts.Background {
		dc.SetColor(colorBackdrop)
		dc.Clear()
	}

	for _, e := range res.Edges {
		from, to := pc.device(e.From), pc.device(e.To)
		dc.SetColor(withAlpha(SeverityColor(e.Severity), EdgeOpacity))
		dc.SetLineWidth(pc.length(StrokeWidth(e.Severity)))
		if d := Dash(e.Severity); d != nil {
			dc.SetDash(pc.length(d[0]), pc.length(d[1]))
		} else {
			dc.SetDash()
		}
		dc.DrawLine(from.X, from.Y, to.X, to.Y)
		dc.Stroke()
	}
	dc.SetDash()

	if opts.Badges {
		for _, e := range res.Edges {
			if err := drawBadgePNG(pc, e); err != nil {
				return nil, err
			}
		}
	}

	hc := pc.device(res.Hub.Center)
	dc.DrawCircle(hc.X, hc.Y, pc.length(res.Hub.R))
	dc.SetColor(withAlpha(colorPrimary, 0.1))
	dc.FillPreserve()
	dc.SetColor(colorPrimary)
	dc.SetLineWidth(pc.length(2))
	dc.Stroke()
	dc.SetColor(colorText)
	if err := pc.text(res.HubLabel, res.Hub.Center, 12, true, 0.5); err != nil {
		return nil, err
	}

	for _, n := range res.Nodes {
		col := SeverityColor(n.Severity)
		p := pc.device(n.Center)
		r := pc.length(n.R)
		if n.ID == opts.Selected {
			// glow
			dc.DrawCircle(p.X, p.Y, r+pc.length(4))
			dc.SetColor(withAlpha(col, 0.15))
			dc.Fill()
		}
		dc.DrawCircle(p.X, p.Y, r)
		dc.SetColor(withAlpha(col, 0.07))
		dc.FillPreserve()
		if n.ID == opts.Selected {
			dc.SetColor(col)
			dc.SetLineWidth(pc.length(2))
		} else {
			dc.SetColor(withAlpha(col, 0.6))
			dc.SetLineWidth(pc.length(1))
		}
		dc.Stroke()
		dc.SetColor(colorText)
		if err := pc.text(n.Label, n.Center, 10, false, 0.5); err != nil {
			return nil, err
		}
	}

	if opts.Hovered != "" {
		if n, ok := res.Node(opts.Hovered); ok {
			if err := drawTooltipPNG(pc, n, opts.Details, res.Size); err != nil {
				return nil, err
			}
		}
	}

	if opts.Legend {
		if err := drawLegendPNG(pc, res); err != nil {
			return nil, err
		}
	}

	// Downsample with a high-quality filter.
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	src := dc.Image()
	draw.CatmullRom.Scale(out, out.Bounds(), src, src.Bounds(), draw.Over, nil)
	return out, nil
}

func drawBadgePNG(pc *pngContext, e layout.Edge) error {
	dc := pc.dc
	col := SeverityColor(e.Severity)
	label := e.Severity.String()
	w := pc.length(float64(badgeWidth(label)))
	h := pc.length(layout.BadgeHeight - 4)
	p := pc.device(e.Badge)
	dc.DrawRoundedRectangle(p.X-w/2, p.Y-h/2, w, h, h/2)
	dc.SetColor(colorBackdrop)
	dc.FillPreserve()
	dc.SetColor(col)
	dc.SetLineWidth(pc.length(1))
	dc.Stroke()
	return pc.text(label, e.Badge, 8, true, 0.5)
}

// drawTooltipPNG draws the hover card. The anchor is a screen position, so
// the card is not scaled with the view.
func drawTooltipPNG(pc *pngContext, n layout.Placed, details []string, size layout.Size) error {
	dc := pc.dc
	screen := layout.Circle{Center: pc.view(n.Center), R: n.R * pc.zoom}
	at := layout.TooltipAnchor(screen, size)
	k := pc.k
	dc.DrawRoundedRectangle(at.X*k, at.Y*k, layout.TooltipWidth*k, tooltipHeight(len(details))*k, 8*k)
	dc.SetColor(withAlpha(colorBackdrop, 0.95))
	dc.FillPreserve()
	dc.SetColor(colorSubtle)
	dc.SetLineWidth(k)
	dc.Stroke()

	x, y := at.X+tooltipPad, at.Y+18
	if err := screenText(pc, n.Label, x, y, 11, true, colorText); err != nil {
		return err
	}
	for _, d := range details {
		y += tooltipLine
		if err := screenText(pc, d, x, y, 9, false, colorSubtle); err != nil {
			return err
		}
	}
	return screenText(pc, strings.ToUpper(n.Severity.String()), x, y+18, 8, true, SeverityColor(n.Severity))
}

func drawLegendPNG(pc *pngContext, res layout.Result) error {
	x, y := 12.0, res.Size.H-12
	for _, e := range legend(res) {
		text := fmt.Sprintf("%s %d", e.label, e.count)
		if err := screenText(pc, text, x, y, 10, false, e.color); err != nil {
			return err
		}
		x += float64(len(text)*6 + 14)
	}
	return nil
}

// screenText draws left-aligned text at a container position, ignoring the
// view transform.
func screenText(pc *pngContext, s string, x, y, size float64, isBold bool, col color.Color) error {
	f, name := regular, "regular"
	if isBold {
		f, name = bold, "bold"
	}
	face, err := pc.face(f, name, size*pc.k)
	if err != nil {
		return err
	}
	pc.dc.SetFontFace(face)
	pc.dc.SetColor(col)
	pc.dc.DrawStringAnchored(s, x*pc.k, y*pc.k, 0, 0)
	return nil
}
