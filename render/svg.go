package render

import (
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/wudi/xfalayout/xfa/layout"
)

// ptToMM converts layout points into canvas millimetres.
const ptToMM = 25.4 / 72

// Previewer draws pages with the Go fonts as SVG.
type Previewer struct {
	sans, mono *canvas.FontFamily
}

// NewPreviewer loads the embedded fonts.
func NewPreviewer() (*Previewer, error) {
	sans := canvas.NewFontFamily("Go")
	if err := sans.LoadFont(goregular.TTF, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("load go regular: %w", err)
	}
	mono := canvas.NewFontFamily("Go Mono")
	if err := mono.LoadFont(gomono.TTF, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("load go mono: %w", err)
	}
	return &Previewer{sans: sans, mono: mono}, nil
}

// Canvas draws one page.
func (p *Previewer) Canvas(page *layout.Page) *canvas.Canvas {
	c := canvas.New(page.Width*ptToMM, page.Height*ptToMM)
	ctx := canvas.NewContext(c)
	ctx.SetFillColor(canvas.White)
	ctx.DrawPath(0, 0, canvas.Rectangle(page.Width*ptToMM, page.Height*ptToMM))
	d := &drawer{p: p, ctx: ctx, pageH: page.Height}
	d.box(page.Box, 0, 0, nil)
	return c
}

// SVG writes page as an SVG document.
func (p *Previewer) SVG(w io.Writer, page *layout.Page) error {
	if err := p.Canvas(page).Write(w, renderers.SVG()); err != nil {
		return fmt.Errorf("render svg: %w", err)
	}
	return nil
}

type drawer struct {
	p     *Previewer
	ctx   *canvas.Context
	pageH float64
}

func styleLength(b *layout.Box, name string) float64 {
	v := strings.TrimSuffix(b.Style[name], "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseColor(s string) (color.RGBA, bool) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

// rect converts a top-left based rectangle in points into canvas space.
func (d *drawer) rect(x, y, w, h float64) (float64, float64, *canvas.Path) {
	return x * ptToMM, (d.pageH - y - h) * ptToMM, canvas.Rectangle(w*ptToMM, h*ptToMM)
}

// box draws b with its top left corner at (x, y) unless it positions
// itself, and returns the height it occupies in a flow.
func (d *drawer) box(b *layout.Box, x, y float64, parent *layout.Box) float64 {
	if b.Tag == "" || b.Style["visibility"] == "hidden" {
		return 0
	}
	if b.Style["position"] == "absolute" {
		x += styleLength(b, "left")
		y += styleLength(b, "top")
	}
	w, h := styleLength(b, "width"), styleLength(b, "height")

	switch {
	case b.HasClass("xfaField") || b.HasClass("xfaDraw") || b.Style["border"] != "":
		d.frame(b, x, y, w, h)
	case b.HasClass("xfaLine"):
		d.text(b, parent, x, y, h)
		return h
	}
	if b.Tag == "input" && b.Attrs["value"] != "" && b.Attrs["type"] != "password" {
		d.text(&layout.Box{Children: []*layout.Box{{Text: b.Attrs["value"]}}}, b, x+2, y, 12)
	}

	cx, cy := x, y
	used := 0.0
	for _, c := range b.Children {
		switch {
		case c.Style["position"] == "absolute":
			d.box(c, x, y, b)
		case b.HasClass("xfaLr") || b.HasClass("xfaRow") || b.HasClass("xfaField"):
			ch := d.box(c, cx, y, b)
			cx += styleLength(c, "width")
			used = max(used, ch)
		default:
			ch := d.box(c, x, cy, b)
			cy += ch
			used += ch
		}
	}
	if h == 0 {
		h = used
	}
	return h
}

func (d *drawer) frame(b *layout.Box, x, y, w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	stroke := color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
	if border := b.Style["border"]; border != "" {
		if c, ok := parseColor(border[strings.LastIndexByte(border, ' ')+1:]); ok {
			stroke = c
		}
	}
	d.ctx.Push()
	d.ctx.SetFillColor(canvas.Transparent)
	d.ctx.SetStrokeColor(stroke)
	d.ctx.SetStrokeWidth(0.1)
	px, py, path := d.rect(x, y, w, h)
	d.ctx.DrawPath(px, py, path)
	d.ctx.Pop()
}

// text draws the text of a line box, using the font of the enclosing
// rich text or caption box.
func (d *drawer) text(line, parent *layout.Box, x, y, h float64) {
	s := line.Content()
	if strings.TrimSpace(s) == "" {
		return
	}
	family := d.p.sans
	size := 10.0
	col := color.RGBA{A: 0xff}
	if parent != nil {
		if strings.Contains(strings.ToLower(parent.Style["fontFamily"]), "courier") {
			family = d.p.mono
		}
		if v := styleLength(parent, "fontSize"); v > 0 {
			size = v
		}
		if c, ok := parseColor(parent.Style["color"]); ok {
			col = c
		}
	}
	face := family.Face(size, col, canvas.FontRegular, canvas.FontNormal)
	baseline := y + h*0.8
	d.ctx.DrawText(x*ptToMM, (d.pageH-baseline)*ptToMM, canvas.NewTextLine(face, s, canvas.Left))
}
