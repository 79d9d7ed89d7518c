package layout

import (
	"math"
	"strings"

	"github.com/wudi/xfalayout/fonts"
	"github.com/wudi/xfalayout/xfa"
)

// clampDim bounds v by lo and, when positive, hi.
func clampDim(v, lo, hi float64) float64 {
	if hi > 0 {
		v = math.Min(v, hi)
	}
	return math.Max(v, lo)
}

func textLines(b *Box, tb textBlock, lh float64) {
	for _, l := range tb.lines {
		line := newBox("div", "xfaLine")
		line.Style["height"] = px(lh)
		line.Append(textBox(l.text))
		b.Append(line)
	}
}

func (s *session) layoutDraw(n, parent *xfa.Node, space Size) Result {
	if presenceHidden(n) {
		return emptyResult
	}
	d := s.dimensions(n, parent)
	font, p, margin := fontOf(n), paraOf(n), n.MarginInsets()
	text := contentText(n)

	maxW := space.W
	if d.hasW() {
		maxW = d.W
	}
	tb := s.wrap(text, font, p, maxW-margin.Horizontal())
	if !d.hasW() {
		if tb.broken && s.isThereMoreWidth(parent) {
			return failureResult
		}
		w := 0.0
		if len(tb.lines) > 0 {
			w = tb.width + margin.Horizontal()
		}
		d.W = clampDim(w, d.MinW, d.MaxW)
	}
	if !d.hasH() {
		h := 0.0
		if len(tb.lines) > 0 {
			h = tb.height + margin.Vertical()
		}
		d.H = clampDim(h, d.MinH, d.MaxH)
	}

	s.setFirstUnsplittable(n)
	if !s.checkDimensions(n, d, parent, space) {
		return failureResult
	}
	s.unsetFirstUnsplittable(n)

	b := newBox("div", "xfaDraw")
	identify(b, n)
	placeStyle(b, d, parent, d.W, d.H)
	presenceStyle(b, n)
	borderStyle(b, n)
	marginStyle(b, margin)

	if img := imageBox(n); img != nil {
		b.Append(img)
	} else if len(tb.lines) > 0 {
		rich := newBox("div", "xfaRich")
		fontStyle(rich, font, n)
		paraStyle(rich, p)
		textLines(rich, tb, s.lineHeight(font, p))
		b.Append(rich)
	}
	return success(b, Rect{X: d.X, Y: d.Y, W: d.W, H: d.H})
}

// caption is the measured caption of a field.
type caption struct {
	node      *xfa.Node
	placement string
	font      fonts.Descriptor
	para      para
	text      textBlock
	w, h      float64
}

func (s *session) measureCaption(n *xfa.Node, innerW float64) *caption {
	cn := n.First(xfa.KindCaption)
	if cn == nil || presenceHidden(cn) {
		return nil
	}
	text := contentText(cn)
	c := &caption{node: cn, placement: cn.AttrOr("placement", "left"), font: fontOf(cn), para: paraOf(cn)}
	reserve := cn.Measure("reserve", -1)
	switch c.placement {
	case "top", "bottom":
		c.text = s.wrap(text, c.font, c.para, innerW)
		c.w = c.text.width
		c.h = c.text.height
		if reserve > 0 {
			c.h = reserve
		}
	default:
		limit := innerW
		if reserve > 0 {
			limit = reserve
		}
		c.text = s.wrap(text, c.font, c.para, limit)
		c.w = c.text.width
		if reserve > 0 {
			c.w = reserve
		}
		c.h = c.text.height
	}
	if text == "" && reserve <= 0 {
		return nil
	}
	return c
}

func (c *caption) side() bool {
	return c != nil && c.placement != "top" && c.placement != "bottom"
}

func (s *session) layoutField(n, parent *xfa.Node, space Size) Result {
	if presenceHidden(n) {
		return emptyResult
	}
	d := s.dimensions(n, parent)
	font, p, margin := fontOf(n), paraOf(n), n.MarginInsets()
	widget := n.Widget()
	lh := s.lineHeight(font, p)

	outerW := space.W
	if d.hasW() {
		outerW = d.W
	}
	innerW := outerW - margin.Horizontal()
	capt := s.measureCaption(n, innerW)

	widgetW := innerW
	if capt.side() {
		widgetW = innerW - capt.w
	}
	value := displayValue(n, widget)
	var tb textBlock
	if multiLine(widget) {
		tb = s.wrap(value, font, p, widgetW)
	} else if value != "" {
		w := s.width(font, value)
		tb = textBlock{lines: []textLine{{text: value, width: w}}, width: w, height: lh}
	}
	natW, natH := tb.width, math.Max(tb.height, lh)
	if widget != nil && widget.Kind == xfa.KindCheckButton {
		size := widget.Measure("size", 10)
		natW, natH = size, math.Max(size, natH)
	}

	if !d.hasW() {
		if tb.broken && s.isThereMoreWidth(parent) {
			return failureResult
		}
		w := natW
		switch {
		case capt.side():
			w += capt.w
		case capt != nil:
			w = math.Max(w, capt.w)
		}
		if w == 0 || widget == nil || isTextual(widget) {
			// text widgets stretch to the available width
			w = math.Max(w, innerW)
		}
		d.W = clampDim(w+margin.Horizontal(), d.MinW, d.MaxW)
	}
	if !d.hasH() {
		h := natH
		switch {
		case capt.side():
			h = math.Max(h, capt.h)
		case capt != nil:
			h += capt.h
		}
		d.H = clampDim(h+margin.Vertical(), d.MinH, d.MaxH)
	}

	s.setFirstUnsplittable(n)
	if !s.checkDimensions(n, d, parent, space) {
		return failureResult
	}
	s.unsetFirstUnsplittable(n)

	b := newBox("div", "xfaField")
	identify(b, n)
	placeStyle(b, d, parent, d.W, d.H)
	presenceStyle(b, n)
	borderStyle(b, n)
	marginStyle(b, margin)

	wb := s.widgetBox(n, widget, value, font)
	if capt == nil {
		b.Append(wb)
		return success(b, Rect{X: d.X, Y: d.Y, W: d.W, H: d.H})
	}

	cb := newBox("div", "xfaCaption", "xfaCaption"+upperFirst(capt.placement))
	fontStyle(cb, capt.font, capt.node)
	paraStyle(cb, capt.para)
	if capt.side() {
		cb.Style["width"] = px(capt.w)
	} else {
		cb.Style["height"] = px(capt.h)
	}
	textLines(cb, capt.text, s.lineHeight(capt.font, capt.para))
	switch capt.placement {
	case "right", "bottom":
		b.Append(wb, cb)
	default:
		b.Append(cb, wb)
	}
	return success(b, Rect{X: d.X, Y: d.Y, W: d.W, H: d.H})
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
