package layout

import (
	"math"
	"strings"

	"github.com/wudi/xfalayout/fonts"
	"github.com/wudi/xfalayout/xfa"
)

const defaultTypeface = "Courier"

// fontOf returns the font descriptor in effect for n: its own font
// property, falling back attribute by attribute on the enclosing
// containers.
func fontOf(n *xfa.Node) fonts.Descriptor {
	d := fonts.Descriptor{}
	var typeface, size, weight, posture, spacing string
	for p := n; p != nil; p = p.Parent() {
		f := p.First(xfa.KindFont)
		if f == nil {
			continue
		}
		fill := func(dst *string, name string) {
			if *dst == "" {
				*dst, _ = f.Attr(name)
			}
		}
		fill(&typeface, "typeface")
		fill(&size, "size")
		fill(&weight, "weight")
		fill(&posture, "posture")
		fill(&spacing, "letterSpacing")
	}
	d.Typeface = typeface
	if d.Typeface == "" {
		d.Typeface = defaultTypeface
	}
	d.Size = xfa.ParseUnit(size)
	if d.Size <= 0 {
		d.Size = fonts.DefaultSize
	}
	d.Weight, d.Posture = weight, posture
	d.LetterSpacing = xfa.ParseUnit(spacing)
	return d
}

// para is the paragraph formatting of a text run.
type para struct {
	hAlign      string
	vAlign      string
	lineHeight  float64
	spaceAbove  float64
	spaceBelow  float64
	marginLeft  float64
	marginRight float64
	textIndent  float64
}

func paraOf(n *xfa.Node) para {
	for p := n; p != nil; p = p.Parent() {
		pn := p.First(xfa.KindPara)
		if pn == nil {
			continue
		}
		return para{
			hAlign:      pn.AttrOr("hAlign", "left"),
			vAlign:      pn.AttrOr("vAlign", "top"),
			lineHeight:  pn.Measure("lineHeight", 0),
			spaceAbove:  pn.Measure("spaceAbove", 0),
			spaceBelow:  pn.Measure("spaceBelow", 0),
			marginLeft:  pn.Measure("marginLeft", 0),
			marginRight: pn.Measure("marginRight", 0),
			textIndent:  pn.Measure("textIndent", 0),
		}
	}
	return para{hAlign: "left", vAlign: "top"}
}

type textLine struct {
	text  string
	width float64
}

// textBlock is the result of wrapping a text.
type textBlock struct {
	lines  []textLine
	width  float64
	height float64
	// broken is set when a line had to be wrapped for lack of width.
	broken bool
}

func (s *session) lineHeight(d fonts.Descriptor, p para) float64 {
	if p.lineHeight > 0 {
		return p.lineHeight
	}
	if lh := s.measurer.Measure(d, "").LineHeight(); lh > 0 {
		return lh
	}
	return d.Size * 1.2
}

func (s *session) width(d fonts.Descriptor, text string) float64 {
	return s.measurer.Measure(d, text).Width()
}

// wrap breaks text into lines no wider than maxWidth. Newlines force a
// break; words longer than a line are split between characters.
func (s *session) wrap(text string, d fonts.Descriptor, p para, maxWidth float64) textBlock {
	var tb textBlock
	lh := s.lineHeight(d, p)
	avail := maxWidth - p.marginLeft - p.marginRight
	if avail <= 0 || math.IsNaN(avail) {
		avail = math.Inf(1)
	}
	spaceW := s.width(d, " ")

	var current strings.Builder
	currentWidth := 0.0
	flushLine := func() {
		tb.lines = append(tb.lines, textLine{text: strings.TrimRight(current.String(), " "), width: currentWidth})
		tb.width = math.Max(tb.width, currentWidth)
		current.Reset()
		currentWidth = 0
	}

	for pi, paragraph := range strings.Split(text, "\n") {
		if pi > 0 {
			flushLine()
		}
		for _, token := range strings.Fields(paragraph) {
			w := s.width(d, token)
			gap := 0.0
			if current.Len() > 0 {
				gap = spaceW
			}
			if currentWidth+gap+w <= avail {
				if gap > 0 {
					current.WriteByte(' ')
				}
				current.WriteString(token)
				currentWidth += gap + w
				continue
			}
			tb.broken = true
			if current.Len() > 0 {
				flushLine()
			}
			if w <= avail {
				current.WriteString(token)
				currentWidth = w
				continue
			}
			// longer than a line: split between characters
			m := s.measurer.Measure(d, token)
			i := 0
			for _, r := range token {
				rw := 0.0
				if i < len(m.Advances) {
					rw = m.Advances[i]
				}
				i++
				if currentWidth+rw > avail && current.Len() > 0 {
					flushLine()
				}
				current.WriteRune(r)
				currentWidth += rw
			}
		}
	}
	if current.Len() > 0 || len(tb.lines) == 0 {
		flushLine()
	}
	if len(tb.lines) == 1 && tb.lines[0].text == "" {
		tb.lines = nil
		tb.width = 0
		return tb
	}
	tb.width += p.marginLeft + p.marginRight
	tb.height = float64(len(tb.lines))*lh + p.spaceAbove + p.spaceBelow
	return tb
}

// richText extracts the text of an exData or xhtml subtree, turning block
// elements and br into line breaks.
func richText(n *xfa.Node) string {
	var sb strings.Builder
	var walk func(*xfa.Node)
	walk = func(n *xfa.Node) {
		if len(n.Children()) == 0 {
			sb.WriteString(n.Content)
		}
		for _, c := range n.Children() {
			walk(c)
		}
		switch n.Tag {
		case "p", "div", "br", "li":
			sb.WriteByte('\n')
		}
	}
	walk(n)
	return strings.TrimRight(sb.String(), "\n")
}

// contentText returns the displayed text of a value property.
func contentText(n *xfa.Node) string {
	c := n.ValueContent()
	if c == nil {
		return ""
	}
	if c.Kind == xfa.KindExData {
		return richText(c)
	}
	if c.Kind == xfa.KindImage {
		return ""
	}
	return c.Text()
}
