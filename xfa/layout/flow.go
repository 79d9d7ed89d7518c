package layout

import (
	"math"
	"strings"

	"github.com/wudi/xfalayout/xfa"
)

// flow is the bookkeeping of a container while its children are placed.
// It survives a failed layout so the next content area resumes where the
// previous one stopped.
type flow struct {
	box      *Box
	children []*Box
	line     *Box

	attempt      int
	numberInLine int
	space        Size
	margin       xfa.Insets

	width, height float64
	prevHeight    float64
	currentWidth  float64

	columnWidths  []float64
	currentColumn int

	// resumable iteration over the flowed children
	running bool
	next    int
	failing *xfa.Node

	afterBreakAfter bool
}

// enter resets the per-attempt counters of n, keeping the iteration
// position of an interrupted layout.
func (s *session) enter(n *xfa.Node, box *Box, space Size) *flow {
	f := s.flows[n]
	if f == nil {
		f = &flow{}
		s.flows[n] = f
	}
	f.box = box
	f.children = nil
	f.line = nil
	f.attempt = 0
	f.numberInLine = 0
	f.space = space
	f.margin = n.MarginInsets()
	f.width, f.height, f.prevHeight, f.currentWidth = 0, 0, 0, 0
	return f
}

// availableSpace is the room left in n for its next child.
func (s *session) availableSpace(n *xfa.Node, f *flow) Size {
	marginH, marginV := f.margin.Horizontal(), f.margin.Vertical()
	switch layoutOf(n) {
	case "lr-tb", "rl-tb":
		if f.attempt == 0 {
			return Size{W: f.space.W - marginH - f.currentWidth, H: f.space.H - marginV - f.prevHeight}
		}
		return Size{W: f.space.W - marginH, H: f.space.H - marginV - f.height}
	case "row", "rl-row":
		w := 0.0
		if f.currentColumn < len(f.columnWidths) {
			for _, c := range f.columnWidths[f.currentColumn:] {
				w += c
			}
		} else {
			w = f.space.W - marginH
		}
		return Size{W: w, H: f.space.H - marginV}
	case "table", "tb":
		return Size{W: f.space.W - marginH, H: f.space.H - marginV - f.height}
	}
	return f.space
}

func createLine(n *xfa.Node, children ...*Box) *Box {
	class := "xfaLr"
	if layoutOf(n) == "rl-tb" {
		class = "xfaRl"
	}
	b := newBox("div", class)
	b.Append(children...)
	return b
}

// addBox accounts for a placed child of n.
func (s *session) addBox(n *xfa.Node, f *flow, b *Box, bbox Rect) {
	switch layoutOf(n) {
	case "position":
		f.width = math.Max(f.width, bbox.X+bbox.W)
		f.height = math.Max(f.height, bbox.Y+bbox.H)
		f.children = append(f.children, b)
	case "lr-tb", "rl-tb":
		if f.line == nil || f.attempt > 0 {
			f.line = createLine(n)
			f.children = append(f.children, f.line)
			f.numberInLine = 0
		}
		f.numberInLine++
		f.line.Append(b)
		if f.attempt == 0 {
			f.currentWidth += bbox.W
			f.height = math.Max(f.height, f.prevHeight+bbox.H)
		} else {
			// placed on a new line: back to filling lines
			f.currentWidth = bbox.W
			f.prevHeight = f.height
			f.height += bbox.H
			f.attempt = 0
		}
		f.width = math.Max(f.width, f.currentWidth)
	case "row", "rl-row":
		f.children = append(f.children, b)
		f.width += bbox.W
		f.height = math.Max(f.height, bbox.H)
		h := px(f.height)
		for _, c := range f.children {
			c.Style["height"] = h
		}
	case "table", "tb":
		f.width = clamp(bbox.W, f.width, f.space.W)
		f.height += bbox.H
		f.children = append(f.children, b)
	default:
		f.children = append(f.children, b)
	}
}

// clamp returns v limited to [lo, hi]; hi wins when the bounds cross.
func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// layoutChildren places the flowed children of n accepted by accept. It
// first retries the child that failed last time, then continues where
// the previous call stopped. On failure the position is kept.
func (s *session) layoutChildren(n *xfa.Node, f *flow, accept func(xfa.Kind) bool) Result {
	children := flowChildren(n, accept)
	if f.running && f.failing != nil {
		res := s.layout(f.failing, n, s.availableSpace(n, f))
		if !res.OK() {
			return res
		}
		if res.Box != nil {
			s.addBox(n, f, res.Box, res.BBox)
		}
		f.failing = nil
	}
	f.running = true

	for f.next < len(children) {
		c := children[f.next]
		f.next++
		res := s.layout(c, n, s.availableSpace(n, f))
		if !res.OK() {
			f.failing = c
			return res
		}
		if res.Box != nil {
			s.addBox(n, f, res.Box, res.BBox)
		}
	}
	f.running = false
	f.next = 0
	f.failing = nil
	return emptyResult
}

// flush returns what n placed so far, including the partial output of the
// child that failed, or nil when nothing was placed.
func (s *session) flush(n *xfa.Node) *Box {
	f := s.flows[n]
	if f == nil || f.box == nil {
		return nil
	}
	b := *f.box
	b.Children = append([]*Box(nil), f.children...)
	if f.failing != nil {
		if fb := s.flush(f.failing); fb != nil {
			if strings.HasSuffix(layoutOf(n), "-tb") {
				b.Children = append(b.Children, createLine(n, fb))
			} else {
				b.Children = append(b.Children, fb)
			}
		}
	}
	if len(b.Children) == 0 {
		return nil
	}
	return &b
}
