package layout

import (
	"math"
	"strconv"
	"strings"

	"github.com/wudi/xfalayout/xfa"
)

// layoutSlack is the tolerance, in points, of every fit test.
const layoutSlack = 2

// dims is the geometry of a node for one layout call. W and H are NaN
// when the template leaves them to the content.
type dims struct {
	X, Y, W, H float64
	MinW, MinH float64
	MaxW, MaxH float64
	Rotate     int
	Anchor     string
}

func (d dims) hasW() bool { return !math.IsNaN(d.W) }
func (d dims) hasH() bool { return !math.IsNaN(d.H) }

func measureOrNaN(n *xfa.Node, name string) float64 {
	if !n.HasMeasure(name) {
		return math.NaN()
	}
	return n.Measure(name, 0)
}

// dimensions reads the geometry of n as laid out by parent: row cells take
// their width from the column widths, and only position layouts keep x
// and y.
func (s *session) dimensions(n, parent *xfa.Node) dims {
	d := dims{
		X:      n.Measure("x", 0),
		Y:      n.Measure("y", 0),
		W:      measureOrNaN(n, "w"),
		H:      measureOrNaN(n, "h"),
		MinW:   n.Measure("minW", 0),
		MinH:   n.Measure("minH", 0),
		MaxW:   n.Measure("maxW", 0),
		MaxH:   n.Measure("maxH", 0),
		Anchor: n.AttrOr("anchorType", "topLeft"),
	}
	d.Rotate, _ = strconv.Atoi(n.AttrOr("rotate", "0"))

	pl := layoutOf(parent)
	if isRow(pl) {
		if f := s.flows[parent]; f != nil && len(f.columnWidths) > 0 {
			span, err := strconv.Atoi(n.AttrOr("colSpan", "1"))
			if err != nil || span == 0 {
				span = 1
			}
			w := 0.0
			if span < 0 || f.currentColumn+span > len(f.columnWidths) {
				for _, c := range f.columnWidths[min(f.currentColumn, len(f.columnWidths)):] {
					w += c
				}
				f.currentColumn = 0
			} else {
				for _, c := range f.columnWidths[f.currentColumn : f.currentColumn+span] {
					w += c
				}
				f.currentColumn = (f.currentColumn + span) % len(f.columnWidths)
			}
			d.W = w
		}
	}
	if parent != nil && pl != "position" {
		d.X, d.Y = 0, 0
	}
	if layoutOf(n) == "table" && !d.hasW() {
		if cols := columnWidths(n); len(cols) > 0 {
			w := 0.0
			for _, c := range cols {
				w += math.Max(c, 0)
			}
			d.W = w
		}
	}
	return d
}

// columnWidths parses the columnWidths attribute of a table. Negative
// entries stand for columns sized by the available width.
func columnWidths(n *xfa.Node) []float64 {
	v, ok := n.Attr("columnWidths")
	if !ok {
		return nil
	}
	var out []float64
	for _, f := range strings.Fields(v) {
		if f == "-1" {
			out = append(out, -1)
			continue
		}
		out = append(out, xfa.ParseUnit(f))
	}
	return out
}

// resolveColumns gives the auto columns an equal share of the width left
// by the fixed ones.
func resolveColumns(cols []float64, width float64) []float64 {
	out := append([]float64(nil), cols...)
	fixed, auto := 0.0, 0
	for _, c := range out {
		if c < 0 {
			auto++
		} else {
			fixed += c
		}
	}
	if auto == 0 {
		return out
	}
	share := math.Max(0, (width-fixed)/float64(auto))
	for i, c := range out {
		if c < 0 {
			out[i] = share
		}
	}
	return out
}

// transformedBBox applies rotation and anchor to the node box.
func transformedBBox(d dims) Rect {
	w, h := d.W, d.H
	var cx, cy float64
	switch d.Anchor {
	case "bottomCenter":
		cx, cy = w/2, h
	case "bottomLeft":
		cx, cy = 0, h
	case "bottomRight":
		cx, cy = w, h
	case "middleCenter":
		cx, cy = w/2, h/2
	case "middleLeft":
		cx, cy = 0, h/2
	case "middleRight":
		cx, cy = w, h/2
	case "topCenter":
		cx, cy = w/2, 0
	case "topRight":
		cx, cy = w, 0
	}
	var x, y float64
	switch d.Rotate {
	case 90:
		x, y = -cy, cx
		w, h = h, -w
	case 180:
		x, y = cx, cy
		w, h = -w, -h
	case 270:
		x, y = cy, -cx
		w, h = -h, w
	default:
		x, y = -cx, -cy
	}
	return Rect{
		X: d.X + x + math.Min(0, w),
		Y: d.Y + y + math.Min(0, h),
		W: math.Abs(w),
		H: math.Abs(h),
	}
}

func exceeds(a, b float64) bool { return math.Round(a-b) > layoutSlack }

func fits(a, b float64) bool { return math.Round(a-b) <= layoutSlack }

// checkDimensions reports whether n, laid out by parent, has enough room
// in space. Until a first unsplittable node is met on the page anything
// fits; while that node is being laid out nothing may fail.
func (s *session) checkDimensions(n *xfa.Node, d dims, parent *xfa.Node, space Size) bool {
	if s.firstUnsplittable == nil {
		return true
	}
	if (d.hasW() && d.W == 0) || (d.hasH() && d.H == 0) {
		return true
	}
	attempt := 0
	numberInLine := 0
	if f := s.flows[parent]; f != nil {
		attempt = f.attempt
		numberInLine = f.numberInLine
	}
	bb := transformedBBox(d)

	switch layoutOf(parent) {
	case "lr-tb", "rl-tb":
		if attempt == 0 {
			if !s.noLayoutFailure {
				if d.hasH() && exceeds(bb.H, space.H) {
					return false
				}
				if d.hasW() {
					if fits(bb.W, space.W) {
						return true
					}
					if numberInLine == 0 {
						return space.H > layoutSlack
					}
					return false
				}
				return space.W > layoutSlack
			}
			// may still fail here; the next line accepts
			if d.hasW() {
				return fits(bb.W, space.W)
			}
			return space.W > layoutSlack
		}
		if s.noLayoutFailure {
			return true
		}
		if d.hasH() && exceeds(bb.H, space.H) {
			return false
		}
		if !d.hasW() || fits(bb.W, space.W) {
			return space.H > layoutSlack
		}
		if s.isThereMoreWidth(parent) {
			return false
		}
		return space.H > layoutSlack
	case "table", "tb":
		if s.noLayoutFailure {
			return true
		}
		if d.hasH() && !s.isSplittable(n) {
			return fits(bb.H, space.H)
		}
		if !d.hasW() || fits(bb.W, space.W) {
			return space.H > layoutSlack
		}
		if s.isThereMoreWidth(parent) {
			return false
		}
		return space.H > layoutSlack
	case "position":
		if s.noLayoutFailure {
			return true
		}
		if !d.hasH() || fits(bb.H+bb.Y, space.H) {
			return true
		}
		// never fits: accept rather than retry forever
		return s.contentArea != nil && bb.H+bb.Y > s.contentArea.Measure("h", 0)
	case "row", "rl-row":
		if s.noLayoutFailure {
			return true
		}
		if d.hasH() {
			return fits(bb.H, space.H)
		}
		return true
	}
	return true
}

// isThereMoreWidth reports whether an enclosing lr-tb line already holds
// something, so a fresh line would offer more width.
func (s *session) isThereMoreWidth(n *xfa.Node) bool {
	for p := n; p != nil; p = subformParent(p) {
		if !p.IsContainer() {
			return false
		}
		f := s.flows[p]
		if f != nil && strings.HasSuffix(layoutOf(p), "-tb") && f.attempt == 0 && f.numberInLine > 0 {
			return true
		}
	}
	return false
}

// IsSplittable reports whether a page break may fall inside the container
// n. Positioned and row layouts never split, nor do containers kept intact
// or laid out by a row or positioned parent. A kept container taller than
// contentArea splits anyway. The answer depends on the content area, so
// it is computed afresh on every call.
func IsSplittable(n, contentArea *xfa.Node) bool {
	switch n.Kind {
	case xfa.KindSubform, xfa.KindExclGroup:
	default:
		return false
	}
	l := layoutOf(n)
	if l == "position" || isRow(l) {
		return false
	}
	if p := subformParent(n); p != nil && p.IsContainer() {
		if pl := layoutOf(p); pl == "position" || isRow(pl) {
			return false
		}
	}
	if keep := n.First(xfa.KindKeep); keep != nil && keep.AttrOr("intact", "none") != "none" {
		if contentArea == nil {
			return false
		}
		ext := math.Max(n.Measure("minH", 0), n.Measure("h", 0))
		return ext >= contentArea.Measure("h", 0)
	}
	return true
}

func (s *session) isSplittable(n *xfa.Node) bool { return IsSplittable(n, s.contentArea) }
