package layout

import (
	"math"

	"github.com/wudi/xfalayout/xfa"
)

var containerClasses = map[xfa.Kind]string{
	xfa.KindSubform:   "xfaSubform",
	xfa.KindExclGroup: "xfaExclgroup",
	xfa.KindArea:      "xfaArea",
}

func acceptContainerChild(k xfa.Kind) bool {
	switch k {
	case xfa.KindArea, xfa.KindDraw, xfa.KindExclGroup, xfa.KindField, xfa.KindSubform:
		return true
	}
	return false
}

func acceptGroupChild(k xfa.Kind) bool { return k == xfa.KindField || k == xfa.KindDraw }

func orInf(v float64) float64 {
	if math.IsNaN(v) {
		return math.Inf(1)
	}
	return v
}

func orZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// layoutContainer lays out a subform, an exclGroup or an area. A
// splittable container that runs out of room keeps its flow so that the
// next content area resumes it; the already placed part is collected with
// flush.
func (s *session) layoutContainer(n, parent *xfa.Node, space Size) Result {
	if presenceHidden(n) {
		return emptyResult
	}
	if n.Kind == xfa.KindSubform {
		if bb := n.ChildrenOfKind(xfa.KindBreakBefore); len(bb) > 0 && s.handleBreak(bb[0]) {
			return breakAt(bb[0])
		}
	}
	if f := s.flows[n]; f != nil && f.afterBreakAfter {
		return emptyResult
	}

	d := s.dimensions(n, parent)
	layout := layoutOf(n)
	box := newBox("div", containerClasses[n.Kind])
	if n.Kind != xfa.KindArea {
		box.Class = append(box.Class, layoutClasses[layout])
	}
	identify(box, n)

	avail := Size{W: math.Min(orInf(d.W), space.W), H: math.Min(orInf(d.H), space.H)}
	f := s.enter(n, box, avail)

	savedNoFailure := s.noLayoutFailure
	splittable := s.isSplittable(n)
	if !splittable {
		s.setFirstUnsplittable(n)
	}
	if !s.checkDimensions(n, d, parent, space) {
		return failureResult
	}

	switch {
	case isRow(layout):
		if pf := s.flows[subformParent(n)]; pf != nil && len(pf.columnWidths) > 0 {
			f.columnWidths = pf.columnWidths
			f.currentColumn = 0
		}
	case layout == "table":
		if cols := columnWidths(n); len(cols) > 0 {
			f.columnWidths = resolveColumns(cols, avail.W-f.margin.Horizontal())
		}
	}

	ov := n.First(xfa.KindOverflow)
	if ov != nil {
		if oi := s.overflowOf(ov); oi.addLeader {
			oi.addLeader = false
			s.handleOverflow(n, f, oi.leader, space)
		}
	}

	accept := acceptContainerChild
	if n.Kind == xfa.KindExclGroup {
		accept = acceptGroupChild
	}
	maxRun := 1
	if isLrTb(layout) {
		maxRun = s.engine.maxAttempts
	}
	for ; f.attempt < maxRun; f.attempt++ {
		if isLrTb(layout) && f.attempt == maxRun-1 {
			// last chance: the line is considered empty
			f.numberInLine = 0
		}
		res := s.layoutChildren(n, f, accept)
		if res.OK() {
			break
		}
		if res.IsBreak() {
			if !splittable {
				s.unsetFirstUnsplittable(n)
			}
			s.noLayoutFailure = savedNoFailure
			return res
		}
		if isLrTb(layout) && f.attempt == 0 && f.numberInLine == 0 && !s.noLayoutFailure {
			// nothing fit on an empty line; a new line cannot help
			f.attempt = maxRun
			break
		}
	}

	if !splittable {
		s.unsetFirstUnsplittable(n)
	}
	s.noLayoutFailure = savedNoFailure

	if f.attempt == maxRun {
		if ov != nil {
			s.overflowNode = ov
		}
		if !splittable {
			delete(s.flows, n)
		}
		return failureResult
	}

	if ov != nil {
		if oi := s.overflowOf(ov); oi.addTrailer {
			oi.addTrailer = false
			s.handleOverflow(n, f, oi.trailer, space)
		}
	}

	margin := f.margin
	width := math.Max(f.width+margin.Horizontal(), orZero(d.W))
	height := math.Max(f.height+margin.Vertical(), orZero(d.H))
	if d.MaxW > 0 {
		width = math.Min(width, math.Max(d.MaxW, d.MinW))
	}
	width = math.Max(width, d.MinW)
	height = math.Max(height, d.MinH)

	if len(f.children) == 0 && (width == 0 || height == 0) {
		delete(s.flows, n)
		return emptyResult
	}

	placeStyle(box, d, parent, width, height)
	presenceStyle(box, n)
	borderStyle(box, n)
	marginStyle(box, margin)
	box.Children = f.children
	res := success(box, Rect{X: d.X, Y: d.Y, W: width, H: height})

	if n.Kind == xfa.KindSubform {
		if ba := n.ChildrenOfKind(xfa.KindBreakAfter); len(ba) > 0 && s.handleBreak(ba[0]) {
			f.afterBreakAfter = true
			return breakAt(ba[0])
		}
	}
	delete(s.flows, n)
	return res
}
