package layout

import (
	"context"
	"iter"

	"github.com/wudi/xfalayout/observability"
	"github.com/wudi/xfalayout/xfa"
)

// Page is one laid out page.
type Page struct {
	// Index is the zero based position of the page in the output.
	Index int
	Box   *Box
	// PageArea is the page area the page was built from.
	PageArea      *xfa.Node
	Width, Height float64
}

// Paginator produces the pages of a form one at a time. Each call to Next
// lays out a single page; dropping the paginator between calls abandons
// the layout with nothing to undo. A Paginator is not safe for
// concurrent use.
type Paginator struct {
	s      *session
	tracer observability.Tracer

	pageSet  *xfa.Node
	pageArea *xfa.Node
	// first content area of the next page
	startIndex      int
	leader, trailer *xfa.Node

	emptyPages int
	pages      []*Page
	done       bool
	err        error
}

func newPaginator(e *Engine, form, data *xfa.Node) *Paginator {
	if form != nil {
		normalizeBreaks(form)
	}
	s := newSession(e, form, data)
	p := &Paginator{s: s, tracer: e.tracer}
	if s.root == nil {
		s.logger.Warn("xfa: form has no subform to lay out")
		p.done = true
		return p
	}
	p.pageSet = s.root.First(xfa.KindPageSet)
	if p.pageSet == nil {
		s.logger.Debug("xfa: no pageSet, using a default page area")
		p.pageSet = defaultPageSet(e.pageWidth, e.pageHeight)
	}
	p.pageArea = p.initialPageArea()
	if p.pageArea == nil {
		s.logger.Warn("xfa: pageSet has no usable pageArea")
		p.done = true
	}
	return p
}

func defaultPageSet(w, h float64) *xfa.Node {
	set := xfa.NewTemplateNode(xfa.KindPageSet)
	pa := xfa.NewTemplateNode(xfa.KindPageArea)
	pa.SetAttr("name", "Page1")
	medium := xfa.NewTemplateNode(xfa.KindMedium)
	medium.SetAttr("short", px(w))
	medium.SetAttr("long", px(h))
	ca := xfa.NewTemplateNode(xfa.KindContentArea)
	ca.SetAttr("w", px(w))
	ca.SetAttr("h", px(h))
	pa.AppendChild(medium)
	pa.AppendChild(ca)
	set.AppendChild(pa)
	return set
}

// initialPageArea honours a breakBefore to a page area on the root
// subform or its first subform; the break is then consumed.
func (p *Paginator) initialPageArea() *xfa.Node {
	s := p.s
	for _, sf := range []*xfa.Node{s.root, s.root.First(xfa.KindSubform)} {
		if sf == nil {
			continue
		}
		bb := sf.First(xfa.KindBreakBefore)
		if bb == nil || bb.AttrOr("targetType", "auto") != "pageArea" {
			continue
		}
		if target := s.find(bb.AttrOr("target", ""), sf); target != nil && target.Kind == xfa.KindPageArea {
			s.breaks[bb] = &breakInfo{target: target}
			return target
		}
	}
	return s.nextInSet(p.pageSet, 0)
}

// Next lays out and returns the next page. It returns false once the form
// is exhausted, the empty-page bound is hit or ctx is done.
func (p *Paginator) Next(ctx context.Context) (*Page, bool) {
	for !p.done {
		if err := ctx.Err(); err != nil {
			p.err = err
			p.done = true
			break
		}
		if page := p.layoutPage(ctx); page != nil {
			p.pages = append(p.pages, page)
			return page, true
		}
	}
	return nil, false
}

// Pages iterates over the remaining pages.
func (p *Paginator) Pages(ctx context.Context) iter.Seq[*Page] {
	return func(yield func(*Page) bool) {
		for {
			page, ok := p.Next(ctx)
			if !ok || !yield(page) {
				return
			}
		}
	}
}

// All lays out every remaining page and returns all pages produced so far.
func (p *Paginator) All(ctx context.Context) ([]*Page, error) {
	for range p.Pages(ctx) {
	}
	return p.pages, p.err
}

// Err returns the context error that stopped pagination, if any.
func (p *Paginator) Err() error { return p.err }

// BoundingBox returns the page rectangle of page i, in points.
func (p *Paginator) BoundingBox(i int) (Rect, bool) {
	if i < 0 || i >= len(p.pages) {
		return Rect{}, false
	}
	pg := p.pages[i]
	return Rect{W: pg.Width, H: pg.Height}, true
}

// pageSize reads the medium of pa; landscape swaps the sides.
func (p *Paginator) pageSize(pa *xfa.Node) (float64, float64) {
	m := pa.First(xfa.KindMedium)
	if m == nil {
		p.s.logger.Warn("xfa: pageArea has no medium", observability.String("pageArea", pa.Name()))
		return p.s.engine.pageWidth, p.s.engine.pageHeight
	}
	w := m.Measure("short", p.s.engine.pageWidth)
	h := m.Measure("long", p.s.engine.pageHeight)
	if m.AttrOr("orientation", "portrait") == "landscape" {
		w, h = h, w
	}
	return w, h
}

// placeExtra lays out a break leader or trailer at the top of a content
// area.
func (p *Paginator) placeExtra(n *xfa.Node, into *Box, space Size) {
	s := p.s
	saved := s.noLayoutFailure
	s.noLayoutFailure = true
	if res := s.layout(n, nil, space); res.Box != nil {
		into.Append(res.Box)
	}
	s.noLayoutFailure = saved
}

// layoutPage fills the content areas of the current page area. It returns
// nil for a page that received no content.
func (p *Paginator) layoutPage(ctx context.Context) *Page {
	s := p.s
	pa := p.pageArea
	_, span := p.tracer.StartSpan(ctx, observability.SpanLayoutPage)
	defer span.Finish()
	span.SetTag("pageNumber", s.pageNumber)
	span.SetTag("pageArea", pa.Name())

	s.pageArea = pa
	s.areaUses[pa]++
	w, h := p.pageSize(pa)

	page := newBox("div", "xfaPage")
	identify(page, pa)
	page.Style["width"] = px(w)
	page.Style["height"] = px(h)

	// furniture is laid out on every page, and never fails
	s.firstUnsplittable = nil
	s.noLayoutFailure = true
	for _, c := range flowChildren(pa, acceptContainerChild) {
		if res := s.layout(c, pa, Size{W: w, H: h}); res.Box != nil {
			page.Append(res.Box)
		}
	}

	areas := s.contentAreas(pa)
	boxes := make([]*Box, len(areas))
	for i, ca := range areas {
		b := newBox("div", "xfaContentarea")
		identify(b, ca)
		b.Style["position"] = "absolute"
		b.Style["left"] = px(ca.Measure("x", 0))
		b.Style["top"] = px(ca.Measure("y", 0))
		b.Style["width"] = px(ca.Measure("w", 0))
		b.Style["height"] = px(ca.Measure("h", 0))
		boxes[i] = b
		page.Append(b)
	}

	s.firstUnsplittable = nil
	s.noLayoutFailure = false
	hasSomething := false
	flush := func(i int) {
		if b := s.flush(s.root); b != nil {
			hasSomething = hasSomething || len(b.Children) > 0
			boxes[i].Append(b)
		}
	}

	var next *xfa.Node
	finished := false
	start := p.startIndex
	p.startIndex = 0
	for i := start; i < len(areas); i++ {
		ca := areas[i]
		s.contentArea = ca
		space := Size{W: ca.Measure("w", 0), H: ca.Measure("h", 0)}
		if p.leader != nil {
			p.placeExtra(p.leader, boxes[i], space)
			p.leader = nil
		}
		if p.trailer != nil {
			p.placeExtra(p.trailer, boxes[i], space)
			p.trailer = nil
		}

		res := s.layout(s.root, nil, space)
		if res.OK() {
			if res.Box != nil {
				hasSomething = hasSomething || len(res.Box.Children) > 0
				boxes[i].Append(res.Box)
			}
			finished = true
			break
		}

		if res.IsBreak() {
			b := res.Break
			flush(i)
			info := s.breaks[b]
			if info == nil {
				continue
			}
			if ref := b.AttrOr("leader", ""); ref != "" {
				p.leader = s.find(ref, b.Parent())
			}
			if ref := b.AttrOr("trailer", ""); ref != "" {
				p.trailer = s.find(ref, b.Parent())
			}
			switch {
			case b.AttrOr("targetType", "auto") == "pageArea":
				next = info.target
				i = len(areas)
			case info.target == nil:
				i = info.index
			default:
				next = info.target
				p.startIndex = info.index + 1
				i = len(areas)
			}
			continue
		}

		if ov := s.overflowNode; ov != nil {
			s.overflowNode = nil
			oi := s.overflowOf(ov)
			oi.addLeader = oi.leader != nil
			oi.addTrailer = oi.trailer != nil
			flush(i)
			current := i
			i = len(areas)
			switch t := oi.target; {
			case t == nil:
			case t.Kind == xfa.KindPageArea:
				next = t
			case t.Kind == xfa.KindContentArea:
				if idx := indexOf(areas, t); idx != -1 {
					if idx > current {
						i = idx - 1
					} else {
						p.startIndex = idx
					}
				} else {
					next = t.Parent()
					p.startIndex = indexOf(s.contentAreas(next), t)
				}
			}
			continue
		}
		flush(i)
	}

	s.pageNumber++
	if next != nil && !s.areaUsable(next) {
		next = nil
	}
	switch {
	case finished:
		p.done = true
	case next != nil:
		p.pageArea = next
	default:
		if p.pageArea = s.nextPageArea(pa); p.pageArea == nil {
			s.logger.Warn("xfa: no pageArea left for the remaining content")
			p.done = true
		}
	}

	if !hasSomething && !(finished && len(p.pages) == 0) {
		if finished {
			return nil
		}
		p.emptyPages++
		if p.emptyPages >= s.engine.maxEmptyPages {
			s.logger.Warn("xfa: too many consecutive empty pages, stopping",
				observability.Int("emptyPages", p.emptyPages))
			p.done = true
		}
		return nil
	}
	p.emptyPages = 0
	span.SetTag("empty", !hasSomething)
	return &Page{Index: len(p.pages), Box: page, PageArea: pa, Width: w, Height: h}
}
