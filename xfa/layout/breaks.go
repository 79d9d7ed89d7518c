package layout

import (
	"github.com/wudi/xfalayout/observability"
	"github.com/wudi/xfalayout/xfa"
)

// normalizeBreaks rewrites the legacy break element of every subform as
// the breakBefore, breakAfter and overflow properties it stands for.
func normalizeBreaks(form *xfa.Node) {
	var subforms []*xfa.Node
	form.Walk(func(n *xfa.Node) bool {
		if n.Kind == xfa.KindSubform && n.First(xfa.KindBreak) != nil {
			subforms = append(subforms, n)
		}
		return true
	})
	for _, sf := range subforms {
		br := sf.First(xfa.KindBreak)
		startNew := br.AttrOr("startNew", "0")
		if after, target := br.AttrOr("after", "auto"), br.AttrOr("afterTarget", ""); after != "auto" || target != "" {
			sf.AppendChild(breakNode(xfa.KindBreakAfter, after, target, startNew))
		}
		if before, target := br.AttrOr("before", "auto"), br.AttrOr("beforeTarget", ""); before != "auto" || target != "" {
			sf.AppendChild(breakNode(xfa.KindBreakBefore, before, target, startNew))
		}
		if target := br.AttrOr("overflowTarget", ""); target != "" && sf.First(xfa.KindOverflow) == nil {
			ov := xfa.NewTemplateNode(xfa.KindOverflow)
			ov.SetAttr("target", target)
			if v, ok := br.Attr("overflowLeader"); ok {
				ov.SetAttr("leader", v)
			}
			if v, ok := br.Attr("overflowTrailer"); ok {
				ov.SetAttr("trailer", v)
			}
			sf.AppendChild(ov)
		}
		sf.RemoveChild(br)
	}
}

func breakNode(kind xfa.Kind, targetType, target, startNew string) *xfa.Node {
	b := xfa.NewTemplateNode(kind)
	b.SetAttr("targetType", targetType)
	if target != "" {
		b.SetAttr("target", target)
	}
	b.SetAttr("startNew", startNew)
	return b
}

// breakInfo records a break that fired. A break fires at most once.
type breakInfo struct {
	// target is the page area to continue on, nil to stay on this page.
	target *xfa.Node
	// index is the content area preceding the one to continue in.
	index int
}

func indexOf(nodes []*xfa.Node, n *xfa.Node) int {
	for i, x := range nodes {
		if x == n {
			return i
		}
	}
	return -1
}

// handleBreak decides whether b must interrupt the current content area.
func (s *session) handleBreak(b *xfa.Node) bool {
	targetType := b.AttrOr("targetType", "auto")
	if targetType == "auto" {
		return false
	}
	if _, fired := s.breaks[b]; fired {
		return false
	}
	var target *xfa.Node
	if ref := b.AttrOr("target", ""); ref != "" {
		if target = s.find(ref, b.Parent()); target == nil {
			s.logger.Debug("xfa: break target not found", observability.String("ref", ref))
			return false
		}
	}
	startNew := b.AttrOr("startNew", "0") == "1"
	info := &breakInfo{}

	if targetType == "pageArea" {
		if target != nil && target.Kind != xfa.KindPageArea {
			target = nil
		}
		switch {
		case startNew:
			info.target = target
			if info.target == nil {
				info.target = s.pageArea
			}
		case target != nil && target != s.pageArea:
			info.target = target
		default:
			return false
		}
		s.breaks[b] = info
		return true
	}

	if target != nil && target.Kind != xfa.KindContentArea {
		target = nil
	}
	var pageArea *xfa.Node
	if target != nil {
		pageArea = target.Parent()
	}
	next := pageArea
	switch {
	case startNew:
		if target != nil {
			areas := pageArea.ChildrenOfKind(xfa.KindContentArea)
			current, wanted := indexOf(areas, s.contentArea), indexOf(areas, target)
			if current != -1 && current < wanted {
				// still ahead on this page
				next = nil
			}
			info.index = wanted - 1
		} else {
			info.index = indexOf(s.contentAreas(s.pageArea), s.contentArea)
		}
	case target != nil && target != s.contentArea:
		info.index = indexOf(pageArea.ChildrenOfKind(xfa.KindContentArea), target) - 1
		if pageArea == s.pageArea {
			next = nil
		}
	default:
		return false
	}
	info.target = next
	s.breaks[b] = info
	return true
}

// overflowInfo is the resolved state of an overflow property.
type overflowInfo struct {
	target, leader, trailer *xfa.Node
	addLeader, addTrailer   bool
}

func (s *session) overflowOf(ov *xfa.Node) *overflowInfo {
	if oi, ok := s.overflows[ov]; ok {
		return oi
	}
	parent := ov.Parent()
	oi := &overflowInfo{
		target:  s.find(ov.AttrOr("target", ""), parent),
		leader:  s.find(ov.AttrOr("leader", ""), parent),
		trailer: s.find(ov.AttrOr("trailer", ""), parent),
	}
	s.overflows[ov] = oi
	return oi
}

// handleOverflow lays extra out as if it were the next child of n, where
// it may not fail.
func (s *session) handleOverflow(n *xfa.Node, f *flow, extra *xfa.Node, space Size) {
	if extra == nil {
		return
	}
	saved := s.noLayoutFailure
	s.noLayoutFailure = true
	res := s.layout(extra, n, space)
	if res.Box != nil {
		s.addBox(n, f, res.Box, res.BBox)
	}
	s.noLayoutFailure = saved
}
