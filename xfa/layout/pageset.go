package layout

import (
	"github.com/wudi/xfalayout/xfa"
)

// maxPageSetDepth bounds the recursion of the page-set cursor so that page
// sets without any usable page area end pagination instead of looping.
const maxPageSetDepth = 64

// setState is the cursor of an orderedOccurrence page set.
type setState struct {
	uses  int
	index int
}

func (s *session) setOf(set *xfa.Node) *setState {
	st := s.sets[set]
	if st == nil {
		st = &setState{uses: 1, index: -1}
		s.sets[set] = st
	}
	return st
}

func (s *session) contentAreas(pageArea *xfa.Node) []*xfa.Node {
	if pageArea == nil {
		return nil
	}
	return pageArea.ChildrenOfKind(xfa.KindContentArea)
}

// pageMembers returns the page areas and nested page sets of set in
// document order.
func pageMembers(set *xfa.Node) []*xfa.Node {
	var out []*xfa.Node
	for _, c := range set.Children() {
		if c.Kind == xfa.KindPageArea || c.Kind == xfa.KindPageSet {
			out = append(out, c)
		}
	}
	return out
}

func relation(set *xfa.Node) string { return set.AttrOr("relation", "orderedOccurrence") }

func (s *session) areaUsable(pa *xfa.Node) bool {
	o := xfa.OccurOf(pa)
	return o.Max == xfa.Unbounded || s.areaUses[pa] < o.Max
}

func (s *session) setUsable(set *xfa.Node) bool {
	o := xfa.OccurOf(set)
	return o.Max == xfa.Unbounded || s.setOf(set).uses < o.Max
}

// clean forgets the use counters of everything below set.
func (s *session) clean(set *xfa.Node) {
	for _, m := range pageMembers(set) {
		if m.Kind == xfa.KindPageArea {
			delete(s.areaUses, m)
			continue
		}
		s.clean(m)
		delete(s.sets, m)
	}
}

// nextPageArea returns the page area of the page following one laid out
// on cur, or nil when the page sets offer none.
func (s *session) nextPageArea(cur *xfa.Node) *xfa.Node {
	set := cur.Parent()
	if set == nil || set.Kind != xfa.KindPageSet {
		return cur
	}
	if relation(set) == "orderedOccurrence" && s.areaUsable(cur) {
		return cur
	}
	return s.nextInSet(set, 0)
}

func (s *session) nextInSet(set *xfa.Node, depth int) *xfa.Node {
	if depth > maxPageSetDepth {
		return nil
	}
	if relation(set) != "orderedOccurrence" {
		return s.matchPageArea(set)
	}
	st := s.setOf(set)
	members := pageMembers(set)
	for st.index+1 < len(members) {
		st.index++
		m := members[st.index]
		if m.Kind == xfa.KindPageArea {
			if s.areaUsable(m) {
				return m
			}
			continue
		}
		s.clean(m)
		delete(s.sets, m)
		if pa := s.nextInSet(m, depth+1); pa != nil {
			return pa
		}
	}
	if s.setUsable(set) {
		// wrap around: start the sequence again
		st.uses++
		st.index = -1
		s.clean(set)
		return s.nextInSet(set, depth+1)
	}
	if p := set.Parent(); p != nil && p.Kind == xfa.KindPageSet {
		return s.nextInSet(p, depth+1)
	}
	s.clean(set)
	delete(s.sets, set)
	return s.nextInSet(set, depth+1)
}

// matchPageArea picks the page area matching the parity and position of
// the page about to be laid out.
func (s *session) matchPageArea(set *xfa.Node) *xfa.Node {
	areas := set.ChildrenOfKind(xfa.KindPageArea)
	if len(areas) == 0 {
		return nil
	}
	parity := "odd"
	if s.pageNumber%2 == 0 {
		parity = "even"
	}
	position := "rest"
	if s.pageNumber == 1 {
		position = "first"
	}
	for _, want := range [][2]string{{parity, position}, {"any", position}, {parity, "any"}, {"any", "any"}} {
		for _, pa := range areas {
			if pa.AttrOr("oddOrEven", "any") == want[0] && pa.AttrOr("pagePosition", "any") == want[1] {
				return pa
			}
		}
	}
	return areas[0]
}
