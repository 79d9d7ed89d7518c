package layout

import (
	"strings"

	"github.com/wudi/xfalayout/fonts"
	"github.com/wudi/xfalayout/observability"
	"github.com/wudi/xfalayout/xfa"
	"github.com/wudi/xfalayout/xfa/som"
)

// session is the scratch state of one pagination. Per-node state lives in
// maps keyed by node so the form tree itself is never annotated.
type session struct {
	engine   *Engine
	measurer fonts.Measurer
	logger   observability.Logger

	form *xfa.Node
	root *xfa.Node
	som  *som.Resolver
	ids  map[string]*xfa.Node

	flows     map[*xfa.Node]*flow
	overflows map[*xfa.Node]*overflowInfo
	breaks    map[*xfa.Node]*breakInfo
	areaUses  map[*xfa.Node]int
	sets      map[*xfa.Node]*setState

	overflowNode      *xfa.Node
	firstUnsplittable *xfa.Node
	noLayoutFailure   bool
	contentArea       *xfa.Node
	pageArea          *xfa.Node
	pageNumber        int
}

func newSession(e *Engine, form, data *xfa.Node) *session {
	s := &session{
		engine:     e,
		measurer:   e.measurer,
		logger:     e.logger,
		form:       form,
		ids:        map[string]*xfa.Node{},
		flows:      map[*xfa.Node]*flow{},
		overflows:  map[*xfa.Node]*overflowInfo{},
		breaks:     map[*xfa.Node]*breakInfo{},
		areaUses:   map[*xfa.Node]int{},
		sets:       map[*xfa.Node]*setState{},
		pageNumber: 1,
	}
	if form != nil {
		s.root = form.First(xfa.KindSubform)
		form.Walk(func(n *xfa.Node) bool {
			if id := n.ID(); id != "" {
				if _, dup := s.ids[id]; !dup {
					s.ids[id] = n
				}
			}
			return true
		})
	}
	s.som = som.NewResolver(som.Roots{Template: form, Form: form, Data: data}, som.WithLogger(e.logger))
	return s
}

// find resolves a target reference: "#id" or a SOM expression relative to
// container.
func (s *session) find(ref string, container *xfa.Node) *xfa.Node {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	if strings.HasPrefix(ref, "#") {
		return s.ids[ref[1:]]
	}
	found := s.som.Search(s.form, container, ref, true, true)
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

// layoutOf returns the layout attribute governing the children of n.
func layoutOf(n *xfa.Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case xfa.KindSubform, xfa.KindExclGroup:
		return n.AttrOr("layout", "position")
	case xfa.KindArea, xfa.KindPageArea, xfa.KindContentArea:
		return "position"
	}
	return ""
}

func isLrTb(layout string) bool { return layout == "lr-tb" || layout == "rl-tb" }

func isRow(layout string) bool { return strings.Contains(layout, "row") }

// subformParent returns the nearest ancestor that lays n out, looking
// through subformSets.
func subformParent(n *xfa.Node) *xfa.Node {
	p := n.Parent()
	for p != nil && p.Kind == xfa.KindSubformSet {
		p = p.Parent()
	}
	return p
}

// flowChildren returns the children of n taking part in its flow, with
// subformSet contents promoted in place.
func flowChildren(n *xfa.Node, accept func(xfa.Kind) bool) []*xfa.Node {
	var out []*xfa.Node
	for _, c := range n.Children() {
		if c.Kind == xfa.KindSubformSet {
			if presenceHidden(c) {
				continue
			}
			out = append(out, flowChildren(c, accept)...)
			continue
		}
		if accept(c.Kind) {
			out = append(out, c)
		}
	}
	return out
}

func presenceHidden(n *xfa.Node) bool {
	switch n.AttrOr("presence", "visible") {
	case "hidden", "inactive":
		return true
	}
	return false
}

func (s *session) setFirstUnsplittable(n *xfa.Node) {
	if s.firstUnsplittable == nil {
		s.firstUnsplittable = n
		s.noLayoutFailure = true
	}
}

func (s *session) unsetFirstUnsplittable(n *xfa.Node) {
	if s.firstUnsplittable == n {
		s.noLayoutFailure = false
	}
}

// layout dispatches on the node kind. parent is the container whose flow
// receives the result; nil lays n out at the top level.
func (s *session) layout(n, parent *xfa.Node, space Size) Result {
	switch n.Kind {
	case xfa.KindSubform, xfa.KindExclGroup, xfa.KindArea:
		return s.layoutContainer(n, parent, space)
	case xfa.KindField:
		return s.layoutField(n, parent, space)
	case xfa.KindDraw:
		return s.layoutDraw(n, parent, space)
	}
	return emptyResult
}
