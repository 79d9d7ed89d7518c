package som

import (
	"github.com/wudi/xfalayout/observability"
	"github.com/wudi/xfalayout/xfa"
)

// Roots are the trees the expression shortcuts redirect to.
type Roots struct {
	// XFA is the packet root reached by "xfa" and "$xfa".
	XFA      *xfa.Node
	Template *xfa.Node
	// Form is the merged form tree; it defaults to Template.
	Form     *xfa.Node
	Datasets *xfa.Node
	Data     *xfa.Node
	Host     *xfa.Node
	Event    *xfa.Node
}

// RootsOf returns the roots of a parsed document.
func RootsOf(doc *xfa.Document) Roots {
	return Roots{
		XFA:      doc.Root,
		Template: doc.Template,
		Form:     doc.Template,
		Datasets: doc.Datasets,
		Data:     doc.Data,
	}
}

// Resolver evaluates expressions. Results per node and segment are cached,
// so a Resolver must not outlive one binding pass.
type Resolver struct {
	roots  Roots
	cache  map[*xfa.Node]map[string][]*xfa.Node
	logger observability.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

func WithLogger(l observability.Logger) Option {
	return func(r *Resolver) { r.logger = observability.OrNop(l) }
}

func NewResolver(roots Roots, opts ...Option) *Resolver {
	if roots.Form == nil {
		roots.Form = roots.Template
	}
	r := &Resolver{
		roots:  roots,
		cache:  map[*xfa.Node]map[string][]*xfa.Node{},
		logger: observability.NopLogger{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Roots returns the shortcut targets.
func (r *Resolver) Roots() Roots { return r.roots }

// shortcut returns the node a leading shortcut designates and whether name
// is a shortcut at all.
func (r *Resolver) shortcut(name string, container *xfa.Node) (*xfa.Node, bool) {
	switch name {
	case "$data":
		return r.roots.Data, true
	case "$record":
		if r.roots.Data == nil {
			return nil, true
		}
		for _, c := range r.roots.Data.Children() {
			if c.Namespace == xfa.NSData && c.Tag != "#text" {
				return c, true
			}
		}
		return nil, true
	case "$template":
		return r.roots.Template, true
	case "$form":
		return r.roots.Form, true
	case "$host":
		return r.roots.Host, true
	case "$event":
		return r.roots.Event, true
	case "!":
		return r.roots.Datasets, true
	case "xfa", "$xfa":
		return r.roots.XFA, true
	case "$":
		return container, true
	}
	return nil, false
}

// Search resolves expr. Without a shortcut the walk starts at container, or
// at root when container is nil. An unqualified expression whose first
// segment matches nothing is retried from each ancestor of container in
// turn. Search returns nil when nothing matches or expr is malformed.
func (r *Resolver) Search(root, container *xfa.Node, expr string, dotDotAllowed, useCache bool) []*xfa.Node {
	e, err := Parse(expr, dotDotAllowed)
	if err != nil {
		r.logger.Warn("som: unsupported expression", observability.String("expr", expr))
		return nil
	}
	return r.Eval(root, container, e, useCache)
}

// Eval resolves a parsed expression; see Search.
func (r *Resolver) Eval(root, container *xfa.Node, e *Expr, useCache bool) []*xfa.Node {
	segs := e.Segments
	i := 0
	qualified := container == nil
	var current []*xfa.Node
	if target, ok := r.shortcut(segs[0].Name, container); ok {
		if target == nil {
			return nil
		}
		qualified = true
		current = []*xfa.Node{target}
		i = 1
	} else if container != nil {
		current = []*xfa.Node{container}
	} else if root != nil {
		current = []*xfa.Node{root}
	} else {
		return nil
	}

	for ; i < len(segs); i++ {
		seg := segs[i]
		var groups [][]*xfa.Node
		for _, n := range current {
			if n.Kind == xfa.KindAttribute {
				continue
			}
			if children := r.children(n, seg, useCache); len(children) > 0 {
				groups = append(groups, children)
			}
		}
		if len(groups) == 0 && !qualified && i == 0 {
			container = container.Parent()
			if container == nil {
				return nil
			}
			current = []*xfa.Node{container}
			i = -1
			continue
		}
		current = current[:0:0]
		for _, g := range groups {
			if seg.All {
				current = append(current, g...)
			} else if seg.Index < len(g) {
				current = append(current, g[seg.Index])
			}
		}
	}
	if len(current) == 0 {
		return nil
	}
	return current
}

func (r *Resolver) children(n *xfa.Node, seg Segment, useCache bool) []*xfa.Node {
	var m map[string][]*xfa.Node
	if useCache {
		m = r.cache[n]
		if m == nil {
			m = map[string][]*xfa.Node{}
			r.cache[n] = m
		}
		if c, ok := m[seg.Key]; ok {
			return c
		}
	}
	var out []*xfa.Node
	switch seg.Op {
	case OpDot:
		out = ChildrenByName(n, seg.Name, false)
	case OpDotDot:
		out = ChildrenByName(n, seg.Name, true)
	case OpDotHash:
		out = ChildrenByClass(n, seg.Name)
	}
	if useCache {
		m[seg.Key] = out
	}
	return out
}

// invalidate drops cached results that structural changes under n may
// have made stale.
func (r *Resolver) invalidate(n *xfa.Node) {
	for p := n; p != nil; p = p.Parent() {
		delete(r.cache, p)
	}
}

// ChildrenByName returns the children of n matching name by tag or name
// attribute. Matching descends through transparent children, or through
// every child when allTransparent is set. The name "parent" selects the
// parent. On template nodes an explicitly set attribute called name is
// returned as an attribute handle.
func ChildrenByName(n *xfa.Node, name string, allTransparent bool) []*xfa.Node {
	if name == "parent" {
		if p := n.Parent(); p != nil {
			return []*xfa.Node{p}
		}
		return nil
	}
	var out []*xfa.Node
	collectByName(n, name, allTransparent, &out)
	if n.Namespace != xfa.NSData && n.Namespace != xfa.NSDatasets {
		if _, ok := n.Attr(name); ok {
			out = append(out, xfa.NewAttributeRef(n, name))
		}
	}
	return out
}

func collectByName(n *xfa.Node, name string, allTransparent bool, out *[]*xfa.Node) {
	data := n.Namespace == xfa.NSData || n.Namespace == xfa.NSDatasets
	for _, c := range n.Children() {
		if c.Tag == name || (!data && c.Name() == name) {
			*out = append(*out, c)
		}
		if allTransparent || (!data && c.IsTransparent()) {
			collectByName(c, name, allTransparent, out)
		}
	}
}

// ChildrenByClass returns the children of n whose kind, or tag for data
// nodes, is class.
func ChildrenByClass(n *xfa.Node, class string) []*xfa.Node {
	if class == "parent" {
		if p := n.Parent(); p != nil {
			return []*xfa.Node{p}
		}
		return nil
	}
	var out []*xfa.Node
	for _, c := range n.Children() {
		if c.Tag == class {
			out = append(out, c)
		}
	}
	return out
}
