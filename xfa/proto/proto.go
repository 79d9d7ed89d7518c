// Package proto merges XFA prototypes referenced through use and usehref
// into the nodes that reference them.
package proto

import (
	"strings"

	"github.com/wudi/xfalayout/observability"
	"github.com/wudi/xfalayout/xfa"
	"github.com/wudi/xfalayout/xfa/som"
)

// Attributes never copied from a prototype.
var uninherited = map[string]bool{"id": true, "use": true, "usehref": true}

// Resolver applies prototypes to a template tree.
type Resolver struct {
	ids    map[string]*xfa.Node
	root   *xfa.Node
	som    *som.Resolver
	logger observability.Logger
}

type Option func(*Resolver)

func WithLogger(l observability.Logger) Option {
	return func(r *Resolver) { r.logger = observability.OrNop(l) }
}

// NewResolver returns a resolver looking up "#id" references in ids and
// SOM references from the roots.
func NewResolver(roots som.Roots, ids map[string]*xfa.Node, opts ...Option) *Resolver {
	r := &Resolver{ids: ids, root: roots.XFA, logger: observability.NopLogger{}}
	for _, o := range opts {
		o(r)
	}
	if r.root == nil {
		r.root = roots.Template
	}
	r.som = som.NewResolver(roots, som.WithLogger(r.logger))
	return r
}

// Resolve resolves every use and usehref below doc's template.
func Resolve(doc *xfa.Document, opts ...Option) {
	NewResolver(som.RootsOf(doc), doc.IDs, opts...).Resolve(doc.Template)
}

// Resolve processes the children of n. References are removed once
// followed, so resolving a tree a second time changes nothing.
func (r *Resolver) Resolve(n *xfa.Node) {
	if n == nil {
		return
	}
	r.resolveChildren(n, map[*xfa.Node]bool{})
}

func (r *Resolver) resolveChildren(n *xfa.Node, anc map[*xfa.Node]bool) {
	for _, c := range append([]*xfa.Node(nil), n.Children()...) {
		r.resolveNode(c, anc)
	}
}

func (r *Resolver) resolveNode(n *xfa.Node, anc map[*xfa.Node]bool) {
	if p, _ := r.prototype(n, anc); p != nil {
		r.apply(n, p, anc)
		return
	}
	r.resolveChildren(n, anc)
}

// prototype follows n's reference, resolving the target's own prototype
// chain first. cycle is set when the chain leads back to a node already
// being resolved; the whole chain is then left unmerged.
func (r *Resolver) prototype(n *xfa.Node, anc map[*xfa.Node]bool) (p *xfa.Node, cycle bool) {
	use, _ := n.Attr("use")
	usehref, _ := n.Attr("usehref")
	if use == "" && usehref == "" {
		return nil, false
	}
	n.RemoveAttr("use")
	n.RemoveAttr("usehref")

	ref := use
	var id, expr string
	switch {
	case usehref != "":
		ref = usehref
		switch {
		case strings.HasPrefix(usehref, "#som(") && strings.HasSuffix(usehref, ")"):
			expr = usehref[len("#som(") : len(usehref)-1]
		case strings.HasPrefix(usehref, ".#som(") && strings.HasSuffix(usehref, ")"):
			expr = usehref[len(".#som(") : len(usehref)-1]
		case strings.HasPrefix(usehref, "#"):
			id = usehref[1:]
		case strings.HasPrefix(usehref, ".#"):
			id = usehref[2:]
		}
	case strings.HasPrefix(use, "#"):
		id = use[1:]
	default:
		expr = use
	}

	switch {
	case id != "":
		p = r.ids[id]
	case expr != "":
		if found := r.som.Search(r.root, n, expr, true, false); len(found) > 0 {
			p = found[0]
		}
	}
	if p == nil {
		r.logger.Warn("xfa: invalid prototype reference", observability.String("ref", ref))
		return nil, false
	}
	if p.Tag != n.Tag {
		r.logger.Warn("xfa: incompatible prototype",
			observability.String("ref", ref),
			observability.String("prototype", p.Tag),
			observability.String("node", n.Tag))
		return nil, false
	}
	if p == n || anc[p] {
		r.logger.Warn("xfa: cycle detected in prototype use", observability.String("ref", ref))
		return nil, true
	}

	added := markAll(anc, n, p)
	defer unmark(anc, added)

	pp, cycle := r.prototype(p, anc)
	if cycle {
		r.resolveChildren(p, anc)
		return nil, true
	}
	if pp != nil {
		r.apply(p, pp, anc)
	} else {
		r.resolveChildren(p, anc)
	}
	return p, false
}

func markAll(anc map[*xfa.Node]bool, nodes ...*xfa.Node) []*xfa.Node {
	var added []*xfa.Node
	for _, n := range nodes {
		if !anc[n] {
			anc[n] = true
			added = append(added, n)
		}
	}
	return added
}

func unmark(anc map[*xfa.Node]bool, nodes []*xfa.Node) {
	for _, n := range nodes {
		delete(anc, n)
	}
}

// apply merges p into n: content and attributes n lacks, single-valued
// properties recursively, and collection entries beyond n's own count up
// to the schema bound.
func (r *Resolver) apply(n, p *xfa.Node, anc map[*xfa.Node]bool) {
	if anc[p] {
		r.logger.Warn("xfa: cycle detected in prototype use", observability.String("node", n.String()))
		return
	}
	if n.Content == "" && p.Content != "" && len(n.Children()) == 0 {
		n.Content = p.Content
	}
	for _, a := range p.Attrs {
		name := a.Name.Local
		if uninherited[name] {
			continue
		}
		if _, set := n.Attr(name); !set {
			n.SetAttr(name, a.Value)
		}
	}

	added := markAll(anc, p)
	defer unmark(anc, added)

	own := groupChildren(n)
	inherited := groupChildren(p)
	keys := own.keys
	for _, k := range inherited.keys {
		if _, ok := own.byKey[k]; !ok {
			keys = append(keys, k)
		}
	}

	for _, k := range keys {
		mine, theirs := own.byKey[k], inherited.byKey[k]
		max := xfa.ChildMax(n.Kind, k.kind)
		if k.kind == xfa.KindUnknown {
			max = xfa.Unbounded
		}
		if max == 1 {
			switch {
			case len(mine) > 0:
				r.resolveNode(mine[0], anc)
				if len(theirs) > 0 {
					r.apply(mine[0], theirs[0], anc)
				}
			case len(theirs) > 0:
				c := theirs[0].Clone()
				n.AppendChild(c)
				r.resolveNode(c, anc)
			}
			continue
		}
		for _, c := range mine {
			r.resolveNode(c, anc)
		}
		count := len(mine)
		for i := len(mine); i < len(theirs); i++ {
			if max != xfa.Unbounded && count >= max {
				break
			}
			c := theirs[i].Clone()
			n.AppendChild(c)
			count++
			r.resolveNode(c, anc)
		}
	}
}

type childKey struct {
	kind xfa.Kind
	tag  string
}

type childGroups struct {
	keys  []childKey
	byKey map[childKey][]*xfa.Node
}

// groupChildren buckets children by kind, or by tag for kinds outside
// the schema table.
func groupChildren(n *xfa.Node) childGroups {
	g := childGroups{byKey: map[childKey][]*xfa.Node{}}
	for _, c := range n.Children() {
		k := childKey{kind: c.Kind}
		if c.Kind == xfa.KindUnknown {
			k.tag = c.Tag
		}
		if _, ok := g.byKey[k]; !ok {
			g.keys = append(g.keys, k)
		}
		g.byKey[k] = append(g.byKey[k], c)
	}
	return g
}
