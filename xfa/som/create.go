package som

import (
	"github.com/wudi/xfalayout/observability"
	"github.com/wudi/xfalayout/xfa"
)

// CreateDataNode walks expr like Search and synthesizes the data nodes
// that are missing. A segment index names how many siblings must exist,
// so "a[2]" on an element with one a creates two more. The created leaf
// is returned. When every segment already exists nothing is created and
// CreateDataNode returns nil; ".." segments are not supported.
func (r *Resolver) CreateDataNode(root, container *xfa.Node, expr string) *xfa.Node {
	e, err := Parse(expr, false)
	if err != nil {
		r.logger.Warn("som: cannot create data node", observability.String("expr", expr))
		return nil
	}
	segs := append([]Segment(nil), e.Segments...)

	i := 0
	cur := container
	if target, ok := r.shortcut(segs[0].Name, container); ok {
		cur = target
		i = 1
	} else if cur == nil {
		cur = root
	}
	if cur == nil {
		return nil
	}

	for ; i < len(segs); i++ {
		seg := segs[i]
		if seg.All {
			segs[i].All = false
			segs[i].Index = 0
			return r.createNodes(cur, segs[i:])
		}
		var children []*xfa.Node
		switch seg.Op {
		case OpDot:
			children = ChildrenByName(cur, seg.Name, false)
		case OpDotHash:
			children = ChildrenByClass(cur, seg.Name)
		}
		if len(children) == 0 {
			return r.createNodes(cur, segs[i:])
		}
		if seg.Index >= len(children) {
			segs[i].Index = seg.Index - len(children)
			return r.createNodes(cur, segs[i:])
		}
		child := children[seg.Index]
		if child.Kind == xfa.KindAttribute {
			r.logger.Warn("som: cannot create a node below an attribute", observability.String("expr", expr))
			return nil
		}
		cur = child
	}
	return nil
}

func (r *Resolver) createNodes(parent *xfa.Node, segs []Segment) *xfa.Node {
	r.invalidate(parent)
	var node *xfa.Node
	for _, s := range segs {
		for j := 0; j <= s.Index; j++ {
			node = xfa.NewDataNode(s.Name)
			if parent.Namespace == xfa.NSData {
				node.Space = parent.Space
			}
			parent.AppendChild(node)
		}
		parent = node
	}
	return node
}
