// Package bind merges an XFA data tree into a copy of the template,
// producing the form tree the layout engine paginates.
package bind

import (
	"context"
	"strings"

	"github.com/wudi/xfalayout/observability"
	"github.com/wudi/xfalayout/xfa"
	"github.com/wudi/xfalayout/xfa/som"
)

type mergeMode int

const (
	mergeUnset mergeMode = iota
	mergeConsumeData
	mergeMatchTemplate
)

// Binder handles the binding of data from Datasets to the Template. A
// Binder runs a single pass; create a new one to bind again.
type Binder struct {
	doc        *xfa.Document
	data       *xfa.Node
	form       *xfa.Node
	som        *som.Resolver
	emptyMerge bool
	mode       mergeMode
	// consumed data attributes, keyed by owner and attribute name.
	attrs map[attrKey]bool

	logger observability.Logger
	tracer observability.Tracer
}

type attrKey struct {
	owner *xfa.Node
	name  string
}

// Option configures a Binder.
type Option func(*Binder)

func WithLogger(l observability.Logger) Option {
	return func(b *Binder) { b.logger = observability.OrNop(l) }
}

func WithTracer(t observability.Tracer) Option {
	return func(b *Binder) {
		if t != nil {
			b.tracer = t
		}
	}
}

// NewBinder creates a new Binder for the given document.
func NewBinder(doc *xfa.Document, opts ...Option) *Binder {
	b := &Binder{
		doc:    doc,
		data:   doc.Data,
		attrs:  map[attrKey]bool{},
		logger: observability.NopLogger{},
		tracer: observability.NopTracer(),
	}
	for _, o := range opts {
		o(b)
	}
	if b.data == nil {
		b.data = xfa.NewNode(xfa.NSDatasets, xfa.KindData, "data")
	}
	b.emptyMerge = len(dataChildren(b.data)) == 0
	return b
}

// Bind copies the template into a form tree and binds it against the
// data. The template itself is left untouched. Every container bound to
// data has its Data set; repeated containers are cloned in place.
func (b *Binder) Bind(ctx context.Context) *xfa.Node {
	_, span := b.tracer.StartSpan(ctx, observability.SpanBind)
	defer span.Finish()

	b.form = b.doc.Template.Clone()
	roots := som.RootsOf(b.doc)
	roots.Form = b.form
	roots.Data = b.data
	b.som = som.NewResolver(roots, som.WithLogger(b.logger))

	b.bindElement(b.form, b.data)
	span.SetTag("emptyMerge", b.emptyMerge)
	return b.form
}

// Form returns the tree produced by Bind.
func (b *Binder) Form() *xfa.Node { return b.form }

// Data returns the data root, including nodes synthesized while binding.
func (b *Binder) Data() *xfa.Node { return b.data }

// Resolver returns the SOM resolver used for the pass.
func (b *Binder) Resolver() *som.Resolver { return b.som }

func (b *Binder) isConsumeData() bool {
	return !b.emptyMerge && b.mode == mergeConsumeData
}

func (b *Binder) isMatchTemplate() bool { return !b.isConsumeData() }

func (b *Binder) bindValue(formNode, data *xfa.Node) {
	formNode.Data = data
	if formNode.HasSettableValue() {
		switch {
		case data.IsDataValue():
			formNode.SetValue(data.DataValue())
		case formNode.Kind == xfa.KindField && formNode.IsMultiSelect():
			var lines []string
			for _, c := range dataChildren(data) {
				lines = append(lines, strings.TrimSpace(c.Text()))
			}
			formNode.SetValue(strings.Join(lines, "\n"))
		case b.isConsumeData():
			b.logger.Warn("xfa: nodes have different types",
				observability.String("node", formNode.String()),
				observability.String("data", data.Tag))
		}
		return
	}
	if !data.IsDataValue() || b.isMatchTemplate() {
		b.bindElement(formNode, data)
		return
	}
	b.logger.Warn("xfa: nodes have different types",
		observability.String("node", formNode.String()),
		observability.String("data", data.Tag))
}

// findDataByNameToConsume looks for an unconsumed data node named like
// formNode and of a compatible kind in dataNode, then its parent and
// grandparent. Global containers fall back to any node or attribute below
// the data root.
func (b *Binder) findDataByNameToConsume(formNode, dataNode *xfa.Node, global bool) *xfa.Node {
	name := formNode.Name()
	if name == "" {
		return nil
	}
	for i := 0; i < 3 && dataNode != nil; i++ {
		for _, c := range dataNode.Children() {
			if c.Tag == name && !c.Consumed && compatible(formNode, c) {
				return c
			}
		}
		if isDataRoot(dataNode) {
			break
		}
		dataNode = dataNode.Parent()
	}
	if !global {
		return nil
	}

	var found *xfa.Node
	b.data.Walk(func(n *xfa.Node) bool {
		if n != b.data && n.Tag == name && !n.Consumed && compatible(formNode, n) {
			found = n
			return false
		}
		return true
	})
	if found != nil {
		return found
	}

	b.data.Walk(func(n *xfa.Node) bool {
		if n.Namespace != xfa.NSData {
			return true
		}
		if _, ok := n.Attr(name); ok && !b.attrs[attrKey{n, name}] {
			found = xfa.NewAttributeRef(n, name)
			return false
		}
		return true
	})
	return found
}

// compatible reports whether data has the shape formNode binds to: values
// for settable nodes, groups for containers. Multi-select lists take
// either.
func compatible(formNode, data *xfa.Node) bool {
	if formNode.Kind == xfa.KindField && formNode.IsMultiSelect() {
		return true
	}
	return data.IsDataValue() == formNode.HasSettableValue()
}

func (b *Binder) consume(n *xfa.Node) {
	if n.Kind == xfa.KindAttribute {
		b.attrs[attrKey{n.Parent(), n.Name()}] = true
		return
	}
	n.Consumed = true
}

func (b *Binder) bindOccurrences(formNode *xfa.Node, matches []*xfa.Node) {
	var base *xfa.Node
	if len(matches) > 1 {
		base = formNode.Clone()
		if o := base.First(xfa.KindOccur); o != nil {
			base.RemoveChild(o)
		}
	}

	b.bindValue(formNode, matches[0])
	b.setProperties(formNode, matches[0])
	b.bindItems(formNode, matches[0])
	if len(matches) == 1 {
		return
	}

	parent := formNode.Parent()
	pos := parent.IndexOf(formNode)
	for i, m := range matches[1:] {
		clone := base.Clone()
		parent.InsertAt(pos+i+1, clone)
		b.bindValue(clone, m)
		b.setProperties(clone, m)
		b.bindItems(clone, m)
	}
}

// createOccurrences replicates formNode up to occur.initial instances
// when there is no data to drive repetition.
func (b *Binder) createOccurrences(formNode *xfa.Node) {
	if !b.emptyMerge || !formNode.IsBindable() || formNode.First(xfa.KindOccur) == nil {
		return
	}
	occur := xfa.OccurOf(formNode)
	parent := formNode.Parent()
	if occur.Initial <= 1 || parent == nil {
		return
	}
	current := 0
	for _, c := range parent.ChildrenOfKind(formNode.Kind) {
		if formNode.Name() == "" || c.Name() == formNode.Name() {
			current++
		}
	}
	missing := occur.Initial - current
	if missing <= 0 {
		return
	}
	base := formNode.Clone()
	base.RemoveChild(base.First(xfa.KindOccur))
	pos := parent.IndexOf(formNode) + 1
	parent.InsertAt(pos, base)
	for i := 1; i < missing; i++ {
		parent.InsertAt(pos+i, base.Clone())
	}
}

// occurInfo returns the min and max instances of a container. Max is -1
// when unbounded. Unnamed containers bind exactly once.
func occurInfo(n *xfa.Node) (int, int) {
	if n.First(xfa.KindOccur) == nil || n.Name() == "" {
		return 1, 1
	}
	o := xfa.OccurOf(n)
	return o.Min, o.Max
}

func (b *Binder) setAndBind(formNode, dataNode *xfa.Node) {
	b.setProperties(formNode, dataNode)
	b.bindItems(formNode, dataNode)
	b.bindElement(formNode, dataNode)
}

func (b *Binder) bindElement(formNode, dataNode *xfa.Node) {
	// Removed after the scan so indices stay valid.
	var useless []*xfa.Node

	b.createOccurrences(formNode)

	for i := 0; i < len(formNode.Children()); i++ {
		child := formNode.Children()[i]
		if child.Data != nil || child.Kind == xfa.KindProto {
			continue
		}

		if b.mode == mergeUnset && child.Kind == xfa.KindSubform {
			b.mode = mergeMatchTemplate
			if child.AttrOr("mergeMode", "consumeData") != "matchTemplate" {
				b.mode = mergeConsumeData
			}
			// The top-level subform and the current record always bind,
			// whatever their names.
			if dc := dataChildren(dataNode); len(dc) > 0 {
				b.bindOccurrences(child, dc[:1])
			} else if b.emptyMerge {
				name := child.Name()
				if name == "" {
					name = "root"
				}
				dataChild := b.newDataNode(dataNode, name)
				child.Data = dataChild
				b.bindElement(child, dataChild)
			}
			continue
		}

		if !child.IsBindable() {
			b.bindElement(child, dataNode)
			continue
		}

		global := false
		ref := ""
		if bind := child.First(xfa.KindBind); bind != nil {
			switch bind.AttrOr("match", "once") {
			case "none":
				b.setAndBind(child, dataNode)
				continue
			case "global":
				global = true
			case "dataRef":
				ref, _ = bind.Attr("ref")
				if ref == "" {
					b.logger.Warn("xfa: empty ref", observability.String("node", child.String()))
					b.setAndBind(child, dataNode)
					continue
				}
			}
		}

		min, max := occurInfo(child)
		var match []*xfa.Node

		if ref != "" {
			match = b.som.Search(nil, dataNode, ref, true, false)
			if match == nil {
				created := b.som.CreateDataNode(b.data, dataNode, ref)
				if created == nil {
					continue
				}
				if b.isConsumeData() {
					created.Consumed = true
				}
				// A new node is empty; there is no value to bind.
				child.Data = created
				b.setAndBind(child, created)
				continue
			}
			if b.isConsumeData() {
				match = unconsumed(match)
			}
			if max != xfa.Unbounded && len(match) > max {
				match = match[:max]
			}
			if b.isConsumeData() {
				for _, m := range match {
					b.consume(m)
				}
			}
		} else {
			if child.Name() == "" {
				b.setAndBind(child, dataNode)
				continue
			}
			if b.isConsumeData() {
				for max == xfa.Unbounded || len(match) < max {
					found := b.findDataByNameToConsume(child, dataNode, global)
					if found == nil {
						break
					}
					b.consume(found)
					match = append(match, found)
				}
			} else if found := b.findDataByNameToConsume(child, dataNode, global); found != nil {
				b.consume(found)
				match = []*xfa.Node{found}
			}
		}

		if len(match) == 0 {
			if min == 0 && !(b.emptyMerge && xfa.OccurOf(child).Initial > 0) {
				useless = append(useless, child)
				continue
			}
			created := b.newDataNode(dataNode, child.Name())
			if b.emptyMerge {
				created.Consumed = true
			}
			child.Data = created
			b.setAndBind(child, created)
			continue
		}

		b.bindOccurrences(child, match)
	}

	for _, n := range useless {
		formNode.RemoveChild(n)
	}
}

func (b *Binder) newDataNode(parent *xfa.Node, name string) *xfa.Node {
	n := xfa.NewDataNode(name)
	if parent.Namespace == xfa.NSData {
		n.Space = parent.Space
	}
	parent.AppendChild(n)
	return n
}

func isDataRoot(n *xfa.Node) bool {
	return n.Namespace == xfa.NSDatasets && n.Tag == "data"
}

// dataChildren skips the text nodes of mixed content.
func dataChildren(n *xfa.Node) []*xfa.Node {
	var out []*xfa.Node
	for _, c := range n.Children() {
		if c.Tag != "#text" {
			out = append(out, c)
		}
	}
	return out
}

func unconsumed(nodes []*xfa.Node) []*xfa.Node {
	var out []*xfa.Node
	for _, n := range nodes {
		if !n.Consumed {
			out = append(out, n)
		}
	}
	return out
}
