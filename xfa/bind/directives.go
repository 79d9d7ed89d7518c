package bind

import (
	"github.com/wudi/xfalayout/observability"
	"github.com/wudi/xfalayout/xfa"
)

// setProperties applies the setProperty children of formNode, copying the
// text of a data node into a property or attribute of formNode.
//
//	<field name="LastName">
//	  <setProperty target="caption.value.text" ref="$data.Student.Name.Last"/>
//	</field>
func (b *Binder) setProperties(formNode, dataNode *xfa.Node) {
	for _, sp := range formNode.ChildrenOfKind(xfa.KindSetProperty) {
		ref, _ := sp.Attr("ref")
		target, _ := sp.Attr("target")
		if _, ok := sp.Attr("connection"); ok || ref == "" {
			continue
		}

		nodes := b.som.Search(nil, dataNode, ref, false, false)
		if len(nodes) == 0 {
			b.logger.Warn("xfa: invalid reference", observability.String("ref", ref))
			continue
		}
		node := nodes[0]
		if !node.IsDescendantOf(b.data) {
			b.logger.Warn("xfa: setProperty ref must be a data node", observability.String("ref", ref))
			continue
		}

		targets := b.som.Search(nil, formNode, target, false, false)
		if len(targets) == 0 {
			b.logger.Warn("xfa: invalid target", observability.String("target", target))
			continue
		}
		t := targets[0]
		if t == formNode || !t.IsDescendantOf(formNode) {
			b.logger.Warn("xfa: target must be a property or subproperty", observability.String("target", target))
			continue
		}
		if isDirective(t) || isDirective(t.Parent()) {
			b.logger.Warn("xfa: target cannot be a binding directive", observability.String("target", target))
			continue
		}

		content := node.Text()
		switch {
		case t.Kind == xfa.KindAttribute:
			t.Parent().SetAttr(t.Name(), content)
		case t.Kind == xfa.KindValue:
			t.Parent().SetValue(content)
		case len(t.Children()) == 0 && !t.IsContainer():
			t.Data = node
			t.Content = content
		default:
			b.logger.Warn("xfa: invalid node for setProperty", observability.String("target", target))
		}
	}
}

func isDirective(n *xfa.Node) bool {
	return n != nil && (n.Kind == xfa.KindSetProperty || n.Kind == xfa.KindBindItems)
}

// bindItems replaces the items of a field with a label list and a value
// list built from the data nodes its bindItems select.
//
//	<field name="CardName">
//	  <bindItems ref="$data.main.ccs.cc[*]" labelRef="uiname" valueRef="token"/>
//	</field>
func (b *Binder) bindItems(formNode, dataNode *xfa.Node) {
	if formNode.Kind != xfa.KindField {
		return
	}
	directives := formNode.ChildrenOfKind(xfa.KindBindItems)
	if len(directives) == 0 {
		return
	}

	for _, it := range formNode.ChildrenOfKind(xfa.KindItems) {
		formNode.RemoveChild(it)
	}
	labels := xfa.NewTemplateNode(xfa.KindItems)
	values := xfa.NewTemplateNode(xfa.KindItems)
	values.SetAttr("save", "1")
	formNode.AppendChild(labels)
	formNode.AppendChild(values)

	datasets := b.doc.Datasets
	if datasets == nil {
		datasets = b.data
	}
	for _, bi := range directives {
		ref, _ := bi.Attr("ref")
		if _, ok := bi.Attr("connection"); ok || ref == "" {
			continue
		}
		labelRef := bi.AttrOr("labelRef", "$")
		valueRef := bi.AttrOr("valueRef", "$")

		nodes := b.som.Search(nil, dataNode, ref, false, false)
		if len(nodes) == 0 {
			b.logger.Warn("xfa: invalid reference", observability.String("ref", ref))
			continue
		}
		for _, node := range nodes {
			if !node.IsDescendantOf(datasets) {
				b.logger.Warn("xfa: bindItems ref must be a datasets node", observability.String("ref", ref))
				continue
			}
			label := b.firstInDatasets(node, labelRef, datasets)
			if label == nil {
				b.logger.Warn("xfa: invalid label", observability.String("labelRef", labelRef))
				continue
			}
			value := b.firstInDatasets(node, valueRef, datasets)
			if value == nil {
				b.logger.Warn("xfa: invalid value", observability.String("valueRef", valueRef))
				continue
			}
			appendText(labels, label.Text())
			appendText(values, value.Text())
		}
	}
}

func (b *Binder) firstInDatasets(node *xfa.Node, expr string, datasets *xfa.Node) *xfa.Node {
	found := b.som.Search(nil, node, expr, true, false)
	if len(found) == 0 || !found[0].IsDescendantOf(datasets) {
		return nil
	}
	return found[0]
}

func appendText(items *xfa.Node, s string) {
	t := xfa.NewTemplateNode(xfa.KindText)
	t.Content = s
	items.AppendChild(t)
}
