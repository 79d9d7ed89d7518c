package xfa

import "strings"

// ValueNode returns the value property of a field or draw, or nil.
func (n *Node) ValueNode() *Node { return n.First(KindValue) }

// ValueContent returns the typed content child of a value property.
func (n *Node) ValueContent() *Node {
	v := n.ValueNode()
	if v == nil {
		return nil
	}
	for _, c := range v.children {
		if IsValueContent(c.Kind) {
			return c
		}
	}
	return nil
}

// RawValue returns the textual value of a field or draw.
func (n *Node) RawValue() string {
	c := n.ValueContent()
	if c == nil {
		return ""
	}
	return c.Text()
}

// SetValue stores text as the value of a settable node. An existing typed
// content child keeps its type; otherwise a text child is created. An
// exclusion group shares the value with all of its member fields.
func (n *Node) SetValue(text string) {
	if n.Kind == KindExclGroup {
		for _, f := range n.ChildrenOfKind(KindField) {
			f.SetValue(text)
		}
		return
	}
	v := n.ValueNode()
	if v == nil {
		v = NewTemplateNode(KindValue)
		n.AppendChild(v)
	}
	for _, c := range v.children {
		if IsValueContent(c.Kind) && c.Kind != KindImage {
			for _, gc := range c.children {
				gc.parent = nil
			}
			c.children = nil
			c.Content = text
			return
		}
	}
	for _, c := range append([]*Node(nil), v.children...) {
		if IsValueContent(c.Kind) {
			v.RemoveChild(c)
		}
	}
	t := NewTemplateNode(KindText)
	t.Content = text
	v.AppendChild(t)
}

// IsMultiSelect reports whether a field is a choice list accepting several
// values.
func (n *Node) IsMultiSelect() bool {
	ui := n.First(KindUI)
	if ui == nil {
		return false
	}
	cl := ui.First(KindChoiceList)
	return cl != nil && cl.AttrOr("open", "userControl") == "multiSelect"
}

// Widget returns the single child of a field's ui, or nil.
func (n *Node) Widget() *Node {
	ui := n.First(KindUI)
	if ui == nil {
		return nil
	}
	for _, c := range ui.children {
		if c.Kind != KindUnknown {
			return c
		}
	}
	return nil
}

// ItemLists returns the display and save lists of a field's items. When
// only one list exists it serves as both.
func (n *Node) ItemLists() (display, save []string) {
	items := n.ChildrenOfKind(KindItems)
	read := func(it *Node) []string {
		var out []string
		for _, c := range it.children {
			out = append(out, strings.TrimSpace(c.Text()))
		}
		return out
	}
	switch len(items) {
	case 0:
		return nil, nil
	case 1:
		l := read(items[0])
		return l, l
	}
	a, b := items[0], items[1]
	if a.AttrOr("save", "0") == "1" && b.AttrOr("save", "0") != "1" {
		a, b = b, a
	}
	return read(a), read(b)
}
