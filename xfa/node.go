package xfa

import (
	"encoding/xml"
	"strconv"
	"strings"
	"sync/atomic"
)

var uidCounter atomic.Uint64

func nextUID() string {
	return "xfa" + strconv.FormatUint(uidCounter.Add(1), 10)
}

// Node is a template or data node. The parent is a navigation link only:
// a node is owned by exactly one parent's child list, and every structural
// mutation goes through AppendChild, InsertAt and RemoveChild so the link
// stays consistent.
type Node struct {
	Kind      Kind
	Namespace Namespace
	Tag       string
	// Space is the namespace URI the element was read with.
	Space   string
	Attrs   []xml.Attr
	Content string

	// Data is the data node this container is bound to.
	Data *Node
	// Consumed marks a data node already matched in the current binding pass.
	Consumed bool

	uid       string
	parent    *Node
	children  []*Node
	dataValue *bool
}

// NewNode creates a detached node.
func NewNode(ns Namespace, kind Kind, tag string) *Node {
	return &Node{Kind: kind, Namespace: ns, Tag: tag, uid: nextUID()}
}

// NewTemplateNode creates a detached template node of the given kind.
func NewTemplateNode(kind Kind) *Node {
	return NewNode(NSTemplate, kind, kind.String())
}

// NewDataNode creates a detached data node named tag.
func NewDataNode(tag string) *Node {
	return NewNode(NSData, KindData, tag)
}

// NewAttributeRef returns a handle on owner's attribute name. The handle
// points at owner but is not one of its children.
func NewAttributeRef(owner *Node, name string) *Node {
	v, _ := owner.Attr(name)
	n := NewNode(owner.Namespace, KindAttribute, name)
	n.Content = v
	n.parent = owner
	return n
}

// UID is the stable opaque identifier the host uses as a foreign key.
func (n *Node) UID() string { return n.uid }

func (n *Node) Parent() *Node { return n.parent }

// Children returns the child list. Callers must not modify it.
func (n *Node) Children() []*Node { return n.children }

// ChildrenOfKind returns the children of kind k in document order.
func (n *Node) ChildrenOfKind(k Kind) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.Kind == k {
			out = append(out, c)
		}
	}
	return out
}

// ChildrenNamed returns the children whose SOM name is name.
func (n *Node) ChildrenNamed(name string) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.Name() == name {
			out = append(out, c)
		}
	}
	return out
}

// ChildrenByTag returns the children with element name tag.
func (n *Node) ChildrenByTag(tag string) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// First returns the first child of kind k, or nil.
func (n *Node) First(k Kind) *Node {
	for _, c := range n.children {
		if c.Kind == k {
			return c
		}
	}
	return nil
}

// AppendChild adds c as the last child of n, detaching it from any
// previous parent.
func (n *Node) AppendChild(c *Node) {
	if c.parent != nil {
		c.parent.RemoveChild(c)
	}
	c.parent = n
	n.children = append(n.children, c)
}

// InsertAt inserts c at position i (clamped to the child count).
func (n *Node) InsertAt(i int, c *Node) {
	if c.parent != nil {
		c.parent.RemoveChild(c)
	}
	if i < 0 {
		i = 0
	}
	if i > len(n.children) {
		i = len(n.children)
	}
	c.parent = n
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = c
}

// RemoveChild detaches c. It reports whether c was a child of n.
func (n *Node) RemoveChild(c *Node) bool {
	i := n.IndexOf(c)
	if i < 0 {
		return false
	}
	n.children = append(n.children[:i], n.children[i+1:]...)
	c.parent = nil
	return true
}

// IndexOf returns the position of c among n's children, or -1.
func (n *Node) IndexOf(c *Node) int {
	for i, child := range n.children {
		if child == c {
			return i
		}
	}
	return -1
}

// Clone returns a deep structural copy with fresh identifiers. Binding
// state (Data, Consumed) is not copied.
func (n *Node) Clone() *Node {
	c := &Node{
		Kind:      n.Kind,
		Namespace: n.Namespace,
		Tag:       n.Tag,
		Space:     n.Space,
		Content:   n.Content,
		uid:       nextUID(),
	}
	if len(n.Attrs) > 0 {
		c.Attrs = append([]xml.Attr(nil), n.Attrs...)
	}
	if n.dataValue != nil {
		v := *n.dataValue
		c.dataValue = &v
	}
	for _, child := range n.children {
		cc := child.Clone()
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}

// Attr returns the attribute value and whether it was explicitly set.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value or def when it is unset or empty.
func (n *Node) AttrOr(name, def string) string {
	if v, ok := n.Attr(name); ok && v != "" {
		return v
	}
	return def
}

// SetAttr sets name explicitly.
func (n *Node) SetAttr(name, value string) {
	for i, a := range n.Attrs {
		if a.Name.Local == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

// RemoveAttr unsets name.
func (n *Node) RemoveAttr(name string) {
	for i, a := range n.Attrs {
		if a.Name.Local == name {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return
		}
	}
}

// SetAttrNames returns the names of all explicitly set attributes.
func (n *Node) SetAttrNames() []string {
	out := make([]string, 0, len(n.Attrs))
	for _, a := range n.Attrs {
		out = append(out, a.Name.Local)
	}
	return out
}

// Name is the name used by SOM: the name attribute of template nodes and
// the tag of data nodes.
func (n *Node) Name() string {
	if n.Namespace == NSData || n.Namespace == NSDatasets || n.Kind == KindAttribute {
		return n.Tag
	}
	v, _ := n.Attr("name")
	return v
}

// ID returns the id attribute.
func (n *Node) ID() string {
	v, _ := n.Attr("id")
	return v
}

// IsTransparent reports whether SOM searches look through n: unnamed
// containers, and subformSet/area which never introduce a scope.
func (n *Node) IsTransparent() bool {
	switch n.Kind {
	case KindSubformSet, KindArea:
		return true
	case KindSubform, KindExclGroup, KindPageSet, KindProto, KindVariables:
		return n.Name() == ""
	}
	return false
}

// IsBindable reports whether the binder matches n against data.
func (n *Node) IsBindable() bool {
	switch n.Kind {
	case KindSubform, KindSubformSet, KindField, KindExclGroup:
		return true
	}
	return false
}

// HasSettableValue reports whether n owns a value the binder can set.
func (n *Node) HasSettableValue() bool {
	return n.Kind == KindField || n.Kind == KindExclGroup
}

// IsContainer reports whether n is laid out as a box.
func (n *Node) IsContainer() bool {
	switch n.Kind {
	case KindSubform, KindSubformSet, KindExclGroup, KindField, KindDraw, KindArea:
		return true
	}
	return false
}

// Text concatenates n's own content, or its children's text when n has
// children.
func (n *Node) Text() string {
	if len(n.children) == 0 {
		return n.Content
	}
	var sb strings.Builder
	if n.Namespace == NSData && n.Content != "" {
		sb.WriteString(n.Content)
	}
	for _, c := range n.children {
		sb.WriteString(c.Text())
	}
	return sb.String()
}

// SetDataValue forces the data value/data group classification.
func (n *Node) SetDataValue(v bool) { n.dataValue = &v }

// IsDataValue reports whether a data node holds a value rather than a
// group of nodes.
func (n *Node) IsDataValue() bool {
	if n.dataValue != nil {
		return *n.dataValue
	}
	return len(n.children) == 0 || n.children[0].Namespace == NSXHTML
}

// DataValue returns the trimmed scalar of a data value node.
func (n *Node) DataValue() string {
	if len(n.children) == 0 {
		return strings.TrimSpace(n.Content)
	}
	if n.children[0].Namespace == NSXHTML {
		return strings.TrimSpace(n.children[0].Text())
	}
	return ""
}

// IsDescendantOf reports whether anc is n or one of its ancestors.
func (n *Node) IsDescendantOf(anc *Node) bool {
	for p := n; p != nil; p = p.parent {
		if p == anc {
			return true
		}
	}
	return false
}

// Root returns the topmost ancestor of n.
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Walk visits n and its descendants depth first until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

func (n *Node) String() string {
	if name := n.Name(); name != "" && n.Namespace != NSData {
		return n.Tag + "[" + name + "]"
	}
	return n.Tag
}
