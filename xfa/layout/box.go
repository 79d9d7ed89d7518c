package layout

import (
	"math"
	"strconv"

	"github.com/wudi/xfalayout/xfa"
)

// Box is one element of a page tree. It is shaped like an HTML element:
// a tag, attributes, classes, an inline style and children. Text leaves
// carry their content in Text.
type Box struct {
	Tag      string
	Attrs    map[string]string
	Class    []string
	Style    map[string]string
	Children []*Box
	Text     string
}

func newBox(tag string, class ...string) *Box {
	return &Box{Tag: tag, Attrs: map[string]string{}, Class: class, Style: map[string]string{}}
}

func textBox(s string) *Box { return &Box{Text: s} }

// Append adds children to b.
func (b *Box) Append(children ...*Box) {
	for _, c := range children {
		if c != nil {
			b.Children = append(b.Children, c)
		}
	}
}

// HasClass reports whether b carries class c.
func (b *Box) HasClass(c string) bool {
	for _, x := range b.Class {
		if x == c {
			return true
		}
	}
	return false
}

// Walk visits b and its descendants depth first until fn returns false.
func (b *Box) Walk(fn func(*Box) bool) bool {
	if !fn(b) {
		return false
	}
	for _, c := range b.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Find returns the first box below b, b included, whose id attribute is id.
func (b *Box) Find(id string) *Box {
	var found *Box
	b.Walk(func(x *Box) bool {
		if x.Attrs["id"] == id {
			found = x
			return false
		}
		return true
	})
	return found
}

// Content returns the concatenated text of b's subtree.
func (b *Box) Content() string {
	s := b.Text
	for _, c := range b.Children {
		s += c.Content()
	}
	return s
}

// Rect is a rectangle in points, origin at the top left.
type Rect struct {
	X, Y, W, H float64
}

// Size is an available width and height.
type Size struct {
	W, H float64
}

// Status is the outcome of laying out one node.
type Status int

const (
	// StatusSuccess means the node was placed, or produced nothing.
	StatusSuccess Status = iota
	// StatusFailure means the node does not fit the available space.
	StatusFailure
	// StatusBreak means a break directive asks to leave the current area.
	StatusBreak
)

// Result is returned by every layout step.
type Result struct {
	Status Status
	Box    *Box
	BBox   Rect
	// Break is the breakBefore or breakAfter node that interrupted layout.
	Break *xfa.Node
}

var (
	emptyResult   = Result{}
	failureResult = Result{Status: StatusFailure}
)

func success(b *Box, bbox Rect) Result { return Result{Box: b, BBox: bbox} }

func breakAt(n *xfa.Node) Result { return Result{Status: StatusBreak, Break: n} }

// OK reports whether the step succeeded.
func (r Result) OK() bool { return r.Status == StatusSuccess }

// IsBreak reports whether the step stopped on a break directive.
func (r Result) IsBreak() bool { return r.Status == StatusBreak }

// px formats a measurement for a style value.
func px(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0px"
	}
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64) + "px"
}
