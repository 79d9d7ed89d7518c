package xfa

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

var (
	// ErrNoTemplate is returned when a packet set has no template.
	ErrNoTemplate = errors.New("xfa: no template packet")
	// ErrNoSubform is returned when the template owns no top-level subform.
	ErrNoSubform = errors.New("xfa: template has no subform")
)

// Document is a parsed XDP packet set.
type Document struct {
	// Root is the xdp element, or the template when it was parsed standalone.
	Root     *Node
	Template *Node
	Datasets *Node
	// Data is the xfa:data element of the datasets packet.
	Data *Node
	// IDs maps id attributes of template nodes to their nodes.
	IDs map[string]*Node
}

// RootSubform returns the single top-level subform of the template.
func (d *Document) RootSubform() *Node {
	if d.Template == nil {
		return nil
	}
	return d.Template.First(KindSubform)
}

// Parser builds node trees from XDP XML.
type Parser interface {
	Parse(r io.Reader) (*Document, error)
}

type ParserImpl struct{}

func NewParser() *ParserImpl {
	return &ParserImpl{}
}

// Parse is shorthand for NewParser().Parse(r).
func Parse(r io.Reader) (*Document, error) {
	return NewParser().Parse(r)
}

func (p *ParserImpl) Parse(r io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel
	decoder.Strict = false

	b := &builder{doc: &Document{IDs: map[string]*Node{}}}
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xfa: parse: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			b.start(t)
		case xml.EndElement:
			b.end()
		case xml.CharData:
			b.text(string(t))
		}
	}
	return b.finish()
}

type frame struct {
	node    *Node
	pending strings.Builder
}

type builder struct {
	doc   *Document
	stack []*frame
}

func (b *builder) top() *frame {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *builder) start(t xml.StartElement) {
	parent := b.top()
	var parentNode *Node
	if parent != nil {
		b.flushText(parent)
		parentNode = parent.node
	}

	n := b.newNode(t, parentNode)
	if parentNode != nil {
		parentNode.AppendChild(n)
	} else {
		b.doc.Root = n
	}
	switch {
	case n.Kind == KindTemplate && b.doc.Template == nil:
		b.doc.Template = n
	case n.Kind == KindDatasets && b.doc.Datasets == nil:
		b.doc.Datasets = n
	case n.Namespace == NSDatasets && n.Kind == KindData && b.doc.Data == nil:
		b.doc.Data = n
	}
	if n.Namespace == NSTemplate {
		if id := n.ID(); id != "" {
			if _, dup := b.doc.IDs[id]; !dup {
				b.doc.IDs[id] = n
			}
		}
	}
	b.stack = append(b.stack, &frame{node: n})
}

func (b *builder) newNode(t xml.StartElement, parent *Node) *Node {
	ns := namespaceOf(t.Name, parent)
	kind := KindUnknown
	switch ns {
	case NSXDP:
		if t.Name.Local == "xdp" {
			kind = KindXDP
		}
	case NSTemplate:
		kind = TemplateKind(t.Name.Local)
	case NSDatasets:
		switch t.Name.Local {
		case "datasets":
			kind = KindDatasets
		case "data":
			kind = KindData
		}
	case NSData:
		kind = KindData
	}

	n := NewNode(ns, kind, t.Name.Local)
	n.Space = t.Name.Space
	for _, a := range t.Attr {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		if ns == NSData && a.Name.Local == "dataNode" && a.Name.Space == URIDatasets {
			switch a.Value {
			case "dataValue":
				n.SetDataValue(true)
			case "dataGroup":
				n.SetDataValue(false)
			}
			continue
		}
		n.Attrs = append(n.Attrs, a)
	}
	return n
}

func namespaceOf(name xml.Name, parent *Node) Namespace {
	switch {
	case strings.HasPrefix(name.Space, URITemplate):
		return NSTemplate
	case name.Space == URIDatasets:
		if parent != nil && (parent.Namespace == NSData || parent.Kind == KindData) {
			return NSData
		}
		return NSDatasets
	case strings.HasPrefix(name.Space, URIXDP):
		return NSXDP
	case name.Space == URIXHTML:
		return NSXHTML
	}
	if parent == nil {
		switch name.Local {
		case "template":
			return NSTemplate
		case "datasets":
			return NSDatasets
		}
		return NSUnknown
	}
	switch {
	case parent.Namespace == NSData, parent.Kind == KindData:
		return NSData
	case parent.Namespace == NSXHTML:
		return NSXHTML
	case parent.Namespace == NSTemplate:
		return NSTemplate
	case parent.Kind == KindDatasets && name.Local == "data":
		return NSDatasets
	case parent.Kind == KindXDP:
		switch name.Local {
		case "template":
			return NSTemplate
		case "datasets":
			return NSDatasets
		}
	}
	return parent.Namespace
}

func (b *builder) text(s string) {
	if f := b.top(); f != nil {
		f.pending.WriteString(s)
	}
}

// flushText moves text seen before a child element into a synthetic text
// node so a node never carries both content and children.
func (b *builder) flushText(f *frame) {
	s := f.pending.String()
	f.pending.Reset()
	if strings.TrimSpace(s) == "" {
		return
	}
	t := NewNode(f.node.Namespace, KindUnknown, "#text")
	t.Content = s
	f.node.AppendChild(t)
}

func (b *builder) end() {
	f := b.top()
	if f == nil {
		return
	}
	b.stack = b.stack[:len(b.stack)-1]
	if len(f.node.children) > 0 {
		b.flushText(f)
		return
	}
	s := f.pending.String()
	if f.node.Namespace == NSData || f.node.Namespace == NSXHTML {
		f.node.Content = s
		return
	}
	f.node.Content = strings.TrimSpace(s)
}

func (b *builder) finish() (*Document, error) {
	d := b.doc
	if d.Template == nil {
		return nil, ErrNoTemplate
	}
	if d.RootSubform() == nil {
		return nil, ErrNoSubform
	}
	if d.Datasets == nil {
		d.Datasets = NewNode(NSDatasets, KindDatasets, "datasets")
		if d.Root != nil && d.Root != d.Template {
			d.Root.AppendChild(d.Datasets)
		}
	}
	if d.Data == nil {
		d.Data = NewNode(NSDatasets, KindData, "data")
		d.Datasets.AppendChild(d.Data)
	}
	return d, nil
}
