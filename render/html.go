// Package render serialises laid out pages: HTML documents, SVG previews
// and JSON dumps of the box trees.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wudi/xfalayout/xfa/layout"
)

const stylesheet = `.xfaPage{position:relative;overflow:hidden;margin:8px auto;background:#fff;box-shadow:0 0 4px #999}
.xfaLr,.xfaRl{display:flex;flex-direction:row;align-items:stretch}
.xfaRl{flex-direction:row-reverse}
.xfaLine{white-space:pre}
.xfaField{display:flex}
.xfaCaptionTop,.xfaCaptionBottom{display:block}
.xfaTextfield,.xfaSelect{flex:1 1 auto;box-sizing:border-box}
`

// Node converts a box tree into an HTML node tree.
func Node(b *layout.Box) *html.Node {
	if b.Tag == "" {
		return &html.Node{Type: html.TextNode, Data: b.Text}
	}
	n := &html.Node{Type: html.ElementNode, Data: b.Tag, DataAtom: atom.Lookup([]byte(b.Tag))}
	if len(b.Class) > 0 {
		n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: strings.Join(b.Class, " ")})
	}
	keys := make([]string, 0, len(b.Attrs))
	for k := range b.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n.Attr = append(n.Attr, html.Attribute{Key: k, Val: b.Attrs[k]})
	}
	if s := styleText(b.Style); s != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "style", Val: s})
	}
	if b.Text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: b.Text})
	}
	for _, c := range b.Children {
		n.AppendChild(Node(c))
	}
	return n
}

// styleText writes a style map as CSS declarations, properties in
// kebab case and sorted.
func styleText(style map[string]string) string {
	keys := make([]string, 0, len(style))
	for k := range style {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(kebab(k))
		sb.WriteByte(':')
		sb.WriteString(style[k])
		sb.WriteByte(';')
	}
	return sb.String()
}

func kebab(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			sb.WriteByte('-')
			r += 'a' - 'A'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a, Attr: attrs}
}

// Document builds a standalone HTML document holding the pages.
func Document(title string, pages []*layout.Page) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	root := element(atom.Html)
	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, html.Attribute{Key: "charset", Val: "utf-8"}))
	t := element(atom.Title)
	t.AppendChild(&html.Node{Type: html.TextNode, Data: title})
	head.AppendChild(t)
	style := element(atom.Style)
	style.AppendChild(&html.Node{Type: html.TextNode, Data: stylesheet})
	head.AppendChild(style)
	body := element(atom.Body)
	for _, p := range pages {
		body.AppendChild(Node(p.Box))
	}
	root.AppendChild(head)
	root.AppendChild(body)
	doc.AppendChild(root)
	return doc
}

// HTML writes the pages as one HTML document.
func HTML(w io.Writer, title string, pages []*layout.Page) error {
	if err := html.Render(w, Document(title, pages)); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}
