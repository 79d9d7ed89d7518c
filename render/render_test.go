package render

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/wudi/xfalayout/xfa/form"
	"github.com/wudi/xfalayout/xfa/layout"
)

const invoice = `<xdp:xdp xmlns:xdp="http://ns.adobe.com/xdp/">
<template>
	<subform name="invoice" layout="tb">
		<pageSet>
			<pageArea name="Sheet">
				<medium short="612pt" long="792pt"/>
				<contentArea x="36pt" y="36pt" w="540pt" h="720pt"/>
			</pageArea>
		</pageSet>
		<draw name="heading" w="200pt" h="20pt"><value><text>Invoice &amp; receipt</text></value></draw>
		<field name="customer" w="200pt" h="20pt"><ui><textEdit/></ui></field>
	</subform>
</template>
<xfa:datasets xmlns:xfa="http://www.xfa.org/schema/xfa-data/1.0/">
	<xfa:data><invoice><customer>Ada</customer></invoice></xfa:data>
</xfa:datasets>
</xdp:xdp>`

func layoutInvoice(t *testing.T) []*layout.Page {
	t.Helper()
	s, err := form.Open(context.Background(), strings.NewReader(invoice))
	require.NoError(t, err)
	pages, err := s.Layout(context.Background())
	require.NoError(t, err)
	require.Len(t, pages, 1)
	return pages
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	if match(n) {
		out = append(out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, findAll(c, match)...)
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func withClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, c := range strings.Fields(attr(n, "class")) {
			if c == class {
				return true
			}
		}
		return false
	}
}

func TestHTML_RoundTrip(t *testing.T) {
	pages := layoutInvoice(t)

	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, "Invoice", pages))
	assert.True(t, strings.HasPrefix(buf.String(), "<!DOCTYPE html>"))

	doc, err := html.Parse(&buf)
	require.NoError(t, err)

	titles := findAll(doc, func(n *html.Node) bool { return n.Type == html.ElementNode && n.Data == "title" })
	require.Len(t, titles, 1)
	assert.Equal(t, "Invoice", titles[0].FirstChild.Data)

	assert.Len(t, findAll(doc, withClass("xfaPage")), 1)

	inputs := findAll(doc, func(n *html.Node) bool { return n.Type == html.ElementNode && n.Data == "input" })
	require.Len(t, inputs, 1)
	assert.Equal(t, "Ada", attr(inputs[0], "value"))

	lines := findAll(doc, withClass("xfaLine"))
	require.NotEmpty(t, lines)
	var text strings.Builder
	for _, l := range lines {
		text.WriteString(l.FirstChild.Data)
	}
	assert.Contains(t, text.String(), "Invoice & receipt")
}

func TestNode_StyleAndAttributes(t *testing.T) {
	b := &layout.Box{
		Tag:   "div",
		Class: []string{"xfaDraw", "xfaRight"},
		Attrs: map[string]string{"id": "d1", "aria-label": "total"},
		Style: map[string]string{"width": "10px", "fontSize": "9px"},
		Children: []*layout.Box{
			{Text: "ok"},
		},
	}
	n := Node(b)
	assert.Equal(t, "div", n.Data)
	assert.Equal(t, "xfaDraw xfaRight", attr(n, "class"))
	assert.Equal(t, "font-size:9px;width:10px;", attr(n, "style"))
	assert.Equal(t, "aria-label", n.Attr[1].Key)
	require.NotNil(t, n.FirstChild)
	assert.Equal(t, html.TextNode, n.FirstChild.Type)
	assert.Equal(t, "ok", n.FirstChild.Data)
}

func TestKebab(t *testing.T) {
	tests := map[string]string{
		"width":          "width",
		"fontSize":       "font-size",
		"letterSpacing":  "letter-spacing",
		"borderTopWidth": "border-top-width",
	}
	for in, want := range tests {
		assert.Equal(t, want, kebab(in), in)
	}
}

func TestJSON(t *testing.T) {
	pages := layoutInvoice(t)

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, pages))

	var out []struct {
		Index    int     `json:"index"`
		PageArea string  `json:"pageArea"`
		Width    float64 `json:"width"`
		Height   float64 `json:"height"`
		Box      struct {
			Tag   string   `json:"tag"`
			Class []string `json:"class"`
		} `json:"box"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, 0, out[0].Index)
	assert.Equal(t, "Sheet", out[0].PageArea)
	assert.Equal(t, 612.0, out[0].Width)
	assert.Equal(t, 792.0, out[0].Height)
	assert.Equal(t, "div", out[0].Box.Tag)
	assert.Contains(t, out[0].Box.Class, "xfaPage")
}

func TestSVG(t *testing.T) {
	pages := layoutInvoice(t)
	p, err := NewPreviewer()
	require.NoError(t, err)

	c := p.Canvas(pages[0])
	w, h := c.Size()
	assert.InDelta(t, 612*ptToMM, w, 1e-9)
	assert.InDelta(t, 792*ptToMM, h, 1e-9)

	var buf bytes.Buffer
	require.NoError(t, p.SVG(&buf, pages[0]))
	assert.Contains(t, buf.String(), "<svg")
}

func TestParseColor(t *testing.T) {
	c, ok := parseColor("#ff8000")
	require.True(t, ok)
	assert.Equal(t, uint8(0xff), c.R)
	assert.Equal(t, uint8(0x80), c.G)
	assert.Equal(t, uint8(0), c.B)

	_, ok = parseColor("red")
	assert.False(t, ok)
}
