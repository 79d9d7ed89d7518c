package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wudi/xfalayout/fonts"
	"github.com/wudi/xfalayout/xfa"
)

var layoutClasses = map[string]string{
	"position": "xfaPosition",
	"lr-tb":    "xfaLrTb",
	"rl-tb":    "xfaRlTb",
	"row":      "xfaRow",
	"rl-row":   "xfaRlRow",
	"table":    "xfaTable",
	"tb":       "xfaTb",
}

// identify sets the attributes a host needs to map a box back to its
// form and data nodes.
func identify(b *Box, n *xfa.Node) {
	b.Attrs["id"] = n.UID()
	if name := n.Name(); name != "" {
		b.Attrs["xfaName"] = name
	}
	if n.Data != nil {
		b.Attrs["dataId"] = n.Data.UID()
	}
}

// placeStyle positions b inside its parent and gives it its size.
func placeStyle(b *Box, d dims, parent *xfa.Node, w, h float64) {
	switch layoutOf(parent) {
	case "position", "":
		b.Style["position"] = "absolute"
		b.Style["left"] = px(d.X)
		b.Style["top"] = px(d.Y)
	}
	b.Style["width"] = px(w)
	b.Style["height"] = px(h)
	if d.Rotate != 0 {
		b.Style["transform"] = "rotate(-" + strconv.Itoa(d.Rotate) + "deg)"
		b.Style["transformOrigin"] = "top left"
	}
}

func presenceStyle(b *Box, n *xfa.Node) {
	if n.AttrOr("presence", "visible") == "invisible" {
		b.Style["visibility"] = "hidden"
	}
}

func marginStyle(b *Box, m xfa.Insets) {
	if m == (xfa.Insets{}) {
		return
	}
	b.Style["padding"] = fmt.Sprintf("%s %s %s %s", px(m.Top), px(m.Right), px(m.Bottom), px(m.Left))
}

func fontStyle(b *Box, d fonts.Descriptor, n *xfa.Node) {
	b.Style["fontFamily"] = d.Typeface
	b.Style["fontSize"] = px(d.Size)
	if d.Bold() {
		b.Style["fontWeight"] = "bold"
	}
	if d.Italic() {
		b.Style["fontStyle"] = "italic"
	}
	if d.LetterSpacing != 0 {
		b.Style["letterSpacing"] = px(d.LetterSpacing)
	}
	if c := fontColor(n); c != "" {
		b.Style["color"] = c
	}
}

func paraStyle(b *Box, p para) {
	switch p.hAlign {
	case "center", "right", "justify":
		b.Style["textAlign"] = p.hAlign
	case "justifyAll":
		b.Style["textAlign"] = "justify"
	}
	if p.marginLeft != 0 {
		b.Style["paddingLeft"] = px(p.marginLeft)
	}
	if p.marginRight != 0 {
		b.Style["paddingRight"] = px(p.marginRight)
	}
	if p.textIndent != 0 {
		b.Style["textIndent"] = px(p.textIndent)
	}
}

// fontColor reads font.fill.color, e.g. <color value="255,0,0"/>.
func fontColor(n *xfa.Node) string {
	for p := n; p != nil; p = p.Parent() {
		f := p.First(xfa.KindFont)
		if f == nil {
			continue
		}
		if c := colorOf(f); c != "" {
			return c
		}
	}
	return ""
}

func colorOf(n *xfa.Node) string {
	for _, fill := range n.ChildrenByTag("fill") {
		for _, c := range fill.ChildrenByTag("color") {
			if v, ok := c.Attr("value"); ok {
				return rgb(v)
			}
		}
	}
	return ""
}

func rgb(v string) string {
	parts := strings.Split(v, ",")
	if len(parts) != 3 {
		return ""
	}
	var c [3]int
	for i, p := range parts {
		x, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return ""
		}
		c[i] = max(0, min(255, x))
	}
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// borderStyle draws the first visible edge of a border property.
func borderStyle(b *Box, n *xfa.Node) {
	border := n.First(xfa.KindBorder)
	if border == nil || presenceHidden(border) || border.AttrOr("presence", "visible") == "invisible" {
		return
	}
	edges := border.ChildrenByTag("edge")
	if len(edges) == 0 {
		b.Style["border"] = "0.5px solid #000000"
		return
	}
	e := edges[0]
	if e.AttrOr("presence", "visible") != "visible" {
		return
	}
	color := ""
	for _, c := range e.ChildrenByTag("color") {
		if v, ok := c.Attr("value"); ok {
			color = rgb(v)
		}
	}
	if color == "" {
		color = "#000000"
	}
	stroke := "solid"
	switch e.AttrOr("stroke", "solid") {
	case "dashed", "dashDot", "dashDotDot":
		stroke = "dashed"
	case "dotted":
		stroke = "dotted"
	}
	b.Style["border"] = fmt.Sprintf("%s %s %s", px(e.Measure("thickness", 0.5)), stroke, color)
}
