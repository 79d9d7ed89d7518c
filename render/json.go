package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/wudi/xfalayout/xfa/layout"
)

type jsonBox struct {
	Tag      string            `json:"tag,omitempty"`
	Class    []string          `json:"class,omitempty"`
	Attrs    map[string]string `json:"attributes,omitempty"`
	Style    map[string]string `json:"style,omitempty"`
	Text     string            `json:"text,omitempty"`
	Children []jsonBox         `json:"children,omitempty"`
}

type jsonPage struct {
	Index    int     `json:"index"`
	PageArea string  `json:"pageArea,omitempty"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Box      jsonBox `json:"box"`
}

func toJSONBox(b *layout.Box) jsonBox {
	out := jsonBox{Tag: b.Tag, Class: b.Class, Text: b.Text}
	if len(b.Attrs) > 0 {
		out.Attrs = b.Attrs
	}
	if len(b.Style) > 0 {
		out.Style = b.Style
	}
	for _, c := range b.Children {
		out.Children = append(out.Children, toJSONBox(c))
	}
	return out
}

// JSON writes the box trees of pages as an indented JSON array.
func JSON(w io.Writer, pages []*layout.Page) error {
	out := make([]jsonPage, 0, len(pages))
	for _, p := range pages {
		jp := jsonPage{Index: p.Index, Width: p.Width, Height: p.Height, Box: toJSONBox(p.Box)}
		if p.PageArea != nil {
			jp.PageArea = p.PageArea.Name()
		}
		out = append(out, jp)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("render json: %w", err)
	}
	return nil
}
