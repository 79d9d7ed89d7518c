package layout

import (
	"strings"

	"github.com/wudi/xfalayout/fonts"
	"github.com/wudi/xfalayout/scripting"
	"github.com/wudi/xfalayout/xfa"
)

func isTextual(w *xfa.Node) bool { return isTextualKind(w.Kind) }

func isTextualKind(k xfa.Kind) bool {
	switch k {
	case xfa.KindTextEdit, xfa.KindNumericEdit, xfa.KindDateTimeEdit, xfa.KindPasswordEdit, xfa.KindChoiceList:
		return true
	}
	return false
}

func multiLine(w *xfa.Node) bool {
	return w != nil && w.Kind == xfa.KindTextEdit && w.AttrOr("multiLine", "0") == "1"
}

// displayValue is the text shown for a field: the display items of a
// choice list, the raw value otherwise.
func displayValue(n, widget *xfa.Node) string {
	raw := n.RawValue()
	if widget == nil || widget.Kind != xfa.KindChoiceList {
		return raw
	}
	display, save := n.ItemLists()
	var out []string
	for _, v := range strings.Split(raw, "\n") {
		shown := v
		for i, sv := range save {
			if sv == v && i < len(display) {
				shown = display[i]
				break
			}
		}
		out = append(out, shown)
	}
	return strings.Join(out, "\n")
}

// onValue is the value a check button takes when checked.
func onValue(n *xfa.Node) string {
	if _, save := n.ItemLists(); len(save) > 0 {
		return save[0]
	}
	return "1"
}

func (s *session) widgetBox(n, widget *xfa.Node, value string, font fonts.Descriptor) *Box {
	raw := n.RawValue()
	kind := xfa.KindTextEdit
	if widget != nil {
		kind = widget.Kind
	}
	var b *Box
	switch kind {
	case xfa.KindTextEdit:
		if multiLine(widget) {
			b = newBox("textarea", "xfaTextfield")
			b.Append(textBox(raw))
		} else {
			b = newBox("input", "xfaTextfield")
			b.Attrs["type"] = "text"
			b.Attrs["value"] = raw
		}
	case xfa.KindNumericEdit, xfa.KindDateTimeEdit:
		b = newBox("input", "xfaTextfield")
		b.Attrs["type"] = "text"
		b.Attrs["value"] = raw
		if kind == xfa.KindNumericEdit {
			b.Attrs["inputmode"] = "decimal"
		}
	case xfa.KindPasswordEdit:
		b = newBox("input", "xfaTextfield")
		b.Attrs["type"] = "password"
		b.Attrs["value"] = raw
	case xfa.KindChoiceList:
		b = s.selectBox(n, widget, raw)
	case xfa.KindCheckButton:
		b = newBox("input", "xfaCheckbox")
		b.Attrs["type"] = "checkbox"
		if group := n.Parent(); widget.AttrOr("shape", "square") == "round" || (group != nil && group.Kind == xfa.KindExclGroup) {
			b.Attrs["type"] = "radio"
			if group != nil && group.Kind == xfa.KindExclGroup {
				b.Attrs["name"] = group.UID()
			}
		}
		b.Attrs["xfaOn"] = onValue(n)
		if raw != "" && raw == onValue(n) {
			b.Attrs["checked"] = "checked"
		}
	case xfa.KindButton:
		b = newBox("button", "xfaButton")
		if l, ok := launchURL(n); ok {
			a := newBox("a", "xfaLink")
			a.Attrs["href"] = l.URL
			if l.NewWindow {
				a.Attrs["target"] = "_blank"
			}
			b.Append(a)
		}
	case xfa.KindSignature:
		b = newBox("div", "xfaSignature")
	case xfa.KindImageEdit:
		b = newBox("div", "xfaImageEdit")
		b.Append(imageBox(n))
	default:
		b = newBox("div", "xfaUnknownWidget")
	}
	b.Attrs["fieldId"] = n.UID()
	if isTextualKind(kind) {
		fontStyle(b, font, n)
	}
	if n.AttrOr("access", "open") != "open" {
		b.Attrs["readonly"] = "readonly"
	}
	return b
}

func (s *session) selectBox(n, widget *xfa.Node, raw string) *Box {
	b := newBox("select", "xfaSelect")
	if n.IsMultiSelect() {
		b.Attrs["multiple"] = "multiple"
	}
	selected := map[string]bool{}
	for _, v := range strings.Split(raw, "\n") {
		selected[v] = true
	}
	display, save := n.ItemLists()
	for i, label := range display {
		o := newBox("option")
		v := label
		if i < len(save) {
			v = save[i]
		}
		o.Attrs["value"] = v
		if selected[v] {
			o.Attrs["selected"] = "selected"
		}
		o.Append(textBox(label))
		b.Append(o)
	}
	return b
}

// launchURL finds a click event whose script only opens a URL.
func launchURL(n *xfa.Node) (scripting.LaunchURL, bool) {
	for _, ev := range n.ChildrenOfKind(xfa.KindEvent) {
		if ev.AttrOr("activity", "click") != "click" {
			continue
		}
		script := ev.First(xfa.KindScript)
		if script == nil {
			continue
		}
		if l, ok := scripting.DetectLaunchURL(script.Text()); ok {
			return l, true
		}
	}
	return scripting.LaunchURL{}, false
}

// imageBox renders an image value, or returns nil.
func imageBox(n *xfa.Node) *Box {
	c := n.ValueContent()
	if c == nil || c.Kind != xfa.KindImage {
		return nil
	}
	img := newBox("img", "xfaImage")
	if href, ok := c.Attr("href"); ok && href != "" {
		img.Attrs["src"] = href
	} else if data := strings.Join(strings.Fields(c.Content), ""); data != "" {
		ct := c.AttrOr("contentType", "image/png")
		img.Attrs["src"] = "data:" + ct + ";base64," + data
	} else {
		return nil
	}
	return img
}
