package xfa

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
)

// Serialize writes the data tree rooted at data as an xfa:datasets packet.
// values maps data node UIDs to replacement text. A replacement for a data
// value sets its content. A replacement for a data group whose children are
// all values is split on newlines, one child element per line, which is how
// multi-select choice lists store their selection.
func Serialize(data *Node, values map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`<xfa:datasets xmlns:xfa="` + URIDatasets + `"><xfa:data>`)
	w := &dataWriter{buf: &buf, values: values}
	if data != nil {
		for _, c := range data.children {
			if err := w.node(c, data.Space); err != nil {
				return nil, err
			}
		}
	}
	buf.WriteString(`</xfa:data></xfa:datasets>`)
	return buf.Bytes(), nil
}

type dataWriter struct {
	buf    *bytes.Buffer
	values map[string]string
	nsSeq  int
}

func (w *dataWriter) node(n *Node, parentSpace string) error {
	if n.Tag == "#text" {
		return xml.EscapeText(w.buf, []byte(n.Content))
	}
	if n.Namespace != NSData && n.Namespace != NSXHTML {
		return nil
	}
	value, replaced := w.values[n.uid]

	w.buf.WriteByte('<')
	w.buf.WriteString(n.Tag)
	switch {
	case n.Space != "" && n.Space != parentSpace && n.Space != URIDatasets:
		w.attr("xmlns", n.Space)
	case n.Space == "" && parentSpace != "" && parentSpace != URIDatasets:
		w.attr("xmlns", "")
	}
	for _, a := range n.Attrs {
		switch a.Name.Space {
		case "":
			w.attr(a.Name.Local, a.Value)
		case URIDatasets:
			w.attr("xfa:"+a.Name.Local, a.Value)
		default:
			w.nsSeq++
			p := "ns" + strconv.Itoa(w.nsSeq)
			w.attr("xmlns:"+p, a.Name.Space)
			w.attr(p+":"+a.Name.Local, a.Value)
		}
	}
	if n.dataValue != nil && *n.dataValue != inferredValue(n) {
		if *n.dataValue {
			w.attr("xfa:dataNode", "dataValue")
		} else {
			w.attr("xfa:dataNode", "dataGroup")
		}
	}
	w.buf.WriteByte('>')

	switch {
	case replaced && len(n.children) > 0 && allValues(n.children):
		tag := n.children[0].Tag
		for _, line := range strings.Split(value, "\n") {
			w.buf.WriteString("<" + tag + ">")
			if err := xml.EscapeText(w.buf, []byte(line)); err != nil {
				return err
			}
			w.buf.WriteString("</" + tag + ">")
		}
	case replaced && n.IsDataValue():
		if err := xml.EscapeText(w.buf, []byte(value)); err != nil {
			return err
		}
	case len(n.children) == 0:
		if err := xml.EscapeText(w.buf, []byte(n.Content)); err != nil {
			return err
		}
	default:
		for _, c := range n.children {
			if err := w.node(c, n.Space); err != nil {
				return err
			}
		}
	}
	w.buf.WriteString("</" + n.Tag + ">")
	return nil
}

func (w *dataWriter) attr(name, value string) {
	w.buf.WriteByte(' ')
	w.buf.WriteString(name)
	w.buf.WriteString(`="`)
	xml.EscapeText(w.buf, []byte(value))
	w.buf.WriteByte('"')
}

func inferredValue(n *Node) bool {
	return len(n.children) == 0 || n.children[0].Namespace == NSXHTML
}

func allValues(children []*Node) bool {
	for _, c := range children {
		if c.Namespace != NSData || c.Tag == "#text" || !c.IsDataValue() {
			return false
		}
	}
	return true
}
