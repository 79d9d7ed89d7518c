package xfa

import (
	"errors"
	"strings"
	"testing"
)

const sampleXDP = `<?xml version="1.0" encoding="UTF-8"?>
<xdp:xdp xmlns:xdp="http://ns.adobe.com/xdp/">
	<template xmlns="http://www.xfa.org/schema/xfa-template/3.3/">
		<subform name="form1" id="root">
			<field name="firstName">
				<value><text>Default</text></value>
			</field>
		</subform>
	</template>
	<xfa:datasets xmlns:xfa="http://www.xfa.org/schema/xfa-data/1.0/">
		<xfa:data>
			<form1>
				<firstName>John</firstName>
				<note>a<b>bold</b>c</note>
				<grp xfa:dataNode="dataGroup"/>
			</form1>
		</xfa:data>
	</xfa:datasets>
</xdp:xdp>`

func TestParse_XDP(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleXDP))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Root == nil || doc.Root.Kind != KindXDP {
		t.Fatalf("Expected xdp root, got %v", doc.Root)
	}
	root := doc.RootSubform()
	if root == nil || root.Name() != "form1" {
		t.Fatalf("Expected root subform form1, got %v", root)
	}
	if doc.IDs["root"] != root {
		t.Errorf("Expected id index to map root to the subform")
	}
	field := root.First(KindField)
	if field == nil {
		t.Fatal("Expected a field")
	}
	if got := field.RawValue(); got != "Default" {
		t.Errorf("Expected field value 'Default', got %q", got)
	}

	if doc.Data == nil || doc.Data.Name() != "data" {
		t.Fatalf("Expected data root, got %v", doc.Data)
	}
	form1 := doc.Data.First(KindData)
	if form1 == nil || form1.Name() != "form1" {
		t.Fatalf("Expected data node form1, got %v", form1)
	}
	if form1.IsDataValue() {
		t.Errorf("form1 should be a data group")
	}
	first := form1.ChildrenNamed("firstName")
	if len(first) != 1 || first[0].DataValue() != "John" {
		t.Fatalf("Expected firstName=John, got %v", first)
	}

	note := form1.ChildrenNamed("note")[0]
	if len(note.Children()) != 3 {
		t.Fatalf("Expected mixed content split into 3 children, got %d", len(note.Children()))
	}
	if note.Content != "" {
		t.Errorf("Mixed content node should carry no own content, got %q", note.Content)
	}
	if got := note.Text(); got != "aboldc" {
		t.Errorf("Expected text 'aboldc', got %q", got)
	}

	grp := form1.ChildrenNamed("grp")[0]
	if grp.IsDataValue() {
		t.Errorf("dataNode=dataGroup should override the classification")
	}
	if _, ok := grp.Attr("dataNode"); ok {
		t.Errorf("dataNode should not be kept as an attribute")
	}
}

func TestParse_BareTemplate(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<template><subform name="a"/></template>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Template != doc.Root {
		t.Errorf("Expected the template to be the root")
	}
	if doc.RootSubform().Kind != KindSubform {
		t.Errorf("Expected subform kind, got %v", doc.RootSubform().Kind)
	}
	if doc.Data == nil || len(doc.Data.Children()) != 0 {
		t.Errorf("Expected an empty synthesized data root")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"no template", `<xdp:xdp xmlns:xdp="http://ns.adobe.com/xdp/"></xdp:xdp>`, ErrNoTemplate},
		{"no subform", `<template xmlns="http://www.xfa.org/schema/xfa-template/3.3/"/>`, ErrNoSubform},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in))
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := Parse(strings.NewReader(`<template><subform name="a`)); err == nil {
		t.Errorf("Expected an error for truncated XML")
	}
}
