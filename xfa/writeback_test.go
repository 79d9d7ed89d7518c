package xfa

import (
	"strings"
	"testing"
)

func TestSerialize(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<xdp:xdp xmlns:xdp="http://ns.adobe.com/xdp/">
		<template><subform name="form1"/></template>
		<xfa:datasets xmlns:xfa="http://www.xfa.org/schema/xfa-data/1.0/">
			<xfa:data>
				<form1 lang="en">
					<name>John</name>
					<colors><c>red</c><c>blue</c></colors>
					<other>keep</other>
				</form1>
			</xfa:data>
		</xfa:datasets>
	</xdp:xdp>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	form1 := doc.Data.Children()[0]
	name := form1.ChildrenNamed("name")[0]
	colors := form1.ChildrenNamed("colors")[0]

	out, err := Serialize(doc.Data, map[string]string{
		name.UID():   "Jane & Co",
		colors.UID(): "green\nyellow",
	})
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	want := `<xfa:datasets xmlns:xfa="http://www.xfa.org/schema/xfa-data/1.0/"><xfa:data>` +
		`<form1 lang="en"><name>Jane &amp; Co</name><colors><c>green</c><c>yellow</c></colors><other>keep</other></form1>` +
		`</xfa:data></xfa:datasets>`
	if string(out) != want {
		t.Errorf("Unexpected output:\n got %s\nwant %s", out, want)
	}

	// The tree itself is left untouched.
	if name.DataValue() != "John" || len(colors.Children()) != 2 {
		t.Errorf("Serialize must not modify the data tree")
	}
}

func TestSerialize_Empty(t *testing.T) {
	out, err := Serialize(nil, nil)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if !strings.HasSuffix(string(out), "<xfa:data></xfa:data></xfa:datasets>") {
		t.Errorf("Unexpected output %s", out)
	}
}

func TestSerialize_UnqualifiedChildOfNamespacedParent(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<xdp:xdp xmlns:xdp="http://ns.adobe.com/xdp/">
		<template><subform name="form1"/></template>
		<xfa:datasets xmlns:xfa="http://www.xfa.org/schema/xfa-data/1.0/">
			<xfa:data>
				<form1 xmlns="urn:example:form"><a>1</a><b xmlns="">2</b></form1>
			</xfa:data>
		</xfa:datasets>
	</xdp:xdp>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	out, err := Serialize(doc.Data, nil)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	want := `<form1 xmlns="urn:example:form"><a>1</a><b xmlns="">2</b></form1>`
	if !strings.Contains(string(out), want) {
		t.Errorf("Unexpected output:\n got %s\nwant it to contain %s", out, want)
	}

	again, err := Parse(strings.NewReader(`<xdp:xdp xmlns:xdp="http://ns.adobe.com/xdp/"><template><subform name="form1"/></template>` +
		string(out) + `</xdp:xdp>`))
	if err != nil {
		t.Fatalf("Parse of serialized data failed: %v", err)
	}
	b := again.Data.Children()[0].ChildrenNamed("b")
	if len(b) != 1 || b[0].Space != "" {
		t.Errorf("Expected b to stay outside the form namespace, got %v", b)
	}
}
