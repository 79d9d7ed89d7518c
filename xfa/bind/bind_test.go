package bind

import (
	"context"
	"strings"
	"testing"

	"github.com/wudi/xfalayout/observability"
	"github.com/wudi/xfalayout/xfa"
)

func bindXDP(t *testing.T, src string, opts ...Option) (*xfa.Document, *xfa.Node) {
	t.Helper()
	doc, err := xfa.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Failed to parse XML: %v", err)
	}
	form := NewBinder(doc, opts...).Bind(context.Background())
	return doc, form
}

func child(n *xfa.Node, name string) *xfa.Node {
	for _, c := range n.Children() {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

func named(n *xfa.Node, name string) []*xfa.Node {
	var out []*xfa.Node
	for _, c := range n.Children() {
		if c.Name() == name {
			out = append(out, c)
		}
	}
	return out
}

func TestBinder_Bind(t *testing.T) {
	xmlData := `
	<xdp:xdp xmlns:xdp="http://ns.adobe.com/xdp/">
		<template>
			<subform name="form1">
				<field name="firstName">
					<value><text>Default</text></value>
				</field>
				<field name="lastName" />
				<subform name="address">
					<field name="street" />
					<field name="city" />
				</subform>
			</subform>
		</template>
		<datasets>
			<data>
				<form1>
					<firstName>John</firstName>
					<lastName>Doe</lastName>
					<address>
						<street>123 Main St</street>
						<city>Anytown</city>
					</address>
				</form1>
			</data>
		</datasets>
	</xdp:xdp>
	`
	doc, form := bindXDP(t, xmlData)

	root := form.First(xfa.KindSubform)
	if root == nil || root.Name() != "form1" {
		t.Fatal("Form or root subform is missing")
	}
	if root.Data == nil || root.Data.Tag != "form1" {
		t.Fatalf("Expected form1 bound to its data, got %v", root.Data)
	}

	// Verify firstName
	f1 := child(root, "firstName")
	if f1 == nil {
		t.Fatal("firstName field is missing")
	}
	if f1.RawValue() != "John" {
		t.Errorf("Expected firstName to be 'John', got '%s'", f1.RawValue())
	}

	// Verify lastName
	if f2 := child(root, "lastName"); f2 == nil || f2.RawValue() != "Doe" {
		t.Errorf("Expected lastName to be 'Doe', got '%v'", f2)
	}

	// Verify address subform
	sub := child(root, "address")
	if sub == nil {
		t.Fatal("address subform is missing")
	}
	if s1 := child(sub, "street"); s1 == nil || s1.RawValue() != "123 Main St" {
		t.Errorf("Expected street to be '123 Main St', got '%v'", s1)
	}
	if s2 := child(sub, "city"); s2.Data == nil || s2.Data.Tag != "city" {
		t.Errorf("Expected city bound to its data node")
	}

	// The template keeps its defaults.
	tf := child(doc.RootSubform(), "firstName")
	if tf.RawValue() != "Default" {
		t.Errorf("Template must not be modified, got %q", tf.RawValue())
	}
}

func TestBinder_ExplicitBind(t *testing.T) {
	xmlData := `
	<xdp:xdp xmlns:xdp="http://ns.adobe.com/xdp/">
		<template>
			<subform name="form1">
				<field name="fullName">
					<bind match="dataRef" ref="name"/>
				</field>
				<field name="created">
					<bind match="dataRef" ref="$record.meta.stamp"/>
				</field>
			</subform>
		</template>
		<datasets>
			<data>
				<form1>
					<name>Jane Doe</name>
				</form1>
			</data>
		</datasets>
	</xdp:xdp>
	`
	doc, form := bindXDP(t, xmlData)
	root := form.First(xfa.KindSubform)

	f1 := child(root, "fullName")
	if f1.RawValue() != "Jane Doe" {
		t.Errorf("Expected fullName to be 'Jane Doe', got '%v'", f1.RawValue())
	}

	// A missing ref target is synthesized and bound.
	f2 := child(root, "created")
	form1 := doc.Data.First(xfa.KindData)
	meta := child(form1, "meta")
	if meta == nil || child(meta, "stamp") == nil {
		t.Fatal("Expected meta.stamp to be created in the data")
	}
	if f2.Data != child(meta, "stamp") {
		t.Errorf("Expected created bound to the synthesized node")
	}
}

func TestBinder_OccurrenceBound(t *testing.T) {
	rows := ""
	for i := 1; i <= 5; i++ {
		rows += "<row><qty>" + string(rune('0'+i)) + "</qty></row>"
	}
	xmlData := `<xdp:xdp xmlns:xdp="http://ns.adobe.com/xdp/">
		<template>
			<subform name="form1" mergeMode="consumeData">
				<subform name="row">
					<occur max="3"/>
					<field name="qty"/>
				</subform>
			</subform>
		</template>
		<datasets><data><form1>` + rows + `</form1></data></datasets>
	</xdp:xdp>`
	doc, form := bindXDP(t, xmlData)

	instances := named(form.First(xfa.KindSubform), "row")
	if len(instances) != 3 {
		t.Fatalf("Expected 3 row instances, got %d", len(instances))
	}
	for i, inst := range instances {
		want := string(rune('1' + i))
		if got := child(inst, "qty").RawValue(); got != want {
			t.Errorf("row %d qty = %q, want %q", i, got, want)
		}
		if i > 0 && inst.First(xfa.KindOccur) != nil {
			t.Errorf("Clones must not carry occur")
		}
	}

	consumed := 0
	for _, r := range named(doc.Data.First(xfa.KindData), "row") {
		if r.Consumed {
			consumed++
		}
	}
	if consumed != 3 {
		t.Errorf("Expected 3 consumed data nodes, got %d", consumed)
	}
}

func TestBinder_FirstSubformSynthesized(t *testing.T) {
	doc, form := bindXDP(t, `<template><subform name="form1"><field name="a"/></subform></template>`)

	data := doc.Data.Children()
	if len(data) != 1 || data[0].Tag != "form1" {
		t.Fatalf("Expected one synthesized form1 data node, got %v", data)
	}
	root := form.First(xfa.KindSubform)
	if root.Data != data[0] {
		t.Errorf("Expected the root subform bound to the synthesized node")
	}
	if a := child(root, "a"); a.Data == nil || a.Data.Parent() != data[0] {
		t.Errorf("Expected field a bound to a node created under form1")
	}
}

func TestBinder_FirstSubformBindsWhateverName(t *testing.T) {
	doc, form := bindXDP(t, `<xdp:xdp xmlns:xdp="http://ns.adobe.com/xdp/">
		<template><subform name="form1"/></template>
		<datasets><data><other><x>1</x></other></data></datasets>
	</xdp:xdp>`)
	if got := form.First(xfa.KindSubform).Data; got != doc.Data.First(xfa.KindData) {
		t.Errorf("Expected the root subform bound to the first record, got %v", got)
	}
}

func TestBinder_MatchNoneAndGlobal(t *testing.T) {
	_, form := bindXDP(t, `<xdp:xdp xmlns:xdp="http://ns.adobe.com/xdp/">
		<template>
			<subform name="form1">
				<field name="n"><bind match="none"/><value><text>keep</text></value></field>
				<subform name="s">
					<field name="g"><bind match="global"/></field>
					<field name="h"><bind match="global"/></field>
				</subform>
			</subform>
		</template>
		<datasets><data>
			<form1 h="H">
				<n>5</n>
				<s><x/></s>
				<other><deep><g>G</g></deep></other>
			</form1>
		</data></datasets>
	</xdp:xdp>`)
	root := form.First(xfa.KindSubform)

	n := child(root, "n")
	if n.RawValue() != "keep" || n.Data != nil {
		t.Errorf("match=none must not bind a value, got %q", n.RawValue())
	}
	s := child(root, "s")
	if got := child(s, "g").RawValue(); got != "G" {
		t.Errorf("Expected global g from anywhere in the data, got %q", got)
	}
	if got := child(s, "h").RawValue(); got != "H" {
		t.Errorf("Expected global h from a data attribute, got %q", got)
	}
}

func TestBinder_MultiSelect(t *testing.T) {
	_, form := bindXDP(t, `<xdp:xdp xmlns:xdp="http://ns.adobe.com/xdp/">
		<template>
			<subform name="form1">
				<field name="colors"><ui><choiceList open="multiSelect"/></ui></field>
			</subform>
		</template>
		<datasets><data><form1><colors><c> red </c><c>blue</c></colors></form1></data></datasets>
	</xdp:xdp>`)
	f := child(form.First(xfa.KindSubform), "colors")
	if got := f.RawValue(); got != "red\nblue" {
		t.Errorf("Expected newline-joined selection, got %q", got)
	}
}

func TestBinder_PrunesOptional(t *testing.T) {
	doc, form := bindXDP(t, `<xdp:xdp xmlns:xdp="http://ns.adobe.com/xdp/">
		<template>
			<subform name="form1">
				<subform name="opt"><occur min="0"/><field name="x"/></subform>
				<field name="a"/>
			</subform>
		</template>
		<datasets><data><form1><a>1</a></form1></data></datasets>
	</xdp:xdp>`)
	root := form.First(xfa.KindSubform)
	if child(root, "opt") != nil {
		t.Errorf("Expected unmatched optional subform to be pruned")
	}
	if child(root, "a").RawValue() != "1" {
		t.Errorf("Expected a bound after the pruned sibling")
	}
	if child(doc.RootSubform(), "opt") == nil {
		t.Errorf("The template must keep the optional subform")
	}
}

func TestBinder_EmptyMergeInitial(t *testing.T) {
	doc, form := bindXDP(t, `<template>
		<subform name="form1">
			<subform name="r"><occur min="0" max="-1" initial="3"/><field name="x"/></subform>
			<subform name="gone"><occur min="0"/></subform>
		</subform>
	</template>`)
	root := form.First(xfa.KindSubform)
	if got := len(named(root, "r")); got != 3 {
		t.Errorf("Expected 3 initial instances, got %d", got)
	}
	if child(root, "gone") != nil {
		t.Errorf("Expected min=0 subform without initial instances to be pruned")
	}
	if got := len(named(doc.Data.Children()[0], "r")); got != 3 {
		t.Errorf("Expected 3 r data nodes, got %d", got)
	}
}

func TestBinder_SetProperty(t *testing.T) {
	rec := observability.NewRecorder()
	_, form := bindXDP(t, `<xdp:xdp xmlns:xdp="http://ns.adobe.com/xdp/">
		<template>
			<subform name="form1">
				<field name="last">
					<setProperty target="caption.value.text" ref="$data.form1.label"/>
					<setProperty target="font.typeface" ref="$data.form1.face"/>
					<setProperty target="$template.form1" ref="$data.form1.face"/>
					<setProperty target="caption" ref="$data.form1.missing"/>
					<caption><value><text>old</text></value></caption>
					<font typeface="Arial"/>
				</field>
			</subform>
		</template>
		<datasets><data><form1><last>Doe</last><label>Surname</label><face>Courier</face></form1></data></datasets>
	</xdp:xdp>`, WithLogger(rec))

	f := child(form.First(xfa.KindSubform), "last")
	if got := f.First(xfa.KindCaption).RawValue(); got != "Surname" {
		t.Errorf("Expected caption from data, got %q", got)
	}
	if got := f.First(xfa.KindFont).AttrOr("typeface", ""); got != "Courier" {
		t.Errorf("Expected typeface from data, got %q", got)
	}
	if got := len(rec.Warnings()); got != 2 {
		t.Errorf("Expected 2 warnings for the invalid directives, got %v", rec.Warnings())
	}
}

func TestBinder_BindItems(t *testing.T) {
	_, form := bindXDP(t, `<xdp:xdp xmlns:xdp="http://ns.adobe.com/xdp/">
		<template>
			<subform name="form1">
				<field name="card">
					<ui><choiceList/></ui>
					<bindItems ref="$data.form1.cards.cc[*]" labelRef="uiname" valueRef="token"/>
					<items><text>stale</text></items>
				</field>
			</subform>
		</template>
		<datasets><data><form1>
			<card>v2</card>
			<cards>
				<cc><uiname>Visa</uiname><token>v1</token></cc>
				<cc><uiname>Amex</uiname><token>v2</token></cc>
			</cards>
		</form1></data></datasets>
	</xdp:xdp>`)
	f := child(form.First(xfa.KindSubform), "card")
	display, save := f.ItemLists()
	if strings.Join(display, ",") != "Visa,Amex" || strings.Join(save, ",") != "v1,v2" {
		t.Errorf("Unexpected items display=%v save=%v", display, save)
	}
	if len(f.ChildrenOfKind(xfa.KindItems)) != 2 {
		t.Errorf("Expected stale items replaced by two lists")
	}
	if f.RawValue() != "v2" {
		t.Errorf("Expected the field value bound, got %q", f.RawValue())
	}
}

func TestBinder_GlobalConsumeData(t *testing.T) {
	for _, max := range []string{"3", "-1"} {
		t.Run("max="+max, func(t *testing.T) {
			doc, form := bindXDP(t, `<xdp:xdp xmlns:xdp="http://ns.adobe.com/xdp/">
				<template>
					<subform name="form1" mergeMode="consumeData">
						<subform name="s">
							<field name="g"><occur max="`+max+`"/><bind match="global"/></field>
						</subform>
					</subform>
				</template>
				<datasets><data><form1><s/><other><g>only</g></other></form1></data></datasets>
			</xdp:xdp>`)
			s := child(form.First(xfa.KindSubform), "s")
			instances := named(s, "g")
			if len(instances) != 1 {
				t.Fatalf("Expected one g instance for one data node, got %d", len(instances))
			}
			if got := instances[0].RawValue(); got != "only" {
				t.Errorf("Expected g bound to the global value, got %q", got)
			}
			g := doc.Data.First(xfa.KindData).ChildrenNamed("other")[0].ChildrenNamed("g")[0]
			if !g.Consumed {
				t.Errorf("Expected the global data node to be consumed")
			}
		})
	}
}

func TestBinder_MergeModeDefault(t *testing.T) {
	tests := []struct {
		name      string
		mergeMode string
		want      int
	}{
		{"unset", "", 3},
		{"consumeData", ` mergeMode="consumeData"`, 3},
		{"matchTemplate", ` mergeMode="matchTemplate"`, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, form := bindXDP(t, `<xdp:xdp xmlns:xdp="http://ns.adobe.com/xdp/">
				<template>
					<subform name="form1"`+tc.mergeMode+`>
						<subform name="row"><occur max="-1"/><field name="v"/></subform>
					</subform>
				</template>
				<datasets><data><form1>
					<row><v>a</v></row><row><v>b</v></row><row><v>c</v></row>
				</form1></data></datasets>
			</xdp:xdp>`)
			rows := named(form.First(xfa.KindSubform), "row")
			if len(rows) != tc.want {
				t.Fatalf("Expected %d row instances, got %d", tc.want, len(rows))
			}
			for i, r := range rows {
				if want := string(rune('a' + i)); child(r, "v").RawValue() != want {
					t.Errorf("row %d v = %q, want %q", i, child(r, "v").RawValue(), want)
				}
			}
		})
	}
}

func TestBinder_SetPropertyRejectsDirectiveTarget(t *testing.T) {
	rec := observability.NewRecorder()
	_, form := bindXDP(t, `<xdp:xdp xmlns:xdp="http://ns.adobe.com/xdp/">
		<template>
			<subform name="form1">
				<field name="last">
					<setProperty target="setProperty.ref" ref="$data.form1.label"/>
				</field>
			</subform>
		</template>
		<datasets><data><form1><last>Doe</last><label>Surname</label></form1></data></datasets>
	</xdp:xdp>`, WithLogger(rec))

	f := child(form.First(xfa.KindSubform), "last")
	sp := f.First(xfa.KindSetProperty)
	if got := sp.AttrOr("ref", ""); got != "$data.form1.label" {
		t.Errorf("Directive must be left unchanged, ref = %q", got)
	}
	warned := false
	for _, w := range rec.Warnings() {
		if strings.Contains(w, "binding directive") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("Expected a binding directive warning, got %v", rec.Warnings())
	}
}
