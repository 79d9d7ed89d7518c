package som

import (
	"errors"
	"strings"
	"testing"

	"github.com/wudi/xfalayout/observability"
	"github.com/wudi/xfalayout/xfa"
)

const receiptXDP = `<xdp:xdp xmlns:xdp="http://ns.adobe.com/xdp/">
	<template>
		<subform name="Receipt">
			<subform name="Detail">
				<field name="Units"><font typeface="Courier"/></field>
			</subform>
			<subform>
				<field name="Hidden"/>
			</subform>
			<exclGroup name="Choice"/>
		</subform>
	</template>
	<datasets>
		<data>
			<Receipt>
				<Detail><Units>1</Units></Detail>
				<Detail><Units>2</Units></Detail>
				<Detail><Units>3</Units><Extra><Units>9</Units></Extra></Detail>
			</Receipt>
		</data>
	</datasets>
</xdp:xdp>`

func load(t *testing.T) (*xfa.Document, *Resolver) {
	t.Helper()
	doc, err := xfa.Parse(strings.NewReader(receiptXDP))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc, NewResolver(RootsOf(doc))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
		segs int
	}{
		{"a", "a", 1},
		{"a.b[2].c", "a.b[2].c", 3},
		{"$data..Units[*]", "$data..Units[*]", 2},
		{"a.#subform[1]", "a.#subform[1]", 2},
		{" a.b ", "a.b", 2},
		{"a.", "a", 1},
	}
	for _, tt := range tests {
		e, err := Parse(tt.in, true)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tt.in, err)
		}
		if got := e.String(); got != tt.want || len(e.Segments) != tt.segs {
			t.Errorf("Parse(%q) = %q (%d segments), want %q (%d)", tt.in, got, len(e.Segments), tt.want, tt.segs)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", ".a", "[0]", "a[", "a[]", "a.[b==1]", "a.(x)", "a]b", "a[b==1]", "a[-1]", "a.", "a.b.", "a..", "a[0]."} {
		if _, err := Parse(in, true); !errors.Is(err, ErrInvalidExpression) {
			t.Errorf("Parse(%q) should fail, got %v", in, err)
		}
	}
	if _, err := Parse("a..b", false); err == nil {
		t.Errorf("Expected dotdot to be rejected when not allowed")
	}
}

func TestParse_CacheKeys(t *testing.T) {
	e, _ := Parse("a.b[1]..c.#d", true)
	keys := []string{".a", ".b", "..c", ".#d"}
	for i, s := range e.Segments {
		if s.Key != keys[i] {
			t.Errorf("Segment %d key = %q, want %q", i, s.Key, keys[i])
		}
	}
}

func TestSearch_Data(t *testing.T) {
	_, r := load(t)

	got := r.Search(nil, nil, "$data.Receipt.Detail[*].Units", true, true)
	if len(got) != 3 {
		t.Fatalf("Expected 3 Units, got %d", len(got))
	}
	for i, want := range []string{"1", "2", "3"} {
		if got[i].DataValue() != want {
			t.Errorf("Units[%d] = %q, want %q", i, got[i].DataValue(), want)
		}
	}

	second := r.Search(nil, nil, "$record.Detail[1].Units", true, true)
	if len(second) != 1 || second[0].DataValue() != "2" {
		t.Errorf("Expected the second Units, got %v", second)
	}

	all := r.Search(nil, nil, "$data..Units[*]", true, true)
	if len(all) != 4 {
		t.Errorf("Expected 4 Units at any depth, got %d", len(all))
	}

	if got := r.Search(nil, nil, "$data.Receipt.Detail[7]", true, true); got != nil {
		t.Errorf("Expected no match for an out of range index, got %v", got)
	}
}

func TestSearch_TemplateTransparencyAndAttributes(t *testing.T) {
	doc, r := load(t)
	root := doc.RootSubform()

	hidden := r.Search(nil, root, "Hidden", true, false)
	if len(hidden) != 1 || hidden[0].Name() != "Hidden" {
		t.Fatalf("Expected to find a field through an unnamed subform, got %v", hidden)
	}

	tf := r.Search(nil, root, "Detail.Units.font.typeface", true, false)
	if len(tf) != 1 || tf[0].Kind != xfa.KindAttribute || tf[0].Content != "Courier" {
		t.Fatalf("Expected an attribute handle, got %v", tf)
	}

	byClass := r.Search(nil, root, "$.#subform[*]", true, false)
	if len(byClass) != 2 {
		t.Errorf("Expected 2 subform children by class, got %d", len(byClass))
	}

	par := r.Search(nil, root, "Detail.parent", true, false)
	if len(par) != 1 || par[0] != root {
		t.Errorf("Expected parent to navigate back to the root subform")
	}
}

func TestSearch_Escalation(t *testing.T) {
	doc, r := load(t)
	units := doc.RootSubform().First(xfa.KindSubform).First(xfa.KindField)

	// Choice is not under Units or Detail; the search climbs to Receipt.
	got := r.Search(nil, units, "Choice", true, true)
	if len(got) != 1 || got[0].Kind != xfa.KindExclGroup {
		t.Fatalf("Expected escalation to find Choice, got %v", got)
	}

	if got := r.Search(nil, units, "Nowhere", true, true); got != nil {
		t.Errorf("Expected nil for a missing name, got %v", got)
	}
	if got := r.Search(doc.Template, nil, "Choice", true, true); got != nil {
		t.Errorf("A qualified search must not escalate, got %v", got)
	}
}

func TestSearch_InvalidLogsWarning(t *testing.T) {
	doc, err := xfa.Parse(strings.NewReader(receiptXDP))
	if err != nil {
		t.Fatal(err)
	}
	rec := observability.NewRecorder()
	r := NewResolver(RootsOf(doc), WithLogger(rec))
	if got := r.Search(nil, nil, "$data.a[b==1]", true, true); got != nil {
		t.Errorf("Expected nil, got %v", got)
	}
	if len(rec.Warnings()) != 1 {
		t.Errorf("Expected one warning, got %v", rec.Warnings())
	}
}

func TestCreateDataNode_RoundTrip(t *testing.T) {
	tests := []string{
		"$data.Receipt.Total",
		"$data.Receipt.Detail[4].Units",
		"$data.New.Deep.Leaf[2]",
		"$record.Detail[2].Extra.More",
	}
	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			_, r := load(t)
			// Warm the cache so stale entries would be visible.
			r.Search(nil, nil, expr, false, true)

			created := r.CreateDataNode(nil, nil, expr)
			if created == nil {
				t.Fatalf("Expected a node to be created")
			}
			got := r.Search(nil, nil, expr, false, true)
			if len(got) != 1 || got[0] != created {
				t.Errorf("Search returned %v, want the created node", got)
			}
		})
	}
}

func TestCreateDataNode_Existing(t *testing.T) {
	_, r := load(t)
	if n := r.CreateDataNode(nil, nil, "$data.Receipt.Detail[1].Units"); n != nil {
		t.Errorf("Expected nil when every segment exists, got %v", n)
	}
}

func TestCreateDataNode_Repeats(t *testing.T) {
	doc, r := load(t)
	receipt := doc.Data.First(xfa.KindData)

	leaf := r.CreateDataNode(nil, receipt, "Row[2]")
	rows := receipt.ChildrenNamed("Row")
	if len(rows) != 3 || rows[2] != leaf {
		t.Errorf("Expected 3 Row siblings with the last returned, got %d", len(rows))
	}
}
