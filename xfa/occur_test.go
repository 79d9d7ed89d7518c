package xfa

import "testing"

func withOccur(kind Kind, attrs map[string]string) *Node {
	n := NewTemplateNode(kind)
	if attrs != nil {
		o := NewTemplateNode(KindOccur)
		for k, v := range attrs {
			o.SetAttr(k, v)
		}
		n.AppendChild(o)
	}
	return n
}

func TestOccurOf(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		attrs map[string]string
		want  Occur
	}{
		{"no occur", KindSubform, nil, Occur{1, 1, 1}},
		{"no occur page area", KindPageArea, nil, Occur{0, Unbounded, 0}},
		{"min only", KindSubform, map[string]string{"min": "2"}, Occur{2, 2, 2}},
		{"max only", KindSubform, map[string]string{"max": "3"}, Occur{1, 3, 1}},
		{"unbounded", KindSubform, map[string]string{"min": "0", "max": "-1"}, Occur{0, Unbounded, 0}},
		{"max below min", KindSubform, map[string]string{"min": "4", "max": "2"}, Occur{4, 4, 4}},
		{"initial", KindSubform, map[string]string{"min": "0", "max": "5", "initial": "3"}, Occur{0, 5, 3}},
		{"garbage", KindSubform, map[string]string{"min": "x"}, Occur{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OccurOf(withOccur(tt.kind, tt.attrs)); got != tt.want {
				t.Errorf("OccurOf = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestOccurOf_InitialUnderTemplate(t *testing.T) {
	tmpl := NewTemplateNode(KindTemplate)
	sf := withOccur(KindSubform, map[string]string{"min": "0"})
	tmpl.AppendChild(sf)
	if got := OccurOf(sf).Initial; got != 1 {
		t.Errorf("Expected initial 1 for a top-level subform, got %d", got)
	}
}

func TestOccur_Allows(t *testing.T) {
	if !(Occur{Max: Unbounded}).Allows(100) {
		t.Errorf("Unbounded should allow any count")
	}
	o := Occur{Max: 2}
	if !o.Allows(1) || o.Allows(2) {
		t.Errorf("Max 2 should allow a second but not a third instance")
	}
}
