package fonts

import (
	"testing"
	"unicode/utf8"

	"github.com/go-text/typesetting/language"
)

func TestDetectScript(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect language.Script
	}{
		{"Latin", "Hello World", language.Latin},
		{"Arabic", "مرحبا بالعالم", language.Arabic},
		{"Hebrew", "שלום עולם", language.Hebrew},
		{"Cyrillic", "Привет мир", language.Cyrillic},
		{"Latin dominant", "Hello World مرحبا", language.Latin},
		{"Han", "你好世界", language.Han},
		{"Digits only", "12345", language.Latin},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := detectScript([]rune(tc.input)); got != tc.expect {
				t.Errorf("Expected %v, got %v", tc.expect, got)
			}
		})
	}
}

func TestFixed(t *testing.T) {
	m := Fixed{}
	got := m.Measure(Descriptor{Size: 10, LetterSpacing: 1}, "abc")
	if len(got.Advances) != 3 {
		t.Fatalf("Expected 3 advances, got %d", len(got.Advances))
	}
	if got.Width() != 18 {
		t.Errorf("Width = %v, want 18", got.Width())
	}
	if got.LineHeight() != 12 {
		t.Errorf("LineHeight = %v, want 12", got.LineHeight())
	}
	if def := m.Measure(Descriptor{}, "x"); def.Width() != DefaultSize*0.5 {
		t.Errorf("Expected the default size to apply, got %v", def.Width())
	}
}

func TestMeasurers(t *testing.T) {
	sf, err := NewSfntMeasurer()
	if err != nil {
		t.Fatalf("NewSfntMeasurer: %v", err)
	}
	sh, err := NewShapingMeasurer()
	if err != nil {
		t.Fatalf("NewShapingMeasurer: %v", err)
	}

	for name, m := range map[string]Measurer{"sfnt": sf, "shaping": sh} {
		t.Run(name, func(t *testing.T) {
			text := "Hello, world"
			got := m.Measure(Descriptor{Typeface: "Myriad Pro", Size: 12}, text)
			if len(got.Advances) != utf8.RuneCountInString(text) {
				t.Fatalf("Expected one advance per rune, got %d", len(got.Advances))
			}
			if got.Width() <= 0 || got.Width() > 12*float64(len(text)) {
				t.Errorf("Implausible width %v", got.Width())
			}
			if got.LineHeight() < 12 {
				t.Errorf("Line height %v smaller than the font size", got.LineHeight())
			}

			wide := m.Measure(Descriptor{Size: 12}, "WWWW").Width()
			narrow := m.Measure(Descriptor{Size: 12}, "iiii").Width()
			if wide <= narrow {
				t.Errorf("Expected W wider than i: %v <= %v", wide, narrow)
			}

			mono := m.Measure(Descriptor{Typeface: "Courier", Size: 12}, "iW")
			if mono.Advances[0] != mono.Advances[1] {
				t.Errorf("Expected fixed pitch for Courier, got %v", mono.Advances)
			}
		})
	}
}

func TestNew(t *testing.T) {
	if _, ok := New("sfnt").(*SfntMeasurer); !ok {
		t.Errorf("Expected an SfntMeasurer")
	}
	if _, ok := New("shaping").(*ShapingMeasurer); !ok {
		t.Errorf("Expected a ShapingMeasurer")
	}
	if _, ok := New("nope").(Fixed); !ok {
		t.Errorf("Expected the fixed fallback")
	}
}
