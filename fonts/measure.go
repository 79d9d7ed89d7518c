// Package fonts supplies the text measurement the layout engine relies on:
// per-glyph advances and line metrics for a font descriptor.
package fonts

import (
	"strings"
	"unicode/utf8"
)

// Descriptor selects a font the way an XFA font element does.
type Descriptor struct {
	Typeface string
	Size     float64 // points
	Weight   string  // "normal" or "bold"
	Posture  string  // "normal" or "italic"
	// LetterSpacing is added after every glyph, in points.
	LetterSpacing float64
}

// Bold reports whether the descriptor asks for a bold face.
func (d Descriptor) Bold() bool { return strings.EqualFold(d.Weight, "bold") }

// Italic reports whether the descriptor asks for an italic face.
func (d Descriptor) Italic() bool { return strings.EqualFold(d.Posture, "italic") }

// Monospace reports whether the typeface names a fixed-pitch family.
func (d Descriptor) Monospace() bool {
	t := strings.ToLower(d.Typeface)
	return strings.Contains(t, "courier") || strings.Contains(t, "mono")
}

// Metrics are measured in points at the descriptor size.
type Metrics struct {
	// Advances holds one entry per rune of the measured string.
	Advances []float64
	Ascent   float64
	Descent  float64
	LineGap  float64
}

// Width is the sum of the advances.
func (m Metrics) Width() float64 {
	w := 0.0
	for _, a := range m.Advances {
		w += a
	}
	return w
}

// LineHeight is the distance between two baselines.
func (m Metrics) LineHeight() float64 { return m.Ascent + m.Descent + m.LineGap }

// Measurer measures strings set in a font.
type Measurer interface {
	Measure(d Descriptor, s string) Metrics
}

// DefaultSize is used when a descriptor carries no size.
const DefaultSize = 10

// Fixed gives every rune the same advance, a fraction of the font size. It
// needs no font data and is fully deterministic.
type Fixed struct {
	// Ratio of the advance to the font size; 0 means 0.5.
	Ratio float64
}

func (f Fixed) Measure(d Descriptor, s string) Metrics {
	size := d.Size
	if size <= 0 {
		size = DefaultSize
	}
	ratio := f.Ratio
	if ratio <= 0 {
		ratio = 0.5
	}
	adv := make([]float64, 0, utf8.RuneCountInString(s))
	for range s {
		adv = append(adv, size*ratio+d.LetterSpacing)
	}
	return Metrics{Advances: adv, Ascent: size * 0.8, Descent: size * 0.2, LineGap: size * 0.2}
}

// New returns the measurer registered under name: "sfnt", "shaping" or
// "fixed". Unknown names fall back to Fixed.
func New(name string) Measurer {
	switch name {
	case "sfnt":
		if m, err := NewSfntMeasurer(); err == nil {
			return m
		}
	case "shaping":
		if m, err := NewShapingMeasurer(); err == nil {
			return m
		}
	}
	return Fixed{}
}
