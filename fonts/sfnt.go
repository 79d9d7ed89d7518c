package fonts

import (
	"fmt"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

type faceKey struct {
	bold, italic, mono bool
}

// SfntMeasurer measures with the Go font family. Typefaces are mapped onto
// Go Regular/Bold/Italic/Bold Italic, or Go Mono for fixed-pitch families.
type SfntMeasurer struct {
	faces map[faceKey]*sfnt.Font
}

// NewSfntMeasurer parses the embedded Go fonts.
func NewSfntMeasurer() (*SfntMeasurer, error) {
	sources := map[faceKey][]byte{
		{}:                         goregular.TTF,
		{bold: true}:               gobold.TTF,
		{italic: true}:             goitalic.TTF,
		{bold: true, italic: true}: gobolditalic.TTF,
		{mono: true}:               gomono.TTF,
		{mono: true, bold: true}:   gomonobold.TTF,
	}
	m := &SfntMeasurer{faces: make(map[faceKey]*sfnt.Font, len(sources))}
	for k, data := range sources {
		f, err := sfnt.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse go font: %w", err)
		}
		m.faces[k] = f
	}
	return m, nil
}

func (m *SfntMeasurer) face(d Descriptor) *sfnt.Font {
	k := faceKey{bold: d.Bold(), italic: d.Italic(), mono: d.Monospace()}
	if k.mono {
		k.italic = false
	}
	if f, ok := m.faces[k]; ok {
		return f
	}
	return m.faces[faceKey{}]
}

func (m *SfntMeasurer) Measure(d Descriptor, s string) Metrics {
	size := d.Size
	if size <= 0 {
		size = DefaultSize
	}
	f := m.face(d)
	buf := &sfnt.Buffer{}
	ppem := fixed.Int26_6(size * 64)

	var out Metrics
	if fm, err := f.Metrics(buf, ppem, xfont.HintingNone); err == nil {
		out.Ascent = toPoints(fm.Ascent)
		out.Descent = toPoints(fm.Descent)
		out.LineGap = toPoints(fm.Height) - out.Ascent - out.Descent
		if out.LineGap < 0 {
			out.LineGap = 0
		}
	}
	for _, r := range s {
		adv := 0.0
		if gi, err := f.GlyphIndex(buf, r); err == nil {
			if gi == 0 {
				// .notdef: fall back to the space width
				gi, _ = f.GlyphIndex(buf, ' ')
			}
			if a, err := f.GlyphAdvance(buf, gi, ppem, xfont.HintingNone); err == nil {
				adv = toPoints(a)
			}
		}
		out.Advances = append(out.Advances, adv+d.LetterSpacing)
	}
	return out
}

func toPoints(v fixed.Int26_6) float64 { return float64(v) / 64 }
