package fonts

import (
	"bytes"
	"fmt"
	"math"
	"sync"
	"unicode"

	"github.com/go-text/typesetting/di"
	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// ShapingMeasurer runs HarfBuzz shaping over the Go fonts, so kerning and
// ligatures show up in the advances. Ligature glyphs are credited to the
// first rune of their cluster.
type ShapingMeasurer struct {
	mu     sync.Mutex
	shaper shaping.HarfbuzzShaper
	faces  map[faceKey]*gofont.Face
}

// NewShapingMeasurer parses the embedded Go fonts for shaping.
func NewShapingMeasurer() (*ShapingMeasurer, error) {
	sources := map[faceKey][]byte{
		{}:                         goregular.TTF,
		{bold: true}:               gobold.TTF,
		{italic: true}:             goitalic.TTF,
		{bold: true, italic: true}: gobolditalic.TTF,
		{mono: true}:               gomono.TTF,
	}
	m := &ShapingMeasurer{faces: make(map[faceKey]*gofont.Face, len(sources))}
	for k, data := range sources {
		face, err := gofont.ParseTTF(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parse go font for shaping: %w", err)
		}
		m.faces[k] = face
	}
	return m, nil
}

func (m *ShapingMeasurer) face(d Descriptor) *gofont.Face {
	k := faceKey{bold: d.Bold(), italic: d.Italic(), mono: d.Monospace()}
	if k.mono {
		k = faceKey{mono: true}
	}
	if f, ok := m.faces[k]; ok {
		return f
	}
	return m.faces[faceKey{}]
}

func (m *ShapingMeasurer) Measure(d Descriptor, s string) Metrics {
	size := d.Size
	if size <= 0 {
		size = DefaultSize
	}
	runes := []rune(s)
	script := detectScript(runes)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: scriptDirection(script),
		Face:      m.face(d),
		Size:      fixed.Int26_6(size * 64),
		Script:    script,
		Language:  language.DefaultLanguage(),
	}

	m.mu.Lock()
	output := m.shaper.Shape(input)
	m.mu.Unlock()

	out := Metrics{
		Advances: make([]float64, len(runes)),
		Ascent:   toPoints(output.LineBounds.Ascent),
		Descent:  math.Abs(toPoints(output.LineBounds.Descent)),
		LineGap:  toPoints(output.LineBounds.Gap),
	}
	for _, g := range output.Glyphs {
		if g.ClusterIndex >= 0 && g.ClusterIndex < len(runes) {
			out.Advances[g.ClusterIndex] += toPoints(g.XAdvance)
		}
	}
	if d.LetterSpacing != 0 {
		for i := range out.Advances {
			out.Advances[i] += d.LetterSpacing
		}
	}
	return out
}

func scriptDirection(script language.Script) di.Direction {
	switch script {
	case language.Arabic, language.Hebrew, language.Syriac, language.Thaana, language.Nko:
		return di.DirectionRTL
	default:
		return di.DirectionLTR
	}
}

// detectScript returns the most frequent script of runes, Latin when none
// is recognised.
func detectScript(runes []rune) language.Script {
	counts := make(map[language.Script]int)
	maxCount := 0
	best := language.Latin
	for _, r := range runes {
		script := scriptFromRune(r)
		if script == language.Unknown {
			continue
		}
		counts[script]++
		if counts[script] > maxCount {
			maxCount = counts[script]
			best = script
		}
	}
	return best
}

var scriptTables = []struct {
	table  *unicode.RangeTable
	script language.Script
}{
	{unicode.Latin, language.Latin},
	{unicode.Arabic, language.Arabic},
	{unicode.Hebrew, language.Hebrew},
	{unicode.Cyrillic, language.Cyrillic},
	{unicode.Greek, language.Greek},
	{unicode.Thai, language.Thai},
	{unicode.Devanagari, language.Devanagari},
	{unicode.Han, language.Han},
	{unicode.Hiragana, language.Hiragana},
	{unicode.Katakana, language.Katakana},
	{unicode.Hangul, language.Hangul},
}

func scriptFromRune(r rune) language.Script {
	for _, t := range scriptTables {
		if unicode.Is(t.table, r) {
			return t.script
		}
	}
	return language.Unknown
}
