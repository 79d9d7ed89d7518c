package xfa

import (
	"strconv"
	"strings"
)

// ParseUnit converts an XFA measurement string (e.g., "1in", "72pt", "10mm") to points.
// 1in = 72pt
// 1mm = 2.83465pt
// 1cm = 28.3465pt
// A bare number is read as points.
func ParseUnit(s string) float64 {
	v, _ := parseMeasurement(s)
	return v
}

func parseMeasurement(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	scale := 1.0
	for _, u := range units {
		if strings.HasSuffix(s, u.suffix) {
			s = strings.TrimSpace(s[:len(s)-len(u.suffix)])
			scale = u.scale
			break
		}
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return val * scale, true
}

var units = []struct {
	suffix string
	scale  float64
}{
	{"in", 72.0},
	{"mm", 72.0 / 25.4},
	{"cm", 72.0 / 2.54},
	{"pt", 1},
	{"px", 1},
	{"mp", 0.001},
}

// Measure returns attribute name of n in points, or def when it is unset
// or malformed.
func (n *Node) Measure(name string, def float64) float64 {
	s, ok := n.Attr(name)
	if !ok {
		return def
	}
	v, ok := parseMeasurement(s)
	if !ok {
		return def
	}
	return v
}

// HasMeasure reports whether attribute name holds a valid measurement.
func (n *Node) HasMeasure(name string) bool {
	s, ok := n.Attr(name)
	if !ok {
		return false
	}
	_, ok = parseMeasurement(s)
	return ok
}

// Insets is the space a margin property reserves on each side.
type Insets struct {
	Left, Top, Right, Bottom float64
}

// Horizontal returns Left+Right.
func (i Insets) Horizontal() float64 { return i.Left + i.Right }

// Vertical returns Top+Bottom.
func (i Insets) Vertical() float64 { return i.Top + i.Bottom }

// MarginInsets reads the margin property of n.
func (n *Node) MarginInsets() Insets {
	m := n.First(KindMargin)
	if m == nil {
		return Insets{}
	}
	return Insets{
		Left:   m.Measure("leftInset", 0),
		Top:    m.Measure("topInset", 0),
		Right:  m.Measure("rightInset", 0),
		Bottom: m.Measure("bottomInset", 0),
	}
}
