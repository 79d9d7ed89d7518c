package xfa

import (
	"strconv"
	"strings"
)

// Occur holds the resolved repetition bounds of a container. Max is
// Unbounded (-1) when any number of instances is allowed.
type Occur struct {
	Min     int
	Max     int
	Initial int
}

// OccurOf resolves the occur property of n, applying the schema defaults
// that depend on where the container sits.
func OccurOf(n *Node) Occur {
	inPage := n.Kind == KindPageArea || n.Kind == KindPageSet
	o := n.First(KindOccur)

	minDefault := 1
	if inPage {
		minDefault = 0
	}
	if o == nil {
		max := 1
		if inPage {
			max = Unbounded
		}
		return Occur{Min: minDefault, Max: max, Initial: initialDefault(n, minDefault)}
	}

	min, minSet := intAttr(o, "min")
	if !minSet || min < 0 {
		min = minDefault
		minSet = false
	}
	max, maxSet := intAttr(o, "max")
	if !maxSet {
		if !minSet {
			max = 1
			if inPage {
				max = Unbounded
			}
		} else {
			max = min
		}
	}
	if max != Unbounded && max < min {
		max = min
	}
	initial, ok := intAttr(o, "initial")
	if !ok || initial < 0 {
		initial = initialDefault(n, min)
	}
	return Occur{Min: min, Max: max, Initial: initial}
}

func initialDefault(n *Node, min int) int {
	if p := n.Parent(); p != nil && p.Kind == KindTemplate {
		return 1
	}
	return min
}

func intAttr(n *Node, name string) (int, bool) {
	v, ok := n.Attr(name)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return i, true
}

// Allows reports whether count instances stay within the bounds.
func (o Occur) Allows(count int) bool {
	return o.Max == Unbounded || count < o.Max
}
