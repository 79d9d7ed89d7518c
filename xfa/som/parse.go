// Package som parses and evaluates XFA Scripting Object Model expressions
// such as "$data.Receipt.Detail[*].Units" against template and data trees.
package som

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidExpression is returned for expressions outside the supported
// grammar, including nested script and bracket predicates.
var ErrInvalidExpression = errors.New("som: invalid expression")

// Operator selects how a segment matches children.
type Operator int

const (
	// OpDot matches children by name, looking through transparent nodes.
	OpDot Operator = iota
	// OpDotDot matches same-named descendants at any depth.
	OpDotDot
	// OpDotHash matches children by node kind.
	OpDotHash
)

func (o Operator) String() string {
	switch o {
	case OpDotDot:
		return ".."
	case OpDotHash:
		return ".#"
	}
	return "."
}

// Segment is one step of an expression.
type Segment struct {
	Name string
	Op   Operator
	// Index is the ordinal to select; ignored when All is set.
	Index int
	All   bool
	// Key is the literal operator and name text, used as the cache key.
	Key string
}

// Expr is a parsed expression.
type Expr struct {
	Segments []Segment
}

// Parse splits expr into segments. dotDotAllowed controls whether ".."
// segments are accepted.
func Parse(expr string, dotDotAllowed bool) (*Expr, error) {
	expr = strings.TrimSpace(expr)
	name := leadingName(expr)
	if name == "" {
		return nil, ErrInvalidExpression
	}
	e := &Expr{Segments: []Segment{{Name: name, Op: OpDot, Key: "." + name}}}
	pos := len(name)
	for pos < len(expr) {
		start := pos
		c := expr[pos]
		pos++
		if c == '[' {
			end := strings.IndexByte(expr[pos:], ']')
			if end <= 0 {
				return nil, ErrInvalidExpression
			}
			last := &e.Segments[len(e.Segments)-1]
			idx := strings.TrimSpace(expr[pos : pos+end])
			if idx == "*" {
				last.All = true
			} else {
				i, err := strconv.Atoi(idx)
				if err != nil || i < 0 {
					return nil, ErrInvalidExpression
				}
				last.Index = i
			}
			pos += end + 1
			continue
		}
		if c != '.' {
			return nil, ErrInvalidExpression
		}

		op := OpDot
		if pos < len(expr) {
			switch expr[pos] {
			case '.':
				if !dotDotAllowed {
					return nil, ErrInvalidExpression
				}
				op = OpDotDot
				pos++
			case '#':
				op = OpDotHash
				pos++
			case '[', '(':
				return nil, ErrInvalidExpression
			}
		}
		name = leadingName(expr[pos:])
		if name == "" {
			return nil, ErrInvalidExpression
		}
		pos += len(name)
		e.Segments = append(e.Segments, Segment{Name: name, Op: op, Key: expr[start:pos]})
	}
	return e, nil
}

func leadingName(s string) string {
	i := strings.IndexAny(s, ".[")
	if i < 0 {
		return s
	}
	return s[:i]
}

// HasOperator reports whether any segment uses op.
func (e *Expr) HasOperator(op Operator) bool {
	for _, s := range e.Segments {
		if s.Op == op {
			return true
		}
	}
	return false
}

func (e *Expr) String() string {
	var sb strings.Builder
	for i, s := range e.Segments {
		if i > 0 {
			sb.WriteString(s.Op.String())
		}
		sb.WriteString(s.Name)
		switch {
		case s.All:
			sb.WriteString("[*]")
		case s.Index > 0:
			sb.WriteString("[" + strconv.Itoa(s.Index) + "]")
		}
	}
	return sb.String()
}
