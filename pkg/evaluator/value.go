// Package evaluator implements the BigLisp tree-walking evaluator.
package evaluator

import (
	"strconv"
	"strings"

	"github.com/thomasrohde/biglisp/go/pkg/ast"
)

// Value is the interface for all BigLisp runtime values.
// Use the sealed marker method to restrict implementations to this package.
type Value interface {
	value() // sealed marker
}

// Unit is the result of forms with no meaningful value.
type Unit struct{}

func (Unit) value() {}

// Bool represents a boolean value.
type Bool struct {
	Value bool
}

func (Bool) value() {}

// Int represents a 64-bit signed integer.
type Int struct {
	Value int64
}

func (Int) value() {}

// Float represents a 64-bit floating point number.
type Float struct {
	Value float64
}

func (Float) value() {}

// String represents a string value.
type String struct {
	Value string
}

func (String) value() {}

// List represents an ordered sequence of values. Items is never mutated
// after construction; list operations build new slices.
type List struct {
	Items []Value
}

func (List) value() {}

// Function is a user-defined function closed over its defining environment.
type Function struct {
	Name   string
	Params []string
	Body   []ast.Expr
	Env    *Env
}

func (*Function) value() {}

// NewUnit creates the unit value.
func NewUnit() Value {
	return Unit{}
}

// NewBool creates a boolean value.
func NewBool(b bool) Value {
	return Bool{Value: b}
}

// NewInt creates an integer value.
func NewInt(n int64) Value {
	return Int{Value: n}
}

// NewFloat creates a float value.
func NewFloat(f float64) Value {
	return Float{Value: f}
}

// NewString creates a string value.
func NewString(s string) Value {
	return String{Value: s}
}

// NewList creates a list value. A nil slice is normalised to an empty list.
func NewList(items []Value) Value {
	if items == nil {
		items = []Value{}
	}
	return List{Items: items}
}

// Truthiness returns the boolean interpretation of a value.
// Only false is falsy; 0, "", [] and unit are truthy.
func Truthiness(v Value) bool {
	if b, ok := v.(Bool); ok {
		return b.Value
	}
	return true
}

// TypeName returns the type name used in error messages.
func TypeName(v Value) string {
	switch v.(type) {
	case Unit:
		return "unit"
	case Bool:
		return "boolean"
	case Int:
		return "integer"
	case Float:
		return "float"
	case String:
		return "string"
	case List:
		return "list"
	case *Function:
		return "function"
	default:
		return "unknown"
	}
}

// Display renders v the way str and println show it: strings are raw
// and unit contributes "nil".
func Display(v Value) string {
	var sb strings.Builder
	writeValue(&sb, v, false)
	return sb.String()
}

// Repr renders v as it would be written in source, quoting strings.
func Repr(v Value) string {
	var sb strings.Builder
	writeValue(&sb, v, true)
	return sb.String()
}

func writeValue(sb *strings.Builder, v Value, quote bool) {
	switch val := v.(type) {
	case Unit:
		sb.WriteString("nil")
	case Bool:
		sb.WriteString(strconv.FormatBool(val.Value))
	case Int:
		sb.WriteString(strconv.FormatInt(val.Value, 10))
	case Float:
		sb.WriteString(formatFloat(val.Value))
	case String:
		if quote {
			sb.WriteString(QuoteString(val.Value))
		} else {
			sb.WriteString(val.Value)
		}
	case List:
		sb.WriteByte('[')
		for i, item := range val.Items {
			if i > 0 {
				sb.WriteByte(' ')
			}
			// strings nested in lists are always quoted
			writeValue(sb, item, true)
		}
		sb.WriteByte(']')
	case *Function:
		sb.WriteString("#<fn ")
		sb.WriteString(val.Name)
		sb.WriteByte('>')
	default:
		sb.WriteString("#<unknown>")
	}
}

// formatFloat keeps a decimal point on integral floats so they read back as floats.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eIN") {
		s += ".0"
	}
	return s
}

// QuoteString renders s as a string literal using the reader's escape set.
func QuoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// DeepEqual recursively compares two values. Integers and floats compare numerically;
// functions compare by identity.
func DeepEqual(a, b Value) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	if an, ok := toNumber(a); ok {
		bn, ok := toNumber(b)
		return ok && compareNumbers(an, bn) == 0
	}

	switch av := a.(type) {
	case Unit:
		_, ok := b.(Unit)
		return ok

	case Bool:
		bv, ok := b.(Bool)
		return ok && av.Value == bv.Value

	case String:
		bv, ok := b.(String)
		return ok && av.Value == bv.Value

	case List:
		bv, ok := b.(List)
		if !ok || len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !DeepEqual(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true

	case *Function:
		bv, ok := b.(*Function)
		return ok && av == bv
	}

	return false
}
